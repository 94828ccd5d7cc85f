// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	platformconfig "github.com/7maceX1D/assetd/internal/platform/config"
)

// s3Driver implements Driver for S3-compatible providers (AWS S3,
// Cloudflare R2, Alibaba OSS) using the AWS S3 SDK.
type s3Driver struct {
	s3Client   *s3.Client
	driverName string
	bucket     string
	publicURL  string
}

// NewS3Driver creates an S3-compatible driver from a storage root configuration.
func NewS3Driver(cfg *platformconfig.StorageRootConfig) (Driver, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("access key id and secret access key are required")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // R2 and OSS require path-style addressing
	})

	return &s3Driver{
		s3Client:   s3Client,
		driverName: cfg.Driver,
		bucket:     cfg.BucketName,
		publicURL:  cfg.PublicURL,
	}, nil
}

func (d *s3Driver) DriverName() string {
	return d.driverName
}

// Exists reports whether the object is present via a HEAD request.
func (d *s3Driver) Exists(ctx context.Context, name string) (bool, error) {
	_, err := d.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// GetStream opens the object, optionally restricted to an inclusive byte range.
func (d *s3Driver) GetStream(ctx context.Context, name string, start, end *int64) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(name),
	}
	if start != nil || end != nil {
		input.Range = aws.String(formatRangeHeader(start, end))
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return output.Body, nil
}

// formatRangeHeader renders an HTTP Range header value for the given
// inclusive bounds.
func formatRangeHeader(start, end *int64) string {
	switch {
	case start != nil && end != nil:
		return fmt.Sprintf("bytes=%d-%d", *start, *end)
	case start != nil:
		return fmt.Sprintf("bytes=%d-", *start)
	default:
		return fmt.Sprintf("bytes=-%d", *end)
	}
}

// GetStat retrieves object size and modification time.
func (d *s3Driver) GetStat(ctx context.Context, name string) (*Stat, error) {
	headOutput, err := d.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object metadata: %w", err)
	}

	if headOutput.ContentLength == nil {
		return nil, fmt.Errorf("content length is nil")
	}

	stat := &Stat{Size: *headOutput.ContentLength}
	if headOutput.LastModified != nil {
		stat.ModifiedAt = *headOutput.LastModified
	}
	return stat, nil
}

// Put uploads the stream under name with the given content type.
func (d *s3Driver) Put(ctx context.Context, name string, r io.Reader, contentType string) error {
	_, err := d.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(name),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// GetURL returns the public URL for the object.
// CRITICAL: If publicURL (CDN) is configured, return the CDN URL to avoid
// Class B operations. Only use presigned URLs when CDN is not configured.
func (d *s3Driver) GetURL(ctx context.Context, name string) (string, error) {
	if d.publicURL != "" {
		publicBase := strings.TrimSuffix(d.publicURL, "/")
		return fmt.Sprintf("%s/%s", publicBase, name), nil
	}

	presignClient := s3.NewPresignClient(d.s3Client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(name),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = 24 * time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return req.URL, nil
}
