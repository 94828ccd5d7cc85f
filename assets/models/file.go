// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
)

// File represents a file record in the database.
// The record is a read-only snapshot fetched per request; only MimeType is
// overwritten in-memory when a transformation changes the output format.
type File struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Storage          string    `db:"storage" json:"storage"`
	FilenameDisk     string    `db:"filename_disk" json:"filenameDisk"`
	FilenameDownload string    `db:"filename_download" json:"filenameDownload"`
	MimeType         string    `db:"mime_type" json:"mimeType"`
	SizeBytes        int64     `db:"size_bytes" json:"sizeBytes"`
	Width            int       `db:"width" json:"width"`
	Height           int       `db:"height" json:"height"`
	UploadedAt       time.Time `db:"uploaded_at" json:"uploadedAt"`
	ModifiedAt       time.Time `db:"modified_at" json:"modifiedAt"`
}

// TransformationParams is the inline form of a transformation request,
// decoded from query parameters.
type TransformationParams struct {
	Key                string `schema:"key" json:"key"`
	Width              int    `schema:"width" json:"width"`
	Height             int    `schema:"height" json:"height"`
	Fit                string `schema:"fit" json:"fit"`
	Format             string `schema:"format" json:"format"`
	Quality            int    `schema:"quality" json:"quality"`
	WithoutEnlargement bool   `schema:"withoutEnlargement" json:"withoutEnlargement"`
	Rotate             int    `schema:"rotate" json:"rotate"`

	// Transforms is the raw operation list form: ordered [name, args...]
	// entries appended after the shorthand params expand. Carried in the
	// "transforms" query parameter as a JSON array.
	Transforms [][]interface{} `schema:"-" json:"transforms"`
}

// IsEmpty reports whether the params request no work at all.
func (p *TransformationParams) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Key == "" && p.Width == 0 && p.Height == 0 &&
		p.Format == "" && p.Quality == 0 && p.Rotate == 0 &&
		len(p.Transforms) == 0
}

// TransformationRequest is either a named preset (Key) or inline params,
// optionally carrying an explicit cache suffix that overrides the derived one.
type TransformationRequest struct {
	Key         string                `json:"key"`
	Params      *TransformationParams `json:"params"`
	CacheSuffix string                `json:"cacheSuffix"`
}

// TransformationPreset is a named, stored transformation loaded from
// project settings.
type TransformationPreset struct {
	Key    string                `db:"key" json:"key"`
	Params *TransformationParams `json:"params"`
}

// Range is an optional inclusive byte range into the served stream.
// Nil pointer fields mean "not given"; Normalize resolves them against the
// file size before serving.
type Range struct {
	Start *int64 `json:"start"`
	End   *int64 `json:"end"`
}

// Stat describes the storage-level properties of the served file
// (original or variant).
type Stat struct {
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
