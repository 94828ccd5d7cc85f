// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transform

import (
	"fmt"
	"net/url"
	"strings"
)

// OSSDriverName identifies the storage driver eligible for remote offload:
// Alibaba Cloud OSS processes images through the x-oss-process query
// parameter, so eligible requests skip the local pipeline entirely.
const OSSDriverName = "alioss"

// OSSSizeLimit is the provider's hard limit for remote processing (20 MiB);
// larger sources fall back to the local pipeline.
const OSSSizeLimit = 20 * 1024 * 1024

// ossFitModes maps resize fit modes to OSS resize modes. Anything missing
// here is deliberately ineligible rather than guessed.
var ossFitModes = map[string]string{
	FitContain: "lfit",
	FitCover:   "fill",
	FitInside:  "lfit",
	FitOutside: "fit",
	FitFill:    "fill",
}

// EncodeOSSProcess rewrites a public OSS URL with the provider's native
// image-processing query parameters for the given operation list. It returns
// "" when any operation or fit mode is not expressible remotely, forcing the
// caller back to the local pipeline.
func EncodeOSSProcess(rawURL string, ops []Operation) string {
	if len(ops) == 0 {
		return ""
	}

	var steps []string
	for _, op := range ops {
		if op.Name != OpResize {
			// Only resize is offloaded; anything else needs local work.
			return ""
		}

		resize, err := decodeResizeArgs(op.Args)
		if err != nil {
			return ""
		}

		fit := resize.Fit
		if fit == "" {
			fit = FitCover
		}
		mode, ok := ossFitModes[fit]
		if !ok {
			return ""
		}

		step := fmt.Sprintf("image/resize,m_%s", mode)
		if resize.Width > 0 {
			step += fmt.Sprintf(",w_%d", resize.Width)
		}
		if resize.Height > 0 {
			step += fmt.Sprintf(",h_%d", resize.Height)
		}
		steps = append(steps, step)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	query := parsed.Query()
	query.Set("x-oss-process", strings.Join(steps, "/"))
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
