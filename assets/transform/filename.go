// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transform

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
)

// VariantName derives the cache filename for a transformed variant.
//
//   - Empty operation list: the base filename is returned unchanged.
//   - An explicit suffix overrides the hash: "stem.{suffix}{ext}".
//   - Otherwise "stem__{hash}{ext}" where the hash covers the ordered
//     operation list, so operation order and argument values both affect it
//     and equal lists collide deliberately across process restarts.
//
// newExtension (including the leading dot) replaces the base extension when
// the operation list changes the output format.
func VariantName(baseFilename string, ops []Operation, explicitSuffix string, newExtension string) string {
	if len(ops) == 0 {
		return baseFilename
	}

	ext := filepath.Ext(baseFilename)
	stem := strings.TrimSuffix(baseFilename, ext)
	if newExtension != "" {
		ext = newExtension
	}

	if explicitSuffix != "" {
		return fmt.Sprintf("%s.%s%s", stem, explicitSuffix, ext)
	}

	return fmt.Sprintf("%s__%s%s", stem, HashOperations(ops), ext)
}

// HashOperations computes the deterministic cache-key hash of an ordered
// operation list. json.Marshal of the fixed-shape Operation struct keeps the
// serialization stable, and xxh3 is seedless, so the value survives process
// restarts.
func HashOperations(ops []Operation) string {
	encoded, err := json.Marshal(ops)
	if err != nil {
		// Operation lists are built from plain values and cannot fail to
		// marshal; keep the signature hash-only.
		encoded = []byte(fmt.Sprintf("%v", ops))
	}
	return fmt.Sprintf("%016x", xxh3.Hash(encoded))
}
