// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package indexstore is the persistent, on-disk index: one JSON manifest
// plus a mirrored content tree per repository, atomic writes, schema version
// gating, content-hash change detection, incremental save, and byte-range
// retrieval. See spec sections 4.4 and 6.
package indexstore

import (
	"fmt"

	"github.com/codeindexer/codeindex/internal/symbol"
)

// SchemaVersion is the current manifest format version (spec section 6). A
// manifest with IndexVersion greater than this constant loads as "missing"
// rather than raising, per the schema-gating invariant (spec section 8.6).
const SchemaVersion = 2

// Manifest is the on-disk, per-repository index record. Field order and
// json tags match spec section 6 exactly; unknown top-level fields are
// ignored on load via the standard library's default unmarshal behavior.
type Manifest struct {
	Repo        string            `json:"repo"`
	Owner       string            `json:"owner"`
	Name        string            `json:"name"`
	IndexedAt   string            `json:"indexed_at"`
	SourceFiles []string          `json:"source_files"`
	Languages   map[string]int    `json:"languages"`
	Symbols     []*symbol.Symbol  `json:"symbols"`
	IndexVersion int              `json:"index_version"`
	FileHashes  map[string]string `json:"file_hashes"`
	GitHead     string            `json:"git_head"`
}

// repoKey is the {owner}-{name} label used to name the manifest file and
// the mirror directory.
func repoKey(owner, name string) string {
	return owner + "-" + name
}

// repoLabel is the "{owner}/{name}" label stored in Manifest.Repo and used
// as the default repo identifier query tools accept.
func repoLabel(owner, name string) string {
	return owner + "/" + name
}

func validateOwnerName(owner, name string) error {
	if owner == "" {
		return fmt.Errorf("%w: owner must not be empty", ErrInvalidInput)
	}
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	return nil
}
