// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package querytools implements the read-only query operations exposed
// over an index built by internal/indexstore: listing repos, outlines,
// symbol/text search, and byte-exact symbol retrieval. Every operation is a
// plain function of the form func(ctx, *indexstore.Store, args) (Result,
// error) with no transport dependency, so a host process can wrap these
// over whatever dispatch mechanism it chooses.
package querytools

import (
	"time"

	"github.com/google/uuid"
)

// Meta is attached to every query tool response, carrying at minimum the
// handler's wall-clock duration, per spec section 4.5.
type Meta struct {
	TimingMs  int64  `json:"timing_ms"`
	RequestID string `json:"request_id"`
}

// newMeta stamps a Meta for one call, generating a fresh request id the
// way the teacher's HTTP layer mints one per inbound request.
func newMeta(start time.Time) Meta {
	return Meta{
		TimingMs:  time.Since(start).Milliseconds(),
		RequestID: uuid.NewString(),
	}
}
