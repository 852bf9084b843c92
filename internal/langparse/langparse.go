// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package langparse is the language parser adapter contract: pure,
// deterministic functions from (source bytes, relative path, language) to
// an ordered sequence of symbol.Symbol records, with summary left empty for
// a later summarizer pass. See spec section 4.1.
package langparse

import (
	"context"
	"fmt"
	"sync"

	"github.com/codeindexer/codeindex/internal/symbol"
)

// DefaultMaxFileSize bounds the content a language adapter will attempt to
// parse; larger files are skipped with a warning rather than handed to the
// grammar. internal/config.DefaultMaxFileSize mirrors this value for the
// host-facing configuration surface.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Result is the output of parsing one file.
type Result struct {
	// Symbols is ordered by source start-byte, parent ids already resolved
	// and overload-suffix disambiguation already applied.
	Symbols []*symbol.Symbol

	// Warnings collects non-fatal problems (grammar load failure, total
	// parse failure). Never fatal at the pipeline level.
	Warnings []string
}

// Adapter parses one file's content into symbols for a fixed language.
// Implementations must be pure: identical inputs always produce identical
// (including order) outputs.
type Adapter interface {
	Parse(ctx context.Context, content []byte, filePath string) (Result, error)
	Language() symbol.Language
}

// Registry is a process-lifetime lookup of Adapter by language tag. Each
// Adapter obtains its tree-sitter grammar anew on every Parse call; neither
// the Registry nor the adapters cache grammars.
type Registry struct {
	mu       sync.RWMutex
	adapters map[symbol.Language]Adapter
}

// NewRegistry builds a Registry pre-populated with the six supported
// language adapters.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[symbol.Language]Adapter)}
	for _, a := range defaultAdapters() {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for its Language().
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Language()] = a
}

// Parse dispatches to the adapter registered for lang. A missing grammar
// (no adapter registered) yields an empty, non-fatal result per spec
// section 4.1's failure-mode policy.
func (r *Registry) Parse(ctx context.Context, content []byte, filePath string, lang symbol.Language) (Result, error) {
	r.mu.RLock()
	a, ok := r.adapters[lang]
	r.mu.RUnlock()

	if !ok {
		return Result{Warnings: []string{fmt.Sprintf("no parser adapter registered for language %q", lang)}}, nil
	}
	return a.Parse(ctx, content, filePath)
}
