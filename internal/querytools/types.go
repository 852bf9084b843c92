// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package querytools

import "github.com/codeindexer/codeindex/internal/symbol"

// ListReposResult is list_repos's return shape.
type ListReposResult struct {
	Count int      `json:"count"`
	Repos []string `json:"repos"`
	Meta  Meta     `json:"_meta"`
}

// RepoOutlineResult is get_repo_outline's return shape.
type RepoOutlineResult struct {
	Repo        string         `json:"repo"`
	IndexedAt   string         `json:"indexed_at"`
	FileCount   int            `json:"file_count"`
	SymbolCount int            `json:"symbol_count"`
	Languages   map[string]int `json:"languages"`
	Directories map[string]int `json:"directories"`
	SymbolKinds map[string]int `json:"symbol_kinds"`
	Meta        Meta           `json:"_meta"`
}

// FileTreeResult is get_file_tree's return shape.
type FileTreeResult struct {
	Files []string `json:"files"`
	Meta  Meta     `json:"_meta"`
}

// FileOutlineResult is get_file_outline's return shape.
type FileOutlineResult struct {
	File    string           `json:"file"`
	Symbols []*symbol.Symbol `json:"symbols"`
	Meta    Meta             `json:"_meta"`
}

// SymbolResult is one get_symbol / get_symbols success payload.
type SymbolResult struct {
	Symbol        *symbol.Symbol `json:"symbol"`
	Source        string         `json:"source"`
	ContextBefore []string       `json:"context_before,omitempty"`
	ContextAfter  []string       `json:"context_after,omitempty"`
	Verified      *bool          `json:"verified,omitempty"`
}

// GetSymbolResult is get_symbol's return shape.
type GetSymbolResult struct {
	SymbolResult
	Meta Meta `json:"_meta"`
}

// GetSymbolsResult is get_symbols' return shape: successes keyed by id,
// failures collected into Errors (one entry per bad id, per spec section
// 7's batch-aggregation policy).
type GetSymbolsResult struct {
	Symbols map[string]SymbolResult `json:"symbols"`
	Errors  map[string]string       `json:"errors,omitempty"`
	Meta    Meta                    `json:"_meta"`
}

// SearchSymbolsResult is search_symbols' return shape.
type SearchSymbolsResult struct {
	Results []*symbol.Symbol `json:"results"`
	Meta    Meta             `json:"_meta"`
}

// TextHit is one line-level match within search_text.
type TextHit struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// SearchTextResult is search_text's return shape.
type SearchTextResult struct {
	Hits      []TextHit `json:"hits"`
	Truncated bool      `json:"truncated"`
	Meta      Meta      `json:"_meta"`
}

// InvalidateCacheResult is invalidate_cache's return shape.
type InvalidateCacheResult struct {
	Removed bool `json:"removed"`
	Meta    Meta `json:"_meta"`
}
