// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package codeindex is the in-memory, read-only collection of symbol
// records for one repository: lookup by id, filtered ranked search, and
// the unique sorted file list. A new CodeIndex replaces the previous one
// wholesale on every load/save; nothing here mutates in place.
package codeindex

import (
	"context"
	"path"
	"sort"
	"sync"

	"github.com/codeindexer/codeindex/internal/scorer"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// searchCheckInterval bounds how often Search polls ctx.Err() on a large
// index, matching the teacher's search-cancellation cadence.
const searchCheckInterval = 1000

// CodeIndex provides O(1) lookup by id and linear-scan ranked search over
// one repository's symbol set.
//
// Thread Safety: CodeIndex is safe for concurrent reads. It is built once
// (via New) and never mutated afterward; callers needing a new symbol set
// construct a new CodeIndex rather than mutating an existing one.
type CodeIndex struct {
	mu      sync.RWMutex
	byID    map[string]*symbol.Symbol
	ordered []*symbol.Symbol
	files   []string
}

// New builds a CodeIndex from an ordered symbol slice. The slice's order is
// preserved for tie-breaking in Search (stable sort by descending score).
func New(symbols []*symbol.Symbol) *CodeIndex {
	idx := &CodeIndex{
		byID:    make(map[string]*symbol.Symbol, len(symbols)),
		ordered: append([]*symbol.Symbol(nil), symbols...),
	}

	fileSet := make(map[string]bool)
	for _, s := range symbols {
		idx.byID[s.ID] = s
		fileSet[s.File] = true
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)
	idx.files = files

	return idx
}

// Get returns the symbol with the given id, or nil if absent.
func (idx *CodeIndex) Get(id string) *symbol.Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.byID[id]
}

// Files returns the unique sorted sequence of file paths carrying at least
// one symbol.
func (idx *CodeIndex) Files() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, len(idx.files))
	copy(out, idx.files)
	return out
}

// Filter narrows a search by exact symbol kind and/or file glob.
type Filter struct {
	Kind     symbol.Kind
	FileGlob string
	Language symbol.Language
}

// Search filters the index by Filter, scores every surviving symbol against
// q, keeps only score > 0, and returns them sorted by descending score with
// ties broken by original insertion order (stable sort).
//
// file_glob is matched with shell-glob semantics against the full file path;
// if that fails to match, the pattern is additionally tried against every
// trailing part of the path that follows a "/", so a basename pattern
// matches a file at any depth.
func (idx *CodeIndex) Search(ctx context.Context, q string, filter Filter) ([]*symbol.Symbol, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	query := scorer.NewQuery(q)

	type scored struct {
		sym   *symbol.Symbol
		score int
		order int
	}

	var results []scored
	for i, s := range idx.ordered {
		if i%searchCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		if filter.Language != "" && s.Language != filter.Language {
			continue
		}
		if filter.FileGlob != "" && !matchFileGlob(filter.FileGlob, s.File) {
			continue
		}

		score := scorer.Score(s, query)
		if score <= 0 {
			continue
		}
		results = append(results, scored{sym: s, score: score, order: i})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].order < results[j].order
	})

	out := make([]*symbol.Symbol, len(results))
	for i, r := range results {
		out[i] = r.sym
	}
	return out, nil
}

// matchFileGlob applies shell-glob semantics against the full path, falling
// back to matching the pattern against each trailing part of the path after
// a "/" (the basename and every longer suffix).
func matchFileGlob(pattern, file string) bool {
	if ok, err := path.Match(pattern, file); err == nil && ok {
		return true
	}
	for i := 0; i < len(file); i++ {
		if file[i] != '/' {
			continue
		}
		if ok, err := path.Match(pattern, file[i+1:]); err == nil && ok {
			return true
		}
	}
	return false
}
