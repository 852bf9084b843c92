// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest wires the discovery walker, the language parser registry,
// and the index store together into the two operations spec section 2's
// data-flow diagram names for ingest: a full (re)index and an incremental
// reindex restricted to changed/new/deleted files.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/codeindexer/codeindex/internal/discover"
	"github.com/codeindexer/codeindex/internal/gitprobe"
	"github.com/codeindexer/codeindex/internal/indexstore"
	"github.com/codeindexer/codeindex/internal/langparse"
	"github.com/codeindexer/codeindex/internal/obsmetrics"
	"github.com/codeindexer/codeindex/internal/querytools"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// Result summarizes one ingest call for the host's response envelope.
type Result struct {
	FilesIndexed  int
	SymbolsFound  int
	Languages     map[string]int
	Warnings      []string
	Incremental   bool
	ChangedFiles  []string
	NewFiles      []string
	DeletedFiles  []string
}

// Run performs a full index build of root into the store under
// owner/name: walk, parse every file in parallel, fill each symbol's
// Summary via summarizer (nil uses the deterministic fallback), and save.
func Run(ctx context.Context, store *indexstore.Store, registry *langparse.Registry, summarizer querytools.Summarizer, owner, name, root string) (Result, error) {
	files, discoverWarnings, err := discover.Walk(root)
	if err != nil {
		return Result{}, fmt.Errorf("discover: %w", err)
	}

	symbols, languages, parseWarnings := parseAll(ctx, registry, files)
	querytools.ApplySummaries(ctx, symbols, summarizer)

	rawFiles := make(map[string][]byte, len(files))
	sourceFiles := make([]string, 0, len(files))
	for _, f := range files {
		rawFiles[f.Path] = f.Content
		sourceFiles = append(sourceFiles, f.Path)
	}

	head := gitprobe.HEAD(root)

	if err := store.Save(owner, name, sourceFiles, symbols, rawFiles, languages, nil, head); err != nil {
		return Result{}, fmt.Errorf("save: %w", err)
	}

	return Result{
		FilesIndexed: len(files),
		SymbolsFound: len(symbols),
		Languages:    languages,
		Warnings:     mergeWarnings(discoverWarnings, parseWarnings),
	}, nil
}

// RunIncremental re-walks root, diffs it against the stored manifest via
// DetectChanges, reparses only changed ∪ new, and calls IncrementalSave.
// Per spec section 4.4, IncrementalSave requires a prior manifest; callers
// must Run a full index first, or RunIncremental returns an error wrapping
// indexstore.ErrMissing.
func RunIncremental(ctx context.Context, store *indexstore.Store, registry *langparse.Registry, summarizer querytools.Summarizer, owner, name, root string) (Result, error) {
	files, discoverWarnings, err := discover.Walk(root)
	if err != nil {
		return Result{}, fmt.Errorf("discover: %w", err)
	}

	current := make(map[string][]byte, len(files))
	byPath := make(map[string]discover.File, len(files))
	for _, f := range files {
		current[f.Path] = f.Content
		byPath[f.Path] = f
	}

	changed, newFiles, deleted, err := store.DetectChanges(owner, name, current)
	if err != nil {
		return Result{}, fmt.Errorf("detect changes: %w", err)
	}

	toReparse := make([]discover.File, 0, len(changed)+len(newFiles))
	for _, p := range append(append([]string(nil), changed...), newFiles...) {
		toReparse = append(toReparse, byPath[p])
	}

	freshSymbols, languages, parseWarnings := parseAll(ctx, registry, toReparse)
	querytools.ApplySummaries(ctx, freshSymbols, summarizer)

	rawFiles := make(map[string][]byte, len(toReparse))
	for _, f := range toReparse {
		rawFiles[f.Path] = f.Content
	}

	if err := store.IncrementalSave(owner, name, changed, newFiles, deleted, freshSymbols, rawFiles, languages); err != nil {
		return Result{}, fmt.Errorf("incremental save: %w", err)
	}

	return Result{
		FilesIndexed: len(changed) + len(newFiles),
		SymbolsFound: len(freshSymbols),
		Languages:    languages,
		Warnings:     mergeWarnings(discoverWarnings, parseWarnings),
		Incremental:  true,
		ChangedFiles: changed,
		NewFiles:     newFiles,
		DeletedFiles: deleted,
	}, nil
}

// parseAll dispatches every file to the registry, concurrently, matching
// spec section 5's "parallel parsing across files is permitted and
// encouraged" — the parser adapter is pure and stateless per file, so
// results are independent and recombined in discovery order afterward.
func parseAll(ctx context.Context, registry *langparse.Registry, files []discover.File) ([]*symbol.Symbol, map[string]int, []string) {
	type outcome struct {
		result langparse.Result
		err    error
	}
	outcomes := make([]outcome, len(files))

	sem := make(chan struct{}, maxParseWorkers())
	done := make(chan int, len(files))
	for i, f := range files {
		sem <- struct{}{}
		go func(i int, f discover.File) {
			defer func() { <-sem; done <- i }()
			start := time.Now()
			res, err := registry.Parse(ctx, f.Content, f.Path, f.Language)
			obsmetrics.RecordParse(ctx, string(f.Language), time.Since(start), len(res.Symbols), err != nil)
			outcomes[i] = outcome{result: res, err: err}
		}(i, f)
	}
	for range files {
		<-done
	}

	var symbols []*symbol.Symbol
	var warnings []string
	languages := make(map[string]int)

	for i, f := range files {
		oc := outcomes[i]
		if oc.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", f.Path, oc.err))
			continue
		}
		warnings = append(warnings, oc.result.Warnings...)
		symbols = append(symbols, oc.result.Symbols...)
		languages[string(f.Language)]++
	}

	sort.Strings(warnings)
	return symbols, languages, warnings
}

func mergeWarnings(discoverWarnings []discover.Warning, parseWarnings []string) []string {
	out := make([]string, 0, len(discoverWarnings)+len(parseWarnings))
	for _, w := range discoverWarnings {
		out = append(out, fmt.Sprintf("%s: %s", w.Path, w.Kind))
	}
	out = append(out, parseWarnings...)
	return out
}

func maxParseWorkers() int {
	return 8
}
