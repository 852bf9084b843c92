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

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/codeindexer/codeindex/internal/codeindex"
	"github.com/codeindexer/codeindex/internal/config"
	"github.com/codeindexer/codeindex/internal/indexstore"
	"github.com/codeindexer/codeindex/internal/obsmetrics"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// ListRepos returns every repository with a readable manifest under the
// store's base path.
func ListRepos(ctx context.Context, store *indexstore.Store, _ struct{}) (ListReposResult, error) {
	start := time.Now()
	repos, err := store.ListRepos()
	if err != nil {
		return ListReposResult{}, err
	}
	return ListReposResult{Count: len(repos), Repos: repos, Meta: newMeta(start)}, nil
}

// GetRepoOutline summarizes one repo's manifest: counts, per-language
// totals, top-level directory file counts, and per-kind symbol counts.
func GetRepoOutline(ctx context.Context, store *indexstore.Store, repoIdentifier string) (RepoOutlineResult, error) {
	start := time.Now()

	owner, name, err := resolveRepo(store, repoIdentifier)
	if err != nil {
		return RepoOutlineResult{}, err
	}
	m, err := store.Load(owner, name)
	if err != nil {
		return RepoOutlineResult{}, err
	}

	directories := make(map[string]int)
	for _, f := range m.SourceFiles {
		directories[topLevelDir(f)]++
	}

	symbolKinds := make(map[string]int)
	for _, sy := range m.Symbols {
		symbolKinds[string(sy.Kind)]++
	}

	return RepoOutlineResult{
		Repo:        m.Repo,
		IndexedAt:   m.IndexedAt,
		FileCount:   len(m.SourceFiles),
		SymbolCount: len(m.Symbols),
		Languages:   m.Languages,
		Directories: directories,
		SymbolKinds: symbolKinds,
		Meta:        newMeta(start),
	}, nil
}

func topLevelDir(file string) string {
	if i := strings.IndexByte(file, '/'); i >= 0 {
		return file[:i]
	}
	return "."
}

// GetFileTree lists source_files, optionally filtered to those with the
// given path prefix (spec section 10's prefix-filtering supplement).
func GetFileTree(ctx context.Context, store *indexstore.Store, repoIdentifier, prefix string) (FileTreeResult, error) {
	start := time.Now()

	owner, name, err := resolveRepo(store, repoIdentifier)
	if err != nil {
		return FileTreeResult{}, err
	}
	m, err := store.Load(owner, name)
	if err != nil {
		return FileTreeResult{}, err
	}

	if prefix == "" {
		return FileTreeResult{Files: m.SourceFiles, Meta: newMeta(start)}, nil
	}
	var files []string
	for _, f := range m.SourceFiles {
		if strings.HasPrefix(f, prefix) {
			files = append(files, f)
		}
	}
	return FileTreeResult{Files: files, Meta: newMeta(start)}, nil
}

// GetFileOutline returns every symbol recorded against one file, in line
// order.
func GetFileOutline(ctx context.Context, store *indexstore.Store, repoIdentifier, filePath string) (FileOutlineResult, error) {
	start := time.Now()

	owner, name, err := resolveRepo(store, repoIdentifier)
	if err != nil {
		return FileOutlineResult{}, err
	}
	m, err := store.Load(owner, name)
	if err != nil {
		return FileOutlineResult{}, err
	}

	var syms []*symbol.Symbol
	for _, sy := range m.Symbols {
		if sy.File == filePath {
			syms = append(syms, sy)
		}
	}
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Line < syms[j].Line })

	return FileOutlineResult{File: filePath, Symbols: syms, Meta: newMeta(start)}, nil
}

// GetSymbolArgs bundles get_symbol's optional flags.
type GetSymbolArgs struct {
	ID           string
	Verify       bool
	ContextLines int
}

// GetSymbol retrieves one symbol's metadata and exact source bytes,
// optionally with surrounding context lines and a content-hash
// verification flag (spec section 10).
func GetSymbol(ctx context.Context, store *indexstore.Store, repoIdentifier string, args GetSymbolArgs) (GetSymbolResult, error) {
	start := time.Now()
	owner, name, err := resolveRepo(store, repoIdentifier)
	if err != nil {
		return GetSymbolResult{}, err
	}
	res, err := getSymbolResult(store, owner, name, args)
	if err != nil {
		return GetSymbolResult{}, err
	}
	return GetSymbolResult{SymbolResult: res, Meta: newMeta(start)}, nil
}

func getSymbolResult(store *indexstore.Store, owner, name string, args GetSymbolArgs) (SymbolResult, error) {
	m, err := store.Load(owner, name)
	if err != nil {
		return SymbolResult{}, err
	}

	var sym *symbol.Symbol
	for _, sy := range m.Symbols {
		if sy.ID == args.ID {
			sym = sy
			break
		}
	}
	if sym == nil {
		return SymbolResult{}, indexstore.ErrSymbolNotFound
	}

	source, err := store.GetSymbolContent(owner, name, args.ID)
	if err != nil {
		return SymbolResult{}, err
	}

	res := SymbolResult{Symbol: sym, Source: source}

	if args.ContextLines > 0 {
		before, after, err := readContextLines(store, owner, name, sym, args.ContextLines)
		if err == nil {
			res.ContextBefore, res.ContextAfter = before, after
		}
	}

	if args.Verify {
		ok, err := verifySymbol(store, owner, name, sym)
		if err == nil {
			res.Verified = &ok
		}
	}

	return res, nil
}

func readContextLines(store *indexstore.Store, owner, name string, sym *symbol.Symbol, contextLines int) ([]string, []string, error) {
	data, err := store.ReadMirrorFile(owner, name, sym.File)
	if err != nil {
		return nil, nil, err
	}
	lines := strings.Split(string(data), "\n")

	beforeStart := sym.Line - 1 - contextLines
	if beforeStart < 0 {
		beforeStart = 0
	}
	beforeEnd := sym.Line - 1
	if beforeEnd > len(lines) {
		beforeEnd = len(lines)
	}
	var before []string
	if beforeStart < beforeEnd {
		before = lines[beforeStart:beforeEnd]
	}

	afterStart := sym.EndLine
	if afterStart > len(lines) {
		afterStart = len(lines)
	}
	afterEnd := afterStart + contextLines
	if afterEnd > len(lines) {
		afterEnd = len(lines)
	}
	var after []string
	if afterStart < afterEnd {
		after = lines[afterStart:afterEnd]
	}

	return before, after, nil
}

func verifySymbol(store *indexstore.Store, owner, name string, sym *symbol.Symbol) (bool, error) {
	data, err := store.ReadMirrorFile(owner, name, sym.File)
	if err != nil {
		return false, err
	}
	end := sym.ByteOffset + sym.ByteLength
	if sym.ByteOffset < 0 || end > len(data) {
		return false, nil
	}
	sum := sha256.Sum256(data[sym.ByteOffset:end])
	return hex.EncodeToString(sum[:]) == sym.ContentHash, nil
}

// GetSymbols batches GetSymbol over ids, separating successes from
// per-id failures instead of failing the whole call on the first bad id
// (spec section 7's batch policy, grounded on indexstore.BatchError).
func GetSymbols(ctx context.Context, store *indexstore.Store, repoIdentifier string, ids []string) (GetSymbolsResult, error) {
	start := time.Now()
	owner, name, err := resolveRepo(store, repoIdentifier)
	if err != nil {
		return GetSymbolsResult{}, err
	}

	symbols := make(map[string]SymbolResult, len(ids))
	var batchErr indexstore.BatchError
	errsByID := make(map[string]string)

	for _, id := range ids {
		res, err := getSymbolResult(store, owner, name, GetSymbolArgs{ID: id})
		if err != nil {
			batchErr.Errors = append(batchErr.Errors, fmt.Errorf("%s: %w", id, err))
			errsByID[id] = err.Error()
			continue
		}
		symbols[id] = res
	}

	result := GetSymbolsResult{Symbols: symbols, Meta: newMeta(start)}
	if len(batchErr.Errors) > 0 {
		result.Errors = errsByID
	}
	return result, nil
}

// SearchArgs bundles search_symbols' optional filters.
type SearchArgs struct {
	Query       string
	Kind        symbol.Kind
	FilePattern string
	Language    symbol.Language
	MaxResults  int
}

// SearchSymbols ranks and filters a repo's symbols against a query,
// capping the result count at MaxResults (default spec section 4.5's 10).
func SearchSymbols(ctx context.Context, store *indexstore.Store, repoIdentifier string, args SearchArgs) (SearchSymbolsResult, error) {
	start := time.Now()

	owner, name, err := resolveRepo(store, repoIdentifier)
	if err != nil {
		return SearchSymbolsResult{}, err
	}
	m, err := store.Load(owner, name)
	if err != nil {
		return SearchSymbolsResult{}, err
	}

	idx := codeindex.New(m.Symbols)
	results, err := idx.Search(ctx, args.Query, codeindex.Filter{
		Kind:     args.Kind,
		FileGlob: args.FilePattern,
		Language: args.Language,
	})
	if err != nil {
		return SearchSymbolsResult{}, err
	}

	limit := args.MaxResults
	if limit <= 0 {
		limit = config.DefaultResultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	obsmetrics.RecordSearch(ctx, "search_symbols", time.Since(start), len(results))
	return SearchSymbolsResult{Results: results, Meta: newMeta(start)}, nil
}

// SearchTextArgs bundles search_text's optional filters.
type SearchTextArgs struct {
	Query       string
	FilePattern string
	MaxResults  int
}

// SearchText performs a line-level substring search across a repo's
// mirrored files, in sorted source_files order, stopping once MaxResults
// total hits accumulate (spec section 9's traversal-order resolution).
func SearchText(ctx context.Context, store *indexstore.Store, repoIdentifier string, args SearchTextArgs) (SearchTextResult, error) {
	start := time.Now()

	owner, name, err := resolveRepo(store, repoIdentifier)
	if err != nil {
		return SearchTextResult{}, err
	}
	m, err := store.Load(owner, name)
	if err != nil {
		return SearchTextResult{}, err
	}

	limit := args.MaxResults
	if limit <= 0 {
		limit = config.DefaultSearchTextLimit
	}

	files := append([]string(nil), m.SourceFiles...)
	sort.Strings(files)

	var hits []TextHit
	truncated := false

fileLoop:
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return SearchTextResult{}, err
		}
		if args.FilePattern != "" && !matchesPattern(args.FilePattern, f) {
			continue
		}
		data, err := store.ReadMirrorFile(owner, name, f)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(string(data), "\n") {
			if !strings.Contains(line, args.Query) {
				continue
			}
			if len(hits) >= limit {
				truncated = true
				break fileLoop
			}
			hits = append(hits, TextHit{File: f, Line: i + 1, Text: line})
		}
	}

	obsmetrics.RecordSearch(ctx, "search_text", time.Since(start), len(hits))
	return SearchTextResult{Hits: hits, Truncated: truncated, Meta: newMeta(start)}, nil
}

// matchesPattern applies shell-glob semantics against the full path,
// falling back to matching against each trailing part of the path after a
// "/" (so a basename pattern matches at any depth), the same rule as
// codeindex.Search's file_glob.
func matchesPattern(pattern, file string) bool {
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

// InvalidateCache deletes a repo's manifest and mirror tree.
func InvalidateCache(ctx context.Context, store *indexstore.Store, repoIdentifier string) (InvalidateCacheResult, error) {
	start := time.Now()
	owner, name, err := resolveRepo(store, repoIdentifier)
	if err != nil {
		return InvalidateCacheResult{}, err
	}
	removed, err := store.DeleteIndex(owner, name)
	if err != nil {
		return InvalidateCacheResult{}, err
	}
	return InvalidateCacheResult{Removed: removed, Meta: newMeta(start)}, nil
}
