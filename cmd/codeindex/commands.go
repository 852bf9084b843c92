// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeindexer/codeindex/internal/config"
	"github.com/codeindexer/codeindex/internal/indexstore"
	"github.com/codeindexer/codeindex/internal/ingest"
	"github.com/codeindexer/codeindex/internal/langparse"
	"github.com/codeindexer/codeindex/internal/querytools"
	"github.com/codeindexer/codeindex/internal/symbol"
)

var (
	basePathFlag string

	rootCmd = &cobra.Command{
		Use:   "codeindex",
		Short: "Index and query source repositories by symbol",
		Long: `codeindex extracts named symbols from a repository's source files,
persists a searchable index plus verbatim file content, and answers
byte-exact retrieval, ranked symbol search, and substring search queries
against it.`,
	}

	ingestCmd = &cobra.Command{
		Use:   "ingest [owner/name] [path]",
		Short: "Build a full index of a local checkout",
		Args:  cobra.ExactArgs(2),
		RunE:  runIngest,
	}

	reindexCmd = &cobra.Command{
		Use:   "reindex [owner/name] [path]",
		Short: "Incrementally reindex a previously ingested checkout",
		Args:  cobra.ExactArgs(2),
		RunE:  runReindex,
	}

	listReposCmd = &cobra.Command{
		Use:   "list-repos",
		Short: "List every indexed repository",
		RunE:  runListRepos,
	}

	outlineCmd = &cobra.Command{
		Use:   "repo-outline [repo]",
		Short: "Summarize one repository's index",
		Args:  cobra.ExactArgs(1),
		RunE:  runRepoOutline,
	}

	fileTreeCmd = &cobra.Command{
		Use:   "file-tree [repo]",
		Short: "List a repository's indexed files",
		Args:  cobra.ExactArgs(1),
		RunE:  runFileTree,
	}
	fileTreePrefix string

	fileOutlineCmd = &cobra.Command{
		Use:   "file-outline [repo] [file]",
		Short: "List every symbol in one file",
		Args:  cobra.ExactArgs(2),
		RunE:  runFileOutline,
	}

	getSymbolCmd = &cobra.Command{
		Use:   "get-symbol [repo] [id]",
		Short: "Retrieve one symbol's metadata and exact source",
		Args:  cobra.ExactArgs(2),
		RunE:  runGetSymbol,
	}
	getSymbolVerify       bool
	getSymbolContextLines int

	getSymbolsCmd = &cobra.Command{
		Use:   "get-symbols [repo] [id...]",
		Short: "Batch-retrieve several symbols by id",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runGetSymbols,
	}

	searchSymbolsCmd = &cobra.Command{
		Use:   "search-symbols [repo] [query]",
		Short: "Rank symbols by name/signature/summary/keyword match",
		Args:  cobra.ExactArgs(2),
		RunE:  runSearchSymbols,
	}
	searchKind       string
	searchLanguage   string
	searchFilePat    string
	searchMaxResults int

	searchTextCmd = &cobra.Command{
		Use:   "search-text [repo] [query]",
		Short: "Substring-search across a repository's file bodies",
		Args:  cobra.ExactArgs(2),
		RunE:  runSearchText,
	}
	searchTextFilePat    string
	searchTextMaxResults int

	invalidateCmd = &cobra.Command{
		Use:   "invalidate [repo]",
		Short: "Delete a repository's manifest and mirror",
		Args:  cobra.ExactArgs(1),
		RunE:  runInvalidate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&basePathFlag, "base-path", "", "index store base directory (default: $CODE_INDEX_HOME or ~/.code-index)")

	fileTreeCmd.Flags().StringVar(&fileTreePrefix, "prefix", "", "only list files under this path prefix")

	getSymbolCmd.Flags().BoolVar(&getSymbolVerify, "verify", false, "recompute and check the content hash")
	getSymbolCmd.Flags().IntVar(&getSymbolContextLines, "context-lines", 0, "lines of context before/after the symbol")

	searchSymbolsCmd.Flags().StringVar(&searchKind, "kind", "", "filter by symbol kind")
	searchSymbolsCmd.Flags().StringVar(&searchLanguage, "language", "", "filter by language")
	searchSymbolsCmd.Flags().StringVar(&searchFilePat, "file-pattern", "", "filter by shell-glob file pattern")
	searchSymbolsCmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "cap on returned results (default 10)")

	searchTextCmd.Flags().StringVar(&searchTextFilePat, "file-pattern", "", "filter by shell-glob file pattern")
	searchTextCmd.Flags().IntVar(&searchTextMaxResults, "max-results", 0, "cap on returned results (default 20)")

	rootCmd.AddCommand(
		ingestCmd, reindexCmd, listReposCmd, outlineCmd, fileTreeCmd, fileOutlineCmd,
		getSymbolCmd, getSymbolsCmd, searchSymbolsCmd, searchTextCmd, invalidateCmd,
	)
}

func openStore() (*indexstore.Store, error) {
	base, err := config.ResolveBasePath(basePathFlag)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	return indexstore.NewIndexStore(base), nil
}

func splitOwnerName(repo string) (owner, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repo identifier must be owner/name, got %q", repo)
	}
	return parts[0], parts[1], nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	owner, name, err := splitOwnerName(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := ingest.Run(cmd.Context(), store, langparse.NewRegistry(), nil, owner, name, args[1])
	if err != nil {
		return emitError(err)
	}
	logger.Info("ingest complete", "repo", args[0], "files", res.FilesIndexed, "symbols", res.SymbolsFound)
	return emitJSON(res)
}

func runReindex(cmd *cobra.Command, args []string) error {
	owner, name, err := splitOwnerName(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := ingest.RunIncremental(cmd.Context(), store, langparse.NewRegistry(), nil, owner, name, args[1])
	if err != nil {
		return emitError(err)
	}
	logger.Info("reindex complete", "repo", args[0], "changed", len(res.ChangedFiles), "new", len(res.NewFiles), "deleted", len(res.DeletedFiles))
	return emitJSON(res)
}

func runListRepos(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.ListRepos(cmd.Context(), store, struct{}{})
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

func runRepoOutline(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.GetRepoOutline(cmd.Context(), store, args[0])
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

func runFileTree(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.GetFileTree(cmd.Context(), store, args[0], fileTreePrefix)
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

func runFileOutline(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.GetFileOutline(cmd.Context(), store, args[0], args[1])
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

func runGetSymbol(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.GetSymbol(cmd.Context(), store, args[0], querytools.GetSymbolArgs{
		ID:           args[1],
		Verify:       getSymbolVerify,
		ContextLines: getSymbolContextLines,
	})
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

func runGetSymbols(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.GetSymbols(cmd.Context(), store, args[0], args[1:])
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

func runSearchSymbols(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.SearchSymbols(cmd.Context(), store, args[0], querytools.SearchArgs{
		Query:       args[1],
		Kind:        symbol.Kind(searchKind),
		FilePattern: searchFilePat,
		Language:    symbol.Language(searchLanguage),
		MaxResults:  searchMaxResults,
	})
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

func runSearchText(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.SearchText(cmd.Context(), store, args[0], querytools.SearchTextArgs{
		Query:       args[1],
		FilePattern: searchTextFilePat,
		MaxResults:  searchTextMaxResults,
	})
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	res, err := querytools.InvalidateCache(cmd.Context(), store, args[0])
	if err != nil {
		return emitError(err)
	}
	return emitJSON(res)
}

// emitError renders the error envelope spec section 6 mandates for the
// host protocol: {"error": "<message>"} on stdout, never a non-JSON
// message, so a host dispatcher always gets parseable output.
func emitError(err error) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]string{"error": err.Error()})
	return nil
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
