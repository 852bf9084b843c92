// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package indexstore

import "errors"

// ErrInvalidInput flags a caller argument that fails validation before any
// I/O is attempted (empty owner/name, nil symbol slice, etc).
var ErrInvalidInput = errors.New("indexstore: invalid input")

// ErrMissing is the error Load returns when the manifest is absent,
// unreadable, or written with a future schema version. It is exported so
// callers (querytools) can test for it with errors.Is.
var ErrMissing = errors.New("indexstore: index missing or unreadable")

// ErrSymbolNotFound is returned by GetSymbolContent when id is absent from
// the loaded manifest.
var ErrSymbolNotFound = errors.New("indexstore: symbol not found")

// ErrorKind is the closed set of error labels of spec section 7's taxonomy.
// Discovery attaches one to each excluded file, and ingest reports it in a
// "path: kind" warning; the CLI's `{"error": ...}` envelope carries the
// error's message text, not an ErrorKind. Like the Kind/Language enums in
// package symbol, it is a plain string type.
type ErrorKind string

const (
	KindRepoNotFound    ErrorKind = "repo_not_found"
	KindRepoNotIndexed  ErrorKind = "repo_not_indexed"
	KindSymbolNotFound  ErrorKind = "symbol_not_found"
	KindFileTooLarge    ErrorKind = "file_too_large"
	KindBinaryExtension ErrorKind = "binary_extension"
	KindSecretFile      ErrorKind = "secret_file"
	KindSymlinkEscape   ErrorKind = "symlink_escape"
	KindPathTraversal   ErrorKind = "path_traversal"
	KindUnreadable      ErrorKind = "unreadable"
	KindParseFailed     ErrorKind = "parse_failed"
	KindSchemaFuture    ErrorKind = "schema_future"
)

// ClassifyLoadError maps a Load failure to the error kind a query-tool
// envelope reports. schema_future and repo_not_indexed both surface for
// ErrMissing since Load collapses "absent" and "future schema" into one
// sentinel (spec section 7: "schema_future ... treated identically to
// repo_not_indexed"); distinguishing the two against an unreadable-vs-
// absent manifest is left to the caller, which already knows whether a
// manifest file exists.
func ClassifyLoadError(manifestExists bool) ErrorKind {
	if manifestExists {
		return KindRepoNotIndexed
	}
	return KindRepoNotFound
}
