// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package typescript extracts symbols from TypeScript source using
// tree-sitter's TypeScript grammar: everything javascript extracts, plus
// interface and type-alias declarations (kind type).
package typescript

import (
	"context"

	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/codeindexer/codeindex/internal/langparse"
	"github.com/codeindexer/codeindex/internal/langparse/jscommon"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// Adapter parses TypeScript source files (.ts).
type Adapter struct{}

// New returns a TypeScript langparse.Adapter.
func New() *Adapter { return &Adapter{} }

// Language reports the language tag this adapter handles.
func (a *Adapter) Language() symbol.Language { return symbol.LangTypeScript }

// Parse walks a parsed TypeScript file and emits one symbol per function,
// class, method, method signature, interface, type alias, and top-level
// uppercase const.
func (a *Adapter) Parse(ctx context.Context, content []byte, filePath string) (langparse.Result, error) {
	return jscommon.Walk(ctx, content, filePath, symbol.LangTypeScript, typescript.GetLanguage(), true)
}
