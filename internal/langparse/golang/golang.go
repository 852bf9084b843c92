// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package golang extracts symbols from Go source using tree-sitter's Go
// grammar. Methods are modeled as functions with the receiver folded into
// the signature, matching spec section 4.1's Go row (no separate method
// kind).
package golang

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/codeindexer/codeindex/internal/langparse"
	"github.com/codeindexer/codeindex/internal/langparse/parseutil"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// Adapter parses Go source files.
type Adapter struct{}

// New returns a Go langparse.Adapter.
func New() *Adapter { return &Adapter{} }

// Language reports the language tag this adapter handles.
func (a *Adapter) Language() symbol.Language { return symbol.LangGo }

// Parse walks a parsed Go file and emits one symbol per function, method,
// type declaration, and top-level uppercase-named const.
func (a *Adapter) Parse(ctx context.Context, content []byte, filePath string) (langparse.Result, error) {
	if err := ctx.Err(); err != nil {
		return langparse.Result{}, err
	}
	if len(content) > langparse.DefaultMaxFileSize {
		return langparse.Result{Warnings: []string{fmt.Sprintf("%s: exceeds max file size", filePath)}}, nil
	}
	if !utf8.Valid(content) {
		return langparse.Result{Warnings: []string{fmt.Sprintf("%s: not valid UTF-8", filePath)}}, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return langparse.Result{Warnings: []string{fmt.Sprintf("%s: tree-sitter parse failed: %v", filePath, err)}}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return langparse.Result{Warnings: []string{fmt.Sprintf("%s: empty parse tree", filePath)}}, nil
	}

	w := &walker{content: content, filePath: filePath}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_declaration":
			w.emitFunc(root, child)
		case "method_declaration":
			w.emitMethod(root, child)
		case "type_declaration":
			w.emitType(root, child)
		case "const_declaration":
			w.emitConsts(root, child)
		}
	}

	symbol.AssignIDs(w.symbols)
	return langparse.Result{Symbols: w.symbols}, nil
}

type walker struct {
	content  []byte
	filePath string
	symbols  []*symbol.Symbol
}

func (w *walker) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

// signatureUpTo builds the signature as the source slice from decl's start
// to the end of the last node before body, matching spec section 4.1's
// "source slice from node start to the first child that opens the body"
// rule; Go's body is the trailing block node.
func (w *walker) signatureUpTo(decl *sitter.Node, body *sitter.Node) string {
	if body == nil {
		return strings.TrimSpace(w.text(decl))
	}
	return strings.TrimSpace(string(w.content[decl.StartByte():body.StartByte()]))
}

func (w *walker) docComment(root, decl *sitter.Node) string {
	return parseutil.PrecedingCommentRun(decl, w.content, "comment")
}

func (w *walker) emitFunc(root, decl *sitter.Node) {
	var name string
	var body *sitter.Node
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case "identifier":
			name = w.text(c)
		case "block":
			body = c
		}
	}
	if name == "" {
		return
	}

	line, endLine := parseutil.Lines(decl)
	offset, length := parseutil.Bytes(decl)

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: name,
		Kind:          symbol.KindFunction,
		Language:      symbol.LangGo,
		Signature:     w.signatureUpTo(decl, body),
		Docstring:     w.docComment(root, decl),
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[decl.StartByte():decl.EndByte()]),
		Exported:      parseutil.IsExportedASCII(name),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)
}

func (w *walker) emitMethod(root, decl *sitter.Node) {
	var name, receiverType string
	var body *sitter.Node
	paramListSeen := 0
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case "field_identifier":
			name = w.text(c)
		case "parameter_list":
			paramListSeen++
			if paramListSeen == 1 {
				receiverType = receiverTypeName(c, w.content)
			}
		case "block":
			body = c
		}
	}
	if name == "" {
		return
	}

	qualified := name
	if receiverType != "" {
		qualified = receiverType + "." + name
	}

	line, endLine := parseutil.Lines(decl)
	offset, length := parseutil.Bytes(decl)

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: qualified,
		Kind:          symbol.KindFunction,
		Language:      symbol.LangGo,
		Signature:     w.signatureUpTo(decl, body),
		Docstring:     w.docComment(root, decl),
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[decl.StartByte():decl.EndByte()]),
		Receiver:      receiverType,
		Exported:      parseutil.IsExportedASCII(name),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)
}

func (w *walker) emitType(root, decl *sitter.Node) {
	for i := 0; i < int(decl.ChildCount()); i++ {
		spec := decl.Child(i)
		if spec.Type() != "type_spec" {
			continue
		}
		var name string
		for j := 0; j < int(spec.ChildCount()); j++ {
			c := spec.Child(j)
			if c.Type() == "type_identifier" {
				name = w.text(c)
				break
			}
		}
		if name == "" {
			continue
		}

		line, endLine := parseutil.Lines(spec)
		offset, length := parseutil.Bytes(spec)

		s := &symbol.Symbol{
			File:          w.filePath,
			Name:          name,
			QualifiedName: name,
			Kind:          symbol.KindType,
			Language:      symbol.LangGo,
			Signature:     strings.TrimSpace(w.text(spec)),
			Docstring:     w.docComment(root, decl),
			Line:          line,
			EndLine:       endLine,
			ByteOffset:    offset,
			ByteLength:    length,
			ContentHash:   parseutil.Hash(w.content[spec.StartByte():spec.EndByte()]),
			Exported:      parseutil.IsExportedASCII(name),
		}
		s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
		w.symbols = append(w.symbols, s)
	}
}

func (w *walker) emitConsts(root, decl *sitter.Node) {
	var specs []*sitter.Node
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case "const_spec":
			specs = append(specs, c)
		case "const_spec_list":
			for j := 0; j < int(c.ChildCount()); j++ {
				if g := c.Child(j); g.Type() == "const_spec" {
					specs = append(specs, g)
				}
			}
		}
	}

	for _, spec := range specs {
		for i := 0; i < int(spec.ChildCount()); i++ {
			c := spec.Child(i)
			if c.Type() != "identifier" {
				continue
			}
			name := w.text(c)
			if !parseutil.IsExportedASCII(name) {
				continue
			}

			line, endLine := parseutil.Lines(spec)
			offset, length := parseutil.Bytes(spec)

			s := &symbol.Symbol{
				File:          w.filePath,
				Name:          name,
				QualifiedName: name,
				Kind:          symbol.KindConstant,
				Language:      symbol.LangGo,
				Signature:     strings.TrimSpace(w.text(spec)),
				Docstring:     w.docComment(root, decl),
				Line:          line,
				EndLine:       endLine,
				ByteOffset:    offset,
				ByteLength:    length,
				ContentHash:   parseutil.Hash(w.content[spec.StartByte():spec.EndByte()]),
				Exported:      true,
			}
			s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
			w.symbols = append(w.symbols, s)
		}
	}
}

func receiverTypeName(paramList *sitter.Node, content []byte) string {
	for i := 0; i < int(paramList.ChildCount()); i++ {
		c := paramList.Child(i)
		if c.Type() != "parameter_declaration" {
			continue
		}
		for j := 0; j < int(c.ChildCount()); j++ {
			g := c.Child(j)
			switch g.Type() {
			case "type_identifier":
				return string(content[g.StartByte():g.EndByte()])
			case "pointer_type":
				for k := 0; k < int(g.ChildCount()); k++ {
					if h := g.Child(k); h.Type() == "type_identifier" {
						return string(content[h.StartByte():h.EndByte()])
					}
				}
			}
		}
	}
	return ""
}
