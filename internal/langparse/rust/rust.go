// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rust extracts symbols from Rust source using tree-sitter's Rust
// grammar. The teacher's package pack carries no Rust parser; this adapter
// follows the same walk-and-emit shape as golang and python, adapted to
// Rust's impl-block method convention.
package rust

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/codeindexer/codeindex/internal/langparse"
	"github.com/codeindexer/codeindex/internal/langparse/parseutil"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// Adapter parses Rust source files.
type Adapter struct{}

// New returns a Rust langparse.Adapter.
func New() *Adapter { return &Adapter{} }

// Language reports the language tag this adapter handles.
func (a *Adapter) Language() symbol.Language { return symbol.LangRust }

// Parse walks a parsed Rust file and emits one symbol per free function,
// struct/enum/trait/type alias, impl-block method, and const item.
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
	parser.SetLanguage(rust.GetLanguage())

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
		case "function_item":
			w.emitFreeFunction(child)
		case "struct_item", "enum_item", "trait_item", "type_item":
			w.emitTypeDecl(child)
		case "const_item":
			w.emitConst(child)
		case "impl_item":
			w.emitImpl(child)
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

func (w *walker) text(n *sitter.Node) string { return parseutil.Text(n, w.content) }

func (w *walker) docComment(node *sitter.Node) string {
	return parseutil.PrecedingCommentRun(node, w.content, "line_comment", "doc_comment")
}

func (w *walker) emitFreeFunction(node *sitter.Node) {
	w.emitFunction(node, "", "")
}

// emitImpl walks an impl block's functions, qualifying each by the
// implementing type's name. If the type name cannot be extracted, methods
// fall back to being emitted as free functions per spec section 4.1's
// Rust row.
func (w *walker) emitImpl(node *sitter.Node) {
	typeName := implTypeName(node, w.content)

	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == "declaration_list" {
			body = c
		}
	}
	if body == nil {
		return
	}

	var parentID string
	if typeName != "" {
		parentID = symbol.ID(w.filePath, typeName, symbol.KindType)
	}

	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		if member.Type() != "function_item" {
			continue
		}
		w.emitFunction(member, typeName, parentID)
	}
}

func (w *walker) emitFunction(node *sitter.Node, receiverType, parentID string) {
	name := firstChildText(node, w.content, "identifier")
	if name == "" {
		return
	}

	var params, returnType string
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		case "parameters":
			params = w.text(c)
		default:
			if isRustReturnTypeNode(c.Type()) {
				returnType = w.text(c)
			}
		}
	}

	qualified := name
	kind := symbol.KindFunction
	if receiverType != "" {
		qualified = receiverType + "." + name
		kind = symbol.KindMethod
	}

	signature := "fn " + name + params
	if returnType != "" {
		signature += " -> " + returnType
	}

	line, endLine := parseutil.Lines(node)
	offset, length := parseutil.Bytes(node)

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		Language:      symbol.LangRust,
		Signature:     strings.TrimSpace(signature),
		Docstring:     w.docComment(node),
		Parent:        parentID,
		Receiver:      receiverType,
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
		Exported:      isPub(node),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)
}

func (w *walker) emitTypeDecl(node *sitter.Node) {
	name := firstChildText(node, w.content, "type_identifier")
	if name == "" {
		return
	}

	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		switch c := node.Child(i); c.Type() {
		case "field_declaration_list", "enum_variant_list", "declaration_list":
			body = c
		}
	}

	line, endLine := parseutil.Lines(node)
	offset, length := parseutil.Bytes(node)

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: name,
		Kind:          symbol.KindType,
		Language:      symbol.LangRust,
		Signature:     headerUpTo(node, body, w.content),
		Docstring:     w.docComment(node),
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
		Exported:      isPub(node),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)
}

func (w *walker) emitConst(node *sitter.Node) {
	name := firstChildText(node, w.content, "identifier")
	if name == "" {
		return
	}

	line, endLine := parseutil.Lines(node)
	offset, length := parseutil.Bytes(node)

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: name,
		Kind:          symbol.KindConstant,
		Language:      symbol.LangRust,
		Signature:     strings.TrimSpace(w.text(node)),
		Docstring:     w.docComment(node),
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
		Exported:      isPub(node),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)
}

func implTypeName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == "type_identifier" {
			return string(content[c.StartByte():c.EndByte()])
		}
	}
	return ""
}

func isRustReturnTypeNode(t string) bool {
	switch t {
	case "type_identifier", "generic_type", "reference_type", "primitive_type", "tuple_type", "unit_type", "scoped_type_identifier":
		return true
	}
	return false
}

func isPub(node *sitter.Node) bool {
	if node.PrevSibling() != nil && node.PrevSibling().Type() == "visibility_modifier" {
		return true
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "visibility_modifier" {
			return true
		}
	}
	return false
}

func firstChildText(node *sitter.Node, content []byte, t string) string {
	if c := parseutil.ChildByType(node, t); c != nil {
		return parseutil.Text(c, content)
	}
	return ""
}

func headerUpTo(node, body *sitter.Node, content []byte) string {
	if body != nil {
		return strings.TrimSpace(string(content[node.StartByte():body.StartByte()]))
	}
	return strings.TrimSpace(string(content[node.StartByte():node.EndByte()]))
}
