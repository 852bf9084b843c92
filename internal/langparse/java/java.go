// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package java extracts symbols from Java source using tree-sitter's Java
// grammar. Java has no file-scope functions (spec section 4.1's Java row);
// every method/constructor is qualified by its enclosing type.
package java

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/codeindexer/codeindex/internal/langparse"
	"github.com/codeindexer/codeindex/internal/langparse/parseutil"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// Adapter parses Java source files.
type Adapter struct{}

// New returns a Java langparse.Adapter.
func New() *Adapter { return &Adapter{} }

// Language reports the language tag this adapter handles.
func (a *Adapter) Language() symbol.Language { return symbol.LangJava }

var typeDeclNodes = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"record_declaration":    true,
}

// Parse walks a parsed Java file and emits one symbol per type declaration,
// method/constructor, and static-final field.
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
	parser.SetLanguage(java.GetLanguage())

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
		if c := root.Child(i); typeDeclNodes[c.Type()] {
			w.emitTypeDecl(c)
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
	return parseutil.PrecedingBlockComment(node, w.content, "block_comment", "line_comment")
}

func (w *walker) emitTypeDecl(node *sitter.Node) {
	name := firstChildText(node, w.content, "identifier")
	if name == "" {
		return
	}

	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		switch c := node.Child(i); c.Type() {
		case "class_body", "interface_body", "enum_body":
			body = c
		}
	}

	line, endLine := parseutil.Lines(node)
	offset, length := parseutil.Bytes(node)

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: name,
		Kind:          symbol.KindClass,
		Language:      symbol.LangJava,
		Signature:     headerUpTo(node, body, w.content),
		Docstring:     w.docComment(node),
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
		Exported:      hasModifier(node, w.content, "public"),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)

	if body == nil {
		return
	}
	classBareID := symbol.ID(w.filePath, name, symbol.KindClass)
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_declaration", "constructor_declaration":
			w.emitMethod(member, name, classBareID)
		case "field_declaration":
			w.emitFieldIfConstant(member, name)
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			w.emitTypeDecl(member)
		}
	}
}

func (w *walker) emitMethod(node *sitter.Node, className, parentID string) {
	name := firstChildText(node, w.content, "identifier")
	if name == "" {
		return
	}

	var params, returnType string
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		case "formal_parameters":
			params = w.text(c)
		case "void_type", "integral_type", "floating_point_type", "boolean_type", "type_identifier", "generic_type", "array_type", "scoped_type_identifier":
			returnType = w.text(c)
		}
	}

	signature := name + params
	if returnType != "" {
		signature = returnType + " " + signature
	}

	line, endLine := parseutil.Lines(node)
	offset, length := parseutil.Bytes(node)

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: className + "." + name,
		Kind:          symbol.KindMethod,
		Language:      symbol.LangJava,
		Signature:     strings.TrimSpace(signature),
		Docstring:     w.docComment(node),
		Parent:        parentID,
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
		Exported:      hasModifier(node, w.content, "public"),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)
}

// emitFieldIfConstant emits a field_declaration as a constant only when it
// carries both the static and final modifiers, per spec section 4.1's
// Java row.
func (w *walker) emitFieldIfConstant(node *sitter.Node, className string) {
	if !hasModifier(node, w.content, "static") || !hasModifier(node, w.content, "final") {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() != "variable_declarator" {
			continue
		}
		name := firstChildText(c, w.content, "identifier")
		if name == "" {
			continue
		}

		line, endLine := parseutil.Lines(node)
		offset, length := parseutil.Bytes(node)

		s := &symbol.Symbol{
			File:          w.filePath,
			Name:          name,
			QualifiedName: className + "." + name,
			Kind:          symbol.KindConstant,
			Language:      symbol.LangJava,
			Signature:     strings.TrimSpace(w.text(node)),
			Docstring:     w.docComment(node),
			Line:          line,
			EndLine:       endLine,
			ByteOffset:    offset,
			ByteLength:    length,
			ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
			Exported:      hasModifier(node, w.content, "public"),
		}
		s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
		w.symbols = append(w.symbols, s)
	}
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

// hasModifier reports whether node's leading modifiers child contains a
// keyword token of the given text.
func hasModifier(node *sitter.Node, content []byte, keyword string) bool {
	mods := parseutil.ChildByType(node, "modifiers")
	if mods == nil {
		return false
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		if c := mods.Child(i); c.Type() == keyword {
			return true
		}
	}
	return false
}
