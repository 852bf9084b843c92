// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package python extracts symbols from Python source using tree-sitter's
// Python grammar: module-level functions and classes, methods nested in a
// class body, module-level uppercase assignments as constants, and nested
// functions linked to their enclosing function via parent.
package python

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/codeindexer/codeindex/internal/langparse"
	"github.com/codeindexer/codeindex/internal/langparse/parseutil"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// Adapter parses Python source files.
type Adapter struct{}

// New returns a Python langparse.Adapter.
func New() *Adapter { return &Adapter{} }

// Language reports the language tag this adapter handles.
func (a *Adapter) Language() symbol.Language { return symbol.LangPython }

// Parse walks a parsed Python file and emits one symbol per module-level
// function, class, class method, and uppercase module-level assignment.
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
	parser.SetLanguage(python.GetLanguage())

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
		case "class_definition":
			w.emitClass(child, nil)
		case "function_definition":
			w.emitFunction(child, "", "")
		case "decorated_definition":
			w.emitDecorated(child, "", "")
		case "expression_statement":
			w.emitModuleAssignment(child)
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

func (w *walker) emitDecorated(node *sitter.Node, qualifiedPrefix, parentID string) {
	decorators := w.decorators(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		case "class_definition":
			w.emitClass(c, decorators)
		case "function_definition":
			w.emitFunction(c, qualifiedPrefix, parentID, decorators...)
		}
	}
}

func (w *walker) decorators(node *sitter.Node) []string {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() != "decorator" {
			continue
		}
		decorators = append(decorators, strings.TrimPrefix(strings.TrimSpace(w.text(c)), "@"))
	}
	return decorators
}

func (w *walker) emitClass(node *sitter.Node, decorators []string) {
	name := textOfChildType(node, w.content, "identifier")
	if name == "" {
		return
	}

	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == "block" {
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
		Language:      symbol.LangPython,
		Signature:     classHeader(node, w.content),
		Docstring:     docstringOf(body, w.content),
		Decorators:    decorators,
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
		Exported:      isExported(name),
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
		case "function_definition":
			w.emitFunction(member, name, classBareID)
		case "decorated_definition":
			w.emitDecorated(member, name, classBareID)
		}
	}
}

func (w *walker) emitFunction(node *sitter.Node, qualifiedPrefix, parentID string, decorators ...string) {
	name := textOfChildType(node, w.content, "identifier")
	if name == "" {
		return
	}

	var params, returnType string
	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		case "parameters":
			params = w.text(c)
		case "type":
			returnType = w.text(c)
		case "block":
			body = c
		}
	}

	qualified := name
	kind := symbol.KindFunction
	if qualifiedPrefix != "" {
		qualified = qualifiedPrefix + "." + name
		kind = symbol.KindMethod
	}

	signature := "def " + name + params
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
		Language:      symbol.LangPython,
		Signature:     signature,
		Docstring:     docstringOf(body, w.content),
		Decorators:    decorators,
		Parent:        parentID,
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
		Exported:      isExported(name),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)

	if body == nil {
		return
	}
	ownBareID := symbol.ID(w.filePath, qualified, kind)
	for i := 0; i < int(body.ChildCount()); i++ {
		stmt := body.Child(i)
		switch stmt.Type() {
		case "function_definition":
			w.emitFunction(stmt, qualified, ownBareID)
		case "decorated_definition":
			w.emitDecorated(stmt, qualified, ownBareID)
		}
	}
}

func (w *walker) emitModuleAssignment(stmt *sitter.Node) {
	if stmt.ChildCount() == 0 {
		return
	}
	assign := stmt.Child(0)
	if assign.Type() != "assignment" {
		return
	}

	name := textOfChildType(assign, w.content, "identifier")
	if name == "" || !isAllCaps(name) {
		return
	}

	var typeStr string
	for i := 0; i < int(assign.ChildCount()); i++ {
		if c := assign.Child(i); c.Type() == "type" {
			typeStr = w.text(c)
		}
	}

	line, endLine := parseutil.Lines(stmt)
	offset, length := parseutil.Bytes(stmt)

	signature := name
	if typeStr != "" {
		signature = name + ": " + typeStr
	}

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: name,
		Kind:          symbol.KindConstant,
		Language:      symbol.LangPython,
		Signature:     signature,
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[stmt.StartByte():stmt.EndByte()]),
		Exported:      isExported(name),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)
}

func textOfChildType(node *sitter.Node, content []byte, t string) string {
	if c := parseutil.ChildByType(node, t); c != nil {
		return parseutil.Text(c, content)
	}
	return ""
}

// classHeader returns the "class Name(Base1, Base2):" line, the slice from
// node start to the colon preceding the body block.
func classHeader(node *sitter.Node, content []byte) string {
	if body := parseutil.ChildByType(node, "block"); body != nil {
		return strings.TrimSpace(string(content[node.StartByte():body.StartByte()]))
	}
	return strings.TrimSpace(parseutil.Text(node, content))
}

// docstringOf returns the leading string-expression statement of a block,
// quotes stripped, or "" if absent.
func docstringOf(block *sitter.Node, content []byte) string {
	if block == nil || block.ChildCount() == 0 {
		return ""
	}
	first := block.Child(0)
	if first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	strNode := first.Child(0)
	if strNode.Type() != "string" {
		return ""
	}
	return strings.Trim(parseutil.Text(strNode, content), `"'`)
}

// isExported applies Python's underscore-prefix convention: dunder names
// are exported, single- or double-leading-underscore names are not.
func isExported(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	if strings.HasPrefix(name, "_") {
		return false
	}
	return true
}

func isAllCaps(name string) bool {
	for _, r := range name {
		if r != '_' && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(name) > 0
}
