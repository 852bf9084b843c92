// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package jscommon holds the tree-sitter walk shared by the javascript and
// typescript adapters: function/class/method extraction is identical
// between the two grammars, so the walker is parameterized by a flag that
// turns on the TypeScript-only constructs (interfaces, type aliases).
package jscommon

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codeindexer/codeindex/internal/langparse"
	"github.com/codeindexer/codeindex/internal/langparse/parseutil"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// Walk parses content with sitterLang and emits function/class/method/
// constant symbols for lang, additionally extracting interfaces and type
// aliases when includeTypes is set (TypeScript only).
func Walk(ctx context.Context, content []byte, filePath string, lang symbol.Language, sitterLang *sitter.Language, includeTypes bool) (langparse.Result, error) {
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
	parser.SetLanguage(sitterLang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return langparse.Result{Warnings: []string{fmt.Sprintf("%s: tree-sitter parse failed: %v", filePath, err)}}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return langparse.Result{Warnings: []string{fmt.Sprintf("%s: empty parse tree", filePath)}}, nil
	}

	w := &walker{content: content, filePath: filePath, lang: lang, includeTypes: includeTypes}
	w.walkStatements(root)

	symbol.AssignIDs(w.symbols)
	return langparse.Result{Symbols: w.symbols}, nil
}

type walker struct {
	content      []byte
	filePath     string
	lang         symbol.Language
	includeTypes bool
	symbols      []*symbol.Symbol
}

func (w *walker) text(n *sitter.Node) string { return parseutil.Text(n, w.content) }

func (w *walker) walkStatements(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		w.statement(root.Child(i))
	}
}

// statement dispatches one top-level (or export-unwrapped) statement node.
func (w *walker) statement(node *sitter.Node) {
	switch node.Type() {
	case "export_statement":
		w.exportStatement(node)
	case "function_declaration":
		w.emitFunction(node, nil)
	case "class_declaration":
		w.emitClass(node, nil)
	case "lexical_declaration":
		w.emitTopLevelConst(node)
	case "interface_declaration":
		if w.includeTypes {
			w.emitInterface(node)
		}
	case "type_alias_declaration":
		if w.includeTypes {
			w.emitTypeAlias(node)
		}
	}
}

func (w *walker) exportStatement(node *sitter.Node) {
	decorators := w.decoratorsOf(node)
	first := len(w.symbols)
	defer func() {
		for _, s := range w.symbols[first:] {
			if s.Parent == "" {
				s.Exported = true
			}
		}
	}()
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		case "function_declaration":
			w.emitFunction(c, decorators)
		case "class_declaration":
			w.emitClass(c, decorators)
		case "lexical_declaration":
			w.emitTopLevelConst(c)
		case "interface_declaration":
			if w.includeTypes {
				w.emitInterface(c)
			}
		case "type_alias_declaration":
			if w.includeTypes {
				w.emitTypeAlias(c)
			}
		}
	}
}

func (w *walker) decoratorsOf(node *sitter.Node) []string {
	var out []string
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == "decorator" {
			out = append(out, strings.TrimPrefix(strings.TrimSpace(w.text(c)), "@"))
		}
	}
	return out
}

func (w *walker) docComment(node *sitter.Node) string {
	return parseutil.PrecedingBlockComment(node, w.content, "comment")
}

func (w *walker) emitFunction(node *sitter.Node, decorators []string) {
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
		case "type_annotation":
			returnType = strings.TrimPrefix(w.text(c), ":")
			returnType = strings.TrimSpace(returnType)
		}
	}

	signature := "function " + name + params
	if returnType != "" {
		signature += ": " + returnType
	}

	w.appendSymbol(node, name, name, symbol.KindFunction, signature, decorators, "")
}

func (w *walker) emitClass(node *sitter.Node, decorators []string) {
	name := firstChildText(node, w.content, "type_identifier", "identifier")
	if name == "" {
		return
	}

	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == "class_body" {
			body = c
		}
	}

	header := classHeader(node, body, w.content)
	w.appendSymbol(node, name, name, symbol.KindClass, header, decorators, "")

	if body == nil {
		return
	}
	classBareID := symbol.ID(w.filePath, name, symbol.KindClass)
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_definition":
			w.emitMethod(member, name, classBareID)
		case "method_signature":
			if w.includeTypes {
				w.emitMethod(member, name, classBareID)
			}
		}
	}
}

func (w *walker) emitMethod(node *sitter.Node, className, parentID string) {
	name := firstChildText(node, w.content, "property_identifier")
	if name == "" {
		return
	}

	var params, returnType string
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		case "formal_parameters":
			params = w.text(c)
		case "type_annotation":
			returnType = strings.TrimSpace(strings.TrimPrefix(w.text(c), ":"))
		}
	}

	signature := name + params
	if returnType != "" {
		signature += ": " + returnType
	}

	qualified := className + "." + name
	s := w.appendSymbol(node, name, qualified, symbol.KindMethod, signature, nil, parentID)
	_ = s
}

// emitTopLevelConst handles a top-level `const` lexical_declaration. Per
// spec section 4.1's JS/TS row, a declarator whose value is a function or
// arrow function is emitted as kind function regardless of its casing;
// only declarators with a non-function value and an all-caps identifier
// are emitted as kind constant.
func (w *walker) emitTopLevelConst(node *sitter.Node) {
	if firstChildText(node, w.content, "const") == "" {
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
		if fn := functionValueOf(c); fn != nil {
			w.emitConstFunction(node, name, fn)
			continue
		}
		if !isAllCapsASCII(name) {
			continue
		}
		value := firstChildText(c, w.content, "type_annotation")
		sig := name
		if value != "" {
			sig = name + " " + value
		}
		w.appendSymbol(node, name, name, symbol.KindConstant, sig, nil, "")
	}
}

// functionValueOf returns the declarator's value node if it is a function
// expression or arrow function, else nil.
func functionValueOf(declarator *sitter.Node) *sitter.Node {
	return parseutil.ChildByType(declarator, "arrow_function", "function_expression", "function", "generator_function")
}

// emitConstFunction emits the kind-function symbol for `const name = (…) =>
// …`/`const name = function(…) { … }`, using the declaration's source slice
// up to the function body as its signature.
func (w *walker) emitConstFunction(node *sitter.Node, name string, fn *sitter.Node) {
	var signature string
	if body := parseutil.ChildByType(fn, "statement_block"); body != nil {
		signature = strings.TrimSpace(string(w.content[node.StartByte():body.StartByte()]))
	} else {
		signature = strings.TrimSpace(w.text(node))
	}
	w.appendSymbol(node, name, name, symbol.KindFunction, signature, nil, "")
}

func (w *walker) emitInterface(node *sitter.Node) {
	name := firstChildText(node, w.content, "type_identifier")
	if name == "" {
		return
	}
	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == "interface_body" || c.Type() == "object_type" {
			body = c
		}
	}
	header := classHeader(node, body, w.content)
	w.appendSymbol(node, name, name, symbol.KindType, header, nil, "")
}

func (w *walker) emitTypeAlias(node *sitter.Node) {
	name := firstChildText(node, w.content, "type_identifier")
	if name == "" {
		return
	}
	w.appendSymbol(node, name, name, symbol.KindType, strings.TrimSpace(w.text(node)), nil, "")
}

func (w *walker) appendSymbol(node *sitter.Node, name, qualified string, kind symbol.Kind, signature string, decorators []string, parentID string) *symbol.Symbol {
	line, endLine := parseutil.Lines(node)
	offset, length := parseutil.Bytes(node)

	s := &symbol.Symbol{
		File:          w.filePath,
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		Language:      w.lang,
		Signature:     strings.TrimSpace(signature),
		Docstring:     w.docComment(node),
		Decorators:    decorators,
		Parent:        parentID,
		Line:          line,
		EndLine:       endLine,
		ByteOffset:    offset,
		ByteLength:    length,
		ContentHash:   parseutil.Hash(w.content[node.StartByte():node.EndByte()]),
	}
	s.Keywords = symbol.Keywords(s.Name, s.QualifiedName)
	w.symbols = append(w.symbols, s)
	return s
}

func firstChildText(node *sitter.Node, content []byte, types ...string) string {
	if c := parseutil.ChildByType(node, types...); c != nil {
		return parseutil.Text(c, content)
	}
	return ""
}

// classHeader returns the declaration's source slice up to the opening
// brace of its body (or the whole node text if no body was found).
func classHeader(node, body *sitter.Node, content []byte) string {
	if body != nil {
		return strings.TrimSpace(string(content[node.StartByte():body.StartByte()]))
	}
	return strings.TrimSpace(parseutil.Text(node, content))
}

func isAllCapsASCII(name string) bool {
	hasLetter := false
	for _, r := range name {
		switch {
		case r == '_':
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			hasLetter = hasLetter || (r >= 'A' && r <= 'Z')
		default:
			return false
		}
	}
	return hasLetter
}
