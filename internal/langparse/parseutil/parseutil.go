// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package parseutil collects the tree-sitter node helpers shared by every
// language adapter under internal/langparse: byte/line span conversion,
// hashing, and the preceding-comment-run scan used to derive docstrings.
package parseutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Text returns the exact source slice covered by node.
func Text(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// Hash is the SHA-256 hex digest of a byte slice, used for Symbol.ContentHash.
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Lines converts a node's tree-sitter point range (0-indexed rows) to the
// spec's 1-indexed inclusive [line, endLine].
func Lines(node *sitter.Node) (line, endLine int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}

// Bytes returns a node's [offset, length) span in the source.
func Bytes(node *sitter.Node) (offset, length int) {
	offset = int(node.StartByte())
	length = int(node.EndByte()) - offset
	return
}

// ChildByType returns the first direct child of node whose Type() matches
// any of types, or nil.
func ChildByType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

// ChildrenByType returns every direct child of node whose Type() equals t.
func ChildrenByType(node *sitter.Node, t string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == t {
			out = append(out, c)
		}
	}
	return out
}

// PrecedingCommentRun walks backward over node's previous siblings at the
// same tree level, collecting a contiguous run of nodes whose type is in
// commentTypes with no blank-line gap between consecutive entries, and
// returns their text in source order, one line per comment with the leading
// `///` or `//` marker and surrounding whitespace removed. Used for Go's `//`-run
// and Rust's `///`-run docstring rules (spec section 4.1); JS/TS/Java use
// PrecedingBlockComment instead since their doc comment is a single
// `/** */` node, not an accumulated run.
func PrecedingCommentRun(node *sitter.Node, content []byte, commentTypes ...string) string {
	isComment := func(t string) bool {
		for _, ct := range commentTypes {
			if t == ct {
				return true
			}
		}
		return false
	}

	var run []*sitter.Node
	cur := node.PrevSibling()
	expectedEndRow := int(node.StartPoint().Row) - 1
	for cur != nil && isComment(cur.Type()) && int(cur.EndPoint().Row) == expectedEndRow {
		run = append(run, cur)
		expectedEndRow = int(cur.StartPoint().Row) - 1
		cur = cur.PrevSibling()
	}
	if len(run) == 0 {
		return ""
	}

	lines := make([]string, len(run))
	for i, n := range run {
		line := strings.TrimSpace(Text(n, content))
		line = strings.TrimPrefix(line, "///")
		line = strings.TrimPrefix(line, "//")
		lines[len(run)-1-i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// PrecedingBlockComment returns the text of node's immediately preceding
// sibling if its type is one of commentTypes and it ends on the line
// directly above node, else "". The `/**`, `/*`, `//` and `*/` markers and
// each line's leading `*` are removed. Used for the single `/** */`-style doc
// comment convention (JS/TS/Java).
func PrecedingBlockComment(node *sitter.Node, content []byte, commentTypes ...string) string {
	cur := node.PrevSibling()
	if cur == nil {
		return ""
	}
	if int(cur.EndPoint().Row) != int(node.StartPoint().Row)-1 {
		return ""
	}
	for _, t := range commentTypes {
		if cur.Type() == t {
			text := strings.TrimSpace(Text(cur, content))
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimPrefix(text, "/**")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimPrefix(text, "//")
			lines := strings.Split(text, "\n")
			for i, l := range lines {
				lines[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "*"))
			}
			return strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}
	return ""
}

// IsExportedASCII reports whether name begins with an ASCII uppercase
// letter, the Go/Java/common convention for export visibility.
func IsExportedASCII(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}
