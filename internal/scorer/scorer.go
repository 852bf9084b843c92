// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scorer implements the point-additive ranking function used by
// symbol search. It is a pure function of a symbol and a normalized query:
// no fuzzy matching, no stemming, case-insensitive substring/token checks
// only.
package scorer

import (
	"strings"

	"github.com/codeindexer/codeindex/internal/symbol"
)

// Query is a query string normalized once and reused across many Score
// calls against the same search.
type Query struct {
	q  string
	qw []string
}

// NewQuery lowercases q and splits it on whitespace into qw.
func NewQuery(raw string) Query {
	q := strings.ToLower(raw)
	var qw []string
	for _, w := range strings.Fields(q) {
		qw = append(qw, w)
	}
	return Query{q: q, qw: qw}
}

// Score computes the non-negative integer relevance of sym against query,
// per spec section 4.2's contribution table. A symbol with Score == 0 must
// be excluded by the caller (no match).
func Score(sym *symbol.Symbol, query Query) int {
	if query.q == "" {
		return 0
	}

	nameLower := strings.ToLower(sym.Name)
	sigLower := strings.ToLower(sym.Signature)
	summaryLower := strings.ToLower(sym.Summary)
	docLower := strings.ToLower(sym.Docstring)

	score := 0

	if nameLower == query.q {
		score += 20
	} else if strings.Contains(nameLower, query.q) {
		score += 10
	}
	for _, w := range query.qw {
		if strings.Contains(nameLower, w) {
			score += 5
		}
	}

	if strings.Contains(sigLower, query.q) {
		score += 8
	}
	for _, w := range query.qw {
		if strings.Contains(sigLower, w) {
			score += 2
		}
	}

	if strings.Contains(summaryLower, query.q) {
		score += 5
	}
	for _, w := range query.qw {
		if strings.Contains(summaryLower, w) {
			score += 1
		}
	}

	if len(sym.Keywords) > 0 && len(query.qw) > 0 {
		keywordSet := make(map[string]bool, len(sym.Keywords))
		for _, k := range sym.Keywords {
			keywordSet[strings.ToLower(k)] = true
		}
		overlap := 0
		seen := make(map[string]bool, len(query.qw))
		for _, w := range query.qw {
			if seen[w] {
				continue
			}
			seen[w] = true
			if keywordSet[w] {
				overlap++
			}
		}
		score += overlap * 3
	}

	for _, w := range query.qw {
		if strings.Contains(docLower, w) {
			score += 1
		}
	}

	return score
}
