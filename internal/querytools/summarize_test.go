// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package querytools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeindexer/codeindex/internal/symbol"
)

func TestFallbackSummary_PrefersFirstDocstringLine(t *testing.T) {
	sym := &symbol.Symbol{
		Signature: "func Fetch(id string) (string, error)",
		Docstring: "Fetch loads a document by id.\nSecond line ignored.",
	}
	assert.Equal(t, "Fetch loads a document by id.", FallbackSummary(sym))
}

func TestFallbackSummary_FallsBackToSignatureWhenNoDocstring(t *testing.T) {
	sym := &symbol.Symbol{Signature: "func Fetch(id string) (string, error)"}
	assert.Equal(t, "func Fetch(id string) (string, error)", FallbackSummary(sym))
}

type stubSummarizer struct {
	text string
	err  error
}

func (s stubSummarizer) Summarize(context.Context, *symbol.Symbol) (string, error) {
	return s.text, s.err
}

func TestApplySummaries_UsesSummarizerWhenItSucceeds(t *testing.T) {
	syms := []*symbol.Symbol{{Signature: "func F()"}}
	ApplySummaries(context.Background(), syms, stubSummarizer{text: "does a thing"})
	assert.Equal(t, "does a thing", syms[0].Summary)
}

func TestApplySummaries_FallsBackOnSummarizerError(t *testing.T) {
	syms := []*symbol.Symbol{{Signature: "func F()", Docstring: "Does a thing."}}
	ApplySummaries(context.Background(), syms, stubSummarizer{err: errors.New("llm unavailable")})
	assert.Equal(t, "Does a thing.", syms[0].Summary)
}

func TestApplySummaries_SkipsSymbolsWithExistingSummary(t *testing.T) {
	syms := []*symbol.Symbol{{Summary: "already set", Signature: "func F()"}}
	ApplySummaries(context.Background(), syms, stubSummarizer{text: "overwritten?"})
	assert.Equal(t, "already set", syms[0].Summary)
}

func TestApplySummaries_NilSummarizerUsesDeterministicFallback(t *testing.T) {
	syms := []*symbol.Symbol{{Signature: "func F()"}}
	ApplySummaries(context.Background(), syms, nil)
	assert.Equal(t, "func F()", syms[0].Summary)
}
