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
	"strings"

	"github.com/codeindexer/codeindex/internal/symbol"
)

// Summarizer fills a symbol's one-line Summary field. Spec section 1 scopes
// the real implementation (a call to an external LLM) out as an external
// collaborator; this interface is the narrow seam a host process plugs one
// into. DeterministicSummarizer is the fallback every ingest uses when no
// host-supplied Summarizer is configured.
type Summarizer interface {
	Summarize(ctx context.Context, sym *symbol.Symbol) (string, error)
}

// DeterministicSummarizer derives Summary from what the parser already
// extracted, with no external call: the symbol's first docstring line, or
// its signature if the docstring is empty. It never fails.
type DeterministicSummarizer struct{}

// Summarize implements Summarizer.
func (DeterministicSummarizer) Summarize(_ context.Context, sym *symbol.Symbol) (string, error) {
	return FallbackSummary(sym), nil
}

// FallbackSummary is the pure function DeterministicSummarizer wraps: the
// first non-blank line of the docstring, trimmed of comment markers and
// leading/trailing whitespace, or the signature when there is no docstring.
func FallbackSummary(sym *symbol.Symbol) string {
	for _, line := range strings.Split(sym.Docstring, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'`")
		line = strings.TrimPrefix(line, "///")
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return strings.TrimSpace(sym.Signature)
}

// ApplySummaries fills Summary on every symbol missing one, using s. A nil
// Summarizer falls back to DeterministicSummarizer. Errors from s are
// non-fatal per spec section 7: a failed call leaves that symbol's Summary
// at the deterministic fallback instead of aborting the batch.
func ApplySummaries(ctx context.Context, symbols []*symbol.Symbol, s Summarizer) {
	if s == nil {
		s = DeterministicSummarizer{}
	}
	for _, sym := range symbols {
		if sym.Summary != "" {
			continue
		}
		if text, err := s.Summarize(ctx, sym); err == nil && text != "" {
			sym.Summary = text
		} else {
			sym.Summary = FallbackSummary(sym)
		}
	}
}
