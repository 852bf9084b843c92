// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package langparse

import (
	"github.com/codeindexer/codeindex/internal/langparse/golang"
	"github.com/codeindexer/codeindex/internal/langparse/java"
	"github.com/codeindexer/codeindex/internal/langparse/javascript"
	"github.com/codeindexer/codeindex/internal/langparse/python"
	"github.com/codeindexer/codeindex/internal/langparse/rust"
	"github.com/codeindexer/codeindex/internal/langparse/typescript"
)

// defaultAdapters lists the six language adapters NewRegistry wires up.
func defaultAdapters() []Adapter {
	return []Adapter{
		golang.New(),
		python.New(),
		javascript.New(),
		typescript.New(),
		rust.New(),
		java.New(),
	}
}
