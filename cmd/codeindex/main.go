// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command codeindex is a standalone driver for the source-code indexing
// and retrieval engine in internal/. It is not the host protocol spec
// section 1 describes (that line-delimited JSON dispatcher belongs to the
// agentic code-assistant that embeds this engine, and is out of scope) —
// it is the reference CLI used to ingest a local checkout and exercise
// every query operation against the resulting index.
package main

import (
	"log"

	"github.com/codeindexer/codeindex/internal/logging"
)

var logger *logging.Logger

func main() {
	logger = logging.Default()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
