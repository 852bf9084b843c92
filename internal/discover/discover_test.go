// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/indexstore"
	"github.com/codeindexer/codeindex/internal/symbol"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_DetectsLanguageAndSkipsVendorDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")

	files, warnings, err := Walk(root)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
	assert.Equal(t, symbol.LangGo, files[0].Language)
}

func TestWalk_ExcludesSecretFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "SECRET=1\n")
	writeFile(t, root, "main.py", "def f():\n    pass\n")

	files, warnings, err := Walk(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.py", files[0].Path)

	require.Len(t, warnings, 1)
	assert.Equal(t, indexstore.KindSecretFile, warnings[0].Kind)
}

func TestWalk_ExcludesOversizedFiles(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, DefaultMaxFileSize+1)
	writeFile(t, root, "huge.go", string(big))

	files, warnings, err := Walk(root)
	require.NoError(t, err)
	assert.Empty(t, files)
	require.Len(t, warnings, 1)
	assert.Equal(t, indexstore.KindFileTooLarge, warnings[0].Kind)
}

func TestWalk_SkipsUnrecognizedLanguagesSilently(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# hello\n")

	files, warnings, err := Walk(root)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, warnings)
}
