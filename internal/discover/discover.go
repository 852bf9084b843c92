// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package discover is the default local-folder walker: it finds candidate
// source files under a root directory, applies the security gates spec
// section 1 calls out (symlink escape, secret-file patterns, oversized
// files), and tags each survivor with a symbol.Language via go-enry.
//
// Spec section 1 scopes the walker out as "external collaborator,
// interface only" — a host process is free to supply its own file set
// (gitignore filtering, API-downloaded content, whatever). This
// implementation is the default a standalone CLI invocation falls back
// to; it is intentionally conservative rather than exhaustive.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/codeindexer/codeindex/internal/indexstore"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// DefaultMaxFileSize bounds how large a file discover will read before
// excluding it with KindFileTooLarge, matching langparse's own cap.
const DefaultMaxFileSize = 10 * 1024 * 1024

var secretFilePattern = regexp.MustCompile(`(?i)(^|[/\\])(\.env(\..*)?|.*\.pem|.*\.key|id_rsa|id_ed25519|.*_rsa|credentials\.json|\.netrc)$`)

var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	".venv": true, "venv": true, "__pycache__": true,
	"dist": true, "build": true, "target": true,
}

// enryToSymbolLanguage maps go-enry's language names to the six languages
// the index understands. Anything else is skipped (no adapter would claim
// it anyway).
var enryToSymbolLanguage = map[string]symbol.Language{
	"Python":     symbol.LangPython,
	"JavaScript": symbol.LangJavaScript,
	"TypeScript": symbol.LangTypeScript,
	"Go":         symbol.LangGo,
	"Rust":       symbol.LangRust,
	"Java":       symbol.LangJava,
}

// File is one discovered source file: its repo-relative path, content, and
// detected language.
type File struct {
	Path     string
	Content  []byte
	Language symbol.Language
}

// Warning pairs an excluded or unreadable path with the error kind a
// query-tool ingest response reports it under (spec section 7).
type Warning struct {
	Path string
	Kind indexstore.ErrorKind
}

// Walk discovers indexable source files under root. It returns the
// surviving files (content loaded, language detected) plus a Warning for
// every path excluded by a security gate. Walk never returns a fatal error
// for a single bad file; only a root that cannot be walked at all produces
// an error.
func Walk(root string) ([]File, []Warning, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}

	var files []File
	var warnings []Warning

	walkErr := filepath.WalkDir(realRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rel, _ := filepath.Rel(realRoot, path)
			warnings = append(warnings, Warning{Path: rel, Kind: indexstore.KindUnreadable})
			return nil
		}
		if d.IsDir() {
			if path != realRoot && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(realRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if secretFilePattern.MatchString(rel) {
			warnings = append(warnings, Warning{Path: rel, Kind: indexstore.KindSecretFile})
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil || !strings.HasPrefix(target, realRoot+string(filepath.Separator)) {
				warnings = append(warnings, Warning{Path: rel, Kind: indexstore.KindSymlinkEscape})
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			warnings = append(warnings, Warning{Path: rel, Kind: indexstore.KindUnreadable})
			return nil
		}
		if info.Size() > DefaultMaxFileSize {
			warnings = append(warnings, Warning{Path: rel, Kind: indexstore.KindFileTooLarge})
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, Warning{Path: rel, Kind: indexstore.KindUnreadable})
			return nil
		}

		if enry.IsBinary(content) {
			warnings = append(warnings, Warning{Path: rel, Kind: indexstore.KindBinaryExtension})
			return nil
		}

		lang, ok := enryToSymbolLanguage[enry.GetLanguage(filepath.Base(rel), content)]
		if !ok {
			return nil
		}

		files = append(files, File{Path: rel, Content: content, Language: lang})
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, warnings, nil
}
