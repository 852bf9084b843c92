// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package indexstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/codeindexer/codeindex/internal/obsmetrics"
	"github.com/codeindexer/codeindex/internal/symbol"
)

// Store persists repository indexes under a base directory: one manifest
// file plus one mirror directory per repo (spec section 4.4's on-disk
// layout). A Store holds no caches between calls; every operation reloads
// the manifest from disk, matching spec section 5's "shared resources:
// none process-wide".
type Store struct {
	basePath string
}

// NewIndexStore returns a Store rooted at basePath. The directory is not
// created until the first Save.
func NewIndexStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

func (s *Store) manifestPath(owner, name string) string {
	return filepath.Join(s.basePath, repoKey(owner, name)+".json")
}

func (s *Store) mirrorDir(owner, name string) string {
	return filepath.Join(s.basePath, repoKey(owner, name))
}

// Save writes a full manifest and mirror for one repository, overwriting
// any prior index. file_hashes entries already present in fileHashes are
// trusted as-is; any raw file without a pre-supplied hash is hashed here.
//
// Mirror files are written before the manifest is renamed into place, so
// that a reader observing the new manifest always finds its referenced
// bytes already on disk (spec section 5's ordering guarantee).
func (s *Store) Save(
	owner, name string,
	sourceFiles []string,
	symbols []*symbol.Symbol,
	rawFiles map[string][]byte,
	languages map[string]int,
	fileHashes map[string]string,
	gitHead string,
) error {
	if err := validateOwnerName(owner, name); err != nil {
		return err
	}

	hashes := make(map[string]string, len(rawFiles))
	for path, h := range fileHashes {
		hashes[path] = h
	}
	for path, content := range rawFiles {
		if _, ok := hashes[path]; !ok {
			hashes[path] = contentHash(content)
		}
	}

	sorted := append([]string(nil), sourceFiles...)
	sort.Strings(sorted)

	m := &Manifest{
		Repo:         repoLabel(owner, name),
		Owner:        owner,
		Name:         name,
		IndexedAt:    time.Now().UTC().Format(time.RFC3339),
		SourceFiles:  sorted,
		Languages:    languages,
		Symbols:      symbols,
		IndexVersion: SchemaVersion,
		FileHashes:   hashes,
		GitHead:      gitHead,
	}

	start := time.Now()
	if err := s.writeMirror(owner, name, rawFiles, nil); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	err := s.writeManifestAtomic(owner, name, m)
	obsmetrics.RecordIndexSave(context.Background(), false, time.Since(start))
	return err
}

// Load reads and validates a manifest. It never returns an I/O error for
// "no manifest" or "schema too new" — both collapse to ErrMissing, per
// spec section 4.4's "returns missing ... without raising".
func (s *Store) Load(owner, name string) (*Manifest, error) {
	if err := validateOwnerName(owner, name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.manifestPath(owner, name))
	if err != nil {
		return nil, ErrMissing
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, ErrMissing
	}
	if m.IndexVersion > SchemaVersion {
		obsmetrics.RecordSchemaFuture(context.Background())
		return nil, ErrMissing
	}
	if m.FileHashes == nil {
		m.FileHashes = map[string]string{}
	}
	if m.Languages == nil {
		m.Languages = map[string]int{}
	}
	return &m, nil
}

// ReadMirrorFile returns the full verbatim content of one mirrored file,
// for callers (querytools) that need more than a single symbol's byte
// range — file outlines, context lines around a symbol, hash verification.
func (s *Store) ReadMirrorFile(owner, name, file string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.mirrorDir(owner, name), filepath.FromSlash(file)))
	if err != nil {
		return nil, ErrSymbolNotFound
	}
	return data, nil
}

// GetSymbolContent loads the manifest, locates id, and reads exactly
// byte_length bytes starting at byte_offset from the mirrored file. The
// result is decoded as UTF-8 with invalid sequences replaced by U+FFFD; it
// never re-parses the source.
func (s *Store) GetSymbolContent(owner, name, id string) (string, error) {
	m, err := s.Load(owner, name)
	if err != nil {
		return "", err
	}

	var sym *symbol.Symbol
	for _, sy := range m.Symbols {
		if sy.ID == id {
			sym = sy
			break
		}
	}
	if sym == nil {
		return "", ErrSymbolNotFound
	}

	f, err := os.Open(filepath.Join(s.mirrorDir(owner, name), filepath.FromSlash(sym.File)))
	if err != nil {
		return "", ErrSymbolNotFound
	}
	defer f.Close()

	buf := make([]byte, sym.ByteLength)
	if sym.ByteLength > 0 {
		if _, err := f.ReadAt(buf, int64(sym.ByteOffset)); err != nil {
			return "", ErrSymbolNotFound
		}
	}

	return strings.ToValidUTF8(string(buf), "�"), nil
}

// DetectChanges partitions currentFiles against the stored file_hashes map.
// With no prior index, every path in currentFiles is reported as new.
func (s *Store) DetectChanges(owner, name string, currentFiles map[string][]byte) (changed, newFiles, deleted []string, err error) {
	m, loadErr := s.Load(owner, name)
	if loadErr != nil {
		newFiles = make([]string, 0, len(currentFiles))
		for path := range currentFiles {
			newFiles = append(newFiles, path)
		}
		sort.Strings(newFiles)
		return nil, newFiles, nil, nil
	}

	for path, content := range currentFiles {
		h := contentHash(content)
		if prior, ok := m.FileHashes[path]; ok {
			if prior != h {
				changed = append(changed, path)
			}
		} else {
			newFiles = append(newFiles, path)
		}
	}
	for path := range m.FileHashes {
		if _, ok := currentFiles[path]; !ok {
			deleted = append(deleted, path)
		}
	}

	sort.Strings(changed)
	sort.Strings(newFiles)
	sort.Strings(deleted)
	return changed, newFiles, deleted, nil
}

// IncrementalSave rewrites the manifest restricted to the files named by
// changed/newFiles/deleted, per spec section 4.4's seven-step algorithm.
// freshSymbols holds the newly parsed symbols for changed ∪ newFiles;
// rawFiles holds their content, keyed by path, for hashing and mirroring.
// Returns ErrMissing if no prior index exists.
func (s *Store) IncrementalSave(
	owner, name string,
	changed, newFiles, deleted []string,
	freshSymbols []*symbol.Symbol,
	rawFiles map[string][]byte,
	languages map[string]int,
) error {
	if err := validateOwnerName(owner, name); err != nil {
		return err
	}

	prior, err := s.Load(owner, name)
	if err != nil {
		return ErrMissing
	}

	drop := make(map[string]bool, len(changed)+len(deleted))
	for _, f := range changed {
		drop[f] = true
	}
	for _, f := range deleted {
		drop[f] = true
	}

	keptSymbols := make([]*symbol.Symbol, 0, len(prior.Symbols))
	for _, sy := range prior.Symbols {
		if !drop[sy.File] {
			keptSymbols = append(keptSymbols, sy)
		}
	}
	keptSymbols = append(keptSymbols, freshSymbols...)

	fileSet := make(map[string]bool, len(prior.SourceFiles))
	for _, f := range prior.SourceFiles {
		fileSet[f] = true
	}
	for _, f := range deleted {
		delete(fileSet, f)
	}
	for _, f := range newFiles {
		fileSet[f] = true
	}
	for _, f := range changed {
		fileSet[f] = true
	}
	sourceFiles := make([]string, 0, len(fileSet))
	for f := range fileSet {
		sourceFiles = append(sourceFiles, f)
	}
	sort.Strings(sourceFiles)

	hashes := make(map[string]string, len(prior.FileHashes))
	for path, h := range prior.FileHashes {
		hashes[path] = h
	}
	for _, f := range deleted {
		delete(hashes, f)
	}
	for path, content := range rawFiles {
		hashes[path] = contentHash(content)
	}

	updated := &Manifest{
		Repo:         prior.Repo,
		Owner:        owner,
		Name:         name,
		IndexedAt:    time.Now().UTC().Format(time.RFC3339),
		SourceFiles:  sourceFiles,
		Languages:    languages,
		Symbols:      keptSymbols,
		IndexVersion: SchemaVersion,
		FileHashes:   hashes,
		GitHead:      prior.GitHead,
	}

	start := time.Now()
	if err := s.writeMirror(owner, name, rawFiles, deleted); err != nil {
		return fmt.Errorf("update mirror: %w", err)
	}
	err = s.writeManifestAtomic(owner, name, updated)
	obsmetrics.RecordIndexSave(context.Background(), true, time.Since(start))
	return err
}

// ListRepos scans the base directory for manifest files, tolerating
// malformed or future-schema entries by skipping them silently.
func (s *Store) ListRepos() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var repos []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, e.Name()))
		if err != nil {
			continue
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		if m.IndexVersion > SchemaVersion || m.Repo == "" {
			continue
		}
		repos = append(repos, m.Repo)
	}
	sort.Strings(repos)
	return repos, nil
}

// DeleteIndex removes both the manifest and the mirror directory, reporting
// whether either was present.
func (s *Store) DeleteIndex(owner, name string) (bool, error) {
	if err := validateOwnerName(owner, name); err != nil {
		return false, err
	}

	removed := false
	if _, err := os.Stat(s.manifestPath(owner, name)); err == nil {
		removed = true
	}
	if _, err := os.Stat(s.mirrorDir(owner, name)); err == nil {
		removed = true
	}

	if err := os.Remove(s.manifestPath(owner, name)); err != nil && !os.IsNotExist(err) {
		return removed, err
	}
	if err := os.RemoveAll(s.mirrorDir(owner, name)); err != nil {
		return removed, err
	}
	return removed, nil
}

// writeMirror deletes mirrorDeletes and writes the content of writeFiles
// into the repo's mirror directory, creating parent directories lazily.
func (s *Store) writeMirror(owner, name string, writeFiles map[string][]byte, mirrorDeletes []string) error {
	dir := s.mirrorDir(owner, name)
	for _, rel := range mirrorDeletes {
		_ = os.Remove(filepath.Join(dir, filepath.FromSlash(rel)))
	}
	for rel, content := range writeFiles {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// writeManifestAtomic serializes m as pretty JSON into a temp file beside
// the target manifest, then renames over it. Grounded on the teacher's
// checkpoint temp-file+sync+rename sequence.
func (s *Store) writeManifestAtomic(owner, name string, m *Manifest) error {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return fmt.Errorf("create base dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tempFile, err := os.CreateTemp(s.basePath, ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("sync manifest: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}

	if err := os.Rename(tempPath, s.manifestPath(owner, name)); err != nil {
		return fmt.Errorf("rename manifest: %w", err)
	}
	success = true
	return nil
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
