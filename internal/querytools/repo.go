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
	"errors"
	"strings"

	"github.com/codeindexer/codeindex/internal/indexstore"
)

// ErrAmbiguousRepo is returned when a bare repo name matches more than one
// indexed repository's owner/name suffix.
var ErrAmbiguousRepo = errors.New("querytools: repo name is ambiguous")

// ErrUnknownRepo is returned when a bare repo name matches no indexed
// repository.
var ErrUnknownRepo = errors.New("querytools: repo not found")

// resolveRepo splits a caller-supplied repo identifier into (owner, name).
// "owner/name" is used directly. A bare name is resolved by scanning
// store.ListRepos() for a unique "/name" suffix match, per spec section
// 4.5's last paragraph.
func resolveRepo(store *indexstore.Store, identifier string) (owner, name string, err error) {
	if slash := strings.IndexByte(identifier, '/'); slash >= 0 {
		owner, name = identifier[:slash], identifier[slash+1:]
		if owner == "" || name == "" || strings.ContainsRune(name, '/') {
			return "", "", indexstore.ErrInvalidInput
		}
		return owner, name, nil
	}

	repos, err := store.ListRepos()
	if err != nil {
		return "", "", err
	}

	suffix := "/" + identifier
	var match string
	for _, repo := range repos {
		if strings.HasSuffix(repo, suffix) {
			if match != "" {
				return "", "", ErrAmbiguousRepo
			}
			match = repo
		}
	}
	if match == "" {
		return "", "", ErrUnknownRepo
	}

	slash := strings.IndexByte(match, '/')
	return match[:slash], match[slash+1:], nil
}
