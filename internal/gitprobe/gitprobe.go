// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gitprobe shells out to git to read a working tree's current HEAD
// commit for the manifest's git_head field. The probe never fails loudly:
// any error or timeout yields an empty string, since git_head is purely
// informational (spec section 5).
package gitprobe

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// probeTimeout bounds the git subprocess, per spec section 5's "5-second
// timeout and silently yields empty on timeout/error".
const probeTimeout = 5 * time.Second

// HEAD runs "git rev-parse HEAD" in dir and returns the trimmed commit
// hash, or "" if dir is not a git repository, git is unavailable, or the
// probe does not complete within probeTimeout.
func HEAD(dir string) string {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
