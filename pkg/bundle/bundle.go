// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bundle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/recipe"
)

// ChecksumFileName is the name of the checksum file in a bundle.
const ChecksumFileName = "checksums.txt"

// Result describes a written bundle.
type Result struct {
	Dir      string        `json:"dir" yaml:"dir"`
	Files    []string      `json:"files" yaml:"files"`
	Size     int64         `json:"sizeBytes" yaml:"sizeBytes"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Summary returns a one-line description of the bundle.
func (r *Result) Summary() string {
	return fmt.Sprintf("Wrote %d files (%s) to %s", len(r.Files), formatBytes(r.Size), r.Dir)
}

// Text lets text serializers print the summary.
func (r *Result) Text() string {
	return r.Summary() + "\n"
}

// Write creates dir if needed and writes rec, the environment document env
// and their checksums into it. Existing files of the same name are replaced.
func Write(ctx context.Context, dir string, rec *recipe.Recipe, env []byte) (*Result, error) {
	if rec == nil {
		return nil, fmt.Errorf("recipe cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	start := time.Now()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bundle directory %s: %w", dir, err)
	}

	res := &Result{Dir: dir}
	files := []struct {
		name string
		data []byte
	}{
		{rec.FileName(), []byte(rec.String())},
		{config.EnvironmentFile, env},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
		res.Files = append(res.Files, f.name)
		res.Size += int64(len(f.data))
	}

	sumSize, err := writeChecksums(ctx, dir, paths)
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, ChecksumFileName)
	res.Size += sumSize
	res.Duration = time.Since(start)

	slog.Debug("bundle written",
		"dir", dir,
		"files", len(res.Files),
		"size", res.Size,
	)
	return res, nil
}

// writeChecksums writes the SHA256 of every file, relative to dir, into
// the checksum file and returns its size.
func writeChecksums(ctx context.Context, dir string, files []string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}

	lines := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s for checksum: %w", file, err)
		}

		hash := sha256.Sum256(data)
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			rel = file
		}
		lines = append(lines, fmt.Sprintf("%s  %s", hex.EncodeToString(hash[:]), rel))
	}

	content := strings.Join(lines, "\n") + "\n"
	path := filepath.Join(dir, ChecksumFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write checksums: %w", err)
	}
	return int64(len(content)), nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
