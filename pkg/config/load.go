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

package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spack/containerize/pkg/defaults"
	"github.com/spack/containerize/pkg/serializer"
)

// EnvironmentFile is the file name of an environment inside its directory.
const EnvironmentFile = "spack.yaml"

// ResolvePath returns the absolute path of the environment file in dir.
// An empty dir means the working directory. The file must exist.
func ResolvePath(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	path, err := filepath.Abs(filepath.Join(dir, EnvironmentFile))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return path, nil
}

// Read returns the raw bytes of an environment from a local path or an
// http(s) URL. Documents larger than defaults.MaxEnvironmentBytes are rejected.
func Read(ctx context.Context, source string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.EnvironmentReadTimeout)
	defer cancel()

	if isURL(source) {
		slog.Debug("fetching environment", "url", source)
		reader := serializer.NewHttpReader(serializer.WithMaxBytes(defaults.MaxEnvironmentBytes))
		data, err := reader.ReadWithContext(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch environment %s: %w", source, err)
		}
		return data, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open environment %s: %w", source, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, defaults.MaxEnvironmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read environment %s: %w", source, err)
	}
	if len(data) > defaults.MaxEnvironmentBytes {
		return nil, fmt.Errorf("environment %s exceeds %d bytes", source, defaults.MaxEnvironmentBytes)
	}
	return data, nil
}

// Load reads and validates the environment at source.
func Load(ctx context.Context, source string) (*Config, error) {
	data, err := Read(ctx, source)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
