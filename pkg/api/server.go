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

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spack/containerize/pkg/containerize"
	"github.com/spack/containerize/pkg/logging"
	"github.com/spack/containerize/pkg/server"
)

const (
	name           = "containerized"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/spack/containerize/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown.
func Serve() error {
	ctx := context.Background()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	cfg := server.NewConfig()
	cfg.Name = name
	cfg.Version = version

	gen := containerize.NewGenerator(
		containerize.WithVersion(version),
		containerize.WithMaxBulkRequests(cfg.MaxBulkRequests),
	)

	// Fail at startup rather than on the first request.
	if _, err := gen.Catalog(); err != nil {
		slog.Error("failed to load OS catalog", "error", err)
		return err
	}

	s := server.New(
		server.WithConfig(cfg),
		server.WithHandler(routes(gen)),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

func routes(gen *containerize.Generator) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/recipe":  gen.HandleRecipe,
		"/v1/recipes": gen.HandleRecipes,
		"/v1/os":      gen.HandleOS,
	}
}
