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

package containerize

import (
	"context"
	"log/slog"

	"github.com/spack/containerize/pkg/catalog"
	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/defaults"
	"github.com/spack/containerize/pkg/recipe"
)

// Option is a functional option for configuring a Generator.
type Option func(*Generator)

// WithCatalog sets the OS catalog. The embedded catalog is used by default.
func WithCatalog(c *catalog.Catalog) Option {
	return func(g *Generator) {
		g.catalog = c
	}
}

// WithVersion records the tool version in generated recipes.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithSpackRepository sets the git repository cloned in the bootstrap stage.
func WithSpackRepository(url string) Option {
	return func(g *Generator) {
		g.spackRepo = url
	}
}

// WithConcurrency sets how many jobs GenerateBatch runs at once.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithMaxBulkRequests caps the number of jobs accepted by the bulk endpoint.
func WithMaxBulkRequests(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxBulk = n
		}
	}
}

// Generator runs the validate, override and build pipeline.
// It is safe for concurrent use.
type Generator struct {
	catalog     *catalog.Catalog
	version     string
	spackRepo   string
	concurrency int
	maxBulk     int
	builder     *recipe.Builder
}

// NewGenerator returns a Generator configured with opts.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		concurrency: defaults.BatchConcurrency,
		maxBulk:     100,
	}
	for _, opt := range opts {
		opt(g)
	}

	bopts := []recipe.Option{
		recipe.WithVersion(g.version),
		recipe.WithSpackRepository(g.spackRepo),
	}
	if g.catalog != nil {
		bopts = append(bopts, recipe.WithCatalog(g.catalog))
	}
	g.builder = recipe.NewBuilder(bopts...)

	return g
}

// Catalog returns the OS catalog the generator resolves against.
func (g *Generator) Catalog() (*catalog.Catalog, error) {
	if g.catalog != nil {
		return g.catalog, nil
	}
	return catalog.Default()
}

// Generate validates raw, applies o and renders the recipe up to last.
//
// Validation failures are returned as *config.ValidationError and catalog
// misses as *catalog.UnknownOSError, unchanged.
func (g *Generator) Generate(ctx context.Context, raw []byte, o config.Overrides, last recipe.Stage) (*recipe.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.GenerateTimeout)
	defer cancel()

	cfg, err := config.Validate(raw)
	if err != nil {
		return nil, err
	}

	if !o.IsZero() {
		slog.Debug("applying overrides", "os", o.OS, "monitor", o.Monitor != nil)
		cfg = config.ApplyOverrides(cfg, o)
	}

	return g.builder.Build(ctx, cfg, last)
}

// Generate runs raw through a Generator with default settings.
func Generate(ctx context.Context, raw []byte, o config.Overrides, last recipe.Stage) (*recipe.Recipe, error) {
	return NewGenerator().Generate(ctx, raw, o, last)
}
