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

package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/spack/containerize/pkg/catalog"
	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/header"
)

// Option is a functional option for configuring a Builder.
type Option func(*Builder)

// WithCatalog sets the OS catalog. The embedded catalog is used by default.
func WithCatalog(c *catalog.Catalog) Option {
	return func(b *Builder) {
		b.catalog = c
	}
}

// WithVersion records the tool version in the recipe metadata.
func WithVersion(version string) Option {
	return func(b *Builder) {
		b.version = version
	}
}

// WithSpackRepository sets the git repository cloned in the bootstrap stage.
func WithSpackRepository(url string) Option {
	return func(b *Builder) {
		if url != "" {
			b.spackRepo = url
		}
	}
}

// Builder generates recipes from validated configurations. A Builder holds
// no mutable state and is safe for concurrent use.
type Builder struct {
	catalog   *catalog.Catalog
	version   string
	spackRepo string
}

// NewBuilder returns a Builder configured with opts.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{spackRepo: DefaultSpackRepository}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build generates the recipe for cfg, stopping after last.
//
// The bootstrap OS is resolved before anything is rendered; an unknown or
// missing OS fails with *catalog.UnknownOSError and no recipe. Build does
// not modify cfg.
func (b *Builder) Build(ctx context.Context, cfg *config.Config, last Stage) (*Recipe, error) {
	start := time.Now()
	defer func() {
		recipeBuildDuration.Observe(time.Since(start).Seconds())
	}()

	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if !last.IsValid() {
		return nil, fmt.Errorf("invalid last stage %d", int(last))
	}
	if err := ctx.Err(); err != nil {
		recipeFailures.WithLabelValues(failureCanceled).Inc()
		return nil, fmt.Errorf("recipe generation canceled: %w", err)
	}
	if err := checkRepository(b.spackRepo); err != nil {
		recipeFailures.WithLabelValues(failureInvalidConfig).Inc()
		return nil, err
	}

	cat := b.catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			return nil, err
		}
	}

	format := cfg.Environment.Container.Format
	if format == "" {
		format = config.FormatDocker
	}
	set, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	tmpl, ok := set[format]
	if !ok {
		return nil, fmt.Errorf("unsupported recipe format %q", format)
	}

	g := &generation{
		catalog: cat,
		cfg:     cfg,
		repo:    b.spackRepo,
		tmpl:    tmpl,
		last:    last,
	}
	for g.state != stateDone {
		if err := g.advance(); err != nil {
			recipeFailures.WithLabelValues(failureReason(err)).Inc()
			slog.Debug("recipe generation failed", "state", g.state.String(), "error", err)
			return nil, err
		}
	}

	recipesGenerated.WithLabelValues(format.String(), last.String()).Inc()
	slog.Debug("recipe generated",
		"os", g.view.OS.ID,
		"format", format,
		"last_stage", last,
		"blocks", len(g.blocks),
	)

	return &Recipe{
		Header: header.New(
			header.WithKind(header.KindRecipe),
			header.WithToolVersion(b.version),
		),
		Format:    format,
		OS:        g.view.OS.ID,
		LastStage: last,
		Blocks:    g.blocks,
	}, nil
}

type state int

const (
	stateNotStarted state = iota
	stateBootstrapping
	stateBuilding
	stateFinalizing
	stateDone
)

func (s state) String() string {
	switch s {
	case stateNotStarted:
		return "NotStarted"
	case stateBootstrapping:
		return "Bootstrapping"
	case stateBuilding:
		return "Building"
	case stateFinalizing:
		return "Finalizing"
	case stateDone:
		return "Done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// generation is a single run of the stage state machine.
type generation struct {
	catalog *catalog.Catalog
	cfg     *config.Config
	repo    string
	tmpl    *template.Template
	last    Stage

	state  state
	view   *view
	blocks []Block
}

// advance performs one transition, emitting the block of the stage entered.
func (g *generation) advance() error {
	switch g.state {
	case stateNotStarted:
		v, err := newView(g.catalog, g.cfg, g.repo)
		if err != nil {
			return err
		}
		g.view = v
		g.state = stateBootstrapping
		return g.emit(StageBootstrap)
	case stateBootstrapping:
		if g.last == StageBootstrap {
			g.state = stateDone
			return nil
		}
		g.state = stateBuilding
		return g.emit(StageBuild)
	case stateBuilding:
		if g.last == StageBuild {
			g.state = stateDone
			return nil
		}
		g.state = stateFinalizing
		return g.emit(StageFinal)
	case stateFinalizing:
		g.state = stateDone
		return nil
	default:
		return fmt.Errorf("no transition from state %s", g.state)
	}
}

func (g *generation) emit(s Stage) error {
	text, err := render(g.tmpl, s, g.view)
	if err != nil {
		return err
	}
	g.blocks = append(g.blocks, Block{Stage: s, Text: text})
	return nil
}

func failureReason(err error) string {
	var unknown *catalog.UnknownOSError
	if errors.As(err, &unknown) {
		return failureUnknownOS
	}
	var tmplErr template.ExecError
	if errors.As(err, &tmplErr) {
		return failureRender
	}
	return failureInvalidConfig
}
