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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/recipe"
)

// Job is one environment document to render.
type Job struct {
	// Name identifies the job in results and logs, for example its directory.
	Name      string
	Document  []byte
	Overrides config.Overrides
	LastStage recipe.Stage
}

// Result is the outcome of one Job. Exactly one of Recipe and Err is set.
type Result struct {
	Name   string
	Recipe *recipe.Recipe
	Err    error
}

// GenerateBatch renders jobs in parallel, at most limit at a time, or the
// generator's concurrency when limit is not positive. Results are in the
// order of jobs and a failing job does not stop the others.
func (g *Generator) GenerateBatch(ctx context.Context, jobs []Job, limit int) []Result {
	if limit <= 0 {
		limit = g.concurrency
	}

	start := time.Now()
	results := make([]Result, len(jobs))

	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, job := range jobs {
		eg.Go(func() error {
			r, err := g.Generate(ctx, job.Document, job.Overrides, job.LastStage)
			results[i] = Result{Name: job.Name, Recipe: r, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	slog.Debug("batch generated",
		"jobs", len(jobs),
		"limit", limit,
		"failed", len(Failed(results)),
		"duration", time.Since(start).String(),
	)

	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// JoinErrors combines the errors of failed results, each prefixed with its
// job name. It returns nil when every job succeeded.
func JoinErrors(results []Result) error {
	var errs []error
	for _, r := range Failed(results) {
		errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
	}
	return errors.Join(errs...)
}
