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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/spack/containerize/pkg/bundle"
	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/containerize"
	"github.com/spack/containerize/pkg/defaults"
	"github.com/spack/containerize/pkg/header"
	"github.com/spack/containerize/pkg/recipe"
	"github.com/spack/containerize/pkg/serializer"
)

// listOSMessage introduces the bootstrap OS list in text output.
const listOSMessage = "The following operating systems can be used to bootstrap Spack:"

func containerizeAction(ctx context.Context, cmd *cli.Command) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	gen := containerize.NewGenerator(containerize.WithVersion(version))

	if cmd.Bool("list-os") {
		return listOS(ctx, cmd, gen, outFormat)
	}

	last, err := recipe.ParseStage(cmd.String("last-stage"))
	if err != nil {
		return err
	}

	sources, err := environmentSources(cmd)
	if err != nil {
		return err
	}

	overrides := overridesFromCmd(cmd)
	if len(sources) == 1 {
		return renderOne(ctx, cmd, gen, sources[0], overrides, last, outFormat)
	}
	return renderBatch(ctx, cmd, gen, sources, overrides, last, outFormat)
}

func listOS(ctx context.Context, cmd *cli.Command, gen *containerize.Generator, outFormat serializer.Format) error {
	cat, err := gen.Catalog()
	if err != nil {
		return err
	}

	if outFormat == serializer.FormatText {
		msg := fmt.Sprintf("%s\n%s\n", listOSMessage, strings.Join(cat.List(), " "))
		return writeOutput(ctx, cmd, outFormat, msg)
	}

	return writeOutput(ctx, cmd, outFormat, &containerize.OSList{
		Header: header.New(
			header.WithKind(header.KindOSCatalog),
			header.WithToolVersion(version),
		),
		Identifiers: cat.List(),
		Images:      cat.Descriptors(),
	})
}

func renderOne(ctx context.Context, cmd *cli.Command, gen *containerize.Generator, source string,
	overrides config.Overrides, last recipe.Stage, outFormat serializer.Format) error {

	raw, err := config.Read(ctx, source)
	if err != nil {
		return err
	}

	slog.Debug("generating recipe", "source", source, "os", overrides.OS, "last_stage", last)

	rec, err := gen.Generate(ctx, raw, overrides, last)
	if err != nil {
		return err
	}

	if dir := cmd.String("bundle"); dir != "" {
		res, err := bundle.Write(ctx, dir, rec, raw)
		if err != nil {
			return err
		}
		slog.Info(res.Summary(), "duration", res.Duration)
		return writeOutput(ctx, cmd, outFormat, res)
	}

	return writeOutput(ctx, cmd, outFormat, rec)
}

// renderBatch renders every environment in parallel. With text output
// each recipe is written next to its spack.yaml; otherwise a single
// RecipeBatch document is written to the output.
func renderBatch(ctx context.Context, cmd *cli.Command, gen *containerize.Generator, sources []string,
	overrides config.Overrides, last recipe.Stage, outFormat serializer.Format) error {

	if cmd.String("bundle") != "" {
		return fmt.Errorf("--bundle supports a single environment")
	}
	if outFormat == serializer.FormatText && cmd.String("output") != "" {
		return fmt.Errorf("--output requires --format json or yaml when rendering more than one environment")
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.BatchTimeout)
	defer cancel()

	jobs := make([]containerize.Job, 0, len(sources))
	for _, src := range sources {
		raw, err := config.Read(ctx, src)
		if err != nil {
			return err
		}
		jobs = append(jobs, containerize.Job{
			Name:      filepath.Dir(src),
			Document:  raw,
			Overrides: overrides,
			LastStage: last,
		})
	}

	results := gen.GenerateBatch(ctx, jobs, 0)

	if outFormat == serializer.FormatText {
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			path := filepath.Join(res.Name, res.Recipe.FileName())
			if err := os.WriteFile(path, []byte(res.Recipe.String()), 0o644); err != nil {
				return fmt.Errorf("failed to write recipe %s: %w", path, err)
			}
			slog.Info("recipe written", "path", path, "os", res.Recipe.OS)
		}
		return containerize.JoinErrors(results)
	}

	doc := containerize.BulkResponse{
		Header: header.New(
			header.WithKind(header.KindRecipeBatch),
			header.WithToolVersion(version),
		),
		Results: make([]containerize.BulkResult, 0, len(results)),
	}
	for _, res := range results {
		out := containerize.BulkResult{Name: res.Name, Recipe: res.Recipe}
		if res.Err != nil {
			se := containerize.ToStructured(res.Err)
			out.Error = &containerize.BulkError{
				Code:    string(se.Code),
				Message: explain(res.Err).Error(),
				Details: se.Context,
			}
			doc.Failed++
		}
		doc.Results = append(doc.Results, out)
	}

	if err := writeOutput(ctx, cmd, outFormat, &doc); err != nil {
		return err
	}
	if doc.Failed > 0 {
		return fmt.Errorf("%d of %d environments failed: %w", doc.Failed, len(results), containerize.JoinErrors(results))
	}
	return nil
}

// writeOutput serializes data to --output, or to the command's writer when
// no output is set.
func writeOutput(ctx context.Context, cmd *cli.Command, outFormat serializer.Format, data any) error {
	var ser serializer.Serializer
	if path := cmd.String("output"); path != "" {
		s, err := serializer.NewFileWriterOrStdout(outFormat, path)
		if err != nil {
			return fmt.Errorf("failed to create output writer: %w", err)
		}
		ser = s
	} else {
		ser = serializer.NewWriter(outFormat, cmd.Root().Writer)
	}

	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}
	}()

	return ser.Serialize(ctx, data)
}
