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

// Package recipe generates multi-stage container build recipes from a
// validated environment.
//
// # Stages
//
// Every recipe is made of up to three blocks, always in this order:
//
//   - bootstrap: the base OS with the tools Spack needs and a clone of Spack
//   - build: installs the environment with Spack (FROM bootstrap AS builder)
//   - final: a minimal runtime image that copies the installed software from builder
//
// A recipe ending at a stage contains that stage and every stage before it,
// so the bootstrap recipe is a strict prefix of the build recipe, which is a
// strict prefix of the final recipe.
//
// # Generation
//
// Builder.Build drives a small state machine:
//
//	NotStarted -> Bootstrapping -> Building -> Finalizing -> Done
//
// The bootstrap OS is resolved against the catalog on the first transition,
// together with every value the templates need. An unknown or missing OS
// fails with *catalog.UnknownOSError before any text is rendered.
//
// Usage:
//
//	b := recipe.NewBuilder(recipe.WithVersion(version))
//	r, err := b.Build(ctx, cfg, recipe.StageFinal)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(r.String())
//
// # Formats
//
// Templates are embedded in the binary and rendered with text/template:
//
//	templates/docker/{bootstrap,build,final}.tmpl
//	templates/singularity/{bootstrap,build,final}.tmpl
//
// Output is deterministic. Labels are sorted by key and the build manifest
// is rendered with sorted keys, so the same input always yields the same bytes.
//
// # Labels
//
// The final stage carries the user labels, the OCI base image annotations
// (org.opencontainers.image.base.name and .digest) and, when a monitor block
// is configured, io.spack.monitor.* labels.
//
// # Metrics
//
//   - containerize_recipe_build_duration_seconds: generation latency
//   - containerize_recipes_generated_total{format,last_stage}: recipes produced
//   - containerize_recipe_failures_total{reason}: failed generations
package recipe
