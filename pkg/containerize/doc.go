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

// Package containerize turns Spack environment documents into container
// build recipes.
//
// A run validates the document, applies the explicit overrides and hands
// the result to the recipe generator:
//
//	gen := containerize.NewGenerator(containerize.WithVersion(version))
//	r, err := gen.Generate(ctx, raw, config.Overrides{OS: "ubuntu:22.04"}, recipe.StageFinal)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(r)
//
// GenerateBatch renders several independent documents in parallel and
// keeps one result per job in input order.
//
// The package also serves the generator over HTTP:
//
//	POST /v1/recipe   spack.yaml body, recipe text (or JSON) response
//	POST /v1/recipes  bulk JSON request
//	GET  /v1/os       bootstrap OS identifiers
package containerize
