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

// Package header provides the common header embedded in structured output.
//
// Recipes, batch results, catalog listings and validation results all carry
// a Header when they are serialized as JSON or YAML:
//
//	h := header.New(
//	    header.WithKind(header.KindRecipe),
//	    header.WithToolVersion("v0.3.0"),
//	)
//
// The header never contains a timestamp. Two runs over the same environment
// produce byte-identical documents.
package header
