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

// Package bundle writes a recipe as a build context directory:
//
//	<dir>/
//	  Dockerfile        (or Singularity.def)
//	  spack.yaml        the environment the recipe was generated from
//	  checksums.txt     SHA256 of the files above
//
// The checksums use the sha256sum format, so the context can be verified
// before building:
//
//	cd <dir> && sha256sum -c checksums.txt
package bundle
