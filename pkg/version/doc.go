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

// Package version parses and compares dotted release numbers.
//
// It is used to check the Spack git ref requested by an environment
// (images.spack) against the oldest release the generated recipes support.
//
//	v, ok := version.FromRef("releases/v0.21")
//	if ok && !v.EqualsOrNewer(version.MustParseVersion("0.16.0")) {
//	    // too old
//	}
package version
