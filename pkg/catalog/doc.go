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

// Package catalog is the registry of bootstrap operating systems.
//
// The registry is embedded in the binary (data/images.yaml) and parsed once.
// Each Descriptor names the base image of the bootstrap stage, the runtime
// image of the final stage and the package manager commands for that OS
// family.
//
//	cat, err := catalog.Default()
//	if err != nil {
//	    return err
//	}
//	d, err := cat.Resolve("ubuntu:22.04")
//	var unknown *catalog.UnknownOSError
//	if errors.As(err, &unknown) {
//	    fmt.Println("did you mean", unknown.Suggestion())
//	}
//
// Resolution is exact and case-sensitive. Short aliases such as "ubuntu20"
// are identifiers in their own right.
package catalog
