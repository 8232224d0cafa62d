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

// Package config validates Spack environment documents and applies
// command-line overrides to them.
//
// Validate turns the raw spack.yaml (YAML or JSON) into a Config whose
// fields are all present and well-formed, so the recipe generator never
// re-checks shapes. A mapping that declares a key twice is rejected before
// anything else. Checks then run in order of concern: root key, container
// section, images, format, os_packages, labels and strip, monitor, specs. The first violation is returned as *ValidationError
// with the dotted path and source line of the offending node.
//
// Values that end up in shell commands or on single recipe lines are
// restricted: git refs (CheckGitRef), package names (CheckPackage) and
// labels (CheckLabel). The generator applies the same checks to configs
// that did not come from Validate.
//
// ApplyOverrides never mutates its input:
//
//	cfg, err := config.Validate(raw)
//	if err != nil {
//	    return err
//	}
//	final := config.ApplyOverrides(cfg, config.Overrides{OS: "ubuntu:22.04"})
//
// Keys of the environment that containerize does not interpret (view,
// packages, concretizer, ...) are kept in Environment.Extra and written
// back into the manifest of the build stage.
package config
