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

// Package cli implements the containerize command line.
//
// # Usage
//
//	containerize [--list-os] [--os OS] [--last-stage bootstrap|build|final]
//	             [-e DIR]... [-f FILE] [-o OUTPUT] [--format text|json|yaml|table]
//	             [--monitor [--monitor-host H] [--monitor-prefix P]
//	             [--monitor-keep-going] [--monitor-tags T]]
//
// Without --env-dir or --file the spack.yaml of the current directory is
// used. The recipe is printed to stdout unless --output names a file or a
// ConfigMap (cm://namespace/name).
//
// Explicit flags take precedence over the environment: --os replaces
// container.images.os and --monitor replaces the whole monitor block.
//
// # Commands
//
// validate - check environments and print their normalized form:
//
//	containerize validate -e envs/app
//
// # Output Formats
//
// Text (default) prints the recipe itself. JSON and YAML print a Recipe
// document holding each stage's block, and are required when rendering
// more than one environment to a single output.
//
// # Environment Variables
//
//	CONTAINERIZE_OS, CONTAINERIZE_LAST_STAGE, CONTAINERIZE_LOG_LEVEL,
//	CONTAINERIZE_DEBUG, CONTAINERIZE_MONITOR_HOST, CONTAINERIZE_MONITOR_PREFIX,
//	KUBECONFIG
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/spack/containerize/pkg/cli.version=1.0.0'"
package cli
