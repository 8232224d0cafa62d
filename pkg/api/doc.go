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

// Package api wires the recipe generator into the HTTP server.
//
// # Usage
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Endpoints
//
// Application endpoints (rate limited):
//   - POST /v1/recipe  - Render one spack.yaml body into a recipe
//   - POST /v1/recipes - Render several environments in one request
//   - GET  /v1/os      - List the bootstrap operating systems
//
// System endpoints:
//   - GET /health  - Liveness probe
//   - GET /ready   - Readiness probe
//   - GET /metrics - Prometheus metrics
//
// # Query Parameters (POST /v1/recipe)
//
//   - os: bootstrap OS, overrides images.os
//   - last_stage: bootstrap, build or final (default final)
//   - monitor: enable spack monitor flags (true/false)
//   - monitor_host, monitor_prefix, monitor_keep_going, monitor_tags
//
// Example:
//
//	curl -X POST 'http://localhost:8080/v1/recipe?os=ubuntu:22.04' \
//	  --data-binary @spack.yaml
//
// # Configuration
//
//   - PORT: HTTP server port (default: 8080)
//   - LOG_LEVEL: Logging level (debug, info, warn, error)
//   - SHUTDOWN_TIMEOUT_SECONDS: graceful shutdown window
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/spack/containerize/pkg/api.version=1.0.0'"
package api
