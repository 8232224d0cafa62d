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

// Package server provides the HTTP server shared by the containerize API.
//
// The server wraps net/http with:
//
//   - Token bucket rate limiting (golang.org/x/time/rate)
//   - Request ID propagation through the X-Request-Id header
//   - API version negotiation from the Accept header
//   - Panic recovery and structured request logging
//   - Prometheus metrics per route on /metrics
//   - Health and readiness probes on /health and /ready
//   - Graceful shutdown on SIGINT and SIGTERM
//
// # Usage
//
//	s := server.New(
//	    server.WithName("containerized"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/v1/recipe": gen.HandleRecipe,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    slog.Error("server exited with error", "error", err)
//	}
//
// Environment variables PORT and SHUTDOWN_TIMEOUT_SECONDS override the
// listening port and the graceful shutdown window.
//
// # Errors
//
// Every error is returned as JSON:
//
//	{
//	  "code": "UNKNOWN_OS",
//	  "message": "unknown OS \"plan9\"",
//	  "details": {"known": ["alpine:3", "..."]},
//	  "requestId": "...",
//	  "timestamp": "2026-01-01T00:00:00Z",
//	  "retryable": false
//	}
package server
