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

// Package logging configures log/slog for the containerize binaries.
//
// Both binaries log JSON to stderr so that stdout stays reserved for the
// generated recipe. The level comes from --log-level, then LOG_LEVEL, and
// defaults to info. Unknown level names fall back to info.
//
//	logging.SetDefaultStructuredLoggerWithLevel("containerize", version, "debug")
//	slog.Debug("stage emitted", "stage", "build", "os", "ubuntu:22.04")
//
// Every record carries the module and version attributes:
//
//	{"time":"...","level":"INFO","msg":"recipe written","module":"containerize","version":"v0.3.0","path":"env/Dockerfile"}
//
// Debug records also carry the source location.
//
// NewLogLogger adapts the default handler for libraries that take a
// *log.Logger, such as net/http.Server.ErrorLog.
package logging
