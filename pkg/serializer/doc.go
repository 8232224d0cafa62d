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

// Package serializer writes structured output and reads remote documents.
//
// Supported output formats:
//   - Text: the plain text form of a value (a recipe as-is)
//   - JSON: machine-readable structured data with indentation
//   - YAML: human-readable structured data
//   - Table: flattened key/value listing
//
// Destinations are stdout, a file, or a Kubernetes ConfigMap addressed as
// cm://namespace/name:
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatText, "cm://ci/recipes")
//	if err != nil {
//		return err
//	}
//	defer w.(serializer.Closer).Close()
//	if err := w.Serialize(ctx, recipe); err != nil {
//		return err
//	}
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
package serializer
