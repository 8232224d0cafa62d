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

package containerize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spack/containerize/pkg/catalog"
	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/defaults"
	apperrors "github.com/spack/containerize/pkg/errors"
	"github.com/spack/containerize/pkg/header"
	"github.com/spack/containerize/pkg/recipe"
	"github.com/spack/containerize/pkg/serializer"
	"github.com/spack/containerize/pkg/server"
)

// BulkRequest is the body of POST /v1/recipes.
type BulkRequest struct {
	Requests []BulkItem `json:"requests" yaml:"requests"`
}

// BulkItem is one environment of a bulk request. Document holds the
// spack.yaml content.
type BulkItem struct {
	Name      string          `json:"name,omitempty" yaml:"name,omitempty"`
	Document  string          `json:"document" yaml:"document"`
	OS        string          `json:"os,omitempty" yaml:"os,omitempty"`
	LastStage string          `json:"lastStage,omitempty" yaml:"lastStage,omitempty"`
	Monitor   *config.Monitor `json:"monitor,omitempty" yaml:"monitor,omitempty"`
}

// BulkResponse is the body returned by POST /v1/recipes. Results are in
// request order.
type BulkResponse struct {
	header.Header `json:",inline" yaml:",inline"`

	Results []BulkResult `json:"results" yaml:"results"`
	Failed  int          `json:"failed" yaml:"failed"`
}

// BulkResult is the outcome of one BulkItem.
type BulkResult struct {
	Name   string         `json:"name" yaml:"name"`
	Recipe *recipe.Recipe `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Error  *BulkError     `json:"error,omitempty" yaml:"error,omitempty"`
}

// BulkError describes why one item of a bulk request failed.
type BulkError struct {
	Code    string         `json:"code" yaml:"code"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// OSList is the body returned by GET /v1/os.
type OSList struct {
	header.Header `json:",inline" yaml:",inline"`

	Identifiers []string              `json:"identifiers" yaml:"identifiers"`
	Images      []*catalog.Descriptor `json:"images,omitempty" yaml:"images,omitempty"`
}

// HandleRecipe handles POST /v1/recipe. The body is a spack.yaml document
// and query parameters carry the overrides:
//
//	os, last_stage, monitor, monitor_host, monitor_keep_going,
//	monitor_prefix, monitor_tags
//
// The recipe is returned as text, or as JSON when the client accepts it.
func (g *Generator) HandleRecipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.RecipeHandlerTimeout)
	defer cancel()

	overrides, last, err := parseRecipeParams(r.URL.Query())
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"Invalid recipe parameters", false, map[string]any{"error": err.Error()})
		return
	}

	body, ok := readBody(w, r, defaults.MaxEnvironmentBytes)
	if !ok {
		return
	}

	rec, err := g.Generate(ctx, body, overrides, last)
	if err != nil {
		server.WriteErrorFromErr(w, r, ToStructured(err), "Failed to generate recipe", nil)
		return
	}

	slog.Debug("recipe served",
		"requestID", server.RequestID(r.Context()),
		"os", rec.OS,
		"format", rec.Format,
		"last_stage", rec.LastStage,
	)

	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", rec.FileName()))
	if acceptsJSON(r) {
		serializer.RespondJSON(w, http.StatusOK, rec)
		return
	}
	serializer.RespondText(w, http.StatusOK, rec.String())
}

// HandleRecipes handles POST /v1/recipes, rendering every item of a
// BulkRequest in parallel. Item failures are reported per item; the
// request itself fails only when it is malformed.
func (g *Generator) HandleRecipes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.RecipesHandlerTimeout)
	defer cancel()

	body, ok := readBody(w, r, int64(g.maxBulk)*defaults.MaxEnvironmentBytes)
	if !ok {
		return
	}

	var req BulkRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		server.WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"Invalid bulk request body", false, map[string]any{"error": err.Error()})
		return
	}

	if len(req.Requests) == 0 {
		server.WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"Bulk request has no items", false, nil)
		return
	}
	if len(req.Requests) > g.maxBulk {
		server.WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"Too many items in bulk request", false, map[string]any{
				"count": len(req.Requests),
				"max":   g.maxBulk,
			})
		return
	}

	jobs := make([]Job, 0, len(req.Requests))
	for i, item := range req.Requests {
		last, err := recipe.ParseStage(item.LastStage)
		if err != nil {
			server.WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
				"Invalid last stage", false, map[string]any{"index": i, "error": err.Error()})
			return
		}
		name := item.Name
		if name == "" {
			name = fmt.Sprintf("request-%d", i)
		}
		jobs = append(jobs, Job{
			Name:      name,
			Document:  []byte(item.Document),
			Overrides: config.Overrides{OS: item.OS, Monitor: item.Monitor},
			LastStage: last,
		})
	}

	results := g.GenerateBatch(ctx, jobs, 0)

	resp := BulkResponse{
		Header: header.New(
			header.WithKind(header.KindRecipeBatch),
			header.WithToolVersion(g.version),
		),
		Results: make([]BulkResult, 0, len(results)),
	}
	for _, res := range results {
		out := BulkResult{Name: res.Name, Recipe: res.Recipe}
		if res.Err != nil {
			se := ToStructured(res.Err)
			out.Error = &BulkError{
				Code:    string(se.Code),
				Message: res.Err.Error(),
				Details: se.Context,
			}
			resp.Failed++
		}
		resp.Results = append(resp.Results, out)
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}

// HandleOS handles GET /v1/os. With details=true the descriptors of every
// identifier are included.
func (g *Generator) HandleOS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	cat, err := g.Catalog()
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to load OS catalog", nil)
		return
	}

	resp := OSList{
		Header: header.New(
			header.WithKind(header.KindOSCatalog),
			header.WithToolVersion(g.version),
		),
		Identifiers: cat.List(),
	}
	if details, _ := strconv.ParseBool(r.URL.Query().Get("details")); details {
		resp.Images = cat.Descriptors()
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(defaults.CatalogCacheTTL.Seconds())))
	serializer.RespondJSON(w, http.StatusOK, resp)
}

// parseRecipeParams reads the overrides and the last stage from q.
func parseRecipeParams(q url.Values) (config.Overrides, recipe.Stage, error) {
	var o config.Overrides

	last, err := recipe.ParseStage(q.Get("last_stage"))
	if err != nil {
		return o, 0, err
	}

	o.OS = strings.TrimSpace(q.Get("os"))

	enabled, err := boolParam(q, "monitor")
	if err != nil {
		return o, 0, err
	}
	keepGoing, err := boolParam(q, "monitor_keep_going")
	if err != nil {
		return o, 0, err
	}
	host := q.Get("monitor_host")
	if host == "" {
		host = config.DefaultMonitorHost
	}
	prefix := q.Get("monitor_prefix")
	if prefix == "" {
		prefix = config.DefaultMonitorPrefix
	}
	o.Monitor = config.MonitorFromFlags(enabled, host, keepGoing, prefix, q.Get("monitor_tags"))

	return o, last, nil
}

func boolParam(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: must be a boolean", key, v)
	}
	return b, nil
}

// readBody reads at most limit bytes of the request body. On failure the
// error response is written and ok is false.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) (body []byte, ok bool) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			server.WriteError(w, r, http.StatusRequestEntityTooLarge, apperrors.ErrCodeInvalidRequest,
				"Request body too large", false, map[string]any{"limit": mbe.Limit})
			return nil, false
		}
		server.WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"Failed to read request body", false, map[string]any{"error": err.Error()})
		return nil, false
	}
	return body, true
}

func acceptsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") || strings.Contains(accept, "+json")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	server.WriteError(w, r, http.StatusMethodNotAllowed, apperrors.ErrCodeMethodNotAllowed,
		"Method not allowed", false, map[string]any{
			"method":  r.Method,
			"allowed": []string{allowed},
		})
}
