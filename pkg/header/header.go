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

package header

// APIVersion is the schema version stamped on every structured output.
const APIVersion = "containerize.spack.io/v1"

// Kind represents the type of a structured output document.
type Kind string

// Valid Kind constants.
const (
	KindRecipe           Kind = "Recipe"
	KindRecipeBatch      Kind = "RecipeBatch"
	KindOSCatalog        Kind = "OSCatalog"
	KindValidationResult Kind = "ValidationResult"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindRecipe, KindRecipeBatch, KindOSCatalog, KindValidationResult:
		return true
	default:
		return false
	}
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair to the Header.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the Kind field of the Header.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion overrides the APIVersion field of the Header.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// WithToolVersion records the version of the tool that produced the document.
// Empty values are ignored.
func WithToolVersion(version string) Option {
	return func(h *Header) {
		if version == "" {
			return
		}
		WithMetadata("version", version)(h)
	}
}

// GetKind returns the Kind field of the Header.
func (h Header) GetKind() Kind {
	return h.Kind
}

// GetMetadata returns the Metadata map of the Header.
func (h Header) GetMetadata() map[string]string {
	return h.Metadata
}

// New creates a Header with the default APIVersion and the provided options.
// Headers carry no timestamp so that identical inputs yield identical output.
func New(opts ...Option) Header {
	h := Header{APIVersion: APIVersion}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Header contains the Kubernetes-style type information of an output document.
type Header struct {
	// Kind is the type of the document.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the document.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs about the producer of the document.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
