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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/spack/containerize/pkg/defaults"
	"github.com/spack/containerize/pkg/header"
	"github.com/spack/containerize/pkg/k8s/client"
)

// ConfigMapURIScheme prefixes ConfigMap destinations (cm://namespace/name).
const ConfigMapURIScheme = "cm://"

// FieldManager identifies containerize in server-side apply operations.
const FieldManager = "containerize"

// FileNamer is implemented by values that know the file name they are
// usually stored under (Dockerfile, Singularity.def).
type FileNamer interface {
	FileName() string
}

// ConfigMapWriter writes serialized data to a Kubernetes ConfigMap.
// The ConfigMap is created if it doesn't exist, or updated if it does.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	clientFn  func() (client.Interface, error)
}

// NewConfigMapWriter creates a new ConfigMapWriter that writes to the specified
// namespace and ConfigMap name in the given format.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to text", "format", format)
		format = FormatText
	}
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    format,
		clientFn: func() (client.Interface, error) {
			c, _, err := client.GetKubeClient()
			return c, err
		},
	}
}

// WithClient returns the writer using c instead of the discovered cluster client.
func (w *ConfigMapWriter) WithClient(c client.Interface) *ConfigMapWriter {
	w.clientFn = func() (client.Interface, error) { return c, nil }
	return w
}

// Serialize writes data to the ConfigMap. The ConfigMap holds:
//   - the serialized content, keyed by file name (text) or kind and extension
//   - format: the format used
func (w *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	content, err := Marshal(w.format, data)
	if err != nil {
		return fmt.Errorf("failed to serialize data: %w", err)
	}

	kind, toolVersion := "document", "unknown"
	if h, ok := data.(interface {
		GetKind() header.Kind
		GetMetadata() map[string]string
	}); ok {
		if k := h.GetKind(); k != "" {
			kind = strings.ToLower(k.String())
		}
		if v, ok := h.GetMetadata()["version"]; ok {
			toolVersion = v
		}
	}

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":       "containerize",
			"app.kubernetes.io/component":  kind,
			"app.kubernetes.io/version":    toolVersion,
			"app.kubernetes.io/managed-by": FieldManager,
		}).
		WithData(map[string]string{
			w.dataKey(kind, data): string(content),
			"format":              string(w.format),
		})

	c, err := w.clientFn()
	if err != nil {
		return fmt.Errorf("failed to get kubernetes client: %w", err)
	}

	slog.Info("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"format", w.format)

	// Server-side apply creates or updates atomically; Force takes over
	// fields owned by earlier managers.
	_, err = c.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: FieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

func (w *ConfigMapWriter) dataKey(kind string, data any) string {
	if n, ok := data.(FileNamer); ok && w.format == FormatText {
		return n.FileName()
	}
	ext := string(w.format)
	switch w.format {
	case FormatText, FormatTable:
		ext = "txt"
	}
	return kind + "." + ext
}

// Close is a no-op for ConfigMapWriter as there are no resources to release.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// parseConfigMapURI parses a ConfigMap URI in the format cm://namespace/name
// and returns the namespace and name components.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	path := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])

	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	if strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot contain '/'")
	}

	return namespace, name, nil
}
