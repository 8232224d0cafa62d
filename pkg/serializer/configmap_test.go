package serializer

import (
	"context"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/spack/containerize/pkg/header"
)

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{
			name:          "valid URI",
			uri:           "cm://ci/hpc-env-recipe",
			wantNamespace: "ci",
			wantName:      "hpc-env-recipe",
		},
		{
			name:          "valid URI with spaces",
			uri:           "cm://ci / hpc-env-recipe ",
			wantNamespace: "ci",
			wantName:      "hpc-env-recipe",
		},
		{name: "missing scheme", uri: "ci/recipe", wantErr: true},
		{name: "wrong scheme", uri: "http://ci/recipe", wantErr: true},
		{name: "missing name", uri: "cm://ci/", wantErr: true},
		{name: "missing namespace", uri: "cm:///recipe", wantErr: true},
		{name: "missing separator", uri: "cm://ci", wantErr: true},
		{name: "nested name", uri: "cm://ci/a/b", wantErr: true},
		{name: "empty URI", uri: "", wantErr: true},
		{name: "only scheme", uri: "cm://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			namespace, name, err := parseConfigMapURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseConfigMapURI() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if namespace != tt.wantNamespace {
					t.Errorf("parseConfigMapURI() namespace = %v, want %v", namespace, tt.wantNamespace)
				}
				if name != tt.wantName {
					t.Errorf("parseConfigMapURI() name = %v, want %v", name, tt.wantName)
				}
			}
		})
	}
}

func TestNewConfigMapWriter(t *testing.T) {
	tests := []struct {
		name       string
		format     Format
		wantFormat Format
	}{
		{"text format", FormatText, FormatText},
		{"yaml format", FormatYAML, FormatYAML},
		{"unknown format defaults to text", Format("unknown"), FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := NewConfigMapWriter("ci", "recipe", tt.format)
			if writer.namespace != "ci" || writer.name != "recipe" {
				t.Errorf("NewConfigMapWriter() = %s/%s", writer.namespace, writer.name)
			}
			if writer.format != tt.wantFormat {
				t.Errorf("NewConfigMapWriter() format = %v, want %v", writer.format, tt.wantFormat)
			}
		})
	}
}

type namedDoc struct {
	header.Header
	Body string
}

func (d namedDoc) String() string   { return d.Body }
func (d namedDoc) FileName() string { return "Dockerfile" }

func TestConfigMapWriter_Serialize(t *testing.T) {
	doc := namedDoc{
		Header: header.New(header.WithKind(header.KindRecipe), header.WithToolVersion("v1.0.0")),
		Body:   "FROM ubuntu:22.04 AS bootstrap\n",
	}

	tests := []struct {
		name    string
		format  Format
		wantKey string
	}{
		{"text uses file name", FormatText, "Dockerfile"},
		{"yaml uses kind", FormatYAML, "recipe.yaml"},
		{"json uses kind", FormatJSON, "recipe.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := fake.NewClientset()
			w := NewConfigMapWriter("ci", "recipe", tt.format).WithClient(cs)
			if err := w.Serialize(context.Background(), doc); err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}

			cm, err := cs.CoreV1().ConfigMaps("ci").Get(context.Background(), "recipe", metav1.GetOptions{})
			if err != nil {
				t.Fatalf("failed to get ConfigMap: %v", err)
			}
			if _, ok := cm.Data[tt.wantKey]; !ok {
				t.Errorf("expected data key %q, got %v", tt.wantKey, cm.Data)
			}
			if cm.Data["format"] != string(tt.format) {
				t.Errorf("format = %q, want %q", cm.Data["format"], tt.format)
			}
			if cm.Labels["app.kubernetes.io/component"] != "recipe" {
				t.Errorf("component label = %q", cm.Labels["app.kubernetes.io/component"])
			}
			if cm.Labels["app.kubernetes.io/version"] != "v1.0.0" {
				t.Errorf("version label = %q", cm.Labels["app.kubernetes.io/version"])
			}
		})
	}
}

func TestConfigMapWriter_SerializeText(t *testing.T) {
	cs := fake.NewClientset()
	w := NewConfigMapWriter("ci", "recipe", FormatText).WithClient(cs)
	if err := w.Serialize(context.Background(), "Bootstrap: docker\n"); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	cm, err := cs.CoreV1().ConfigMaps("ci").Get(context.Background(), "recipe", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("failed to get ConfigMap: %v", err)
	}
	if got := cm.Data["document.txt"]; got != "Bootstrap: docker\n" {
		t.Errorf("document.txt = %q", got)
	}
}
