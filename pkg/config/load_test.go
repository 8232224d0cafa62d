package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spack/containerize/pkg/defaults"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvironmentFile), []byte(content), 0o600))
	return dir
}

func TestResolvePath(t *testing.T) {
	dir := writeEnv(t, minimalEnv)

	got, err := ResolvePath(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, EnvironmentFile, filepath.Base(got))
}

func TestResolvePath_Missing(t *testing.T) {
	dir := t.TempDir()

	_, err := ResolvePath(dir)
	require.Error(t, err)
	want := "file not found: " + filepath.Join(dir, EnvironmentFile)
	assert.Equal(t, want, err.Error())
}

func TestResolvePath_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, EnvironmentFile), 0o755))

	_, err := ResolvePath(dir)
	assert.ErrorContains(t, err, "file not found")
}

func TestResolvePath_WorkingDirectory(t *testing.T) {
	dir := writeEnv(t, minimalEnv)
	t.Chdir(dir)

	got, err := ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, EnvironmentFile, filepath.Base(got))
}

func TestLoad_File(t *testing.T) {
	dir := writeEnv(t, minimalEnv)

	cfg, err := Load(t.Context(), filepath.Join(dir, EnvironmentFile))
	require.NoError(t, err)
	assert.Equal(t, "ubuntu:20.04", cfg.Environment.Container.Images.OS)
	assert.Equal(t, "v0.18.0", cfg.Environment.Container.Images.Spack)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(t.Context(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open environment")

	dir := writeEnv(t, "spack: [")
	_, err = Load(t.Context(), filepath.Join(dir, EnvironmentFile))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRead_TooLarge(t *testing.T) {
	dir := writeEnv(t, "# "+strings.Repeat("x", defaults.MaxEnvironmentBytes)+"\n")

	_, err := Read(t.Context(), filepath.Join(dir, EnvironmentFile))
	assert.ErrorContains(t, err, "exceeds")
}

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/spack.yaml":
			_, _ = w.Write([]byte(minimalEnv))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg, err := Load(t.Context(), srv.URL+"/spack.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"zlib"}, cfg.Environment.Specs)

	_, err = Load(t.Context(), srv.URL+"/missing.yaml")
	assert.ErrorContains(t, err, "failed to fetch environment")
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("http://example.com/spack.yaml"))
	assert.True(t, isURL("https://example.com/spack.yaml"))
	assert.False(t, isURL("/tmp/spack.yaml"))
	assert.False(t, isURL("file:///tmp/spack.yaml"))
}
