package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/spack/containerize/pkg/bundle"
	"github.com/spack/containerize/pkg/catalog"
	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/containerize"
	"github.com/spack/containerize/pkg/header"
	"github.com/spack/containerize/pkg/recipe"
)

const ubuntuEnv = `
spack:
  specs:
  - zlib
  container:
    images:
      os: ubuntu:20.04
      spack: v0.18.0
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.Writer = &out
	cmd.ErrWriter = &bytes.Buffer{}
	err := cmd.Run(t.Context(), append([]string{name}, args...))
	return out.String(), err
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.EnvironmentFile), []byte(content), 0o600))
	return dir
}

func expected(t *testing.T, o config.Overrides, last recipe.Stage) string {
	t.Helper()
	r, err := containerize.NewGenerator(containerize.WithVersion(version)).
		Generate(t.Context(), []byte(ubuntuEnv), o, last)
	require.NoError(t, err)
	return r.String()
}

func TestListOS(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	t.Run("text", func(t *testing.T) {
		out, err := run(t, "--list-os")
		require.NoError(t, err)
		assert.Equal(t, listOSMessage+"\n"+strings.Join(cat.List(), " ")+"\n", out)
	})

	t.Run("ignores missing environment", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := run(t, "--list-os")
		assert.NoError(t, err)
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "--list-os", "--format", "json")
		require.NoError(t, err)

		var list containerize.OSList
		require.NoError(t, json.Unmarshal([]byte(out), &list))
		assert.Equal(t, header.KindOSCatalog, list.Kind)
		assert.Equal(t, cat.List(), list.Identifiers)
		assert.Len(t, list.Images, len(list.Identifiers))
	})
}

func TestRecipe(t *testing.T) {
	dir := writeEnv(t, ubuntuEnv)

	t.Run("env dir", func(t *testing.T) {
		out, err := run(t, "-e", dir)
		require.NoError(t, err)
		assert.Equal(t, expected(t, config.Overrides{}, recipe.StageFinal), out)
	})

	t.Run("working directory", func(t *testing.T) {
		t.Chdir(dir)
		out, err := run(t)
		require.NoError(t, err)
		assert.Equal(t, expected(t, config.Overrides{}, recipe.StageFinal), out)
	})

	t.Run("file", func(t *testing.T) {
		out, err := run(t, "-f", filepath.Join(dir, config.EnvironmentFile))
		require.NoError(t, err)
		assert.Contains(t, out, "FROM ubuntu:20.04 AS bootstrap")
	})

	t.Run("os and last stage", func(t *testing.T) {
		out, err := run(t, "-e", dir, "--os", "alpine:3", "--last-stage", "bootstrap")
		require.NoError(t, err)
		assert.Equal(t, expected(t, config.Overrides{OS: "alpine:3"}, recipe.StageBootstrap), out)
		assert.NotContains(t, out, "ubuntu")
	})

	t.Run("truncations are prefixes", func(t *testing.T) {
		var prev string
		for _, stage := range recipe.SupportedStages() {
			out, err := run(t, "-e", dir, "--last-stage", stage)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, prev), stage)
			assert.NotEqual(t, prev, out)
			prev = out
		}
	})

	t.Run("monitor", func(t *testing.T) {
		out, err := run(t, "-e", dir, "--monitor", "--monitor-keep-going", "--monitor-tags", "a,b")
		require.NoError(t, err)
		assert.Contains(t, out, "--monitor --monitor-keep-going --monitor-host http://127.0.0.1 --monitor-prefix ms1 --monitor-tags a,b")
		assert.Contains(t, out, `LABEL "io.spack.monitor.tags"="a,b"`)
	})

	t.Run("monitor options without monitor", func(t *testing.T) {
		out, err := run(t, "-e", dir, "--monitor-host", "http://elsewhere")
		require.NoError(t, err)
		assert.NotContains(t, out, "--monitor")
	})

	t.Run("yaml document", func(t *testing.T) {
		out, err := run(t, "-e", dir, "--format", "yaml", "--last-stage", "build")
		require.NoError(t, err)

		var r recipe.Recipe
		require.NoError(t, yaml.Unmarshal([]byte(out), &r))
		assert.Equal(t, header.KindRecipe, r.Kind)
		assert.Equal(t, recipe.StageBuild, r.LastStage)
		assert.Len(t, r.Blocks, 2)
	})

	t.Run("output file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Dockerfile")
		out, err := run(t, "-e", dir, "-o", path)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, expected(t, config.Overrides{}, recipe.StageFinal), string(data))
	})

	t.Run("bundle", func(t *testing.T) {
		ctxDir := filepath.Join(t.TempDir(), "context")
		out, err := run(t, "-e", dir, "--bundle", ctxDir)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Wrote 3 files"))

		data, err := os.ReadFile(filepath.Join(ctxDir, "Dockerfile"))
		require.NoError(t, err)
		assert.Equal(t, expected(t, config.Overrides{}, recipe.StageFinal), string(data))
		assert.FileExists(t, filepath.Join(ctxDir, config.EnvironmentFile))
		assert.FileExists(t, filepath.Join(ctxDir, bundle.ChecksumFileName))
	})
}

func TestRecipeErrors(t *testing.T) {
	dir := writeEnv(t, ubuntuEnv)

	t.Run("unknown os", func(t *testing.T) {
		out, err := run(t, "-e", dir, "--os", "ubuntu:20.4")
		require.Error(t, err)
		assert.Empty(t, out)

		var ue *catalog.UnknownOSError
		require.ErrorAs(t, err, &ue)
		assert.Contains(t, explain(err).Error(), `did you mean "ubuntu:20.04"?`)
	})

	t.Run("no suggestion", func(t *testing.T) {
		_, err := run(t, "-e", dir, "--os", "zzzzzzzzzzzzzzzz")
		require.Error(t, err)
		assert.Equal(t, err.Error(), explain(err).Error())
	})

	t.Run("invalid environment", func(t *testing.T) {
		bad := writeEnv(t, "spack:\n  container:\n    format: podman\n")
		_, err := run(t, "-e", bad)
		var ve *config.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("missing spack.yaml", func(t *testing.T) {
		empty := t.TempDir()
		_, err := run(t, "-e", empty)
		require.Error(t, err)
		assert.Equal(t, "file not found: "+filepath.Join(empty, "spack.yaml"), err.Error())
	})

	t.Run("bad last stage", func(t *testing.T) {
		_, err := run(t, "-e", dir, "--last-stage", "deploy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bootstrap, build, final")
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := run(t, "-e", dir, "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output format")
	})

	t.Run("file and env dir", func(t *testing.T) {
		_, err := run(t, "-e", dir, "-f", filepath.Join(dir, "spack.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be used together")
	})
}

func TestBatch(t *testing.T) {
	t.Run("text writes next to each environment", func(t *testing.T) {
		a := writeEnv(t, ubuntuEnv)
		b := writeEnv(t, strings.Replace(ubuntuEnv, "zlib", "hdf5", 1))

		out, err := run(t, "-e", a, "-e", b)
		require.NoError(t, err)
		assert.Empty(t, out)

		for _, dir := range []string{a, b} {
			data, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
			require.NoError(t, err)
			assert.Contains(t, string(data), "FROM ubuntu:20.04 AS bootstrap")
		}
		data, err := os.ReadFile(filepath.Join(b, "Dockerfile"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "hdf5")
	})

	t.Run("json document with failures", func(t *testing.T) {
		a := writeEnv(t, ubuntuEnv)
		b := writeEnv(t, strings.Replace(ubuntuEnv, "ubuntu:20.04", "ubuntu:20.4", 1))

		out, err := run(t, "-e", a, "-e", b, "--format", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 environments failed")

		var doc containerize.BulkResponse
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, header.KindRecipeBatch, doc.Kind)
		require.Len(t, doc.Results, 2)
		assert.Equal(t, a, doc.Results[0].Name)
		assert.NotNil(t, doc.Results[0].Recipe)
		require.NotNil(t, doc.Results[1].Error)
		assert.Equal(t, "UNKNOWN_OS", doc.Results[1].Error.Code)
		assert.Contains(t, doc.Results[1].Error.Message, "did you mean")
	})

	t.Run("bundle is rejected", func(t *testing.T) {
		a := writeEnv(t, ubuntuEnv)
		b := writeEnv(t, ubuntuEnv)
		_, err := run(t, "-e", a, "-e", b, "--bundle", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "single environment")
	})

	t.Run("text with output is rejected", func(t *testing.T) {
		a := writeEnv(t, ubuntuEnv)
		b := writeEnv(t, ubuntuEnv)
		_, err := run(t, "-e", a, "-e", b, "-o", filepath.Join(t.TempDir(), "out"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output requires")
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dir := writeEnv(t, ubuntuEnv)
		out, err := run(t, "validate", "-e", dir)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "# "+filepath.Join(dir, "spack.yaml")+": valid\n"))
		assert.Contains(t, out, "format: docker")
		assert.Contains(t, out, "spack: v0.18.0")
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := writeEnv(t, "spack:\n  specs: zlib\n")
		out, err := run(t, "validate", "-e", dir, "--format", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 1 environments are invalid")

		var res validationResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, header.KindValidationResult, res.Kind)
		assert.False(t, res.Valid)
		assert.Equal(t, "spack.specs", res.Path)
		assert.Equal(t, 2, res.Line)
		assert.Nil(t, res.Config)
	})

	t.Run("unknown os is not checked", func(t *testing.T) {
		dir := writeEnv(t, strings.Replace(ubuntuEnv, "ubuntu:20.04", "plan9", 1))
		_, err := run(t, "validate", "-e", dir)
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "validate", "-f", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestExplain(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, explain(plain))

	err := explain(&catalog.UnknownOSError{ID: "centos:8", Known: []string{"centos:7", "ubuntu:22.04"}})
	assert.Contains(t, err.Error(), `did you mean "centos:7"?`)

	var ue *catalog.UnknownOSError
	assert.ErrorAs(t, err, &ue)
}

func TestParseOutputFormat(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml", "table"} {
		_, err := run(t, "--list-os", "--format", f)
		assert.NoError(t, err, f)
	}
}
