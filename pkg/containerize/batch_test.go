package containerize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spack/containerize/pkg/catalog"
	"github.com/spack/containerize/pkg/config"
	"github.com/spack/containerize/pkg/recipe"
)

func TestGenerateBatch(t *testing.T) {
	gen := NewGenerator(WithConcurrency(2))

	jobs := []Job{
		{Name: "ubuntu", Document: []byte(ubuntuEnv), LastStage: recipe.StageFinal},
		{Name: "bad-os", Document: []byte(ubuntuEnv), Overrides: config.Overrides{OS: "plan9"}, LastStage: recipe.StageFinal},
		{Name: "alpine", Document: []byte(ubuntuEnv), Overrides: config.Overrides{OS: "alpine:3"}, LastStage: recipe.StageBuild},
		{Name: "invalid", Document: []byte("spack: []"), LastStage: recipe.StageFinal},
	}

	results := gen.GenerateBatch(t.Context(), jobs, 0)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i].Name, r.Name, "results keep input order")
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, "ubuntu:20.04", results[0].Recipe.OS)

	var ue *catalog.UnknownOSError
	require.ErrorAs(t, results[1].Err, &ue)
	assert.Nil(t, results[1].Recipe)

	require.NoError(t, results[2].Err)
	assert.Len(t, results[2].Recipe.Blocks, 2)

	var ve *config.ValidationError
	require.ErrorAs(t, results[3].Err, &ve)

	failed := Failed(results)
	assert.Len(t, failed, 2)

	err := JoinErrors(results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-os: ")
	assert.Contains(t, err.Error(), "invalid: ")
	assert.ErrorAs(t, err, &ue)
}

func TestGenerateBatch_MatchesSequential(t *testing.T) {
	gen := NewGenerator()
	cat, err := gen.Catalog()
	require.NoError(t, err)

	var jobs []Job
	for _, id := range cat.List() {
		jobs = append(jobs, Job{
			Name:      id,
			Document:  []byte(ubuntuEnv),
			Overrides: config.Overrides{OS: id},
			LastStage: recipe.StageFinal,
		})
	}

	results := gen.GenerateBatch(t.Context(), jobs, 3)
	require.NoError(t, JoinErrors(results))

	for i, job := range jobs {
		want, err := gen.Generate(t.Context(), job.Document, job.Overrides, job.LastStage)
		require.NoError(t, err)
		assert.Equal(t, want.String(), results[i].Recipe.String(), job.Name)
	}
}

func TestGenerateBatch_Empty(t *testing.T) {
	results := NewGenerator().GenerateBatch(t.Context(), nil, 0)
	assert.Empty(t, results)
	assert.NoError(t, JoinErrors(results))
}

func TestGenerateBatch_ManyJobs(t *testing.T) {
	gen := NewGenerator(WithConcurrency(8))

	jobs := make([]Job, 50)
	for i := range jobs {
		specs := fmt.Sprintf("pkg%d", i)
		jobs[i] = Job{
			Name:      specs,
			Document:  []byte(strings.Replace(ubuntuEnv, "zlib", specs, 1)),
			LastStage: recipe.StageFinal,
		}
	}

	results := gen.GenerateBatch(t.Context(), jobs, 0)
	require.NoError(t, JoinErrors(results))
	for i, r := range results {
		assert.Contains(t, r.Recipe.String(), fmt.Sprintf("- pkg%d", i))
	}
}
