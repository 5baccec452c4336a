package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/earlyedge/internal/pipeline/pipelinetest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "earlyedge (devel)"), out)
}

func TestVersion_Ldflags(t *testing.T) {
	defer func(v, c, d string) { version, commit, date = v, c, d }(version, commit, date)
	version, commit, date = "v1.2.0", "abc1234", "2026-10-01T12:00:00Z"

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "earlyedge v1.2.0 (commit abc1234, built 2026-10-01T12:00:00Z)\n", out)
}

func TestModelsCheck(t *testing.T) {
	cfg := pipelinetest.Layout(t)

	out, err := run(t, "models", "check", "--models-dir", cfg.ModelsDir, "--data-dir", cfg.DataDir)
	require.NoError(t, err)
	for _, name := range []string{"spelling", "handwriting", "phono", "arithmetic", "number_sense", "tracing", "letter_confusion"} {
		assert.Contains(t, out, name)
	}
	assert.NotContains(t, out, "failed")
}

func TestModelsCheck_ReportsFailures(t *testing.T) {
	cfg := pipelinetest.Layout(t)

	out, err := run(t, "models", "check", "--models-dir", t.TempDir(), "--data-dir", cfg.DataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "7 of 7 screens failed")
	assert.Contains(t, out, "failed")
}
