package commandsummary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

func TestShouldRecordSummary(t *testing.T) {
	t.Setenv(coreutils.OutputDirPathEnv, "")
	assert.False(t, ShouldRecordSummary())

	t.Setenv(coreutils.OutputDirPathEnv, t.TempDir())
	assert.True(t, ShouldRecordSummary())
}

func TestNewRequiresOutputDir(t *testing.T) {
	t.Setenv(coreutils.OutputDirPathEnv, "")
	_, err := New("data-review")
	assert.ErrorContains(t, err, coreutils.OutputDirPathEnv)
}

func TestRecordAndGenerateMarkdown(t *testing.T) {
	outputDir := t.TempDir()
	t.Setenv(coreutils.OutputDirPathEnv, outputDir)

	cs, err := New("data-review")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, OutputDirName, "data-review"), cs.OutputPath())

	require.NoError(t, cs.Record("# First report"))
	require.NoError(t, cs.Record("# Second report"))

	markdown, err := cs.GenerateMarkdown()
	require.NoError(t, err)
	assert.Contains(t, markdown, "# First report")
	assert.Contains(t, markdown, "# Second report")

	content, err := os.ReadFile(filepath.Join(cs.OutputPath(), "markdown.md"))
	require.NoError(t, err)
	assert.Equal(t, markdown, string(content))
}

func TestGenerateMarkdownSkipsFinalFile(t *testing.T) {
	t.Setenv(coreutils.OutputDirPathEnv, t.TempDir())

	cs, err := New("data-review")
	require.NoError(t, err)
	require.NoError(t, cs.Record("only one report"))

	// Collating twice must not duplicate content through markdown.md.
	_, err = cs.GenerateMarkdown()
	require.NoError(t, err)
	markdown, err := cs.GenerateMarkdown()
	require.NoError(t, err)
	assert.Equal(t, "only one report", markdown)
}
