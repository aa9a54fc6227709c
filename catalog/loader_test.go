package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EmbeddedDataset(t *testing.T) {
	c := Default()

	assert.Equal(t, 10, c.ToolCount())
	assert.Equal(t, 8, c.PlaybookCount())

	claude, err := c.ToolByID("claude")
	require.NoError(t, err)
	assert.Equal(t, "Claude", claude.Name)
	assert.Equal(t, "claude.ai", claude.Domain)
	assert.Equal(t, "Generative", claude.Category)
	assert.InDelta(t, 4.7, claude.Rating, 0.001)
	assert.Contains(t, claude.Tags, "anthropic")

	mvp, err := c.PlaybookByID("startup-mvp")
	require.NoError(t, err)
	assert.Equal(t, "David Park", mvp.Author)
	assert.Len(t, mvp.Steps, 5)
	assert.Equal(t, "perplexity", mvp.Steps[0].ToolID)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("tools: [not a record"))
	assert.Error(t, err)
}

func TestLoad_FileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	data := []byte(`
tools:
  - id: claude
    name: Claude
    domain: claude.ai
playbooks:
  - id: eng
    title: Engineering
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	// Direct file path.
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ToolCount())
	assert.Equal(t, 1, c.PlaybookCount())

	// Directory resolution.
	c, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ToolCount())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load(t.TempDir())
	assert.Error(t, err)
}
