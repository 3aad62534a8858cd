package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/superbook/internal/catalog"
	"github.com/mrlokans/superbook/internal/config"
)

func TestPublishCommand_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("PUBLISH_CONCURRENCY", "4")

	cmd := NewPublishCommand("test")
	assert.Equal(t, config.DriverSQLite, cmd.Config.Database.Driver)

	require.NoError(t, cmd.ParseFlags([]string{"-concurrency", "2", "-content-root", "/srv/ydkjs", "-report-dir", "/tmp/r"}))

	assert.Equal(t, config.DriverSQLite, cmd.Config.Database.Driver)
	assert.Equal(t, 2, cmd.Config.Publish.Concurrency)
	assert.Equal(t, "/srv/ydkjs", cmd.Config.Catalog.ContentRoot)
	assert.Equal(t, "/tmp/r", cmd.Config.Report.Dir)
}

func TestPublishCommand_DryRunUsesMemoryStore(t *testing.T) {
	cmd := NewPublishCommand("test")

	require.NoError(t, cmd.ParseFlags([]string{"-driver", "sqlite", "-dry-run", "-verbose"}))

	assert.Equal(t, config.DriverMemory, cmd.Config.Database.Driver)
	assert.Equal(t, "debug", cmd.Config.Log.Level)
}

func TestPublishCommand_RunDryRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ch1.md"), []byte(`<img src="a.png">`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte(
		"books:\n  - name: Book\n    sourceName: book\n    chapters:\n      - { path: ch1.md, name: One }\n"), 0o644))

	cmd := NewPublishCommand("test")
	require.NoError(t, cmd.ParseFlags([]string{
		"-dry-run",
		"-catalog", filepath.Join(dir, "catalog.yaml"),
		"-content-root", dir,
		"-report-dir", filepath.Join(dir, "reports"),
	}))
	cmd.Config.Log.Level = "disabled"

	require.NoError(t, cmd.Run())

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPublishCommand_UnknownFlag(t *testing.T) {
	cmd := NewPublishCommand("test")
	assert.Error(t, cmd.ParseFlags([]string{"-nope"}))
}

func TestRewriteCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ch1.md")
	require.NoError(t, os.WriteFile(path, []byte(`a <img src="fig1.png"> b <img src="https://x.org/y.png">`), 0o644))

	var out bytes.Buffer
	cmd := NewRewriteCommand()
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-file", path, "-source", "get-started", "-image-root", "https://img.example.com/"}))
	require.NoError(t, cmd.Run())

	text := out.String()
	assert.Contains(t, text, `<img src="https://img.example.com/get-started/fig1.png">`)
	assert.Contains(t, text, `<img src="https://x.org/y.png">`)
	assert.Contains(t, text, "Rewritten images (1)")
	assert.Contains(t, text, "fig1.png -> https://img.example.com/get-started/fig1.png")
}

func TestRewriteCommand_RequiresFileAndSource(t *testing.T) {
	cmd := NewRewriteCommand()
	assert.Error(t, cmd.ParseFlags([]string{"-file", "ch1.md"}))
}

func TestRewriteCommand_MissingFile(t *testing.T) {
	cmd := NewRewriteCommand()
	cmd.Out = &bytes.Buffer{}
	require.NoError(t, cmd.ParseFlags([]string{"-file", filepath.Join(t.TempDir(), "missing.md"), "-source", "x"}))
	assert.Error(t, cmd.Run())
}

func TestCatalogCommand_Default(t *testing.T) {
	var out bytes.Buffer
	cmd := NewCatalogCommand()
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.Run())

	text := out.String()
	assert.Contains(t, text, "built-in (2 books, 20 chapters)")
	assert.Contains(t, text, "[get-started]")
	assert.Contains(t, text, "[scope-closures]")
	assert.Contains(t, text, "Preface (preface.md)")
}

func TestCatalogCommand_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("books:\n  - name: A\n    sourceName: a\n  - name: B\n    sourceName: a\n"), 0o644))

	cmd := NewCatalogCommand()
	cmd.Out = &bytes.Buffer{}
	require.NoError(t, cmd.ParseFlags([]string{"-catalog", path}))
	assert.ErrorIs(t, cmd.Run(), catalog.ErrInvalid)
}
