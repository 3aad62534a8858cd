package audit

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mrlokans/superbook/internal/importers"
)

func sampleReport() *importers.Report {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &importers.Report{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Books: []importers.BookResult{
			{
				Name:       "Get Started",
				SourceName: "get-started",
				BookID:     primitive.NewObjectID(),
				Created:    true,
				Chapters: []importers.ChapterResult{
					{Name: "Preface", Path: "preface.md", ChapterID: primitive.NewObjectID(), Created: true},
				},
			},
			{
				Name:       "Scope & Closures",
				SourceName: "scope-closures",
				Chapters:   []importers.ChapterResult{},
				Err:        errors.New("boom"),
				Error:      "boom",
			},
		},
	}
}

func TestAuditor(t *testing.T) {
	fs := afero.NewMemMapFs()
	auditor := NewAuditorFs(fs, "/reports")

	t.Run("SaveReport creates directory and names file by run", func(t *testing.T) {
		filename, err := auditor.SaveReport(sampleReport())
		require.NoError(t, err)
		assert.Equal(t, "20240301T120000Z-run-1.json", filename)

		data, err := afero.ReadFile(fs, filepath.Join("/reports", filename))
		require.NoError(t, err)

		var saved map[string]any
		require.NoError(t, json.Unmarshal(data, &saved))
		assert.Equal(t, "run-1", saved["id"])

		books := saved["books"].([]any)
		require.Len(t, books, 2)
		first := books[0].(map[string]any)
		assert.Equal(t, "get-started", first["source_name"])
		assert.NotContains(t, first, "error")
		second := books[1].(map[string]any)
		assert.Equal(t, "boom", second["error"])
	})

	t.Run("SaveReport without id still gets a unique name", func(t *testing.T) {
		r := sampleReport()
		r.ID = ""
		name1, err := auditor.SaveReport(r)
		require.NoError(t, err)
		name2, err := auditor.SaveReport(r)
		require.NoError(t, err)
		assert.NotEqual(t, name1, name2)
	})

	t.Run("SaveJSON generates unique filenames", func(t *testing.T) {
		testData := map[string]string{"key": "value"}

		filename1, err := auditor.SaveJSON(testData)
		require.NoError(t, err)

		filename2, err := auditor.SaveJSON(testData)
		require.NoError(t, err)

		assert.NotEqual(t, filename1, filename2)
		assert.Contains(t, filename1, ".json")
	})

	t.Run("SaveJSON fails on unmarshalable data", func(t *testing.T) {
		_, err := auditor.SaveJSON(map[string]any{"ch": make(chan int)})
		assert.Error(t, err)
	})

	t.Run("SaveJSON handles nil auditor gracefully", func(t *testing.T) {
		var nilAuditor *Auditor
		assert.Panics(t, func() {
			nilAuditor.SaveJSON(map[string]string{"key": "value"})
		})
	})
}

func TestAuditor_ReadOnlyFs(t *testing.T) {
	auditor := NewAuditorFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/reports")

	_, err := auditor.SaveReport(sampleReport())
	assert.Error(t, err)
}

func TestNewAuditor_WritesToDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	auditor := NewAuditor(dir)

	name, err := auditor.SaveReport(sampleReport())
	require.NoError(t, err)

	exists, err := afero.Exists(afero.NewOsFs(), filepath.Join(dir, name))
	require.NoError(t, err)
	assert.True(t, exists)
}
