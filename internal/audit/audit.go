// Package audit keeps a JSON record of every publish run.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/mrlokans/superbook/internal/importers"
	"github.com/mrlokans/superbook/internal/logging"
)

type Auditor struct {
	AuditDir string
	fs       afero.Fs
}

func NewAuditor(auditDir string) *Auditor {
	return NewAuditorFs(afero.NewOsFs(), auditDir)
}

func NewAuditorFs(fs afero.Fs, auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
		fs:       fs,
	}
}

// SaveReport writes the run report as <started-at>-<run id>.json and returns the file name.
func (a *Auditor) SaveReport(report *importers.Report) (string, error) {
	id := report.ID
	if id == "" {
		id = uuid.NewString()
	}
	name := fmt.Sprintf("%s-%s.json", report.StartedAt.UTC().Format("20060102T150405Z"), id)
	return a.save(name, report)
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	return a.save(uuid.NewString()+".json", data)
}

func (a *Auditor) save(filename string, data any) (string, error) {
	if err := a.fs.MkdirAll(a.AuditDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := afero.WriteFile(a.fs, path, jsonData, os.FileMode(0o644)); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	logging.Debug().Str("path", path).Msg("audit file saved")
	return filename, nil
}
