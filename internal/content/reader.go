// Package content loads chapter markdown from the filesystem.
package content

import (
	"context"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// Reader returns the text of the file at path.
type Reader interface {
	Read(ctx context.Context, path string) (string, error)
}

// FileReader reads files from an afero filesystem. Relative paths resolve
// against Root.
type FileReader struct {
	fs   afero.Fs
	Root string
}

// NewFileReader reads from the OS filesystem under root.
func NewFileReader(root string) *FileReader {
	return NewFileReaderFs(afero.NewOsFs(), root)
}

// NewFileReaderFs reads from fs under root.
func NewFileReaderFs(fs afero.Fs, root string) *FileReader {
	return &FileReader{fs: fs, Root: root}
}

// Resolve returns the path that Read opens for path.
func (r *FileReader) Resolve(path string) string {
	if filepath.IsAbs(path) || r.Root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(r.Root, path)
}

// Read returns the file contents. Bytes that are not valid UTF-8 are
// replaced rather than rejected.
func (r *FileReader) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resolved := r.Resolve(path)
	data, err := afero.ReadFile(r.fs, resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", resolved, err)
	}

	if !utf8.Valid(data) {
		return string([]rune(string(data))), nil
	}
	return string(data), nil
}

var _ Reader = (*FileReader)(nil)
