package importers

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChapterResult records one chapter written by a book pipeline.
type ChapterResult struct {
	Name      string             `json:"name"`
	Path      string             `json:"path"`
	ChapterID primitive.ObjectID `json:"chapter_id"`
	Created   bool               `json:"created"`
	Images    int                `json:"images_rewritten"`
}

// BookResult is the outcome of one book pipeline. Chapters lists the chapters
// written before the pipeline stopped.
type BookResult struct {
	Name       string             `json:"name"`
	SourceName string             `json:"source_name"`
	BookID     primitive.ObjectID `json:"book_id"`
	Created    bool               `json:"created"`
	Chapters   []ChapterResult    `json:"chapters"`
	Err        error              `json:"-"`
	Error      string             `json:"error,omitempty"`
}

func (r *BookResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// OK reports whether every chapter of the book was written.
func (r BookResult) OK() bool {
	return r.Err == nil
}

// Report collects the results of a run, one entry per catalog book in catalog order.
type Report struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Books      []BookResult `json:"books"`
}

// Failed returns the number of books whose pipeline stopped with an error.
func (r *Report) Failed() int {
	n := 0
	for _, b := range r.Books {
		if !b.OK() {
			n++
		}
	}
	return n
}

// ChaptersWritten returns the number of chapters written across all books.
func (r *Report) ChaptersWritten() int {
	n := 0
	for _, b := range r.Books {
		n += len(b.Chapters)
	}
	return n
}

// Err joins the errors of all failed books, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, b := range r.Books {
		if b.Err != nil {
			errs = append(errs, fmt.Errorf("book %q: %w", b.SourceName, b.Err))
		}
	}
	return errors.Join(errs...)
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
