package importers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/superbook/internal/catalog"
	"github.com/mrlokans/superbook/internal/content"
	"github.com/mrlokans/superbook/internal/logging"
	"github.com/mrlokans/superbook/internal/parsers"
	"github.com/mrlokans/superbook/internal/services"
)

// Pipeline publishes a catalog:
// book upsert → (per chapter, in order) read → rewrite images → chapter upsert.
//
// Books run concurrently. A failing book never cancels the others, and Run
// returns only once every book pipeline has settled, so the caller may close
// the store right after.
type Pipeline struct {
	books       services.BookUpserter
	chapters    services.ChapterUpserter
	reader      content.Reader
	imageRoot   string
	concurrency int
	now         func() time.Time
}

type Option func(*Pipeline)

// WithConcurrency limits the number of books published at once. Zero or less
// means no limit.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) { p.concurrency = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline. imageRoot is the URL that each book's source
// name is appended to when rewriting relative images.
func NewPipeline(books services.BookUpserter, chapters services.ChapterUpserter, reader content.Reader, imageRoot string, opts ...Option) *Pipeline {
	p := &Pipeline{
		books:     books,
		chapters:  chapters,
		reader:    reader,
		imageRoot: imageRoot,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run publishes every book of the catalog and reports each book's outcome.
func (p *Pipeline) Run(ctx context.Context, c *catalog.Catalog) *Report {
	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: p.now(),
		Books:     make([]BookResult, len(c.Books)),
	}
	// One timestamp for every document written by this run
	runAt := report.StartedAt

	// No derived context: a failure in one book must not cancel the others
	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for i, book := range c.Books {
		i, book := i, book
		g.Go(func() error {
			report.Books[i] = p.publishBook(ctx, book, runAt)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = p.now()

	for _, b := range report.Books {
		if b.Err != nil {
			logging.Error().Err(b.Err).Str("source", b.SourceName).Int("chapters_written", len(b.Chapters)).Msg("book failed")
		}
	}
	logging.Info().
		Str("run", report.ID).
		Int("books", len(report.Books)).
		Int("failed", report.Failed()).
		Int("chapters", report.ChaptersWritten()).
		Dur("took", report.Duration()).
		Msg("publish finished")

	return report
}

// PublishBook runs the pipeline of a single book.
func (p *Pipeline) PublishBook(ctx context.Context, book catalog.Book) BookResult {
	return p.publishBook(ctx, book, p.now())
}

func (p *Pipeline) publishBook(ctx context.Context, book catalog.Book, now time.Time) (result BookResult) {
	result = BookResult{
		Name:       book.Name,
		SourceName: book.SourceName,
		Chapters:   []ChapterResult{},
	}
	defer func() {
		if r := recover(); r != nil {
			result.fail(fmt.Errorf("panic while publishing: %v", r))
		}
	}()

	logging.Info().Str("book", book.Name).Str("source", book.SourceName).Msg("publishing book")

	upserted, err := p.books.Upsert(ctx, book.Descriptor(), now)
	if err != nil {
		result.fail(err)
		return result
	}
	result.BookID = upserted.ID
	result.Created = upserted.Created

	base := book.ImageBase
	if base == "" {
		base = parsers.ImageBase(p.imageRoot, book.SourceName)
	}

	for _, ch := range book.Chapters {
		chapter, err := p.publishChapter(ctx, upserted, ch, base, now)
		if err != nil {
			result.fail(err)
			return result
		}
		result.Chapters = append(result.Chapters, chapter)
	}
	return result
}

func (p *Pipeline) publishChapter(ctx context.Context, book services.UpsertResult, ch catalog.Chapter, base string, now time.Time) (ChapterResult, error) {
	text, err := p.reader.Read(ctx, ch.Path)
	if err != nil {
		return ChapterResult{}, fmt.Errorf("chapter %q: %w", ch.Name, err)
	}

	images := len(parsers.RelativeImageSources(text))
	text = parsers.RewriteImageURLs(text, base)

	upserted, err := p.chapters.Upsert(ctx, book.ID, ch.Name, text, now)
	if err != nil {
		return ChapterResult{}, fmt.Errorf("chapter %q: %w", ch.Name, err)
	}

	return ChapterResult{
		Name:      ch.Name,
		Path:      ch.Path,
		ChapterID: upserted.ID,
		Created:   upserted.Created,
		Images:    images,
	}, nil
}
