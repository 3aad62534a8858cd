package importers

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mrlokans/superbook/internal/catalog"
	"github.com/mrlokans/superbook/internal/content"
	"github.com/mrlokans/superbook/internal/database"
	"github.com/mrlokans/superbook/internal/entities"
	"github.com/mrlokans/superbook/internal/services"
	"github.com/mrlokans/superbook/internal/storage/memory"
)

const imageRoot = "https://raw.githubusercontent.com/getify/You-Dont-Know-JS/2nd-ed"

var runAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return runAt }

func newContent(t *testing.T, files map[string]string) content.Reader {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, text := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/books", path), []byte(text), 0o644))
	}
	return content.NewFileReaderFs(fs, "/books")
}

func twoBookCatalog() *catalog.Catalog {
	return &catalog.Catalog{Books: []catalog.Book{
		{
			Name:       "Get Started",
			SourceName: "get-started",
			Author:     "Kyle Simpson",
			Chapters: []catalog.Chapter{
				{Path: "preface.md", Name: "Preface"},
				{Path: "get-started/ch1.md", Name: "Chapter 1"},
			},
		},
		{
			Name:       "Scope & Closures",
			SourceName: "scope-closures",
			Author:     "Kyle Simpson",
			Chapters: []catalog.Chapter{
				{Path: "preface.md", Name: "Preface"},
				{Path: "scope-closures/ch1.md", Name: "Chapter 1: What's the Scope?"},
			},
		},
	}}
}

func twoBookFiles() map[string]string {
	return map[string]string{
		"preface.md":            "# Preface\n",
		"get-started/ch1.md":    `<img src="fig1.png" width="50">` + "\n" + `<img src="https://x.org/a.png">`,
		"scope-closures/ch1.md": "# What's the Scope?\n",
	}
}

func newMemoryPipeline(t *testing.T, files map[string]string, opts ...Option) (*Pipeline, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	p := NewPipeline(
		services.NewBookService(store),
		services.NewChapterService(store, store),
		newContent(t, files),
		imageRoot,
		opts...,
	)
	return p, store
}

func TestPipeline_Run_PublishesCatalog(t *testing.T) {
	// Books run concurrently, so serialize them to make the shared Preface deterministic.
	p, store := newMemoryPipeline(t, twoBookFiles(), WithConcurrency(1))

	report := p.Run(context.Background(), twoBookCatalog())

	require.NoError(t, report.Err())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 4, report.ChaptersWritten())
	require.Len(t, report.Books, 2)
	assert.Equal(t, "get-started", report.Books[0].SourceName)
	assert.Equal(t, "scope-closures", report.Books[1].SourceName)
	assert.True(t, report.Books[0].Created)
	assert.Equal(t, 1, report.Books[0].Chapters[1].Images)

	books := store.Books()
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Equal(t, entities.BookStatusCompleted, b.Status)
		assert.Equal(t, runAt, b.CreatedAt)
		assert.Len(t, b.Chapters, 2)
	}

	chapters := store.Chapters()
	assert.Len(t, chapters, 3, "Preface is shared by name")
	assert.Equal(t, 3, store.TopicCount())

	// Relative images are anchored at the book's folder, absolute ones untouched
	ch1 := findChapter(t, store, "Chapter 1")
	topicID, ok := ch1.ContentTopic()
	require.True(t, ok)
	topic, ok := store.Topic(topicID)
	require.True(t, ok)
	assert.Equal(t,
		`<img src="`+imageRoot+`/get-started/fig1.png" width="50">`+"\n"+`<img src="https://x.org/a.png">`,
		topic.Answer)
	assert.Equal(t, report.Books[0].BookID, topic.BookID)
}

func TestPipeline_Run_IsIdempotent(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "publish.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })

	clock := runAt
	p := NewPipeline(
		services.NewBookService(db),
		services.NewChapterService(db, db),
		newContent(t, twoBookFiles()),
		imageRoot,
		WithConcurrency(1),
		WithClock(func() time.Time { return clock }),
	)
	ctx := context.Background()

	first := p.Run(ctx, twoBookCatalog())
	require.NoError(t, first.Err())

	clock = runAt.Add(24 * time.Hour)
	second := p.Run(ctx, twoBookCatalog())
	require.NoError(t, second.Err())

	for i := range first.Books {
		assert.Equal(t, first.Books[i].BookID, second.Books[i].BookID)
		assert.False(t, second.Books[i].Created)
		for j, ch := range second.Books[i].Chapters {
			assert.False(t, ch.Created)
			assert.Equal(t, first.Books[i].Chapters[j].ChapterID, ch.ChapterID)
		}
	}

	books, err := db.GetAllBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Len(t, b.Chapters, 2)
		assert.True(t, b.CreatedAt.Equal(runAt))
		assert.True(t, b.UpdatedAt.Equal(clock))
	}
	count, err := db.CountTopics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestPipeline_Run_MissingChapterStopsOnlyThatBook(t *testing.T) {
	files := twoBookFiles()
	delete(files, "get-started/ch1.md")
	p, store := newMemoryPipeline(t, files, WithConcurrency(1))

	report := p.Run(context.Background(), twoBookCatalog())

	assert.Equal(t, 1, report.Failed())
	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), `book "get-started"`)

	failed := report.Books[0]
	assert.False(t, failed.OK())
	assert.Contains(t, failed.Error, "Chapter 1")
	require.Len(t, failed.Chapters, 1, "chapters before the failure stay written")
	assert.Equal(t, "Preface", failed.Chapters[0].Name)

	assert.True(t, report.Books[1].OK())
	assert.Len(t, report.Books[1].Chapters, 2)

	// The failed book exists with the chapters written before the failure
	for _, b := range store.Books() {
		if b.SourceName == "get-started" {
			assert.Len(t, b.Chapters, 1)
		}
	}
}

// slowChapters delays every upsert and tracks how many run at once.
type slowChapters struct {
	delay   time.Duration
	failFor string

	mu       sync.Mutex
	order    map[primitive.ObjectID][]string
	inFlight atomic.Int32
	peak     atomic.Int32
	done     atomic.Int32
}

func (s *slowChapters) Upsert(ctx context.Context, bookID primitive.ObjectID, name, text string, now time.Time) (services.UpsertResult, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if name == s.failFor {
		return services.UpsertResult{}, errors.New("write refused")
	}

	time.Sleep(s.delay)

	s.mu.Lock()
	if s.order == nil {
		s.order = map[primitive.ObjectID][]string{}
	}
	s.order[bookID] = append(s.order[bookID], name)
	s.mu.Unlock()

	s.done.Add(1)
	return services.UpsertResult{ID: primitive.NewObjectID(), Created: true}, nil
}

type panickingBooks struct {
	services.BookUpserter
	panicFor string
}

func (p panickingBooks) Upsert(ctx context.Context, d entities.BookDescriptor, now time.Time) (services.UpsertResult, error) {
	if d.SourceName == p.panicFor {
		panic("boom")
	}
	return p.BookUpserter.Upsert(ctx, d, now)
}

func manyChapters(source string, n int) (catalog.Book, map[string]string) {
	book := catalog.Book{Name: source, SourceName: source}
	files := map[string]string{}
	for i := 0; i < n; i++ {
		path := filepath.Join(source, string(rune('a'+i))+".md")
		book.Chapters = append(book.Chapters, catalog.Chapter{Path: path, Name: source + "/" + string(rune('a'+i))})
		files[path] = "text"
	}
	return book, files
}

func TestPipeline_Run_WaitsForSlowBookAfterSiblingFails(t *testing.T) {
	slowBook, files := manyChapters("slow", 3)
	failBook, failFiles := manyChapters("fail", 2)
	for k, v := range failFiles {
		files[k] = v
	}

	store := memory.NewStore()
	chapters := &slowChapters{delay: 20 * time.Millisecond, failFor: "fail/a"}
	p := NewPipeline(services.NewBookService(store), chapters, newContent(t, files), imageRoot)

	report := p.Run(context.Background(), &catalog.Catalog{Books: []catalog.Book{failBook, slowBook}})

	assert.EqualValues(t, 3, chapters.done.Load(), "Run returned before the slow book settled")
	assert.False(t, report.Books[0].OK())
	assert.True(t, report.Books[1].OK())
	assert.Len(t, report.Books[1].Chapters, 3)
	assert.Equal(t, 1, report.Failed())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestPipeline_Run_KeepsChapterOrderWithinBook(t *testing.T) {
	a, files := manyChapters("a", 5)
	b, filesB := manyChapters("b", 5)
	for k, v := range filesB {
		files[k] = v
	}

	store := memory.NewStore()
	chapters := &slowChapters{delay: time.Millisecond}
	p := NewPipeline(services.NewBookService(store), chapters, newContent(t, files), imageRoot)

	report := p.Run(context.Background(), &catalog.Catalog{Books: []catalog.Book{a, b}})
	require.NoError(t, report.Err())

	for i, book := range []catalog.Book{a, b} {
		var want []string
		for _, ch := range book.Chapters {
			want = append(want, ch.Name)
		}
		assert.Equal(t, want, chapters.order[report.Books[i].BookID])
	}
}

func TestPipeline_Run_RespectsConcurrencyLimit(t *testing.T) {
	var books []catalog.Book
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d"} {
		book, f := manyChapters(name, 2)
		books = append(books, book)
		for k, v := range f {
			files[k] = v
		}
	}

	store := memory.NewStore()
	chapters := &slowChapters{delay: 10 * time.Millisecond}
	p := NewPipeline(services.NewBookService(store), chapters, newContent(t, files), imageRoot, WithConcurrency(2))

	report := p.Run(context.Background(), &catalog.Catalog{Books: books})

	require.NoError(t, report.Err())
	assert.LessOrEqual(t, chapters.peak.Load(), int32(2))
	assert.EqualValues(t, 8, chapters.done.Load())
}

func TestPipeline_Run_RecoversPanicAsBookError(t *testing.T) {
	store := memory.NewStore()
	p := NewPipeline(
		panickingBooks{BookUpserter: services.NewBookService(store), panicFor: "get-started"},
		services.NewChapterService(store, store),
		newContent(t, twoBookFiles()),
		imageRoot,
		WithClock(fixedClock),
	)

	report := p.Run(context.Background(), twoBookCatalog())

	require.Len(t, report.Books, 2)
	assert.Contains(t, report.Books[0].Error, "panic")
	assert.True(t, report.Books[1].OK())
}

func TestPipeline_Run_BookImageBaseOverride(t *testing.T) {
	cat := &catalog.Catalog{Books: []catalog.Book{{
		Name:       "Mirror",
		SourceName: "mirror",
		ImageBase:  "https://cdn.example.com/img",
		Chapters:   []catalog.Chapter{{Path: "m.md", Name: "Mirrored"}},
	}}}
	p, store := newMemoryPipeline(t, map[string]string{"m.md": `<img src="x.png">`})

	report := p.Run(context.Background(), cat)
	require.NoError(t, report.Err())

	ch := findChapter(t, store, "Mirrored")
	id, _ := ch.ContentTopic()
	topic, ok := store.Topic(id)
	require.True(t, ok)
	assert.Equal(t, `<img src="https://cdn.example.com/img/x.png">`, topic.Answer)
}

func TestPipeline_Run_EmptyCatalog(t *testing.T) {
	p, store := newMemoryPipeline(t, nil)

	report := p.Run(context.Background(), &catalog.Catalog{})

	assert.Empty(t, report.Books)
	assert.NoError(t, report.Err())
	assert.Empty(t, store.Books())
	assert.NotEmpty(t, report.ID)
}

func findChapter(t *testing.T, store *memory.Store, name string) entities.Chapter {
	t.Helper()
	for _, ch := range store.Chapters() {
		if ch.Name == name {
			return ch
		}
	}
	t.Fatalf("chapter %q not found", name)
	return entities.Chapter{}
}
