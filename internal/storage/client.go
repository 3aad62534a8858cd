package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mrlokans/superbook/internal/entities"
)

// ErrNotFound is returned by lookups that match no document.
var ErrNotFound = errors.New("document not found")

// BookStore defines the operations on the books collection
type BookStore interface {
	// FindBookBySourceName returns ErrNotFound when no book has the source name
	FindBookBySourceName(ctx context.Context, sourceName string) (*entities.Book, error)

	// InsertBook stores a new book document
	InsertBook(ctx context.Context, book *entities.Book) error

	// UpdateBookMetadata overwrites the metadata fields of an existing book
	UpdateBookMetadata(ctx context.Context, id primitive.ObjectID, meta entities.BookMetadata) error

	// AddChapterToBook appends the chapter id to the book's chapter list
	// unless it is already listed
	AddChapterToBook(ctx context.Context, bookID, chapterID primitive.ObjectID) error
}

// ChapterStore defines the operations on the chapters and topics collections
type ChapterStore interface {
	// FindChapterByName returns ErrNotFound when no chapter has the name
	FindChapterByName(ctx context.Context, name string) (*entities.Chapter, error)

	// InsertChapter stores a new chapter document
	InsertChapter(ctx context.Context, chapter *entities.Chapter) error

	// TouchChapter sets the chapter name and update timestamp
	TouchChapter(ctx context.Context, id primitive.ObjectID, name string, now time.Time) error

	// InsertTopic stores a new topic document
	InsertTopic(ctx context.Context, topic *entities.Topic) error

	// UpdateTopicContent sets the topic name, content and update timestamp
	UpdateTopicContent(ctx context.Context, id primitive.ObjectID, name, content string, now time.Time) error
}

// Store is a connection to the document database. It must be safe for
// concurrent use by several book pipelines.
type Store interface {
	BookStore
	ChapterStore

	// Close releases the connection. It is called once, after every pipeline
	// using the store has finished.
	Close(ctx context.Context) error
}
