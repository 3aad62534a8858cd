package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mrlokans/superbook/internal/entities"
)

// BookUpserter finds or creates a book by its source name.
type BookUpserter interface {
	Upsert(ctx context.Context, d entities.BookDescriptor, now time.Time) (UpsertResult, error)
}

// ChapterUpserter finds or creates a chapter by its name and links it to a book.
type ChapterUpserter interface {
	Upsert(ctx context.Context, bookID primitive.ObjectID, name, content string, now time.Time) (UpsertResult, error)
}

// UpsertResult identifies the written document and whether it was inserted.
type UpsertResult struct {
	ID      primitive.ObjectID
	Created bool
}
