package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/superbook/internal/entities"
	"github.com/mrlokans/superbook/internal/logging"
	"github.com/mrlokans/superbook/internal/storage"
)

// BookService upserts book documents keyed by source name.
type BookService struct {
	store storage.BookStore
}

func NewBookService(store storage.BookStore) *BookService {
	return &BookService{store: store}
}

// Upsert refreshes the metadata of the book with d.SourceName, or inserts a new
// book when there is none. Status, interests and chapters of an existing book
// are left alone.
func (s *BookService) Upsert(ctx context.Context, d entities.BookDescriptor, now time.Time) (UpsertResult, error) {
	existing, err := s.store.FindBookBySourceName(ctx, d.SourceName)
	switch {
	case err == nil:
		if err := s.store.UpdateBookMetadata(ctx, existing.ID, entities.MetadataFor(d, now)); err != nil {
			return UpsertResult{}, fmt.Errorf("failed to update book %q: %w", d.SourceName, err)
		}
		logging.Info().Str("book", d.Name).Str("source", d.SourceName).Msg("book updated")
		return UpsertResult{ID: existing.ID}, nil

	case errors.Is(err, storage.ErrNotFound):
		book := entities.NewBook(d, now)
		if err := s.store.InsertBook(ctx, book); err != nil {
			return UpsertResult{}, fmt.Errorf("failed to insert book %q: %w", d.SourceName, err)
		}
		logging.Info().Str("book", d.Name).Str("source", d.SourceName).Msg("book created")
		return UpsertResult{ID: book.ID, Created: true}, nil

	default:
		return UpsertResult{}, fmt.Errorf("failed to look up book %q: %w", d.SourceName, err)
	}
}

var _ BookUpserter = (*BookService)(nil)
