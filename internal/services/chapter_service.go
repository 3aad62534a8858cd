package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mrlokans/superbook/internal/entities"
	"github.com/mrlokans/superbook/internal/logging"
	"github.com/mrlokans/superbook/internal/storage"
)

// ErrChapterWithoutTopics is returned when an existing chapter has no topic to
// hold its content.
var ErrChapterWithoutTopics = errors.New("chapter has no topics")

// ChapterService upserts chapters keyed by name. The chapter content lives in
// its first topic.
type ChapterService struct {
	chapters storage.ChapterStore
	books    storage.BookStore
}

func NewChapterService(chapters storage.ChapterStore, books storage.BookStore) *ChapterService {
	return &ChapterService{chapters: chapters, books: books}
}

// Upsert writes content into the chapter called name and makes sure the chapter
// is listed on the book. The book's chapter list only ever grows by set-addition.
func (s *ChapterService) Upsert(ctx context.Context, bookID primitive.ObjectID, name, content string, now time.Time) (UpsertResult, error) {
	existing, err := s.chapters.FindChapterByName(ctx, name)
	switch {
	case err == nil:
		return s.update(ctx, bookID, existing, name, content, now)
	case errors.Is(err, storage.ErrNotFound):
		return s.create(ctx, bookID, name, content, now)
	default:
		return UpsertResult{}, fmt.Errorf("failed to look up chapter %q: %w", name, err)
	}
}

func (s *ChapterService) update(ctx context.Context, bookID primitive.ObjectID, chapter *entities.Chapter, name, content string, now time.Time) (UpsertResult, error) {
	topicID, ok := chapter.ContentTopic()
	if !ok {
		return UpsertResult{}, fmt.Errorf("chapter %q (%s): %w", name, chapter.ID.Hex(), ErrChapterWithoutTopics)
	}

	if err := s.chapters.UpdateTopicContent(ctx, topicID, name, content, now); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to update topic of chapter %q: %w", name, err)
	}
	if err := s.chapters.TouchChapter(ctx, chapter.ID, name, now); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to update chapter %q: %w", name, err)
	}
	if err := s.books.AddChapterToBook(ctx, bookID, chapter.ID); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to link chapter %q to book %s: %w", name, bookID.Hex(), err)
	}

	logging.Info().Str("chapter", name).Str("chapter_id", chapter.ID.Hex()).Msg("chapter updated")
	return UpsertResult{ID: chapter.ID}, nil
}

func (s *ChapterService) create(ctx context.Context, bookID primitive.ObjectID, name, content string, now time.Time) (UpsertResult, error) {
	chapterID := primitive.NewObjectID()

	topic := entities.NewTopic(name, chapterID, bookID, content, now)
	if err := s.chapters.InsertTopic(ctx, topic); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to insert topic for chapter %q: %w", name, err)
	}

	chapter := entities.NewChapter(chapterID, name, topic.ID, now)
	if err := s.chapters.InsertChapter(ctx, chapter); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to insert chapter %q: %w", name, err)
	}

	if err := s.books.AddChapterToBook(ctx, bookID, chapterID); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to link chapter %q to book %s: %w", name, bookID.Hex(), err)
	}

	logging.Info().Str("chapter", name).Str("chapter_id", chapterID.Hex()).Msg("chapter created")
	return UpsertResult{ID: chapterID, Created: true}, nil
}

var _ ChapterUpserter = (*ChapterService)(nil)
