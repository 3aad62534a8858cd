// Package memory provides an in-process Store used for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mrlokans/superbook/internal/entities"
	"github.com/mrlokans/superbook/internal/storage"
)

// Store keeps books, chapters and topics in maps guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	books    map[primitive.ObjectID]entities.Book
	chapters map[primitive.ObjectID]entities.Chapter
	topics   map[primitive.ObjectID]entities.Topic
	order    []primitive.ObjectID // chapter insertion order, for name lookups
	closed   bool
}

func NewStore() *Store {
	return &Store{
		books:    make(map[primitive.ObjectID]entities.Book),
		chapters: make(map[primitive.ObjectID]entities.Chapter),
		topics:   make(map[primitive.ObjectID]entities.Topic),
	}
}

func (s *Store) FindBookBySourceName(_ context.Context, sourceName string) (*entities.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books {
		if b.SourceName == sourceName {
			book := cloneBook(b)
			return &book, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) InsertBook(_ context.Context, book *entities.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[book.ID]; exists {
		return fmt.Errorf("book %s already exists", book.ID.Hex())
	}
	s.books[book.ID] = cloneBook(*book)
	return nil
}

func (s *Store) UpdateBookMetadata(_ context.Context, id primitive.ObjectID, meta entities.BookMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return storage.ErrNotFound
	}
	meta.Apply(&book)
	s.books[id] = book
	return nil
}

func (s *Store) AddChapterToBook(_ context.Context, bookID, chapterID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[bookID]
	if !ok {
		return storage.ErrNotFound
	}
	book.AddChapter(chapterID)
	s.books[bookID] = book
	return nil
}

func (s *Store) FindChapterByName(_ context.Context, name string) (*entities.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if c := s.chapters[id]; c.Name == name {
			chapter := cloneChapter(c)
			return &chapter, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) InsertChapter(_ context.Context, chapter *entities.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chapters[chapter.ID]; exists {
		return fmt.Errorf("chapter %s already exists", chapter.ID.Hex())
	}
	s.chapters[chapter.ID] = cloneChapter(*chapter)
	s.order = append(s.order, chapter.ID)
	return nil
}

func (s *Store) TouchChapter(_ context.Context, id primitive.ObjectID, name string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chapter, ok := s.chapters[id]
	if !ok {
		return storage.ErrNotFound
	}
	chapter.Name = name
	chapter.UpdatedAt = now
	s.chapters[id] = chapter
	return nil
}

func (s *Store) InsertTopic(_ context.Context, topic *entities.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.topics[topic.ID]; exists {
		return fmt.Errorf("topic %s already exists", topic.ID.Hex())
	}
	s.topics[topic.ID] = *topic
	return nil
}

func (s *Store) UpdateTopicContent(_ context.Context, id primitive.ObjectID, name, content string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic, ok := s.topics[id]
	if !ok {
		return storage.ErrNotFound
	}
	topic.Name = name
	topic.Answer = content
	topic.UpdatedAt = now
	s.topics[id] = topic
	return nil
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Books returns copies of all stored books.
func (s *Store) Books() []entities.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]entities.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, cloneBook(b))
	}
	return books
}

// Chapters returns copies of all stored chapters in insertion order.
func (s *Store) Chapters() []entities.Chapter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chapters := make([]entities.Chapter, 0, len(s.order))
	for _, id := range s.order {
		chapters = append(chapters, cloneChapter(s.chapters[id]))
	}
	return chapters
}

// Topic returns a copy of the topic with the given id.
func (s *Store) Topic(id primitive.ObjectID) (entities.Topic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	return t, ok
}

// TopicCount returns the number of stored topics.
func (s *Store) TopicCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics)
}

func cloneBook(b entities.Book) entities.Book {
	b.Interests = append([]string{}, b.Interests...)
	b.Chapters = append([]primitive.ObjectID{}, b.Chapters...)
	return b
}

func cloneChapter(c entities.Chapter) entities.Chapter {
	c.Topics = append([]primitive.ObjectID{}, c.Topics...)
	return c
}

var _ storage.Store = (*Store)(nil)
