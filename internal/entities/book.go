package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookStatus string

const (
	BookStatusCompleted BookStatus = "COMPLETED"
)

// BookDescriptor is the catalog-side description of a book used to create or
// refresh its document.
type BookDescriptor struct {
	Name         string
	SourceName   string
	Author       string
	ChapterCount int
}

// Book is a document of the "books" collection. SourceName is its natural key.
type Book struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	SourceName      string               `bson:"sourceName" json:"source_name"`
	Username        string               `bson:"username" json:"username"`
	Status          BookStatus           `bson:"status" json:"status"`
	Interests       []string             `bson:"interests" json:"interests"`
	Chapters        []primitive.ObjectID `bson:"chapters" json:"chapters"`
	Level           int                  `bson:"level" json:"level"`
	Size            int                  `bson:"size" json:"size"`
	GeneratedTopics int                  `bson:"generatedTopics" json:"generated_topics"`
	TotalTopics     int                  `bson:"totalTopics" json:"total_topics"`
	CreatedAt       time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updated_at"`
}

// BookMetadata is the subset of book fields refreshed when an existing book is
// published again. Status, interests and chapters are never part of it.
type BookMetadata struct {
	Name            string
	SourceName      string
	Username        string
	GeneratedTopics int
	TotalTopics     int
	UpdatedAt       time.Time
}

// NewBook builds a fresh book for the descriptor: completed, level and size 1,
// no interests and no chapters yet.
func NewBook(d BookDescriptor, now time.Time) *Book {
	return &Book{
		ID:              primitive.NewObjectID(),
		Name:            d.Name,
		SourceName:      d.SourceName,
		Username:        d.Author,
		Status:          BookStatusCompleted,
		Interests:       []string{},
		Chapters:        []primitive.ObjectID{},
		Level:           1,
		Size:            1,
		GeneratedTopics: d.ChapterCount,
		TotalTopics:     d.ChapterCount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// MetadataFor returns the fields to refresh on an existing book.
func MetadataFor(d BookDescriptor, now time.Time) BookMetadata {
	return BookMetadata{
		Name:            d.Name,
		SourceName:      d.SourceName,
		Username:        d.Author,
		GeneratedTopics: d.ChapterCount,
		TotalTopics:     d.ChapterCount,
		UpdatedAt:       now,
	}
}

// Apply copies the metadata onto the book.
func (m BookMetadata) Apply(b *Book) {
	b.Name = m.Name
	b.SourceName = m.SourceName
	b.Username = m.Username
	b.GeneratedTopics = m.GeneratedTopics
	b.TotalTopics = m.TotalTopics
	b.UpdatedAt = m.UpdatedAt
}

// AddChapter appends the chapter id unless it is already listed.
// It reports whether the list changed.
func (b *Book) AddChapter(id primitive.ObjectID) bool {
	var added bool
	b.Chapters, added = AddToSet(b.Chapters, id)
	return added
}

// HasChapter reports whether the chapter id is listed on the book.
func (b *Book) HasChapter(id primitive.ObjectID) bool {
	for _, c := range b.Chapters {
		if c == id {
			return true
		}
	}
	return false
}

// AddToSet appends id to ids unless it is already present.
func AddToSet(ids []primitive.ObjectID, id primitive.ObjectID) ([]primitive.ObjectID, bool) {
	for _, existing := range ids {
		if existing == id {
			return ids, false
		}
	}
	return append(ids, id), true
}
