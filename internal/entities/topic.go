package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Topic is a document of the "topics" collection. The chapter markdown is
// stored in Answer.
type Topic struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Subtopics []primitive.ObjectID `bson:"subtopics" json:"subtopics"`
	ChapterID primitive.ObjectID   `bson:"chapterId" json:"chapter_id"`
	BookID    primitive.ObjectID   `bson:"bookId" json:"book_id"`
	Answer    string               `bson:"answer" json:"answer"`
	CreatedAt time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updated_at"`
}

// NewTopic builds the content topic of a new chapter.
func NewTopic(name string, chapterID, bookID primitive.ObjectID, content string, now time.Time) *Topic {
	return &Topic{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Subtopics: []primitive.ObjectID{},
		ChapterID: chapterID,
		BookID:    bookID,
		Answer:    content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
