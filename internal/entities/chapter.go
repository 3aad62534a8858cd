package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chapter is a document of the "chapters" collection. Name is used for lookups
// but nothing enforces its uniqueness.
type Chapter struct {
	ID        primitive.ObjectID   `bson:"_id" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Topics    []primitive.ObjectID `bson:"topics" json:"topics"`
	CreatedAt time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updated_at"`
}

// NewChapter builds a chapter carrying its content topic. A chapter always has
// at least one topic.
func NewChapter(id primitive.ObjectID, name string, topicID primitive.ObjectID, now time.Time) *Chapter {
	return &Chapter{
		ID:        id,
		Name:      name,
		Topics:    []primitive.ObjectID{topicID},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ContentTopic returns the topic holding the chapter content.
func (c *Chapter) ContentTopic() (primitive.ObjectID, bool) {
	if len(c.Topics) == 0 {
		return primitive.NilObjectID, false
	}
	return c.Topics[0], true
}
