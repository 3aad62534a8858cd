package database

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/datatypes"

	"github.com/mrlokans/superbook/internal/entities"
)

type BookRecord struct {
	ID              string         `gorm:"primaryKey;size:24"`
	Name            string         `gorm:"size:512"`
	SourceName      string         `gorm:"uniqueIndex;size:256"`
	Username        string         `gorm:"size:256"`
	Status          string         `gorm:"size:32"`
	Interests       datatypes.JSON `gorm:"not null"`
	Chapters        datatypes.JSON `gorm:"not null"`
	Level           int
	Size            int
	GeneratedTopics int
	TotalTopics     int
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

func (BookRecord) TableName() string { return "books" }

type ChapterRecord struct {
	ID        string         `gorm:"primaryKey;size:24"`
	Name      string         `gorm:"index;size:512"`
	Topics    datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false"`
}

func (ChapterRecord) TableName() string { return "chapters" }

type TopicRecord struct {
	ID        string         `gorm:"primaryKey;size:24"`
	Name      string         `gorm:"size:512"`
	Subtopics datatypes.JSON `gorm:"not null"`
	ChapterID string         `gorm:"index;size:24"`
	BookID    string         `gorm:"index;size:24"`
	Answer    string         `gorm:"type:text"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false"`
}

func (TopicRecord) TableName() string { return "topics" }

func encodeIDs(ids []primitive.ObjectID) (datatypes.JSON, error) {
	hexes := make([]string, 0, len(ids))
	for _, id := range ids {
		hexes = append(hexes, id.Hex())
	}
	raw, err := json.Marshal(hexes)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeIDs(raw datatypes.JSON) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{}
	if len(raw) == 0 {
		return ids, nil
	}

	var hexes []string
	if err := json.Unmarshal(raw, &hexes); err != nil {
		return nil, fmt.Errorf("failed to decode id list: %w", err)
	}
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", h, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(h string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(h)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", h, err)
	}
	return id, nil
}

func newBookRecord(b *entities.Book) (*BookRecord, error) {
	interests, err := json.Marshal(b.Interests)
	if err != nil {
		return nil, err
	}
	if b.Interests == nil {
		interests = []byte("[]")
	}
	chapters, err := encodeIDs(b.Chapters)
	if err != nil {
		return nil, err
	}

	return &BookRecord{
		ID:              b.ID.Hex(),
		Name:            b.Name,
		SourceName:      b.SourceName,
		Username:        b.Username,
		Status:          string(b.Status),
		Interests:       datatypes.JSON(interests),
		Chapters:        chapters,
		Level:           b.Level,
		Size:            b.Size,
		GeneratedTopics: b.GeneratedTopics,
		TotalTopics:     b.TotalTopics,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}, nil
}

func (r *BookRecord) toEntity() (*entities.Book, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return nil, err
	}
	interests := []string{}
	if len(r.Interests) > 0 {
		if err := json.Unmarshal(r.Interests, &interests); err != nil {
			return nil, fmt.Errorf("failed to decode interests: %w", err)
		}
	}
	chapters, err := decodeIDs(r.Chapters)
	if err != nil {
		return nil, err
	}

	return &entities.Book{
		ID:              id,
		Name:            r.Name,
		SourceName:      r.SourceName,
		Username:        r.Username,
		Status:          entities.BookStatus(r.Status),
		Interests:       interests,
		Chapters:        chapters,
		Level:           r.Level,
		Size:            r.Size,
		GeneratedTopics: r.GeneratedTopics,
		TotalTopics:     r.TotalTopics,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

func newChapterRecord(c *entities.Chapter) (*ChapterRecord, error) {
	topics, err := encodeIDs(c.Topics)
	if err != nil {
		return nil, err
	}
	return &ChapterRecord{
		ID:        c.ID.Hex(),
		Name:      c.Name,
		Topics:    topics,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

func (r *ChapterRecord) toEntity() (*entities.Chapter, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return nil, err
	}
	topics, err := decodeIDs(r.Topics)
	if err != nil {
		return nil, err
	}
	return &entities.Chapter{
		ID:        id,
		Name:      r.Name,
		Topics:    topics,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func newTopicRecord(t *entities.Topic) (*TopicRecord, error) {
	subtopics, err := encodeIDs(t.Subtopics)
	if err != nil {
		return nil, err
	}
	return &TopicRecord{
		ID:        t.ID.Hex(),
		Name:      t.Name,
		Subtopics: subtopics,
		ChapterID: t.ChapterID.Hex(),
		BookID:    t.BookID.Hex(),
		Answer:    t.Answer,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

func (r *TopicRecord) toEntity() (*entities.Topic, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return nil, err
	}
	chapterID, err := parseID(r.ChapterID)
	if err != nil {
		return nil, err
	}
	bookID, err := parseID(r.BookID)
	if err != nil {
		return nil, err
	}
	subtopics, err := decodeIDs(r.Subtopics)
	if err != nil {
		return nil, err
	}
	return &entities.Topic{
		ID:        id,
		Name:      r.Name,
		Subtopics: subtopics,
		ChapterID: chapterID,
		BookID:    bookID,
		Answer:    r.Answer,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}
