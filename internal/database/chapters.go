package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mrlokans/superbook/internal/entities"
	"github.com/mrlokans/superbook/internal/storage"
)

// FindChapterByName returns the oldest chapter with the name.
func (d *Database) FindChapterByName(ctx context.Context, name string) (*entities.Chapter, error) {
	var record ChapterRecord
	err := d.DB.WithContext(ctx).Where("name = ?", name).Order("created_at ASC").First(&record).Error
	if err != nil {
		return nil, notFound(err)
	}
	return record.toEntity()
}

// GetChaptersByName returns every chapter with the name. Used to detect
// duplicates, since chapter names are not unique.
func (d *Database) GetChaptersByName(ctx context.Context, name string) ([]entities.Chapter, error) {
	var records []ChapterRecord
	if err := d.DB.WithContext(ctx).Where("name = ?", name).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	chapters := make([]entities.Chapter, 0, len(records))
	for i := range records {
		chapter, err := records[i].toEntity()
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, *chapter)
	}
	return chapters, nil
}

func (d *Database) InsertChapter(ctx context.Context, chapter *entities.Chapter) error {
	record, err := newChapterRecord(chapter)
	if err != nil {
		return fmt.Errorf("failed to encode chapter %q: %w", chapter.Name, err)
	}
	return d.DB.WithContext(ctx).Create(record).Error
}

func (d *Database) TouchChapter(ctx context.Context, id primitive.ObjectID, name string, now time.Time) error {
	result := d.DB.WithContext(ctx).Model(&ChapterRecord{}).Where("id = ?", id.Hex()).Updates(map[string]any{
		"name":       name,
		"updated_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (d *Database) InsertTopic(ctx context.Context, topic *entities.Topic) error {
	record, err := newTopicRecord(topic)
	if err != nil {
		return fmt.Errorf("failed to encode topic %q: %w", topic.Name, err)
	}
	return d.DB.WithContext(ctx).Create(record).Error
}

// GetTopicByID retrieves a topic by its id.
func (d *Database) GetTopicByID(ctx context.Context, id primitive.ObjectID) (*entities.Topic, error) {
	var record TopicRecord
	if err := d.DB.WithContext(ctx).First(&record, "id = ?", id.Hex()).Error; err != nil {
		return nil, notFound(err)
	}
	return record.toEntity()
}

// CountTopics returns the number of stored topics.
func (d *Database) CountTopics(ctx context.Context) (int64, error) {
	var count int64
	err := d.DB.WithContext(ctx).Model(&TopicRecord{}).Count(&count).Error
	return count, err
}

func (d *Database) UpdateTopicContent(ctx context.Context, id primitive.ObjectID, name, content string, now time.Time) error {
	result := d.DB.WithContext(ctx).Model(&TopicRecord{}).Where("id = ?", id.Hex()).Updates(map[string]any{
		"name":       name,
		"answer":     content,
		"updated_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
