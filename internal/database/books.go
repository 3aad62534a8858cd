package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/mrlokans/superbook/internal/entities"
	"github.com/mrlokans/superbook/internal/storage"
)

func (d *Database) FindBookBySourceName(ctx context.Context, sourceName string) (*entities.Book, error) {
	var record BookRecord
	err := d.DB.WithContext(ctx).Where("source_name = ?", sourceName).First(&record).Error
	if err != nil {
		return nil, notFound(err)
	}
	return record.toEntity()
}

// GetBookByID retrieves a book by its id.
func (d *Database) GetBookByID(ctx context.Context, id primitive.ObjectID) (*entities.Book, error) {
	var record BookRecord
	if err := d.DB.WithContext(ctx).First(&record, "id = ?", id.Hex()).Error; err != nil {
		return nil, notFound(err)
	}
	return record.toEntity()
}

// GetAllBooks returns every stored book ordered by source name.
func (d *Database) GetAllBooks(ctx context.Context) ([]entities.Book, error) {
	var records []BookRecord
	if err := d.DB.WithContext(ctx).Order("source_name ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	books := make([]entities.Book, 0, len(records))
	for i := range records {
		book, err := records[i].toEntity()
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	return books, nil
}

func (d *Database) InsertBook(ctx context.Context, book *entities.Book) error {
	record, err := newBookRecord(book)
	if err != nil {
		return fmt.Errorf("failed to encode book %s: %w", book.SourceName, err)
	}
	return d.DB.WithContext(ctx).Create(record).Error
}

func (d *Database) UpdateBookMetadata(ctx context.Context, id primitive.ObjectID, meta entities.BookMetadata) error {
	result := d.DB.WithContext(ctx).Model(&BookRecord{}).Where("id = ?", id.Hex()).Updates(map[string]any{
		"name":             meta.Name,
		"source_name":      meta.SourceName,
		"username":         meta.Username,
		"generated_topics": meta.GeneratedTopics,
		"total_topics":     meta.TotalTopics,
		"updated_at":       meta.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AddChapterToBook reads and rewrites the chapter list inside one transaction,
// so concurrent additions to the same book cannot drop each other.
func (d *Database) AddChapterToBook(ctx context.Context, bookID, chapterID primitive.ObjectID) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record BookRecord
		if err := tx.Select("id", "chapters").First(&record, "id = ?", bookID.Hex()).Error; err != nil {
			return notFound(err)
		}

		chapters, err := decodeIDs(record.Chapters)
		if err != nil {
			return err
		}
		chapters, added := entities.AddToSet(chapters, chapterID)
		if !added {
			return nil
		}

		encoded, err := encodeIDs(chapters)
		if err != nil {
			return err
		}
		return tx.Model(&BookRecord{}).Where("id = ?", record.ID).Update("chapters", encoded).Error
	})
}
