// Package mongostore implements storage.Store on MongoDB with the
// books/chapters/topics collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/superbook/internal/entities"
	"github.com/mrlokans/superbook/internal/logging"
	"github.com/mrlokans/superbook/internal/storage"
)

const (
	BooksCollection    = "books"
	ChaptersCollection = "chapters"
	TopicsCollection   = "topics"
)

type Store struct {
	client   *mongo.Client
	books    *mongo.Collection
	chapters *mongo.Collection
	topics   *mongo.Collection
}

// Connect opens a client for uri, pings the server and binds the collections
// of database dbName.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	logging.Info().Str("database", dbName).Msg("connected to mongo")

	return New(client, dbName), nil
}

// New wraps an already connected client.
func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:   client,
		books:    db.Collection(BooksCollection),
		chapters: db.Collection(ChaptersCollection),
		topics:   db.Collection(TopicsCollection),
	}
}

func (s *Store) FindBookBySourceName(ctx context.Context, sourceName string) (*entities.Book, error) {
	var book entities.Book
	if err := s.books.FindOne(ctx, bson.M{"sourceName": sourceName}).Decode(&book); err != nil {
		return nil, notFound(err)
	}
	return &book, nil
}

func (s *Store) InsertBook(ctx context.Context, book *entities.Book) error {
	_, err := s.books.InsertOne(ctx, book)
	return err
}

func (s *Store) UpdateBookMetadata(ctx context.Context, id primitive.ObjectID, meta entities.BookMetadata) error {
	return s.updateOne(ctx, s.books, id, bson.M{"$set": bson.M{
		"name":            meta.Name,
		"sourceName":      meta.SourceName,
		"username":        meta.Username,
		"generatedTopics": meta.GeneratedTopics,
		"totalTopics":     meta.TotalTopics,
		"updatedAt":       meta.UpdatedAt,
	}})
}

func (s *Store) AddChapterToBook(ctx context.Context, bookID, chapterID primitive.ObjectID) error {
	return s.updateOne(ctx, s.books, bookID, bson.M{"$addToSet": bson.M{"chapters": chapterID}})
}

func (s *Store) FindChapterByName(ctx context.Context, name string) (*entities.Chapter, error) {
	var chapter entities.Chapter
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := s.chapters.FindOne(ctx, bson.M{"name": name}, opts).Decode(&chapter); err != nil {
		return nil, notFound(err)
	}
	return &chapter, nil
}

func (s *Store) InsertChapter(ctx context.Context, chapter *entities.Chapter) error {
	_, err := s.chapters.InsertOne(ctx, chapter)
	return err
}

func (s *Store) TouchChapter(ctx context.Context, id primitive.ObjectID, name string, now time.Time) error {
	return s.updateOne(ctx, s.chapters, id, bson.M{"$set": bson.M{
		"name":      name,
		"updatedAt": now,
	}})
}

func (s *Store) InsertTopic(ctx context.Context, topic *entities.Topic) error {
	_, err := s.topics.InsertOne(ctx, topic)
	return err
}

func (s *Store) UpdateTopicContent(ctx context.Context, id primitive.ObjectID, name, content string, now time.Time) error {
	return s.updateOne(ctx, s.topics, id, bson.M{"$set": bson.M{
		"name":      name,
		"answer":    content,
		"updatedAt": now,
	}})
}

// EnsureIndexes creates the lookup indexes used by the natural-key queries.
// Chapter names are indexed but not unique.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.books.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sourceName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create books index: %w", err)
	}

	_, err = s.chapters.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create chapters index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) updateOne(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, update bson.M) error {
	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return err
}

var _ storage.Store = (*Store)(nil)
