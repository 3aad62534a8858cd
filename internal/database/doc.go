// Package database provides the sqlite implementation of storage.Store.
//
// # Layout
//
//	database/
//	├── database.go      # Connection setup, migrations, Close
//	├── models.go        # Row types for books, chapters and topics
//	├── books.go         # Book lookups, inserts and chapter set-addition
//	├── chapters.go      # Chapter and topic operations
//	└── mongostore/      # MongoDB implementation of the same interface
//
// Rows keep the document shape of the MongoDB collections: ids are ObjectID hex
// strings and id lists are JSON arrays. Chapter set-addition runs in a
// transaction on a single-connection pool, which gives the same "no duplicate
// ids" guarantee as MongoDB's $addToSet.
//
// # Usage
//
//	db, err := database.NewDatabase("./superbook.db")
//	defer db.Close(ctx)
//
//	book, err := db.FindBookBySourceName(ctx, "get-started")
//	if errors.Is(err, storage.ErrNotFound) {
//		// insert
//	}
package database
