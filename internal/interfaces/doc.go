// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Storage
//
//   - storage.BookStore: natural-key lookup and writes for books (internal/storage/client.go)
//   - storage.ChapterStore: chapters and their content topics
//   - storage.Store: both, plus Close
//
// Implemented by database.Database (sqlite via gorm), mongostore.Store (MongoDB)
// and memory.Store (dry runs and tests).
//
// ## Upserters
//
//   - services.BookUpserter: find-or-create a book by source name
//   - services.ChapterUpserter: find-or-create a chapter by name and link it to a book
//
// ## Content
//
//   - content.Reader: chapter markdown by path
//
// # Adding a New Storage Backend
//
//  1. Create a package under internal/database/ implementing storage.Store.
//     Lookups that find nothing must return storage.ErrNotFound, and
//     AddChapterToBook must be a set-add.
//
//  2. Add a driver constant in internal/config and a case in entrypoint.OpenStore.
//
//  3. Add a compile-time check:
//
//     var _ storage.Store = (*postgres.Store)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
