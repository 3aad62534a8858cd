// Package importers publishes a catalog of markdown books into the document store.
//
// # Architecture
//
//	catalog.Book → BookUpserter → for each chapter, in order:
//	    content.Reader → parsers.RewriteImageURLs → ChapterUpserter
//
// Every book runs in its own goroutine of an errgroup.Group that has no shared
// cancellation. Each goroutine writes only its own slot of Report.Books, so the
// report needs no locking. A chapter failure stops the rest of that book; the
// other books carry on.
//
// # Example Usage
//
//	books := services.NewBookService(store)
//	chapters := services.NewChapterService(store, store)
//	pipeline := importers.NewPipeline(books, chapters, content.NewFileReader(root), imageRoot)
//
//	report := pipeline.Run(ctx, cat)
//	store.Close(ctx) // safe: every pipeline has settled
//	if err := report.Err(); err != nil {
//		// partial failure
//	}
package importers
