package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/superbook/internal/content"
	"github.com/mrlokans/superbook/internal/database"
	"github.com/mrlokans/superbook/internal/database/mongostore"
	"github.com/mrlokans/superbook/internal/services"
	"github.com/mrlokans/superbook/internal/storage"
	"github.com/mrlokans/superbook/internal/storage/memory"
)

// =============================================================================
// Storage
// =============================================================================

// Store implementations
var _ storage.Store = (*database.Database)(nil)
var _ storage.Store = (*mongostore.Store)(nil)
var _ storage.Store = (*memory.Store)(nil)

// =============================================================================
// Upserters
// =============================================================================

var _ services.BookUpserter = (*services.BookService)(nil)
var _ services.ChapterUpserter = (*services.ChapterService)(nil)

// =============================================================================
// Content
// =============================================================================

var _ content.Reader = (*content.FileReader)(nil)
