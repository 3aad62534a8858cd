// Package catalog describes which books are published and where their chapter
// files live.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/mrlokans/superbook/internal/entities"
)

//go:embed default.yaml
var defaultCatalog []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid catalog")

type Chapter struct {
	Path string `mapstructure:"path" json:"path"`
	Name string `mapstructure:"name" json:"name"`
}

type Book struct {
	Name       string `mapstructure:"name" json:"name"`
	SourceName string `mapstructure:"sourceName" json:"source_name"`
	Author     string `mapstructure:"author" json:"author"`
	// ImageBase overrides the image URL root for this book
	ImageBase string    `mapstructure:"imageBase" json:"image_base,omitempty"`
	Chapters  []Chapter `mapstructure:"chapters" json:"chapters"`
}

// ChapterCount is the number of chapters, which is also the topic count of the book.
func (b Book) ChapterCount() int {
	return len(b.Chapters)
}

// Descriptor returns the fields the book document is built from.
func (b Book) Descriptor() entities.BookDescriptor {
	return entities.BookDescriptor{
		Name:         b.Name,
		SourceName:   b.SourceName,
		Author:       b.Author,
		ChapterCount: b.ChapterCount(),
	}
}

type Catalog struct {
	Books []Book `mapstructure:"books" json:"books"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultCatalog)); err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}
	return decode(v)
}

// Load reads a catalog file. The format follows the file extension
// (yaml, json or toml).
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Catalog, error) {
	var c Catalog
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every book has a unique source name and that every
// chapter names a file and a title.
func (c *Catalog) Validate() error {
	if len(c.Books) == 0 {
		return fmt.Errorf("%w: no books", ErrInvalid)
	}

	seen := make(map[string]bool, len(c.Books))
	for i, b := range c.Books {
		if b.SourceName == "" {
			return fmt.Errorf("%w: book %d (%q) has no source name", ErrInvalid, i, b.Name)
		}
		if seen[b.SourceName] {
			return fmt.Errorf("%w: duplicate source name %q", ErrInvalid, b.SourceName)
		}
		seen[b.SourceName] = true

		for j, ch := range b.Chapters {
			if ch.Path == "" || ch.Name == "" {
				return fmt.Errorf("%w: book %q chapter %d needs both path and name", ErrInvalid, b.SourceName, j)
			}
		}
	}
	return nil
}

// ChapterTotal is the number of chapters across all books.
func (c *Catalog) ChapterTotal() int {
	total := 0
	for _, b := range c.Books {
		total += b.ChapterCount()
	}
	return total
}
