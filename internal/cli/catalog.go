package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/superbook/internal/catalog"
	"github.com/mrlokans/superbook/internal/config"
)

// CatalogCommand validates a catalog and lists its books and chapters.
type CatalogCommand struct {
	Path string
	Out  io.Writer
}

func NewCatalogCommand() *CatalogCommand {
	return &CatalogCommand{
		Path: config.NewConfig(config.DefaultEnvFile).Catalog.Path,
		Out:  os.Stdout,
	}
}

func (cmd *CatalogCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)

	fs.StringVar(&cmd.Path, "catalog", cmd.Path, "Path to a catalog YAML file (default: built-in catalog)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s catalog [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Validate the catalog and list what publish would write.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *CatalogCommand) Run() error {
	cat, err := catalog.Load(cmd.Path)
	if err != nil {
		return err
	}
	if err := cat.Validate(); err != nil {
		return err
	}

	source := cmd.Path
	if source == "" {
		source = "built-in"
	}
	fmt.Fprintf(cmd.Out, "Catalog: %s (%d books, %d chapters)\n", source, len(cat.Books), cat.ChapterTotal())

	for i, book := range cat.Books {
		fmt.Fprintf(cmd.Out, "\n%d. %q [%s]", i+1, book.Name, book.SourceName)
		if book.Author != "" {
			fmt.Fprintf(cmd.Out, " by %s", book.Author)
		}
		fmt.Fprintln(cmd.Out)
		for j, ch := range book.Chapters {
			fmt.Fprintf(cmd.Out, "   %2d. %s (%s)\n", j+1, ch.Name, ch.Path)
		}
	}
	return nil
}
