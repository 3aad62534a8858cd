package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/superbook/internal/config"
	"github.com/mrlokans/superbook/internal/content"
	"github.com/mrlokans/superbook/internal/parsers"
)

// RewriteCommand prints a chapter with its relative images anchored at the
// book's image base. Nothing is written to storage.
type RewriteCommand struct {
	File       string
	SourceName string
	ImageRoot  string
	Out        io.Writer
}

func NewRewriteCommand() *RewriteCommand {
	return &RewriteCommand{
		ImageRoot: config.NewConfig(config.DefaultEnvFile).Publish.ImageBaseURL,
		Out:       os.Stdout,
	}
}

func (cmd *RewriteCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("rewrite", flag.ContinueOnError)

	fs.StringVar(&cmd.File, "file", "", "Markdown chapter to rewrite (required)")
	fs.StringVar(&cmd.SourceName, "source", "", "Source name of the book the chapter belongs to (required)")
	fs.StringVar(&cmd.ImageRoot, "image-root", cmd.ImageRoot, "URL that the source name is appended to")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s rewrite -file <path> -source <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print a chapter with relative <img src> URLs made absolute.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s rewrite -file get-started/ch1.md -source get-started\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.File == "" || cmd.SourceName == "" {
		fs.Usage()
		return fmt.Errorf("file and source are required")
	}
	return nil
}

func (cmd *RewriteCommand) Run() error {
	reader := content.NewFileReader(filepath.Dir(cmd.File))
	text, err := reader.Read(context.Background(), filepath.Base(cmd.File))
	if err != nil {
		return err
	}

	base := parsers.ImageBase(cmd.ImageRoot, cmd.SourceName)
	fmt.Fprintln(cmd.Out, parsers.RewriteImageURLs(text, base))

	sources := parsers.RelativeImageSources(text)
	fmt.Fprintf(cmd.Out, "\n=== Rewritten images (%d) ===\n", len(sources))
	for _, src := range sources {
		fmt.Fprintf(cmd.Out, "%s -> %s/%s\n", src, base, src)
	}
	return nil
}
