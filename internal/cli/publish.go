package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/superbook/internal/config"
	"github.com/mrlokans/superbook/internal/entrypoint"
)

// PublishCommand publishes the catalog into the document store. Flags default
// to the values from the environment and .env.
type PublishCommand struct {
	Config  *config.Config
	Version string
	DryRun  bool
	Verbose bool
}

func NewPublishCommand(version string) *PublishCommand {
	return &PublishCommand{
		Config:  config.NewConfig(config.DefaultEnvFile),
		Version: version,
	}
}

func (cmd *PublishCommand) ParseFlags(args []string) error {
	cfg := cmd.Config
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)

	fs.StringVar(&cfg.Catalog.Path, "catalog", cfg.Catalog.Path, "Path to a catalog YAML file (default: built-in catalog)")
	fs.StringVar(&cfg.Catalog.ContentRoot, "content-root", cfg.Catalog.ContentRoot, "Directory that chapter paths are relative to")
	fs.StringVar(&cfg.Database.Driver, "driver", cfg.Database.Driver, "Storage driver: mongo, sqlite or memory")
	fs.StringVar(&cfg.Database.Path, "db", cfg.Database.Path, "Path to the sqlite database file (sqlite driver)")
	fs.IntVar(&cfg.Publish.Concurrency, "concurrency", cfg.Publish.Concurrency, "Maximum number of books published at once (0 = all)")
	fs.StringVar(&cfg.Publish.Schedule, "schedule", cfg.Publish.Schedule, "Cron schedule to re-publish on; empty publishes once")
	fs.StringVar(&cfg.Report.Dir, "report-dir", cfg.Report.Dir, "Directory for JSON run reports")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Publish into an in-memory store instead of the database")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s publish [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Publish the catalog's books, chapters and topics into the document store.\n")
		fmt.Fprintf(os.Stderr, "The connection string is read from MONGO_DB (environment or .env).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s publish -content-root ~/src/You-Dont-Know-JS\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s publish -driver sqlite -db ./superbook.db -report-dir ./reports\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s publish -dry-run -verbose\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s publish -schedule \"0 */6 * * *\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.DryRun {
		cfg.Database.Driver = config.DriverMemory
	}
	if cmd.Verbose {
		cfg.Log.Level = "debug"
	}
	return nil
}

func (cmd *PublishCommand) Run() error {
	return entrypoint.Run(cmd.Config, cmd.Version)
}
