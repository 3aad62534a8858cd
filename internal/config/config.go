package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Catalog
		Publish
		Report
		Log
	}

	Database struct {
		Driver         string // mongo, sqlite or memory
		URI            string // MongoDB connection string (MONGO_DB)
		Name           string // MongoDB database name
		Path           string // sqlite file
		ConnectTimeout time.Duration
	}
	Catalog struct {
		Path        string // YAML catalog; empty means the embedded default
		ContentRoot string // Base directory for relative chapter paths
	}
	Publish struct {
		ImageBaseURL string
		Concurrency  int    // Max concurrent book pipelines, 0 = unlimited
		Schedule     string // Cron format; empty = run once
	}
	Report struct {
		Dir string // Directory for JSON run reports; empty disables them
	}
	Log struct {
		Level  string
		Format string // console or json
	}
)

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("MONGO_DB is required for the %q driver", DriverMongo)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DATABASE_PATH is required for the %q driver", DriverSQLite)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Publish.Concurrency < 0 {
		return fmt.Errorf("publish concurrency must not be negative, got %d", c.Publish.Concurrency)
	}
	return nil
}

// NewConfig reads the configuration from the environment, loading envFile first
// when it exists. Variables already present in the environment win over the file.
func NewConfig(envFile string) *Config {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("mongo_db", "")
	v.SetDefault("database_driver", DriverMongo)
	v.SetDefault("database_name", DefaultDatabaseName)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("connect_timeout", "10s")

	v.SetDefault("catalog_path", "")
	v.SetDefault("content_root", ".")

	v.SetDefault("image_base_url", DefaultImageBaseURL)
	v.SetDefault("publish_concurrency", 0)
	v.SetDefault("publish_schedule", "")

	v.SetDefault("report_dir", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	return &Config{
		Database: Database{
			Driver:         v.GetString("DATABASE_DRIVER"),
			URI:            v.GetString("MONGO_DB"),
			Name:           v.GetString("DATABASE_NAME"),
			Path:           v.GetString("DATABASE_PATH"),
			ConnectTimeout: v.GetDuration("CONNECT_TIMEOUT"),
		},
		Catalog: Catalog{
			Path:        v.GetString("CATALOG_PATH"),
			ContentRoot: v.GetString("CONTENT_ROOT"),
		},
		Publish: Publish{
			ImageBaseURL: v.GetString("IMAGE_BASE_URL"),
			Concurrency:  v.GetInt("PUBLISH_CONCURRENCY"),
			Schedule:     v.GetString("PUBLISH_SCHEDULE"),
		},
		Report: Report{
			Dir: v.GetString("REPORT_DIR"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
