package config

// Default locations and values for the publisher.
const (
	// DefaultDatabasePath is the sqlite file used by the "sqlite" driver
	DefaultDatabasePath = "./superbook.db"

	// DefaultDatabaseName is the MongoDB database holding books, chapters and topics
	DefaultDatabaseName = "superbook"

	// DefaultImageBaseURL is the root that relative chapter images are anchored at.
	// The book source name is appended to it.
	DefaultImageBaseURL = "https://raw.githubusercontent.com/getify/You-Dont-Know-JS/2nd-ed"

	// DefaultEnvFile is loaded before reading the environment, if it exists
	DefaultEnvFile = ".env"
)

// Storage drivers understood by the entrypoint.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)
