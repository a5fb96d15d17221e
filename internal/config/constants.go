package config

// Default locations used when neither the config file nor the environment set them
const (
	// DefaultDatabasePath is the default path for the document records database
	DefaultDatabasePath = "./docshelf.db"

	// DefaultOutputDirectory is where materialized documents are written
	DefaultOutputDirectory = "./library"

	// DefaultConfigName is looked up in the working directory when no -config flag is given
	DefaultConfigName = "config"

	EnvPrefix = "DOCSHELF"
)
