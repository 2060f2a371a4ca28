package config

import "time"

// Application constants
const (
	AppName = "Discipline Metrics Dashboard"

	EnvPrefix         = "DSM"
	ConfigFileEnv     = "DSM_CONFIG_FILE"
	DefaultConfigFile = "config.yaml"

	DefaultSourceFile = "data/discipline.csv"
	DefaultOutputDir  = "data/reports"
	DefaultLogFile    = "logs/app.log"

	DefaultWatchDebounce = 500 * time.Millisecond
	DefaultLoadTimeout   = 30 * time.Second
)
