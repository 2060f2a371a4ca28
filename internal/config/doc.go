// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Configuration is built from the following sources, later sources winning:
//
//  1. Default values (Default)
//  2. A YAML file named by DSM_CONFIG_FILE, else config.yaml or
//     configs/config.yaml when present
//  3. Environment variables
//
// # Environment Variables
//
// Environment variables are prefixed with DSM and follow the struct
// nesting:
//
//	DSM_SERVER_PORT=8080
//	DSM_DATA_SOURCE=/srv/data/discipline.csv
//	DSM_DATA_WATCH=true
//	DSM_ANALYSIS_TARGET_YEAR=2023-24
//	DSM_ANALYSIS_TREND_GROUPS="All Students,Asian,White"
//	DSM_LOGGING_LEVEL=debug
//
// # Validation
//
// The merged configuration is validated with struct tags at load time. An
// invalid configuration is rejected as a whole; nothing is corrected
// silently.
package config
