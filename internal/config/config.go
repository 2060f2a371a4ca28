package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"disciplinedash/internal/dataprocessing"
	"disciplinedash/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Presenter PresenterConfig `yaml:"presenter" envconfig:"PRESENTER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"min=1024"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"required_if=EnableCORS true"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" validate:"min=512"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" validate:"min=512"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" validate:"gt=0,ltfield=PongWait"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" validate:"gt=0"`
}

// DataConfig describes the discipline statistics source
type DataConfig struct {
	// Source is a CSV file, or a directory whose newest CSV is used.
	Source           string        `yaml:"source" envconfig:"SOURCE" validate:"required"`
	OutputDir        string        `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	Watch            bool          `yaml:"watch" envconfig:"WATCH"`
	WatchDebounce    time.Duration `yaml:"watch_debounce" envconfig:"WATCH_DEBOUNCE" validate:"min=0"`
	LoadTimeout      time.Duration `yaml:"load_timeout" envconfig:"LOAD_TIMEOUT" validate:"gt=0"`
	MaxFileSize      int64         `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" validate:"min=0"`
	Strict           bool          `yaml:"strict" envconfig:"STRICT"`
	RejectDuplicates bool          `yaml:"reject_duplicates" envconfig:"REJECT_DUPLICATES"`
	YearColumn       string        `yaml:"year_column" envconfig:"YEAR_COLUMN" validate:"required"`
	GroupColumn      string        `yaml:"group_column" envconfig:"GROUP_COLUMN" validate:"required"`
	PercentColumn    string        `yaml:"percent_column" envconfig:"PERCENT_COLUMN" validate:"required"`
}

// AnalysisConfig selects what the derived views show by default
type AnalysisConfig struct {
	// TargetYear is the ranking and disparity year; empty means the latest
	// year present in the data.
	TargetYear   string   `yaml:"target_year" envconfig:"TARGET_YEAR" validate:"omitempty,label"`
	TrendYears   []string `yaml:"trend_years" envconfig:"TREND_YEARS" validate:"dive,label"`
	TrendGroups  []string `yaml:"trend_groups" envconfig:"TREND_GROUPS" validate:"dive,label"`
	GenderGroups []string `yaml:"gender_groups" envconfig:"GENDER_GROUPS" validate:"omitempty,len=2,dive,label"`
}

// PresenterConfig controls chart rendering and the narrative summary
type PresenterConfig struct {
	ChartWidth     int      `yaml:"chart_width" envconfig:"CHART_WIDTH" validate:"min=200,max=4096"`
	ChartHeight    int      `yaml:"chart_height" envconfig:"CHART_HEIGHT" validate:"min=150,max=4096"`
	BarColor       string   `yaml:"bar_color" envconfig:"BAR_COLOR" validate:"hexcolor"`
	PositiveColor  string   `yaml:"positive_color" envconfig:"POSITIVE_COLOR" validate:"hexcolor"`
	NegativeColor  string   `yaml:"negative_color" envconfig:"NEGATIVE_COLOR" validate:"hexcolor"`
	TrendColors    []string `yaml:"trend_colors" envconfig:"TREND_COLORS" validate:"dive,hexcolor"`
	HighlightCount int      `yaml:"highlight_count" envconfig:"HIGHLIGHT_COUNT" validate:"min=1,max=20"`
	TrendTitle     string   `yaml:"trend_title" envconfig:"TREND_TITLE"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment, then validates it.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override; no default tags are declared so
	// envconfig leaves the file and default values alone otherwise.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every section against its constraints
func (c *Config) Validate() error {
	return validation.New().Struct(c)
}

// Address returns the host:port the server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoaderOptions maps the data section onto loader options
func (c *Config) LoaderOptions() dataprocessing.LoaderOptions {
	return dataprocessing.LoaderOptions{
		YearColumn:       c.Data.YearColumn,
		GroupColumn:      c.Data.GroupColumn,
		PercentColumn:    c.Data.PercentColumn,
		Strict:           c.Data.Strict,
		RejectDuplicates: c.Data.RejectDuplicates,
	}
}

// getConfigFilePath returns the config file to overlay, or "" when none exists
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		DefaultConfigFile,
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		Data: DataConfig{
			Source:        DefaultSourceFile,
			OutputDir:     DefaultOutputDir,
			Watch:         true,
			WatchDebounce: DefaultWatchDebounce,
			LoadTimeout:   DefaultLoadTimeout,
			MaxFileSize:   validation.DefaultMaxSourceSize,
			Strict:        true,
			YearColumn:    dataprocessing.DefaultYearColumn,
			GroupColumn:   dataprocessing.DefaultGroupColumn,
			PercentColumn: dataprocessing.DefaultPercentColumn,
		},
		Analysis: AnalysisConfig{
			TrendYears:   []string{"2021-22", "2022-23", "2023-24"},
			TrendGroups:  []string{"All Students", "Afr. Amer./Black", "Hispanic/Latino", "White", "Asian", "Students w/disabilities"},
			GenderGroups: []string{"Male", "Female"},
		},
		Presenter: PresenterConfig{
			ChartWidth:     1024,
			ChartHeight:    576,
			BarColor:       "#4e79a7",
			PositiveColor:  "#e15759",
			NegativeColor:  "#59a14f",
			TrendColors:    []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7"},
			HighlightCount: 3,
			TrendTitle:     "Percent of Students Disciplined by Year",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "discipline-dashboard",
			TraceExporter: "none",
			EnableMetrics: true,
		},
	}
}
