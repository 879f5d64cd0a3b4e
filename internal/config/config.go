package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperengineering/plankdash/internal/validation"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Scoring ScoringConfig `yaml:"scoring"`
	Server  ServerConfig  `yaml:"server"`
	Worker  WorkerConfig  `yaml:"worker"`
	Log     LogConfig     `yaml:"log"`
	Publish PublishConfig `yaml:"publish"`
	Site    SiteConfig    `yaml:"site"`
}

// SourceConfig locates the raw tracking files.
type SourceConfig struct {
	// Dir, when set, is tried before Candidates.
	Dir        string   `yaml:"dir"`
	Candidates []string `yaml:"candidates"`
	LogFile    string   `yaml:"log_file"`
	StatusFile string   `yaml:"status_file"`
	SRSFile    string   `yaml:"srs_file"`
	HealthFile string   `yaml:"health_file"`
	SleepFile  string   `yaml:"sleep_file"`
	PlayFile   string   `yaml:"play_file"`
}

// OutputConfig contains snapshot output settings.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// ScoringConfig holds the tunable constants of the scoring models.
type ScoringConfig struct {
	DefaultSteepness      float64  `yaml:"default_steepness"`
	WindowDays            int      `yaml:"window_days"`
	SleepTargetHours      float64  `yaml:"sleep_target_hours"`
	ActivityTargetMinutes float64  `yaml:"activity_target_minutes"`
	StrengthHalfLifeDays  float64  `yaml:"strength_half_life_days"`
	StrengthPerPlank      float64  `yaml:"strength_per_plank"`
	StrengthMax           float64  `yaml:"strength_max"`
	RecentPlanks          int      `yaml:"recent_planks"`
	Disabled              []string `yaml:"disabled"`
}

// ServerConfig contains dashboard HTTP server settings.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	Root            string   `yaml:"root"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	// RegenerateInterval of zero disables periodic regeneration.
	RegenerateInterval Duration `yaml:"regenerate_interval"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PublishConfig contains S3-compatible snapshot publishing settings.
// An empty Bucket keeps publishing local-only.
type PublishConfig struct {
	Bucket    string   `yaml:"bucket"`
	Endpoint  string   `yaml:"endpoint"`
	Region    string   `yaml:"region"`
	AccessKey string   `yaml:"-"` // env-only, never in YAML
	SecretKey string   `yaml:"-"` // env-only, never in YAML
	UseSSL    *bool    `yaml:"use_ssl"`
	ObjectKey string   `yaml:"object_key"`
	URLExpiry Duration `yaml:"url_expiry"`
}

// SiteConfig contains static site build settings.
type SiteConfig struct {
	Root    string `yaml:"root"`
	DistDir string `yaml:"dist_dir"`
}

// ListenAddr returns the host:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// KnownProducers lists the scoring block names that may appear in
// scoring.disabled.
var KnownProducers = []string{"srs", "health", "sleep", "play", "strength"}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("PLANK_CONFIG_PATH", "config/plankdash.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a validated Config holding only default values.
func Default() *Config {
	return newDefaults()
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Source: SourceConfig{
			Candidates: []string{"../openclaw-arya", "../../openclaw-arya"},
			LogFile:    "plank-log.md",
			StatusFile: "plank-status.json",
			SRSFile:    "srs-items.json",
			HealthFile: "health-checkups.json",
			SleepFile:  "sleep-log.json",
			PlayFile:   "play-log.json",
		},
		Output: OutputConfig{
			Path: "public/plank-data.json",
		},
		Scoring: ScoringConfig{
			DefaultSteepness:      6,
			WindowDays:            7,
			SleepTargetHours:      8,
			ActivityTargetMinutes: 150,
			StrengthHalfLifeDays:  14,
			StrengthPerPlank:      15,
			StrengthMax:           100,
			RecentPlanks:          5,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            5173,
			Root:            ".",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Worker: WorkerConfig{
			RegenerateInterval: Duration(1 * time.Hour),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Publish: PublishConfig{
			ObjectKey: "plank-data.json",
			URLExpiry: Duration(15 * time.Minute),
		},
		Site: SiteConfig{
			Root:    ".",
			DistDir: "dist",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Source
	if v := os.Getenv("PLANK_SOURCE_DIR"); v != "" {
		cfg.Source.Dir = v
	}

	// Output
	if v := os.Getenv("PLANK_OUTPUT_PATH"); v != "" {
		cfg.Output.Path = v
	}

	// Server (HOST and PORT kept for the old dev server scripts)
	if v := firstEnv("PLANK_HOST", "HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := firstEnv("PLANK_PORT", "PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PLANK_SERVER_ROOT"); v != "" {
		cfg.Server.Root = v
	}

	// Worker
	if v := os.Getenv("PLANK_REGENERATE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.RegenerateInterval = Duration(d)
		}
	}

	// Log
	if v := os.Getenv("PLANK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PLANK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// Publish
	if v := os.Getenv("PLANK_S3_BUCKET"); v != "" {
		cfg.Publish.Bucket = v
	}
	if v := os.Getenv("PLANK_S3_ENDPOINT"); v != "" {
		cfg.Publish.Endpoint = v
	}
	if v := os.Getenv("PLANK_S3_REGION"); v != "" {
		cfg.Publish.Region = v
	}
	if v := os.Getenv("PLANK_S3_ACCESS_KEY"); v != "" {
		cfg.Publish.AccessKey = v
	}
	if v := os.Getenv("PLANK_S3_SECRET_KEY"); v != "" {
		cfg.Publish.SecretKey = v
	}
	if v := os.Getenv("PLANK_S3_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Publish.UseSSL = &useSSL
	}
	if v := os.Getenv("PLANK_S3_URL_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Publish.URLExpiry = Duration(d)
		}
	}
}

// validate checks that configuration values are usable.
func (c *Config) validate() error {
	var v validation.Collector

	v.Add(validation.ValidateRequired("output.path", c.Output.Path))
	v.Add(validation.ValidateRequired("source.log_file", c.Source.LogFile))
	v.Add(validation.ValidateRequired("source.status_file", c.Source.StatusFile))

	v.Add(validation.ValidatePositive("scoring.default_steepness", c.Scoring.DefaultSteepness))
	v.Add(validation.ValidatePositive("scoring.window_days", float64(c.Scoring.WindowDays)))
	v.Add(validation.ValidatePositive("scoring.sleep_target_hours", c.Scoring.SleepTargetHours))
	v.Add(validation.ValidatePositive("scoring.activity_target_minutes", c.Scoring.ActivityTargetMinutes))
	v.Add(validation.ValidatePositive("scoring.strength_half_life_days", c.Scoring.StrengthHalfLifeDays))
	v.Add(validation.ValidateNonNegative("scoring.strength_per_plank", c.Scoring.StrengthPerPlank))
	v.Add(validation.ValidatePositive("scoring.strength_max", c.Scoring.StrengthMax))
	v.Add(validation.ValidateNonNegative("scoring.recent_planks", float64(c.Scoring.RecentPlanks)))
	for _, name := range c.Scoring.Disabled {
		v.Add(validation.ValidateEnum("scoring.disabled", name, KnownProducers))
	}

	v.Add(validation.ValidateRange("server.port", float64(c.Server.Port), 1, 65535))
	v.Add(validation.ValidateNonNegative("worker.regenerate_interval", float64(c.Worker.RegenerateInterval)))
	v.Add(validation.ValidateEnum("log.level", strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "error"}))
	v.Add(validation.ValidateEnum("log.format", c.Log.Format, []string{"json", "text"}))

	if c.Publish.Bucket != "" {
		v.Add(validation.ValidateRequired("publish.endpoint", c.Publish.Endpoint))
		v.Add(validation.ValidateRequired("publish.object_key", c.Publish.ObjectKey))
	}

	return v.Err()
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
