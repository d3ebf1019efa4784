// Package config assembles the catalog server configuration.
//
// Values are layered, later layers winning: built-in defaults, the optional
// YAML file named by -config, CATALOG_* environment variables (optionally
// seeded from a .env file), and finally flags set on the command line.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"sgci.io/catalog/internal/logging"
	"sgci.io/catalog/internal/service"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "CATALOG_"

// Defaults.
const (
	DefaultListenAddr      = ":8080"
	DefaultDatabasePath    = "./catalog.db"
	DefaultEnvFile         = ".env"
	DefaultRateLimitRPS    = 100.0
	DefaultRateLimitBurst  = 200
	DefaultShutdownTimeout = 15 * time.Second
)

// Config holds the server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080").
	ListenAddr string

	// DatabasePath is the path to the SQLite database file.
	DatabasePath string

	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string

	// LogFormat is the log format (json, console).
	LogFormat string

	// AllowOrigins lists the allowed CORS origins; empty disables CORS.
	AllowOrigins []string

	// StoreTimeout bounds each store lookup.
	StoreTimeout time.Duration

	// RecordPolicy is strict or lenient.
	RecordPolicy string

	// RateLimitRPS is the per-IP request rate; 0 disables rate limiting.
	RateLimitRPS float64

	// RateLimitBurst is the per-IP burst size.
	RateLimitBurst int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// InstanceID identifies this server process; generated when empty.
	InstanceID string

	configFile string
	envFile    string
}

// fileConfig mirrors Config for the YAML layer. Numeric settings are pointers
// so an explicit zero in the file is told apart from an absent key.
type fileConfig struct {
	ListenAddr      string         `yaml:"listen"`
	DatabasePath    string         `yaml:"database"`
	LogLevel        string         `yaml:"logLevel"`
	LogFormat       string         `yaml:"logFormat"`
	AllowOrigins    []string       `yaml:"corsOrigins"`
	StoreTimeout    *time.Duration `yaml:"storeTimeout"`
	RecordPolicy    string         `yaml:"recordPolicy"`
	RateLimitRPS    *float64       `yaml:"rateLimitRPS"`
	RateLimitBurst  *int           `yaml:"rateLimitBurst"`
	ShutdownTimeout *time.Duration `yaml:"shutdownTimeout"`
	InstanceID      string         `yaml:"instanceID"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:      DefaultListenAddr,
		DatabasePath:    DefaultDatabasePath,
		LogLevel:        "info",
		LogFormat:       string(logging.FormatJSON),
		StoreTimeout:    service.DefaultStoreTimeout,
		RecordPolicy:    string(service.RecordPolicyStrict),
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// ConfigFile returns the path of the YAML file that was applied, if any.
func (c *Config) ConfigFile() string {
	return c.configFile
}

// Load parses args and assembles the layered configuration. The result is
// validated.
func Load(args []string, output io.Writer) (*Config, error) {
	flags := flag.NewFlagSet("catalog-server", flag.ContinueOnError)
	if output != nil {
		flags.SetOutput(output)
	}

	def := Default()
	f := &Config{}
	var origins string
	flags.StringVar(&f.configFile, "config", "", "Path to YAML config file")
	flags.StringVar(&f.envFile, "env-file", DefaultEnvFile, "Path to .env file with CATALOG_* variables")
	flags.StringVar(&f.ListenAddr, "listen", def.ListenAddr, "Address to listen on")
	flags.StringVar(&f.DatabasePath, "db", def.DatabasePath, "Path to SQLite database file")
	flags.StringVar(&f.LogLevel, "log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&f.LogFormat, "log-format", def.LogFormat, "Log format (json, console)")
	flags.StringVar(&origins, "cors-origins", "", "Comma-separated list of allowed CORS origins (* for all)")
	flags.DurationVar(&f.StoreTimeout, "store-timeout", def.StoreTimeout, "Timeout for a single store lookup")
	flags.StringVar(&f.RecordPolicy, "record-policy", def.RecordPolicy, "Handling of unmappable records (strict, lenient)")
	flags.Float64Var(&f.RateLimitRPS, "rate-limit-rps", def.RateLimitRPS, "Requests per second per client IP (0 disables)")
	flags.IntVar(&f.RateLimitBurst, "rate-limit-burst", def.RateLimitBurst, "Burst size per client IP")
	flags.DurationVar(&f.ShutdownTimeout, "shutdown-timeout", def.ShutdownTimeout, "Graceful shutdown timeout")
	flags.StringVar(&f.InstanceID, "instance-id", "", "Server instance UUID (auto-generated if not provided)")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	f.AllowOrigins = splitList(origins)

	set := make(map[string]bool)
	flags.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	c := def
	c.envFile = f.envFile

	if f.configFile != "" {
		if err := c.loadFile(f.configFile); err != nil {
			return nil, err
		}
		c.configFile = f.configFile
	}

	if err := loadEnvFile(f.envFile, set["env-file"]); err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	c.applyFlags(f, set)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadFile overlays values present in a YAML config file.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	overlayString(&c.ListenAddr, file.ListenAddr)
	overlayString(&c.DatabasePath, file.DatabasePath)
	overlayString(&c.LogLevel, file.LogLevel)
	overlayString(&c.LogFormat, file.LogFormat)
	overlayString(&c.RecordPolicy, file.RecordPolicy)
	overlayString(&c.InstanceID, file.InstanceID)
	if len(file.AllowOrigins) > 0 {
		c.AllowOrigins = file.AllowOrigins
	}
	overlay(&c.StoreTimeout, file.StoreTimeout)
	overlay(&c.ShutdownTimeout, file.ShutdownTimeout)
	overlay(&c.RateLimitRPS, file.RateLimitRPS)
	overlay(&c.RateLimitBurst, file.RateLimitBurst)
	return nil
}

// loadEnvFile seeds the process environment from a .env file. Variables
// already present in the environment are left alone. A missing default file
// is not an error; a missing file named on the command line is.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays CATALOG_* environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	env := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := env("LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}
	if v, ok := env("DB_PATH"); ok {
		c.DatabasePath = v
	}
	if v, ok := env("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := env("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := env("CORS_ORIGINS"); ok {
		c.AllowOrigins = splitList(v)
	}
	if v, ok := env("RECORD_POLICY"); ok {
		c.RecordPolicy = v
	}
	if v, ok := env("INSTANCE_ID"); ok {
		c.InstanceID = v
	}
	if v, ok := env("STORE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSTORE_TIMEOUT: %w", EnvPrefix, err)
		}
		c.StoreTimeout = d
	}
	if v, ok := env("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSHUTDOWN_TIMEOUT: %w", EnvPrefix, err)
		}
		c.ShutdownTimeout = d
	}
	if v, ok := env("RATE_LIMIT_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_RPS: %w", EnvPrefix, err)
		}
		c.RateLimitRPS = rps
	}
	if v, ok := env("RATE_LIMIT_BURST"); ok {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_BURST: %w", EnvPrefix, err)
		}
		c.RateLimitBurst = burst
	}
	return nil
}

// applyFlags copies the flags that were explicitly set.
func (c *Config) applyFlags(f *Config, set map[string]bool) {
	if set["listen"] {
		c.ListenAddr = f.ListenAddr
	}
	if set["db"] {
		c.DatabasePath = f.DatabasePath
	}
	if set["log-level"] {
		c.LogLevel = f.LogLevel
	}
	if set["log-format"] {
		c.LogFormat = f.LogFormat
	}
	if set["cors-origins"] {
		c.AllowOrigins = f.AllowOrigins
	}
	if set["store-timeout"] {
		c.StoreTimeout = f.StoreTimeout
	}
	if set["record-policy"] {
		c.RecordPolicy = f.RecordPolicy
	}
	if set["rate-limit-rps"] {
		c.RateLimitRPS = f.RateLimitRPS
	}
	if set["rate-limit-burst"] {
		c.RateLimitBurst = f.RateLimitBurst
	}
	if set["shutdown-timeout"] {
		c.ShutdownTimeout = f.ShutdownTimeout
	}
	if set["instance-id"] {
		c.InstanceID = f.InstanceID
	}
}

// Validate checks the configuration and fills in the instance ID.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if _, err := service.ParseRecordPolicy(c.RecordPolicy); err != nil {
		return err
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("store timeout must be positive (got %s)", c.StoreTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive (got %s)", c.ShutdownTimeout)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must not be negative (got %v)", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1 (got %d)", c.RateLimitBurst)
	}

	if c.InstanceID == "" {
		c.InstanceID = uuid.New().String()
	}
	if _, err := uuid.Parse(c.InstanceID); err != nil {
		return fmt.Errorf("invalid instance ID format: %w", err)
	}

	return nil
}

// Policy returns the parsed record policy. Call after Validate.
func (c *Config) Policy() service.RecordPolicy {
	p, _ := service.ParseRecordPolicy(c.RecordPolicy)
	return p
}

// EnvOr returns the value of the CATALOG_-prefixed variable name, or def
// when it is unset. Utility subcommands use it for their flag defaults.
func EnvOr(name, def string) string {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		return v
	}
	return def
}

func overlay[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
