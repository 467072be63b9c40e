package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Cache configuration
	CacheBackend    string `long:"cache-backend" env:"CACHE_BACKEND" default:"sqlite" choice:"sqlite" choice:"postgres" choice:"redis" choice:"memory" description:"Page cache backend"`
	CachePath       string `long:"cache-path" env:"CACHE_PATH" default:"./cache/pages.db" description:"SQLite cache file path"`
	CacheMaxAge     int    `long:"cache-max-age" env:"CACHE_MAX_AGE" default:"0" description:"Evict cached pages older than this many seconds (0 keeps them forever)"`
	JanitorInterval int    `long:"janitor-interval" env:"JANITOR_INTERVAL" default:"3600" description:"Cache eviction interval in seconds"`
	RedisAddr       string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the redis cache backend"`

	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"html_comb" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" description:"Database password"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"html_comb" description:"Database name"`

	// Application configuration
	SitesDir         string `long:"sites-dir" env:"SITES_DIR" default:"./sites" description:"Directory containing site configuration files"`
	Port             string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl          string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://feeds.example.com)"`
	APIAccessKey     string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	ProbeConcurrency int    `long:"probe-concurrency" env:"PROBE_CONCURRENCY" default:"1" description:"Maximum concurrent enclosure probes per feed"`
	RequestTimeout   int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"0" description:"Per-request generation timeout in seconds (0 disables)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"HTML Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	cfg := &Cfg{
		CacheBackend:     raw.CacheBackend,
		CachePath:        raw.CachePath,
		CacheMaxAge:      time.Duration(raw.CacheMaxAge) * time.Second,
		JanitorInterval:  time.Duration(raw.JanitorInterval) * time.Second,
		RedisAddr:        raw.RedisAddr,
		DBHost:           raw.DBHost,
		DBPort:           raw.DBPort,
		DBUser:           raw.DBUser,
		DBPassword:       raw.DBPassword,
		DBName:           raw.DBName,
		SitesDir:         raw.SitesDir,
		Port:             raw.Port,
		BaseUrl:          raw.BaseUrl,
		APIAccessKey:     raw.APIAccessKey,
		ProbeConcurrency: raw.ProbeConcurrency,
		RequestTimeout:   time.Duration(raw.RequestTimeout) * time.Second,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(raw *rawCfg) error {
	switch {
	case raw.CacheMaxAge < 0:
		return fmt.Errorf("cache-max-age must be non-negative, got %d", raw.CacheMaxAge)
	case raw.CacheMaxAge > 0 && raw.JanitorInterval <= 0:
		return fmt.Errorf("janitor-interval must be positive when cache-max-age is set, got %d", raw.JanitorInterval)
	case raw.ProbeConcurrency < 1:
		return fmt.Errorf("probe-concurrency must be at least 1, got %d", raw.ProbeConcurrency)
	case raw.RequestTimeout < 0:
		return fmt.Errorf("request-timeout must be non-negative, got %d", raw.RequestTimeout)
	case raw.CacheBackend == CacheBackendPostgres && raw.DBPassword == "":
		return fmt.Errorf("db-password is required for the postgres cache backend")
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
