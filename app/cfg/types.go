package cfg

import "time"

const (
	CacheBackendSQLite   = "sqlite"
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
	CacheBackendMemory   = "memory"
)

type Cfg struct {
	// Cache configuration
	CacheBackend    string
	CachePath       string
	CacheMaxAge     time.Duration
	JanitorInterval time.Duration
	RedisAddr       string

	// Database configuration, used by the postgres backend
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	SitesDir         string
	Port             string
	BaseUrl          string
	APIAccessKey     string
	ProbeConcurrency int
	RequestTimeout   time.Duration

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
