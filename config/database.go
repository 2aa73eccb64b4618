package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"autoapply"`
	Password string `env:"PASSWORD" envDefault:"autoapply"`
	Name     string `env:"NAME"     envDefault:"autoapply"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically
	// applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the applied-vacancy cache and
// OAuth state storage. The poller works without Redis; disabling it only
// costs the duplicate-check fast path.
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// AppliedTTL is how long applied-vacancy cache entries live.
	AppliedTTL time.Duration `env:"APPLIED_TTL" envDefault:"24h"`
}
