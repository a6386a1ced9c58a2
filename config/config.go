package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds every setting of the service, read from the environment.
type Config struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	DBPingTimeout time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
	AutoMigrate   bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	JWTSecretKey string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	TokenTTL     time.Duration `envconfig:"TOKEN_TTL" default:"72h"`

	ServerPort  int      `envconfig:"SERVER_PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	// TimeZone decides what "today" means for bookings and tournaments.
	TimeZone string `envconfig:"APP_TIMEZONE" default:"Europe/Madrid"`

	MembershipMonthlyFee string `envconfig:"MEMBERSHIP_MONTHLY_FEE" default:"11.99"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RateLimitCapacity int           `envconfig:"RATE_LIMIT_CAPACITY" default:"20"`
	RateLimitRefill   float64       `envconfig:"RATE_LIMIT_REFILL_PER_SEC" default:"5"`
	AvailabilityTTL   time.Duration `envconfig:"AVAILABILITY_CACHE_TTL" default:"2m"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"sports.events"`

	R2AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `envconfig:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `envconfig:"R2_PUBLIC_BASE_URL"`
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	// .env is optional; only local development ships one.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	fee, err := decimal.NewFromString(c.MembershipMonthlyFee)
	if err != nil || !fee.IsPositive() {
		return fmt.Errorf("MEMBERSHIP_MONTHLY_FEE must be a positive amount, got %q", c.MembershipMonthlyFee)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return nil
}

// Location returns the configured time zone. validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// MembershipFee returns the monthly fee as a decimal.
func (c *Config) MembershipFee() decimal.Decimal {
	return decimal.RequireFromString(c.MembershipMonthlyFee)
}

// R2Enabled reports whether all storage credentials are present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}
