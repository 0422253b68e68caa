package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"FarmTrade"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host        string `envconfig:"DB_HOST" default:"localhost"`
		Port        int    `envconfig:"DB_PORT" default:"5432"`
		User        string `envconfig:"DB_USER" default:"postgres"`
		Password    string `envconfig:"DB_PASSWORD" default:""`
		Name        string `envconfig:"DB_NAME" default:"farmtrade"`
		AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	}

	Auth struct {
		JWTSecret      string   `envconfig:"JWT_SECRET" required:"true"`
		JWTIssuer      string   `envconfig:"JWT_ISSUER"`
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Negotiation struct {
		DefaultExpiryHours  int           `envconfig:"NEGOTIATION_DEFAULT_EXPIRY_HOURS" default:"72"`
		MaxExpiryDays       int           `envconfig:"NEGOTIATION_MAX_EXPIRY_DAYS" default:"30"`
		MaxCounterOffers    int           `envconfig:"NEGOTIATION_MAX_COUNTER_OFFERS" default:"5"`
		MaxDiscountPercent  string        `envconfig:"NEGOTIATION_MAX_DISCOUNT_PERCENT" default:"50"`
		MinPriceDiffPercent string        `envconfig:"NEGOTIATION_MIN_PRICE_DIFF_PERCENT" default:"1"`
		MaxNotesLength      int           `envconfig:"NEGOTIATION_MAX_NOTES_LENGTH" default:"1000"`
		ExpiringSoonWindow  time.Duration `envconfig:"NEGOTIATION_EXPIRING_SOON_WINDOW" default:"24h"`
	}

	Sweeper struct {
		Enabled  bool          `envconfig:"SWEEPER_ENABLED" default:"true"`
		Interval time.Duration `envconfig:"SWEEPER_INTERVAL" default:"5m"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Percentages parses the discount bounds, which are kept as strings so they
// stay exact.
func (c *Config) Percentages() (maxDiscount, minDiff decimal.Decimal, err error) {
	maxDiscount, err = decimal.NewFromString(c.Negotiation.MaxDiscountPercent)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parsing NEGOTIATION_MAX_DISCOUNT_PERCENT: %w", err)
	}

	minDiff, err = decimal.NewFromString(c.Negotiation.MinPriceDiffPercent)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parsing NEGOTIATION_MIN_PRICE_DIFF_PERCENT: %w", err)
	}

	return maxDiscount, minDiff, nil
}

func (c *Config) validate() error {
	n := c.Negotiation

	switch {
	case c.Auth.JWTSecret == "":
		return fmt.Errorf("JWT_SECRET is required")
	case n.DefaultExpiryHours <= 0:
		return fmt.Errorf("NEGOTIATION_DEFAULT_EXPIRY_HOURS must be positive")
	case n.MaxExpiryDays <= 0:
		return fmt.Errorf("NEGOTIATION_MAX_EXPIRY_DAYS must be positive")
	case n.MaxCounterOffers < 0:
		return fmt.Errorf("NEGOTIATION_MAX_COUNTER_OFFERS cannot be negative")
	case n.MaxNotesLength < 0:
		return fmt.Errorf("NEGOTIATION_MAX_NOTES_LENGTH cannot be negative")
	case c.Sweeper.Enabled && c.Sweeper.Interval <= 0:
		return fmt.Errorf("SWEEPER_INTERVAL must be positive")
	}

	maxDiscount, minDiff, err := c.Percentages()
	if err != nil {
		return err
	}

	if maxDiscount.IsNegative() || maxDiscount.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("NEGOTIATION_MAX_DISCOUNT_PERCENT must be between 0 and 100")
	}

	if minDiff.IsNegative() {
		return fmt.Errorf("NEGOTIATION_MIN_PRICE_DIFF_PERCENT cannot be negative")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
