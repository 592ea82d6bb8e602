package property

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// AllPropertiesKey is the cache key holding the whole listing
	AllPropertiesKey = "all_properties"
	// AllPropertiesTTL is how long the listing stays cached
	AllPropertiesTTL = 3600 * time.Second
)

// Config is the `property` section
type Config struct {
	CacheKey string        `mapstructure:"cache_key"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// database instance holding the properties table
	Database      string `mapstructure:"database"`
	SeedBatchSize int    `mapstructure:"seed_batch_size"`
}

func DefaultConfig() Config {
	return Config{
		CacheKey:      AllPropertiesKey,
		CacheTTL:      AllPropertiesTTL,
		Database:      "main",
		SeedBatchSize: 100,
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.CacheKey == "" {
		c.CacheKey = def.CacheKey
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.SeedBatchSize == 0 {
		c.SeedBatchSize = def.SeedBatchSize
	}
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.CacheKey, validation.Required),
		validation.Field(&c.CacheTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.SeedBatchSize, validation.Min(1)),
	)
	if err != nil {
		return ErrConfigInvalid.Wrap(err)
	}
	return nil
}
