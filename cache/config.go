package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"

	// DefaultPageTTL is how long a rendered list response is replayed
	DefaultPageTTL = 15 * time.Minute
)

// Config is the `cache` section
type Config struct {
	Driver          string        `mapstructure:"driver"`
	RedisInstance   string        `mapstructure:"redis_instance"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	MaxEntries      int           `mapstructure:"max_entries"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`

	// nil means enabled
	SingleFlight *bool `mapstructure:"single_flight"`
	FailOpen     bool  `mapstructure:"fail_open"`

	PageTTL       time.Duration `mapstructure:"page_ttl"`
	PageKeyPrefix string        `mapstructure:"page_key_prefix"`
}

func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.RedisInstance == "" {
		c.RedisInstance = "main"
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = defaultMaxEntries
	}
	if c.JanitorInterval == 0 {
		c.JanitorInterval = defaultJanitorInterval
	}
	if c.PageTTL == 0 {
		c.PageTTL = DefaultPageTTL
	}
	if c.PageKeyPrefix == "" {
		c.PageKeyPrefix = "page:"
	}
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverMemory, DriverRedis)),
		validation.Field(&c.RedisInstance, validation.When(c.Driver == DriverRedis, validation.Required)),
		validation.Field(&c.MaxEntries, validation.Min(1)),
		validation.Field(&c.PageTTL, validation.Min(time.Second)),
		validation.Field(&c.PageKeyPrefix, validation.Required),
	)
	if err != nil {
		return ErrConfigInvalid.Wrap(err)
	}
	return nil
}

// SingleFlightEnabled reports the effective single_flight setting
func (c Config) SingleFlightEnabled() bool {
	return c.SingleFlight == nil || *c.SingleFlight
}

// ReadThroughOptions maps the section onto accessor options
func (c Config) ReadThroughOptions() []Option {
	return []Option{
		WithSingleFlight(c.SingleFlightEnabled()),
		WithFailOpen(c.FailOpen),
	}
}

// ClientProvider resolves a named Redis client
type ClientProvider interface {
	Client(name string) redis.UniversalClient
}

// NewStore builds the data store for cfg.Driver
func NewStore(cfg Config, clients ClientProvider, opts ...MemoryOption) (StatsStore, error) {
	switch cfg.Driver {
	case DriverRedis:
		if clients == nil {
			return nil, ErrConfigInvalid.WithMsg("redis cache driver requires a redis manager")
		}
		client := clients.Client(cfg.RedisInstance)
		if client == nil {
			return nil, ErrConfigInvalid.WithMsgf("redis instance %q not configured", cfg.RedisInstance)
		}
		return NewRedisStore("redis:"+cfg.RedisInstance, client, cfg.KeyPrefix), nil
	case DriverMemory, "":
		base := []MemoryOption{WithMaxEntries(cfg.MaxEntries), WithJanitorInterval(cfg.JanitorInterval)}
		return NewMemoryStore("memory", append(base, opts...)...), nil
	default:
		return nil, ErrConfigInvalid.WithMsgf("unknown cache driver %q", cfg.Driver)
	}
}
