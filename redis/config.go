// Package redis manages the named go-redis clients used by the cache.
package redis

import (
	"fmt"
	"time"
)

const (
	ModeStandalone = "standalone"
	ModeCluster    = "cluster"
)

// Config describes one Redis instance under `redis.<name>`
type Config struct {
	Mode string `mapstructure:"mode"`

	// Addr is shorthand for a single-element Addrs
	Addr  string   `mapstructure:"addr"`
	Addrs []string `mapstructure:"addrs"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"` // standalone only

	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeStandalone
	}
	if c.Addr != "" && len(c.Addrs) == 0 {
		c.Addrs = []string{c.Addr}
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeStandalone && c.Mode != ModeCluster {
		return fmt.Errorf("invalid mode: %s (must be standalone or cluster)", c.Mode)
	}
	if len(c.Addrs) == 0 {
		return fmt.Errorf("addrs cannot be empty")
	}
	if c.Mode == ModeStandalone && (c.DB < 0 || c.DB > 15) {
		return fmt.Errorf("db must be between 0 and 15, got: %d", c.DB)
	}
	if c.PoolSize < 0 || c.MinIdleConns < 0 {
		return fmt.Errorf("pool sizes must be >= 0")
	}
	return nil
}
