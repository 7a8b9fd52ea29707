package redis

import (
	"time"

	"github.com/Alijeyrad/mindbook_backend/config"
)

// Config is the client side of the Redis connection. Sessions and the rate
// limiter share one pool.
type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromCentralConfig fills unset numbers from DefaultConfig.
func FromCentralConfig(c config.RedisConfig) Config {
	d := DefaultConfig()
	return Config{
		Addr:         c.Addr,
		DB:           c.DB,
		Username:     c.Username,
		Password:     c.Password,
		PoolSize:     positive(c.PoolSize, d.PoolSize),
		MinIdleConns: positive(c.MinIdleConns, d.MinIdleConns),
		DialTimeout:  seconds(c.DialTimeoutSeconds, d.DialTimeout),
		ReadTimeout:  seconds(c.ReadTimeoutSeconds, d.ReadTimeout),
		WriteTimeout: seconds(c.WriteTimeoutSeconds, d.WriteTimeout),
	}
}

func positive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func seconds(v int, def time.Duration) time.Duration {
	if v > 0 {
		return time.Duration(v) * time.Second
	}
	return def
}
