// Package redis opens verified connections to the cache backing report
// status and delinquency lookups.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config carries the connection settings for a single Redis instance.
// Timeout bounds both reads and writes; the schedule reporter only ever
// stores small JSON blobs, so one knob is enough.
type Config struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

type Client = goredis.Client

// Connect dials Redis and pings it before handing the client out, so a
// misconfigured address fails at startup instead of on the first report.
func Connect(cfg Config) (*Client, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = cfg.Timeout
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  dialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func Close(c *Client) {
	if c == nil {
		return
	}
	_ = c.Close()
}
