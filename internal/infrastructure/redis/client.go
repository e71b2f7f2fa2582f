package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting sits on the request path and fails open, so a slow Redis
// must give up quickly instead of stalling logins.
const (
	dialTimeout = time.Second
	ioTimeout   = 250 * time.Millisecond
	pingTimeout = 2 * time.Second
)

// Client owns the go-redis connection pool shared by the limiter.
type Client struct {
	addr string
	rdb  *goredis.Client
}

func New(addr, password string, db int) *Client {
	return &Client{
		addr: addr,
		rdb: goredis.NewClient(&goredis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  dialTimeout,
			ReadTimeout:  ioTimeout,
			WriteTimeout: ioTimeout,
			MaxRetries:   1,
		}),
	}
}

// Ping backs the readiness check and the startup probe.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", c.addr, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
