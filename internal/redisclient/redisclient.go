// Package redisclient bootstraps the connection to the key-value store that
// keeps issued token records.
package redisclient

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCommandTimeout = 3 * time.Second

type Config struct {
	Host     string
	Port     int
	DB       int
	Password string

	// Timeout applied to every command
	// If not set than default is used
	CommandTimeout time.Duration
}

// Connect creates a client and verifies the connection with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.CommandTimeout
	if timeout == 0 {
		timeout = defaultCommandTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		DB:           cfg.DB,
		Password:     cfg.Password,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed. Err: %w", err)
	}

	return client, nil
}
