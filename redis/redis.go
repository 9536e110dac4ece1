package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

type RedisConfig struct {
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	Password  string `json:"password" yaml:"password"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

type RedisSentinelConfig struct {
	SentinelHost     string `json:"sentinel_host" yaml:"sentinel_host"`
	SentinelPort     int    `json:"sentinel_port" yaml:"sentinel_port"`
	Password         string `json:"password" yaml:"password"`
	MasterName       string `json:"master_name" yaml:"master_name"`
	SentinelUsername string `json:"sentinel_username" yaml:"sentinel_username"`
	Namespace        string `json:"namespace" yaml:"namespace"`
}

// NewRedisClient connects to a single redis instance and pings it once.
func NewRedisClient(config *RedisConfig) (*goredis.Client, error) {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	slog.Debug("Connecting to redis", "address", addr)

	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    config.Password,
		DB:          0,
		DialTimeout: connectTimeout,
	})

	if err := ping(client); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	slog.Info("Connected to redis", "address", addr)
	return client, nil
}

// NewRedisSentinelClient connects to the master known by the sentinel.
func NewRedisSentinelClient(config *RedisSentinelConfig) (*goredis.Client, error) {
	if config.MasterName == "" {
		return nil, fmt.Errorf("failed to connect to Redis through Sentinel: master name is empty")
	}

	sentinelAddr := fmt.Sprintf("%s:%d", config.SentinelHost, config.SentinelPort)
	slog.Debug("Connecting to redis through sentinel", "sentinel", sentinelAddr, "master", config.MasterName)

	client := goredis.NewFailoverClient(&goredis.FailoverOptions{
		MasterName:       config.MasterName,
		SentinelAddrs:    []string{sentinelAddr},
		SentinelUsername: config.SentinelUsername,
		SentinelPassword: config.Password,
		Password:         config.Password,
		DB:               0,
		DialTimeout:      connectTimeout,
	})

	if err := ping(client); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis through Sentinel at %s: %w", sentinelAddr, err)
	}

	slog.Info("Connected to redis through sentinel", "sentinel", sentinelAddr, "master", config.MasterName)
	return client, nil
}

func ping(client *goredis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			slog.Warn("failed to close redis client", "error", closeErr)
		}
		return err
	}
	return nil
}
