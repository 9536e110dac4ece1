package redis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedisConfigFromJSON(t *testing.T) {
	var config RedisConfig
	err := json.Unmarshal([]byte(`{"host":"localhost","port":6379,"password":"secret","namespace":"mrz"}`), &config)
	require.NoError(t, err)

	require.Equal(t, RedisConfig{Host: "localhost", Port: 6379, Password: "secret", Namespace: "mrz"}, config)
}

func TestRedisSentinelConfigFromJSON(t *testing.T) {
	var config RedisSentinelConfig
	err := json.Unmarshal([]byte(`{
		"sentinel_host": "localhost",
		"sentinel_port": 26379,
		"password": "secret",
		"master_name": "mymaster",
		"sentinel_username": "sentinel",
		"namespace": "mrz"
	}`), &config)
	require.NoError(t, err)

	require.Equal(t, "localhost", config.SentinelHost)
	require.Equal(t, 26379, config.SentinelPort)
	require.Equal(t, "secret", config.Password)
	require.Equal(t, "mymaster", config.MasterName)
	require.Equal(t, "sentinel", config.SentinelUsername)
	require.Equal(t, "mrz", config.Namespace)
}

func TestNewRedisClientFailures(t *testing.T) {
	tests := []struct {
		name   string
		config RedisConfig
	}{
		{"invalid host", RedisConfig{Host: "invalid-redis-host-that-does-not-exist", Port: 6379}},
		{"invalid port", RedisConfig{Host: "localhost", Port: 99999}},
		{"empty config", RedisConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisClient(&tt.config)
			require.Error(t, err)
			require.Nil(t, client)
			require.Contains(t, err.Error(), "failed to connect to Redis")
		})
	}
}

func TestNewRedisSentinelClientFailures(t *testing.T) {
	tests := []struct {
		name   string
		config RedisSentinelConfig
	}{
		{"invalid host", RedisSentinelConfig{SentinelHost: "invalid-sentinel-host-that-does-not-exist", SentinelPort: 26379, MasterName: "mymaster"}},
		{"invalid port", RedisSentinelConfig{SentinelHost: "localhost", SentinelPort: 99999, MasterName: "mymaster"}},
		{"empty master name", RedisSentinelConfig{SentinelHost: "localhost", SentinelPort: 26379}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisSentinelClient(&tt.config)
			require.Error(t, err)
			require.Nil(t, client)
			require.Contains(t, err.Error(), "failed to connect to Redis through Sentinel")
		})
	}
}
