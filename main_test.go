package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go-mrz-validator/logging"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadConfigFile_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"server_config": {"host": "0.0.0.0", "port": 8080},
		"log_level": "debug",
		"log_file": {"path": "/tmp/mrz.log", "max_size_mb": 10},
		"storage_type": "redis",
		"redis_config": {"host": "redis", "port": 6379, "namespace": "mrz"},
		"irma_server_url": "https://irma.example",
		"issuer_id": "mrz_issuer",
		"credential": "irma-demo.mrz.passport",
		"sd_jwt_batch_size": 10
	}`)

	config, err := readConfigFile(path)
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", config.ServerConfig.Host)
	require.Equal(t, 8080, config.ServerConfig.Port)
	require.Equal(t, "debug", config.LogLevel)
	require.Equal(t, "/tmp/mrz.log", config.LogFile.Path)
	require.Equal(t, 10, config.LogFile.MaxSizeMB)
	require.Equal(t, "redis", config.StorageType)
	require.Equal(t, "redis", config.RedisConfig.Host)
	require.Equal(t, "mrz", config.RedisConfig.Namespace)
	require.Equal(t, "https://irma.example", config.IrmaServerUrl)
	require.Equal(t, "irma-demo.mrz.passport", config.Credential)
	require.Equal(t, uint(10), config.SdJwtBatchSize)
}

func TestReadConfigFile_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server_config:
  host: localhost
  port: 8081
  use_tls: true
  tls_cert_path: cert.pem
  tls_priv_key_path: key.pem
log_level: warn
storage_type: redis_sentinel
redis_sentinel_config:
  sentinel_host: sentinel
  sentinel_port: 26379
  master_name: mymaster
  namespace: mrz
`)

	config, err := readConfigFile(path)
	require.NoError(t, err)

	require.Equal(t, ServerConfig{
		Host:           "localhost",
		Port:           8081,
		UseTls:         true,
		TlsCertPath:    "cert.pem",
		TlsPrivKeyPath: "key.pem",
	}, config.ServerConfig)
	require.Equal(t, "warn", config.LogLevel)
	require.Equal(t, "redis_sentinel", config.StorageType)
	require.Equal(t, "sentinel", config.RedisSentinelConfig.SentinelHost)
	require.Equal(t, 26379, config.RedisSentinelConfig.SentinelPort)
	require.Equal(t, "mymaster", config.RedisSentinelConfig.MasterName)
}

func TestReadConfigFile_Failures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := readConfigFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := readConfigFile(writeConfig(t, "config.json", `{"server_config": `))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := readConfigFile(writeConfig(t, "config.yml", "server_config: [unclosed"))
		require.Error(t, err)
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MRZ_HOST", "127.0.0.1")
	t.Setenv("MRZ_PORT", "9090")
	t.Setenv("MRZ_LOG_LEVEL", "error")
	t.Setenv("MRZ_REDIS_PASSWORD", "secret")

	config := Config{ServerConfig: ServerConfig{Host: "localhost", Port: 8080}, LogLevel: "info"}
	require.NoError(t, applyEnvOverrides(&config))

	require.Equal(t, "127.0.0.1", config.ServerConfig.Host)
	require.Equal(t, 9090, config.ServerConfig.Port)
	require.Equal(t, "error", config.LogLevel)
	require.Equal(t, "secret", config.RedisConfig.Password)
	require.Equal(t, "secret", config.RedisSentinelConfig.Password)
}

func TestApplyEnvOverrides_KeepsConfigWhenUnset(t *testing.T) {
	t.Setenv("MRZ_HOST", "")
	t.Setenv("MRZ_PORT", "")
	t.Setenv("MRZ_LOG_LEVEL", "")
	t.Setenv("MRZ_REDIS_PASSWORD", "")

	config := Config{ServerConfig: ServerConfig{Host: "localhost", Port: 8080}, LogLevel: "info"}
	require.NoError(t, applyEnvOverrides(&config))

	require.Equal(t, Config{ServerConfig: ServerConfig{Host: "localhost", Port: 8080}, LogLevel: "info"}, config)
}

func TestApplyEnvOverrides_InvalidPort(t *testing.T) {
	t.Setenv("MRZ_PORT", "eighty")

	config := Config{}
	require.ErrorContains(t, applyEnvOverrides(&config), "invalid MRZ_PORT")
}

func TestCreateReportStorage(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		storage, err := createReportStorage(&Config{StorageType: "memory"})
		require.NoError(t, err)
		require.IsType(t, &InMemoryReportStorage{}, storage)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := createReportStorage(&Config{StorageType: "postgres"})
		require.ErrorContains(t, err, "postgres is not a valid storage type")
	})

	t.Run("unreachable redis", func(t *testing.T) {
		_, err := createReportStorage(&Config{StorageType: "redis"})
		require.Error(t, err)
	})
}

func TestNewServerState(t *testing.T) {
	t.Run("issuance disabled without key", func(t *testing.T) {
		state, err := newServerState(&Config{StorageType: "memory"})
		require.NoError(t, err)
		require.Nil(t, state.jwtCreator)
		require.NotNil(t, state.metrics)
	})

	t.Run("issuance enabled with key", func(t *testing.T) {
		keyPath, _ := writeTestKey(t)
		state, err := newServerState(&Config{
			StorageType:       "memory",
			JwtPrivateKeyPath: keyPath,
			IssuerId:          "mrz_issuer",
			Credential:        "irma-demo.mrz.passport",
		})
		require.NoError(t, err)
		require.NotNil(t, state.jwtCreator)
	})

	t.Run("unreadable key", func(t *testing.T) {
		_, err := newServerState(&Config{
			StorageType:       "memory",
			JwtPrivateKeyPath: filepath.Join(t.TempDir(), "missing.pem"),
		})
		require.ErrorContains(t, err, "failed to instantiate jwt creator")
	})
}

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, name := range []string{"MRZ_HOST", "MRZ_PORT", "MRZ_LOG_LEVEL", "MRZ_REDIS_PASSWORD"} {
		t.Setenv(name, "")
	}
}

func TestRun_MissingConfigPath(t *testing.T) {
	require.ErrorContains(t, run(""), "--config")
}

func TestRun_UnreadableConfig(t *testing.T) {
	require.Error(t, run(filepath.Join(t.TempDir(), "missing.json")))
}

func TestRun_StartupFailureIsFlushedToLogFile(t *testing.T) {
	clearEnvOverrides(t)
	t.Cleanup(func() { logging.InitLogger("info") })

	logPath := filepath.Join(t.TempDir(), "mrz.log")
	configPath := writeConfig(t, "config.json", fmt.Sprintf(`{
		"server_config": {"host": "localhost", "port": 8082},
		"log_file": {"path": %q},
		"storage_type": "postgres"
	}`, logPath))

	require.Error(t, run(configPath))

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "failed to create server state")
	require.Contains(t, string(content), "postgres is not a valid storage type")
}
