package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-mrz-validator/logging"
	"go-mrz-validator/metrics"
	"go-mrz-validator/redis"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerConfig ServerConfig       `json:"server_config" yaml:"server_config"`
	LogLevel     string             `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFile      logging.FileConfig `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	// issuance is disabled when no key is configured
	JwtPrivateKeyPath string `json:"jwt_private_key_path,omitempty" yaml:"jwt_private_key_path,omitempty"`
	IrmaServerUrl     string `json:"irma_server_url,omitempty" yaml:"irma_server_url,omitempty"`
	IssuerId          string `json:"issuer_id,omitempty" yaml:"issuer_id,omitempty"`
	Credential        string `json:"credential,omitempty" yaml:"credential,omitempty"`
	SdJwtBatchSize    uint   `json:"sd_jwt_batch_size,omitempty" yaml:"sd_jwt_batch_size,omitempty"`

	StorageType         string                    `json:"storage_type" yaml:"storage_type"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty" yaml:"redis_config,omitempty"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty" yaml:"redis_sentinel_config,omitempty"`
}

func main() {
	// Best-effort: a missing .env is fine
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("MRZ_CONFIG"), "Path for the config.json or config.yaml to use")
	flag.Parse()

	if err := run(*configPath); err != nil {
		os.Exit(1)
	}
}

// run logs its own failures, so they reach the log file before it is closed.
func run(configPath string) error {
	if configPath == "" {
		err := errors.New("please provide a config path using the --config flag")
		slog.Error("failed to start", "error", err)
		return err
	}

	config, err := readConfigFile(configPath)
	if err != nil {
		slog.Error("failed to read config file", "error", err)
		return err
	}
	if err := applyEnvOverrides(&config); err != nil {
		slog.Error("failed to apply environment overrides", "error", err)
		return err
	}

	if config.LogFile.Path != "" {
		closer := logging.InitFileLogger(config.LogLevel, config.LogFile)
		defer func() {
			if err := closer.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
			}
		}()
	} else {
		logging.InitLogger(config.LogLevel)
	}

	slog.Info("using config", "path", configPath)
	slog.Info("hosting on", "host", config.ServerConfig.Host, "port", config.ServerConfig.Port)

	serverState, err := newServerState(&config)
	if err != nil {
		slog.Error("failed to create server state", "error", err)
		return err
	}

	server, err := NewServer(serverState, config.ServerConfig)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		return err
	}

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to listen and serve", "error", err)
		return err
	}
	return nil
}

func newServerState(config *Config) (*ServerState, error) {
	reportStorage, err := createReportStorage(config)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate report storage: %w", err)
	}

	state := &ServerState{
		irmaServerURL: config.IrmaServerUrl,
		reportStorage: reportStorage,
		verifier:      LineVerifierImpl{},
		chipReader:    ChipReaderImpl{},
		metrics:       metrics.New(),
		now:           time.Now,
	}

	if config.JwtPrivateKeyPath == "" {
		slog.Warn("no jwt_private_key_path configured, credential issuance is disabled")
		return state, nil
	}

	jwtCreator, err := NewIrmaJwtCreator(
		config.JwtPrivateKeyPath,
		config.IssuerId,
		config.Credential,
		config.SdJwtBatchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate jwt creator: %w", err)
	}
	state.jwtCreator = jwtCreator

	return state, nil
}

func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configBytes, &config)
	default:
		err = json.Unmarshal(configBytes, &config)
	}

	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}

// applyEnvOverrides lets the environment win over the config file
func applyEnvOverrides(config *Config) error {
	if host := strings.TrimSpace(os.Getenv("MRZ_HOST")); host != "" {
		config.ServerConfig.Host = host
	}
	if raw := strings.TrimSpace(os.Getenv("MRZ_PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid MRZ_PORT %q: %w", raw, err)
		}
		config.ServerConfig.Port = port
	}
	if level := strings.TrimSpace(os.Getenv("MRZ_LOG_LEVEL")); level != "" {
		config.LogLevel = level
	}
	if password := os.Getenv("MRZ_REDIS_PASSWORD"); password != "" {
		config.RedisConfig.Password = password
		config.RedisSentinelConfig.Password = password
	}
	return nil
}

func createReportStorage(config *Config) (ReportStorage, error) {
	if config.StorageType == "redis" {
		slog.Info("Using redis report storage")
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisReportStorage(client, config.RedisConfig.Namespace), nil
	}
	if config.StorageType == "redis_sentinel" {
		slog.Info("Using redis sentinel report storage")
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisReportStorage(client, config.RedisSentinelConfig.Namespace), nil
	}
	if config.StorageType == "memory" {
		slog.Info("Using in memory report storage")
		return NewInMemoryReportStorage(), nil
	}
	return nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}
