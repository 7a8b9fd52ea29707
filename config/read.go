package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Alijeyrad/mindbook_backend/pkg/constants"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	// A .env next to config.yaml is optional and never overrides the real
	// environment.
	envFile := filepath.Join(configPath, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// e.g. MINDBOOK_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

// setDefaults registers every key viper should know about even when it is
// absent from the file, so AutomaticEnv can still override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", constants.EnvDevelopment)
	v.SetDefault("server.pages_dir", "./web")
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.requests_per_minute", 120)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.dbname", "mindbook")
	v.SetDefault("casbin_database.host", "localhost")
	v.SetDefault("casbin_database.port", 5432)
	v.SetDefault("casbin_database.sslmode", "disable")
	v.SetDefault("casbin_database.dbname", "mindbook_casbin")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("authentication.paseto.mode", "local")
	v.SetDefault("authentication.paseto.issuer", constants.AppName)
	v.SetDefault("authentication.paseto.access_ttl_minutes", 15)
	v.SetDefault("authentication.paseto.refresh_ttl_days", 14)
	v.SetDefault("authentication.default_password_length", 12)
	v.SetDefault("authentication.min_password_length", 8)

	v.SetDefault("authorization.health_check_enabled", true)

	v.SetDefault("scheduling.touching_is_conflict", true)
	v.SetDefault("scheduling.lock_timeout_seconds", 5)

	v.SetDefault("notification.workers", 2)
	v.SetDefault("notification.queue_size", 256)
	v.SetDefault("notification.default_region", "US")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output.stdout", true)

	v.SetDefault("observability.service_name", constants.AppName)
	v.SetDefault("observability.metrics.path", "/metrics")
}
