// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
	validKVTypes      = []string{"redis", "memory"}
	validDBDrivers    = []string{"sqlite", "postgres"}
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors_origins", "host_cors_origins")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.local_root", "storage_local_root")

	v.BindEnv("s3.access_key_id", "s3_access_key_id")
	v.BindEnv("s3.secret_access_key", "s3_secret_access_key")
	v.BindEnv("s3.bucket", "s3_bucket")
	v.BindEnv("s3.region", "s3_region")
	v.BindEnv("s3.endpoint", "s3_endpoint")

	v.BindEnv("kv.type", "kv_type")
	v.BindEnv("redis.address", "redis_address")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("session.ttl_seconds", "session_ttl_seconds")
	v.BindEnv("session.refresh_ttl_seconds", "session_refresh_ttl_seconds")

	v.BindEnv("stats.bytes_per_mail", "stats_bytes_per_mail")
	v.BindEnv("stats.storage_limit", "stats_storage_limit")

	v.BindEnv("backup.retention", "backup_retention")
	v.BindEnv("backup.schedule", "backup_schedule")

	v.BindEnv("security.rate_limit", "security_rate_limit")
	v.BindEnv("security.argon_memory", "security_argon_memory")
	v.BindEnv("security.argon_iterations", "security_argon_iterations")
	v.BindEnv("security.argon_parallelism", "security_argon_parallelism")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_root", "blobs")

	v.SetDefault("kv.type", "memory")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// 1 hour sessions, 30 day refresh tokens
	v.SetDefault("session.ttl_seconds", 3600)
	v.SetDefault("session.refresh_ttl_seconds", 30*24*60*60)

	// Body content size isn't tracked per blob, usage is estimated at a
	// flat 5KB per mail on top of the known attachment bytes
	v.SetDefault("stats.bytes_per_mail", 5000)
	v.SetDefault("stats.storage_limit", int64(10)<<30)

	v.SetDefault("backup.retention", 10)
	v.SetDefault("backup.schedule", "")

	v.SetDefault("security.rate_limit", 20)
	v.SetDefault("security.argon_memory", 64*1024)
	v.SetDefault("security.argon_iterations", 3)
	v.SetDefault("security.argon_parallelism", 2)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("s3.access_key_id") == "" {
			return errors.New("s3 access key id can't be empty")
		}
		if v.GetString("s3.secret_access_key") == "" {
			return errors.New("s3 secret access key can't be empty")
		}
		if v.GetString("s3.bucket") == "" {
			return errors.New("s3 bucket can't be empty")
		}
	case "local":
		if v.GetString("storage.local_root") == "" {
			return errors.New("local storage root can't be empty")
		}
	default:
		return fmt.Errorf("invalid storage type provided, must be one of %v", validStorageTypes)
	}

	if !slices.Contains(validKVTypes, v.GetString("kv.type")) {
		return fmt.Errorf("invalid kv type provided, must be one of %v", validKVTypes)
	}

	if v.GetInt("session.ttl_seconds") <= 0 || v.GetInt("session.refresh_ttl_seconds") <= 0 {
		return errors.New("session ttls must be bigger than 0")
	}

	if v.GetInt64("stats.bytes_per_mail") < 0 {
		return errors.New("stats.bytes_per_mail can't be negative")
	}

	if v.GetInt("backup.retention") <= 0 {
		return errors.New("backup.retention must be bigger than 0")
	}

	return nil
}
