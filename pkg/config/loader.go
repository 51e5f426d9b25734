package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".databrook"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for databrook settings.
const envPrefix = "DATABROOK"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Load loads configuration from file, env vars, and defaults. If
// configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME. A missing
// config file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("grabber.num_workers", DefaultGrabberNumWorkers)
	v.SetDefault("grabber.prefetch", DefaultGrabberPrefetch)
	v.SetDefault("grabber.keep_order", DefaultGrabberKeepOrder)

	v.SetDefault("cache.policy", DefaultCachePolicy)
	v.SetDefault("cache.max_size", DefaultCacheMaxSize)

	v.SetDefault("checkpoint.dir", DefaultCheckpointDir)
	v.SetDefault("checkpoint.overwrite", DefaultCheckpointOverwrite)
	v.SetDefault("checkpoint.copy", DefaultCheckpointCopy)
	v.SetDefault("checkpoint.compress", DefaultCheckpointCompress)
	v.SetDefault("checkpoint.destroy", DefaultCheckpointDestroy)

	v.SetDefault("tracker.enabled", DefaultTrackerEnabled)
	v.SetDefault("tracker.refresh_millis", DefaultTrackerRefreshMillis)
	v.SetDefault("tracker.color", DefaultTrackerColor)

	v.SetDefault("observability.tracing_enabled", DefaultObservabilityTracingEnabled)
	v.SetDefault("observability.metrics_addr", DefaultObservabilityMetricsAddr)
	v.SetDefault("observability.log_level", DefaultObservabilityLogLevel)
}
