// Package config loads the runtime configuration for a workflow run: worker
// pool sizing, cache policy/size defaults, checkpoint directory/overwrite
// policy, tracker refresh rate, and observability toggles, from a YAML file,
// environment variables, and flags, via viper/mapstructure exactly as the
// teacher's internal/config package does.
package config

import "errors"

// Config is the top-level configuration struct, unmarshalled from YAML via
// mapstructure tags.
type Config struct {
	Grabber       GrabberConfig       `mapstructure:"grabber"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Checkpoint    CheckpointConfig    `mapstructure:"checkpoint"`
	Tracker       TrackerConfig       `mapstructure:"tracker"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// GrabberConfig holds the worker-pool knobs consulted by pkg/grabber.
type GrabberConfig struct {
	NumWorkers int  `mapstructure:"num_workers"`
	Prefetch   int  `mapstructure:"prefetch"`
	KeepOrder  bool `mapstructure:"keep_order"`
}

// CacheConfig holds the default eviction policy and bound applied to nodes
// that enable caching without specifying their own.
type CacheConfig struct {
	Policy  string `mapstructure:"policy"` // "none", "memo", "fifo", "lifo", "rr", "lru", "mru"
	MaxSize int    `mapstructure:"max_size"`
}

// CheckpointConfig holds the default checkpoint directory root and file
// policies applied to nodes that enable checkpointing without specifying
// their own.
type CheckpointConfig struct {
	Dir       string `mapstructure:"dir"`
	Overwrite string `mapstructure:"overwrite"` // "forbid", "allow_if_empty", "allow_new_files", "overwrite_files", "overwrite"
	Copy      string `mapstructure:"copy"`      // "hard_link", "symbolic_link", "replicate", "rewrite"
	Compress  bool   `mapstructure:"compress"`  // LZ4-compress bytes written via the rewrite path
	Destroy   bool   `mapstructure:"destroy"`
}

// TrackerConfig holds the TUI tracker's refresh rate and color toggle.
type TrackerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	RefreshMillis int  `mapstructure:"refresh_millis"`
	Color         bool `mapstructure:"color"`
}

// ObservabilityConfig holds the OTel/Prometheus/logging toggles.
type ObservabilityConfig struct {
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
	LogLevel       string `mapstructure:"log_level"`
}

// Sentinel validation errors, one per invariant, following the teacher's
// convention of a dedicated Err* per failed field rather than a generic
// wrapped message.
var (
	ErrInvalidNumWorkers   = errors.New("grabber.num_workers must be non-negative")
	ErrInvalidPrefetch     = errors.New("grabber.prefetch must be non-negative")
	ErrInvalidCachePolicy  = errors.New("cache.policy is not a recognized policy name")
	ErrInvalidCacheMaxSize = errors.New("cache.max_size must be positive for a bounded policy")
	ErrInvalidOverwrite    = errors.New("checkpoint.overwrite is not a recognized policy name")
	ErrInvalidCopy         = errors.New("checkpoint.copy is not a recognized policy name")
	ErrInvalidRefresh      = errors.New("tracker.refresh_millis must be positive")
	ErrInvalidLogLevel     = errors.New("observability.log_level is not a recognized level")
)

var cachePolicies = map[string]bool{
	"none": true, "memo": true, "fifo": true, "lifo": true, "rr": true, "lru": true, "mru": true,
}

var overwritePolicies = map[string]bool{
	"forbid": true, "allow_if_empty": true, "allow_new_files": true, "overwrite_files": true, "overwrite": true,
}

var copyPolicies = map[string]bool{
	"hard_link": true, "symbolic_link": true, "replicate": true, "rewrite": true,
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Grabber.NumWorkers < 0 {
		return ErrInvalidNumWorkers
	}

	if c.Grabber.Prefetch < 0 {
		return ErrInvalidPrefetch
	}

	if !cachePolicies[c.Cache.Policy] {
		return ErrInvalidCachePolicy
	}

	if c.Cache.Policy != "none" && c.Cache.Policy != "memo" && c.Cache.MaxSize <= 0 {
		return ErrInvalidCacheMaxSize
	}

	if !overwritePolicies[c.Checkpoint.Overwrite] {
		return ErrInvalidOverwrite
	}

	if !copyPolicies[c.Checkpoint.Copy] {
		return ErrInvalidCopy
	}

	if c.Tracker.Enabled && c.Tracker.RefreshMillis <= 0 {
		return ErrInvalidRefresh
	}

	if !logLevels[c.Observability.LogLevel] {
		return ErrInvalidLogLevel
	}

	return nil
}
