// Package config loads the engine's storage-layer tunables from a YAML
// file: buffer pool capacity, the LRU-K history depth, and the disk
// scheduler's worker count.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the tunables for the storage substrate.
type Config struct {
	BufferPool struct {
		Capacity int `mapstructure:"capacity"`
		K        int `mapstructure:"k"`
	} `mapstructure:"buffer_pool"`

	DiskScheduler struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"disk_scheduler"`

	Storage struct {
		Dir  string `mapstructure:"dir"`
		Base string `mapstructure:"base"`
	} `mapstructure:"storage"`
}

// Default returns the tunables used when no config file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.BufferPool.Capacity = 128
	cfg.BufferPool.K = 2
	cfg.DiskScheduler.Workers = 32
	cfg.Storage.Dir = "data"
	cfg.Storage.Base = "base"
	return cfg
}

// Load reads and unmarshals a YAML config file at path over the defaults:
// fields the file does not set keep their default values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
