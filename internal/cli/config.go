package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyOutputDir      = "output_dir"
	cfgKeyJobs           = "jobs"
	cfgKeyCacheBackend   = "cache.backend"
	cfgKeyCacheDir       = "cache.dir"
	cfgKeyCacheRedisAddr = "cache.redis_addr"
)

// Cache backend names accepted in the config.
const (
	backendOff   = "off"
	backendFile  = "file"
	backendRedis = "redis"
)

const defaultRedisAddr = "localhost:6379"

// Config is the user-level tool configuration from
// ~/.config/libmerge/config.yaml. Every value is optional; command-line
// flags take precedence over all of it.
type Config struct {
	// OutputDir is the default --output-dir for generate.
	OutputDir string

	// Jobs is the default --jobs for generate. Zero means the pipeline
	// default.
	Jobs int

	// Cache selects and locates the render cache backend.
	Cache CacheConfig
}

// CacheConfig locates the render cache.
type CacheConfig struct {
	Backend   string // off, file, or redis
	Dir       string // file backend root; empty means ~/.cache/libmerge
	RedisAddr string // redis backend address
}

func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{Backend: backendFile, RedisAddr: defaultRedisAddr},
	}
}

// loadConfig reads config.yaml from the user config directory. A missing
// file or directory is not an error; the defaults are returned instead.
func loadConfig() (*Config, error) {
	dir, err := configDir()
	if err != nil {
		return defaultConfig(), nil
	}
	return loadConfigAt(dir)
}

// loadConfigAt reads config.yaml from dir using viper.
func loadConfigAt(dir string) (*Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyCacheBackend, backendFile)
	v.SetDefault(cfgKeyCacheRedisAddr, defaultRedisAddr)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing config.yaml is fine; defaults apply.
	}

	return &Config{
		OutputDir: v.GetString(cfgKeyOutputDir),
		Jobs:      v.GetInt(cfgKeyJobs),
		Cache: CacheConfig{
			Backend:   v.GetString(cfgKeyCacheBackend),
			Dir:       v.GetString(cfgKeyCacheDir),
			RedisAddr: v.GetString(cfgKeyCacheRedisAddr),
		},
	}, nil
}

// configDir returns the config directory using XDG standard
// (~/.config/libmerge/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
