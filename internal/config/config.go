// Package config loads the nscache CLI configuration from an optional YAML
// file and NSCACHE_* environment variables (environment wins).
package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/unkn0wn-root/nscache/codec"
	"github.com/unkn0wn-root/nscache/keyhash"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type SQLite struct {
	Path string `yaml:"path" env:"NSCACHE_SQLITE_PATH" env-default:"nscache.db"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"NSCACHE_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"NSCACHE_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"NSCACHE_REDIS_DB" env-default:"0"`
}

type Config struct {
	Backend   string `yaml:"backend" env:"NSCACHE_BACKEND" env-default:"sqlite"`
	Namespace string `yaml:"namespace" env:"NSCACHE_NAMESPACE" env-default:"cache"`
	Hash      string `yaml:"hash" env:"NSCACHE_HASH" env-default:"xxhash"`
	Codec     string `yaml:"codec" env:"NSCACHE_CODEC" env-default:"json"`
	LogLevel  string `yaml:"log_level" env:"NSCACHE_LOG_LEVEL" env-default:"warn"`

	SQLite SQLite `yaml:"sqlite"`
	Redis  Redis  `yaml:"redis"`
}

// Load reads path (if non-empty) and then the environment.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return fmt.Errorf("sqlite.path is required")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return fmt.Errorf("redis.addr is required")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendRedis)
	}
	if c.Namespace == "" || strings.Contains(c.Namespace, ":") {
		return fmt.Errorf("invalid namespace %q", c.Namespace)
	}
	if _, err := c.HashFunc(); err != nil {
		return err
	}
	if _, err := c.EntryCodec(); err != nil {
		return err
	}
	return nil
}

func (c Config) HashFunc() (keyhash.Func, error) {
	switch strings.ToLower(c.Hash) {
	case "xxhash":
		return keyhash.XXHash, nil
	case "murmur3":
		return keyhash.Murmur3, nil
	case "java":
		return keyhash.Java, nil
	}
	return nil, fmt.Errorf("unknown hash %q (want xxhash, murmur3 or java)", c.Hash)
}

func (c Config) EntryCodec() (codec.Codec, error) {
	switch strings.ToLower(c.Codec) {
	case "json":
		return codec.JSON{}, nil
	case "msgpack":
		return codec.Msgpack{}, nil
	case "cbor":
		return codec.NewCBOR(true)
	}
	return nil, fmt.Errorf("unknown codec %q (want json, msgpack or cbor)", c.Codec)
}
