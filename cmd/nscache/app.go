package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/nscache"
	"github.com/unkn0wn-root/nscache/internal/config"
	zaplog "github.com/unkn0wn-root/nscache/log/zap"
	"github.com/unkn0wn-root/nscache/store"
	"github.com/unkn0wn-root/nscache/store/redis"
	"github.com/unkn0wn-root/nscache/store/sqlite"
)

var errMiss = errors.New("not cached")

// session holds what a subcommand opens and After closes.
type session struct {
	cfg   config.Config
	log   *zap.Logger
	store store.Store
	cache nscache.Cache[any]
}

func newApp() *cli.Command {
	s := &session{}

	return &cli.Command{
		Name:  "nscache",
		Usage: "inspect and maintain a namespaced TTL cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (NSCACHE_* env vars override it)",
				Sources: cli.EnvVars("NSCACHE_CONFIG"),
			},
			&cli.StringFlag{Name: "backend", Usage: "sqlite | redis"},
			&cli.StringFlag{Name: "namespace", Aliases: []string{"n"}, Usage: "cache namespace"},
			&cli.StringFlag{Name: "sqlite-path", Usage: "SQLite database file"},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address host:port"},
		},
		After: func(ctx context.Context, _ *cli.Command) error {
			return s.close(ctx)
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "print the cached payload for a logical key",
				ArgsUsage: "KEY",
				Action: s.with(func(ctx context.Context, cmd *cli.Command) error {
					key, err := oneArg(cmd)
					if err != nil {
						return err
					}
					v, ok, err := s.cache.Get(ctx, key)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("%s: %w", key, errMiss)
					}
					b, err := json.MarshalIndent(v, "", "  ")
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.Root().Writer, string(b))
					return err
				}),
			},
			{
				Name:      "save",
				Usage:     "store a payload (JSON, or a plain string) under a logical key",
				ArgsUsage: "KEY VALUE",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "ttl", Usage: "time to live; 0 keeps the entry forever"},
				},
				Action: s.with(func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() != 2 {
						return fmt.Errorf("save: want KEY VALUE, got %d args", cmd.NArg())
					}
					key, raw := cmd.Args().Get(0), cmd.Args().Get(1)
					return s.cache.Save(ctx, key, parseValue(raw), cmd.Duration("ttl"))
				}),
			},
			{
				Name:      "rm",
				Usage:     "remove a logical key",
				ArgsUsage: "KEY",
				Action: s.with(func(ctx context.Context, cmd *cli.Command) error {
					key, err := oneArg(cmd)
					if err != nil {
						return err
					}
					return s.cache.Remove(ctx, key)
				}),
			},
			{
				Name:      "rm-prefix",
				Usage:     "remove every key sharing PREFIX (text before the first '/')",
				ArgsUsage: "PREFIX",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "clear the whole namespace"},
				},
				Action: s.with(func(ctx context.Context, cmd *cli.Command) error {
					prefix := cmd.Args().First()
					if prefix == "" && !cmd.Bool("all") {
						return errors.New("rm-prefix: PREFIX required (or --all to clear the namespace)")
					}
					return s.cache.RemoveAll(ctx, prefix)
				}),
			},
			{
				Name:  "sweep",
				Usage: "delete expired and corrupt entries now",
				Action: s.with(func(ctx context.Context, cmd *cli.Command) error {
					n, err := s.cache.Sweep(ctx)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(cmd.Root().Writer, "removed %d\n", n)
					return err
				}),
			},
			{
				Name:  "keys",
				Usage: "list storage keys in the namespace",
				Action: s.with(func(ctx context.Context, cmd *cli.Command) error {
					ks, err := s.store.Keys(ctx, s.cfg.Namespace+":")
					if err != nil {
						return err
					}
					sort.Strings(ks)
					for _, k := range ks {
						if _, err := fmt.Fprintln(cmd.Root().Writer, k); err != nil {
							return err
						}
					}
					return nil
				}),
			},
		},
	}
}

// with opens the session before running action, so help output and usage
// errors never touch the store.
func (s *session) with(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := s.open(ctx, cmd.Root()); err != nil {
			return err
		}
		return action(ctx, cmd)
	}
}

func (s *session) open(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	overrides := map[string]*string{
		"backend":     &cfg.Backend,
		"namespace":   &cfg.Namespace,
		"sqlite-path": &cfg.SQLite.Path,
		"redis-addr":  &cfg.Redis.Addr,
	}
	for flag, dst := range overrides {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg

	s.log, err = newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	s.store, err = openStore(ctx, cfg)
	if err != nil {
		return err
	}

	hash, _ := cfg.HashFunc()
	entryCodec, _ := cfg.EntryCodec()
	s.cache, err = nscache.New[any](nscache.Options[any]{
		Store:     s.store,
		Namespace: cfg.Namespace,
		Codec:     entryCodec,
		Hash:      hash,
		Logger:    zaplog.New(s.log, cfg.Namespace),
	})
	return err
}

func (s *session) close(ctx context.Context) error {
	var err error
	if s.cache != nil {
		err = s.cache.Close(ctx)
	} else if s.store != nil {
		err = s.store.Close(ctx)
	}
	if s.log != nil {
		_ = s.log.Sync()
	}
	return err
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		return redis.New(redis.Config{Client: rdb, CloseClient: true})
	default:
		return sqlite.Open(cfg.SQLite.Path)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

func oneArg(cmd *cli.Command) (string, error) {
	if cmd.NArg() != 1 {
		return "", fmt.Errorf("%s: want exactly one KEY, got %d args", cmd.Name, cmd.NArg())
	}
	return cmd.Args().First(), nil
}

// parseValue keeps valid JSON as structured data and treats anything else as
// a plain string.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
