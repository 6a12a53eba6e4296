package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/gleeful/internal/config"
	"github.com/diewo77/gleeful/internal/db"
	"github.com/diewo77/gleeful/internal/logging"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

const sweepInterval = 5 * time.Minute

func main() {
	app := &cli.App{
		Name:  "gleeful",
		Usage: "party agency site",
		Before: func(*cli.Context) error {
			// .env is optional; real env vars win.
			_ = godotenv.Load()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply the schema and exit",
				Action: func(c *cli.Context) error {
					_, conn, err := bootstrap()
					if err != nil {
						return err
					}
					log.Info("migrations completed")
					return closeDB(conn)
				},
			},
			{
				Name:  "seed",
				Usage: "apply the schema, seed reference data and exit",
				Action: func(c *cli.Context) error {
					_, conn, err := bootstrap()
					if err != nil {
						return err
					}
					if err := db.Seed(conn); err != nil {
						return errors.Wrap(err, "seed")
					}
					log.Info("seeding completed")
					return closeDB(conn)
				},
			},
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("gleeful failed")
	}
}

// bootstrap loads config, sets up logging and opens a migrated database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.App.LogLevel, cfg.App.LogFormat)

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(conn, cfg.Database); err != nil {
		return nil, nil, errors.Wrap(err, "migrate")
	}
	return cfg, conn, nil
}

func closeDB(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newStore(ctx context.Context, cfg config.Session) (session.Store, func(), error) {
	if cfg.Backend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, errors.Wrap(err, "redis ping")
		}
		log.WithField("addr", cfg.RedisAddr).Info("using redis session store")
		return session.NewRedisStore(client, cfg.TTL), func() { _ = client.Close() }, nil
	}
	log.Info("using in-memory session store")
	return session.NewMemoryStore(cfg.TTL), func() {}, nil
}

func serve(c *cli.Context) error {
	cfg, conn, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(conn)

	if cfg.Database.Seed {
		if err := db.Seed(conn); err != nil {
			return errors.Wrap(err, "seed")
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeStore()

	app := NewApp(conn, store, cfg)
	go sweep(ctx, app, store)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"port": cfg.Server.Port, "env": cfg.App.Env, "dev": cfg.App.Dev}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info("server stopped gracefully")
	return nil
}

// sweep drops idle rate-limit entries and expired in-memory carts until ctx ends.
func sweep(ctx context.Context, app *App, store session.Store) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			app.limiter.Cleanup()
			if ms, ok := store.(*session.MemoryStore); ok {
				if n := ms.Sweep(); n > 0 {
					log.WithField("expired", n).Debug("swept session carts")
				}
			}
		}
	}
}
