// Package cli holds the ledgerctl maintenance commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/razalrahmanp/palaka-sub014/internal/app"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/cache"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/db"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "ledgerctl maintains the palaka ledger",
		Long:         `ledgerctl runs schema migrations, balance recalculation, integrity scans, seeding and job triggers against the ledger database.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		CreateMigrateCommand(),
		CreateRecalcCommand(),
		CreateIntegrityCommand(),
		CreateJobsCommand(),
		CreateSeedCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// env is the runtime shared by commands touching the database.
type env struct {
	cfg    *app.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
}

func openEnv(ctx context.Context, withRedis bool) (*env, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	e := &env{cfg: cfg, logger: app.NewLogger(cfg)}
	e.pool, err = db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 2, ApplicationName: "ledgerctl"})
	if err != nil {
		return nil, err
	}
	if withRedis {
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			e.logger.Warn("redis unavailable, running without lock or cache bump", slog.Any("error", err))
		} else {
			e.redis = client
		}
	}
	return e, nil
}

func (e *env) Close() error {
	var err error
	if e.redis != nil {
		err = multierr.Append(err, e.redis.Close())
	}
	if e.pool != nil {
		e.pool.Close()
	}
	return err
}
