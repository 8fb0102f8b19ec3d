package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/razalrahmanp/palaka-sub014/internal/app"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/db"
	"github.com/razalrahmanp/palaka-sub014/migrations"
)

// CreateMigrateCommand creates the migrate command.
func CreateMigrateCommand() *cobra.Command {
	var r migrateRunner
	c := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "apply or roll back schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE:      r.run,
	}
	r.setupFlags(c)
	return c
}

type migrateRunner struct {
	steps int
}

func (r *migrateRunner) setupFlags(c *cobra.Command) {
	c.Flags().IntVar(&r.steps, "steps", 1, "number of migrations to roll back with down")
}

func (r *migrateRunner) run(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	direction := "up"
	if len(args) == 1 {
		direction = args[0]
	}
	switch direction {
	case "down":
		if r.steps <= 0 {
			return fmt.Errorf("migrate: --steps must be positive")
		}
		err = db.Rollback(cfg.PGDSN, migrations.FS, r.steps, logger)
	default:
		err = db.Migrate(cfg.PGDSN, migrations.FS, logger)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", direction)
	return nil
}
