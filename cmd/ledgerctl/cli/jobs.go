package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/razalrahmanp/palaka-sub014/internal/app"
	"github.com/razalrahmanp/palaka-sub014/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	subtypes  []string
}

// NewJobsCLI initialises the CLI helpers. Scheduled recalculations triggered
// by hand use subtypes as their scope.
func NewJobsCLI(opts asynq.RedisClientOpt, subtypes []string) *JobsCLI {
	return &JobsCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts), subtypes: subtypes}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		err = multierr.Append(err, c.inspector.Close())
	}
	if c.client != nil {
		err = multierr.Append(err, c.client.Close())
	}
	return err
}

// TaskFor builds the default task for a job name.
func (c *JobsCLI) TaskFor(name string) (*asynq.Task, error) {
	switch name {
	case jobs.TaskBalanceRecalc:
		return jobs.NewBalanceRecalcTask(jobs.BalanceRecalcPayload{Subtypes: c.subtypes, ScheduledFor: time.Now().UTC()})
	case jobs.TaskGLIntegrity:
		return jobs.NewGLIntegrityTask(time.Now().UTC())
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// Trigger enqueues a supported job by name with default payload.
func (c *JobsCLI) Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	task, err := c.TaskFor(name)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// CreateJobsCommand creates the jobs command group.
func CreateJobsCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "jobs",
		Short: "trigger and inspect background jobs",
	}
	c.AddCommand(&cobra.Command{
		Use:       "trigger <job>",
		Short:     "enqueue a job now",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{jobs.TaskBalanceRecalc, jobs.TaskGLIntegrity},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJobsCLI(func(jc *JobsCLI) error {
				info, err := jc.Trigger(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
				return nil
			})
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "show default queue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJobsCLI(func(jc *JobsCLI) error {
				stats, err := jc.InspectQueue()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
					stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
				return nil
			})
		},
	})
	return c
}

func withJobsCLI(fn func(*JobsCLI) error) (err error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	jc := NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}, cfg.RecalcSubtypes)
	defer func() { err = multierr.Append(err, jc.Close()) }()
	return fn(jc)
}
