package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerRejectsIncompleteRegistrations(t *testing.T) {
	redis := miniredis.RunT(t)
	opts := asynq.RedisClientOpt{Addr: redis.Addr()}

	_, err := NewWorker(WorkerConfig{
		RedisOpts: opts,
		Handlers:  []TaskHandler{{Type: TaskBalanceRecalc}},
	})
	require.ErrorContains(t, err, TaskBalanceRecalc)

	task, err := NewGLIntegrityTask(time.Date(2026, 4, 1, 2, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = NewWorker(WorkerConfig{
		RedisOpts: opts,
		Cron:      []CronRegistration{{Spec: "every tuesday-ish", Task: task}},
	})
	require.ErrorContains(t, err, TaskGLIntegrity)
}

func TestNewWorkerSkipsBlankCron(t *testing.T) {
	redis := miniredis.RunT(t)
	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: redis.Addr()},
		Handlers: []TaskHandler{{Type: TaskGLIntegrity, Handler: func(context.Context, *asynq.Task) error {
			return nil
		}}},
		Cron: []CronRegistration{{Spec: ""}},
	})
	require.NoError(t, err)
	require.NotNil(t, w.scheduler)
}
