package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/balances"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	jobmetrics "github.com/razalrahmanp/palaka-sub014/internal/jobs"
)

// Recalculator repairs cached balances for a scope.
type Recalculator interface {
	Recalculate(ctx context.Context, scope balances.Scope) ([]balances.Result, error)
}

// BalanceRecalcJob runs balance recalculation from the queue.
type BalanceRecalcJob struct {
	service Recalculator
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewBalanceRecalcJob wires the recalculation handler.
func NewBalanceRecalcJob(service Recalculator, logger *slog.Logger, metrics *jobmetrics.Metrics) *BalanceRecalcJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &BalanceRecalcJob{service: service, logger: logger, metrics: metrics}
}

// Handle executes one recalculation. A run already holding the scope lock is
// not an error; the task is dropped.
func (j *BalanceRecalcJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.service == nil {
		return errors.New("balance recalc: handler not configured")
	}
	var payload BalanceRecalcPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	scope := balances.Scope{AccountIDs: payload.AccountIDs, Subtypes: payload.Subtypes}
	logger := j.logger.With(slog.String("job", TaskBalanceRecalc), slog.String("scope", scope.Label()))

	tracker := j.metrics.Track(TaskBalanceRecalc)
	defer func() { err = tracker.End(err) }()

	results, err := j.service.Recalculate(ctx, scope)
	if errors.Is(err, shared.ErrConflict) {
		logger.Info("recalculation already running, skipping")
		return nil
	}
	if err != nil {
		logger.Error("recalculation failed", slog.Any("error", err))
		return err
	}
	drifted := balances.Drifted(results)
	j.metrics.AddRepaired(scope.Label(), len(drifted))
	logger.Info("recalculation finished", slog.Int("accounts", len(results)), slog.Int("repaired", len(drifted)))
	return nil
}
