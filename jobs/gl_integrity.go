package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	jobmetrics "github.com/razalrahmanp/palaka-sub014/internal/jobs"
)

// Integrity check names, also used as metric labels.
const (
	CheckUnbalancedEntries = "unbalanced_entries"
	CheckUnbalancedLedger  = "unbalanced_ledger"
	CheckMissingLedgerRows = "missing_ledger_rows"
	CheckBalanceDrift      = "balance_drift"
)

// Finding is one violated ledger invariant.
type Finding struct {
	Check     string          `json:"check"`
	Reference string          `json:"reference"`
	Expected  decimal.Decimal `json:"expected"`
	Actual    decimal.Decimal `json:"actual"`
}

func (f Finding) Error() string {
	return fmt.Sprintf("%s: %s expected %s got %s", f.Check, f.Reference, f.Expected.StringFixed(2), f.Actual.StringFixed(2))
}

// IntegritySource runs the individual ledger checks.
type IntegritySource interface {
	UnbalancedEntries(ctx context.Context) ([]Finding, error)
	UnbalancedLedger(ctx context.Context) ([]Finding, error)
	MissingLedgerRows(ctx context.Context) ([]Finding, error)
	BalanceDrift(ctx context.Context) ([]Finding, error)
}

// IntegrityReport collects the findings of one scan.
type IntegrityReport struct {
	CheckedAt time.Time `json:"checked_at"`
	Findings  []Finding `json:"findings"`
}

// Err folds every finding into one error, nil when the ledger is clean.
func (r IntegrityReport) Err() error {
	var err error
	for _, f := range r.Findings {
		err = multierr.Append(err, f)
	}
	return err
}

// CountByCheck tallies findings per check name.
func (r IntegrityReport) CountByCheck() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[f.Check]++
	}
	return counts
}

// CheckGLIntegrity runs every check. A failing check does not stop the others;
// query errors are combined and returned next to the partial report.
func CheckGLIntegrity(ctx context.Context, source IntegritySource, now time.Time) (IntegrityReport, error) {
	report := IntegrityReport{CheckedAt: now}
	checks := []struct {
		name string
		run  func(context.Context) ([]Finding, error)
	}{
		{CheckUnbalancedEntries, source.UnbalancedEntries},
		{CheckUnbalancedLedger, source.UnbalancedLedger},
		{CheckMissingLedgerRows, source.MissingLedgerRows},
		{CheckBalanceDrift, source.BalanceDrift},
	}
	var errs error
	for _, c := range checks {
		findings, err := c.run(ctx)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		report.Findings = append(report.Findings, findings...)
	}
	return report, errs
}

// GLIntegrityJob schedules CheckGLIntegrity on the worker.
type GLIntegrityJob struct {
	source  IntegritySource
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewGLIntegrityJob wires the integrity scan handler.
func NewGLIntegrityJob(source IntegritySource, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &GLIntegrityJob{
		source:  source,
		logger:  logger,
		metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle runs the scan. Findings are reported through logs and metrics; only
// query failures fail the task.
func (j *GLIntegrityJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.source == nil {
		return errors.New("gl integrity: handler not configured")
	}
	if len(t.Payload()) > 0 {
		var payload GLIntegrityPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	tracker := j.metrics.Track(TaskGLIntegrity)
	defer func() { err = tracker.End(err) }()

	logger := j.logger.With(slog.String("job", TaskGLIntegrity))
	report, err := CheckGLIntegrity(ctx, j.source, j.clock())
	for _, f := range report.Findings {
		logger.Warn("ledger integrity violation",
			slog.String("check", f.Check),
			slog.String("reference", f.Reference),
			slog.String("expected", f.Expected.StringFixed(2)),
			slog.String("actual", f.Actual.StringFixed(2)),
		)
	}
	for check, n := range report.CountByCheck() {
		j.metrics.AddFindings(check, n)
	}
	if err != nil {
		logger.Error("integrity scan incomplete", slog.Any("error", err))
		return err
	}
	logger.Info("integrity scan finished", slog.Int("findings", len(report.Findings)))
	return nil
}
