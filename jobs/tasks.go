package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBalanceRecalc replays ledger rows into cached account balances.
	TaskBalanceRecalc = "ledger:balances:recalculate"
	// TaskGLIntegrity scans the ledger for broken invariants.
	TaskGLIntegrity = "ledger:gl:integrity"
)

// BalanceRecalcPayload selects the accounts to recalculate. An empty payload
// covers every account.
type BalanceRecalcPayload struct {
	AccountIDs   []int64   `json:"account_ids,omitempty"`
	Subtypes     []string  `json:"subtypes,omitempty"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewBalanceRecalcTask constructs an Asynq task for balance recalculation.
func NewBalanceRecalcTask(payload BalanceRecalcPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalanceRecalc, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// GLIntegrityPayload carries scheduling metadata.
type GLIntegrityPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewGLIntegrityTask constructs an Asynq task for the integrity scan.
func NewGLIntegrityTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(GLIntegrityPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrity, body, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}
