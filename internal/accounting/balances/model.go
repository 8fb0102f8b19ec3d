package balances

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Scope selects the accounts a recalculation rewrites. Empty scope means
// every account.
type Scope struct {
	AccountIDs []int64
	Subtypes   []string
}

// Label identifies the scope for locks and logs.
func (s Scope) Label() string {
	if len(s.AccountIDs) > 0 {
		return "accounts"
	}
	if len(s.Subtypes) > 0 {
		return strings.Join(s.Subtypes, ",")
	}
	return "all"
}

// LedgerEntry is the slice of a ledger row the replay needs.
type LedgerEntry struct {
	ID             int64
	Delta          decimal.Decimal
	RunningBalance decimal.Decimal
}

// RunningBalance is a corrected running balance for one ledger row.
type RunningBalance struct {
	LedgerID int64
	Balance  decimal.Decimal
}

// Result reports the recalculated balance of one account.
type Result struct {
	AccountID     int64           `json:"account_id"`
	Code          string          `json:"code"`
	Previous      decimal.Decimal `json:"previous"`
	Recalculated  decimal.Decimal `json:"recalculated"`
	Drift         decimal.Decimal `json:"drift"`
	Rows          int             `json:"rows"`
	RowsRewritten int             `json:"rows_rewritten"`
}

// Replay folds deltas over opening in ledger order. Only rows whose stored
// running balance disagrees are returned for rewrite.
func Replay(opening decimal.Decimal, rows []LedgerEntry) (decimal.Decimal, []RunningBalance) {
	balance := opening
	var changed []RunningBalance
	for _, row := range rows {
		balance = balance.Add(row.Delta)
		if !balance.Equal(row.RunningBalance) {
			changed = append(changed, RunningBalance{LedgerID: row.ID, Balance: balance})
		}
	}
	return balance, changed
}
