package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
)

// AccountBalance models a general ledger account with aggregated movements.
// Opening follows the account's normal balance sign.
type AccountBalance struct {
	AccountID     int64
	Code          string
	Name          string
	Type          accounts.AccountType
	NormalBalance accounts.NormalBalance
	Opening       decimal.Decimal
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// Closing computes the closing balance in the normal-balance convention.
func (a AccountBalance) Closing() decimal.Decimal {
	return a.Opening.Add(a.NormalBalance.Delta(a.Debit, a.Credit))
}

// debitSide converts a normal-signed amount into debit-positive form.
func (a AccountBalance) debitSide(v decimal.Decimal) decimal.Decimal {
	if a.NormalBalance == accounts.NormalBalanceCredit {
		return v.Neg()
	}
	return v
}

// IsEmpty reports whether the account carries nothing worth printing.
func (a AccountBalance) IsEmpty() bool {
	return a.Opening.IsZero() && a.Debit.IsZero() && a.Credit.IsZero()
}

// GroupKey returns a key used for grouping trial balance rows.
func (a AccountBalance) GroupKey() string {
	if idx := strings.Index(a.Code, "."); idx > 0 {
		return a.Code[:idx]
	}
	if len(a.Code) >= 2 {
		return a.Code[:2]
	}
	return a.Code
}

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Opening       decimal.Decimal `json:"opening"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Closing       decimal.Decimal `json:"closing"`
	ClosingDebit  decimal.Decimal `json:"closing_debit"`
	ClosingCredit decimal.Decimal `json:"closing_credit"`
}

// TrialBalanceGroup aggregates accounts for presentation.
type TrialBalanceGroup struct {
	Key           string                `json:"key"`
	Accounts      []TrialBalanceAccount `json:"accounts"`
	Debit         decimal.Decimal       `json:"debit"`
	Credit        decimal.Decimal       `json:"credit"`
	ClosingDebit  decimal.Decimal       `json:"closing_debit"`
	ClosingCredit decimal.Decimal       `json:"closing_credit"`
}

// TrialBalance lists every account with period movements and closing
// balances split into debit and credit columns.
type TrialBalance struct {
	Groups             []TrialBalanceGroup `json:"groups"`
	TotalDebit         decimal.Decimal     `json:"total_debit"`
	TotalCredit        decimal.Decimal     `json:"total_credit"`
	TotalClosingDebit  decimal.Decimal     `json:"total_closing_debit"`
	TotalClosingCredit decimal.Decimal     `json:"total_closing_credit"`
	Balanced           bool                `json:"balanced"`
}

// BuildTrialBalance converts account balances into grouped trial balance data.
func BuildTrialBalance(balances []AccountBalance) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	for _, acc := range balances {
		if acc.IsEmpty() {
			continue
		}
		key := acc.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key}
			groups[key] = grp
			keys = append(keys, key)
		}
		row := TrialBalanceAccount{
			Code:    acc.Code,
			Name:    acc.Name,
			Type:    string(acc.Type),
			Opening: acc.Opening,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Closing: acc.Closing(),
		}
		if side := acc.debitSide(row.Closing); side.IsNegative() {
			row.ClosingCredit = side.Neg()
		} else {
			row.ClosingDebit = side
		}
		grp.Accounts = append(grp.Accounts, row)
		grp.Debit = grp.Debit.Add(row.Debit)
		grp.Credit = grp.Credit.Add(row.Credit)
		grp.ClosingDebit = grp.ClosingDebit.Add(row.ClosingDebit)
		grp.ClosingCredit = grp.ClosingCredit.Add(row.ClosingCredit)
	}

	sort.Strings(keys)
	result := TrialBalance{}
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalDebit = result.TotalDebit.Add(grp.Debit)
		result.TotalCredit = result.TotalCredit.Add(grp.Credit)
		result.TotalClosingDebit = result.TotalClosingDebit.Add(grp.ClosingDebit)
		result.TotalClosingCredit = result.TotalClosingCredit.Add(grp.ClosingCredit)
	}
	result.Balanced = result.TotalDebit.Equal(result.TotalCredit) &&
		result.TotalClosingDebit.Equal(result.TotalClosingCredit)
	return result
}
