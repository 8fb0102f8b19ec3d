package accounts

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account increases.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

var normalBalances = map[AccountType]NormalBalance{
	AccountTypeAsset:     NormalBalanceDebit,
	AccountTypeExpense:   NormalBalanceDebit,
	AccountTypeLiability: NormalBalanceCredit,
	AccountTypeEquity:    NormalBalanceCredit,
	AccountTypeRevenue:   NormalBalanceCredit,
}

// Cash-like subtypes targeted by the nightly balance repair.
const (
	SubtypeBank = "BANK"
	SubtypeUPI  = "UPI"
	SubtypeCash = "CASH"
)

var upper = cases.Upper(language.Und)

// ParseAccountType normalises raw input into a known AccountType.
func ParseAccountType(raw string) (AccountType, error) {
	t := AccountType(upper.String(strings.TrimSpace(raw)))
	if _, ok := normalBalances[t]; !ok {
		return "", shared.Validationf("unknown account type %q", raw)
	}
	return t, nil
}

// NormalizeSubtype trims and upper-cases a subtype label.
func NormalizeSubtype(raw string) string {
	return upper.String(strings.TrimSpace(raw))
}

// NormalBalanceFor returns the normal balance implied by an account type.
func NormalBalanceFor(t AccountType) (NormalBalance, error) {
	nb, ok := normalBalances[t]
	if !ok {
		return "", shared.Validationf("unknown account type %q", t)
	}
	return nb, nil
}

// Delta returns the signed change a debit/credit pair applies to an account
// with this normal balance.
func (n NormalBalance) Delta(debit, credit decimal.Decimal) decimal.Decimal {
	if n == NormalBalanceCredit {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// Account models a chart of accounts node.
type Account struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	Subtype        string          `json:"subtype"`
	NormalBalance  NormalBalance   `json:"normal_balance"`
	ParentID       *int64          `json:"parent_id,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (a Account) String() string {
	return fmt.Sprintf("%s %s", a.Code, a.Name)
}

// CreateInput captures a new account.
type CreateInput struct {
	Code           string
	Name           string
	Type           AccountType
	Subtype        string
	ParentID       *int64
	OpeningBalance decimal.Decimal
}

// ListFilter narrows account listings.
type ListFilter struct {
	Type       AccountType
	Subtype    string
	ActiveOnly bool
}
