package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
)

// CurrentEarningsLabel names the synthetic equity row for undistributed profit.
const CurrentEarningsLabel = "Current Earnings"

// BalanceSheetAccount summarises an account for assets, liabilities, or equity.
type BalanceSheetAccount struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceSheetSection contains the accounts and totals for a classification.
type BalanceSheetSection struct {
	Label    string                `json:"label"`
	Accounts []BalanceSheetAccount `json:"accounts"`
	Total    decimal.Decimal       `json:"total"`
}

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	CurrentEarnings           decimal.Decimal     `json:"current_earnings"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"total_liabilities_and_equity"`
	Balanced                  bool                `json:"balanced"`
}

// BuildBalanceSheet aggregates closing balances into assets, liabilities and
// equity. Revenue less expense to date is carried into equity as current
// earnings so the sheet balances before year-end closing.
func BuildBalanceSheet(balances []AccountBalance) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets"}
	liabilities := BalanceSheetSection{Label: "Liabilities"}
	equity := BalanceSheetSection{Label: "Equity"}
	var earnings decimal.Decimal

	for _, acc := range balances {
		balance := acc.Closing()
		row := BalanceSheetAccount{Code: acc.Code, Name: acc.Name, Balance: balance}
		switch acc.Type {
		case accounts.AccountTypeAsset:
			if !balance.IsZero() {
				assets.Accounts = append(assets.Accounts, row)
			}
			assets.Total = assets.Total.Add(balance)
		case accounts.AccountTypeLiability:
			if !balance.IsZero() {
				liabilities.Accounts = append(liabilities.Accounts, row)
			}
			liabilities.Total = liabilities.Total.Add(balance)
		case accounts.AccountTypeEquity:
			if !balance.IsZero() {
				equity.Accounts = append(equity.Accounts, row)
			}
			equity.Total = equity.Total.Add(balance)
		case accounts.AccountTypeRevenue:
			earnings = earnings.Add(balance)
		case accounts.AccountTypeExpense:
			earnings = earnings.Sub(balance)
		}
	}

	sort.Slice(assets.Accounts, func(i, j int) bool { return assets.Accounts[i].Code < assets.Accounts[j].Code })
	sort.Slice(liabilities.Accounts, func(i, j int) bool { return liabilities.Accounts[i].Code < liabilities.Accounts[j].Code })
	sort.Slice(equity.Accounts, func(i, j int) bool { return equity.Accounts[i].Code < equity.Accounts[j].Code })
	if !earnings.IsZero() {
		equity.Accounts = append(equity.Accounts, BalanceSheetAccount{Name: CurrentEarningsLabel, Balance: earnings})
		equity.Total = equity.Total.Add(earnings)
	}

	total := liabilities.Total.Add(equity.Total)
	return BalanceSheet{
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		CurrentEarnings:           earnings,
		TotalLiabilitiesAndEquity: total,
		Balanced:                  assets.Total.Equal(total),
	}
}
