package reports

import "time"

// TrialBalanceReport wraps a trial balance with its window.
type TrialBalanceReport struct {
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
	GeneratedAt time.Time    `json:"generated_at"`
	Report      TrialBalance `json:"report"`
}

// IncomeStatementReport wraps an income statement with its window.
type IncomeStatementReport struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	GeneratedAt time.Time       `json:"generated_at"`
	Report      IncomeStatement `json:"report"`
}

// BalanceSheetReport wraps a balance sheet with its as-of date.
type BalanceSheetReport struct {
	AsOf        time.Time    `json:"as_of"`
	GeneratedAt time.Time    `json:"generated_at"`
	Report      BalanceSheet `json:"report"`
}

// DaysheetReport wraps a daysheet with its window.
type DaysheetReport struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	GeneratedAt time.Time `json:"generated_at"`
	Report      Daysheet  `json:"report"`
}
