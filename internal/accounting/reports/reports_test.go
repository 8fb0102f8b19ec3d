package reports

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	_ "github.com/razalrahmanp/palaka-sub014/testing"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sampleBalances() []AccountBalance {
	debitN, creditN := accounts.NormalBalanceDebit, accounts.NormalBalanceCredit
	return []AccountBalance{
		{Code: "1000", Name: "Cash", Type: accounts.AccountTypeAsset, NormalBalance: debitN, Opening: dec("1000"), Debit: dec("500"), Credit: dec("200")},
		{Code: "1900", Name: "Old Till", Type: accounts.AccountTypeAsset, NormalBalance: debitN},
		{Code: "3000", Name: "Capital", Type: accounts.AccountTypeEquity, NormalBalance: creditN, Opening: dec("1000")},
		{Code: "4000", Name: "Sales", Type: accounts.AccountTypeRevenue, NormalBalance: creditN, Credit: dec("500")},
		{Code: "6100", Name: "Rent", Type: accounts.AccountTypeExpense, NormalBalance: debitN, Debit: dec("200")},
	}
}

func TestBuildTrialBalance(t *testing.T) {
	tb := BuildTrialBalance(sampleBalances())
	if len(tb.Groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(tb.Groups))
	}
	want := TrialBalanceGroup{
		Key: "10",
		Accounts: []TrialBalanceAccount{{
			Code: "1000", Name: "Cash", Type: "ASSET",
			Opening: dec("1000"), Debit: dec("500"), Credit: dec("200"), Closing: dec("1300"), ClosingDebit: dec("1300"),
		}},
		Debit: dec("500"), Credit: dec("200"), ClosingDebit: dec("1300"),
	}
	if diff := cmp.Diff(want, tb.Groups[0], decimalEqual); diff != "" {
		t.Fatalf("cash group mismatch (-want +got):\n%s", diff)
	}
	if got := tb.Groups[1].Accounts[0]; !got.ClosingCredit.Equal(dec("1000")) || !got.ClosingDebit.IsZero() {
		t.Fatalf("capital should close on the credit side: %+v", got)
	}
	if !tb.TotalDebit.Equal(dec("700")) || !tb.TotalCredit.Equal(dec("700")) {
		t.Fatalf("unexpected movement totals: %s / %s", tb.TotalDebit, tb.TotalCredit)
	}
	if !tb.TotalClosingDebit.Equal(dec("1500")) || !tb.TotalClosingCredit.Equal(dec("1500")) {
		t.Fatalf("unexpected closing totals: %s / %s", tb.TotalClosingDebit, tb.TotalClosingCredit)
	}
	if !tb.Balanced {
		t.Fatalf("expected balanced trial balance")
	}
}

func TestTrialBalanceFlagsImbalance(t *testing.T) {
	balances := sampleBalances()
	balances[0].Opening = dec("1100")
	if BuildTrialBalance(balances).Balanced {
		t.Fatalf("unbalanced opening balances must clear the flag")
	}
}

func TestBuildIncomeStatement(t *testing.T) {
	is := BuildIncomeStatement(sampleBalances())
	want := IncomeStatement{
		Revenue:   IncomeStatementSection{Label: "Revenue", Accounts: []IncomeStatementAccount{{Code: "4000", Name: "Sales", Amount: dec("500")}}, Total: dec("500")},
		Expense:   IncomeStatementSection{Label: "Expense", Accounts: []IncomeStatementAccount{{Code: "6100", Name: "Rent", Amount: dec("200")}}, Total: dec("200")},
		NetIncome: dec("300"),
	}
	if diff := cmp.Diff(want, is, decimalEqual); diff != "" {
		t.Fatalf("income statement mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildBalanceSheet(t *testing.T) {
	bs := BuildBalanceSheet(sampleBalances())
	if !bs.Assets.Total.Equal(dec("1300")) {
		t.Fatalf("expected assets 1300 got %s", bs.Assets.Total)
	}
	if len(bs.Assets.Accounts) != 1 {
		t.Fatalf("zero balance accounts should be hidden, got %d rows", len(bs.Assets.Accounts))
	}
	if !bs.Liabilities.Total.IsZero() {
		t.Fatalf("expected no liabilities got %s", bs.Liabilities.Total)
	}
	if !bs.CurrentEarnings.Equal(dec("300")) {
		t.Fatalf("expected current earnings 300 got %s", bs.CurrentEarnings)
	}
	last := bs.Equity.Accounts[len(bs.Equity.Accounts)-1]
	if last.Name != CurrentEarningsLabel {
		t.Fatalf("expected current earnings row last, got %q", last.Name)
	}
	if !bs.TotalLiabilitiesAndEquity.Equal(dec("1300")) || !bs.Balanced {
		t.Fatalf("expected balanced sheet, L+E %s", bs.TotalLiabilitiesAndEquity)
	}
}

func TestBuildDaysheet(t *testing.T) {
	day := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	rows := []DaysheetRow{
		{JournalEntryID: 1, JournalNumber: "JE-1", EntryDate: day, LineNumber: 1, AccountCode: "1000", Debit: dec("500")},
		{JournalEntryID: 1, JournalNumber: "JE-1", EntryDate: day, LineNumber: 2, AccountCode: "4000", Credit: dec("500")},
		{JournalEntryID: 1, JournalNumber: "JE-1", EntryDate: day, LineNumber: 1, AccountCode: "1000", Credit: dec("500"), IsReversal: true},
		{JournalEntryID: 1, JournalNumber: "JE-1", EntryDate: day, LineNumber: 2, AccountCode: "4000", Debit: dec("500"), IsReversal: true},
		{JournalEntryID: 2, JournalNumber: "JE-2", EntryDate: day, LineNumber: 1, AccountCode: "6100", Debit: dec("75.25")},
		{JournalEntryID: 2, JournalNumber: "JE-2", EntryDate: day, LineNumber: 2, AccountCode: "1000", Credit: dec("75.25")},
	}
	sheet := BuildDaysheet(rows)
	if len(sheet.Entries) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(sheet.Entries))
	}
	if !sheet.Entries[1].Lines[0].IsReversal {
		t.Fatalf("second group should hold the reversal rows")
	}
	for _, e := range sheet.Entries {
		if !e.TotalDebit.Equal(e.TotalCredit) {
			t.Fatalf("entry %s unbalanced", e.JournalNumber)
		}
	}
	if !sheet.TotalDebit.Equal(dec("1075.25")) || !sheet.TotalCredit.Equal(dec("1075.25")) {
		t.Fatalf("unexpected totals %s / %s", sheet.TotalDebit, sheet.TotalCredit)
	}
}
