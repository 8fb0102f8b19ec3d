package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysheetRow is one posted ledger row joined with its account.
type DaysheetRow struct {
	JournalEntryID int64
	JournalNumber  string
	EntryDate      time.Time
	LineNumber     int
	AccountCode    string
	AccountName    string
	Description    string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	IsReversal     bool
}

// DaysheetLine is a ledger row inside a daysheet entry.
type DaysheetLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	IsReversal  bool            `json:"is_reversal"`
}

// DaysheetEntry groups the rows written by one journal entry.
type DaysheetEntry struct {
	JournalEntryID int64           `json:"journal_entry_id"`
	JournalNumber  string          `json:"journal_number"`
	EntryDate      time.Time       `json:"entry_date"`
	Lines          []DaysheetLine  `json:"lines"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
}

// Daysheet lists ledger activity for a date range.
type Daysheet struct {
	Entries     []DaysheetEntry `json:"entries"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// BuildDaysheet groups ordered rows by journal entry. Reversal rows form their
// own group so the original posting and its undo stay distinguishable.
func BuildDaysheet(rows []DaysheetRow) Daysheet {
	var sheet Daysheet
	type groupKey struct {
		id       int64
		reversal bool
	}
	index := map[groupKey]int{}
	for _, row := range rows {
		key := groupKey{id: row.JournalEntryID, reversal: row.IsReversal}
		pos, ok := index[key]
		if !ok {
			sheet.Entries = append(sheet.Entries, DaysheetEntry{
				JournalEntryID: row.JournalEntryID,
				JournalNumber:  row.JournalNumber,
				EntryDate:      row.EntryDate,
			})
			pos = len(sheet.Entries) - 1
			index[key] = pos
		}
		entry := &sheet.Entries[pos]
		entry.Lines = append(entry.Lines, DaysheetLine{
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Description: row.Description,
			Debit:       row.Debit,
			Credit:      row.Credit,
			IsReversal:  row.IsReversal,
		})
		entry.TotalDebit = entry.TotalDebit.Add(row.Debit)
		entry.TotalCredit = entry.TotalCredit.Add(row.Credit)
		sheet.TotalDebit = sheet.TotalDebit.Add(row.Debit)
		sheet.TotalCredit = sheet.TotalCredit.Add(row.Credit)
	}
	return sheet
}
