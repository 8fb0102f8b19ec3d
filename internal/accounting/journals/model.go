package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
)

// JournalStatus enumerates journal lifecycle values.
type JournalStatus string

const (
	JournalStatusDraft  JournalStatus = "DRAFT"
	JournalStatusPosted JournalStatus = "POSTED"
)

// JournalEntry captures a transaction header and its lines.
type JournalEntry struct {
	ID                 int64           `json:"id"`
	JournalNumber      string          `json:"journal_number"`
	EntryDate          time.Time       `json:"entry_date"`
	Description        string          `json:"description"`
	Reference          string          `json:"reference"`
	Status             JournalStatus   `json:"status"`
	SourceDocumentType string          `json:"source_document_type,omitempty"`
	SourceDocumentID   *uuid.UUID      `json:"source_document_id,omitempty"`
	PostedAt           *time.Time      `json:"posted_at,omitempty"`
	PostedBy           *int64          `json:"posted_by,omitempty"`
	CreatedBy          int64           `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Lines              []JournalLine   `json:"lines,omitempty"`
	TotalDebit         decimal.Decimal `json:"total_debit"`
	TotalCredit        decimal.Decimal `json:"total_credit"`
}

// JournalLine stores a debit or credit amount for an account.
type JournalLine struct {
	ID             int64           `json:"id"`
	JournalEntryID int64           `json:"journal_entry_id"`
	LineNumber     int             `json:"line_number"`
	AccountID      int64           `json:"account_id"`
	DebitAmount    decimal.Decimal `json:"debit_amount"`
	CreditAmount   decimal.Decimal `json:"credit_amount"`
	Description    string          `json:"description"`
}

// GeneralLedgerRow is the per-account projection of a posted line.
type GeneralLedgerRow struct {
	ID             int64           `json:"id"`
	JournalEntryID int64           `json:"journal_entry_id"`
	JournalNumber  string          `json:"journal_number"`
	LineNumber     int             `json:"line_number"`
	AccountID      int64           `json:"account_id"`
	EntryDate      time.Time       `json:"entry_date"`
	Description    string          `json:"description"`
	DebitAmount    decimal.Decimal `json:"debit_amount"`
	CreditAmount   decimal.Decimal `json:"credit_amount"`
	Delta          decimal.Decimal `json:"delta"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	FiscalYear     int             `json:"fiscal_year"`
	FiscalPeriod   int             `json:"fiscal_period"`
	IsReversal     bool            `json:"is_reversal"`
}

// Totals sums debit and credit over lines.
func Totals(lines []JournalLine) (debit, credit decimal.Decimal) {
	for _, line := range lines {
		debit = debit.Add(line.DebitAmount)
		credit = credit.Add(line.CreditAmount)
	}
	return debit, credit
}

// withTotals fills the cached totals from Lines.
func (e JournalEntry) withTotals() JournalEntry {
	e.TotalDebit, e.TotalCredit = Totals(e.Lines)
	return e
}

// IsBalanced reports whether the entry's lines balance at cent precision.
func (e JournalEntry) IsBalanced() bool {
	debit, credit := Totals(e.Lines)
	return shared.Balanced(debit, credit)
}

// ListFilter narrows journal listings.
type ListFilter struct {
	Status     JournalStatus
	From       *time.Time
	To         *time.Time
	SourceType string
	Limit      int
	Offset     int
}
