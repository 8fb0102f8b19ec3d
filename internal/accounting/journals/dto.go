package journals

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/httpx"
)

// LineInput describes one requested journal line.
type LineInput struct {
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// CreateInput groups fields required to create a draft entry.
type CreateInput struct {
	JournalNumber      string
	EntryDate          time.Time
	Description        string
	Reference          string
	SourceDocumentType string
	SourceDocumentID   *uuid.UUID
	CreatedBy          int64
	Lines              []LineInput
}

// Validate checks structural rules. Balance is enforced at posting time.
func (in *CreateInput) Validate() error {
	if in.EntryDate.IsZero() {
		return shared.Validationf("entry date required")
	}
	if len(in.Lines) == 0 {
		return shared.Validationf("at least one line required")
	}
	in.JournalNumber = strings.TrimSpace(in.JournalNumber)
	in.SourceDocumentType = strings.TrimSpace(in.SourceDocumentType)
	if in.SourceDocumentID != nil && in.SourceDocumentType == "" {
		return shared.Validationf("source document type required with source document id")
	}
	for idx := range in.Lines {
		line := &in.Lines[idx]
		if line.AccountID <= 0 {
			return shared.Validationf("line %d missing account", idx+1)
		}
		line.Debit = line.Debit.Round(shared.AmountPlaces)
		line.Credit = line.Credit.Round(shared.AmountPlaces)
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.Validationf("line %d negative amount", idx+1)
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return shared.Validationf("line %d must carry exactly one of debit or credit", idx+1)
		}
	}
	return nil
}

// PostInput wraps parameters for posting.
type PostInput struct {
	EntryID int64
	ActorID int64
}

// ReverseInput wraps parameters for reverse-or-delete.
type ReverseInput struct {
	EntryID int64
	ActorID int64
	Reason  string
}

// ReverseResult reports what a reverse-or-delete did.
type ReverseResult struct {
	Entry        JournalEntry       `json:"entry"`
	WasPosted    bool               `json:"was_posted"`
	ReversalRows []GeneralLedgerRow `json:"reversal_rows,omitempty"`
}

// CreateJournalRequest is the JSON body for POST /journals.
type CreateJournalRequest struct {
	JournalNumber      string                     `json:"journal_number" validate:"omitempty,max=40"`
	EntryDate          string                     `json:"entry_date" validate:"required,datetime=2006-01-02"`
	Description        string                     `json:"description" validate:"max=500"`
	Reference          string                     `json:"reference" validate:"max=120"`
	SourceDocumentType string                     `json:"source_document_type" validate:"max=60"`
	SourceDocumentID   string                     `json:"source_document_id" validate:"omitempty,uuid"`
	Lines              []CreateJournalLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateJournalLineRequest is one line of CreateJournalRequest.
type CreateJournalLineRequest struct {
	AccountID   int64           `json:"account_id" validate:"required,gt=0"`
	Debit       decimal.Decimal `json:"debit_amount"`
	Credit      decimal.Decimal `json:"credit_amount"`
	Description string          `json:"description" validate:"max=255"`
}

// ToInput converts the request into service input.
func (r CreateJournalRequest) ToInput(actorID int64) (CreateInput, error) {
	date, err := time.Parse(httpx.DateLayout, r.EntryDate)
	if err != nil {
		return CreateInput{}, shared.Validationf("entry_date: %v", err)
	}
	in := CreateInput{
		JournalNumber:      r.JournalNumber,
		EntryDate:          date,
		Description:        r.Description,
		Reference:          r.Reference,
		SourceDocumentType: r.SourceDocumentType,
		CreatedBy:          actorID,
		Lines:              make([]LineInput, 0, len(r.Lines)),
	}
	if r.SourceDocumentID != "" {
		id, err := uuid.Parse(r.SourceDocumentID)
		if err != nil {
			return CreateInput{}, fmt.Errorf("%w: source_document_id: %v", shared.ErrValidation, err)
		}
		in.SourceDocumentID = &id
	}
	for _, line := range r.Lines {
		in.Lines = append(in.Lines, LineInput{
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
		})
	}
	return in, nil
}
