package journals

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/periods"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	internalShared "github.com/razalrahmanp/palaka-sub014/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Invalidator drops cached reports after balances move.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Observer receives posting outcomes for metrics.
type Observer interface {
	ObservePosting(result string)
	ObserveReversal(posted bool)
}

type Service struct {
	repo        Repository
	calendar    periods.Calendar
	audit       AuditPort
	logger      *slog.Logger
	invalidator Invalidator
	observer    Observer
	now         func() time.Time
}

func NewService(repo Repository, calendar periods.Calendar, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, calendar: calendar, audit: audit, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SetInvalidator wires the report cache.
func (s *Service) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// SetObserver wires posting metrics.
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

func (s *Service) Get(ctx context.Context, id int64) (JournalEntry, error) {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return JournalEntry{}, err
	}
	return entry.withTotals(), nil
}

// List returns one page of entries and the unpaged total.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]JournalEntry, int, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, shared.Validationf("to before from")
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// CreateDraft stores a DRAFT entry and its lines atomically. Balances are untouched.
func (s *Service) CreateDraft(ctx context.Context, in CreateInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		accts, err := tx.GetAccounts(ctx, lineAccountIDs(in.Lines))
		if err != nil {
			return err
		}
		for idx, line := range in.Lines {
			acc, ok := accts[line.AccountID]
			if !ok {
				return shared.NotFoundf("line %d account %d", idx+1, line.AccountID)
			}
			if !acc.IsActive {
				return fmt.Errorf("%w: line %d account %s", shared.ErrAccountInactive, idx+1, acc.Code)
			}
		}
		if in.JournalNumber == "" {
			number, err := tx.NextJournalNumber(ctx, in.EntryDate)
			if err != nil {
				return err
			}
			in.JournalNumber = number
		}
		inserted, err := tx.InsertJournalEntry(ctx, in)
		if err != nil {
			return err
		}
		lines, err := tx.InsertJournalLines(ctx, inserted.ID, in.Lines)
		if err != nil {
			return err
		}
		inserted.Lines = lines
		entry = inserted.withTotals()
		return nil
	})
	if err != nil {
		return JournalEntry{}, shared.StoreFailure("create journal", err)
	}
	s.record(ctx, in.CreatedBy, internalShared.AuditJournalCreate, entry.ID, map[string]any{
		"journal_number": entry.JournalNumber,
		"source_type":    entry.SourceDocumentType,
		"lines":          len(entry.Lines),
	})
	return entry, nil
}

// Post flips a DRAFT entry to POSTED, moves every account balance by its line
// delta and appends the ledger rows, all in one transaction.
func (s *Service) Post(ctx context.Context, input PostInput) (JournalEntry, error) {
	if input.EntryID <= 0 {
		return JournalEntry{}, shared.Validationf("entry id required")
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, lines, err := tx.GetJournalForUpdate(ctx, input.EntryID)
		if err != nil {
			return err
		}
		if current.Status == JournalStatusPosted {
			return fmt.Errorf("%w: %s", shared.ErrAlreadyPosted, current.JournalNumber)
		}
		if len(lines) == 0 {
			return shared.Validationf("entry %s has no lines", current.JournalNumber)
		}
		debit, credit := Totals(lines)
		if !shared.Balanced(debit, credit) {
			return fmt.Errorf("%w: debit %s credit %s", shared.ErrUnbalanced, shared.Numeric(debit), shared.Numeric(credit))
		}
		accts, err := loadLineAccounts(ctx, tx, lines)
		if err != nil {
			return err
		}
		postedAt := s.now()
		if err := tx.MarkPosted(ctx, current.ID, input.ActorID, postedAt); err != nil {
			return err
		}
		rows, err := s.applyLines(ctx, tx, current, lines, accts, false)
		if err != nil {
			return err
		}
		if err := tx.InsertLedgerRows(ctx, rows); err != nil {
			return err
		}
		current.Status = JournalStatusPosted
		current.PostedAt = &postedAt
		if input.ActorID > 0 {
			actor := input.ActorID
			current.PostedBy = &actor
		}
		current.Lines = lines
		entry = current.withTotals()
		return nil
	})
	if err != nil {
		err = shared.StoreFailure("post journal", err)
		s.observePosting(err)
		if errors.Is(err, shared.ErrStoreFailure) {
			s.logger.ErrorContext(ctx, "journal posting rolled back; status, balances and ledger unchanged",
				slog.Int64("entry_id", input.EntryID), slog.Any("error", err))
		}
		return JournalEntry{}, err
	}
	s.observePosting(nil)
	s.bump(ctx)
	s.record(ctx, input.ActorID, internalShared.AuditJournalPost, entry.ID, map[string]any{
		"journal_number": entry.JournalNumber,
		"total":          shared.Numeric(entry.TotalDebit),
	})
	return entry, nil
}

// ReverseOrDelete removes an entry. A DRAFT is simply deleted. A POSTED entry
// first has every balance effect undone and a reversing ledger row appended
// per line; ledger history is never deleted.
func (s *Service) ReverseOrDelete(ctx context.Context, input ReverseInput) (ReverseResult, error) {
	if input.EntryID <= 0 {
		return ReverseResult{}, shared.Validationf("entry id required")
	}
	var result ReverseResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, lines, err := tx.GetJournalForUpdate(ctx, input.EntryID)
		if err != nil {
			return err
		}
		current.Lines = lines
		result.Entry = current.withTotals()
		result.WasPosted = current.Status == JournalStatusPosted
		if result.WasPosted {
			accts, err := loadLineAccounts(ctx, tx, lines)
			if err != nil {
				return err
			}
			rows, err := s.applyLines(ctx, tx, current, lines, accts, true)
			if err != nil {
				return err
			}
			if err := tx.InsertLedgerRows(ctx, rows); err != nil {
				return err
			}
			result.ReversalRows = rows
		}
		return tx.DeleteJournal(ctx, current.ID)
	})
	if err != nil {
		err = shared.StoreFailure("reverse journal", err)
		if errors.Is(err, shared.ErrStoreFailure) {
			s.logger.ErrorContext(ctx, "journal reversal rolled back",
				slog.Int64("entry_id", input.EntryID), slog.Any("error", err))
		}
		return ReverseResult{}, err
	}
	if s.observer != nil {
		s.observer.ObserveReversal(result.WasPosted)
	}
	action := internalShared.AuditJournalDelete
	if result.WasPosted {
		action = internalShared.AuditJournalReverse
		s.bump(ctx)
	}
	s.record(ctx, input.ActorID, action, result.Entry.ID, map[string]any{
		"journal_number": result.Entry.JournalNumber,
		"reason":         input.Reason,
	})
	return result, nil
}

// ReverseBySource reverses or deletes every entry raised by a business document,
// used when that document is deleted upstream.
func (s *Service) ReverseBySource(ctx context.Context, docType string, docID uuid.UUID, actorID int64) ([]ReverseResult, error) {
	if docType == "" || docID == uuid.Nil {
		return nil, shared.Validationf("source document type and id required")
	}
	ids, err := s.repo.FindBySource(ctx, docType, docID)
	if err != nil {
		return nil, err
	}
	results := make([]ReverseResult, 0, len(ids))
	for _, id := range ids {
		res, err := s.ReverseOrDelete(ctx, ReverseInput{EntryID: id, ActorID: actorID, Reason: "source " + docType + " deleted"})
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// applyLines moves balances in ascending account order and builds the matching
// ledger rows. Reversals negate the delta and swap the sides.
func (s *Service) applyLines(ctx context.Context, tx TxRepository, entry JournalEntry, lines []JournalLine, accts map[int64]accounts.Account, reversal bool) ([]GeneralLedgerRow, error) {
	ordered := slices.Clone(lines)
	slices.SortStableFunc(ordered, func(a, b JournalLine) int {
		if c := cmp.Compare(a.AccountID, b.AccountID); c != 0 {
			return c
		}
		return cmp.Compare(a.LineNumber, b.LineNumber)
	})
	year, period := s.calendar.Resolve(entry.EntryDate)
	rows := make([]GeneralLedgerRow, 0, len(ordered))
	for _, line := range ordered {
		debit, credit := line.DebitAmount, line.CreditAmount
		if reversal {
			debit, credit = credit, debit
		}
		delta := accts[line.AccountID].NormalBalance.Delta(debit, credit)
		balance, err := tx.IncrementBalance(ctx, line.AccountID, delta)
		if err != nil {
			return nil, err
		}
		rows = append(rows, GeneralLedgerRow{
			JournalEntryID: entry.ID,
			JournalNumber:  entry.JournalNumber,
			LineNumber:     line.LineNumber,
			AccountID:      line.AccountID,
			EntryDate:      entry.EntryDate,
			Description:    ledgerDescription(entry, line, reversal),
			DebitAmount:    debit,
			CreditAmount:   credit,
			Delta:          delta,
			RunningBalance: balance,
			FiscalYear:     year,
			FiscalPeriod:   period,
			IsReversal:     reversal,
		})
	}
	return rows, nil
}

func loadLineAccounts(ctx context.Context, tx TxRepository, lines []JournalLine) (map[int64]accounts.Account, error) {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.AccountID)
	}
	accts, err := tx.GetAccounts(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if _, ok := accts[line.AccountID]; !ok {
			return nil, shared.NotFoundf("line %d account %d", line.LineNumber, line.AccountID)
		}
	}
	return accts, nil
}

func lineAccountIDs(lines []LineInput) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.AccountID)
	}
	return uniqueIDs(ids)
}

func uniqueIDs(ids []int64) []int64 {
	slices.Sort(ids)
	return slices.Compact(ids)
}

func ledgerDescription(entry JournalEntry, line JournalLine, reversal bool) string {
	desc := line.Description
	if desc == "" {
		desc = entry.Description
	}
	if reversal {
		return "Reversal: " + desc
	}
	return desc
}

func (s *Service) observePosting(err error) {
	if s.observer == nil {
		return
	}
	switch {
	case err == nil:
		s.observer.ObservePosting("posted")
	case errors.Is(err, shared.ErrUnbalanced):
		s.observer.ObservePosting("unbalanced")
	case errors.Is(err, shared.ErrAlreadyPosted):
		s.observer.ObservePosting("already_posted")
	default:
		s.observer.ObservePosting("error")
	}
}

func (s *Service) bump(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.WarnContext(ctx, "report cache bump failed", slog.Any("error", err))
	}
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entryID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.JournalAudit(actorID, action, entryID, s.now(), meta))
}
