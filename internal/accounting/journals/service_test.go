package journals

import (
	"context"
	"errors"
	"maps"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/periods"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	internalShared "github.com/razalrahmanp/palaka-sub014/internal/shared"
)

var errDiskFull = errors.New("disk full")

type memoryState struct {
	accounts map[int64]accounts.Account
	entries  map[int64]JournalEntry
	lines    map[int64][]JournalLine
	ledger   []GeneralLedgerRow
	nextID   int64
	seq      int64
}

func (s memoryState) clone() memoryState {
	out := s
	out.accounts = maps.Clone(s.accounts)
	out.entries = maps.Clone(s.entries)
	out.lines = maps.Clone(s.lines)
	out.ledger = slices.Clone(s.ledger)
	return out
}

type memoryRepo struct {
	state         memoryState
	failIncrement int64
}

func newMemoryRepo(accts ...accounts.Account) *memoryRepo {
	repo := &memoryRepo{state: memoryState{
		accounts: map[int64]accounts.Account{},
		entries:  map[int64]JournalEntry{},
		lines:    map[int64][]JournalLine{},
	}}
	for _, a := range accts {
		repo.state.accounts[a.ID] = a
	}
	return repo
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range m.state.entries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryRepo) Count(ctx context.Context, filter ListFilter) (int, error) {
	entries, _ := m.List(ctx, filter)
	return len(entries), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (JournalEntry, error) {
	e, ok := m.state.entries[id]
	if !ok {
		return JournalEntry{}, shared.NotFoundf("journal entry %d", id)
	}
	e.Lines = m.state.lines[id]
	return e, nil
}

func (m *memoryRepo) FindBySource(_ context.Context, docType string, docID uuid.UUID) ([]int64, error) {
	var ids []int64
	for id, e := range m.state.entries {
		if e.SourceDocumentType == docType && e.SourceDocumentID != nil && *e.SourceDocumentID == docID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := m.state.clone()
	if err := fn(ctx, m); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *memoryRepo) GetAccounts(_ context.Context, ids []int64) (map[int64]accounts.Account, error) {
	out := map[int64]accounts.Account{}
	for _, id := range ids {
		if a, ok := m.state.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *memoryRepo) NextJournalNumber(_ context.Context, date time.Time) (string, error) {
	m.state.seq++
	return FormatJournalNumber(date, m.state.seq), nil
}

func (m *memoryRepo) InsertJournalEntry(_ context.Context, in CreateInput) (JournalEntry, error) {
	for _, e := range m.state.entries {
		if e.JournalNumber == in.JournalNumber {
			return JournalEntry{}, shared.ErrDuplicateNumber
		}
	}
	m.state.nextID++
	e := JournalEntry{
		ID: m.state.nextID, JournalNumber: in.JournalNumber, EntryDate: in.EntryDate,
		Description: in.Description, Reference: in.Reference, Status: JournalStatusDraft,
		SourceDocumentType: in.SourceDocumentType, SourceDocumentID: in.SourceDocumentID, CreatedBy: in.CreatedBy,
	}
	m.state.entries[e.ID] = e
	return e, nil
}

func (m *memoryRepo) InsertJournalLines(_ context.Context, entryID int64, lines []LineInput) ([]JournalLine, error) {
	out := make([]JournalLine, 0, len(lines))
	for idx, l := range lines {
		m.state.nextID++
		out = append(out, JournalLine{ID: m.state.nextID, JournalEntryID: entryID, LineNumber: idx + 1,
			AccountID: l.AccountID, DebitAmount: l.Debit, CreditAmount: l.Credit, Description: l.Description})
	}
	m.state.lines[entryID] = out
	return out, nil
}

func (m *memoryRepo) GetJournalForUpdate(ctx context.Context, entryID int64) (JournalEntry, []JournalLine, error) {
	e, err := m.Get(ctx, entryID)
	if err != nil {
		return JournalEntry{}, nil, err
	}
	return e, e.Lines, nil
}

func (m *memoryRepo) MarkPosted(_ context.Context, entryID, actorID int64, at time.Time) error {
	e := m.state.entries[entryID]
	e.Status = JournalStatusPosted
	e.PostedAt = &at
	e.PostedBy = &actorID
	m.state.entries[entryID] = e
	return nil
}

func (m *memoryRepo) IncrementBalance(_ context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	if accountID == m.failIncrement {
		return decimal.Decimal{}, shared.StoreFailure("increment balance", errDiskFull)
	}
	a := m.state.accounts[accountID]
	a.CurrentBalance = a.CurrentBalance.Add(delta)
	m.state.accounts[accountID] = a
	return a.CurrentBalance, nil
}

func (m *memoryRepo) InsertLedgerRows(_ context.Context, rows []GeneralLedgerRow) error {
	m.state.ledger = append(m.state.ledger, rows...)
	return nil
}

func (m *memoryRepo) DeleteJournal(_ context.Context, entryID int64) error {
	delete(m.state.lines, entryID)
	delete(m.state.entries, entryID)
	return nil
}

func (m *memoryRepo) balance(id int64) string {
	return m.state.accounts[id].CurrentBalance.StringFixed(2)
}

func (m *memoryRepo) ledgerFor(id int64) []GeneralLedgerRow {
	var out []GeneralLedgerRow
	for _, row := range m.state.ledger {
		if row.AccountID == id {
			out = append(out, row)
		}
	}
	return out
}

type countingObserver struct {
	postings  map[string]int
	reversals int
	bumps     int
}

func (c *countingObserver) ObservePosting(result string) { c.postings[result]++ }
func (c *countingObserver) ObserveReversal(bool)         { c.reversals++ }
func (c *countingObserver) Bump(context.Context) error   { c.bumps++; return nil }

type memoryAudit struct {
	actions []string
}

func (a *memoryAudit) Record(_ context.Context, log internalShared.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

const (
	cashID    int64 = 1
	salesID   int64 = 2
	payableID int64 = 3
	rentID    int64 = 4
	closedID  int64 = 5
)

func amount(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func fixtureAccounts() []accounts.Account {
	return []accounts.Account{
		{ID: cashID, Code: "1010", Type: accounts.AccountTypeAsset, NormalBalance: accounts.NormalBalanceDebit, Subtype: accounts.SubtypeBank,
			OpeningBalance: amount("1000"), CurrentBalance: amount("1000"), IsActive: true},
		{ID: salesID, Code: "4000", Type: accounts.AccountTypeRevenue, NormalBalance: accounts.NormalBalanceCredit, IsActive: true},
		{ID: payableID, Code: "2000", Type: accounts.AccountTypeLiability, NormalBalance: accounts.NormalBalanceCredit, IsActive: true},
		{ID: rentID, Code: "6100", Type: accounts.AccountTypeExpense, NormalBalance: accounts.NormalBalanceDebit, IsActive: true},
		{ID: closedID, Code: "1999", Type: accounts.AccountTypeAsset, NormalBalance: accounts.NormalBalanceDebit, IsActive: false},
	}
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *countingObserver, *memoryAudit) {
	t.Helper()
	repo := newMemoryRepo(fixtureAccounts()...)
	audit := &memoryAudit{}
	svc := NewService(repo, periods.NewCalendar(4), audit, nil)
	svc.WithNow(func() time.Time { return time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC) })
	obs := &countingObserver{postings: map[string]int{}}
	svc.SetObserver(obs)
	svc.SetInvalidator(obs)
	return svc, repo, obs, audit
}

func draft(t *testing.T, svc *Service, lines ...LineInput) JournalEntry {
	t.Helper()
	entry, err := svc.CreateDraft(context.Background(), CreateInput{
		EntryDate:   time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		Description: "test entry",
		CreatedBy:   7,
		Lines:       lines,
	})
	require.NoError(t, err)
	return entry
}

func debit(account int64, v string) LineInput  { return LineInput{AccountID: account, Debit: amount(v)} }
func credit(account int64, v string) LineInput { return LineInput{AccountID: account, Credit: amount(v)} }

func TestPostMovesBalancesAndWritesLedger(t *testing.T) {
	svc, repo, obs, audit := newTestService(t)
	ctx := context.Background()

	first := draft(t, svc, debit(cashID, "500"), credit(salesID, "500"))
	require.Equal(t, JournalStatusDraft, first.Status)
	require.Equal(t, "1000.00", repo.balance(cashID), "drafts have no balance effect")

	posted, err := svc.Post(ctx, PostInput{EntryID: first.ID, ActorID: 9})
	require.NoError(t, err)
	require.Equal(t, JournalStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)
	require.Equal(t, "1500.00", repo.balance(cashID))
	require.Equal(t, "500.00", repo.balance(salesID))

	second := draft(t, svc, credit(cashID, "200"), debit(rentID, "200"))
	_, err = svc.Post(ctx, PostInput{EntryID: second.ID, ActorID: 9})
	require.NoError(t, err)
	require.Equal(t, "1300.00", repo.balance(cashID))

	rows := repo.ledgerFor(cashID)
	require.Len(t, rows, 2)
	require.Equal(t, "1500.00", rows[0].RunningBalance.StringFixed(2))
	require.Equal(t, "1300.00", rows[1].RunningBalance.StringFixed(2))
	require.Equal(t, "-200.00", rows[1].Delta.StringFixed(2))
	require.Equal(t, 2025, rows[0].FiscalYear)
	require.Equal(t, 2, rows[0].FiscalPeriod)

	require.Equal(t, 2, obs.postings["posted"])
	require.Equal(t, 2, obs.bumps)
	require.Contains(t, audit.actions, "journal.post")
}

func TestPostedLedgerAlwaysBalances(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	entries := [][]LineInput{
		{debit(cashID, "120.50"), credit(salesID, "100"), credit(payableID, "20.50")},
		{debit(rentID, "75"), credit(payableID, "75")},
		{debit(payableID, "95.50"), credit(cashID, "95.50")},
	}
	for _, lines := range entries {
		e := draft(t, svc, lines...)
		_, err := svc.Post(ctx, PostInput{EntryID: e.ID})
		require.NoError(t, err)
	}
	var dr, cr decimal.Decimal
	for _, row := range repo.state.ledger {
		dr = dr.Add(row.DebitAmount)
		cr = cr.Add(row.CreditAmount)
	}
	require.True(t, dr.Equal(cr), "debits %s credits %s", dr, cr)
	require.Equal(t, "0.00", repo.balance(payableID))
}

func TestPostUnbalancedStaysDraft(t *testing.T) {
	svc, repo, obs, _ := newTestService(t)
	entry := draft(t, svc, debit(cashID, "100"), credit(salesID, "90"))

	_, err := svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrUnbalanced)

	stored, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	require.Equal(t, JournalStatusDraft, stored.Status)
	require.Empty(t, repo.state.ledger)
	require.Equal(t, "1000.00", repo.balance(cashID))
	require.Equal(t, 1, obs.postings["unbalanced"])
	require.Zero(t, obs.bumps)
}

func TestSecondPostFailsWithoutBalanceChange(t *testing.T) {
	svc, repo, obs, _ := newTestService(t)
	ctx := context.Background()
	entry := draft(t, svc, debit(cashID, "250"), credit(salesID, "250"))

	_, err := svc.Post(ctx, PostInput{EntryID: entry.ID})
	require.NoError(t, err)
	_, err = svc.Post(ctx, PostInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrAlreadyPosted)

	status, _ := shared.HTTPStatus(err)
	require.Equal(t, 409, status)
	require.Equal(t, "1250.00", repo.balance(cashID))
	require.Len(t, repo.state.ledger, 2)
	require.Equal(t, 1, obs.postings["already_posted"])
}

func TestPostMissingEntry(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Post(context.Background(), PostInput{EntryID: 404})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPostRollsBackOnStoreFailure(t *testing.T) {
	svc, repo, obs, _ := newTestService(t)
	entry := draft(t, svc, debit(cashID, "300"), credit(salesID, "300"))
	repo.failIncrement = salesID

	_, err := svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrStoreFailure)
	require.ErrorIs(t, err, errDiskFull)

	stored, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	require.Equal(t, JournalStatusDraft, stored.Status)
	require.Equal(t, "1000.00", repo.balance(cashID), "cash increment applied before the failure must roll back")
	require.Empty(t, repo.state.ledger)
	require.Equal(t, 1, obs.postings["error"])
}

func TestReverseRestoresBalances(t *testing.T) {
	svc, repo, obs, audit := newTestService(t)
	ctx := context.Background()
	entry := draft(t, svc, debit(rentID, "400"), credit(payableID, "400"))
	_, err := svc.Post(ctx, PostInput{EntryID: entry.ID})
	require.NoError(t, err)
	require.Equal(t, "400.00", repo.balance(payableID))

	result, err := svc.ReverseOrDelete(ctx, ReverseInput{EntryID: entry.ID, Reason: "duplicate bill"})
	require.NoError(t, err)
	require.True(t, result.WasPosted)
	require.Len(t, result.ReversalRows, 2)
	require.Equal(t, "0.00", repo.balance(payableID))
	require.Equal(t, "0.00", repo.balance(rentID))

	_, err = svc.Get(ctx, entry.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	rows := repo.ledgerFor(payableID)
	require.Len(t, rows, 2, "original ledger rows are kept")
	require.True(t, rows[1].IsReversal)
	require.Equal(t, "400.00", rows[1].DebitAmount.StringFixed(2))
	require.Equal(t, "0.00", rows[1].RunningBalance.StringFixed(2))
	require.Equal(t, 1, obs.reversals)
	require.Equal(t, 2, obs.bumps)
	require.Contains(t, audit.actions, "journal.reverse")
}

func TestDeleteDraftHasNoBalanceEffect(t *testing.T) {
	svc, repo, obs, audit := newTestService(t)
	entry := draft(t, svc, debit(cashID, "80"), credit(salesID, "80"))

	result, err := svc.ReverseOrDelete(context.Background(), ReverseInput{EntryID: entry.ID})
	require.NoError(t, err)
	require.False(t, result.WasPosted)
	require.Empty(t, repo.state.entries)
	require.Empty(t, repo.state.ledger)
	require.Equal(t, "1000.00", repo.balance(cashID))
	require.Zero(t, obs.bumps)
	require.Contains(t, audit.actions, "journal.delete")
}

func TestReverseBySource(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	invoice := uuid.New()
	entry, err := svc.CreateDraft(ctx, CreateInput{
		EntryDate:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		SourceDocumentType: "sales_invoice",
		SourceDocumentID:   &invoice,
		Lines:              []LineInput{debit(cashID, "60"), credit(salesID, "60")},
	})
	require.NoError(t, err)
	_, err = svc.Post(ctx, PostInput{EntryID: entry.ID})
	require.NoError(t, err)

	results, err := svc.ReverseBySource(ctx, "sales_invoice", invoice, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "1000.00", repo.balance(cashID))

	results, err = svc.ReverseBySource(ctx, "sales_invoice", invoice, 3)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestCreateDraftValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	date := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"no lines", CreateInput{EntryDate: date}, shared.ErrValidation},
		{"no date", CreateInput{Lines: []LineInput{debit(cashID, "1")}}, shared.ErrValidation},
		{"both sides", CreateInput{EntryDate: date, Lines: []LineInput{{AccountID: cashID, Debit: amount("5"), Credit: amount("5")}}}, shared.ErrValidation},
		{"neither side", CreateInput{EntryDate: date, Lines: []LineInput{{AccountID: cashID}}}, shared.ErrValidation},
		{"negative", CreateInput{EntryDate: date, Lines: []LineInput{debit(cashID, "-5")}}, shared.ErrValidation},
		{"unknown account", CreateInput{EntryDate: date, Lines: []LineInput{debit(99, "5")}}, shared.ErrNotFound},
		{"inactive account", CreateInput{EntryDate: date, Lines: []LineInput{debit(closedID, "5")}}, shared.ErrAccountInactive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateDraft(ctx, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateDraftNumbering(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	entry := draft(t, svc, debit(cashID, "10"), credit(salesID, "10"))
	require.Equal(t, "JE-20250502-000001", entry.JournalNumber)
	require.Equal(t, "10.00", entry.TotalDebit.StringFixed(2))

	in := CreateInput{JournalNumber: entry.JournalNumber, EntryDate: entry.EntryDate, Lines: []LineInput{debit(cashID, "1"), credit(salesID, "1")}}
	_, err := svc.CreateDraft(ctx, in)
	require.ErrorIs(t, err, shared.ErrDuplicateNumber)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestBalancedToleratesSubCentNoise(t *testing.T) {
	e := JournalEntry{Lines: []JournalLine{
		{DebitAmount: amount("33.333")}, {DebitAmount: amount("66.667")}, {CreditAmount: amount("100")},
	}}
	require.True(t, e.IsBalanced())
	e.Lines[2].CreditAmount = amount("100.01")
	require.False(t, e.IsBalanced())
}
