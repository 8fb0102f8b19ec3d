package accounts

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
)

type memoryRepo struct {
	nextID   int64
	accounts map[int64]Account
	used     map[int64]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: map[int64]Account{}, used: map[int64]bool{}}
}

func (m *memoryRepo) Create(_ context.Context, in CreateInput, normal NormalBalance) (Account, error) {
	for _, a := range m.accounts {
		if a.Code == in.Code {
			return Account{}, shared.ErrConflict
		}
	}
	m.nextID++
	a := Account{ID: m.nextID, Code: in.Code, Name: in.Name, Type: in.Type, Subtype: in.Subtype,
		NormalBalance: normal, ParentID: in.ParentID, OpeningBalance: in.OpeningBalance,
		CurrentBalance: in.OpeningBalance, IsActive: true}
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, shared.NotFoundf("account %d", id)
	}
	return a, nil
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if filter.Subtype != "" && a.Subtype != filter.Subtype {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) HasActivity(_ context.Context, id int64) (bool, error) {
	return m.used[id], nil
}

func (m *memoryRepo) SetActive(_ context.Context, id int64, active bool) error {
	a, ok := m.accounts[id]
	if !ok {
		return shared.NotFoundf("account %d", id)
	}
	a.IsActive = active
	m.accounts[id] = a
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.accounts, id)
	return nil
}

func TestNormalBalanceTable(t *testing.T) {
	cases := map[AccountType]NormalBalance{
		AccountTypeAsset:     NormalBalanceDebit,
		AccountTypeExpense:   NormalBalanceDebit,
		AccountTypeLiability: NormalBalanceCredit,
		AccountTypeEquity:    NormalBalanceCredit,
		AccountTypeRevenue:   NormalBalanceCredit,
	}
	for typ, want := range cases {
		got, err := NormalBalanceFor(typ)
		require.NoError(t, err)
		require.Equal(t, want, got, typ)
	}
	_, err := NormalBalanceFor("CONTRA")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeltaFollowsNormalBalance(t *testing.T) {
	debit := decimal.NewFromInt(500)
	zero := decimal.Zero
	require.True(t, NormalBalanceDebit.Delta(debit, zero).Equal(decimal.NewFromInt(500)))
	require.True(t, NormalBalanceCredit.Delta(debit, zero).Equal(decimal.NewFromInt(-500)))
	require.True(t, NormalBalanceCredit.Delta(zero, debit).Equal(decimal.NewFromInt(500)))
}

func TestParseAccountTypeNormalises(t *testing.T) {
	got, err := ParseAccountType("  liability ")
	require.NoError(t, err)
	require.Equal(t, AccountTypeLiability, got)
	_, err = ParseAccountType("income")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateFixesNormalBalance(t *testing.T) {
	svc := NewService(newMemoryRepo())
	acc, err := svc.Create(context.Background(), CreateInput{
		Code: "2100", Name: "GST Payable", Type: AccountTypeLiability, Subtype: " tax ",
		OpeningBalance: decimal.RequireFromString("10.005"),
	})
	require.NoError(t, err)
	require.Equal(t, NormalBalanceCredit, acc.NormalBalance)
	require.Equal(t, "TAX", acc.Subtype)
	require.Equal(t, "10.01", acc.OpeningBalance.StringFixed(2))
}

func TestCreateRejectsMissingFieldsAndParentMismatch(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Name: "Cash", Type: AccountTypeAsset})
	require.ErrorIs(t, err, shared.ErrValidation)

	parent, err := svc.Create(ctx, CreateInput{Code: "1000", Name: "Current Assets", Type: AccountTypeAsset})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Code: "4000", Name: "Sales", Type: AccountTypeRevenue, ParentID: &parent.ID})
	require.ErrorIs(t, err, shared.ErrValidation)

	missing := int64(99)
	_, err = svc.Create(ctx, CreateInput{Code: "1010", Name: "Bank", Type: AccountTypeAsset, ParentID: &missing})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRemoveDeactivatesAccountsWithHistory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	used, err := svc.Create(ctx, CreateInput{Code: "1010", Name: "Bank", Type: AccountTypeAsset, Subtype: SubtypeBank})
	require.NoError(t, err)
	unused, err := svc.Create(ctx, CreateInput{Code: "1020", Name: "Petty Cash", Type: AccountTypeAsset, Subtype: SubtypeCash})
	require.NoError(t, err)
	repo.used[used.ID] = true

	deactivated, err := svc.Remove(ctx, used.ID)
	require.NoError(t, err)
	require.True(t, deactivated)
	require.False(t, repo.accounts[used.ID].IsActive)

	deactivated, err = svc.Remove(ctx, unused.ID)
	require.NoError(t, err)
	require.False(t, deactivated)
	_, err = svc.Get(ctx, unused.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
