package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
)

type fakeCreator struct {
	existing map[string]bool
	fail     string
	codes    []string
}

func (f *fakeCreator) Create(_ context.Context, in accounts.CreateInput) (accounts.Account, error) {
	if in.Code == f.fail {
		return accounts.Account{}, errors.New("boom")
	}
	if f.existing[in.Code] {
		return accounts.Account{}, shared.ErrConflict
	}
	f.codes = append(f.codes, in.Code)
	return accounts.Account{Code: in.Code, Name: in.Name}, nil
}

func TestSeedChartSkipsExistingCodes(t *testing.T) {
	creator := &fakeCreator{existing: map[string]bool{"1010": true, "4100": true}}
	var out bytes.Buffer

	require.NoError(t, seedChart(context.Background(), &out, creator, defaultChart))

	assert.Len(t, creator.codes, len(defaultChart)-2)
	assert.NotContains(t, creator.codes, "1010")
	assert.Contains(t, out.String(), "2 already present")
}

func TestSeedChartStopsOnStoreError(t *testing.T) {
	creator := &fakeCreator{fail: "2100"}

	err := seedChart(context.Background(), &bytes.Buffer{}, creator, defaultChart)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed account 2100")
}

func TestDefaultChartCoversEveryAccountType(t *testing.T) {
	seen := map[accounts.AccountType]bool{}
	codes := map[string]bool{}
	for _, a := range defaultChart {
		seen[a.kind] = true
		assert.False(t, codes[a.code], "duplicate code %s", a.code)
		codes[a.code] = true
	}
	for _, kind := range []accounts.AccountType{
		accounts.AccountTypeAsset,
		accounts.AccountTypeLiability,
		accounts.AccountTypeEquity,
		accounts.AccountTypeRevenue,
		accounts.AccountTypeExpense,
	} {
		assert.True(t, seen[kind], "missing %s", kind)
	}
}
