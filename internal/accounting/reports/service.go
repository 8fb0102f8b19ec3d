package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/periods"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/httpx"
)

// Cache is the versioned JSON cache fronting report builds.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// ledgerEpoch precedes every posting; balance sheets sum from here.
var ledgerEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

type Service struct {
	repo     Repository
	cache    Cache
	calendar periods.Calendar
	now      func() time.Time
}

func NewService(repo Repository, cache Cache, calendar periods.Calendar) *Service {
	return &Service{repo: repo, cache: cache, calendar: calendar, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// DefaultRange returns the fiscal year-to-date window ending at to.
func (s *Service) DefaultRange(to time.Time) (time.Time, time.Time) {
	year, _ := s.calendar.Resolve(to)
	from, _ := s.calendar.YearBounds(year)
	return from, to
}

func (s *Service) TrialBalance(ctx context.Context, from, to time.Time) (TrialBalanceReport, error) {
	if err := checkRange(from, to); err != nil {
		return TrialBalanceReport{}, err
	}
	var out TrialBalanceReport
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		balances, err := s.repo.AccountBalances(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return TrialBalanceReport{From: from, To: to, GeneratedAt: s.now(), Report: BuildTrialBalance(balances)}, nil
	}, "reports", "trial_balance", day(from), day(to))
	return out, err
}

func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheetReport, error) {
	var out BalanceSheetReport
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		balances, err := s.repo.AccountBalances(ctx, ledgerEpoch, asOf)
		if err != nil {
			return nil, err
		}
		return BalanceSheetReport{AsOf: asOf, GeneratedAt: s.now(), Report: BuildBalanceSheet(balances)}, nil
	}, "reports", "balance_sheet", day(asOf))
	return out, err
}

func (s *Service) IncomeStatement(ctx context.Context, from, to time.Time) (IncomeStatementReport, error) {
	if err := checkRange(from, to); err != nil {
		return IncomeStatementReport{}, err
	}
	var out IncomeStatementReport
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		balances, err := s.repo.AccountBalances(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return IncomeStatementReport{From: from, To: to, GeneratedAt: s.now(), Report: BuildIncomeStatement(balances)}, nil
	}, "reports", "income_statement", day(from), day(to))
	return out, err
}

func (s *Service) Daysheet(ctx context.Context, from, to time.Time) (DaysheetReport, error) {
	if err := checkRange(from, to); err != nil {
		return DaysheetReport{}, err
	}
	var out DaysheetReport
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		rows, err := s.repo.LedgerRows(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return DaysheetReport{From: from, To: to, GeneratedAt: s.now(), Report: BuildDaysheet(rows)}, nil
	}, "reports", "daysheet", day(from), day(to))
	return out, err
}

func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	if s.cache == nil {
		return fill(ctx, dest, loader)
	}
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		return fill(ctx, dest, loader)
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func fill(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func checkRange(from, to time.Time) error {
	if to.Before(from) {
		return shared.Validationf("range end %s before start %s", day(to), day(from))
	}
	return nil
}

func day(t time.Time) string {
	return t.Format(httpx.DateLayout)
}
