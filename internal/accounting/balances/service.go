package balances

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	internalShared "github.com/razalrahmanp/palaka-sub014/internal/shared"
)

const defaultLockTTL = 10 * time.Minute

// Locker provides a best-effort distributed mutex.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// Invalidator drops cached reports after balances move.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo        Repository
	logger      *slog.Logger
	locker      Locker
	invalidator Invalidator
	lockTTL     time.Duration
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, lockTTL: defaultLockTTL}
}

func (s *Service) SetLocker(locker Locker, ttl time.Duration) {
	s.locker = locker
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

func (s *Service) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// Recalculate rebuilds current balances and running balances for the scope by
// replaying the ledger from each account's opening balance. Running it twice
// changes nothing the second time.
func (s *Service) Recalculate(ctx context.Context, scope Scope) ([]Result, error) {
	for i, st := range scope.Subtypes {
		scope.Subtypes[i] = accounts.NormalizeSubtype(st)
	}
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, internalShared.RecalcLockKey(scope.Label()), s.lockTTL)
		if err != nil {
			return nil, shared.StoreFailure("recalc lock", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: recalculation for %s already running", shared.ErrConflict, scope.Label())
		}
		defer release()
	}

	start := time.Now()
	var results []Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		accts, err := tx.LockAccounts(ctx, scope)
		if err != nil {
			return err
		}
		results = make([]Result, 0, len(accts))
		for _, acc := range accts {
			entries, err := tx.LedgerEntries(ctx, acc.ID)
			if err != nil {
				return err
			}
			final, changed := Replay(acc.OpeningBalance, entries)
			if err := tx.RewriteRunningBalances(ctx, changed); err != nil {
				return err
			}
			if !final.Equal(acc.CurrentBalance) {
				if err := tx.SetCurrentBalance(ctx, acc.ID, final); err != nil {
					return err
				}
			}
			results = append(results, Result{
				AccountID:     acc.ID,
				Code:          acc.Code,
				Previous:      acc.CurrentBalance,
				Recalculated:  final,
				Drift:         final.Sub(acc.CurrentBalance),
				Rows:          len(entries),
				RowsRewritten: len(changed),
			})
		}
		return nil
	})
	if err != nil {
		return nil, shared.StoreFailure("recalculate balances", err)
	}

	drifted := 0
	for _, res := range results {
		if res.Drift.IsZero() && res.RowsRewritten == 0 {
			continue
		}
		drifted++
		s.logger.WarnContext(ctx, "balance drift repaired",
			slog.Int64("account_id", res.AccountID),
			slog.String("code", res.Code),
			slog.String("previous", shared.Numeric(res.Previous)),
			slog.String("recalculated", shared.Numeric(res.Recalculated)),
			slog.Int("rows_rewritten", res.RowsRewritten))
	}
	s.logger.InfoContext(ctx, "balances recalculated",
		slog.String("scope", scope.Label()),
		slog.Int("accounts", len(results)),
		slog.Int("drifted", drifted),
		slog.Duration("duration", time.Since(start)))
	if drifted > 0 && s.invalidator != nil {
		if err := s.invalidator.Bump(ctx); err != nil {
			s.logger.WarnContext(ctx, "report cache bump failed", slog.Any("error", err))
		}
	}
	return results, nil
}

// Drifted filters results down to accounts whose balance changed.
func Drifted(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Drift.IsZero() {
			out = append(out, r)
		}
	}
	return out
}
