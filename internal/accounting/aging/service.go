package aging

import (
	"context"
	"time"

	"github.com/razalrahmanp/palaka-sub014/internal/platform/httpx"
)

// Cache is the versioned JSON cache shared with the ledger reports.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

type loadFunc func(ctx context.Context, asOf time.Time) ([]OpenDocument, error)

type Service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Receivables ages open sales invoices per customer.
func (s *Service) Receivables(ctx context.Context, asOf time.Time) (Report, error) {
	return s.report(ctx, KindReceivable, asOf, s.repo.OpenReceivables)
}

// Payables ages open vendor bills per supplier.
func (s *Service) Payables(ctx context.Context, asOf time.Time) (Report, error) {
	return s.report(ctx, KindPayable, asOf, s.repo.OpenPayables)
}

func (s *Service) report(ctx context.Context, kind Kind, asOf time.Time, load loadFunc) (Report, error) {
	if s.cache != nil {
		key, err := s.cache.BuildKey(ctx, "reports", "aging", string(kind), asOf.Format(httpx.DateLayout))
		if err == nil {
			var out Report
			err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
				return build(ctx, kind, asOf, load)
			})
			return out, err
		}
	}
	return build(ctx, kind, asOf, load)
}

func build(ctx context.Context, kind Kind, asOf time.Time, load loadFunc) (Report, error) {
	docs, err := load(ctx, asOf)
	if err != nil {
		return Report{}, err
	}
	return Build(kind, asOf, docs), nil
}
