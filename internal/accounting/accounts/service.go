package accounts

import (
	"context"
	"strings"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the input and stores the account with its normal balance
// fixed from the type.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Subtype = NormalizeSubtype(in.Subtype)
	if in.Code == "" {
		return Account{}, shared.Validationf("account code required")
	}
	if in.Name == "" {
		return Account{}, shared.Validationf("account name required")
	}
	normal, err := NormalBalanceFor(in.Type)
	if err != nil {
		return Account{}, err
	}
	if in.ParentID != nil {
		parent, err := s.repo.Get(ctx, *in.ParentID)
		if err != nil {
			return Account{}, err
		}
		if parent.Type != in.Type {
			return Account{}, shared.Validationf("parent %s is %s, not %s", parent.Code, parent.Type, in.Type)
		}
	}
	in.OpeningBalance = in.OpeningBalance.Round(shared.AmountPlaces)
	return s.repo.Create(ctx, in, normal)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	filter.Subtype = NormalizeSubtype(filter.Subtype)
	return s.repo.List(ctx, filter)
}

// Deactivate hides the account from new postings. History is untouched.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Remove deletes an unused account. Accounts referenced by lines, ledger rows
// or children are deactivated instead; the returned flag reports which path ran.
func (s *Service) Remove(ctx context.Context, id int64) (deactivated bool, err error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return false, err
	}
	used, err := s.repo.HasActivity(ctx, id)
	if err != nil {
		return false, err
	}
	if used {
		return true, s.repo.SetActive(ctx, id, false)
	}
	return false, s.repo.Delete(ctx, id)
}
