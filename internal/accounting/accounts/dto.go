package accounts

import (
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the JSON body for POST /accounts.
type CreateAccountRequest struct {
	Code           string          `json:"code" validate:"required,max=20"`
	Name           string          `json:"name" validate:"required,max=120"`
	Type           string          `json:"type" validate:"required"`
	Subtype        string          `json:"subtype" validate:"max=40"`
	ParentID       *int64          `json:"parent_id" validate:"omitempty,gt=0"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToInput converts the request into service input.
func (r CreateAccountRequest) ToInput() (CreateInput, error) {
	t, err := ParseAccountType(r.Type)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{
		Code:           r.Code,
		Name:           r.Name,
		Type:           t,
		Subtype:        r.Subtype,
		ParentID:       r.ParentID,
		OpeningBalance: r.OpeningBalance,
	}, nil
}
