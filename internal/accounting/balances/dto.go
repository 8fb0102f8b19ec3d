package balances

// RecalculateRequest is the JSON body for POST /balances/recalculate.
type RecalculateRequest struct {
	AccountIDs []int64  `json:"account_ids" validate:"omitempty,dive,gt=0"`
	Subtypes   []string `json:"subtypes" validate:"omitempty,dive,required,max=40"`
}

func (r RecalculateRequest) Scope() Scope {
	return Scope{AccountIDs: r.AccountIDs, Subtypes: r.Subtypes}
}
