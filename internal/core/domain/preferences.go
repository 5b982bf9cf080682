package domain

// Preferences are the per-azienda default account bindings used by automation.
type Preferences struct {
	AziendaID                  string  `json:"aziendaID"`
	DefaultCollectionAccountID *string `json:"defaultCollectionAccountID,omitempty"`
	DefaultPaymentAccountID    *string `json:"defaultPaymentAccountID,omitempty"`
	ReceivablesAccountID       *string `json:"receivablesAccountID,omitempty"`
	PayablesAccountID          *string `json:"payablesAccountID,omitempty"`
}

// ReferencedAccountIDs returns every account the preferences point at.
func (p Preferences) ReferencedAccountIDs() []string {
	var ids []string
	for _, id := range []*string{p.DefaultCollectionAccountID, p.DefaultPaymentAccountID, p.ReceivablesAccountID, p.PayablesAccountID} {
		if id != nil && *id != "" {
			ids = append(ids, *id)
		}
	}
	return ids
}

// AccountBindings is the resolved set of accounts automation posts to.
// Empty strings mean no account could be resolved for the role.
type AccountBindings struct {
	Sales        string
	SalesVAT     string
	Receivables  string
	Purchases    string
	PurchasesVAT string
	Payables     string
	Collection   string // liquidity account for incoming payments
	Payment      string // liquidity account for outgoing payments
}

// ForRole returns the account bound to role.
func (b AccountBindings) ForRole(role AccountRole) string {
	switch role {
	case RoleSales:
		return b.Sales
	case RoleSalesVAT:
		return b.SalesVAT
	case RoleReceivables:
		return b.Receivables
	case RolePurchases:
		return b.Purchases
	case RolePurchasesVAT:
		return b.PurchasesVAT
	case RolePayables:
		return b.Payables
	}
	return ""
}
