package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// AccountType classifies a conto.
type AccountType string

const (
	Cash  AccountType = "cash"
	Bank  AccountType = "bank"
	Other AccountType = "other" // system-managed accounts only
)

// IsLiquidity reports whether users may create, edit and post manual movements on the type.
func (t AccountType) IsLiquidity() bool {
	return t == Cash || t == Bank
}

// IsValid checks if the account type is known.
func (t AccountType) IsValid() bool {
	return t == Cash || t == Bank || t == Other
}

// TransferStrategy decides whether payment giroconti on the account are posted directly.
type TransferStrategy string

const (
	TransferAutomatic TransferStrategy = "automatic"
	TransferManual    TransferStrategy = "manual"
)

// IsValid checks if the strategy is known.
func (s TransferStrategy) IsValid() bool {
	return s == TransferAutomatic || s == TransferManual
}

// Account represents a conto owned by one azienda.
type Account struct {
	AccountID        string           `json:"accountID"`
	AziendaID        string           `json:"aziendaID"`
	Name             string           `json:"name"`
	AccountType      AccountType      `json:"accountType"`
	OpeningBalance   decimal.Decimal  `json:"openingBalance"`
	Balance          decimal.Decimal  `json:"balance"` // cached, see MovementEngine
	IsActive         bool             `json:"isActive"`
	TransferStrategy TransferStrategy `json:"transferStrategy"`
	Note             string           `json:"note"`
	// System is derived from the chart's reserved names on read; it is never persisted.
	System bool `json:"system"`
	AuditFields
}

// AccountRole names the function an account plays in automatic postings.
type AccountRole string

const (
	RoleSales            AccountRole = "sales"
	RoleSalesVAT         AccountRole = "sales_vat"
	RoleReceivables      AccountRole = "receivables"
	RolePurchases        AccountRole = "purchases"
	RolePurchasesVAT     AccountRole = "purchases_vat"
	RolePayables         AccountRole = "payables"
	RoleContractAdvances AccountRole = "contract_advances"
	RoleSettlement       AccountRole = "settlement"
	RoleCash             AccountRole = "cash"
)

// ChartDefaults is the fixed chart of system accounts created at bootstrap.
// It is built once at start-up and handed to the services that need it.
type ChartDefaults struct {
	Accounts []ChartAccount
	// ContractAdvances is created lazily, the first time a monetized contract is settled.
	ContractAdvances ChartAccount
	// DefaultCash is the liquidity account created when an azienda has none.
	DefaultCash ChartAccount
}

// ChartAccount is one entry of the default chart.
type ChartAccount struct {
	Role AccountRole
	Name string
	Type AccountType
}

// DefaultChart returns the standard Prima Nota chart.
func DefaultChart() ChartDefaults {
	return ChartDefaults{
		Accounts: []ChartAccount{
			{Role: RoleSales, Name: "Vendite", Type: Other},
			{Role: RoleSalesVAT, Name: "IVA su vendite", Type: Other},
			{Role: RoleReceivables, Name: "Crediti verso clienti", Type: Other},
			{Role: RolePurchases, Name: "Acquisti", Type: Other},
			{Role: RolePurchasesVAT, Name: "IVA su acquisti", Type: Other},
			{Role: RolePayables, Name: "Debiti verso fornitori", Type: Other},
		},
		ContractAdvances: ChartAccount{Role: RoleContractAdvances, Name: "Anticipi soccida monetizzata", Type: Other},
		DefaultCash:      ChartAccount{Role: RoleCash, Name: "Cassa", Type: Cash},
	}
}

// NameFor returns the reserved name bound to a role, or "" when the chart has none.
func (c ChartDefaults) NameFor(role AccountRole) string {
	if role == RoleContractAdvances {
		return c.ContractAdvances.Name
	}
	for _, a := range c.Accounts {
		if a.Role == role {
			return a.Name
		}
	}
	return ""
}

// IsReserved reports whether name collides with a system account name.
func (c ChartDefaults) IsReserved(name string) bool {
	n := NormalizeName(name)
	if n == "" {
		return false
	}
	if c.ContractAdvances.Name != "" && NormalizeName(c.ContractAdvances.Name) == n {
		return true
	}
	for _, a := range c.Accounts {
		if NormalizeName(a.Name) == n {
			return true
		}
	}
	return false
}

// NormalizeName collapses whitespace and case-folds a name for uniqueness checks.
// A Caser is stateful, so one is built per call.
func NormalizeName(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}
