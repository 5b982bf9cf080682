package domain

// Category is a causale used to classify movements.
type Category struct {
	CategoryID    string        `json:"categoryID"`
	AziendaID     *string       `json:"aziendaID"` // nil for global categories
	Name          string        `json:"name"`
	Code          string        `json:"code"`
	OperationType OperationType `json:"operationType"`
	MacroCategory string        `json:"macroCategory"`
	Ordinal       int           `json:"ordinal"`
	IsActive      bool          `json:"isActive"`
	IsSystem      bool          `json:"isSystem"`
	AuditFields
}

// IsGlobal reports whether the category is shared by every azienda.
func (c Category) IsGlobal() bool {
	return c.AziendaID == nil
}

// VisibleTo reports whether the category can be used by aziendaID.
func (c Category) VisibleTo(aziendaID string) bool {
	return c.AziendaID == nil || *c.AziendaID == aziendaID
}

// SystemCategory is a bootstrap category definition.
type SystemCategory struct {
	Name          string
	Code          string
	OperationType OperationType
	MacroCategory string
}

// DefaultCategories lists the global system categories created at setup.
func DefaultCategories() []SystemCategory {
	return []SystemCategory{
		{Name: "Vendita animali", Code: "VEND_ANIM", OperationType: Income, MacroCategory: "allevamento"},
		{Name: "Vendita prodotti", Code: "VEND_PROD", OperationType: Income, MacroCategory: "produzione"},
		{Name: "Contributi", Code: "CONTRIB", OperationType: Income, MacroCategory: "contributi"},
		{Name: "Soccida", Code: "SOCCIDA", OperationType: Income, MacroCategory: "allevamento"},
		{Name: "Altri ricavi", Code: "ALTRI_RIC", OperationType: Income, MacroCategory: "altro"},
		{Name: "Acquisto animali", Code: "ACQ_ANIM", OperationType: Expense, MacroCategory: "allevamento"},
		{Name: "Mangimi", Code: "MANGIMI", OperationType: Expense, MacroCategory: "alimentazione"},
		{Name: "Spese veterinarie", Code: "VETERIN", OperationType: Expense, MacroCategory: "sanitario"},
		{Name: "Carburanti", Code: "CARBUR", OperationType: Expense, MacroCategory: "attrezzatura"},
		{Name: "Manutenzioni", Code: "MANUT", OperationType: Expense, MacroCategory: "attrezzatura"},
		{Name: "Altre spese", Code: "ALTRE_SP", OperationType: Expense, MacroCategory: "altro"},
		{Name: "Giroconto", Code: "GIROCONTO", OperationType: Transfer, MacroCategory: "finanza"},
	}
}
