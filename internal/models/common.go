package models

import "time"

// AuditFields are the audit columns shared by the ledger tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}

// Lifecycle holds the soft-delete columns.
type Lifecycle struct {
	State     string     `db:"state"`
	DeletedAt *time.Time `db:"deleted_at"`
}
