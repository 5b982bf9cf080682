package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// LifecycleState tags a record as live or soft-deleted.
type LifecycleState string

const (
	StateActive  LifecycleState = "active"
	StateDeleted LifecycleState = "deleted"
)

// Lifecycle is embedded by soft-deletable entities.
type Lifecycle struct {
	State     LifecycleState `json:"state"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the record has been soft-deleted.
func (l Lifecycle) IsDeleted() bool {
	return l.State == StateDeleted
}

// MarkDeleted moves the record to the deleted state.
func (l *Lifecycle) MarkDeleted(now time.Time) {
	l.State = StateDeleted
	l.DeletedAt = &now
}
