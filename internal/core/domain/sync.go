package domain

// SyncOutcome is the result of syncing one document. Err is nil on success.
type SyncOutcome struct {
	DocumentID string
	Err        error
}

// SyncError is a failed document in a SyncReport.
type SyncError struct {
	DocumentID string `json:"documentID"`
	Message    string `json:"message"`
}

// SyncReport summarizes a batch re-sync.
type SyncReport struct {
	Processed int         `json:"processed"`
	Total     int         `json:"total"`
	Errors    []SyncError `json:"errors"`
}

// Record adds an outcome to the report.
func (r *SyncReport) Record(o SyncOutcome) {
	if o.Err != nil {
		r.Errors = append(r.Errors, SyncError{DocumentID: o.DocumentID, Message: o.Err.Error()})
		return
	}
	r.Processed++
}
