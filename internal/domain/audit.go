package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records who did what to which resource, for attribution only.
type AuditLog struct {
	ID           string
	TenantID     string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountCreate     AuditAction = "account.create"
	AuditActionAccountUpdate     AuditAction = "account.update"
	AuditActionAccountDeactivate AuditAction = "account.deactivate"
	AuditActionEntryPost     AuditAction = "entry.post"
	AuditActionEntryReverse  AuditAction = "entry.reverse"
	AuditActionPeriodClose   AuditAction = "period.close"
	AuditActionPeriodReopen  AuditAction = "period.reopen"
	AuditActionPeriodLock    AuditAction = "period.lock"
	AuditActionStatementImport AuditAction = "statement.import"
	AuditActionReconApprove    AuditAction = "reconciliation.approve"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}
	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}
	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	TenantID     string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}

// Actor identifies the tenant and user a request runs on behalf of.
// It is injected by the transport layer and used for audit attribution.
type Actor struct {
	TenantID string
	UserID   string
}
