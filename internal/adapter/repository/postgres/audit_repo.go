package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/glcore/internal/domain"
)

// AuditRepository implements audit log persistence.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts a new audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	var beforeState, afterState []byte
	var err error

	if log.BeforeState != nil {
		if beforeState, err = json.Marshal(log.BeforeState); err != nil {
			return err
		}
	}
	if log.AfterState != nil {
		if afterState, err = json.Marshal(log.AfterState); err != nil {
			return err
		}
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (
			id, tenant_id, user_id, action, resource_type, resource_id,
			request_id, before_state, after_state, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		log.ID,
		log.TenantID,
		log.UserID,
		log.Action,
		log.ResourceType,
		textOrNull(log.ResourceID),
		textOrNull(log.RequestID),
		beforeState,
		afterState,
		log.Status,
		textOrNull(log.ErrorMessage),
		timeToPgTimestamptz(log.CreatedAt),
	)
	return err
}

// List retrieves audit logs matching the filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, user_id, action, resource_type, resource_id,
		       request_id, before_state, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE tenant_id = $1
		  AND ($2 = '' OR user_id = $2)
		  AND ($3 = '' OR action = $3)
		  AND ($4 = '' OR resource_type = $4)
		  AND ($5 = '' OR resource_id = $5)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7`,
		filter.TenantID, filter.UserID, filter.Action, filter.ResourceType, filter.ResourceID,
		limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		var resourceID, requestID, errorMessage *string
		var beforeState, afterState []byte
		if err := rows.Scan(&l.ID, &l.TenantID, &l.UserID, &l.Action, &l.ResourceType, &resourceID,
			&requestID, &beforeState, &afterState, &l.Status, &errorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		if resourceID != nil {
			l.ResourceID = *resourceID
		}
		if requestID != nil {
			l.RequestID = *requestID
		}
		if errorMessage != nil {
			l.ErrorMessage = *errorMessage
		}
		if len(beforeState) > 0 {
			if err := json.Unmarshal(beforeState, &l.BeforeState); err != nil {
				return nil, err
			}
		}
		if len(afterState) > 0 {
			if err := json.Unmarshal(afterState, &l.AfterState); err != nil {
				return nil, err
			}
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
