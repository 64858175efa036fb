package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of a pgx pool the repository needs
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SecurityEventRepository handles persistence of security events to database
type SecurityEventRepository struct {
	db Execer
}

// NewSecurityEventRepository creates a new repository for security events
func NewSecurityEventRepository(db Execer) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// EnsureSchema creates the security_events table if it is missing
func (r *SecurityEventRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS security_events (
			id            BIGSERIAL PRIMARY KEY,
			event_type    TEXT NOT NULL,
			service       TEXT NOT NULL,
			environment   TEXT NOT NULL,
			level         TEXT NOT NULL,
			subject_type  TEXT,
			subject_value TEXT,
			ip_address    TEXT,
			user_agent    TEXT,
			request_id    TEXT,
			details       JSONB,
			created_at    TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create security_events: %w", err)
	}
	return nil
}

// PersistEvent inserts a security event into the database
func (r *SecurityEventRepository) PersistEvent(ctx context.Context, event SecurityEvent) error {
	query := `
		INSERT INTO security_events (
			event_type, service, environment, level,
			subject_type, subject_value, ip_address, user_agent,
			request_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	detailsJSON := []byte("null")
	if len(event.Details) > 0 {
		detailsJSON, _ = json.Marshal(event.Details)
	}

	var ipAddr any
	if event.IP != "" {
		ipAddr = event.IP
	}

	_, err := r.db.Exec(ctx, query,
		string(event.Event),
		event.Service,
		event.Environment,
		event.Level,
		event.SubjectType,
		event.SubjectValue,
		ipAddr,
		event.UserAgent,
		event.RequestID,
		detailsJSON,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to persist security event: %w", err)
	}
	return nil
}
