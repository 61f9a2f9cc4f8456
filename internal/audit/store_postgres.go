package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"elan/internal/rbac"
	id "elan/pkg/domain"
)

// PostgresStore persists audit events in the audit_events table. The table
// has no UPDATE or DELETE path in this codebase.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const eventColumns = `id, name, actor_id, actor_role, domain, resource_type, resource_id, action,
		previous_state, new_state, reason, metadata, request_id, client_ip, client, occurred_at`

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}
	query := `
		INSERT INTO audit_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Name),
		uuid.UUID(event.ActorID),
		string(event.ActorRole),
		string(event.Domain),
		string(event.ResourceType),
		event.ResourceID,
		string(event.Action),
		event.PreviousState,
		event.NewState,
		event.Reason,
		metadata,
		event.RequestID,
		event.ClientIP,
		event.Client,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByResource(ctx context.Context, resource rbac.Resource, resourceID string) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM audit_events
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, query, string(resource), resourceID)
	if err != nil {
		return nil, fmt.Errorf("query audit events by resource: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListByActor(ctx context.Context, actorID id.UserID) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM audit_events
		WHERE actor_id = $1
		ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(actorID))
	if err != nil {
		return nil, fmt.Errorf("query audit events by actor: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	events := []Event{}
	for rows.Next() {
		var event Event
		var name, role, domain, resource, action string
		var actorID uuid.UUID
		var metadata []byte
		err := rows.Scan(
			&event.ID,
			&name,
			&actorID,
			&role,
			&domain,
			&resource,
			&event.ResourceID,
			&action,
			&event.PreviousState,
			&event.NewState,
			&event.Reason,
			&metadata,
			&event.RequestID,
			&event.ClientIP,
			&event.Client,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Name = EventName(name)
		event.ActorID = id.UserID(actorID)
		event.ActorRole = rbac.Role(role)
		event.Domain = rbac.Domain(domain)
		event.ResourceType = rbac.Resource(resource)
		event.Action = rbac.Action(action)
		if len(metadata) > 0 && string(metadata) != "null" {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
