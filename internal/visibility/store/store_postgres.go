package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"elan/internal/platform/database"
	"elan/internal/visibility/models"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// PostgresStore persists advisor grants in visibility_grants. Entity ids are
// stored as a JSON array.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const grantColumns = `id, owner_id, advisor_id, all_entities, entity_ids, granted_at, revoked_at`

func (s *PostgresStore) Save(ctx context.Context, grant *models.Grant) error {
	if grant == nil {
		return fmt.Errorf("grant is required")
	}
	entities, err := json.Marshal(nonNil(grant.EntityIDs))
	if err != nil {
		return fmt.Errorf("marshal entity ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO visibility_grants (`+grantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		uuid.UUID(grant.ID),
		uuid.UUID(grant.OwnerID),
		uuid.UUID(grant.AdvisorID),
		grant.All,
		entities,
		grant.GrantedAt,
		grant.RevokedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert visibility grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, grant *models.Grant) error {
	if grant == nil {
		return fmt.Errorf("grant is required")
	}
	entities, err := json.Marshal(nonNil(grant.EntityIDs))
	if err != nil {
		return fmt.Errorf("marshal entity ids: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE visibility_grants
		SET all_entities = $2, entity_ids = $3, granted_at = $4, revoked_at = $5
		WHERE id = $1
	`, uuid.UUID(grant.ID), grant.All, entities, grant.GrantedAt, grant.RevokedAt)
	if err != nil {
		return fmt.Errorf("update visibility grant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update visibility grant rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, ownerID, advisorID id.UserID) (*models.Grant, error) {
	g, err := scanGrant(s.db.QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM visibility_grants WHERE owner_id = $1 AND advisor_id = $2`,
		uuid.UUID(ownerID), uuid.UUID(advisorID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visibility grant: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+grantColumns+` FROM visibility_grants WHERE owner_id = $1 ORDER BY granted_at, advisor_id`,
		uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list visibility grants: %w", err)
	}
	defer rows.Close()

	var grants []*models.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visibility grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visibility grants: %w", err)
	}
	return grants, nil
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID id.UserID) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM visibility_grants WHERE owner_id = $1 OR advisor_id = $1`, uuid.UUID(userID))
	if err != nil {
		return 0, fmt.Errorf("delete visibility grants: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete visibility grants rows affected: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (*models.Grant, error) {
	var (
		g                           models.Grant
		scopeID, ownerID, advisorID uuid.UUID
		entities                    []byte
		revokedAt                   sql.NullTime
	)
	if err := row.Scan(&scopeID, &ownerID, &advisorID, &g.All, &entities, &g.GrantedAt, &revokedAt); err != nil {
		return nil, err
	}
	if len(entities) > 0 {
		if err := json.Unmarshal(entities, &g.EntityIDs); err != nil {
			return nil, fmt.Errorf("unmarshal entity ids: %w", err)
		}
	}
	if len(g.EntityIDs) == 0 {
		g.EntityIDs = nil
	}
	g.ID = id.ScopeID(scopeID)
	g.OwnerID = id.UserID(ownerID)
	g.AdvisorID = id.UserID(advisorID)
	if revokedAt.Valid {
		t := revokedAt.Time
		g.RevokedAt = &t
	}
	return &g, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
