package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"elan/internal/memory/models"
	"elan/internal/platform/database"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// PostgresStore persists memories in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const memoryColumns = `id, owner_id, institution_id, title, body,
	share_spouse, share_heirs, invisible, locked, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, memory *models.Memory) error {
	if memory == nil {
		return fmt.Errorf("memory is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (`+memoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(memory.ID),
		uuid.UUID(memory.OwnerID),
		database.NullUUID(uuid.UUID(memory.InstitutionID)),
		memory.Title,
		memory.Body,
		memory.Sharing.Spouse,
		memory.Sharing.Heirs,
		memory.Sharing.Invisible,
		memory.Sharing.Locked,
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, memoryID id.MemoryID) (*models.Memory, error) {
	m, err := scanMemory(s.db.QueryRowContext(ctx,
		`SELECT `+memoryColumns+` FROM memories WHERE id = $1`, uuid.UUID(memoryID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find memory: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+memoryColumns+` FROM memories ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	var memories []*models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memories: %w", err)
	}
	return memories, nil
}

func (s *PostgresStore) UpdateSharing(ctx context.Context, memoryID id.MemoryID, sharing models.Sharing) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE memories
		SET share_spouse = $2, share_heirs = $3, invisible = $4, locked = $5
		WHERE id = $1
	`, uuid.UUID(memoryID), sharing.Spouse, sharing.Heirs, sharing.Invisible, sharing.Locked)
	if err != nil {
		return fmt.Errorf("update memory sharing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update memory sharing rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, memoryID id.MemoryID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = $1`, uuid.UUID(memoryID))
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete memory rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE owner_id = $1`, uuid.UUID(ownerID))
	if err != nil {
		return 0, fmt.Errorf("delete memories by owner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete memories by owner rows affected: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*models.Memory, error) {
	var (
		m                 models.Memory
		memoryID, ownerID uuid.UUID
		institutionID     uuid.NullUUID
	)
	if err := row.Scan(
		&memoryID, &ownerID, &institutionID, &m.Title, &m.Body,
		&m.Sharing.Spouse, &m.Sharing.Heirs, &m.Sharing.Invisible, &m.Sharing.Locked,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.ID = id.MemoryID(memoryID)
	m.OwnerID = id.UserID(ownerID)
	m.InstitutionID = id.InstitutionID(database.UUIDOrNil(institutionID))
	return &m, nil
}
