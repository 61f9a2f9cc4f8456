package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"elan/internal/institution/models"
	"elan/internal/platform/database"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// PostgresStore persists institutions. Names are unique on lower(name).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfNameAvailable(ctx context.Context, inst *models.Institution) error {
	if inst == nil {
		return fmt.Errorf("institution is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO institutions (id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		uuid.UUID(inst.ID),
		inst.Name,
		string(inst.Status),
		inst.CreatedAt,
		inst.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("institution name must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create institution: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, institutionID id.InstitutionID) (*models.Institution, error) {
	inst, err := scanInstitution(s.db.QueryRowContext(ctx, `
		SELECT id, name, status, created_at, updated_at
		FROM institutions
		WHERE id = $1
	`, uuid.UUID(institutionID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find institution by id: %w", err)
	}
	return inst, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Institution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, created_at, updated_at
		FROM institutions
		ORDER BY lower(name)
	`)
	if err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	defer rows.Close()

	var out []*models.Institution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan institution: %w", err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate institutions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, inst *models.Institution) error {
	if inst == nil {
		return fmt.Errorf("institution is required")
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE institutions
		SET name = $2, status = $3, updated_at = $4
		WHERE id = $1
	`,
		uuid.UUID(inst.ID),
		inst.Name,
		string(inst.Status),
		inst.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update institution: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update institution rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type institutionRow interface {
	Scan(dest ...any) error
}

func scanInstitution(row institutionRow) (*models.Institution, error) {
	var (
		inst          models.Institution
		status        string
		institutionID uuid.UUID
	)
	if err := row.Scan(&institutionID, &inst.Name, &status, &inst.CreatedAt, &inst.UpdatedAt); err != nil {
		return nil, err
	}
	inst.ID = id.InstitutionID(institutionID)
	inst.Status = models.Status(status)
	return &inst, nil
}
