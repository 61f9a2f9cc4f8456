package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"elan/internal/journey/models"
	"elan/internal/platform/database"
	"elan/internal/workflow"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// PostgresStore persists journeys in the journeys table and their history in
// journey_versions.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgres constructs a PostgreSQL-backed journey store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs a journey store bound to a transaction. Reads
// through it lock the journey row.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// withTx runs fn in the bound transaction, or in a fresh one.
func (s *PostgresStore) withTx(ctx context.Context, name string, fn func(exec dbExecutor) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s tx: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

const journeyColumns = `id, owner_id, institution_id, assigned_rm, title, narrative, category,
	emotional_objective, discretion, status, current_version,
	share_spouse, share_heirs, invisible, locked, created_at, updated_at`

const versionColumns = `journey_id, number, title, narrative, status, event,
	modified_by, approved_by, rejected_by, rejection_reason, created_at`

func (s *PostgresStore) Create(ctx context.Context, journey *models.Journey, first *models.Version) error {
	if journey == nil || first == nil {
		return fmt.Errorf("journey and first version are required")
	}
	if first.Number != 1 || journey.CurrentVersion != 1 || first.Status != journey.Status {
		return sentinel.ErrInvalidState
	}
	return s.withTx(ctx, "create journey", func(exec dbExecutor) error {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO journeys (`+journeyColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`,
			uuid.UUID(journey.ID),
			uuid.UUID(journey.OwnerID),
			database.NullUUID(uuid.UUID(journey.InstitutionID)),
			database.NullUUID(uuid.UUID(journey.AssignedRM)),
			journey.Title,
			journey.Narrative,
			journey.Category,
			journey.EmotionalObjective,
			string(journey.Discretion),
			string(journey.Status),
			journey.CurrentVersion,
			journey.Sharing.Spouse,
			journey.Sharing.Heirs,
			journey.Sharing.Invisible,
			journey.Sharing.Locked,
			journey.CreatedAt,
			journey.UpdatedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert journey: %w", err)
		}
		return insertVersion(ctx, exec, first)
	})
}

// FindByID loads a journey; inside a transaction the row stays locked until
// commit so concurrent transitions serialize.
func (s *PostgresStore) FindByID(ctx context.Context, journeyID id.JourneyID) (*models.Journey, error) {
	query := `SELECT ` + journeyColumns + ` FROM journeys WHERE id = $1`
	if s.tx != nil {
		query += ` FOR UPDATE`
	}
	journey, err := scanJourney(s.execer().QueryRowContext(ctx, query, uuid.UUID(journeyID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find journey: %w", err)
	}
	return journey, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Journey, error) {
	return s.queryJourneys(ctx, `SELECT `+journeyColumns+` FROM journeys ORDER BY created_at, id`)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Journey, error) {
	return s.queryJourneys(ctx, `SELECT `+journeyColumns+` FROM journeys WHERE owner_id = $1 ORDER BY created_at, id`,
		uuid.UUID(ownerID))
}

// AppendVersion moves the journey pointer only if it still points at the
// version before next, then stores next.
func (s *PostgresStore) AppendVersion(ctx context.Context, journey *models.Journey, next *models.Version) error {
	if next.JourneyID != journey.ID || journey.CurrentVersion != next.Number {
		return sentinel.ErrConflict
	}
	if journey.Status != next.Status {
		return sentinel.ErrInvalidState
	}
	return s.withTx(ctx, "append journey version", func(exec dbExecutor) error {
		res, err := exec.ExecContext(ctx, `
			UPDATE journeys
			SET title = $3, narrative = $4, category = $5, emotional_objective = $6,
				discretion = $7, status = $8, current_version = $9, updated_at = $10
			WHERE id = $1 AND current_version = $2
		`,
			uuid.UUID(journey.ID),
			next.Number-1,
			journey.Title,
			journey.Narrative,
			journey.Category,
			journey.EmotionalObjective,
			string(journey.Discretion),
			string(journey.Status),
			next.Number,
			journey.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update journey: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update journey rows affected: %w", err)
		}
		if affected == 0 {
			return sentinel.ErrConflict
		}
		return insertVersion(ctx, exec, next)
	})
}

func (s *PostgresStore) UpdateSharing(ctx context.Context, journeyID id.JourneyID, sharing models.Sharing) error {
	res, err := s.execer().ExecContext(ctx, `
		UPDATE journeys
		SET share_spouse = $2, share_heirs = $3, invisible = $4, locked = $5
		WHERE id = $1
	`, uuid.UUID(journeyID), sharing.Spouse, sharing.Heirs, sharing.Invisible, sharing.Locked)
	if err != nil {
		return fmt.Errorf("update journey sharing: %w", err)
	}
	return requireAffected(res, "update journey sharing")
}

func (s *PostgresStore) Versions(ctx context.Context, journeyID id.JourneyID) ([]*models.Version, error) {
	rows, err := s.execer().QueryContext(ctx,
		`SELECT `+versionColumns+` FROM journey_versions WHERE journey_id = $1 ORDER BY number`,
		uuid.UUID(journeyID))
	if err != nil {
		return nil, fmt.Errorf("list journey versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journey version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journey versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return versions, nil
}

// Delete removes the journey; journey_versions cascade.
func (s *PostgresStore) Delete(ctx context.Context, journeyID id.JourneyID) error {
	res, err := s.execer().ExecContext(ctx, `DELETE FROM journeys WHERE id = $1`, uuid.UUID(journeyID))
	if err != nil {
		return fmt.Errorf("delete journey: %w", err)
	}
	return requireAffected(res, "delete journey")
}

func (s *PostgresStore) DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error) {
	res, err := s.execer().ExecContext(ctx, `DELETE FROM journeys WHERE owner_id = $1`, uuid.UUID(ownerID))
	if err != nil {
		return 0, fmt.Errorf("delete journeys by owner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete journeys by owner rows affected: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) queryJourneys(ctx context.Context, query string, args ...any) ([]*models.Journey, error) {
	rows, err := s.execer().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}
	defer rows.Close()

	var journeys []*models.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journey: %w", err)
		}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journeys: %w", err)
	}
	return journeys, nil
}

func insertVersion(ctx context.Context, exec dbExecutor, v *models.Version) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO journey_versions (`+versionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(v.JourneyID),
		v.Number,
		v.Title,
		v.Narrative,
		string(v.Status),
		string(v.Event),
		uuid.UUID(v.ModifiedBy),
		database.NullUUID(uuid.UUID(v.ApprovedBy)),
		database.NullUUID(uuid.UUID(v.RejectedBy)),
		v.RejectionReason,
		v.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert journey version: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJourney(row rowScanner) (*models.Journey, error) {
	var (
		j                         models.Journey
		journeyID, ownerID        uuid.UUID
		institutionID, assignedRM uuid.NullUUID
		discretion, status        string
	)
	if err := row.Scan(
		&journeyID, &ownerID, &institutionID, &assignedRM,
		&j.Title, &j.Narrative, &j.Category, &j.EmotionalObjective,
		&discretion, &status, &j.CurrentVersion,
		&j.Sharing.Spouse, &j.Sharing.Heirs, &j.Sharing.Invisible, &j.Sharing.Locked,
		&j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	j.ID = id.JourneyID(journeyID)
	j.OwnerID = id.UserID(ownerID)
	j.InstitutionID = id.InstitutionID(database.UUIDOrNil(institutionID))
	j.AssignedRM = id.UserID(database.UUIDOrNil(assignedRM))
	j.Discretion = models.DiscretionLevel(discretion)
	j.Status = workflow.Status(status)
	return &j, nil
}

func scanVersion(row rowScanner) (*models.Version, error) {
	var (
		v                      models.Version
		journeyID, modifiedBy  uuid.UUID
		approvedBy, rejectedBy uuid.NullUUID
		status, event          string
	)
	if err := row.Scan(
		&journeyID, &v.Number, &v.Title, &v.Narrative, &status, &event,
		&modifiedBy, &approvedBy, &rejectedBy, &v.RejectionReason, &v.CreatedAt,
	); err != nil {
		return nil, err
	}
	v.JourneyID = id.JourneyID(journeyID)
	v.ModifiedBy = id.UserID(modifiedBy)
	v.ApprovedBy = id.UserID(database.UUIDOrNil(approvedBy))
	v.RejectedBy = id.UserID(database.UUIDOrNil(rejectedBy))
	v.Status = workflow.Status(status)
	v.Event = workflow.Event(event)
	return &v, nil
}
