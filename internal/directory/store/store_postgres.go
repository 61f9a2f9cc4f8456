package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"elan/internal/directory/models"
	"elan/internal/platform/database"
	"elan/internal/rbac"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// PostgresStore persists the directory in users, user_clients and invites.
// Client books live in user_clients with a position column so their order
// survives a round trip.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) withTx(ctx context.Context, name string, fn func(exec dbExecutor) error) error {
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

const userColumns = `id, email, name, role, principal_id, institution_id, invited_by, created_at, updated_at`

const inviteColumns = `id, email, role, principal_id, institution_id, secret_hash, issued_by,
	created_at, expires_at, accepted_at, accepted_by`

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	return s.withTx(ctx, "create user", func(exec dbExecutor) error {
		if err := insertUser(ctx, exec, user); err != nil {
			return err
		}
		return replaceClients(ctx, exec, user.ID, user.AssignedClients)
	})
}

func insertUser(ctx context.Context, exec dbExecutor, user *models.User) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(user.ID),
		user.Email,
		user.Name,
		string(user.Role),
		database.NullUUID(uuid.UUID(user.PrincipalID)),
		database.NullUUID(uuid.UUID(user.InstitutionID)),
		database.NullUUID(uuid.UUID(user.InvitedBy)),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.AssignedClients, err = s.clients(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *PostgresStore) clients(ctx context.Context, userID id.UserID) ([]id.UserID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client_id FROM user_clients WHERE advisor_id = $1 ORDER BY position`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list assigned clients: %w", err)
	}
	defer rows.Close()

	var out []id.UserID
	for rows.Next() {
		var clientID uuid.UUID
		if err := rows.Scan(&clientID); err != nil {
			return nil, fmt.Errorf("scan assigned client: %w", err)
		}
		out = append(out, id.UserID(clientID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assigned clients: %w", err)
	}
	return out, nil
}

// ListByInstitution returns the institution's users without their client
// books.
func (s *PostgresStore) ListByInstitution(ctx context.Context, institutionID id.InstitutionID) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE institution_id = $1 ORDER BY created_at, email`,
		uuid.UUID(institutionID))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) SetAssignedClients(ctx context.Context, userID id.UserID, clients []id.UserID, at time.Time) error {
	return s.withTx(ctx, "assign clients", func(exec dbExecutor) error {
		res, err := exec.ExecContext(ctx, `UPDATE users SET updated_at = $2 WHERE id = $1`, uuid.UUID(userID), at)
		if err != nil {
			return fmt.Errorf("touch user: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("touch user rows affected: %w", err)
		} else if n == 0 {
			return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return replaceClients(ctx, exec, userID, clients)
	})
}

func replaceClients(ctx context.Context, exec dbExecutor, userID id.UserID, clients []id.UserID) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM user_clients WHERE advisor_id = $1`, uuid.UUID(userID)); err != nil {
		return fmt.Errorf("clear assigned clients: %w", err)
	}
	for i, clientID := range clients {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO user_clients (advisor_id, client_id, position) VALUES ($1, $2, $3)`,
			uuid.UUID(userID), uuid.UUID(clientID), i)
		if err != nil {
			return fmt.Errorf("insert assigned client: %w", err)
		}
	}
	return nil
}

// DeleteUser removes the user with the invites that name them. Client book
// rows on either side cascade.
func (s *PostgresStore) DeleteUser(ctx context.Context, userID id.UserID) error {
	return s.withTx(ctx, "delete user", func(exec dbExecutor) error {
		if _, err := exec.ExecContext(ctx, `
			DELETE FROM invites
			WHERE accepted_by = $1 OR (issued_by = $1 AND accepted_at IS NULL)
		`, uuid.UUID(userID)); err != nil {
			return fmt.Errorf("delete invites: %w", err)
		}
		res, err := exec.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete user rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil
	})
}

func (s *PostgresStore) CreateInvite(ctx context.Context, inv *models.Invite) error {
	if inv == nil {
		return fmt.Errorf("invite is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invites (`+inviteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(inv.ID),
		inv.Email,
		string(inv.Role),
		database.NullUUID(uuid.UUID(inv.PrincipalID)),
		database.NullUUID(uuid.UUID(inv.InstitutionID)),
		inv.SecretHash,
		uuid.UUID(inv.IssuedBy),
		inv.CreatedAt,
		inv.ExpiresAt,
		inv.AcceptedAt,
		database.NullUUID(uuid.UUID(inv.AcceptedBy)),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindInvite(ctx context.Context, inviteID id.InviteID) (*models.Invite, error) {
	inv, err := scanInvite(s.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = $1`, uuid.UUID(inviteID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invite not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return inv, nil
}

// AcceptInvite inserts the user and claims the invite in one transaction.
// The conditional update makes a second redemption fail with ErrAlreadyUsed.
func (s *PostgresStore) AcceptInvite(ctx context.Context, inv *models.Invite, user *models.User) error {
	if inv == nil || user == nil || inv.AcceptedAt == nil {
		return fmt.Errorf("accepted invite and user are required")
	}
	return s.withTx(ctx, "accept invite", func(exec dbExecutor) error {
		if err := insertUser(ctx, exec, user); err != nil {
			return err
		}
		res, err := exec.ExecContext(ctx, `
			UPDATE invites SET accepted_at = $2, accepted_by = $3
			WHERE id = $1 AND accepted_at IS NULL
		`, uuid.UUID(inv.ID), *inv.AcceptedAt, uuid.UUID(user.ID))
		if err != nil {
			return fmt.Errorf("claim invite: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim invite rows affected: %w", err)
		}
		if n == 0 {
			return sentinel.ErrAlreadyUsed
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                               models.User
		userID                          uuid.UUID
		role                            string
		principal, institution, invited uuid.NullUUID
	)
	if err := row.Scan(&userID, &u.Email, &u.Name, &role, &principal, &institution, &invited, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	u.Role = rbac.Role(role)
	u.PrincipalID = id.UserID(database.UUIDOrNil(principal))
	u.InstitutionID = id.InstitutionID(database.UUIDOrNil(institution))
	u.InvitedBy = id.UserID(database.UUIDOrNil(invited))
	return &u, nil
}

func scanInvite(row rowScanner) (*models.Invite, error) {
	var (
		inv                                models.Invite
		inviteID, issuer                   uuid.UUID
		role                               string
		principal, institution, acceptedBy uuid.NullUUID
		acceptedAt                         sql.NullTime
	)
	if err := row.Scan(&inviteID, &inv.Email, &role, &principal, &institution, &inv.SecretHash, &issuer,
		&inv.CreatedAt, &inv.ExpiresAt, &acceptedAt, &acceptedBy); err != nil {
		return nil, err
	}
	inv.ID = id.InviteID(inviteID)
	inv.Role = rbac.Role(role)
	inv.PrincipalID = id.UserID(database.UUIDOrNil(principal))
	inv.InstitutionID = id.InstitutionID(database.UUIDOrNil(institution))
	inv.IssuedBy = id.UserID(issuer)
	inv.AcceptedBy = id.UserID(database.UUIDOrNil(acceptedBy))
	if acceptedAt.Valid {
		t := acceptedAt.Time
		inv.AcceptedAt = &t
	}
	return &inv, nil
}
