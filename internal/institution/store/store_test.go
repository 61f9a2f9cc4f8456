package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/internal/institution/models"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newInstitution(t *testing.T, name string) *models.Institution {
	t.Helper()
	inst, err := models.NewInstitution(id.NewInstitutionID(), name, now)
	require.NoError(t, err)
	return inst
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	first := newInstitution(t, "Zurich Private")
	require.NoError(t, s.CreateIfNameAvailable(ctx, first))
	require.ErrorIs(t, s.CreateIfNameAvailable(ctx, newInstitution(t, "ZURICH private")), sentinel.ErrAlreadyUsed)
	require.NoError(t, s.CreateIfNameAvailable(ctx, newInstitution(t, "Alpine Family Office")))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpine Family Office", all[0].Name)

	found, err := s.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.NoError(t, found.Deactivate(now.Add(time.Hour)))
	require.NoError(t, s.Update(ctx, found))

	again, err := s.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive())

	_, err = s.FindByID(ctx, id.NewInstitutionID())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	require.ErrorIs(t, s.Update(ctx, newInstitution(t, "Ghost")), sentinel.ErrNotFound)
}

func TestPostgresStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgres(db)
	ctx := context.Background()
	inst := newInstitution(t, "Zurich Private")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO institutions")).
		WithArgs(uuid.UUID(inst.ID), "Zurich Private", "active", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.CreateIfNameAvailable(ctx, inst))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO institutions")).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, s.CreateIfNameAvailable(ctx, inst), sentinel.ErrAlreadyUsed)

	mock.ExpectQuery(regexp.QuoteMeta("FROM institutions")).
		WithArgs(uuid.UUID(inst.ID)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status", "created_at", "updated_at"}).
			AddRow(inst.ID.String(), "Zurich Private", "inactive", now, now))
	found, err := s.FindByID(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, found.Status)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE institutions")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, s.Update(ctx, inst), sentinel.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
