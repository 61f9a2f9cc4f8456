package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/internal/visibility/models"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

func TestPostgresStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)
	ctx := context.Background()
	owner, advisor := id.NewUserID(), id.NewUserID()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	grant, err := models.NewGrant(id.NewScopeID(), owner, advisor, false, []string{"b", "a"}, at)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO visibility_grants")).
		WithArgs(uuid.UUID(grant.ID), uuid.UUID(owner), uuid.UUID(advisor), false, []byte(`["a","b"]`), at, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Save(ctx, grant))

	columns := []string{"id", "owner_id", "advisor_id", "all_entities", "entity_ids", "granted_at", "revoked_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM visibility_grants WHERE owner_id = $1 AND advisor_id = $2")).
		WithArgs(uuid.UUID(owner), uuid.UUID(advisor)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(grant.ID.String(), owner.String(), advisor.String(), false, []byte(`["a","b"]`), at, at.Add(time.Hour)))
	found, err := store.Find(ctx, owner, advisor)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, found.EntityIDs)
	require.NotNil(t, found.RevokedAt)
	assert.False(t, found.IsActive())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE visibility_grants")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, store.Update(ctx, grant), sentinel.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
