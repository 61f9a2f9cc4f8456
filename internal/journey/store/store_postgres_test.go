package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/internal/journey/models"
	"elan/internal/workflow"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

var journeyRowColumns = []string{
	"id", "owner_id", "institution_id", "assigned_rm", "title", "narrative", "category",
	"emotional_objective", "discretion", "status", "current_version",
	"share_spouse", "share_heirs", "invisible", "locked", "created_at", "updated_at",
}

var versionRowColumns = []string{
	"journey_id", "number", "title", "narrative", "status", "event",
	"modified_by", "approved_by", "rejected_by", "rejection_reason", "created_at",
}

func TestPostgresStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)
	journey, first := newDraft(id.NewUserID(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journeys")).
		WithArgs(uuid.UUID(journey.ID), uuid.UUID(journey.OwnerID), nil, nil,
			journey.Title, "", "", "", "", "draft", 1, false, false, false, false,
			journey.CreatedAt, journey.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journey_versions")).
		WithArgs(uuid.UUID(journey.ID), 1, journey.Title, "", "draft", "",
			uuid.UUID(journey.OwnerID), nil, nil, "", first.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Create(context.Background(), journey, first))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRollsBackOnVersionFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)
	journey, first := newDraft(id.NewUserID(), time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journeys")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journey_versions")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = store.Create(context.Background(), journey, first)
	require.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)
	journeyID, owner, rm := id.NewJourneyID(), id.NewUserID(), id.NewUserID()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM journeys WHERE id = $1")).
			WithArgs(uuid.UUID(journeyID)).
			WillReturnRows(sqlmock.NewRows(journeyRowColumns).AddRow(
				journeyID.String(), owner.String(), nil, rm.String(),
				"Patagonia", "Estancia stay", "travel", "reconnect", "maximum", "rm_review", 2,
				true, false, false, true, at, at,
			))

		j, err := store.FindByID(context.Background(), journeyID)
		require.NoError(t, err)
		assert.Equal(t, owner, j.OwnerID)
		assert.True(t, j.InstitutionID.IsNil())
		assert.Equal(t, rm, j.AssignedRM)
		assert.Equal(t, workflow.StatusRMReview, j.Status)
		assert.Equal(t, 2, j.CurrentVersion)
		assert.True(t, j.Sharing.Spouse)
		assert.True(t, j.Sharing.Locked)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM journeys WHERE id = $1")).
			WillReturnError(sql.ErrNoRows)

		_, err := store.FindByID(context.Background(), journeyID)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByIDLocksInsideTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnError(sql.ErrNoRows)
	_, err = NewPostgresTx(tx).FindByID(context.Background(), id.NewJourneyID())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendVersion(t *testing.T) {
	newStore := func(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return NewPostgres(db), mock
	}
	approver := id.NewUserID()

	t.Run("appends when the pointer has not moved", func(t *testing.T) {
		store, mock := newStore(t)
		journey, _ := newDraft(id.NewUserID(), time.Now())
		next := journey.NextVersion(workflow.StatusRMReview, workflow.EventSubmit, journey.OwnerID, time.Now())
		next.ApprovedBy = approver
		require.NoError(t, journey.Apply(next))

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE journeys")).
			WithArgs(uuid.UUID(journey.ID), 1, journey.Title, "", "", "", "", "rm_review", 2, journey.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journey_versions")).
			WithArgs(uuid.UUID(journey.ID), 2, journey.Title, "", "rm_review", "submit",
				uuid.UUID(journey.OwnerID), uuid.UUID(approver), nil, "", next.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, store.AppendVersion(context.Background(), journey, next))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("content edit persists the discretion level", func(t *testing.T) {
		store, mock := newStore(t)
		journey, _ := newDraft(id.NewUserID(), time.Now())
		journey.Discretion = models.DiscretionMaximum
		next := journey.NextVersion(workflow.StatusDraft, "", journey.OwnerID, time.Now())
		require.NoError(t, journey.Apply(next))

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("discretion = $7, status = $8")).
			WithArgs(uuid.UUID(journey.ID), 1, journey.Title, "", "", "", "maximum", "draft", 2, journey.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO journey_versions")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, store.AppendVersion(context.Background(), journey, next))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("moved pointer is a conflict", func(t *testing.T) {
		store, mock := newStore(t)
		journey, _ := newDraft(id.NewUserID(), time.Now())
		next := journey.NextVersion(workflow.StatusRMReview, workflow.EventSubmit, journey.OwnerID, time.Now())
		require.NoError(t, journey.Apply(next))

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE journeys")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		require.ErrorIs(t, store.AppendVersion(context.Background(), journey, next), sentinel.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inconsistent version is rejected before touching the database", func(t *testing.T) {
		store, mock := newStore(t)
		journey, _ := newDraft(id.NewUserID(), time.Now())
		next := journey.NextVersion(workflow.StatusRMReview, workflow.EventSubmit, journey.OwnerID, time.Now())

		require.ErrorIs(t, store.AppendVersion(context.Background(), journey, next), sentinel.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Versions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)
	journeyID, owner, officer := id.NewJourneyID(), id.NewUserID(), id.NewUserID()
	at := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM journey_versions WHERE journey_id = $1 ORDER BY number")).
		WithArgs(uuid.UUID(journeyID)).
		WillReturnRows(sqlmock.NewRows(versionRowColumns).
			AddRow(journeyID.String(), 1, "t", "", "draft", "", owner.String(), nil, nil, "", at).
			AddRow(journeyID.String(), 2, "t", "", "draft", "reject", officer.String(), nil, officer.String(), "Insufficient KYC", at))

	versions, err := store.Versions(context.Background(), journeyID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, workflow.EventReject, versions[1].Event)
	assert.Equal(t, officer, versions[1].RejectedBy)
	assert.True(t, versions[1].ApprovedBy.IsNil())
	assert.Equal(t, "Insufficient KYC", versions[1].RejectionReason)

	mock.ExpectQuery(regexp.QuoteMeta("FROM journey_versions")).
		WillReturnRows(sqlmock.NewRows(versionRowColumns))
	_, err = store.Versions(context.Background(), journeyID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)
	journeyID, owner := id.NewJourneyID(), id.NewUserID()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journeys WHERE id = $1")).
		WithArgs(uuid.UUID(journeyID)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, store.Delete(context.Background(), journeyID), sentinel.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journeys WHERE owner_id = $1")).
		WithArgs(uuid.UUID(owner)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := store.DeleteByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, mock.ExpectationsWereMet())
}
