package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/internal/journey/models"
	"elan/internal/workflow"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

func newDraft(owner id.UserID, at time.Time) (*models.Journey, *models.Version) {
	j := &models.Journey{
		ID:             id.NewJourneyID(),
		OwnerID:        owner,
		Title:          "Svalbard by icebreaker",
		Status:         workflow.StatusDraft,
		CurrentVersion: 1,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	v := &models.Version{JourneyID: j.ID, Number: 1, Title: j.Title, Status: j.Status, ModifiedBy: owner, CreatedAt: at}
	return j, v
}

func TestInMemoryStoreOperations(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	now := time.Now()
	owner := id.NewUserID()

	// Create and find
	journey, first := newDraft(owner, now)
	require.NoError(t, store.Create(ctx, journey, first))
	require.ErrorIs(t, store.Create(ctx, journey, first), sentinel.ErrConflict)

	fetched, err := store.FindByID(ctx, journey.ID)
	require.NoError(t, err)
	assert.Equal(t, journey.Title, fetched.Title)

	// Append
	next := fetched.NextVersion(workflow.StatusRMReview, workflow.EventSubmit, owner, now.Add(time.Minute))
	require.NoError(t, fetched.Apply(next))
	require.NoError(t, store.AppendVersion(ctx, fetched, next))

	// Stale append loses
	stale := journey.Clone()
	staleNext := stale.NextVersion(workflow.StatusRMReview, workflow.EventSubmit, owner, now)
	require.NoError(t, stale.Apply(staleNext))
	require.ErrorIs(t, store.AppendVersion(ctx, stale, staleNext), sentinel.ErrConflict)

	versions, err := store.Versions(ctx, journey.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, workflow.StatusRMReview, versions[1].Status)

	// Copies do not leak back
	versions[0].Status = workflow.StatusArchived
	fetched.Title = "changed"
	versions, err = store.Versions(ctx, journey.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, versions[0].Status)
	again, err := store.FindByID(ctx, journey.ID)
	require.NoError(t, err)
	assert.Equal(t, "Svalbard by icebreaker", again.Title)
	assert.Equal(t, 2, again.CurrentVersion)

	// Sharing
	require.NoError(t, store.UpdateSharing(ctx, journey.ID, models.Sharing{Spouse: true}))
	again, err = store.FindByID(ctx, journey.ID)
	require.NoError(t, err)
	assert.True(t, again.Sharing.Spouse)

	// Delete takes history along
	require.NoError(t, store.Delete(ctx, journey.ID))
	_, err = store.FindByID(ctx, journey.ID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.Versions(ctx, journey.ID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, journey.ID), sentinel.ErrNotFound)
}

func TestInMemoryStore_CreateRejectsInconsistentFirstVersion(t *testing.T) {
	store := NewInMemoryStore()
	journey, first := newDraft(id.NewUserID(), time.Now())
	first.Status = workflow.StatusApproved

	require.ErrorIs(t, store.Create(context.Background(), journey, first), sentinel.ErrInvalidState)
}

func TestInMemoryStore_AppendRejectsStatusMismatch(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	journey, first := newDraft(id.NewUserID(), time.Now())
	require.NoError(t, store.Create(ctx, journey, first))

	next := journey.NextVersion(workflow.StatusRMReview, workflow.EventSubmit, journey.OwnerID, time.Now())
	journey.CurrentVersion = next.Number

	require.ErrorIs(t, store.AppendVersion(ctx, journey, next), sentinel.ErrInvalidState)
}

func TestInMemoryStore_ListAndDeleteByOwner(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	alice, bob := id.NewUserID(), id.NewUserID()

	var aliceIDs []id.JourneyID
	for i := 0; i < 3; i++ {
		j, v := newDraft(alice, time.Now())
		require.NoError(t, store.Create(ctx, j, v))
		aliceIDs = append(aliceIDs, j.ID)
	}
	bobJourney, bobVersion := newDraft(bob, time.Now())
	require.NoError(t, store.Create(ctx, bobJourney, bobVersion))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, jid := range aliceIDs {
		assert.Equal(t, jid, all[i].ID, "insertion order preserved")
	}

	mine, err := store.ListByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	n, err := store.DeleteByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, bobJourney.ID, all[0].ID)
}
