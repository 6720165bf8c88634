package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRequests(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	f := seed(t, db)

	third := &models.User{Name: "Third", Email: "third@example.com"}
	require.NoError(t, db.CreateUser(ctx, third))

	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	mk := func(requester int64, offset time.Duration) *models.ItemRequest {
		req := &models.ItemRequest{Description: "Need something", RequesterID: requester, Created: base.Add(offset)}
		require.NoError(t, db.CreateRequest(ctx, req))
		return req
	}
	own1 := mk(f.booker.ID, 0)
	own2 := mk(f.booker.ID, time.Hour)
	other1 := mk(f.owner.ID, 2*time.Hour)
	other2 := mk(third.ID, 3*time.Hour)
	other3 := mk(f.owner.ID, 4*time.Hour)

	found, err := db.GetRequest(ctx, own1.ID)
	require.NoError(t, err)
	assert.Equal(t, own1.Description, found.Description)
	assert.True(t, found.Created.Equal(base))

	_, err = db.GetRequest(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := db.ListRequestsByRequester(ctx, f.booker.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, own2.ID, mine[0].ID)
	assert.Equal(t, own1.ID, mine[1].ID)

	page, err := db.ListRequestsExcept(ctx, f.booker.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, other3.ID, page[0].ID)
	assert.Equal(t, other2.ID, page[1].ID)

	page, err = db.ListRequestsExcept(ctx, f.booker.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, other1.ID, page[0].ID)

	page, err = db.ListRequestsExcept(ctx, f.booker.ID, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}
