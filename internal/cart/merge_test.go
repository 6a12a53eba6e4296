package cart

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeMovesSessionCartIntoUserCart(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedService(t, db, "A", 100)
	b := seedService(t, db, "B", 200)
	u := seedUser(t, db, "anna")
	store := session.NewMemoryStore(time.Hour)
	require.NoError(t, store.Save(ctx, "v1", []uint{a.ID, b.ID}))

	n, err := Merge(ctx, db, store, "v1", u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	view, err := Contents(ctx, NewPersistedCart(db, u.ID))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, view.IDs())

	left, _ := store.Load(ctx, "v1")
	assert.Empty(t, left)
}

func TestMergeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedService(t, db, "A", 100)
	u := seedUser(t, db, "anna")
	store := session.NewMemoryStore(time.Hour)
	require.NoError(t, store.Save(ctx, "v1", []uint{a.ID}))

	n, err := Merge(ctx, db, store, "v1", u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = Merge(ctx, db, store, "v1", u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.EqualValues(t, 1, countRows(t, db, u.ID))
}

func TestMergeSkipsExistingAndMissing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedService(t, db, "A", 100)
	b := seedService(t, db, "B", 200)
	u := seedUser(t, db, "anna")
	require.NoError(t, db.Create(&models.CartItem{UserID: u.ID, ServiceID: a.ID}).Error)
	store := session.NewMemoryStore(time.Hour)
	require.NoError(t, store.Save(ctx, "v1", []uint{a.ID, 777, b.ID, b.ID}))

	n, err := Merge(ctx, db, store, "v1", u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 2, countRows(t, db, u.ID))

	// Cleared even though some ids were skipped.
	left, _ := store.Load(ctx, "v1")
	assert.Empty(t, left)
}

func TestMergeFailureKeepsSessionCart(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedService(t, db, "A", 100)
	u := seedUser(t, db, "anna")
	store := session.NewMemoryStore(time.Hour)
	require.NoError(t, store.Save(ctx, "v1", []uint{a.ID}))
	require.NoError(t, db.Migrator().DropTable(&models.CartItem{}))

	n, err := Merge(ctx, db, store, "v1", u.ID)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, apperr.ErrStorage), "got %v", err)

	left, _ := store.Load(ctx, "v1")
	assert.Equal(t, []uint{a.ID}, left)
}

func TestMergeWithoutIdentityIsNoop(t *testing.T) {
	db := setupTestDB(t)
	store := session.NewMemoryStore(time.Hour)
	n, err := Merge(context.Background(), db, store, "", 1)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = Merge(context.Background(), db, store, "v1", 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}
