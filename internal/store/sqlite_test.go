package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/lostfound/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "claims.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSQLiteStore_CreateAndGetClaim(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	claim, err := s.CreateClaim(ctx, "item-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, claim)
	assert.Equal(t, "item-1", claim.ItemID)
	assert.Equal(t, "user-1", claim.UserID)
	assert.Equal(t, models.ClaimPending, claim.Status)
	assert.Zero(t, claim.MessageCount)

	got, err := s.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, claim.ID, got.ID)
}

func TestSQLiteStore_GetClaimMissing(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.GetClaim(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_ListClaims(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	first, err := s.CreateClaim(ctx, "item-1", "user-1")
	require.NoError(t, err)
	_, err = s.CreateClaim(ctx, "item-2", "user-2")
	require.NoError(t, err)
	second, err := s.CreateClaim(ctx, "item-3", "user-1")
	require.NoError(t, err)

	mine, err := s.ListClaimsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	pending, total, err := s.ListClaimsByStatus(ctx, models.ClaimPending, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)

	none, err := s.ListClaimsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSQLiteStore_Analytics(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	claim, err := s.CreateClaim(ctx, "item-1", "user-1")
	require.NoError(t, err)
	_, err = s.CreateClaim(ctx, "item-2", "user-2")
	require.NoError(t, err)

	require.NoError(t, s.IncrementMessageCount(ctx, claim.ID))
	require.NoError(t, s.IncrementMessageCount(ctx, claim.ID))

	got, err := s.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.MessageCount)

	counts, err := s.CountClaimsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{models.ClaimPending: 2}, counts)

	sum, err := s.SumMessageCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum)
}
