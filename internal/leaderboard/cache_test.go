package leaderboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voleai/padelpro/internal/padel"
)

func TestMemberScore_Ordering(t *testing.T) {
	// More points sorts first (smaller score).
	assert.Less(t, memberScore(200, 5), memberScore(100, 5))
	// Equal points: the earlier sequence sorts first.
	assert.Less(t, memberScore(100, 1), memberScore(100, 2))
	// Fractional point totals still order correctly.
	assert.Less(t, memberScore(137.5, 1), memberScore(137.4, 1))
}

func TestMockCache_TopNAndRank(t *testing.T) {
	cache := NewMock()
	ctx := context.Background()

	require.NoError(t, cache.UpdateStanding(ctx, padel.SubjectPlayer, "galan", 300, 3))
	require.NoError(t, cache.UpdateStanding(ctx, padel.SubjectPlayer, "lebron", 300, 5))
	require.NoError(t, cache.UpdateStanding(ctx, padel.SubjectPlayer, "tapia", 450, 4))
	require.NoError(t, cache.UpdateStanding(ctx, padel.SubjectPair, "galan--lebron", 900, 1))

	top, err := cache.TopN(ctx, padel.SubjectPlayer, 10)
	require.NoError(t, err)
	require.Len(t, top, 3, "pair standings stay separate")
	assert.Equal(t, "tapia", top[0].SubjectID)
	assert.Equal(t, "galan", top[1].SubjectID, "tie breaks toward the earlier sequence")
	assert.Equal(t, "lebron", top[2].SubjectID)

	rank, err := cache.Rank(ctx, padel.SubjectPlayer, "lebron")
	require.NoError(t, err)
	assert.Equal(t, 3, rank)

	_, err = cache.Rank(ctx, padel.SubjectPlayer, "nobody")
	require.Error(t, err)

	// A new result moves the subject without duplicating it.
	require.NoError(t, cache.UpdateStanding(ctx, padel.SubjectPlayer, "lebron", 500, 6))
	top, err = cache.TopN(ctx, padel.SubjectPlayer, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "lebron", top[0].SubjectID)
}

func TestMockCache_RemoveAndReset(t *testing.T) {
	cache := NewMock()
	ctx := context.Background()

	require.NoError(t, cache.UpdateStanding(ctx, padel.SubjectPlayer, "galan", 300, 1))
	require.NoError(t, cache.Remove(ctx, padel.SubjectPlayer, "galan"))
	top, err := cache.TopN(ctx, padel.SubjectPlayer, 10)
	require.NoError(t, err)
	assert.Empty(t, top)

	require.NoError(t, cache.UpdateStanding(ctx, padel.SubjectPlayer, "galan", 300, 1))
	require.NoError(t, cache.Reset(ctx))
	top, err = cache.TopN(ctx, padel.SubjectPlayer, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
