package booster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokenft/pokenft/pokenft/database/models"
)

func makePool(n int) []models.CardRecord {
	pool := make([]models.CardRecord, n)
	for i := range pool {
		pool[i] = models.CardRecord{ID: fmt.Sprintf("base1-%d", i+1)}
	}
	return pool
}

func TestSelectReturnsDistinctCardsFromPool(t *testing.T) {
	pool := makePool(60)
	poolIDs := make(map[string]bool, len(pool))
	for _, c := range pool {
		poolIDs[c.ID] = true
	}

	for run := 0; run < 50; run++ {
		ids, err := Select(pool, 5)
		require.NoError(t, err)
		require.Len(t, ids, 5)

		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			assert.True(t, poolIDs[id], "selected id %s not in pool", id)
			assert.False(t, seen[id], "duplicate id %s in booster", id)
			seen[id] = true
		}
	}
}

func TestSelectWholePool(t *testing.T) {
	pool := makePool(5)

	ids, err := Select(pool, 5)
	require.NoError(t, err)
	assert.Len(t, ids, 5)

	seen := make(map[string]bool)
	for _, id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 5)
}

func TestSelectFailsWhenPoolTooSmall(t *testing.T) {
	pool := makePool(3)

	ids, err := Select(pool, 5)
	require.ErrorIs(t, err, ErrInsufficientCards)
	assert.Nil(t, ids, "no partial booster on failure")
}

func TestSelectZeroReturnsEmpty(t *testing.T) {
	pool := makePool(3)

	ids, err := Select(pool, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSelectRejectsNegativeCount(t *testing.T) {
	pool := makePool(10)

	_, err := Select(pool, -1)
	assert.Error(t, err)
}

func TestSelectDoesNotModifyPool(t *testing.T) {
	pool := makePool(10)
	original := make([]models.CardRecord, len(pool))
	copy(original, pool)

	_, err := Select(pool, 4)
	require.NoError(t, err)
	assert.Equal(t, original, pool)
}
