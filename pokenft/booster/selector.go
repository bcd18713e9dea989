package booster

import (
	"fmt"
	"math/rand"

	"github.com/pokenft/pokenft/pokenft/database/models"
)

// ErrInsufficientCards is returned when a set holds fewer cards than the
// booster asks for. No partial booster is produced.
var ErrInsufficientCards = fmt.Errorf("not enough cards in set for booster")

// Select draws n distinct cards from the pool uniformly at random using a
// partial Fisher-Yates shuffle, and returns their ids. Zero draws zero
// cards. The pool is not modified.
func Select(pool []models.CardRecord, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("booster size must not be negative, got %d", n)
	}
	if n > len(pool) {
		return nil, fmt.Errorf("%w: need %d, set has %d", ErrInsufficientCards, n, len(pool))
	}

	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		j := i + rand.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		ids[i] = pool[idx[i]].ID
	}
	return ids, nil
}
