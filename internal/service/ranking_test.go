package service

import (
	"Tipwall/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	assert.Equal(t, int64(28), Score(&model.PostStats{ReplyCount: 2, UpvoteCount: 3, DownvoteCount: 1}))
	assert.Equal(t, int64(-4), Score(&model.PostStats{DownvoteCount: 4}))
	assert.Equal(t, int64(0), Score(nil))
}

func TestSortByRank(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	keys := []RankKey{
		{LedgerID: 1, CreatedAt: base, Score: 5},
		{LedgerID: 2, CreatedAt: base.Add(time.Hour), Score: 5},
		{LedgerID: 3, CreatedAt: base, Score: 30},
		{LedgerID: 4, CreatedAt: base, Score: 5},
		{LedgerID: 5, CreatedAt: base.Add(-time.Hour), Score: -1},
	}
	SortByRank(keys, func(k RankKey) RankKey { return k })

	var order []uint64
	for _, k := range keys {
		order = append(order, k.LedgerID)
	}
	assert.Equal(t, []uint64{3, 2, 4, 1, 5}, order)
}
