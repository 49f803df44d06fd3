package service

import (
	"Tipwall/internal/model"
	"cmp"
	"slices"
	"time"
)

const (
	replyWeight    = 10
	upvoteWeight   = 3
	downvoteWeight = 1
)

// Score 回复权重最高，踩一次只抵一分
func Score(stats *model.PostStats) int64 {
	if stats == nil {
		return 0
	}
	return stats.ReplyCount*replyWeight + stats.UpvoteCount*upvoteWeight - stats.DownvoteCount*downvoteWeight
}

// RankKey 排序所需的字段
type RankKey struct {
	LedgerID  uint64
	CreatedAt time.Time
	Score     int64
}

func compareRank(a, b RankKey) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.LedgerID, a.LedgerID)
}

// SortByRank 分数降序，其次创建时间降序，最后按 ledger id 降序保证全序
func SortByRank[T any](items []T, key func(T) RankKey) {
	slices.SortFunc(items, func(a, b T) int {
		return compareRank(key(a), key(b))
	})
}
