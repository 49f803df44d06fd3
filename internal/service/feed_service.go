package service

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/model"
	"Tipwall/internal/pkg/security"
	"Tipwall/internal/pkg/util"
	"Tipwall/internal/repository"
	"context"

	"golang.org/x/sync/errgroup"
)

// feedWindow 参与排序的最近帖子数
const feedWindow = 500

type FeedService interface {
	ListFeed(ctx context.Context, viewer *Viewer, page, pageSize int) (*dto.FeedDTO, error)
}

type FeedServiceImpl struct {
	contentRepo repository.ContentRepo
	engagement  EngagementService
	presenter   *contentPresenter
}

func NewFeedService(contentRepo repository.ContentRepo, engagement EngagementService, access AccessService, cipher *security.ContentCipher) FeedService {
	return &FeedServiceImpl{
		contentRepo: contentRepo,
		engagement:  engagement,
		presenter:   &contentPresenter{cipher: cipher, access: access},
	}
}

type feedEntry struct {
	post  *model.Content
	stats *model.PostStats
	key   RankKey
}

func (s *FeedServiceImpl) ListFeed(ctx context.Context, viewer *Viewer, page, pageSize int) (*dto.FeedDTO, error) {
	posts, err := s.contentRepo.ListPosts(ctx, feedWindow, 0)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.LedgerID)
	}
	statsMap, err := s.engagement.GetStatsBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]*feedEntry, 0, len(posts))
	for _, p := range posts {
		st := statsMap[p.LedgerID]
		entries = append(entries, &feedEntry{
			post:  p,
			stats: st,
			key:   RankKey{LedgerID: p.LedgerID, CreatedAt: p.CreatedAt, Score: Score(st)},
		})
	}
	SortByRank(entries, func(e *feedEntry) RankKey { return e.key })

	limit, offset := util.NormalizePage(page, pageSize)
	res := &dto.FeedDTO{Page: page, Total: len(entries), Items: []*dto.ContentDTO{}}
	if offset >= len(entries) {
		return res, nil
	}
	pageEntries := entries[offset:min(offset+limit, len(entries))]

	items := make([]*dto.ContentDTO, len(pageEntries))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, e := range pageEntries {
		g.Go(func() error {
			item, err := s.presenter.presentPost(gCtx, e.post, viewer)
			if err != nil {
				return err
			}
			item.Stats = ToStatsDTO(e.stats)
			items[i] = item
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	res.Items = items
	return res, nil
}
