package service

import (
	"Tipwall/internal/model"
	"Tipwall/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"
)

type EngagementService interface {
	ToggleVote(ctx context.Context, contentID uint64, viewerID string, t model.EngagementType) (bool, error)
	GetViewerVote(ctx context.Context, contentID uint64, viewerID string) (model.EngagementType, error)
	RecomputeStats(ctx context.Context, contentID uint64) (*model.PostStats, error)
	RepairAllStats(ctx context.Context) (int, error)
	UpdateReplyCount(ctx context.Context, contentID uint64, replyCount int64) error
	GetStats(ctx context.Context, contentID uint64) (*model.PostStats, error)
	GetStatsBatch(ctx context.Context, contentIDs []uint64) (map[uint64]*model.PostStats, error)
}

type EngagementServiceImpl struct {
	engagementRepo repository.EngagementRepo
	statsRepo      repository.PostStatsRepo
	now            func() time.Time
}

func NewEngagementService(engagementRepo repository.EngagementRepo, statsRepo repository.PostStatsRepo) EngagementService {
	return &EngagementServiceImpl{
		engagementRepo: engagementRepo,
		statsRepo:      statsRepo,
		now:            time.Now,
	}
}

// ToggleVote 同类型再投一次即撤销(返回 false)，否则替换互斥的另一类型(返回 true)
func (s *EngagementServiceImpl) ToggleVote(ctx context.Context, contentID uint64, viewerID string, t model.EngagementType) (bool, error) {
	if !t.Valid() || contentID == 0 {
		return false, ErrParamInvalid
	}
	viewerID = strings.ToLower(viewerID)
	if viewerID == "" {
		return false, ErrNotConnected
	}

	exists, err := s.engagementRepo.CheckExists(ctx, contentID, viewerID, t)
	if err != nil {
		return false, err
	}

	active := !exists
	if exists {
		if err = s.engagementRepo.Delete(ctx, contentID, viewerID, t); err != nil {
			return false, err
		}
	} else {
		if err = s.engagementRepo.Delete(ctx, contentID, viewerID, t.Opposite()); err != nil {
			return false, err
		}
		err = s.engagementRepo.Upsert(ctx, &model.Engagement{
			ContentID:      contentID,
			ViewerID:       viewerID,
			EngagementType: t,
			CreatedAt:      s.now(),
		})
		if err != nil {
			return false, err
		}
	}

	if _, err = s.RecomputeStats(ctx, contentID); err != nil {
		log.WarnContext(ctx, "recompute stats after vote failed", "content_id", contentID, "err", err)
	}
	return active, nil
}

// GetViewerVote 未投票时返回空串
func (s *EngagementServiceImpl) GetViewerVote(ctx context.Context, contentID uint64, viewerID string) (model.EngagementType, error) {
	if viewerID == "" {
		return "", nil
	}
	vote, err := s.engagementRepo.GetVote(ctx, contentID, strings.ToLower(viewerID))
	if err != nil || vote == nil {
		return "", err
	}
	return vote.EngagementType, nil
}

// RecomputeStats 按投票记录重算计数，保留已有的回复数
func (s *EngagementServiceImpl) RecomputeStats(ctx context.Context, contentID uint64) (*model.PostStats, error) {
	up, down, err := s.engagementRepo.CountByType(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if err = s.statsRepo.UpsertVotes(ctx, contentID, up, down); err != nil {
		return nil, err
	}
	return s.GetStats(ctx, contentID)
}

// RepairAllStats 对所有有投票记录的内容重算，单条失败不影响其它内容
func (s *EngagementServiceImpl) RepairAllStats(ctx context.Context) (int, error) {
	ids, err := s.engagementRepo.GetActiveContentIDs(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	var errs []error
	for _, id := range ids {
		if err = ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err = s.RecomputeStats(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("content %d: %w", id, err))
			continue
		}
		repaired++
	}
	return repaired, errors.Join(errs...)
}

func (s *EngagementServiceImpl) UpdateReplyCount(ctx context.Context, contentID uint64, replyCount int64) error {
	if replyCount < 0 {
		return ErrParamInvalid
	}
	return s.statsRepo.UpsertReplyCount(ctx, contentID, replyCount)
}

// GetStats 没有记录时返回全零统计
func (s *EngagementServiceImpl) GetStats(ctx context.Context, contentID uint64) (*model.PostStats, error) {
	stats, err := s.statsRepo.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &model.PostStats{ContentID: contentID}, nil
	}
	return stats, nil
}

func (s *EngagementServiceImpl) GetStatsBatch(ctx context.Context, contentIDs []uint64) (map[uint64]*model.PostStats, error) {
	found, err := s.statsRepo.GetBatch(ctx, contentIDs)
	if err != nil {
		return nil, err
	}
	res := make(map[uint64]*model.PostStats, len(contentIDs))
	for _, id := range contentIDs {
		if st, ok := found[id]; ok {
			res[id] = st
		} else {
			res[id] = &model.PostStats{ContentID: id}
		}
	}
	return res, nil
}
