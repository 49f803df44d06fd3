package job

import (
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/pkg/logger"
	"Tipwall/internal/pkg/redis"
	"Tipwall/internal/pkg/util"
	"Tipwall/internal/service"
	"context"
	log "log/slog"
)

// dirtySet 脏帖子集合的领取与释放
type dirtySet interface {
	Claim(ctx context.Context) ([]string, error)
	Release(ctx context.Context) error
}

type redisDirtySet struct{}

func (redisDirtySet) Claim(ctx context.Context) ([]string, error) {
	return redis.ClaimSet(ctx, consts.StatsDirtyKey, consts.StatsProcessingKey)
}

func (redisDirtySet) Release(ctx context.Context) error {
	return redis.DeleteKey(ctx, consts.StatsProcessingKey)
}

// StatsSyncJob 消费变更流标记的脏帖子，重算投票数与回复数
type StatsSyncJob struct {
	engagementSvc service.EngagementService
	contentSvc    service.ContentService
	dirty         dirtySet
}

func NewStatsSyncJob(engagementSvc service.EngagementService, contentSvc service.ContentService) *StatsSyncJob {
	return &StatsSyncJob{
		engagementSvc: engagementSvc,
		contentSvc:    contentSvc,
		dirty:         redisDirtySet{},
	}
}

func (s *StatsSyncJob) Run() {
	ctx, _ := logger.NewTraceContext("job-stats")

	// 上轮中断遗留的 processing 集合会并入本轮
	tempSet, err := s.dirty.Claim(ctx)
	if err != nil {
		log.ErrorContext(ctx, "claim stats dirty set error", "err", err)
		return
	}
	if len(tempSet) == 0 {
		return
	}

	postIDs, err := util.StrSliceToUint64Slice(tempSet)
	if err != nil {
		log.ErrorContext(ctx, "convert stats set to int slice error", "err", err)
		return
	}

	synced := s.sync(ctx, postIDs)

	err = s.dirty.Release(ctx)
	if err != nil {
		log.ErrorContext(ctx, "delete stats processing set error", "err", err)
	}

	log.InfoContext(ctx, "sync post stats success", "post_count", len(postIDs), "synced", synced)
}

// sync 失败的帖子留待下次变更或全量修复
func (s *StatsSyncJob) sync(ctx context.Context, postIDs []uint64) int {
	synced := 0
	for _, pid := range postIDs {
		if _, err := s.engagementSvc.RecomputeStats(ctx, pid); err != nil {
			log.ErrorContext(ctx, "recompute stats error", "pid", pid, "err", err)
			continue
		}
		if err := s.contentSvc.SyncReplyCount(ctx, pid); err != nil {
			log.ErrorContext(ctx, "sync reply count error", "pid", pid, "err", err)
			continue
		}
		synced++
	}
	return synced
}
