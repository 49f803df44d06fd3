package job

import (
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/pkg/logger"
	"Tipwall/internal/pkg/redis"
	"Tipwall/internal/service"
	"context"
	log "log/slog"
	"time"
)

const repairLockTTL = 30 * time.Minute

// StatsRepairJob 全量重算所有有投票记录的帖子，多实例下只有拿到锁的执行
type StatsRepairJob struct {
	engagementSvc service.EngagementService
}

func NewStatsRepairJob(engagementSvc service.EngagementService) *StatsRepairJob {
	return &StatsRepairJob{engagementSvc: engagementSvc}
}

func (s *StatsRepairJob) Run() {
	ctx, traceID := logger.NewTraceContext("job-repair")

	ok, err := redis.TryLock(ctx, consts.StatsRepairLock, traceID, repairLockTTL, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire stats repair lock error", "err", err)
		return
	}
	if !ok {
		log.InfoContext(ctx, "stats repair running elsewhere, skipped")
		return
	}
	defer redis.UnLock(ctx, consts.StatsRepairLock, traceID)

	ctx, cancel := context.WithTimeout(ctx, repairLockTTL)
	defer cancel()

	start := time.Now()
	repaired, err := s.engagementSvc.RepairAllStats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "stats repair finished with errors", "repaired", repaired, "err", err)
		return
	}
	log.InfoContext(ctx, "stats repair success", "repaired", repaired, "cost", time.Since(start).String())
}
