package cron

import (
	"Tipwall/internal/api/config"
	"Tipwall/internal/job"
	"fmt"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const (
	defaultStatsSyncSpec   = "*/30 * * * * *"
	defaultStatsRepairSpec = "@daily"
)

type Manager struct {
	engine         *cron.Cron
	cfg            config.CronConfig
	statsSyncJob   *job.StatsSyncJob
	statsRepairJob *job.StatsRepairJob
}

func NewCronManager(cfg config.CronConfig, statsSyncJob *job.StatsSyncJob, statsRepairJob *job.StatsRepairJob) *Manager {
	return &Manager{
		engine:         cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		cfg:            cfg,
		statsSyncJob:   statsSyncJob,
		statsRepairJob: statsRepairJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	syncSpec := s.cfg.StatsDirtySpec
	if syncSpec == "" {
		syncSpec = defaultStatsSyncSpec
	}
	repairSpec := s.cfg.StatsRepairSpec
	if repairSpec == "" {
		repairSpec = defaultStatsRepairSpec
	}

	if _, err := s.engine.AddJob(syncSpec, s.statsSyncJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(repairSpec, s.statsRepairJob); err != nil {
		return err
	}
	log.Info("Cron jobs registered", "stats_sync", syncSpec, "stats_repair", repairSpec)
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

// InitCron 注册并启动全部定时任务
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	mgr.Start()
	log.Info("Cron Jobs started", "entries", len(mgr.engine.Entries()))
	return nil
}
