package service

import (
	"Tipwall/internal/api/config"
	"Tipwall/internal/pkg/encrypt"
	"context"
	"errors"
	log "log/slog"
	"time"
)

// Stage 内容创建流程的阶段
type Stage string

const (
	StageContentEncryption   Stage = "content_encryption"
	StageParameterEncryption Stage = "parameter_encryption"
	StageLedgerSubmission    Stage = "ledger_submission"
	StageStoreWrite          Stage = "store_write"
	StageVisibilityEvent     Stage = "visibility_event"
)

type StageStatus string

const (
	StageStarted StageStatus = "started"
	StageDone    StageStatus = "done"
	StageFailed  StageStatus = "failed"
	StageWarned  StageStatus = "warned"
)

// ProgressFunc 观察每个阶段的状态变化，可为 nil
type ProgressFunc func(stage Stage, status StageStatus, err error)

// PipelineOptions 重试与回退编号策略
type PipelineOptions struct {
	MaxAttempts     int
	RetryBackoff    time.Duration
	AllowFallbackID bool
}

func PipelineOptionsFromConfig(cfg config.PipelineConfig) PipelineOptions {
	return PipelineOptions{
		MaxAttempts:     cfg.MaxAttempts,
		RetryBackoff:    time.Duration(cfg.RetryBackoffMs) * time.Millisecond,
		AllowFallbackID: cfg.AllowFallbackID,
	}
}

type stageRunner struct {
	opts     PipelineOptions
	progress ProgressFunc
	warnings []string
}

func newStageRunner(opts PipelineOptions, progress ProgressFunc) *stageRunner {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &stageRunner{opts: opts, progress: progress}
}

func (r *stageRunner) report(stage Stage, status StageStatus, err error) {
	if r.progress != nil {
		r.progress(stage, status, err)
	}
}

// run 执行一个阶段。retry 为 true 时按配置重试，加密服务未就绪不重试
func (r *stageRunner) run(ctx context.Context, stage Stage, retry bool, fn func() error) error {
	r.report(stage, StageStarted, nil)

	attempts := 1
	if retry {
		attempts = r.opts.MaxAttempts
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			r.report(stage, StageDone, nil)
			return nil
		}
		if errors.Is(err, encrypt.ErrNotReady) || i == attempts {
			break
		}
		log.WarnContext(ctx, "pipeline stage failed, retrying", "stage", stage, "attempt", i, "err", err)
		if err = sleepCtx(ctx, r.opts.RetryBackoff*time.Duration(i)); err != nil {
			break
		}
	}

	log.ErrorContext(ctx, "pipeline stage failed", "stage", stage, "err", err)
	r.report(stage, StageFailed, err)
	return err
}

// tryStage 执行一个失败只记警告的阶段
func (r *stageRunner) tryStage(ctx context.Context, stage Stage, fn func() error) bool {
	r.report(stage, StageStarted, nil)
	if err := fn(); err != nil {
		r.warn(ctx, stage, err)
		return false
	}
	r.report(stage, StageDone, nil)
	return true
}

// warn 阶段失败但不影响整体结果
func (r *stageRunner) warn(ctx context.Context, stage Stage, err error) {
	log.WarnContext(ctx, "pipeline stage degraded", "stage", stage, "err", err)
	r.warnings = append(r.warnings, err.Error())
	r.report(stage, StageWarned, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
