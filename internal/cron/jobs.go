package cron

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// DefaultCompressSchedule is used when a CompressSignalJob has no
// ScheduleExpr.
const DefaultCompressSchedule = "*/15 * * * *"

// CompressSignalJob asks the loop owning a session to compress its
// history. It only sends on Signal; the owner performs the compression
// between exchanges, so the session is never touched from the scheduler
// goroutine.
type CompressSignalJob struct {
	// Signal should be buffered (capacity 1). A pending, unconsumed
	// request is not duplicated.
	Signal       chan<- struct{}
	Logger       *slog.Logger
	ScheduleExpr string // empty = DefaultCompressSchedule
}

// Compile-time interface check.
var _ Job = (*CompressSignalJob)(nil)

// Name implements Job.
func (j *CompressSignalJob) Name() string {
	return "history_compress"
}

// Schedule implements Job.
func (j *CompressSignalJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return DefaultCompressSchedule
}

// Run posts a compression request without blocking.
func (j *CompressSignalJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: history compress cancelled: %w", ctx.Err())
	}
	select {
	case j.Signal <- struct{}{}:
		j.logger().Debug("cron: history compression requested")
	default:
		j.logger().Debug("cron: history compression already pending")
	}
	return nil
}

func (j *CompressSignalJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return j.Logger
}
