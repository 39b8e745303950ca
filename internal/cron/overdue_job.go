package cron

import (
	"context"
	"fmt"

	"github.com/mehtakaran9/librarium-backend/internal/loans"
	"github.com/mehtakaran9/librarium-backend/pkg/logger"
	"github.com/mehtakaran9/librarium-backend/pkg/metrics"
)

// overdueSweeper is the slice of the loans service the job needs.
type overdueSweeper interface {
	MarkOverdue(ctx context.Context) (loans.OverdueResult, error)
}

// OverdueJobParams configure the overdue sweep job.
type OverdueJobParams struct {
	Logger  *logger.Logger
	Loans   overdueSweeper
	Metrics *metrics.CronJobMetrics
}

type overdueJob struct {
	logg    *logger.Logger
	loans   overdueSweeper
	metrics *metrics.CronJobMetrics
}

// NewOverdueJob builds the hourly sweep that marks late loans and
// recomputes their fines.
func NewOverdueJob(params OverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Loans == nil {
		return nil, fmt.Errorf("loans service required")
	}
	return &overdueJob{
		logg:    params.Logger,
		loans:   params.Loans,
		metrics: params.Metrics,
	}, nil
}

func (j *overdueJob) Name() string { return "overdue-sweep" }

func (j *overdueJob) Run(ctx context.Context) error {
	result, err := j.loans.MarkOverdue(ctx)
	if err != nil {
		return fmt.Errorf("overdue sweep: %w", err)
	}
	if j.metrics != nil && result.Skipped > 0 {
		j.metrics.AddSkipped(j.Name(), result.Skipped)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":      result.Scanned,
		"marked_late":  result.MarkedLate,
		"fine_updates": result.FineUpdates,
		"skipped":      result.Skipped,
	})
	j.logg.Info(logCtx, "overdue sweep complete")
	return nil
}
