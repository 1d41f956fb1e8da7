package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-books/meridian-books/internal/invoices"
	jobmetrics "github.com/meridian-books/meridian-books/internal/jobs"
	"github.com/meridian-books/meridian-books/internal/reports"
	"github.com/meridian-books/meridian-books/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportsWarmupJob pre-builds the report caches so the first dashboard hit
// after a quiet period is served warm.
type ReportsWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(reportsSvc *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Reports: reportsSvc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks. A failing tenant is logged and
// skipped so one broken ledger cannot starve the rest.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Tenants) == 0 {
		payload.Tenants = []string{shared.DefaultTenant}
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.clock()
	var failed int
	for _, tenant := range payload.Tenants {
		if err := j.warmTenant(ctx, tenant, now); err != nil {
			failed++
			j.logger().Warn("report warmup failed",
				slog.String("tenant", tenant),
				slog.Any("error", err))
		}
	}
	if failed == len(payload.Tenants) && failed > 0 {
		resultErr = errors.New("reports warmup: every tenant failed")
	}
	return resultErr
}

func (j *ReportsWarmupJob) warmTenant(ctx context.Context, tenant string, now time.Time) error {
	if _, err := j.Reports.TrialBalance(ctx, tenant, time.Time{}); err != nil {
		return err
	}
	if _, err := j.Reports.GeneralLedger(ctx, tenant, nil, time.Time{}); err != nil {
		return err
	}
	for _, invoiceType := range []invoices.InvoiceType{invoices.TypeSale, invoices.TypePurchase} {
		if _, err := j.Reports.Aging(ctx, tenant, invoiceType, now); err != nil {
			return err
		}
	}
	return nil
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
