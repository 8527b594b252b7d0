package report

import (
	"context"
	"time"
)

type Service interface {
	Summary(ctx context.Context, from, to *time.Time) (Summary, error)
	InsideMine(ctx context.Context) ([]InsideMineItem, error)
	ToolDebts(ctx context.Context, day *time.Time) ([]ToolDebtItem, error)
	DailyMineSummary(ctx context.Context, day time.Time) ([]DailySummaryRow, error)
	BlockedAttempts(ctx context.Context, day *time.Time, limit int) ([]BlockedAttempt, error)
	BlockedAttemptsCount(ctx context.Context, day time.Time) (int64, error)
	EsmoSummary(ctx context.Context, day time.Time) (int64, error)
	EsmoSummary24h(ctx context.Context, day time.Time) (EsmoSummary, error)
	Dashboard(ctx context.Context) (Dashboard, error)
}
