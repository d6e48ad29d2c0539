package domain

import "context"

// ReaderPort is the trend read surface. Fewer sessions than asked for is a
// normal answer: comparisons over missing sessions come back empty, trends
// over a short history come back short
type ReaderPort interface {
	SessionPerformanceComparison(ctx context.Context, in ComparisonInput) ([]ComparisonRow, error)
	MissedTargetsTrend(ctx context.Context, in MissedTargetsInput) ([]Point, error)
}
