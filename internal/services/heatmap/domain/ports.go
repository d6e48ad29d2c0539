package domain

import (
	"context"

	"github.com/google/uuid"
)

// ReaderPort is the heatmap read surface. Snapshots come back classified;
// all further slicing is pure and in-memory
type ReaderPort interface {
	SpeedHeatmapData(ctx context.Context, userID, keyboardID uuid.UUID) (Snapshot, error)
	SlowestNGrams(ctx context.Context, userID, keyboardID uuid.UUID, size, limit int) ([]AggregateRow, error)
	MostErrorProneNGrams(ctx context.Context, userID, keyboardID uuid.UUID, size, limit int) ([]ErrorAggRow, error)
	WeakPoints(ctx context.Context, userID, keyboardID uuid.UUID, opts WeakPointOpts) ([]string, error)
}
