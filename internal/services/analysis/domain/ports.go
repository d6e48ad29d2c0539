package domain

import (
	"context"

	"keydrill/internal/core/ngram"

	"github.com/google/uuid"
)

// AnalyzerPort turns a session's keystroke stream into merged rows
type AnalyzerPort interface {
	Analyze(ctx context.Context, session Session, keystrokes []ngram.Keystroke) (AnalysisResult, error)
}

// PersisterPort flushes analysis results and maintains the aggregates
type PersisterPort interface {
	SaveToDatabase(ctx context.Context, result AnalysisResult) (Summary, error)
	ProcessEndOfSession(
		ctx context.Context,
		session Session,
		keystrokes []ngram.Keystroke,
		saveSessionFirst bool,
	) (Summary, error)
}

// MaintenancePort is the explicit rebuild path. Normal operation never
// replays session history; only this does
type MaintenancePort interface {
	RebuildAggregates(ctx context.Context, userID, keyboardID uuid.UUID) (int, error)
}
