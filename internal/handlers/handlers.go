package handlers

import (
	"context"

	"video-inventory/internal/database"
	"video-inventory/internal/indexer"
	"video-inventory/internal/progress"
)

// Store is the read-only query contract the API serves from.
type Store interface {
	ListAll(ctx context.Context) ([]database.FileRecord, error)
	GetFile(ctx context.Context, identity string) (*database.FileRecord, error)
	CalculateStats(ctx context.Context) (database.Stats, error)
}

// Scanner is the command side: starting, canceling and watching scans.
type Scanner interface {
	TriggerScan(root string) (string, error)
	CancelScan() bool
	GetProgress() indexer.Progress
	GetHealthStatus() indexer.HealthStatus
	IsReady() bool
	Sink() *progress.Sink
}

type Handlers struct {
	store   Store
	scanner Scanner
}

func New(store Store, scanner Scanner) *Handlers {
	return &Handlers{
		store:   store,
		scanner: scanner,
	}
}
