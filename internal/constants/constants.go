package constants

import "time"

const (
	// ScanInterval is how often a full fighter + tournament cycle runs.
	ScanInterval = 2 * time.Hour

	// ConcurrentRequests caps simultaneously in-flight upstream fetches.
	ConcurrentRequests = 128

	// FighterIDBaseline is the high-water search start when the fighter
	// table is empty. Checkpoint value as of 2023-01-15.
	FighterIDBaseline = 29000

	TournamentPageSize = 50
)

const ExternalAPITimeout = 10 * time.Second

const (
	FetchMaxRetries   = 8
	FetchBackoffBase  = 500 * time.Millisecond
	FetchBackoffLimit = 60 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)
