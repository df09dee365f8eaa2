// Package database provides the data access layer for analysis history and
// persisted preferences.
package database

import (
	"context"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

// Store defines the interface for data persistence.
type Store interface {
	// Analysis history
	SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, limit, offset int) ([]*models.AnalysisRecord, error)

	// Preferences (key/value, e.g. the display theme)
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error

	// Lifecycle
	Close() error
	Migrate() error
}
