// Package database provides SQLite implementation of the Store interface.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS analysis_records (
			id TEXT PRIMARY KEY,
			channel TEXT NOT NULL,
			input_digest TEXT NOT NULL,
			total_comments INTEGER NOT NULL,
			valid_requirements INTEGER NOT NULL,
			processing_time_ms REAL NOT NULL,
			mock_results INTEGER NOT NULL,
			artifact_name TEXT NOT NULL,
			source_type TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_digest ON analysis_records(input_digest)`,
		`CREATE INDEX IF NOT EXISTS idx_records_created ON analysis_records(created_at)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveAnalysis stores a completed analysis record.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_records (id, channel, input_digest, total_comments, valid_requirements,
			processing_time_ms, mock_results, artifact_name, source_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Channel, rec.InputDigest, rec.TotalComments, rec.ValidRequirements,
		rec.ProcessingTimeMs, rec.MockResults, rec.ArtifactName, rec.SourceType, rec.CreatedAt,
	)
	return err
}

// GetAnalysis retrieves an analysis record by ID.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, channel, input_digest, total_comments, valid_requirements,
			processing_time_ms, mock_results, artifact_name, source_type, created_at
		FROM analysis_records WHERE id = ?`, id)

	var rec models.AnalysisRecord
	err := row.Scan(&rec.ID, &rec.Channel, &rec.InputDigest, &rec.TotalComments,
		&rec.ValidRequirements, &rec.ProcessingTimeMs, &rec.MockResults,
		&rec.ArtifactName, &rec.SourceType, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAnalyses returns paginated analysis records, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit, offset int) ([]*models.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel, input_digest, total_comments, valid_requirements,
			processing_time_ms, mock_results, artifact_name, source_type, created_at
		FROM analysis_records ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		var rec models.AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.Channel, &rec.InputDigest, &rec.TotalComments,
			&rec.ValidRequirements, &rec.ProcessingTimeMs, &rec.MockResults,
			&rec.ArtifactName, &rec.SourceType, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// GetPreference returns the stored value for a key, or "" when absent.
func (s *SQLiteStore) GetPreference(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetPreference upserts a preference value.
func (s *SQLiteStore) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
