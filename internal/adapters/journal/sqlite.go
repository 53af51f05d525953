package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/foundry/shipit/internal/core/models"

	_ "modernc.org/sqlite"
)

// SQLiteJournal implements services.PublishJournal backed by a local
// SQLite database in the state directory.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens or creates the journal database and runs
// migrations.
func NewSQLiteJournal(stateDir string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dsn := filepath.Join(stateDir, "shipit.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS publishes (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			version        TEXT NOT NULL,
			artifact_count INTEGER NOT NULL,
			total_bytes    INTEGER NOT NULL,
			published_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_publishes_version ON publishes(version);
	`)
	return err
}

// Record appends one run's record.
func (j *SQLiteJournal) Record(rec models.PublishRecord) error {
	_, err := j.db.Exec(
		"INSERT INTO publishes (run_id, version, artifact_count, total_bytes, published_at) VALUES (?, ?, ?, ?, ?)",
		rec.RunID, rec.Version, rec.ArtifactCount, rec.TotalBytes, rec.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("recording publish: %w", err)
	}
	return nil
}

// History returns all records, most recent first.
func (j *SQLiteJournal) History() ([]models.PublishRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, run_id, version, artifact_count, total_bytes, published_at
		FROM publishes
		ORDER BY published_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing publishes: %w", err)
	}
	defer rows.Close()

	var recs []models.PublishRecord
	for rows.Next() {
		var r models.PublishRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.Version, &r.ArtifactCount, &r.TotalBytes, &r.PublishedAt); err != nil {
			return nil, fmt.Errorf("scanning publish: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Close closes the journal.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
