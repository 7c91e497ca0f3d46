package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Export is one rendered file recorded in the history
type Export struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Preset     string    `json:"preset,omitempty"`
	Sections   int       `json:"sections"`
	Tempo      int       `json:"tempo"`
	Intensity  int       `json:"intensity"`
	Distortion int       `json:"distortion"`
	Seed       uint32    `json:"seed"`
	Bytes      int       `json:"bytes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Library wraps the export history database
type Library struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	preset TEXT,
	sections INTEGER NOT NULL,
	tempo INTEGER NOT NULL,
	intensity INTEGER NOT NULL,
	distortion INTEGER NOT NULL,
	seed INTEGER NOT NULL,
	bytes INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);
`

// Open opens (creating if needed) the history database at path
func Open(path string) (*Library, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &Library{db: db}, nil
}

// Close closes the database
func (l *Library) Close() error {
	return l.db.Close()
}

// Record stores e, assigning an ID and CreatedAt when missing
func (l *Library) Record(e Export) (Export, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := l.db.Exec(`
		INSERT INTO exports (id, path, preset, sections, tempo, intensity, distortion, seed, bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Path, e.Preset, e.Sections, e.Tempo, e.Intensity, e.Distortion,
		int64(e.Seed), e.Bytes, e.CreatedAt.UnixMilli())
	if err != nil {
		return Export{}, fmt.Errorf("failed to record export: %w", err)
	}
	return e, nil
}

// List returns up to limit exports, newest first. limit <= 0 means all.
func (l *Library) List(limit int) ([]Export, error) {
	query := `SELECT id, path, preset, sections, tempo, intensity, distortion, seed, bytes, created_at
		FROM exports ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var (
			e       Export
			preset  sql.NullString
			seed    int64
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Path, &preset, &e.Sections, &e.Tempo, &e.Intensity,
			&e.Distortion, &seed, &e.Bytes, &created); err != nil {
			return nil, err
		}
		e.Preset = preset.String
		e.Seed = uint32(seed)
		e.CreatedAt = time.UnixMilli(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns the export with id
func (l *Library) Get(id string) (Export, bool, error) {
	var (
		e       Export
		preset  sql.NullString
		seed    int64
		created int64
	)
	err := l.db.QueryRow(`SELECT id, path, preset, sections, tempo, intensity, distortion, seed, bytes, created_at
		FROM exports WHERE id = ?`, id).
		Scan(&e.ID, &e.Path, &preset, &e.Sections, &e.Tempo, &e.Intensity, &e.Distortion, &seed, &e.Bytes, &created)
	if err == sql.ErrNoRows {
		return Export{}, false, nil
	}
	if err != nil {
		return Export{}, false, err
	}
	e.Preset = preset.String
	e.Seed = uint32(seed)
	e.CreatedAt = time.UnixMilli(created)
	return e, true, nil
}
