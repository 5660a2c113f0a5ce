package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"antimony/internal/diag"

	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ SnapshotStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			label TEXT,
			format TEXT,
			location TEXT,
			fingerprint TEXT,
			main TEXT,
			created_at INTEGER,
			source BLOB
		);`,
		`CREATE TABLE IF NOT EXISTS modules (
			snapshot_id TEXT,
			position INTEGER,
			name TEXT,
			PRIMARY KEY (snapshot_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_label ON snapshots(label);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("snapshot without an id")
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, label, format, location, fingerprint, main, created_at, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label=excluded.label,
			format=excluded.format,
			location=excluded.location,
			fingerprint=excluded.fingerprint,
			main=excluded.main,
			created_at=excluded.created_at,
			source=excluded.source
	`, snap.ID, snap.Label, snap.Format, snap.Location, snap.Fingerprint, snap.Main,
		snap.CreatedAt.UnixNano(), snappy.Encode(nil, snap.Source))
	if err != nil {
		return err
	}

	// The module list is replaced wholesale on every save.
	if _, err := tx.ExecContext(ctx, "DELETE FROM modules WHERE snapshot_id = ?", snap.ID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO modules (snapshot_id, position, name) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, name := range snap.Modules {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, name); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const snapshotColumns = "id, label, format, location, fingerprint, main, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner, withSource bool) (*Snapshot, error) {
	var snap Snapshot
	var created int64
	dest := []any{&snap.ID, &snap.Label, &snap.Format, &snap.Location, &snap.Fingerprint, &snap.Main, &created}
	var blob []byte
	if withSource {
		dest = append(dest, &blob)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	snap.CreatedAt = time.Unix(0, created)
	if withSource {
		src, err := snappy.Decode(nil, blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %s: %w", snap.ID, err)
		}
		snap.Source = src
	}
	return &snap, nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, idOrLabel string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`, source FROM snapshots
		WHERE id = ? OR label = ?
		ORDER BY (id = ?) DESC, created_at DESC
		LIMIT 1
	`, idOrLabel, idOrLabel, idOrLabel)

	snap, err := scanSnapshot(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, diag.NotFoundf("no snapshot %q", idOrLabel)
	}
	if err != nil {
		return nil, err
	}
	if snap.Modules, err = s.modules(ctx, snap.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) modules(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM modules WHERE snapshot_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+snapshotColumns+" FROM snapshots ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, snap := range out {
		if snap.Modules, err = s.modules(ctx, snap.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return diag.NotFoundf("no snapshot %q", id)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM modules WHERE snapshot_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}
