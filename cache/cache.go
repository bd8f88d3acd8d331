// cache.go - durable scan cache backed by SQLite
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package cache persists the projected Node tree for a scanned root
// so a later run can skip a full walk. It stores one row per root
// path plus a rolling delete_log so the Incremental Controller can
// explain which subtrees disappeared between runs.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sv "github.com/opencoff/spaceview"

	_ "modernc.org/sqlite"
)

// MaxRecordSize bounds a single serialized tree blob. A scan whose
// projection exceeds this is never written to the cache; the caller
// keeps running against the live scan instead.
const MaxRecordSize = 500 * 1024 * 1024

// schemaVersion guards the row layout, independent of Node's own
// binary marshal version (sv.nodeMarshalVersion), which guards the
// blob contents.
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS scans (
	root       TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	file_count INTEGER NOT NULL,
	dir_count  INTEGER NOT NULL,
	total_size INTEGER NOT NULL,
	tree       BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS delete_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	root       TEXT NOT NULL,
	path       TEXT NOT NULL,
	deleted_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS delete_log_root_idx ON delete_log(root);

CREATE TABLE IF NOT EXISTS snapshots (
	root       TEXT NOT NULL,
	label      TEXT NOT NULL,
	version    INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	file_count INTEGER NOT NULL,
	dir_count  INTEGER NOT NULL,
	total_size INTEGER NOT NULL,
	tree       BLOB NOT NULL,
	PRIMARY KEY (root, label)
);
`

// Store wraps a single SQLite-backed cache database.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary initializes) the cache database at
// path, with WAL journaling and NORMAL synchronous durability - the
// standard tradeoff for a cache that's valuable but, worst case,
// rebuildable from a fresh scan.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &sv.CacheError{Op: "open", Path: path, Err: err}
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, &sv.CacheError{Op: "pragma", Path: path, Err: err}
		}
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, &sv.CacheError{Op: "migrate", Path: path, Err: err}
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record is a cached scan, ready to hand back to a client without
// re-walking the filesystem.
type Record struct {
	Root      string
	CreatedAt time.Time
	UpdatedAt time.Time
	FileCount int64
	DirCount  int64
	TotalSize int64
	Tree      *sv.Node
}

// Put upserts the projected tree for root. It returns
// sv.ErrCacheTooLarge (and leaves any existing row untouched) if the
// serialized tree exceeds MaxRecordSize.
func (s *Store) Put(ctx context.Context, root string, tree *sv.Node) error {
	blob := tree.Marshal()
	if len(blob) > MaxRecordSize {
		return &sv.CacheError{Op: "put", Path: root, Err: sv.ErrCacheTooLarge, TooLarge: true}
	}

	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (root, version, created_at, updated_at, file_count, dir_count, total_size, tree)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(root) DO UPDATE SET
			updated_at = excluded.updated_at,
			file_count = excluded.file_count,
			dir_count  = excluded.dir_count,
			total_size = excluded.total_size,
			tree       = excluded.tree
	`, root, schemaVersion, now, now, tree.FileCount, tree.DirCount, tree.Size, blob)

	if err != nil {
		return &sv.CacheError{Op: "put", Path: root, Err: err}
	}
	return nil
}

// Get returns the cached record for root, or sv.ErrCacheMiss if no
// record exists or it fails the version guard.
func (s *Store) Get(ctx context.Context, root string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, created_at, updated_at, file_count, dir_count, total_size, tree
		FROM scans WHERE root = ?
	`, root)

	var (
		version               int
		createdAt, updatedAt   int64
		fileCount, dirCount    int64
		totalSize              int64
		blob                   []byte
	)
	if err := row.Scan(&version, &createdAt, &updatedAt, &fileCount, &dirCount, &totalSize, &blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, &sv.CacheError{Op: "get", Path: root, Err: sv.ErrCacheMiss}
		}
		return nil, &sv.CacheError{Op: "get", Path: root, Err: err}
	}

	if version != schemaVersion {
		return nil, &sv.CacheError{Op: "get", Path: root, Err: sv.ErrCacheMiss, VersionMismatch: true}
	}

	tree, err := sv.UnmarshalNode(blob)
	if err != nil {
		return nil, &sv.CacheError{Op: "get", Path: root, Err: err}
	}

	return &Record{
		Root:      root,
		CreatedAt: time.Unix(createdAt, 0),
		UpdatedAt: time.Unix(updatedAt, 0),
		FileCount: fileCount,
		DirCount:  dirCount,
		TotalSize: totalSize,
		Tree:      tree,
	}, nil
}

// Delete removes the cached record for root and its delete_log
// history.
func (s *Store) Delete(ctx context.Context, root string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &sv.CacheError{Op: "delete", Path: root, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE root = ?`, root); err != nil {
		return &sv.CacheError{Op: "delete", Path: root, Err: err}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM delete_log WHERE root = ?`, root); err != nil {
		return &sv.CacheError{Op: "delete", Path: root, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &sv.CacheError{Op: "delete", Path: root, Err: err}
	}
	return nil
}

// ClearAll drops every cached scan and the entire delete_log.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scans`); err != nil {
		return &sv.CacheError{Op: "clear-all", Err: err}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM delete_log`); err != nil {
		return &sv.CacheError{Op: "clear-all", Err: err}
	}
	return nil
}

// LogDeletion records that path (beneath root) disappeared from disk,
// for later display alongside an incremental refresh.
func (s *Store) LogDeletion(ctx context.Context, root, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delete_log (root, path, deleted_at) VALUES (?, ?, ?)
	`, root, path, time.Now().Unix())
	if err != nil {
		return &sv.CacheError{Op: "log-deletion", Path: path, Err: err}
	}
	return nil
}

// RecentDeletions returns up to limit most recent deletions logged
// for root, most recent first.
func (s *Store) RecentDeletions(ctx context.Context, root string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path FROM delete_log WHERE root = ? ORDER BY deleted_at DESC LIMIT ?
	`, root, limit)
	if err != nil {
		return nil, &sv.CacheError{Op: "recent-deletions", Path: root, Err: err}
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, &sv.CacheError{Op: "recent-deletions", Path: root, Err: err}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveSnapshot stores tree under (root, label), independent of the
// live scans row for root - a snapshot is a point-in-time reference
// kept around for later comparison, not overwritten by the next scan.
// It returns sv.ErrCacheTooLarge under the same bound as Put.
func (s *Store) SaveSnapshot(ctx context.Context, root, label string, tree *sv.Node) error {
	blob := tree.Marshal()
	if len(blob) > MaxRecordSize {
		return &sv.CacheError{Op: "save-snapshot", Path: root, Err: sv.ErrCacheTooLarge, TooLarge: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (root, label, version, created_at, file_count, dir_count, total_size, tree)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(root, label) DO UPDATE SET
			created_at = excluded.created_at,
			file_count = excluded.file_count,
			dir_count  = excluded.dir_count,
			total_size = excluded.total_size,
			tree       = excluded.tree
	`, root, label, schemaVersion, time.Now().Unix(), tree.FileCount, tree.DirCount, tree.Size, blob)
	if err != nil {
		return &sv.CacheError{Op: "save-snapshot", Path: root, Err: err}
	}
	return nil
}

// Snapshot is one saved, labeled scan of root.
type Snapshot struct {
	Root      string
	Label     string
	CreatedAt time.Time
	FileCount int64
	DirCount  int64
	TotalSize int64
}

// ListSnapshots returns every saved snapshot for root, most recent
// first.
func (s *Store) ListSnapshots(ctx context.Context, root string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT root, label, created_at, file_count, dir_count, total_size
		FROM snapshots WHERE root = ? ORDER BY created_at DESC
	`, root)
	if err != nil {
		return nil, &sv.CacheError{Op: "list-snapshots", Path: root, Err: err}
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var sn Snapshot
		var createdAt int64
		if err := rows.Scan(&sn.Root, &sn.Label, &createdAt, &sn.FileCount, &sn.DirCount, &sn.TotalSize); err != nil {
			return nil, &sv.CacheError{Op: "list-snapshots", Path: root, Err: err}
		}
		sn.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, sn)
	}
	return out, rows.Err()
}

// GetSnapshot returns the saved tree for (root, label), or
// sv.ErrCacheMiss if none exists.
func (s *Store) GetSnapshot(ctx context.Context, root, label string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, created_at, file_count, dir_count, total_size, tree
		FROM snapshots WHERE root = ? AND label = ?
	`, root, label)

	var (
		version              int
		createdAt            int64
		fileCount, dirCount  int64
		totalSize            int64
		blob                 []byte
	)
	if err := row.Scan(&version, &createdAt, &fileCount, &dirCount, &totalSize, &blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, &sv.CacheError{Op: "get-snapshot", Path: root, Err: sv.ErrCacheMiss}
		}
		return nil, &sv.CacheError{Op: "get-snapshot", Path: root, Err: err}
	}
	if version != schemaVersion {
		return nil, &sv.CacheError{Op: "get-snapshot", Path: root, Err: sv.ErrCacheMiss, VersionMismatch: true}
	}

	tree, err := sv.UnmarshalNode(blob)
	if err != nil {
		return nil, &sv.CacheError{Op: "get-snapshot", Path: root, Err: err}
	}

	return &Record{
		Root:      root,
		CreatedAt: time.Unix(createdAt, 0),
		UpdatedAt: time.Unix(createdAt, 0),
		FileCount: fileCount,
		DirCount:  dirCount,
		TotalSize: totalSize,
		Tree:      tree,
	}, nil
}

// DeleteSnapshot removes the saved (root, label) snapshot.
func (s *Store) DeleteSnapshot(ctx context.Context, root, label string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE root = ? AND label = ?`, root, label)
	if err != nil {
		return &sv.CacheError{Op: "delete-snapshot", Path: root, Err: err}
	}
	return nil
}

// History returns every cached root and when it was last updated,
// most recent first - the backing data for a "scan history" listing.
func (s *Store) History(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT root, created_at, updated_at, file_count, dir_count, total_size
		FROM scans ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("cache: history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var createdAt, updatedAt int64
		if err := rows.Scan(&r.Root, &createdAt, &updatedAt, &r.FileCount, &r.DirCount, &r.TotalSize); err != nil {
			return nil, fmt.Errorf("cache: history: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		r.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}
