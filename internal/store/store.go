// Package store caches computed recommendations in a local sqlite database,
// keyed by the request that produced them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// schemaVersion is stored in PRAGMA user_version. Older caches are dropped
// on open; they only hold recomputable results.
const schemaVersion = 2

const schema = `
CREATE TABLE IF NOT EXISTS recommendations (
	agency      TEXT    NOT NULL,
	proposal_id TEXT    NOT NULL,
	top_k       INTEGER NOT NULL,
	algorithm   TEXT    NOT NULL,
	fingerprint TEXT    NOT NULL,
	run_id      TEXT    NOT NULL,
	payload     BLOB    NOT NULL,
	created_at  TEXT    NOT NULL,
	PRIMARY KEY (agency, proposal_id, top_k, algorithm, fingerprint)
);`

// Key identifies a cached recommendation result.
type Key struct {
	Agency     string
	ProposalID string
	K          int
	Algorithm  string
	// Fingerprint identifies the candidate filters and weights the result
	// was ranked under. It is compared verbatim.
	Fingerprint string
}

func (k Key) normalized() Key {
	return Key{
		Agency:      strings.ToLower(strings.TrimSpace(k.Agency)),
		ProposalID:  strings.ToLower(strings.TrimSpace(k.ProposalID)),
		K:           k.K,
		Algorithm:   strings.ToLower(strings.TrimSpace(k.Algorithm)),
		Fingerprint: k.Fingerprint,
	}
}

// Entry is a cached payload and its provenance.
type Entry struct {
	RunID     string
	Payload   []byte
	CreatedAt time.Time
}

type DB struct {
	Pool *sql.DB
}

// Open creates the parent directory and schema when missing.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache %q: %w", path, err)
	}
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("opening cache %q: %w", path, err)
	}
	if err := migrate(ctx, pool); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrating cache %q: %w", path, err)
	}

	return &DB{Pool: pool}, nil
}

func migrate(ctx context.Context, pool *sql.DB) error {
	var version int
	if err := pool.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version < schemaVersion {
		if _, err := pool.ExecContext(ctx, `DROP TABLE IF EXISTS recommendations`); err != nil {
			return err
		}
	}
	if _, err := pool.ExecContext(ctx, schema); err != nil {
		return err
	}
	_, err := pool.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

// Get returns the cached entry for key. ok is false on a miss.
func (d *DB) Get(ctx context.Context, key Key) (Entry, bool, error) {
	k := key.normalized()
	var (
		e       Entry
		created string
	)
	err := d.Pool.QueryRowContext(ctx,
		`SELECT run_id, payload, created_at FROM recommendations
		 WHERE agency = ? AND proposal_id = ? AND top_k = ? AND algorithm = ? AND fingerprint = ?`,
		k.Agency, k.ProposalID, k.K, k.Algorithm, k.Fingerprint,
	).Scan(&e.RunID, &e.Payload, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cached recommendations: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return e, true, nil
}

// Put stores payload under key, replacing an older entry, and returns the
// new run id.
func (d *DB) Put(ctx context.Context, key Key, payload []byte) (string, error) {
	k := key.normalized()
	runID := uuid.NewString()
	_, err := d.Pool.ExecContext(ctx,
		`INSERT OR REPLACE INTO recommendations
		 (agency, proposal_id, top_k, algorithm, fingerprint, run_id, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		k.Agency, k.ProposalID, k.K, k.Algorithm, k.Fingerprint, runID, payload,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("caching recommendations: %w", err)
	}
	return runID, nil
}

// Clear drops every cached entry and reports how many were removed.
func (d *DB) Clear(ctx context.Context) (int64, error) {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM recommendations`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}
