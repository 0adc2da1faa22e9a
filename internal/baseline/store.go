// Package baseline persists named SARIF baselines in a SQLite database so
// later scans can be classified against them.
package baseline

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	errs "sarifsort/internal/errors"
	"sarifsort/internal/sarif"
)

// timeLayout is fixed width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is wrapped by the error returned when no snapshot matches.
var ErrNotFound = errors.New("baseline not found")

// Snapshot describes one stored baseline.
type Snapshot struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Runs      int       `json:"runs" yaml:"runs"`
	Results   int       `json:"results" yaml:"results"`
	Digest    string    `json:"digest" yaml:"digest"`
}

// RuleCount is the number of results a snapshot holds for one rule.
type RuleCount struct {
	RuleID string `json:"ruleId" yaml:"ruleId"`
	Count  int    `json:"count" yaml:"count"`
}

// Store provides persistence for baselines.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
	now    func() time.Time
}

var encoder, _ = zstd.NewWriter(nil)

// Open opens or creates the baseline database at dbPath.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create baseline directory: %w", err)
	}
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
		now:    time.Now,
	}

	if !dbExists {
		logger.Info("Creating baseline database", "path", dbPath)
	}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize baseline schema: %w", err)
	}
	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT,
			created_at TEXT NOT NULL,
			run_count INTEGER NOT NULL,
			result_count INTEGER NOT NULL,
			digest TEXT NOT NULL,
			log BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name, created_at DESC);

		CREATE TABLE IF NOT EXISTS snapshot_results (
			snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			ordinal INTEGER NOT NULL,
			run_index INTEGER NOT NULL,
			rule_id TEXT,
			digest TEXT NOT NULL,
			PRIMARY KEY (snapshot_id, ordinal)
		);
		CREATE INDEX IF NOT EXISTS idx_snapshot_results_digest ON snapshot_results(digest);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Save stores log under name. The log should already be normalized so its
// digest is stable. When the newest snapshot of name has the same digest no
// row is written and that snapshot is returned with created set to false.
func (s *Store) Save(ctx context.Context, name, source string, log *sarif.Log) (*Snapshot, bool, error) {
	var raw bytes.Buffer
	if err := sarif.Encode(&raw, log, false); err != nil {
		return nil, false, err
	}

	type row struct {
		run    int
		ruleID sql.NullString
		digest string
	}
	var rows []row
	logHash, _ := blake2b.New256(nil)
	for i := range log.Runs {
		run := &log.Runs[i]
		logHash.Write([]byte(run.DriverName()))
		logHash.Write([]byte{0})
		for _, r := range run.Results {
			d, err := ResultDigest(r)
			if err != nil {
				return nil, false, err
			}
			logHash.Write([]byte(d))
			rows = append(rows, row{run: i, ruleID: nullString(r.RuleID), digest: d})
		}
	}
	digest := hex.EncodeToString(logHash.Sum(nil))

	latest, err := s.latestSnapshot(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if latest != nil && latest.Digest == digest {
		s.logger.Debug("Baseline unchanged", "name", name, "id", latest.ID)
		return latest, false, nil
	}

	snap := &Snapshot{
		ID:        uuid.New().String(),
		Name:      name,
		Source:    source,
		CreatedAt: s.now().UTC(),
		Runs:      len(log.Runs),
		Results:   len(rows),
		Digest:    digest,
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, source, created_at, run_count, result_count, digest, log)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snap.ID,
		snap.Name,
		nullString(&snap.Source),
		snap.CreatedAt.Format(timeLayout),
		snap.Runs,
		snap.Results,
		snap.Digest,
		encoder.EncodeAll(raw.Bytes(), nil),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_results (snapshot_id, ordinal, run_index, rule_id, digest)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, false, err
	}
	defer stmt.Close()
	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, r.run, r.ruleID, r.digest); err != nil {
			return nil, false, fmt.Errorf("failed to insert result digest: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	s.logger.Info("Stored baseline", "name", name, "id", snap.ID, "results", snap.Results)
	return snap, true, nil
}

// Latest returns the newest snapshot stored under name together with its log.
func (s *Store) Latest(ctx context.Context, name string) (*Snapshot, *sarif.Log, error) {
	snap, err := s.latestSnapshot(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	log, err := s.loadLog(ctx, snap.ID)
	if err != nil {
		return nil, nil, err
	}
	return snap, log, nil
}

// Get returns the snapshot with the given id and its log.
func (s *Store) Get(ctx context.Context, id string) (*Snapshot, *sarif.Log, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, name, source, created_at, run_count, result_count, digest
		FROM snapshots WHERE id = ?
	`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, notFound(fmt.Sprintf("no baseline with id %s", id))
	}
	if err != nil {
		return nil, nil, err
	}
	log, err := s.loadLog(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return snap, log, nil
}

func (s *Store) latestSnapshot(ctx context.Context, name string) (*Snapshot, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, name, source, created_at, run_count, result_count, digest
		FROM snapshots WHERE name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, name)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(fmt.Sprintf("no baseline named %q", name))
	}
	return snap, err
}

func (s *Store) loadLog(ctx context.Context, id string) (*sarif.Log, error) {
	var blob []byte
	err := s.conn.QueryRowContext(ctx, `SELECT log FROM snapshots WHERE id = ?`, id).Scan(&blob)
	if err != nil {
		return nil, err
	}
	log, err := sarif.ReadFrom(bytes.NewReader(blob), sarif.CompressionZstd)
	if err != nil {
		return nil, fmt.Errorf("stored baseline %s is corrupt: %w", id, err)
	}
	return log, nil
}

// List returns every snapshot, newest first. An empty name lists all names.
func (s *Store) List(ctx context.Context, name string) ([]Snapshot, error) {
	query := `
		SELECT id, name, source, created_at, run_count, result_count, digest
		FROM snapshots
	`
	var args []any
	if name != "" {
		query += " WHERE name = ?"
		args = append(args, name)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

// RuleCounts returns the per-rule result counts of a snapshot, most frequent
// first.
func (s *Store) RuleCounts(ctx context.Context, id string) ([]RuleCount, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT COALESCE(rule_id, ''), COUNT(*) AS n
		FROM snapshot_results WHERE snapshot_id = ?
		GROUP BY rule_id
		ORDER BY n DESC, rule_id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RuleCount
	for rows.Next() {
		var rc RuleCount
		if err := rows.Scan(&rc.RuleID, &rc.Count); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep snapshots of name.
func (s *Store) Prune(ctx context.Context, name string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.conn.ExecContext(ctx, `
		DELETE FROM snapshots WHERE name = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE name = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)
	`, name, name, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Pruned baselines", "name", name, "deleted", n)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var snap Snapshot
	var source sql.NullString
	var createdAt string
	if err := row.Scan(&snap.ID, &snap.Name, &source, &createdAt, &snap.Runs, &snap.Results, &snap.Digest); err != nil {
		return nil, err
	}
	snap.Source = source.String
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	snap.CreatedAt = t
	return &snap, nil
}

func notFound(msg string) error {
	return errs.New(errs.BaselineNotFound, msg, ErrNotFound)
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// ResultDigest is a BLAKE2b-256 hex digest of r's JSON form with its
// baselineState cleared, so a result hashes the same before and after
// classification.
func ResultDigest(r sarif.Result) (string, error) {
	r.BaselineState = nil
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
