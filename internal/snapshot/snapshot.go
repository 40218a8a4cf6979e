// Package snapshot records generation runs in a SQLite ledger.
//
// The generator itself is stateless; the ledger exists so callers can verify
// the byte-stability contract operationally: two runs over the same input
// document must produce identical output buffers, across builds and
// machines. Each run stores content hashes only, never the buffers.
package snapshot

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded generation run.
type Run struct {
	ID              string
	InputSHA256     string
	HostSHA256      string
	NativeSHA256    string
	ItemsTotal      int
	ItemsClassified int
}

// NewRun builds a Run record with a fresh id from the raw input document and
// the two rendered buffers.
func NewRun(input, host, native []byte, total, classified int) Run {
	return Run{
		ID:              uuid.NewString(),
		InputSHA256:     Digest(input),
		HostSHA256:      Digest(host),
		NativeSHA256:    Digest(native),
		ItemsTotal:      total,
		ItemsClassified: classified,
	}
}

// Digest returns the lowercase hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Drift describes a determinism violation: a prior run over the same input
// produced different output.
type Drift struct {
	PriorID       string
	HostChanged   bool
	NativeChanged bool
}

// Ledger is an append-only run store backed by SQLite.
type Ledger struct {
	db *sql.DB
}

// Open creates or opens a ledger database at the given path.
// Safe to call repeatedly; the schema is applied idempotently.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to ledger: %w", err)
	}

	// Single writer; the ledger is only touched from one CLI process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Record appends a run to the ledger.
func (l *Ledger) Record(r Run) error {
	_, err := l.db.Exec(`
		INSERT INTO runs (id, input_sha256, host_sha256, native_sha256, items_total, items_classified)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.InputSHA256, r.HostSHA256, r.NativeSHA256, r.ItemsTotal, r.ItemsClassified)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// Latest returns the most recent run recorded for the given input hash, or
// nil when the input has never been seen.
func (l *Ledger) Latest(inputSHA256 string) (*Run, error) {
	row := l.db.QueryRow(`
		SELECT id, input_sha256, host_sha256, native_sha256, items_total, items_classified
		FROM runs
		WHERE input_sha256 = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		inputSHA256)

	var r Run
	err := row.Scan(&r.ID, &r.InputSHA256, &r.HostSHA256, &r.NativeSHA256, &r.ItemsTotal, &r.ItemsClassified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest run: %w", err)
	}
	return &r, nil
}

// Verify compares a new run against the most recent prior run over the same
// input. A nil Drift means no prior run exists or the outputs match.
func (l *Ledger) Verify(r Run) (*Drift, error) {
	prior, err := l.Latest(r.InputSHA256)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, nil
	}

	drift := &Drift{
		PriorID:       prior.ID,
		HostChanged:   prior.HostSHA256 != r.HostSHA256,
		NativeChanged: prior.NativeSHA256 != r.NativeSHA256,
	}
	if !drift.HostChanged && !drift.NativeChanged {
		return nil, nil
	}
	return drift, nil
}
