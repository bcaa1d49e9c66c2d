// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyImport is returned when an import carries no records.
var ErrEmptyImport = errors.New("import has no records")

// Record is one stored result: a division (House) or a state (Senate)
// keyed by its name.
type Record struct {
	Key     string
	Payload json.RawMessage
}

// Store keeps imported result records.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open connection. Queries use $n placeholders, which
// both lib/pq and modernc.org/sqlite accept.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Import replaces a chamber's records in one transaction and returns the
// import id. Records with a repeated key overwrite the earlier one.
func (s *Store) Import(ctx context.Context, chamber string, records []Record) (string, error) {
	if len(records) == 0 {
		return "", ErrEmptyImport
	}

	importID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dataset_import (id, chamber, records) VALUES ($1, $2, $3)
	`, importID, chamber, len(records)); err != nil {
		return "", fmt.Errorf("failed to record import: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM result_record WHERE chamber = $1`, chamber); err != nil {
		return "", fmt.Errorf("failed to clear %s records: %w", chamber, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO result_record (chamber, record_key, seq, payload, import_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chamber, record_key) DO UPDATE SET
			seq = excluded.seq,
			payload = excluded.payload,
			import_id = excluded.import_id
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, chamber, rec.Key, i, string(rec.Payload), importID); err != nil {
			return "", fmt.Errorf("failed to insert record %q: %w", rec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit import: %w", err)
	}
	return importID, nil
}

// Records returns a chamber's records in import order.
func (s *Store) Records(ctx context.Context, chamber string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_key, payload FROM result_record
		WHERE chamber = $1
		ORDER BY seq
	`, chamber)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", chamber, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var key, payload string
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, Record{Key: key, Payload: json.RawMessage(payload)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s records: %w", chamber, err)
	}
	return out, nil
}

// LatestImport returns the id of the chamber's most recent import, or ""
// when there is none.
func (s *Store) LatestImport(ctx context.Context, chamber string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT import_id FROM result_record WHERE chamber = $1 LIMIT 1
	`, chamber).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest %s import: %w", chamber, err)
	}
	return id, nil
}
