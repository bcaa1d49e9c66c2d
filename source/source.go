// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielhkuo/my-vote/db"
	"github.com/danielhkuo/my-vote/models"
)

var (
	// ErrNotFound is returned for a dataset or record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable wraps any failure to fetch a dataset.
	ErrUnavailable = errors.New("dataset unavailable")
)

// Driver names
const (
	DriverFS     = "fs"
	DriverS3     = "s3"
	DriverDB     = "db"
	DriverMemory = "memory"
)

// Loader fetches the raw JSON dataset of a chamber: an array of House
// results or of Senate results.
type Loader interface {
	Driver() string
	Load(ctx context.Context, chamber string) ([]byte, error)
}

// Keys names the dataset object of each chamber, a file name for fs and an
// object key for s3.
type Keys struct {
	House  string
	Senate string
}

func (k Keys) For(chamber string) (string, error) {
	switch chamber {
	case models.ChamberHouse:
		return k.House, nil
	case models.ChamberSenate:
		return k.Senate, nil
	}
	return "", fmt.Errorf("unknown chamber %q", chamber)
}

// FS reads datasets from a directory.
type FS struct {
	Dir  string
	Keys Keys
}

func (f FS) Driver() string { return DriverFS }

func (f FS) Load(ctx context.Context, chamber string) ([]byte, error) {
	key, err := f.Keys.For(chamber)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(f.Dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s dataset %s: %w", chamber, key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s dataset: %w", chamber, err)
	}
	return data, nil
}

// Memory serves datasets held in memory, keyed by chamber.
type Memory map[string][]byte

func (m Memory) Driver() string { return DriverMemory }

func (m Memory) Load(ctx context.Context, chamber string) ([]byte, error) {
	data, ok := m[chamber]
	if !ok {
		return nil, fmt.Errorf("%s dataset: %w", chamber, ErrNotFound)
	}
	return data, nil
}

// DB serves datasets imported into the database.
type DB struct {
	Store *db.Store
}

func (d DB) Driver() string { return DriverDB }

func (d DB) Load(ctx context.Context, chamber string) ([]byte, error) {
	records, err := d.Store.Records(ctx, chamber)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s dataset has not been imported: %w", chamber, ErrNotFound)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(rec.Payload)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Records decodes a chamber's dataset and splits it into one record per
// division or state. Decoding validates every event, so a dataset that
// cannot be replayed is never stored.
func Records(chamber string, data []byte) ([]db.Record, error) {
	switch chamber {
	case models.ChamberHouse:
		var results []models.HouseResult
		if err := decode(data, &results); err != nil {
			return nil, err
		}
		return split(results, func(r models.HouseResult) string { return r.Division })
	case models.ChamberSenate:
		var results []models.SenateResult
		if err := decode(data, &results); err != nil {
			return nil, err
		}
		return split(results, func(r models.SenateResult) string { return r.State })
	}
	return nil, fmt.Errorf("unknown chamber %q", chamber)
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		if errors.Is(err, models.ErrDataIntegrity) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrDataIntegrity, err)
	}
	return nil
}

func split[T any](results []T, key func(T) string) ([]db.Record, error) {
	records := make([]db.Record, 0, len(results))
	for _, r := range results {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record: %w", err)
		}
		k := key(r)
		if k == "" {
			return nil, fmt.Errorf("%w: record without a name", models.ErrDataIntegrity)
		}
		records = append(records, db.Record{Key: k, Payload: payload})
	}
	return records, nil
}
