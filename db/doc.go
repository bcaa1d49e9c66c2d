// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores imported result datasets.

# Schema Creation

CreateSchema initializes all required tables:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Open accepts "sqlite" (modernc.org/sqlite) and "postgres" (lib/pq).

# Tables

  - dataset_import: one row per import, with the chamber and record count
  - result_record: one division or state per row, payload stored as JSON text

	dataset_import 1──* result_record

# Store

Import replaces every record of a chamber in one transaction:

	store := db.NewStore(conn)
	importID, err := store.Import(ctx, models.ChamberHouse, records)

Queries use $n placeholders for both drivers.
*/
package db
