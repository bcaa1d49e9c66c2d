// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the my-vote API server.

my-vote replays one ballot against the published distribution of
preferences of an Australian federal election and explains, count by
count, where that vote went: the preferential House count of a division,
or the Senate STV count of a state.

# Starting the Server

With datasets in ./data (house.json, senate.json):

	go run .

Serving from S3, or from a database filled by imports:

	go run . -data s3 -s3-bucket election-results
	DATABASE_URL=file:results.db ADMIN_KEY_SALT=... go run . -data db

# Configuration

See package cliparse. Settings come from flags, then the environment, then
an optional .env file.

# Architecture

  - router: Route definitions using Go 1.22+ routing
  - handlers: HTTP request handlers (house, senate, datasets)
  - middleware: CORS, logging, metrics, JSON helpers
  - source: Dataset drivers (fs, s3, db) and the cached result catalog
  - count: House and Senate ballot replays
  - ballot: Ballot validation and preference sequences
  - convert: AEC distribution-of-preferences CSV conversion
  - models: Result, narrative and request/response types
  - db: Schema and imported record store
  - metrics: Prometheus collectors
  - auth: Admin keys for imports
  - cliparse: Configuration parsing

The cmd/convert tool turns AEC CSV downloads into datasets and imports
them; cmd/narrate replays a ballot from the command line.
*/
package main
