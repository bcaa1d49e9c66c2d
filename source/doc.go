// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package source fetches result datasets and serves them from memory.

# Loaders

A Loader returns a chamber's raw JSON dataset:

  - FS: files in a directory (DATA_DIR)
  - S3: objects in a bucket, through aws-sdk-go-v2
  - DB: records imported into the database
  - Memory: fixed bytes, for tests and tools

A dataset that does not exist is ErrNotFound.

# Catalog

	catalog := source.NewCatalog(loader, m)
	result, err := catalog.Division(ctx, "Adelaide")

The catalog fetches each chamber once and shares it between requests.
A failed fetch is wrapped in ErrUnavailable and is not cached, so the next
request tries again. A dataset that fetches but does not decode is
models.ErrDataIntegrity. Invalidate drops a chamber after an import.

# Imports

Records splits a dataset into one db.Record per division or state,
validating every event on the way.
*/
package source
