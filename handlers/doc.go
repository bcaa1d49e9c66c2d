// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the my-vote API.

# Handler Types

Each handler is a struct built from the shared result catalog:

  - HouseHandler: divisions and House ballot narratives
  - SenateHandler: states and Senate ballot narratives
  - DatasetHandler: dataset import and status

	house := handlers.NewHouseHandler(catalog, m)
	datasets := handlers.NewDatasetHandler(catalog, store, cfg)

# Narratives

	POST /house/divisions/{division}/narrative
	POST /senate/states/{state}/narrative

The body is JSON:

	{"method": "atl", "preferences": [{"id": "A", "rank": "1"}, ...]}

or a form post with a method field and one field per box. House ids are
candidate ids; Senate ids are ticket ids above the line and ballot
positions below it. House ballots take no method.

A ballot that is not numbered far enough is answered with
200 {"valid": false}. A result that cannot be replayed is a 500 and is
logged with the request id.

# Status Codes

  - 400: malformed body, or a Senate method other than atl or btl
  - 401: missing or invalid X-Admin-Key
  - 404: unknown division, state or chamber
  - 500: inconsistent result data
  - 503: dataset could not be fetched, or no database for imports

# Imports

	POST /datasets/{chamber}   (X-Admin-Key)

The body is the chamber's full JSON dataset. It is validated, replaces the
chamber's stored records and drops the cached copy so the next request
serves it.
*/
package handlers
