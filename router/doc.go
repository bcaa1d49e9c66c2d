// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the my-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(catalog, store, cfg, m)

store is nil when no database is configured; imports then answer 503.
A nil m disables /metrics and latency recording.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

House:

	GET  /house/divisions                       - Division names
	GET  /house/divisions/{division}            - Division result
	POST /house/divisions/{division}/narrative  - Replay a ballot

Senate:

	GET  /senate/states                         - State names
	GET  /senate/states/{state}                 - State result
	POST /senate/states/{state}/narrative       - Replay a ballot

Datasets:

	GET  /datasets/{chamber}                    - Driver and latest import
	POST /datasets/{chamber}                    - Import (requires X-Admin-Key)

Every route except /health, /metrics and the root is wrapped with
middleware.WithLogging and middleware.WithMetrics under its pattern.
*/
package router
