// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the result data, narrative and request/response types.

# Result Data

Per-division House results and per-state Senate results, as published by the
convert tool and read by the source package:

  - HouseResult: division, candidates, elected, method, events
  - SenateResult: state, vacancies, papers, quota, tickets, events
  - HouseMethod: firstPreferences | twoCandidatePreferred | fullCount
  - HouseEvent: transfer | count | elected | twoCandidatePreferred
  - SenateEvent: elected | excluded | count | transfer

Method and event tags are checked while decoding. An unknown tag, or a tag
missing the fields the replay needs, fails with ErrDataIntegrity.

# Narrative Types

  - Line: kind and rendered text of one narrative statement
  - Share: part of a Senate ballot used to elect one candidate
  - HouseNarrative: lines for one House ballot
  - SenateNarrative: short and long forms for one Senate ballot

# Request Types

  - NarrativeRequest: method (atl/btl, Senate only), preferences
  - BallotEntry: id, rank (rank may be blank)

# Response Types

  - NarrativeResponse: valid, house | senate
  - ImportResponse: import_id, chamber, records
  - ErrorResponse: error, message
*/
package models
