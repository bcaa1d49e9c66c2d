// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package convert turns the AEC distribution of preferences downloads into the
result datasets the narrator replays.

# House

HouseDopByDivisionDownload has one row per division, count, candidate and
calculation type:

	results, err := convert.House(f)

The method of each division is decided from first preferences: a majority
is firstPreferences, a field where the rest cannot overtake the second
candidate is twoCandidatePreferred, anything else is fullCount.

# Senate

SenateStateDOPDownload holds one state per file:

	names, _ := convert.LoadTicketNames(ticketsFile)
	result, err := convert.Senate(f, names)

Papers in the export are per-count changes; they are accumulated per
candidate so elected and excluded events carry the ballots held at the time.
Ticket names are optional; without them the ticket id is used.
*/
package convert
