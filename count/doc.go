// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package count replays a single ballot against a finished count and narrates
what happened to it.

The count itself is never re-run. A result record carries the official
events in the order they happened; the replay walks them once, moving the
ballot's current preference as candidates are excluded or elected.

# House

	narrative, err := count.NarrateHouse(result, b)

The method of the division picks the narrative:

  - firstPreferences: a candidate had a majority on first preferences
  - twoCandidatePreferred: only two candidates could win; the ballot counts
    for whichever of them it numbered first
  - fullCount: transfer events exclude candidates one at a time and the
    ballot follows its preferences until a candidate is elected

# Senate

	narrative, err := count.NarrateSenate(result, models.VoteAboveTheLine, b)

Elected events at the ballot's current preference are recorded as "helped".
Each one uses up the difference between the ballot's incoming value and the
transfer value it leaves with. Runs of exclusions that do not touch the
ballot are merged into a single line.

# Errors

ErrIncompleteBallot means the ballot is not yet numbered far enough and no
narrative exists. Errors wrapping models.ErrDataIntegrity mean the result
data does not fit the ballot; the replay stops rather than narrate a partial
story.
*/
package count
