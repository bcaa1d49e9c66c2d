// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package count

import (
	"fmt"

	"github.com/danielhkuo/my-vote/ballot"
	"github.com/danielhkuo/my-vote/models"
)

var senateIntro = []string{
	"Ballots are initially counted towards the first preference listed. Voting above the line is equivalent to voting below the line for each candidate in the group in the order they are listed.",
	"At the end of each round of counting, any candidate who reaches the quota is elected. Rather than choosing which ballot papers make up the surplus, all of the elected candidate's ballots are transferred to their next preference with their value scaled down so that the total voting power transferred equals the surplus.",
	"If a ballot runs out of preferences, it is exhausted and can no longer be transferred.",
	"If no candidate reaches the quota at the end of a round, the candidate with the lowest number of votes is excluded and their ballots are transferred to their next preference, each at the value it arrived with.",
	"If the number of remaining candidates falls to the number of remaining vacancies, all of them are elected even if they are still below the quota. Otherwise counting stops when all vacancies are filled.",
}

// senateReplay is the state of one Senate replay, owned by NarrateSenate.
type senateReplay struct {
	seq       []models.SenateCandidate
	vacancies int
	cursor    int
	excluded  map[int]bool
	elected   map[int]bool
	batch     []models.SenateEvent
	helped    []models.SenateEvent
	lines     []models.Line
}

func (r *senateReplay) emit(kind, candidate, format string, args ...any) {
	r.lines = append(r.lines, models.Line{Kind: kind, Candidate: candidate, Text: fmt.Sprintf(format, args...)})
}

// atCursor reports whether position is the candidate the ballot currently sits with.
func (r *senateReplay) atCursor(position int) bool {
	return r.cursor < len(r.seq) && r.seq[r.cursor].Position == position
}

// advance moves the ballot on from the candidate at the cursor, skipping
// candidates already excluded or elected.
func (r *senateReplay) advance() {
	r.cursor++
	for r.cursor < len(r.seq) {
		next := r.seq[r.cursor]
		var was string
		switch {
		case r.excluded[next.Position]:
			was = "excluded"
		case r.elected[next.Position]:
			was = "elected"
		}
		if was == "" {
			break
		}
		r.emit(models.LineSkipped, next.DisplayName,
			"Your vote skipped over your next preferred candidate, %s, who has already been %s", next.DisplayName, was)
		r.cursor++
	}
	if r.cursor < len(r.seq) {
		next := r.seq[r.cursor]
		r.emit(models.LineTransferred, next.DisplayName, "Your vote was transferred to your next preferred candidate, %s", next.DisplayName)
		return
	}
	r.emit(models.LineExhausted, "", "Your vote was exhausted")
}

func (r *senateReplay) onElected(ev models.SenateEvent) {
	r.elected[ev.Position] = true
	r.batch = nil

	if ev.Surplus >= 0 {
		r.emit(models.LineElected, ev.DisplayName,
			"%s was elected with %s votes (from %s ballots), with a quota of %s and a surplus of %s. All ballots will be transferred to their next preferred candidate with a transfer value of %s",
			ev.DisplayName, Votes(ev.Votes), Votes(ev.Papers), Votes(ev.Quota), Votes(ev.Surplus), Percent(ev.TransferValue))
	} else {
		r.emit(models.LineElected, ev.DisplayName,
			"%s was elected to one of the remaining vacancies with %s votes (from %s ballots), below the quota of %s with a deficit of %s",
			ev.DisplayName, Votes(ev.Votes), Votes(ev.Papers), Votes(ev.Quota), Votes(-ev.Surplus))
	}

	if !r.atCursor(ev.Position) {
		return
	}
	r.helped = append(r.helped, ev)
	if len(r.elected) < r.vacancies {
		r.advance()
	}
}

func excludedText(who string, votes, papers int) string {
	return fmt.Sprintf("%s excluded with %s votes (from %s ballots). All of these ballots will be transferred to their next preferred candidate",
		who, Votes(votes), Votes(papers))
}

func (r *senateReplay) onExcluded(ev models.SenateEvent) {
	r.excluded[ev.Position] = true
	r.batch = append(r.batch, ev)

	switch {
	case r.atCursor(ev.Position):
		r.batch = nil
		r.lines = append(r.lines, models.Line{Kind: models.LineExcluded, Candidate: ev.DisplayName,
			Text: excludedText(ev.DisplayName+" was", ev.Votes, ev.Papers)})
		r.advance()
	case len(r.batch) == 1:
		r.lines = append(r.lines, models.Line{Kind: models.LineExcluded, Candidate: ev.DisplayName,
			Text: excludedText(ev.DisplayName+" was", ev.Votes, ev.Papers)})
	default:
		// The previous line reports the earlier part of this batch.
		var votes, papers int
		for _, b := range r.batch {
			votes += b.Votes
			papers += b.Papers
		}
		r.lines[len(r.lines)-1] = models.Line{Kind: models.LineExcludedBatch,
			Text: excludedText(fmt.Sprintf("%d candidates were", len(r.batch)), votes, papers)}
	}
}

// NarrateSenate replays a Senate ballot against a state's result.
func NarrateSenate(result models.SenateResult, method string, b ballot.Ballot) (models.SenateNarrative, error) {
	n := models.SenateNarrative{
		State:     result.State,
		Method:    method,
		Vacancies: result.Vacancies,
		Papers:    result.Papers,
		Quota:     result.Quota,
	}

	if !ballot.IsValidSenate(b, method) {
		return n, ErrIncompleteBallot
	}
	seq, err := ballot.SenateSequence(b, method, result.Tickets)
	if err != nil {
		return n, err
	}
	if len(seq) == 0 {
		return n, fmt.Errorf("%w: ballot resolved to no candidates", models.ErrDataIntegrity)
	}

	known := make(map[int]bool)
	for _, c := range result.Candidates() {
		known[c.Position] = true
	}

	r := &senateReplay{
		seq:       seq,
		vacancies: result.Vacancies,
		excluded:  make(map[int]bool),
		elected:   make(map[int]bool),
	}
	r.emit(models.LineFirstPreference, seq[0].DisplayName, "Your first preference was %s", seq[0].DisplayName)

	for i, ev := range result.Events {
		switch ev.Type {
		case models.SenateEventElected:
			if !known[ev.Position] {
				return n, fmt.Errorf("%w: elected event %d for unknown position %d", models.ErrDataIntegrity, i, ev.Position)
			}
			r.onElected(ev)
		case models.SenateEventExcluded:
			if !known[ev.Position] {
				return n, fmt.Errorf("%w: excluded event %d for unknown position %d", models.ErrDataIntegrity, i, ev.Position)
			}
			r.onExcluded(ev)
		case models.SenateEventCount, models.SenateEventTransfer:
		default:
			return n, fmt.Errorf("%w: unknown senate event %q", models.ErrDataIntegrity, ev.Type)
		}
	}

	n.Helped, n.Exhausted = shares(r.helped, seq)
	n.ExhaustedPercent = Percent(n.Exhausted)
	n.Short = shortForm(n.Helped, n.ExhaustedPercent)
	n.Long = append(longIntro(result), r.lines...)
	return n, nil
}

// shares splits the ballot's weight between the candidates it helped elect.
// Each election keeps the difference between the value the ballot arrived
// with and the transfer value it leaves with; what is left at the end is
// exhausted. The parts always sum to 1.
func shares(helped []models.SenateEvent, seq []models.SenateCandidate) ([]models.Share, float64) {
	out := make([]models.Share, 0, len(helped))
	last := 1.0
	for _, ev := range helped {
		tv := ev.TransferValue
		if ev.Surplus < 0 {
			// elected below quota: nothing is transferred on
			tv = 0
		}
		preference := 0
		for i, c := range seq {
			if c.Position == ev.Position {
				preference = i + 1
				break
			}
		}
		out = append(out, models.Share{
			DisplayName: ev.DisplayName,
			Position:    ev.Position,
			Preference:  preference,
			Fraction:    last - tv,
			Percent:     Percent(last - tv),
		})
		last = tv
	}
	return out, last
}

func shortForm(helped []models.Share, exhausted string) []models.Line {
	if len(helped) == 0 {
		return []models.Line{{Kind: models.LineUnhelped, Text: "Your ballot did not help any candidate get elected"}}
	}
	lines := make([]models.Line, 0, len(helped)+1)
	for _, s := range helped {
		lines = append(lines, models.Line{
			Kind:      models.LineHelped,
			Candidate: s.DisplayName,
			Position:  s.Preference,
			Text:      fmt.Sprintf("%s of your ballot helped %s (your preference %d) get elected", s.Percent, s.DisplayName, s.Preference),
		})
	}
	lines = append(lines, models.Line{Kind: models.LineRemaining, Text: fmt.Sprintf("The remaining %s of your ballot was exhausted", exhausted)})
	return lines
}

func longIntro(result models.SenateResult) []models.Line {
	lines := []models.Line{{
		Kind: models.LineIntro,
		Text: fmt.Sprintf("%s had %d vacant Senate positions at the election and %s formal ballots were cast. To determine the quota of votes required to be elected, compute %s/(%d+1)+1 to get %s.",
			result.State, result.Vacancies, Votes(result.Papers), Votes(result.Papers), result.Vacancies, Votes(result.Quota)),
	}}
	for _, p := range senateIntro {
		lines = append(lines, models.Line{Kind: models.LineIntro, Text: p})
	}
	return append(lines, models.Line{Kind: models.LineIntro, Text: howVoteWasCounted})
}
