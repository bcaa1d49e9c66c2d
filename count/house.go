// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package count

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/danielhkuo/my-vote/ballot"
	"github.com/danielhkuo/my-vote/models"
)

// ErrIncompleteBallot is returned when a ballot is not numbered far enough
// to be counted. No narrative is produced for it.
var ErrIncompleteBallot = errors.New("ballot is not fully numbered")

const (
	houseFirstPreferencesIntro = "After the first round of counting, %s had a majority of votes and was elected, with %s votes (%s of the total vote)."
	houseTwoCandidateIntro     = "After the first round of counting, only two candidates reached a winnable position (there were not enough votes amongst the remaining candidates to overtake either of the first two candidates). For each ballot you need only consider which of these two candidates is preferred above the other."
	houseFullCountIntro        = "After the first round of counting, there were three or more candidates in a winnable position. At the end of each round of counting, the candidate with the lowest number of votes is excluded, and each ballot paper is transferred to its next preferred candidate. This repeats until a candidate reaches a majority of votes (above 50%)."
	howVoteWasCounted          = "This is how your vote was counted."
)

// NarrateHouse replays a House ballot against a division's result.
func NarrateHouse(result models.HouseResult, b ballot.Ballot) (models.HouseNarrative, error) {
	n := models.HouseNarrative{Division: result.Division, Method: result.Method.Type}

	if !ballot.IsValidHouse(b, len(result.Candidates)) {
		return n, ErrIncompleteBallot
	}
	seq, err := ballot.HouseSequence(b, result.Candidates)
	if err != nil {
		return n, err
	}

	switch result.Method.Type {
	case models.MethodFirstPreferences:
		n.Lines, err = narrateFirstPreferences(result, b, seq)
	case models.MethodTwoCandidatePreferred:
		n.Lines, err = narrateTwoCandidatePreferred(result, b, seq)
	case models.MethodFullCount:
		n.Lines, err = narrateFullCount(result, seq)
	default:
		err = fmt.Errorf("%w: unknown house method %q", models.ErrDataIntegrity, result.Method.Type)
	}
	if err != nil {
		return models.HouseNarrative{Division: result.Division, Method: result.Method.Type}, err
	}
	return n, nil
}

func rankOf(b ballot.Ballot, c models.Candidate) (int, error) {
	rank, ok := b.RankOf(strconv.Itoa(c.ID))
	if !ok {
		return 0, fmt.Errorf("%w: candidate %d is not on the ballot", models.ErrDataIntegrity, c.ID)
	}
	return rank, nil
}

func totalsText(c models.CandidateTotal) string {
	return fmt.Sprintf("%s votes (%s of the total vote)", Votes(c.PreferencesTotal), PercentValue(c.PreferencesPercentage))
}

func excludedFirstRound(c models.Candidate) models.Line {
	return models.Line{
		Kind:      models.LineExcluded,
		Candidate: c.DisplayName,
		Text:      fmt.Sprintf("Your preferred candidate %s was excluded after the first round of counting along with all other candidates.", c.DisplayName),
	}
}

func narrateFirstPreferences(result models.HouseResult, b ballot.Ballot, seq []models.Candidate) ([]models.Line, error) {
	winner := result.Method.Elected
	if winner == nil {
		return nil, fmt.Errorf("%w: firstPreferences method without elected candidate", models.ErrDataIntegrity)
	}
	rank, err := rankOf(b, winner.Candidate)
	if err != nil {
		return nil, err
	}

	lines := []models.Line{
		{
			Kind:      models.LineElected,
			Candidate: winner.DisplayName,
			Text: fmt.Sprintf(houseFirstPreferencesIntro, winner.DisplayName,
				Votes(winner.PreferencesTotal), PercentValue(winner.PreferencesPercentage)),
		},
		{
			Kind:      models.LineFirstPreference,
			Candidate: winner.DisplayName,
			Text:      fmt.Sprintf("You preferenced this candidate at position %d.", rank),
		},
	}
	if first := seq[0]; first.ID != winner.ID {
		lines = append(lines, excludedFirstRound(first))
	}
	return lines, nil
}

func narrateTwoCandidatePreferred(result models.HouseResult, b ballot.Ballot, seq []models.Candidate) ([]models.Line, error) {
	if len(result.Method.Candidates) != 2 {
		return nil, fmt.Errorf("%w: twoCandidatePreferred method needs two candidates", models.ErrDataIntegrity)
	}
	first, second := result.Method.Candidates[0], result.Method.Candidates[1]
	firstRank, err := rankOf(b, first.Candidate)
	if err != nil {
		return nil, err
	}
	secondRank, err := rankOf(b, second.Candidate)
	if err != nil {
		return nil, err
	}

	if result.Elected.ID != first.ID && result.Elected.ID != second.ID {
		return nil, fmt.Errorf("%w: elected candidate %d is not one of the two candidates", models.ErrDataIntegrity, result.Elected.ID)
	}

	preferred, preferredRank, other, otherRank := second, secondRank, first, firstRank
	if firstRank < secondRank {
		preferred, preferredRank, other, otherRank = first, firstRank, second, secondRank
	}

	lines := []models.Line{
		{Kind: models.LineIntro, Text: houseTwoCandidateIntro},
		{
			Kind: models.LineIntro,
			Text: fmt.Sprintf("The two candidates were %s initially with %s and %s initially with %s.",
				first.DisplayName, totalsText(first), second.DisplayName, totalsText(second)),
		},
	}
	if fp := seq[0]; fp.ID != first.ID && fp.ID != second.ID {
		lines = append(lines, excludedFirstRound(fp))
	}
	lines = append(lines,
		models.Line{
			Kind:      models.LineTransferred,
			Candidate: preferred.DisplayName,
			Text: fmt.Sprintf("You preferenced %s at position %d ahead of %s at position %d, and so your vote was counted towards %s.",
				preferred.DisplayName, preferredRank, other.DisplayName, otherRank, preferred.DisplayName),
		},
		models.Line{
			Kind:      models.LineElected,
			Candidate: result.Elected.DisplayName,
			Text: fmt.Sprintf("After all votes were counted in this way, %s was elected with %s.",
				result.Elected.DisplayName, totalsText(result.Elected)),
		},
	)
	return lines, nil
}

// houseReplay is the state of one full-count replay. It is owned by
// narrateFullCount and never shared.
type houseReplay struct {
	seq      []models.Candidate
	cursor   int
	excluded map[int]bool
	lines    []models.Line
}

func (r *houseReplay) emit(kind string, c models.Candidate, format string, args ...any) {
	r.lines = append(r.lines, models.Line{Kind: kind, Candidate: c.DisplayName, Text: fmt.Sprintf(format, args...)})
}

// advance moves the cursor past the excluded candidate at the cursor and any
// later candidates already excluded.
func (r *houseReplay) advance() error {
	r.cursor++
	for r.cursor < len(r.seq) && r.excluded[r.seq[r.cursor].ID] {
		skipped := r.seq[r.cursor]
		r.emit(models.LineSkipped, skipped,
			"Your vote skipped over your next preferred candidate, %s, who has already been excluded", skipped.DisplayName)
		r.cursor++
	}
	if r.cursor >= len(r.seq) {
		return fmt.Errorf("%w: every preference was excluded before a candidate was elected", models.ErrDataIntegrity)
	}
	next := r.seq[r.cursor]
	r.emit(models.LineTransferred, next, "Your vote was transferred to your next preferred candidate, %s", next.DisplayName)
	return nil
}

func narrateFullCount(result models.HouseResult, seq []models.Candidate) ([]models.Line, error) {
	known := make(map[int]bool, len(result.Candidates))
	for _, c := range result.Candidates {
		known[c.ID] = true
	}

	r := &houseReplay{seq: seq, excluded: make(map[int]bool)}
	r.lines = append(r.lines,
		models.Line{Kind: models.LineIntro, Text: houseFullCountIntro},
		models.Line{Kind: models.LineIntro, Text: howVoteWasCounted},
	)
	r.emit(models.LineFirstPreference, seq[0], "Your first preference was %s", seq[0].DisplayName)

	for i, ev := range result.Events {
		switch ev.Type {
		case models.HouseEventTransfer:
			from := ev.From
			if from == nil || !known[from.ID] {
				return nil, fmt.Errorf("%w: transfer event %d excludes an unknown candidate", models.ErrDataIntegrity, i)
			}
			r.excluded[from.ID] = true
			r.emit(models.LineExcluded, *from,
				"%s was excluded and ballots were transferred to their next preferred candidate", from.DisplayName)
			if r.seq[r.cursor].ID == from.ID {
				if err := r.advance(); err != nil {
					return nil, err
				}
			}
		case models.HouseEventElected:
			if ev.Elected == nil || !known[ev.Elected.ID] {
				return nil, fmt.Errorf("%w: elected event %d names an unknown candidate", models.ErrDataIntegrity, i)
			}
			r.emit(models.LineElected, ev.Elected.Candidate, "%s was elected with %s", ev.Elected.DisplayName, totalsText(*ev.Elected))
		case models.HouseEventCount, models.HouseEventTwoCandidatePreferred:
			// tallies only; they do not move a ballot
		default:
			return nil, fmt.Errorf("%w: unknown house event %q", models.ErrDataIntegrity, ev.Type)
		}
	}
	return r.lines, nil
}
