// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/danielhkuo/my-vote/models"
)

// Minimum boxes a formal Senate ballot must number
const (
	MinAboveTheLine = 6
	MinBelowTheLine = 12
)

var ErrUnknownMethod = errors.New("unknown voting method")

// Ballot is the boxes of one paper in the order they were collected. Blank
// ranks are allowed and are left out of the preference sequence.
type Ballot []models.BallotEntry

// FromMap builds a ballot from id -> rank pairs, ordered by id so that
// replays of the same input are deterministic.
func FromMap(m map[string]string) Ballot {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	b := make(Ballot, 0, len(ids))
	for _, id := range ids {
		b = append(b, models.BallotEntry{ID: id, Rank: m[id]})
	}
	return b
}

// FromForm builds a ballot from posted form fields, ignoring the named
// non-ballot fields (such as "method").
func FromForm(values url.Values, ignore ...string) Ballot {
	m := make(map[string]string, len(values))
	for id, vs := range values {
		if contains(ignore, id) || len(vs) == 0 {
			continue
		}
		m[id] = vs[len(vs)-1]
	}
	return FromMap(m)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type ranked struct {
	id   string
	rank int
}

// ranks returns the numbered entries in collection order. ok is false when a
// box holds something other than a positive whole number, or an id repeats.
func (b Ballot) ranks() (rs []ranked, ok bool) {
	seen := make(map[string]bool, len(b))
	for _, e := range b {
		v := strings.TrimSpace(e.Rank)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || seen[e.ID] {
			return nil, false
		}
		seen[e.ID] = true
		rs = append(rs, ranked{id: e.ID, rank: n})
	}
	return rs, true
}

// RankOf returns the number written against id.
func (b Ballot) RankOf(id string) (int, bool) {
	for _, e := range b {
		if e.ID != id {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(e.Rank))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// FirstPreference returns the id numbered 1.
func (b Ballot) FirstPreference() (string, bool) {
	for _, e := range b {
		if n, err := strconv.Atoi(strings.TrimSpace(e.Rank)); err == nil && n == 1 {
			return e.ID, true
		}
	}
	return "", false
}

// Order returns the ids of the numbered entries by ascending rank. Ties keep
// collection order; they cannot occur on a ballot that passed validation.
func (b Ballot) Order() []string {
	rs, _ := b.ranks()
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].rank < rs[j].rank })

	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.id
	}
	return ids
}

// IsValid reports whether every number from 1 to required appears exactly
// once among the ballot's boxes.
func IsValid(b Ballot, required int) bool {
	rs, ok := b.ranks()
	if !ok || len(rs) == 0 || required < 1 {
		return false
	}
	counts := make(map[int]int, required)
	for _, r := range rs {
		counts[r.rank]++
	}
	for expected := 1; expected <= required; expected++ {
		if counts[expected] != 1 {
			return false
		}
	}
	return true
}

// IsValidHouse reports whether a House ballot numbers every one of the
// candidateCount boxes from 1 to candidateCount.
func IsValidHouse(b Ballot, candidateCount int) bool {
	if !IsValid(b, candidateCount) {
		return false
	}
	rs, _ := b.ranks()
	for _, r := range rs {
		if r.rank > candidateCount {
			return false
		}
	}
	return true
}

// IsValidSenate reports whether a Senate ballot numbers at least the minimum
// boxes for its method. Later boxes may be left blank.
func IsValidSenate(b Ballot, method string) bool {
	switch method {
	case models.VoteAboveTheLine:
		return IsValid(b, MinAboveTheLine)
	case models.VoteBelowTheLine:
		return IsValid(b, MinBelowTheLine)
	default:
		return false
	}
}

// HouseSequence resolves the ballot to candidates in preference order.
func HouseSequence(b Ballot, candidates []models.Candidate) ([]models.Candidate, error) {
	byID := make(map[int]models.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	order := b.Order()
	seq := make([]models.Candidate, 0, len(order))
	for _, id := range order {
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("%w: ballot item %q is not a candidate id", models.ErrDataIntegrity, id)
		}
		c, ok := byID[n]
		if !ok {
			return nil, fmt.Errorf("%w: no candidate with id %d", models.ErrDataIntegrity, n)
		}
		seq = append(seq, c)
	}
	return seq, nil
}

// SenateSequence resolves the ballot to candidates in preference order. An
// above-the-line vote expands each ticket into its listed candidates.
func SenateSequence(b Ballot, method string, tickets []models.Ticket) ([]models.SenateCandidate, error) {
	order := b.Order()

	switch method {
	case models.VoteAboveTheLine:
		byID := make(map[string]models.Ticket, len(tickets))
		for _, t := range tickets {
			if t.ID == "" || t.ID == models.UngroupedTicket {
				continue
			}
			byID[t.ID] = t
		}
		var seq []models.SenateCandidate
		for _, id := range order {
			t, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: no ticket %q above the line", models.ErrDataIntegrity, id)
			}
			seq = append(seq, t.Candidates...)
		}
		return seq, nil

	case models.VoteBelowTheLine:
		byPosition := make(map[int]models.SenateCandidate)
		for _, t := range tickets {
			for _, c := range t.Candidates {
				byPosition[c.Position] = c
			}
		}
		seq := make([]models.SenateCandidate, 0, len(order))
		for _, id := range order {
			n, err := strconv.Atoi(id)
			if err != nil {
				return nil, fmt.Errorf("%w: ballot item %q is not a candidate position", models.ErrDataIntegrity, id)
			}
			c, ok := byPosition[n]
			if !ok {
				return nil, fmt.Errorf("%w: no candidate at position %d", models.ErrDataIntegrity, n)
			}
			seq = append(seq, c)
		}
		return seq, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}
