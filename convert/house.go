// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package convert

import (
	"fmt"
	"io"
	"sort"

	"github.com/danielhkuo/my-vote/models"
)

var houseColumns = []string{
	"DivisionNm", "CountNumber", "BallotPosition", "CandidateID",
	"Surname", "GivenNm", "PartyNm", "CalculationType", "CalculationValue",
}

// Calculation types of the House export. Each candidate has one row of
// each per count.
const (
	calcPreferenceCount   = "Preference Count"
	calcPreferencePercent = "Preference Percent"
	calcTransferCount     = "Transfer Count"
	calcTransferPercent   = "Transfer Percent"
)

type houseTally struct {
	candidate       models.Candidate
	preferences     float64
	percent         float64
	transferred     float64
	transferPercent float64
}

func (t *houseTally) total() models.CandidateTotal {
	return models.CandidateTotal{
		Candidate:             t.candidate,
		PreferencesTotal:      int(t.preferences),
		PreferencesPercentage: t.percent,
	}
}

type houseCount struct {
	number  int
	tallies []*houseTally
	byID    map[int]*houseTally
}

type houseDivision struct {
	name    string
	counts  []*houseCount
	byCount map[int]*houseCount
}

// House converts an AEC House distribution of preferences export
// (HouseDopByDivisionDownload) into one result per division, in the order
// the divisions appear.
func House(r io.Reader) ([]models.HouseResult, error) {
	t, err := readTable(r, houseColumns)
	if err != nil {
		return nil, err
	}

	divisions, err := groupHouse(t)
	if err != nil {
		return nil, err
	}

	results := make([]models.HouseResult, 0, len(divisions))
	for _, d := range divisions {
		result, err := convertDivision(d)
		if err != nil {
			return nil, fmt.Errorf("division %s: %w", d.name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// groupHouse groups rows by division, then count, then candidate.
func groupHouse(t *table) ([]*houseDivision, error) {
	var divisions []*houseDivision
	byName := make(map[string]*houseDivision)

	for i, row := range t.rows {
		name := t.field(row, "DivisionNm")
		number, err := t.intAt(i, "CountNumber")
		if err != nil {
			return nil, err
		}
		id, err := t.intAt(i, "CandidateID")
		if err != nil {
			return nil, err
		}
		position, err := t.intAt(i, "BallotPosition")
		if err != nil {
			return nil, err
		}
		value, err := t.floatAt(i, "CalculationValue")
		if err != nil {
			return nil, err
		}

		d, ok := byName[name]
		if !ok {
			d = &houseDivision{name: name, byCount: make(map[int]*houseCount)}
			byName[name] = d
			divisions = append(divisions, d)
		}
		c, ok := d.byCount[number]
		if !ok {
			c = &houseCount{number: number, byID: make(map[int]*houseTally)}
			d.byCount[number] = c
			d.counts = append(d.counts, c)
		}
		tally, ok := c.byID[id]
		if !ok {
			given, surname := t.field(row, "GivenNm"), t.field(row, "Surname")
			party := t.field(row, "PartyNm")
			tally = &houseTally{candidate: models.Candidate{
				ID:          id,
				Name:        fullName(given, surname),
				DisplayName: DisplayName(given, surname, party),
				Party:       party,
				Position:    position,
			}}
			c.byID[id] = tally
			c.tallies = append(c.tallies, tally)
		}

		switch calc := t.field(row, "CalculationType"); calc {
		case calcPreferenceCount:
			tally.preferences = value
		case calcPreferencePercent:
			tally.percent = value
		case calcTransferCount:
			tally.transferred = value
		case calcTransferPercent:
			tally.transferPercent = value
		default:
			return nil, fmt.Errorf("%w: line %d: unknown calculation type %q", ErrMalformed, t.first+i, calc)
		}
	}

	for _, d := range divisions {
		sort.SliceStable(d.counts, func(i, j int) bool { return d.counts[i].number < d.counts[j].number })
	}
	return divisions, nil
}

// ranked returns the count's totals, highest first.
func (c *houseCount) ranked() []models.CandidateTotal {
	out := c.totals()
	sort.SliceStable(out, func(i, j int) bool { return out[i].PreferencesTotal > out[j].PreferencesTotal })
	return out
}

func (c *houseCount) totals() []models.CandidateTotal {
	out := make([]models.CandidateTotal, len(c.tallies))
	for i, t := range c.tallies {
		out[i] = t.total()
	}
	return out
}

// twoCandidate reports whether the candidates outside the top two can no
// longer overtake the second.
func twoCandidate(ranked []models.CandidateTotal) bool {
	if len(ranked) < 2 {
		return false
	}
	first, second := ranked[0].PreferencesPercentage, ranked[1].PreferencesPercentage
	return 100.0-first-second < second
}

func convertDivision(d *houseDivision) (models.HouseResult, error) {
	first := d.counts[0]
	last := d.counts[len(d.counts)-1]

	result := models.HouseResult{Division: d.name}
	for _, t := range first.tallies {
		result.Candidates = append(result.Candidates, t.candidate)
	}
	result.Elected = last.ranked()[0]

	firstPrefs := first.ranked()
	switch {
	case firstPrefs[0].PreferencesPercentage > 50.0:
		elected := firstPrefs[0]
		result.Method = models.HouseMethod{Type: models.MethodFirstPreferences, Elected: &elected}
	case twoCandidate(firstPrefs):
		result.Method = models.HouseMethod{Type: models.MethodTwoCandidatePreferred, Candidates: firstPrefs[:2]}
	default:
		result.Method = models.HouseMethod{Type: models.MethodFullCount}
	}

	for i, c := range d.counts {
		if i > 0 {
			ev, err := transferEvent(c)
			if err != nil {
				return result, err
			}
			result.Events = append(result.Events, ev)
		}

		result.Events = append(result.Events, models.HouseEvent{Type: models.HouseEventCount, Count: c.number, Totals: c.totals()})

		ranked := c.ranked()
		switch {
		case ranked[0].PreferencesPercentage > 50.0:
			elected := ranked[0]
			result.Events = append(result.Events, models.HouseEvent{Type: models.HouseEventElected, Elected: &elected})
		case twoCandidate(ranked):
			result.Events = append(result.Events, models.HouseEvent{Type: models.HouseEventTwoCandidatePreferred, Totals: ranked[:2]})
		}
	}
	return result, nil
}

// transferEvent finds the candidate whose whole tally moved away in this count.
func transferEvent(c *houseCount) (models.HouseEvent, error) {
	ev := models.HouseEvent{Type: models.HouseEventTransfer}
	for _, t := range c.tallies {
		if t.transferPercent == -100.0 && ev.From == nil {
			from := t.candidate
			ev.From = &from
		}
		ev.Transfers = append(ev.Transfers, models.CandidateTransfer{
			Candidate:             t.candidate,
			TransferredTotal:      int(t.transferred),
			TransferredPercentage: t.transferPercent,
		})
	}
	if ev.From == nil {
		return ev, fmt.Errorf("%w: count %d has no excluded candidate", ErrMalformed, c.number)
	}
	return ev, nil
}
