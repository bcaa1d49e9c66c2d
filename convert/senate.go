// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package convert

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/danielhkuo/my-vote/models"
)

var senateColumns = []string{
	"State", "No Of Vacancies", "Total Formal Papers", "Quota", "Count",
	"Ballot Position", "Ticket", "Surname", "GivenNm", "Papers",
	"ProgressiveVoteTotal", "TransferValue", "Status", "Changed", "OrderElected",
}

// Candidate statuses of the Senate export.
const (
	statusElected  = "Elected"
	statusExcluded = "Excluded"
)

// TicketNames maps state -> ticket id -> ticket name.
type TicketNames map[string]map[string]string

// LoadTicketNames decodes a {"NSW": {"A": "Party name", ...}, ...} document.
func LoadTicketNames(r io.Reader) (TicketNames, error) {
	var names TicketNames
	if err := json.NewDecoder(r).Decode(&names); err != nil {
		return nil, fmt.Errorf("failed to decode ticket names: %w", err)
	}
	return names, nil
}

// Name returns the ticket's name in a state, or the id when none is known.
func (n TicketNames) Name(state, ticket string) string {
	if ticket == "" {
		return ""
	}
	if name, ok := n[state][ticket]; ok {
		return name
	}
	return ticket
}

type senateRow struct {
	count       int
	candidate   models.SenateCandidate
	ticketID    string
	papers      int
	votes       int
	transfer    float64
	status      string
	changed     bool
	order       int
}

// Senate converts an AEC Senate distribution of preferences export for one
// state (SenateStateDOPDownload) into a result. names may be nil.
func Senate(r io.Reader, names TicketNames) (models.SenateResult, error) {
	var result models.SenateResult

	t, err := readTable(r, senateColumns)
	if err != nil {
		return result, err
	}

	result.State = t.field(t.rows[0], "State")
	if result.Vacancies, err = t.intAt(0, "No Of Vacancies"); err != nil {
		return result, err
	}
	if result.Papers, err = t.intAt(0, "Total Formal Papers"); err != nil {
		return result, err
	}
	if result.Quota, err = t.intAt(0, "Quota"); err != nil {
		return result, err
	}

	counts, err := groupSenate(t, names, result.State)
	if err != nil {
		return result, err
	}

	result.Tickets = tickets(counts[0], names, result.State)

	// papers held by each position so far
	held := make(map[int]int)

	for i, rows := range counts {
		number := rows[0].count

		if i > 0 {
			for _, row := range rows {
				if row.papers >= 0 {
					continue
				}
				result.Events = append(result.Events, models.SenateEvent{
					Type:          models.SenateEventTransfer,
					After:         number - 1,
					From:          &models.TransferSource{SenateCandidate: row.candidate, Papers: held[row.candidate.Position]},
					TransferValue: row.transfer,
				})
				break
			}
		}

		result.Events = append(result.Events, models.SenateEvent{Type: models.SenateEventCount, Count: number})
		for _, row := range rows {
			held[row.candidate.Position] += row.papers
		}

		var elected []senateRow
		for _, row := range rows {
			if row.changed && row.status == statusElected {
				elected = append(elected, row)
			}
		}
		sort.SliceStable(elected, func(i, j int) bool { return elected[i].order < elected[j].order })

		for _, row := range elected {
			papers := held[row.candidate.Position]
			surplus := row.votes - result.Quota
			var tv float64
			if papers != 0 {
				tv = float64(surplus) / float64(papers)
			}
			result.Events = append(result.Events, candidateEvent(models.SenateEventElected, row, papers, func(ev *models.SenateEvent) {
				ev.Order = row.order
				ev.Quota = result.Quota
				ev.Surplus = surplus
				ev.TransferValue = tv
			}))
		}

		for _, row := range rows {
			if row.changed && row.status == statusExcluded {
				result.Events = append(result.Events, candidateEvent(models.SenateEventExcluded, row, held[row.candidate.Position], nil))
			}
		}
	}

	return result, nil
}

func candidateEvent(kind string, row senateRow, papers int, set func(*models.SenateEvent)) models.SenateEvent {
	ev := models.SenateEvent{
		Type:        kind,
		Name:        row.candidate.Name,
		DisplayName: row.candidate.DisplayName,
		Ticket:      row.candidate.Ticket,
		Position:    row.candidate.Position,
		Papers:      papers,
		Votes:       row.votes,
	}
	if set != nil {
		set(&ev)
	}
	return ev
}

// groupSenate parses the candidate rows and groups them by count. Rows
// without a ticket (exhausted and gain/loss tallies) are dropped.
func groupSenate(t *table, names TicketNames, state string) ([][]senateRow, error) {
	var counts [][]senateRow
	index := make(map[int]int)

	for i, raw := range t.rows {
		ticket := t.field(raw, "Ticket")
		if ticket == "" {
			continue
		}

		row := senateRow{ticketID: ticket, status: t.field(raw, "Status")}
		row.changed = strings.EqualFold(t.field(raw, "Changed"), "true")

		var position int
		var err error
		if row.count, err = t.intAt(i, "Count"); err != nil {
			return nil, err
		}
		if position, err = t.intAt(i, "Ballot Position"); err != nil {
			return nil, err
		}
		if row.papers, err = t.intAt(i, "Papers"); err != nil {
			return nil, err
		}
		if row.votes, err = t.intAt(i, "ProgressiveVoteTotal"); err != nil {
			return nil, err
		}
		if row.transfer, err = t.floatAt(i, "TransferValue"); err != nil {
			return nil, err
		}
		if row.order, err = t.intAt(i, "OrderElected"); err != nil {
			return nil, err
		}

		given, surname := t.field(raw, "GivenNm"), t.field(raw, "Surname")
		ticketName := names.Name(state, ticket)
		row.candidate = models.SenateCandidate{
			Name:        fullName(given, surname),
			DisplayName: DisplayName(given, surname, ticketName),
			Ticket:      ticketName,
			Position:    position,
		}

		n, ok := index[row.count]
		if !ok {
			n = len(counts)
			index[row.count] = n
			counts = append(counts, nil)
		}
		counts[n] = append(counts[n], row)
	}

	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no candidate rows", ErrMalformed)
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i][0].count < counts[j][0].count })
	return counts, nil
}

// tickets lists the groups in ballot order from the first count.
func tickets(rows []senateRow, names TicketNames, state string) []models.Ticket {
	var out []models.Ticket
	index := make(map[string]int)
	for _, row := range rows {
		n, ok := index[row.ticketID]
		if !ok {
			n = len(out)
			index[row.ticketID] = n
			out = append(out, models.Ticket{ID: row.ticketID, Name: names.Name(state, row.ticketID)})
		}
		out[n].Candidates = append(out[n].Candidates, row.candidate)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Candidates[0].Position < out[j].Candidates[0].Position
	})
	return out
}
