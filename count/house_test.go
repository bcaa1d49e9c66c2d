// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package count

import (
	"errors"
	"strings"
	"testing"

	"github.com/danielhkuo/my-vote/ballot"
	"github.com/danielhkuo/my-vote/models"
)

func candidate(id int, name string) models.Candidate {
	return models.Candidate{ID: id, Name: name, DisplayName: name, Position: id}
}

func total(c models.Candidate, votes int, pct float64) models.CandidateTotal {
	return models.CandidateTotal{Candidate: c, PreferencesTotal: votes, PreferencesPercentage: pct}
}

func transfer(c models.Candidate) models.HouseEvent {
	return models.HouseEvent{Type: models.HouseEventTransfer, From: &c}
}

func elected(t models.CandidateTotal) models.HouseEvent {
	return models.HouseEvent{Type: models.HouseEventElected, Elected: &t}
}

var (
	candA = candidate(1, "A")
	candB = candidate(2, "B")
	candC = candidate(3, "C")
	candD = candidate(4, "D")
)

func kinds(lines []models.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Kind
	}
	return out
}

// withoutIntro drops the explanatory lines so tests can focus on the ballot.
func withoutIntro(lines []models.Line) []models.Line {
	var out []models.Line
	for _, l := range lines {
		if l.Kind != models.LineIntro {
			out = append(out, l)
		}
	}
	return out
}

func TestNarrateHouse_FullCount(t *testing.T) {
	result := models.HouseResult{
		Division:   "Testville",
		Candidates: []models.Candidate{candA, candB, candC},
		Elected:    total(candA, 60123, 60.12),
		Method:     models.HouseMethod{Type: models.MethodFullCount},
		Events: []models.HouseEvent{
			{Type: models.HouseEventCount, Count: 0},
			transfer(candB),
			transfer(candC),
			elected(total(candA, 60123, 60.12)),
		},
	}
	b := ballot.Ballot{{ID: "1", Rank: "3"}, {ID: "2", Rank: "1"}, {ID: "3", Rank: "2"}}

	n, err := NarrateHouse(result, b)
	if err != nil {
		t.Fatalf("NarrateHouse() error = %v", err)
	}
	lines := withoutIntro(n.Lines)

	wantKinds := []string{
		models.LineFirstPreference,
		models.LineExcluded, models.LineTransferred,
		models.LineExcluded, models.LineTransferred,
		models.LineElected,
	}
	got := kinds(lines)
	if strings.Join(got, ",") != strings.Join(wantKinds, ",") {
		t.Fatalf("expected kinds %v, got %v", wantKinds, got)
	}

	wantCandidates := []string{"B", "B", "C", "C", "A", "A"}
	for i, l := range lines {
		if l.Candidate != wantCandidates[i] {
			t.Errorf("line %d: expected candidate %s, got %s (%q)", i, wantCandidates[i], l.Candidate, l.Text)
		}
	}

	if lines[0].Text != "Your first preference was B" {
		t.Errorf("unexpected first line %q", lines[0].Text)
	}
	if !strings.Contains(lines[5].Text, "60,123 votes (60.12% of the total vote)") {
		t.Errorf("elected line should carry formatted totals, got %q", lines[5].Text)
	}
}

func TestNarrateHouse_FullCountSkipsExcluded(t *testing.T) {
	result := models.HouseResult{
		Candidates: []models.Candidate{candA, candB, candC, candD},
		Method:     models.HouseMethod{Type: models.MethodFullCount},
		Events: []models.HouseEvent{
			transfer(candC),
			transfer(candD),
			transfer(candB),
			elected(total(candA, 500, 55)),
		},
	}
	// B, C, D, A
	b := ballot.Ballot{{ID: "1", Rank: "4"}, {ID: "2", Rank: "1"}, {ID: "3", Rank: "2"}, {ID: "4", Rank: "3"}}

	n, err := NarrateHouse(result, b)
	if err != nil {
		t.Fatalf("NarrateHouse() error = %v", err)
	}

	excluded := map[string]bool{}
	var skipped []string
	for _, l := range n.Lines {
		switch l.Kind {
		case models.LineExcluded:
			excluded[l.Candidate] = true
		case models.LineSkipped:
			skipped = append(skipped, l.Candidate)
		case models.LineTransferred:
			if excluded[l.Candidate] {
				t.Errorf("ballot transferred to excluded candidate %s", l.Candidate)
			}
		}
	}
	if strings.Join(skipped, ",") != "C,D" {
		t.Errorf("expected C and D to be skipped, got %v", skipped)
	}
}

func TestNarrateHouse_FullCountRunsOutOfPreferences(t *testing.T) {
	result := models.HouseResult{
		Candidates: []models.Candidate{candA, candB},
		Method:     models.HouseMethod{Type: models.MethodFullCount},
		Events:     []models.HouseEvent{transfer(candA), transfer(candB)},
	}
	b := ballot.Ballot{{ID: "1", Rank: "1"}, {ID: "2", Rank: "2"}}

	_, err := NarrateHouse(result, b)
	if !errors.Is(err, models.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestNarrateHouse_UnknownTransferCandidate(t *testing.T) {
	result := models.HouseResult{
		Candidates: []models.Candidate{candA, candB},
		Method:     models.HouseMethod{Type: models.MethodFullCount},
		Events:     []models.HouseEvent{transfer(candD)},
	}
	b := ballot.Ballot{{ID: "1", Rank: "1"}, {ID: "2", Rank: "2"}}

	if _, err := NarrateHouse(result, b); !errors.Is(err, models.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestNarrateHouse_UnknownElectedCandidate(t *testing.T) {
	ghost := candidate(99, "Ghost")
	b := ballot.Ballot{{ID: "1", Rank: "1"}, {ID: "2", Rank: "2"}}

	tests := []struct {
		name   string
		result models.HouseResult
	}{
		{
			name: "full count",
			result: models.HouseResult{
				Candidates: []models.Candidate{candA, candB},
				Method:     models.HouseMethod{Type: models.MethodFullCount},
				Events:     []models.HouseEvent{elected(total(ghost, 0, 0))},
			},
		},
		{
			name: "two candidate preferred",
			result: models.HouseResult{
				Candidates: []models.Candidate{candA, candB},
				Method: models.HouseMethod{
					Type:       models.MethodTwoCandidatePreferred,
					Candidates: []models.CandidateTotal{total(candA, 600, 60), total(candB, 400, 40)},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NarrateHouse(tt.result, b); !errors.Is(err, models.ErrDataIntegrity) {
				t.Fatalf("expected ErrDataIntegrity, got %v", err)
			}
		})
	}
}

func TestNarrateHouse_FirstPreferences(t *testing.T) {
	winner := total(candB, 52000, 52.3)
	result := models.HouseResult{
		Candidates: []models.Candidate{candA, candB, candC},
		Elected:    winner,
		Method:     models.HouseMethod{Type: models.MethodFirstPreferences, Elected: &winner},
	}

	t.Run("first preference lost", func(t *testing.T) {
		b := ballot.Ballot{{ID: "1", Rank: "1"}, {ID: "2", Rank: "2"}, {ID: "3", Rank: "3"}}
		n, err := NarrateHouse(result, b)
		if err != nil {
			t.Fatalf("NarrateHouse() error = %v", err)
		}
		if len(n.Lines) != 3 {
			t.Fatalf("expected 3 lines, got %d: %+v", len(n.Lines), n.Lines)
		}
		if !strings.Contains(n.Lines[0].Text, "B had a majority") || !strings.Contains(n.Lines[0].Text, "52,000 votes (52.30%") {
			t.Errorf("unexpected elected line %q", n.Lines[0].Text)
		}
		if n.Lines[1].Text != "You preferenced this candidate at position 2." {
			t.Errorf("unexpected rank line %q", n.Lines[1].Text)
		}
		if n.Lines[2].Kind != models.LineExcluded || n.Lines[2].Candidate != "A" {
			t.Errorf("expected A to be reported excluded, got %+v", n.Lines[2])
		}
	})

	t.Run("first preference won", func(t *testing.T) {
		b := ballot.Ballot{{ID: "1", Rank: "2"}, {ID: "2", Rank: "1"}, {ID: "3", Rank: "3"}}
		n, err := NarrateHouse(result, b)
		if err != nil {
			t.Fatalf("NarrateHouse() error = %v", err)
		}
		for _, l := range n.Lines {
			if l.Kind == models.LineExcluded {
				t.Errorf("winner should not be reported excluded: %q", l.Text)
			}
		}
	})
}

func TestNarrateHouse_TwoCandidatePreferred(t *testing.T) {
	f1 := total(candA, 40000, 40)
	f2 := total(candB, 35000, 35)
	result := models.HouseResult{
		Candidates: []models.Candidate{candA, candB, candC},
		Elected:    total(candA, 51000, 51),
		Method: models.HouseMethod{
			Type:       models.MethodTwoCandidatePreferred,
			Candidates: []models.CandidateTotal{f1, f2},
		},
	}

	tests := []struct {
		name         string
		ballot       ballot.Ballot
		countedFor   string
		wantExcluded bool
	}{
		{
			name:       "second finalist ranked higher",
			ballot:     ballot.Ballot{{ID: "1", Rank: "2"}, {ID: "2", Rank: "1"}, {ID: "3", Rank: "3"}},
			countedFor: "B",
		},
		{
			name:         "first preference neither finalist",
			ballot:       ballot.Ballot{{ID: "1", Rank: "2"}, {ID: "2", Rank: "3"}, {ID: "3", Rank: "1"}},
			countedFor:   "A",
			wantExcluded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NarrateHouse(result, tt.ballot)
			if err != nil {
				t.Fatalf("NarrateHouse() error = %v", err)
			}
			var counted string
			var excluded bool
			for _, l := range n.Lines {
				switch l.Kind {
				case models.LineTransferred:
					counted = l.Candidate
				case models.LineExcluded:
					excluded = l.Candidate == "C"
				}
			}
			if counted != tt.countedFor {
				t.Errorf("expected ballot counted towards %s, got %s", tt.countedFor, counted)
			}
			if excluded != tt.wantExcluded {
				t.Errorf("excluded line present = %v, want %v", excluded, tt.wantExcluded)
			}
			last := n.Lines[len(n.Lines)-1]
			if last.Kind != models.LineElected || !strings.Contains(last.Text, "51,000 votes") {
				t.Errorf("expected final elected line, got %+v", last)
			}
		})
	}
}

func TestNarrateHouse_IncompleteBallot(t *testing.T) {
	result := models.HouseResult{
		Candidates: []models.Candidate{candA, candB},
		Method:     models.HouseMethod{Type: models.MethodFullCount},
	}
	b := ballot.Ballot{{ID: "1", Rank: "1"}, {ID: "2", Rank: ""}}

	if _, err := NarrateHouse(result, b); !errors.Is(err, ErrIncompleteBallot) {
		t.Fatalf("expected ErrIncompleteBallot, got %v", err)
	}
}

func TestNarrateHouse_UnknownMethod(t *testing.T) {
	result := models.HouseResult{
		Candidates: []models.Candidate{candA},
		Method:     models.HouseMethod{Type: "instantRunoff"},
	}
	b := ballot.Ballot{{ID: "1", Rank: "1"}}

	if _, err := NarrateHouse(result, b); !errors.Is(err, models.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	if got := Votes(1234567); got != "1,234,567" {
		t.Errorf("Votes() = %q", got)
	}
	if got := Percent(0.8); got != "80.00%" {
		t.Errorf("Percent() = %q", got)
	}
	if got := PercentValue(52.305); !strings.HasPrefix(got, "52.3") {
		t.Errorf("PercentValue() = %q", got)
	}
	if got := Quota(1000, 1); got != 501 {
		t.Errorf("Quota(1000, 1) = %d, want 501", got)
	}
	if got := Quota(4000000, 6); got != 571429 {
		t.Errorf("Quota(4000000, 6) = %d, want 571429", got)
	}
	r := models.SenateResult{Papers: 1000, Vacancies: 1, Quota: 501}
	if !QuotaMatches(r) {
		t.Error("expected quota to match")
	}
	r.Quota = 500
	if QuotaMatches(r) {
		t.Error("expected quota mismatch")
	}
}
