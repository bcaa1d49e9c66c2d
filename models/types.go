package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDataIntegrity marks result data that is malformed or inconsistent with
// the ballot it is replayed against. It is never a user-recoverable condition.
var ErrDataIntegrity = errors.New("data integrity violation")

// Chamber names
const (
	ChamberHouse  = "house"
	ChamberSenate = "senate"
)

// House counting methods
const (
	MethodFirstPreferences      = "firstPreferences"
	MethodTwoCandidatePreferred = "twoCandidatePreferred"
	MethodFullCount             = "fullCount"
)

// House event types
const (
	HouseEventTransfer              = "transfer"
	HouseEventCount                 = "count"
	HouseEventElected               = "elected"
	HouseEventTwoCandidatePreferred = "twoCandidatePreferred"
)

// Senate event types
const (
	SenateEventElected  = "elected"
	SenateEventExcluded = "excluded"
	SenateEventCount    = "count"
	SenateEventTransfer = "transfer"
)

// Senate voting methods
const (
	VoteAboveTheLine = "atl"
	VoteBelowTheLine = "btl"
)

// UngroupedTicket holds the candidates who can only be voted for below the line.
const UngroupedTicket = "UG"

// House data

type Candidate struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Party       string `json:"party,omitempty"`
	Position    int    `json:"position"`
}

type CandidateTotal struct {
	Candidate
	PreferencesTotal      int     `json:"preferencesTotal"`
	PreferencesPercentage float64 `json:"preferencesPercentage"`
}

type CandidateTransfer struct {
	Candidate
	TransferredTotal      int     `json:"transferredTotal"`
	TransferredPercentage float64 `json:"transferredPercentage"`
}

// HouseMethod describes how a division was decided. Elected is set for
// firstPreferences, Candidates holds the two finalists for
// twoCandidatePreferred, and fullCount carries nothing.
type HouseMethod struct {
	Type       string           `json:"type"`
	Elected    *CandidateTotal  `json:"elected,omitempty"`
	Candidates []CandidateTotal `json:"candidates,omitempty"`
}

func (m *HouseMethod) UnmarshalJSON(data []byte) error {
	type plain HouseMethod
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case MethodFirstPreferences:
		if raw.Elected == nil {
			return fmt.Errorf("%w: %s method without elected candidate", ErrDataIntegrity, raw.Type)
		}
	case MethodTwoCandidatePreferred:
		if len(raw.Candidates) != 2 {
			return fmt.Errorf("%w: %s method with %d candidates", ErrDataIntegrity, raw.Type, len(raw.Candidates))
		}
	case MethodFullCount:
	default:
		return fmt.Errorf("%w: unknown house method %q", ErrDataIntegrity, raw.Type)
	}
	*m = HouseMethod(raw)
	return nil
}

// HouseEvent is one step of a division's distribution of preferences.
// Which fields are set depends on Type:
//
//	transfer:              From, Transfers
//	count:                 Count, Totals
//	elected:               Elected
//	twoCandidatePreferred: Totals
type HouseEvent struct {
	Type      string
	From      *Candidate
	Transfers []CandidateTransfer
	Count     int
	Totals    []CandidateTotal
	Elected   *CandidateTotal
}

type houseEventJSON struct {
	Type       string          `json:"type"`
	From       *Candidate      `json:"from,omitempty"`
	Count      int             `json:"count,omitempty"`
	Candidates json.RawMessage `json:"candidates,omitempty"`
	Elected    *CandidateTotal `json:"elected,omitempty"`
}

func (e HouseEvent) MarshalJSON() ([]byte, error) {
	out := houseEventJSON{Type: e.Type, From: e.From, Count: e.Count, Elected: e.Elected}
	var err error
	switch {
	case e.Transfers != nil:
		out.Candidates, err = json.Marshal(e.Transfers)
	case e.Totals != nil:
		out.Candidates, err = json.Marshal(e.Totals)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (e *HouseEvent) UnmarshalJSON(data []byte) error {
	var raw houseEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ev := HouseEvent{Type: raw.Type, From: raw.From, Count: raw.Count, Elected: raw.Elected}
	switch raw.Type {
	case HouseEventTransfer:
		if raw.From == nil {
			return fmt.Errorf("%w: transfer event without excluded candidate", ErrDataIntegrity)
		}
		if len(raw.Candidates) > 0 {
			if err := json.Unmarshal(raw.Candidates, &ev.Transfers); err != nil {
				return fmt.Errorf("failed to decode transfer candidates: %w", err)
			}
		}
	case HouseEventCount, HouseEventTwoCandidatePreferred:
		if len(raw.Candidates) > 0 {
			if err := json.Unmarshal(raw.Candidates, &ev.Totals); err != nil {
				return fmt.Errorf("failed to decode %s candidates: %w", raw.Type, err)
			}
		}
	case HouseEventElected:
		if raw.Elected == nil {
			return fmt.Errorf("%w: elected event without candidate", ErrDataIntegrity)
		}
	default:
		return fmt.Errorf("%w: unknown house event %q", ErrDataIntegrity, raw.Type)
	}
	*e = ev
	return nil
}

// HouseResult is the final result of one House division.
type HouseResult struct {
	Division   string         `json:"division"`
	Candidates []Candidate    `json:"candidates"`
	Elected    CandidateTotal `json:"elected"`
	Method     HouseMethod    `json:"method"`
	Events     []HouseEvent   `json:"events"`
}

// Senate data

type SenateCandidate struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Ticket      string `json:"ticket,omitempty"`
	Position    int    `json:"position"`
}

// Ticket is a group on the Senate ballot. Candidates are in listed order,
// which is the preference flow of an above-the-line vote.
type Ticket struct {
	ID         string            `json:"id"`
	Name       string            `json:"ticket"`
	Candidates []SenateCandidate `json:"candidates"`
}

type TransferSource struct {
	SenateCandidate
	Papers int `json:"papers"`
}

// SenateEvent is one step of a state's Senate count. Elected and excluded
// events carry the candidate fields; a negative Surplus on an elected event
// means the candidate filled a remaining vacancy without reaching quota.
type SenateEvent struct {
	Type          string          `json:"type"`
	Name          string          `json:"name,omitempty"`
	DisplayName   string          `json:"displayName,omitempty"`
	Ticket        string          `json:"ticket,omitempty"`
	Position      int             `json:"position,omitempty"`
	Order         int             `json:"order,omitempty"`
	Papers        int             `json:"papers,omitempty"`
	Votes         int             `json:"votes,omitempty"`
	Quota         int             `json:"quota,omitempty"`
	Surplus       int             `json:"surplus,omitempty"`
	TransferValue float64         `json:"transferValue,omitempty"`
	Count         int             `json:"count,omitempty"`
	After         int             `json:"after,omitempty"`
	From          *TransferSource `json:"from,omitempty"`
}

func (e *SenateEvent) UnmarshalJSON(data []byte) error {
	// count and transfer events may carry per-ticket tallies under "votes";
	// only elected and excluded events use it as a number.
	type plain SenateEvent
	var raw struct {
		plain
		Votes json.RawMessage `json:"votes,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ev := SenateEvent(raw.plain)
	switch ev.Type {
	case SenateEventElected, SenateEventExcluded:
		if ev.Position <= 0 {
			return fmt.Errorf("%w: %s event without candidate position", ErrDataIntegrity, ev.Type)
		}
		if len(raw.Votes) > 0 {
			if err := json.Unmarshal(raw.Votes, &ev.Votes); err != nil {
				return fmt.Errorf("failed to decode %s votes: %w", ev.Type, err)
			}
		}
	case SenateEventCount, SenateEventTransfer:
		ev.Votes = 0
	default:
		return fmt.Errorf("%w: unknown senate event %q", ErrDataIntegrity, ev.Type)
	}
	*e = ev
	return nil
}

// SenateResult is the final result of one state's Senate election.
type SenateResult struct {
	State     string        `json:"state"`
	Vacancies int           `json:"vacancies"`
	Papers    int           `json:"papers"`
	Quota     int           `json:"quota"`
	Tickets   []Ticket      `json:"tickets"`
	Events    []SenateEvent `json:"events"`
}

// Candidates flattens the tickets in ballot order.
func (r SenateResult) Candidates() []SenateCandidate {
	var out []SenateCandidate
	for _, t := range r.Tickets {
		out = append(out, t.Candidates...)
	}
	return out
}

// Narrative types

// Line kinds
const (
	LineIntro           = "intro"
	LineFirstPreference = "first_preference"
	LineExcluded        = "excluded"
	LineExcludedBatch   = "excluded_batch"
	LineSkipped         = "skipped"
	LineTransferred     = "transferred"
	LineExhausted       = "exhausted"
	LineElected         = "elected"
	LineHelped          = "helped"
	LineRemaining       = "remaining"
	LineUnhelped        = "unhelped"
)

type Line struct {
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	Candidate string `json:"candidate,omitempty"`
	Position  int    `json:"position,omitempty"`
}

// Share is the part of a Senate ballot's weight used up electing one candidate.
type Share struct {
	DisplayName string  `json:"display_name"`
	Position    int     `json:"position"`
	Preference  int     `json:"preference"` // 1-indexed place in the ballot's sequence
	Fraction    float64 `json:"fraction"`
	Percent     string  `json:"percent"`
}

type HouseNarrative struct {
	Division string `json:"division"`
	Method   string `json:"method"`
	Lines    []Line `json:"lines"`
}

type SenateNarrative struct {
	State            string  `json:"state"`
	Method           string  `json:"method"`
	Vacancies        int     `json:"vacancies"`
	Papers           int     `json:"papers"`
	Quota            int     `json:"quota"`
	Helped           []Share `json:"helped"`
	Exhausted        float64 `json:"exhausted"`
	ExhaustedPercent string  `json:"exhausted_percent"`
	Short            []Line  `json:"short"`
	Long             []Line  `json:"long"`
}

// Request types

// BallotEntry is one box on a ballot: the item id (candidate id, candidate
// position or ticket id) and the number written in it, possibly blank.
type BallotEntry struct {
	ID   string `json:"id"`
	Rank string `json:"rank"`
}

type NarrativeRequest struct {
	Method      string        `json:"method,omitempty"`
	Preferences []BallotEntry `json:"preferences"`
}

// Response types

type NarrativeResponse struct {
	Valid  bool             `json:"valid"`
	House  *HouseNarrative  `json:"house,omitempty"`
	Senate *SenateNarrative `json:"senate,omitempty"`
}

type ImportResponse struct {
	ImportID string `json:"import_id"`
	Chamber  string `json:"chamber"`
	Records  int    `json:"records"`
}

// DatasetStatus reports where a chamber's results come from. ImportID is
// empty until a dataset has been imported.
type DatasetStatus struct {
	Chamber  string `json:"chamber"`
	Driver   string `json:"driver"`
	ImportID string `json:"import_id,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
