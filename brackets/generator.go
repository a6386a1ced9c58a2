// Package brackets draws match schedules for tournament entrants.
package brackets

import (
	"context"
)

// Entrant is a user enrolled in the tournament, in draw order.
type Entrant struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}

type GenerateBracketParams struct {
	TournamentID int
	Entrants     []Entrant
	// Legs is the number of times each pair meets in a round robin (1 or 2).
	Legs int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

// BracketMatch is one pairing. Later-round matches reference the matches
// whose winners they wait for.
type BracketMatch struct {
	UID          string `json:"uid"`
	Round        int    `json:"round"`
	OrderInRound int    `json:"order_in_round"`

	Participant1ID *int `json:"participant1_id,omitempty"`
	Participant2ID *int `json:"participant2_id,omitempty"`

	SourceMatch1UID *string `json:"source_match1_uid,omitempty"`
	SourceMatch2UID *string `json:"source_match2_uid,omitempty"`

	IsPlaceholder bool `json:"is_placeholder"`

	IsBye            bool `json:"is_bye"`
	ByeParticipantID *int `json:"bye_participant_id,omitempty"`
}

const (
	FormatSingleElimination = "single_elimination"
	FormatRoundRobin        = "round_robin"
)

// ForFormat returns the generator registered for format and false when the
// format is unknown.
func ForFormat(format string) (BracketGenerator, bool) {
	switch format {
	case "", FormatSingleElimination:
		return NewSingleEliminationGenerator(), true
	case FormatRoundRobin:
		return NewRoundRobinGenerator(), true
	}
	return nil, false
}

// Round groups the matches of one round under a display name.
type Round struct {
	Number  int             `json:"number"`
	Name    string          `json:"name"`
	Matches []*BracketMatch `json:"matches"`
}

// GroupRounds splits sorted matches by round and names elimination rounds
// from the final backwards.
func GroupRounds(matches []*BracketMatch, elimination bool) []Round {
	rounds := make([]Round, 0)
	for _, m := range matches {
		if len(rounds) == 0 || rounds[len(rounds)-1].Number != m.Round {
			rounds = append(rounds, Round{Number: m.Round})
		}
		last := &rounds[len(rounds)-1]
		last.Matches = append(last.Matches, m)
	}
	for i := range rounds {
		rounds[i].Name = roundName(len(rounds)-i, rounds[i].Number, elimination)
	}
	return rounds
}

func roundName(fromEnd, number int, elimination bool) string {
	if !elimination {
		return "Jornada " + itoa(number)
	}
	switch fromEnd {
	case 1:
		return "Final"
	case 2:
		return "Semifinales"
	case 3:
		return "Cuartos de Final"
	case 4:
		return "Octavos de Final"
	}
	return "Ronda " + itoa(number)
}
