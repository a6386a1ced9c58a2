package brackets

import (
	"context"
	"fmt"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return FormatRoundRobin
}

// GenerateBracket schedules every pair with the circle method so each
// entrant plays at most once per round. An odd field gets a rotating rest.
// With two legs the second half repeats the first with sides swapped.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if len(params.Entrants) < 2 {
		return nil, fmt.Errorf("not enough entrants for a round robin (found %d, min 2 required)", len(params.Entrants))
	}
	legs := params.Legs
	if legs != 2 {
		legs = 1
	}

	ids := make([]*int, 0, len(params.Entrants)+1)
	for i := range params.Entrants {
		id := params.Entrants[i].UserID
		ids = append(ids, &id)
	}
	if len(ids)%2 == 1 {
		ids = append(ids, nil)
	}
	n := len(ids)
	roundsPerLeg := n - 1

	matches := make([]*BracketMatch, 0, legs*roundsPerLeg*n/2)
	for leg := 1; leg <= legs; leg++ {
		rotation := make([]*int, n)
		copy(rotation, ids)
		for r := 0; r < roundsPerLeg; r++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			round := (leg-1)*roundsPerLeg + r + 1
			order := 0
			for i := 0; i < n/2; i++ {
				home, away := rotation[i], rotation[n-1-i]
				if home == nil || away == nil {
					continue
				}
				if leg == 2 {
					home, away = away, home
				}
				order++
				matches = append(matches, &BracketMatch{
					UID:            fmt.Sprintf("T%d_L%d_R%dM%d", params.TournamentID, leg, round, order),
					Round:          round,
					OrderInRound:   order,
					Participant1ID: home,
					Participant2ID: away,
				})
			}
			// Keep the first entrant fixed and rotate the rest clockwise.
			last := rotation[n-1]
			copy(rotation[2:], rotation[1:n-1])
			rotation[1] = last
		}
	}
	return matches, nil
}
