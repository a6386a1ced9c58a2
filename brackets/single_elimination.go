package brackets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

type node struct {
	participantID    *int
	sourceMatchUID   *string
	isByePlaceholder bool
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return FormatSingleElimination
}

// GenerateBracket pads the field to the next power of two with byes. Byes go
// to the entrants at the front of the list, i.e. the earliest enrollments.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	n := len(params.Entrants)
	if n < 2 {
		return nil, errors.New("not enough entrants to draw a single elimination bracket (minimum 2)")
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	size := 1 << uint(numRounds)
	numByes := size - n

	// Seed the first round so that each bye faces a real entrant:
	// entrant i (i < numByes) is paired with a bye placeholder.
	current := make([]*node, 0, size)
	next := 0
	for slot := 0; slot < size/2; slot++ {
		a := params.Entrants[next].UserID
		next++
		current = append(current, &node{participantID: &a})
		if slot < numByes {
			current = append(current, &node{isByePlaceholder: true})
			continue
		}
		b := params.Entrants[next].UserID
		next++
		current = append(current, &node{participantID: &b})
	}

	all := make([]*BracketMatch, 0, size-1)

	for r := 1; r <= numRounds; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nextRound := make([]*node, 0, len(current)/2)

		for i := 0; i < len(current); i += 2 {
			n1, n2 := current[i], current[i+1]
			uid := fmt.Sprintf("R%dM%d", r, i/2+1)

			bm := &BracketMatch{UID: uid, Round: r, OrderInRound: i/2 + 1}

			switch {
			case n1.participantID != nil && n2.isByePlaceholder:
				bm.IsBye = true
				bm.ByeParticipantID = n1.participantID
				bm.Participant1ID = n1.participantID
				nextRound = append(nextRound, &node{participantID: n1.participantID})
			case n2.participantID != nil && n1.isByePlaceholder:
				bm.IsBye = true
				bm.ByeParticipantID = n2.participantID
				bm.Participant1ID = n2.participantID
				nextRound = append(nextRound, &node{participantID: n2.participantID})
			default:
				bm.Participant1ID, bm.SourceMatch1UID = n1.participantID, n1.sourceMatchUID
				bm.Participant2ID, bm.SourceMatch2UID = n2.participantID, n2.sourceMatchUID
				bm.IsPlaceholder = n1.sourceMatchUID != nil || n2.sourceMatchUID != nil
				matchUID := uid
				nextRound = append(nextRound, &node{sourceMatchUID: &matchUID})
			}

			all = append(all, bm)
		}
		current = nextRound
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Round != all[j].Round {
			return all[i].Round < all[j].Round
		}
		return all[i].OrderInRound < all[j].OrderInRound
	})

	return all, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
