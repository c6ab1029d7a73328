package card

import (
	rand "math/rand/v2"

	"github.com/partydeck/partydeck/internal/apperr"
)

// Pool owns the working set of cards for one game. It is shuffled exactly
// once at construction; Draw hands cards out in that fixed order, so no card
// can ever be drawn twice from the same pool instance. Spent cards go to the
// discard pile and never return to the pool.
type Pool struct {
	prompts   []Card
	responses []Card
	discard   []Card
}

// NewPool builds a pool from a dictionary's cards, splitting by kind and
// shuffling each sequence with a uniform permutation.
func NewPool(rng *rand.Rand, cards []Card) *Pool {
	p := &Pool{}
	for _, c := range cards {
		switch c.Kind {
		case Prompt:
			p.prompts = append(p.prompts, c)
		case Response:
			p.responses = append(p.responses, c)
		}
	}
	shuffle(rng, p.prompts)
	shuffle(rng, p.responses)
	return p
}

// Restore rebuilds a pool from previously persisted sequences without
// reshuffling, preserving the draw order of the original pool.
func Restore(prompts, responses, discard []Card) *Pool {
	return &Pool{
		prompts:   append([]Card(nil), prompts...),
		responses: append([]Card(nil), responses...),
		discard:   append([]Card(nil), discard...),
	}
}

func shuffle(rng *rand.Rand, cards []Card) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Draw removes and returns the next card of the requested kind.
func (p *Pool) Draw(kind Kind) (Card, error) {
	var seq *[]Card
	switch kind {
	case Prompt:
		seq = &p.prompts
	case Response:
		seq = &p.responses
	default:
		return Card{}, apperr.Newf(apperr.CodeCardNotFound, "unknown card kind %d", kind)
	}
	if len(*seq) == 0 {
		return Card{}, apperr.Newf(apperr.CodePoolExhausted, "no %s cards remain", kind)
	}
	c := (*seq)[0]
	*seq = (*seq)[1:]
	return c, nil
}

// Discard moves spent cards to the discard pile.
func (p *Pool) Discard(cards ...Card) {
	p.discard = append(p.discard, cards...)
}

// Remaining returns the number of undrawn cards of the given kind.
func (p *Pool) Remaining(kind Kind) int {
	if kind == Prompt {
		return len(p.prompts)
	}
	return len(p.responses)
}

// DiscardCount returns the number of cards in the discard pile.
func (p *Pool) DiscardCount() int {
	return len(p.discard)
}

// Snapshot returns copies of the pool's remaining sequences and discard
// pile, in draw order, for persistence.
func (p *Pool) Snapshot() (prompts, responses, discard []Card) {
	return append([]Card(nil), p.prompts...),
		append([]Card(nil), p.responses...),
		append([]Card(nil), p.discard...)
}
