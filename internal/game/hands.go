package game

import (
	"github.com/partydeck/partydeck/internal/card"
)

// HandManager moves response cards between a player's reserve and hand.
// Every move is an exclusive ownership transfer: a card leaves one place
// before it appears in the other, and is never duplicated.
type HandManager struct {
	handSize int
}

// NewHandManager creates a hand manager that tops hands up to handSize.
func NewHandManager(handSize int) *HandManager {
	return &HandManager{handSize: handSize}
}

// HandSize returns the configured hand size.
func (hm *HandManager) HandSize() int {
	return hm.handSize
}

// DealInitial moves up to count response cards from the pool into the
// player's reserve. A short pool yields a partial deal, not an error; the
// number of cards actually dealt is returned.
func (hm *HandManager) DealInitial(pool *card.Pool, p *Player, count int) int {
	dealt := 0
	for i := 0; i < count; i++ {
		c, err := pool.Draw(card.Response)
		if err != nil {
			break
		}
		p.Reserve = append(p.Reserve, c)
		dealt++
	}
	return dealt
}

// TopUp moves cards one at a time from the player's reserve to their hand
// until the hand holds the configured hand size or the reserve is empty.
// A short hand is allowed.
func (hm *HandManager) TopUp(p *Player) int {
	moved := 0
	for len(p.Hand) < hm.handSize && len(p.Reserve) > 0 {
		c := p.Reserve[0]
		p.Reserve = p.Reserve[1:]
		p.Hand = append(p.Hand, c)
		moved++
	}
	return moved
}
