package game

import (
	"github.com/partydeck/partydeck/internal/card"
)

// Player represents one seat in a game. The reserve holds response cards
// dealt to the player but not yet drawable; the hand holds the cards the
// player may submit this round.
type Player struct {
	ID      string
	UserID  string
	Score   int
	Reserve []card.Card
	Hand    []card.Card
}

// NewPlayer creates a player with an empty reserve and hand and zero score.
func NewPlayer(id, userID string) *Player {
	return &Player{ID: id, UserID: userID}
}

// CardInHand returns the hand card with the given id.
func (p *Player) CardInHand(cardID string) (card.Card, bool) {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return card.Card{}, false
}

// removeFromHand removes and returns the hand card with the given id.
// Removal preserves hand order.
func (p *Player) removeFromHand(cardID string) (card.Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return card.Card{}, false
}
