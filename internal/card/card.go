// Package card defines the card model and the per-game card pool.
package card

// Kind distinguishes the two card roles in a round.
type Kind int

const (
	// Prompt cards pose the round's question or fill-in text.
	Prompt Kind = iota
	// Response cards are what players submit against the prompt.
	Response
)

// String returns the string representation of a card kind.
func (k Kind) String() string {
	switch k {
	case Prompt:
		return "prompt"
	case Response:
		return "response"
	default:
		return "unknown"
	}
}

// Card is a single card from a dictionary. Cards are immutable once created;
// everything that changes during play (ownership, position) lives elsewhere.
type Card struct {
	ID           string
	Kind         Kind
	Text         string
	DictionaryID string
}
