package game

import (
	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
)

// RoundState represents the phase of the current round.
type RoundState int

const (
	AwaitingSubmissions RoundState = iota
	AwaitingJudgment
	RoundResolved
)

// String returns the string representation of a round state.
func (rs RoundState) String() string {
	switch rs {
	case AwaitingSubmissions:
		return "awaiting-submissions"
	case AwaitingJudgment:
		return "awaiting-judgment"
	case RoundResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Submission is one player's played response card. Submissions keep their
// arrival order; the order breaks voting ties.
type Submission struct {
	PlayerID string
	Card     card.Card
}

// RoundTable holds the state of a single round: the prompt, the submissions
// played against it and the judgments cast. A table is created at round
// start and discarded at round end, never reused.
type RoundTable struct {
	Seq    int
	Prompt card.Card
	// JudgeID identifies the round's judge in judge mode, empty otherwise.
	JudgeID string
	State   RoundState

	submissions []Submission
	judgments   map[string]string // voter player id -> submitted card id
}

// NewRoundTable creates a fresh table for round seq around the given
// prompt card.
func NewRoundTable(seq int, prompt card.Card, judgeID string) *RoundTable {
	return &RoundTable{
		Seq:       seq,
		Prompt:    prompt,
		JudgeID:   judgeID,
		State:     AwaitingSubmissions,
		judgments: make(map[string]string),
	}
}

// RestoreTable rebuilds a table from persisted round state.
func RestoreTable(seq int, prompt card.Card, judgeID string, state RoundState, submissions []Submission, judgments map[string]string) *RoundTable {
	rt := &RoundTable{
		Seq:         seq,
		Prompt:      prompt,
		JudgeID:     judgeID,
		State:       state,
		submissions: append([]Submission(nil), submissions...),
		judgments:   make(map[string]string, len(judgments)),
	}
	for voter, cardID := range judgments {
		rt.judgments[voter] = cardID
	}
	return rt
}

// AddSubmission records a player's response card. A player may submit at
// most once per round.
func (rt *RoundTable) AddSubmission(playerID string, c card.Card) error {
	if rt.HasSubmitted(playerID) {
		return apperr.Newf(apperr.CodePlayerAlreadyPlayed, "player %s already played this round", playerID)
	}
	rt.submissions = append(rt.submissions, Submission{PlayerID: playerID, Card: c})
	return nil
}

// HasSubmitted reports whether the player already played a card this round.
func (rt *RoundTable) HasSubmitted(playerID string) bool {
	for _, s := range rt.submissions {
		if s.PlayerID == playerID {
			return true
		}
	}
	return false
}

// SubmissionByCard returns the submission holding the given card.
func (rt *RoundTable) SubmissionByCard(cardID string) (Submission, bool) {
	for _, s := range rt.submissions {
		if s.Card.ID == cardID {
			return s, true
		}
	}
	return Submission{}, false
}

// SubmissionCount returns the number of cards played this round.
func (rt *RoundTable) SubmissionCount() int {
	return len(rt.submissions)
}

// Submissions returns a copy of the played cards in submission order.
func (rt *RoundTable) Submissions() []Submission {
	return append([]Submission(nil), rt.submissions...)
}

// AddJudgment records a judgment (vote or judge pick) from voterID against
// the submission holding cardID. A player may judge at most once per round.
func (rt *RoundTable) AddJudgment(voterID, cardID string) error {
	if _, ok := rt.judgments[voterID]; ok {
		return apperr.Newf(apperr.CodePlayerAlreadyVoted, "player %s already judged this round", voterID)
	}
	if _, ok := rt.SubmissionByCard(cardID); !ok {
		return apperr.Newf(apperr.CodeCardNotPlayed, "card %s is not among this round's submissions", cardID)
	}
	rt.judgments[voterID] = cardID
	return nil
}

// HasJudged reports whether the player already cast a judgment this round.
func (rt *RoundTable) HasJudged(playerID string) bool {
	_, ok := rt.judgments[playerID]
	return ok
}

// JudgmentCount returns the number of judgments cast this round.
func (rt *RoundTable) JudgmentCount() int {
	return len(rt.judgments)
}

// Judgments returns a copy of the judgments cast so far, keyed by voter.
func (rt *RoundTable) Judgments() map[string]string {
	out := make(map[string]string, len(rt.judgments))
	for voter, cardID := range rt.judgments {
		out[voter] = cardID
	}
	return out
}

// JudgmentFor returns the card id the given player voted for.
func (rt *RoundTable) JudgmentFor(playerID string) (string, bool) {
	id, ok := rt.judgments[playerID]
	return id, ok
}

// Winner determines the winning submission. In judge mode the judge's
// single pick decides; in open vote the submission with the most votes
// wins, ties broken by earliest submission order.
func (rt *RoundTable) Winner(mode Mode) (Submission, error) {
	if len(rt.submissions) == 0 {
		return Submission{}, apperr.New(apperr.CodeRoundNoWinner, "no submissions this round")
	}

	if mode == ModeJudge {
		pick, ok := rt.judgments[rt.JudgeID]
		if !ok {
			return Submission{}, apperr.New(apperr.CodeRoundNoWinner, "judge has not picked a card")
		}
		sub, ok := rt.SubmissionByCard(pick)
		if !ok {
			return Submission{}, apperr.Newf(apperr.CodeCardNotPlayed, "judged card %s is not on the table", pick)
		}
		return sub, nil
	}

	votes := make(map[string]int)
	for _, cardID := range rt.judgments {
		votes[cardID]++
	}
	if len(votes) == 0 {
		return Submission{}, apperr.New(apperr.CodeRoundNoWinner, "no judgments cast this round")
	}

	// Walk submissions in order so the earliest submission wins ties.
	best := rt.submissions[0]
	for _, s := range rt.submissions[1:] {
		if votes[s.Card.ID] > votes[best.Card.ID] {
			best = s
		}
	}
	return best, nil
}
