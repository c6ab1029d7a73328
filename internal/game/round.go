package game

import (
	"github.com/charmbracelet/log"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
)

// RoundEngine drives a single round's lifecycle on one game:
// start -> collect submissions -> collect judgment -> resolve.
// All validation happens before any mutation; a failed call leaves the
// aggregate unchanged.
type RoundEngine struct {
	game   *Game
	hands  *HandManager
	logger *log.Logger
	bus    EventBus
}

// NewRoundEngine creates a round engine bound to one game aggregate.
func NewRoundEngine(g *Game, hands *HandManager, logger *log.Logger, bus EventBus) *RoundEngine {
	return &RoundEngine{
		game:   g,
		hands:  hands,
		logger: logger,
		bus:    bus,
	}
}

// RoundResult reports the outcome of a resolved round.
type RoundResult struct {
	Seq          int
	Winner       *Player
	WinningCard  card.Card
	GameFinished bool
}

// StartRound draws a prompt, creates a fresh table at the next sequence
// number and tops up every player's hand from their reserve. A short
// reserve yields a short hand, which is allowed; an exhausted prompt pool
// is fatal for the game and surfaces to the caller.
func (re *RoundEngine) StartRound() error {
	if re.game.Table != nil {
		return apperr.Newf(apperr.CodeRoundWrongState, "round %d is still in progress", re.game.Table.Seq)
	}

	prompt, err := re.game.Pool.Draw(card.Prompt)
	if err != nil {
		return err
	}

	seq := re.game.LastRoundSeq + 1
	judgeID := ""
	if re.game.Mode == ModeJudge {
		judgeID = re.game.Players[(seq-1)%len(re.game.Players)].ID
	}

	for _, p := range re.game.Players {
		moved := re.hands.TopUp(p)
		re.logger.Debug("Topped up hand", "player", p.ID, "moved", moved, "hand", len(p.Hand), "reserve", len(p.Reserve))
	}

	re.game.Table = NewRoundTable(seq, prompt, judgeID)
	re.game.LastRoundSeq = seq

	re.logger.Info("Round started", "seq", seq, "prompt", prompt.ID, "judge", judgeID)
	re.bus.Publish(NewRoundStartedEvent(re.game.ID, seq, prompt, judgeID))
	return nil
}

// Submit plays a card from the player's hand onto the table. When the
// submission count reaches the eligible-submitter count the round moves to
// AWAITING_JUDGMENT automatically.
func (re *RoundEngine) Submit(playerID, cardID string) error {
	table := re.game.Table
	if table == nil || table.State != AwaitingSubmissions {
		return apperr.New(apperr.CodeRoundWrongState, "round is not accepting submissions")
	}

	p, ok := re.game.PlayerByID(playerID)
	if !ok {
		return apperr.Newf(apperr.CodePlayerNotInRound, "player %s is not part of this round", playerID)
	}
	if re.game.Mode == ModeJudge && playerID == table.JudgeID {
		return apperr.New(apperr.CodePlayerNotInRound, "the judge does not submit a card")
	}
	if table.HasSubmitted(playerID) {
		return apperr.Newf(apperr.CodePlayerAlreadyPlayed, "player %s already played this round", playerID)
	}
	if _, ok := p.CardInHand(cardID); !ok {
		return apperr.Newf(apperr.CodeCardNotInHand, "card %s is not in player %s's hand", cardID, playerID)
	}

	c, _ := p.removeFromHand(cardID)
	if err := table.AddSubmission(playerID, c); err != nil {
		// Validation above makes this unreachable; put the card back to
		// keep the hand consistent regardless.
		p.Hand = append(p.Hand, c)
		return err
	}

	re.logger.Debug("Card played", "seq", table.Seq, "player", playerID, "submissions", table.SubmissionCount())
	re.bus.Publish(NewCardPlayedEvent(re.game.ID, table.Seq, playerID, table.SubmissionCount()))

	if table.SubmissionCount() >= re.eligibleSubmitters() {
		table.State = AwaitingJudgment
		re.logger.Info("All cards in, awaiting judgment", "seq", table.Seq)
	}
	return nil
}

// Judge records a vote or judge pick against a submitted card. When the
// judgment count reaches the eligible-judge count the round moves to
// RESOLVED, ready for Resolve.
func (re *RoundEngine) Judge(voterID, cardID string) error {
	table := re.game.Table
	if table == nil || table.State != AwaitingJudgment {
		return apperr.New(apperr.CodeRoundWrongState, "round is not accepting judgments")
	}

	if _, ok := re.game.PlayerByID(voterID); !ok {
		return apperr.Newf(apperr.CodePlayerNotInRound, "player %s is not part of this round", voterID)
	}
	switch re.game.Mode {
	case ModeJudge:
		if voterID != table.JudgeID {
			return apperr.Newf(apperr.CodePlayerNotInRound, "player %s is not this round's judge", voterID)
		}
	case ModeOpenVote:
		if sub, ok := table.SubmissionByCard(cardID); ok && sub.PlayerID == voterID {
			return apperr.New(apperr.CodeCardNotPlayed, "players cannot vote for their own card")
		}
	}
	if table.HasJudged(voterID) {
		return apperr.Newf(apperr.CodePlayerAlreadyVoted, "player %s already judged this round", voterID)
	}

	if err := table.AddJudgment(voterID, cardID); err != nil {
		return err
	}

	re.logger.Debug("Judgment cast", "seq", table.Seq, "voter", voterID, "judgments", table.JudgmentCount())
	re.bus.Publish(NewJudgmentCastEvent(re.game.ID, table.Seq, voterID, table.JudgmentCount()))

	if table.JudgmentCount() >= re.eligibleJudges() {
		table.State = RoundResolved
		re.logger.Info("Judgment threshold reached", "seq", table.Seq)
	}
	return nil
}

// Resolve determines the winning submission, awards the point, moves all
// played cards to the discard pile and clears the table. It is only valid
// once the judgment threshold has been met.
func (re *RoundEngine) Resolve() (*RoundResult, error) {
	table := re.game.Table
	if table == nil || table.State != RoundResolved {
		return nil, apperr.New(apperr.CodeRoundWrongState, "round has not reached its judgment threshold")
	}

	winning, err := table.Winner(re.game.Mode)
	if err != nil {
		return nil, err
	}
	winner, ok := re.game.PlayerByID(winning.PlayerID)
	if !ok {
		return nil, apperr.Newf(apperr.CodePlayerNotFound, "winning player %s left the roster", winning.PlayerID)
	}

	winner.Score++

	subs := table.Submissions()
	re.game.Pool.Discard(table.Prompt)
	for _, s := range subs {
		re.game.Pool.Discard(s.Card)
	}

	scores := make(map[string]int, len(re.game.Players))
	for _, p := range re.game.Players {
		scores[p.ID] = p.Score
	}

	seq := table.Seq
	prompt := table.Prompt
	re.game.Table = nil

	re.logger.Info("Round resolved", "seq", seq, "winner", winner.ID, "card", winning.Card.ID, "score", winner.Score)
	re.bus.Publish(NewRoundEndedEvent(re.game.ID, seq, prompt, subs, winner.ID, winning.Card, scores))

	return &RoundResult{Seq: seq, Winner: winner, WinningCard: winning.Card}, nil
}

// eligibleSubmitters returns how many players must play a card before the
// round closes submissions: everyone, or everyone but the judge.
func (re *RoundEngine) eligibleSubmitters() int {
	if re.game.Mode == ModeJudge {
		return len(re.game.Players) - 1
	}
	return len(re.game.Players)
}

// eligibleJudges returns how many judgments resolve the round: one in
// judge mode, every submitter in open vote.
func (re *RoundEngine) eligibleJudges() int {
	if re.game.Mode == ModeJudge {
		return 1
	}
	return len(re.game.Players)
}
