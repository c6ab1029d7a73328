// Package game implements the round orchestration engine for the party
// card game: the state machine that takes a game from configuration through
// repeated rounds of dealing, submission, judging and win-condition checks.
package game

import (
	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
)

// Status represents the lifecycle state of a game.
type Status int

const (
	StatusCreated Status = iota
	StatusStarted
	StatusFinished
)

// String returns the string representation of a game status.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusStarted:
		return "started"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Mode selects how a round's winning submission is chosen.
type Mode int

const (
	// ModeUnset means the game has not been configured yet.
	ModeUnset Mode = iota
	// ModeOpenVote lets every submitting player vote; most votes wins,
	// ties broken by earliest submission.
	ModeOpenVote
	// ModeJudge rotates a judge each round; the judge sits the round out
	// and picks the winner alone.
	ModeJudge
)

// String returns the string representation of a game mode.
func (m Mode) String() string {
	switch m {
	case ModeOpenVote:
		return "open-vote"
	case ModeJudge:
		return "judge"
	default:
		return "unset"
	}
}

// ParseMode converts a mode's string form back to the enum.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "open-vote":
		return ModeOpenVote, nil
	case "judge":
		return ModeJudge, nil
	default:
		return ModeUnset, apperr.Newf(apperr.CodeGameNotConfigured, "unknown mode %q", s)
	}
}

// Game is the aggregate owning all per-game state. It is not safe for
// concurrent use; callers serialise access per game (see internal/server).
type Game struct {
	ID        string
	RoomID    string
	CreatorID string
	Status    Status

	// Configuration, each field set at most once before Start.
	Mode         Mode
	TargetScore  int
	MaxPlayers   int
	DictionaryID string

	Players []*Player
	Pool    *card.Pool
	Table   *RoundTable // nil while no round is active

	// LastRoundSeq is the sequence number of the most recently started
	// round, zero before the first round.
	LastRoundSeq int
}

// New creates a game in CREATED status with an empty roster and no
// configuration.
func New(id, roomID, creatorID string) *Game {
	return &Game{
		ID:        id,
		RoomID:    roomID,
		CreatorID: creatorID,
		Status:    StatusCreated,
	}
}

// SetMode configures the judgment mode. It fails if the mode was already
// set; configuration fields cannot be overwritten.
func (g *Game) SetMode(mode Mode) error {
	if g.Mode != ModeUnset {
		return apperr.Newf(apperr.CodeGameAlreadyConfigured, "mode already set to %s", g.Mode)
	}
	if mode != ModeOpenVote && mode != ModeJudge {
		return apperr.Newf(apperr.CodeGameNotConfigured, "invalid mode %d", mode)
	}
	g.Mode = mode
	return nil
}

// SetTargetScore configures the score a player must reach to win the game.
func (g *Game) SetTargetScore(target int) error {
	if g.TargetScore != 0 {
		return apperr.Newf(apperr.CodeGameAlreadyConfigured, "target score already set to %d", g.TargetScore)
	}
	if target <= 0 {
		return apperr.Newf(apperr.CodeGameNotConfigured, "target score must be positive, got %d", target)
	}
	g.TargetScore = target
	return nil
}

// SetMaxPlayers configures the roster capacity.
func (g *Game) SetMaxPlayers(max int) error {
	if g.MaxPlayers != 0 {
		return apperr.Newf(apperr.CodeGameAlreadyConfigured, "max players already set to %d", g.MaxPlayers)
	}
	if max <= 0 {
		return apperr.Newf(apperr.CodeGameNotConfigured, "max players must be positive, got %d", max)
	}
	g.MaxPlayers = max
	return nil
}

// SetDictionary configures the dictionary the game draws its cards from.
func (g *Game) SetDictionary(dictionaryID string) error {
	if g.DictionaryID != "" {
		return apperr.New(apperr.CodeGameAlreadyConfigured, "dictionary already set")
	}
	if dictionaryID == "" {
		return apperr.New(apperr.CodeGameNotConfigured, "dictionary id is empty")
	}
	g.DictionaryID = dictionaryID
	return nil
}

// Configured reports whether all four configuration fields are set.
func (g *Game) Configured() bool {
	return g.Mode != ModeUnset && g.TargetScore > 0 && g.MaxPlayers > 0 && g.DictionaryID != ""
}

// PlayerByID returns the player with the given player identity.
func (g *Game) PlayerByID(id string) (*Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PlayerByUserID returns the player backed by the given user identity.
func (g *Game) PlayerByUserID(userID string) (*Player, bool) {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p, true
		}
	}
	return nil, false
}

// Leader returns the player with the highest score, or nil for an empty
// roster.
func (g *Game) Leader() *Player {
	var best *Player
	for _, p := range g.Players {
		if best == nil || p.Score > best.Score {
			best = p
		}
	}
	return best
}
