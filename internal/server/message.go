package server

import (
	"encoding/json"
	"time"

	"github.com/partydeck/partydeck/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type CreateGameData struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName,omitempty"`
}

type ConfigureGameData struct {
	RoomID      string `json:"roomId"`
	Mode        string `json:"mode,omitempty"`
	TargetScore int    `json:"targetScore,omitempty"`
	MaxPlayers  int    `json:"maxPlayers,omitempty"`
	Dictionary  string `json:"dictionary,omitempty"`
}

type JoinGameData struct {
	RoomID string `json:"roomId"`
}

type StartGameData struct {
	RoomID string `json:"roomId"`
}

type PlayCardData struct {
	RoomID string `json:"roomId"`
	CardID string `json:"cardId"`
}

type CastVoteData struct {
	RoomID string `json:"roomId"`
	CardID string `json:"cardId"`
}

type GameStateRequestData struct {
	RoomID string `json:"roomId"`
}

type DeleteGameData struct {
	RoomID string `json:"roomId"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId,omitempty"`
	UserName string `json:"userName,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type ActionOKData struct {
	Action string `json:"action"`
	RoomID string `json:"roomId"`
}

type CardView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type PlayerView struct {
	UserID    string `json:"userId"`
	Score     int    `json:"score"`
	HandSize  int    `json:"handSize"`
	Submitted bool   `json:"submitted"`
	Judged    bool   `json:"judged"`
}

type RoundView struct {
	Seq         int        `json:"seq"`
	State       string     `json:"state"`
	Prompt      CardView   `json:"prompt"`
	JudgeUserID string     `json:"judgeUserId,omitempty"`
	Submissions int        `json:"submissions"`
	Judgments   int        `json:"judgments"`
	Table       []CardView `json:"table,omitempty"` // revealed only once judging begins
}

type GameStateData struct {
	RoomID      string       `json:"roomId"`
	GameID      string       `json:"gameId"`
	Status      string       `json:"status"`
	Mode        string       `json:"mode"`
	TargetScore int          `json:"targetScore"`
	MaxPlayers  int          `json:"maxPlayers"`
	Players     []PlayerView `json:"players"`
	Round       *RoundView   `json:"round,omitempty"`
	Hand        []CardView   `json:"hand,omitempty"` // the requesting user's cards
}

// Engine event payloads forwarded to room subscribers.

type GameStartedData struct {
	GameID  string `json:"gameId"`
	Players int    `json:"players"`
	Mode    string `json:"mode"`
}

type RoundStartedData struct {
	GameID  string   `json:"gameId"`
	Seq     int      `json:"seq"`
	Prompt  CardView `json:"prompt"`
	JudgeID string   `json:"judgeId,omitempty"`
}

type CardPlayedData struct {
	GameID      string `json:"gameId"`
	Seq         int    `json:"seq"`
	Submissions int    `json:"submissions"`
}

type VoteCastData struct {
	GameID    string `json:"gameId"`
	Seq       int    `json:"seq"`
	Judgments int    `json:"judgments"`
}

type SubmissionView struct {
	Card CardView `json:"card"`
}

type RoundEndedData struct {
	GameID      string           `json:"gameId"`
	Seq         int              `json:"seq"`
	Prompt      CardView         `json:"prompt"`
	Submissions []SubmissionView `json:"submissions"`
	WinningCard CardView         `json:"winningCard"`
	Scores      map[string]int   `json:"scores"`
}

type GameFinishedData struct {
	GameID   string `json:"gameId"`
	WinnerID string `json:"winnerId"`
	Score    int    `json:"score"`
}

// gameStateFor projects the aggregate into the view one user may see:
// public roster and round progress, plus that user's own hand. Other hands
// and unrevealed submissions stay hidden.
func gameStateFor(g *game.Game, userID string) *GameStateData {
	state := &GameStateData{
		RoomID:      g.RoomID,
		GameID:      g.ID,
		Status:      g.Status.String(),
		Mode:        g.Mode.String(),
		TargetScore: g.TargetScore,
		MaxPlayers:  g.MaxPlayers,
	}

	for _, p := range g.Players {
		view := PlayerView{
			UserID:   p.UserID,
			Score:    p.Score,
			HandSize: len(p.Hand),
		}
		if g.Table != nil {
			view.Submitted = g.Table.HasSubmitted(p.ID)
			view.Judged = g.Table.HasJudged(p.ID)
		}
		state.Players = append(state.Players, view)
		if p.UserID == userID {
			for _, c := range p.Hand {
				state.Hand = append(state.Hand, CardView{ID: c.ID, Text: c.Text})
			}
		}
	}

	if g.Table != nil {
		round := &RoundView{
			Seq:         g.Table.Seq,
			State:       g.Table.State.String(),
			Prompt:      CardView{ID: g.Table.Prompt.ID, Text: g.Table.Prompt.Text},
			Submissions: g.Table.SubmissionCount(),
			Judgments:   g.Table.JudgmentCount(),
		}
		if g.Table.JudgeID != "" {
			if judge, ok := g.PlayerByID(g.Table.JudgeID); ok {
				round.JudgeUserID = judge.UserID
			}
		}
		// Reveal the table only once submissions are closed, without the
		// submitter identities.
		if g.Table.State != game.AwaitingSubmissions {
			for _, sub := range g.Table.Submissions() {
				round.Table = append(round.Table, CardView{ID: sub.Card.ID, Text: sub.Card.Text})
			}
		}
		state.Round = round
	}

	return state
}
