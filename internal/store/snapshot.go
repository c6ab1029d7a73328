package store

import (
	"encoding/json"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
	"github.com/partydeck/partydeck/internal/game"
)

// gameSnapshot is the JSON shape stored in GameRecord.State. It carries
// everything needed to rebuild the aggregate, including the undrawn pool
// sequences in draw order so a reload never reshuffles.
type gameSnapshot struct {
	ID           string `json:"id"`
	RoomID       string `json:"room_id"`
	CreatorID    string `json:"creator_id"`
	Status       int    `json:"status"`
	Mode         int    `json:"mode"`
	TargetScore  int    `json:"target_score"`
	MaxPlayers   int    `json:"max_players"`
	DictionaryID string `json:"dictionary_id,omitempty"`
	LastRoundSeq int    `json:"last_round_seq"`

	Players []playerSnapshot `json:"players,omitempty"`
	Pool    *poolSnapshot    `json:"pool,omitempty"`
	Table   *tableSnapshot   `json:"table,omitempty"`
}

type playerSnapshot struct {
	ID      string      `json:"id"`
	UserID  string      `json:"user_id"`
	Score   int         `json:"score"`
	Reserve []card.Card `json:"reserve,omitempty"`
	Hand    []card.Card `json:"hand,omitempty"`
}

type poolSnapshot struct {
	Prompts   []card.Card `json:"prompts,omitempty"`
	Responses []card.Card `json:"responses,omitempty"`
	Discard   []card.Card `json:"discard,omitempty"`
}

type tableSnapshot struct {
	Seq         int                  `json:"seq"`
	Prompt      card.Card            `json:"prompt"`
	JudgeID     string               `json:"judge_id,omitempty"`
	State       int                  `json:"state"`
	Submissions []submissionSnapshot `json:"submissions,omitempty"`
	Judgments   map[string]string    `json:"judgments,omitempty"`
}

type submissionSnapshot struct {
	PlayerID string    `json:"player_id"`
	Card     card.Card `json:"card"`
}

func encodeGame(g *game.Game) ([]byte, error) {
	snap := gameSnapshot{
		ID:           g.ID,
		RoomID:       g.RoomID,
		CreatorID:    g.CreatorID,
		Status:       int(g.Status),
		Mode:         int(g.Mode),
		TargetScore:  g.TargetScore,
		MaxPlayers:   g.MaxPlayers,
		DictionaryID: g.DictionaryID,
		LastRoundSeq: g.LastRoundSeq,
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, playerSnapshot{
			ID:      p.ID,
			UserID:  p.UserID,
			Score:   p.Score,
			Reserve: p.Reserve,
			Hand:    p.Hand,
		})
	}
	if g.Pool != nil {
		prompts, responses, discard := g.Pool.Snapshot()
		snap.Pool = &poolSnapshot{Prompts: prompts, Responses: responses, Discard: discard}
	}
	if g.Table != nil {
		ts := &tableSnapshot{
			Seq:       g.Table.Seq,
			Prompt:    g.Table.Prompt,
			JudgeID:   g.Table.JudgeID,
			State:     int(g.Table.State),
			Judgments: g.Table.Judgments(),
		}
		for _, s := range g.Table.Submissions() {
			ts.Submissions = append(ts.Submissions, submissionSnapshot{PlayerID: s.PlayerID, Card: s.Card})
		}
		snap.Table = ts
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "encoding game snapshot", err)
	}
	return data, nil
}

func decodeGame(data []byte) (*game.Game, error) {
	var snap gameSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "decoding game snapshot", err)
	}

	g := &game.Game{
		ID:           snap.ID,
		RoomID:       snap.RoomID,
		CreatorID:    snap.CreatorID,
		Status:       game.Status(snap.Status),
		Mode:         game.Mode(snap.Mode),
		TargetScore:  snap.TargetScore,
		MaxPlayers:   snap.MaxPlayers,
		DictionaryID: snap.DictionaryID,
		LastRoundSeq: snap.LastRoundSeq,
	}
	for _, p := range snap.Players {
		g.Players = append(g.Players, &game.Player{
			ID:      p.ID,
			UserID:  p.UserID,
			Score:   p.Score,
			Reserve: p.Reserve,
			Hand:    p.Hand,
		})
	}
	if snap.Pool != nil {
		g.Pool = card.Restore(snap.Pool.Prompts, snap.Pool.Responses, snap.Pool.Discard)
	}
	if snap.Table != nil {
		subs := make([]game.Submission, 0, len(snap.Table.Submissions))
		for _, s := range snap.Table.Submissions {
			subs = append(subs, game.Submission{PlayerID: s.PlayerID, Card: s.Card})
		}
		g.Table = game.RestoreTable(snap.Table.Seq, snap.Table.Prompt, snap.Table.JudgeID,
			game.RoundState(snap.Table.State), subs, snap.Table.Judgments)
	}
	return g, nil
}
