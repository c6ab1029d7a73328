package server

import (
	"github.com/rs/zerolog"

	"github.com/partydeck/partydeck/internal/game"
)

// roomNotifier forwards engine events to every connection in the game's
// room. It is subscribed to each orchestrator's bus at handle construction.
type roomNotifier struct {
	roomID      string
	broadcaster Broadcaster
	logger      zerolog.Logger
}

func (n *roomNotifier) OnEvent(event game.Event) {
	msg, err := messageFromEvent(event)
	if err != nil {
		n.logger.Error().Err(err).Str("room", n.roomID).Str("event", event.EventType().String()).Msg("failed to encode event")
		return
	}
	if msg == nil {
		return
	}
	n.broadcaster.BroadcastToRoom(n.roomID, msg)
}

func messageFromEvent(event game.Event) (*Message, error) {
	switch e := event.(type) {
	case game.GameStartedEvent:
		return NewMessage(MessageTypeGameStarted, GameStartedData{
			GameID:  e.GameID,
			Players: e.Players,
			Mode:    e.Mode.String(),
		})
	case game.RoundStartedEvent:
		return NewMessage(MessageTypeRoundStarted, RoundStartedData{
			GameID:  e.GameID,
			Seq:     e.Seq,
			Prompt:  CardView{ID: e.Prompt.ID, Text: e.Prompt.Text},
			JudgeID: e.JudgeID,
		})
	case game.CardPlayedEvent:
		// The submitted card stays private until the reveal.
		return NewMessage(MessageTypeCardPlayed, CardPlayedData{
			GameID:      e.GameID,
			Seq:         e.Seq,
			Submissions: e.Submissions,
		})
	case game.JudgmentCastEvent:
		return NewMessage(MessageTypeVoteCast, VoteCastData{
			GameID:    e.GameID,
			Seq:       e.Seq,
			Judgments: e.Judgments,
		})
	case game.RoundEndedEvent:
		subs := make([]SubmissionView, 0, len(e.Submissions))
		for _, sub := range e.Submissions {
			subs = append(subs, SubmissionView{Card: CardView{ID: sub.Card.ID, Text: sub.Card.Text}})
		}
		return NewMessage(MessageTypeRoundEnded, RoundEndedData{
			GameID:      e.GameID,
			Seq:         e.Seq,
			Prompt:      CardView{ID: e.Prompt.ID, Text: e.Prompt.Text},
			Submissions: subs,
			WinningCard: CardView{ID: e.WinningCard.ID, Text: e.WinningCard.Text},
			Scores:      e.Scores,
		})
	case game.GameFinishedEvent:
		return NewMessage(MessageTypeGameFinished, GameFinishedData{
			GameID:   e.GameID,
			WinnerID: e.WinnerID,
			Score:    e.Score,
		})
	default:
		return nil, nil
	}
}
