package game

import (
	"time"

	"github.com/partydeck/partydeck/internal/card"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for engine domain events. The transport layer
// subscribes to these to notify connected clients.
const (
	EventTypeGameStarted  EventType = "game_started"
	EventTypeGameFinished EventType = "game_finished"
	EventTypeRoundStarted EventType = "round_started"
	EventTypeCardPlayed   EventType = "card_played"
	EventTypeJudgmentCast EventType = "judgment_cast"
	EventTypeRoundEnded   EventType = "round_ended"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event represents any event that occurs during a game
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// EventSubscriber receives published events
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory event bus implementation
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{subscribers: make([]EventSubscriber, 0)}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}

// GameStartedEvent is published when a game moves to STARTED.
type GameStartedEvent struct {
	GameID    string
	Players   int
	Mode      Mode
	timestamp time.Time
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }
func (e GameStartedEvent) Timestamp() time.Time { return e.timestamp }

// NewGameStartedEvent creates a new game started event
func NewGameStartedEvent(gameID string, players int, mode Mode) GameStartedEvent {
	return GameStartedEvent{GameID: gameID, Players: players, Mode: mode, timestamp: time.Now()}
}

// RoundStartedEvent is published when a new round begins. JudgeID is empty
// in open-vote mode.
type RoundStartedEvent struct {
	GameID    string
	Seq       int
	Prompt    card.Card
	JudgeID   string
	timestamp time.Time
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundStartedEvent creates a new round started event
func NewRoundStartedEvent(gameID string, seq int, prompt card.Card, judgeID string) RoundStartedEvent {
	return RoundStartedEvent{GameID: gameID, Seq: seq, Prompt: prompt, JudgeID: judgeID, timestamp: time.Now()}
}

// CardPlayedEvent is published when a player submits a response card.
// It deliberately omits the card itself: submissions stay anonymous until
// the round's reveal.
type CardPlayedEvent struct {
	GameID      string
	Seq         int
	PlayerID    string
	Submissions int
	timestamp   time.Time
}

func (e CardPlayedEvent) EventType() EventType { return EventTypeCardPlayed }
func (e CardPlayedEvent) Timestamp() time.Time { return e.timestamp }

// NewCardPlayedEvent creates a new card played event
func NewCardPlayedEvent(gameID string, seq int, playerID string, submissions int) CardPlayedEvent {
	return CardPlayedEvent{GameID: gameID, Seq: seq, PlayerID: playerID, Submissions: submissions, timestamp: time.Now()}
}

// JudgmentCastEvent is published when a vote or judge pick is recorded.
type JudgmentCastEvent struct {
	GameID    string
	Seq       int
	VoterID   string
	Judgments int
	timestamp time.Time
}

func (e JudgmentCastEvent) EventType() EventType { return EventTypeJudgmentCast }
func (e JudgmentCastEvent) Timestamp() time.Time { return e.timestamp }

// NewJudgmentCastEvent creates a new judgment cast event
func NewJudgmentCastEvent(gameID string, seq int, voterID string, judgments int) JudgmentCastEvent {
	return JudgmentCastEvent{GameID: gameID, Seq: seq, VoterID: voterID, Judgments: judgments, timestamp: time.Now()}
}

// RoundEndedEvent is published when a round resolves, revealing all
// submissions and the winner.
type RoundEndedEvent struct {
	GameID      string
	Seq         int
	Prompt      card.Card
	Submissions []Submission
	WinnerID    string
	WinningCard card.Card
	Scores      map[string]int // player id -> score after the round
	timestamp   time.Time
}

func (e RoundEndedEvent) EventType() EventType { return EventTypeRoundEnded }
func (e RoundEndedEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundEndedEvent creates a new round ended event
func NewRoundEndedEvent(gameID string, seq int, prompt card.Card, subs []Submission, winnerID string, winning card.Card, scores map[string]int) RoundEndedEvent {
	return RoundEndedEvent{
		GameID:      gameID,
		Seq:         seq,
		Prompt:      prompt,
		Submissions: subs,
		WinnerID:    winnerID,
		WinningCard: winning,
		Scores:      scores,
		timestamp:   time.Now(),
	}
}

// GameFinishedEvent is published when a player reaches the target score.
type GameFinishedEvent struct {
	GameID    string
	WinnerID  string
	Score     int
	timestamp time.Time
}

func (e GameFinishedEvent) EventType() EventType { return EventTypeGameFinished }
func (e GameFinishedEvent) Timestamp() time.Time { return e.timestamp }

// NewGameFinishedEvent creates a new game finished event
func NewGameFinishedEvent(gameID, winnerID string, score int) GameFinishedEvent {
	return GameFinishedEvent{GameID: gameID, WinnerID: winnerID, Score: score, timestamp: time.Now()}
}
