package game

import (
	"context"

	"github.com/partydeck/partydeck/internal/card"
)

// User is the engine's view of a user identity.
type User struct {
	ID     string
	Name   string
	Active bool
}

// Room is the engine's view of the chat room a game belongs to.
type Room struct {
	ID      string
	Name    string
	OwnerID string
	Active  bool
}

// Dictionary is the engine's view of a card catalog.
type Dictionary struct {
	ID     string
	Name   string
	Shared bool
}

// Storage persists game aggregates. The engine calls it at state transition
// boundaries and treats the returned value as the new canonical snapshot.
type Storage interface {
	CreateGame(ctx context.Context, g *Game) (*Game, error)
	UpdateGame(ctx context.Context, g *Game) (*Game, error)
	DeleteGame(ctx context.Context, id string) error
	FindGameByID(ctx context.Context, id string) (*Game, error)
	FindGameByRoomID(ctx context.Context, roomID string) (*Game, error)
}

// UserService resolves user identities for player creation. GetByID fails
// with UserNotFound or UserNotActive, which the orchestrator propagates.
type UserService interface {
	GetByID(ctx context.Context, id string) (User, error)
}

// RoomService supplies and validates the room a game belongs to.
type RoomService interface {
	CreateOrReactivate(ctx context.Context, id, name, ownerID string) (Room, error)
	GetByID(ctx context.Context, id string) (Room, error)
}

// DictionaryService supplies the card universe for pool construction.
type DictionaryService interface {
	GetByID(ctx context.Context, id string) (Dictionary, error)
	CardsByDictionaryAndKind(ctx context.Context, dictionaryID string, kind card.Kind) ([]card.Card, error)
}
