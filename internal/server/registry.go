package server

import (
	"sync"

	"github.com/rs/zerolog"
)

// GameRegistry tracks the live game handle for each room. It only manages
// the map; game lifecycle and storage round-trips belong to GameService.
type GameRegistry struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	games  map[string]*GameHandle
}

// NewGameRegistry constructs an empty registry.
func NewGameRegistry(logger zerolog.Logger) *GameRegistry {
	return &GameRegistry{
		logger: logger.With().Str("component", "game_registry").Logger(),
		games:  make(map[string]*GameHandle),
	}
}

// Register adds a handle for a room. If the room already has one, the
// existing handle wins so concurrent registrations converge on one game.
func (r *GameRegistry) Register(roomID string, handle *GameHandle) *GameHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.games[roomID]; ok {
		return existing
	}
	r.games[roomID] = handle
	r.logger.Debug().Str("room", roomID).Int("total", len(r.games)).Msg("game registered")
	return handle
}

// Get retrieves the handle for a room.
func (r *GameRegistry) Get(roomID string) (*GameHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.games[roomID]
	return handle, ok
}

// Remove drops the handle for a room and returns it.
func (r *GameRegistry) Remove(roomID string) (*GameHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.games[roomID]
	if !ok {
		return nil, false
	}
	delete(r.games, roomID)
	r.logger.Debug().Str("room", roomID).Int("total", len(r.games)).Msg("game removed")
	return handle, true
}

// Rooms returns the room ids with live games.
func (r *GameRegistry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.games))
	for roomID := range r.games {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// Len returns the number of live games.
func (r *GameRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
