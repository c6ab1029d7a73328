// Package memstore is an in-memory implementation of the storage and lookup
// collaborators. The server falls back to it when no DATABASE_URL is
// configured; tests use it for end-to-end runs without Postgres.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
	"github.com/partydeck/partydeck/internal/game"
)

// Store holds everything behind one mutex; contention is per-call and the
// engine's per-game serialisation happens a layer above.
type Store struct {
	mu     sync.RWMutex
	games  map[string]*game.Game
	byRoom map[string]string
	users  map[string]game.User
	rooms  map[string]game.Room
	dicts  map[string]game.Dictionary
	cards  map[string][]card.Card // dictionary id -> catalog
}

func New() *Store {
	return &Store{
		games:  make(map[string]*game.Game),
		byRoom: make(map[string]string),
		users:  make(map[string]game.User),
		rooms:  make(map[string]game.Room),
		dicts:  make(map[string]game.Dictionary),
		cards:  make(map[string][]card.Card),
	}
}

func (s *Store) CreateGame(_ context.Context, g *game.Game) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return nil, apperr.Newf(apperr.CodeGameAlreadyExists, "game %s already exists", g.ID)
	}
	if _, ok := s.byRoom[g.RoomID]; ok {
		return nil, apperr.Newf(apperr.CodeGameAlreadyExists, "room %s already hosts a game", g.RoomID)
	}
	s.games[g.ID] = g
	s.byRoom[g.RoomID] = g.ID
	return g, nil
}

func (s *Store) UpdateGame(_ context.Context, g *game.Game) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		return nil, apperr.Newf(apperr.CodeGameNotFound, "game %s not found", g.ID)
	}
	s.games[g.ID] = g
	return g, nil
}

func (s *Store) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return apperr.Newf(apperr.CodeGameNotFound, "game %s not found", id)
	}
	delete(s.games, id)
	delete(s.byRoom, g.RoomID)
	return nil
}

func (s *Store) FindGameByID(_ context.Context, id string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, apperr.Newf(apperr.CodeGameNotFound, "game %s not found", id)
	}
	return g, nil
}

func (s *Store) FindGameByRoomID(_ context.Context, roomID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byRoom[roomID]
	if !ok {
		return nil, apperr.Newf(apperr.CodeGameNotFound, "no game in room %s", roomID)
	}
	return s.games[id], nil
}

// Users returns the in-memory user service.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Rooms returns the in-memory room service.
func (s *Store) Rooms() *RoomStore { return &RoomStore{s: s} }

// Dictionaries returns the in-memory dictionary service.
func (s *Store) Dictionaries() *DictionaryStore { return &DictionaryStore{s: s} }

type UserStore struct {
	s *Store
}

func (u *UserStore) CreateOrReactivate(_ context.Context, id, name string) (game.User, error) {
	if id == "" || name == "" {
		return game.User{}, apperr.New(apperr.CodeUserNotFound, "user id and name are required")
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	existing, ok := u.s.users[id]
	if ok && existing.Active {
		return game.User{}, apperr.Newf(apperr.CodeUserAlreadyExists, "user %s already exists", id)
	}
	user := game.User{ID: id, Name: name, Active: true}
	u.s.users[id] = user
	return user, nil
}

func (u *UserStore) Deactivate(_ context.Context, id string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return apperr.Newf(apperr.CodeUserNotFound, "user %s not found", id)
	}
	user.Active = false
	u.s.users[id] = user
	return nil
}

func (u *UserStore) GetByID(_ context.Context, id string) (game.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return game.User{}, apperr.Newf(apperr.CodeUserNotFound, "user %s not found", id)
	}
	if !user.Active {
		return game.User{}, apperr.Newf(apperr.CodeUserNotActive, "user %s is not active", id)
	}
	return user, nil
}

type RoomStore struct {
	s *Store
}

func (r *RoomStore) CreateOrReactivate(_ context.Context, id, name, ownerID string) (game.Room, error) {
	if id == "" {
		return game.Room{}, apperr.New(apperr.CodeRoomNotFound, "room id is empty")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.rooms[id]; ok && existing.Active {
		return existing, nil
	}
	room := game.Room{ID: id, Name: name, OwnerID: ownerID, Active: true}
	r.s.rooms[id] = room
	return room, nil
}

func (r *RoomStore) GetByID(_ context.Context, id string) (game.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return game.Room{}, apperr.Newf(apperr.CodeRoomNotFound, "room %s not found", id)
	}
	if !room.Active {
		return game.Room{}, apperr.Newf(apperr.CodeRoomNotActive, "room %s is not active", id)
	}
	return room, nil
}

type DictionaryStore struct {
	s *Store
}

func (d *DictionaryStore) Create(_ context.Context, name, creatorID string, shared bool) (game.Dictionary, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	dict := game.Dictionary{ID: uuid.NewString(), Name: name, Shared: shared}
	d.s.dicts[dict.ID] = dict
	return dict, nil
}

func (d *DictionaryStore) GetByID(_ context.Context, id string) (game.Dictionary, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	dict, ok := d.s.dicts[id]
	if !ok {
		return game.Dictionary{}, apperr.Newf(apperr.CodeDictionaryNotFound, "dictionary %s not found", id)
	}
	return dict, nil
}

func (d *DictionaryStore) AddCard(_ context.Context, dictionaryID string, kind card.Kind, text string) (card.Card, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if _, ok := d.s.dicts[dictionaryID]; !ok {
		return card.Card{}, apperr.Newf(apperr.CodeDictionaryNotFound, "dictionary %s not found", dictionaryID)
	}
	for _, c := range d.s.cards[dictionaryID] {
		if c.Kind == kind && c.Text == text {
			return card.Card{}, apperr.Newf(apperr.CodeCardAlreadyExists, "card %q already in dictionary %s", text, dictionaryID)
		}
	}
	c := card.Card{ID: uuid.NewString(), Kind: kind, Text: text, DictionaryID: dictionaryID}
	d.s.cards[dictionaryID] = append(d.s.cards[dictionaryID], c)
	return c, nil
}

func (d *DictionaryStore) DeleteCard(_ context.Context, id string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for dictID, catalog := range d.s.cards {
		for i, c := range catalog {
			if c.ID == id {
				d.s.cards[dictID] = append(catalog[:i], catalog[i+1:]...)
				return nil
			}
		}
	}
	return apperr.Newf(apperr.CodeCardNotFound, "card %s not found", id)
}

func (d *DictionaryStore) CardsByDictionaryAndKind(_ context.Context, dictionaryID string, kind card.Kind) ([]card.Card, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	var out []card.Card
	for _, c := range d.s.cards[dictionaryID] {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}
