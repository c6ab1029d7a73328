package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/game"
)

// RoomStore implements the engine's RoomService over the rooms table.
type RoomStore struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Rooms returns the room service backed by this store.
func (s *Store) Rooms() *RoomStore {
	return &RoomStore{db: s.db, logger: s.logger}
}

// CreateOrReactivate registers the room a game is being created in. A known
// inactive room is renamed and reactivated; a known active room is returned
// as-is so repeated game creation in the same room needs no extra call.
func (r *RoomStore) CreateOrReactivate(ctx context.Context, id, name, ownerID string) (game.Room, error) {
	if id == "" {
		return game.Room{}, apperr.New(apperr.CodeRoomNotFound, "room id is empty")
	}

	var rec RoomRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = RoomRecord{ID: id, Name: name, OwnerID: ownerID, Active: true}
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return game.Room{}, err
		}
		r.logger.Info().Str("room", id).Msg("room registered")
	case err != nil:
		return game.Room{}, err
	case !rec.Active:
		rec.Name = name
		rec.Active = true
		if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
			return game.Room{}, err
		}
		r.logger.Info().Str("room", id).Msg("room reactivated")
	}

	return game.Room{ID: rec.ID, Name: rec.Name, OwnerID: rec.OwnerID, Active: rec.Active}, nil
}

// GetByID resolves an active room.
func (r *RoomStore) GetByID(ctx context.Context, id string) (game.Room, error) {
	var rec RoomRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return game.Room{}, notFound(err, apperr.CodeRoomNotFound, "room "+id+" not found")
	}
	if !rec.Active {
		return game.Room{}, apperr.Newf(apperr.CodeRoomNotActive, "room %s is not active", id)
	}
	return game.Room{ID: rec.ID, Name: rec.Name, OwnerID: rec.OwnerID, Active: rec.Active}, nil
}
