package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/game"
)

func gameRecord(g *game.Game) (*GameRecord, error) {
	state, err := encodeGame(g)
	if err != nil {
		return nil, err
	}
	return &GameRecord{
		ID:           g.ID,
		RoomID:       g.RoomID,
		CreatorID:    g.CreatorID,
		Status:       g.Status.String(),
		Mode:         g.Mode.String(),
		TargetScore:  g.TargetScore,
		MaxPlayers:   g.MaxPlayers,
		DictionaryID: g.DictionaryID,
		LastRoundSeq: g.LastRoundSeq,
		State:        state,
	}, nil
}

// CreateGame persists a new aggregate. A room hosts at most one game, so a
// second create for the same room fails with GameAlreadyExists.
func (s *Store) CreateGame(ctx context.Context, g *game.Game) (*game.Game, error) {
	rec, err := gameRecord(g)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Newf(apperr.CodeGameAlreadyExists, "room %s already hosts a game", g.RoomID)
		}
		return nil, err
	}
	s.logger.Info().Str("game", g.ID).Str("room", g.RoomID).Msg("game created")
	return decodeGame(rec.State)
}

// UpdateGame writes the aggregate's current snapshot and returns the
// persisted form.
func (s *Store) UpdateGame(ctx context.Context, g *game.Game) (*game.Game, error) {
	rec, err := gameRecord(g)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&GameRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"status":         rec.Status,
			"mode":           rec.Mode,
			"target_score":   rec.TargetScore,
			"max_players":    rec.MaxPlayers,
			"dictionary_id":  rec.DictionaryID,
			"last_round_seq": rec.LastRoundSeq,
			"state":          rec.State,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Newf(apperr.CodeGameNotFound, "game %s not found", g.ID)
	}
	return decodeGame(rec.State)
}

// DeleteGame removes a game and everything stored with it.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&GameRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.CodeGameNotFound, "game %s not found", id)
	}
	s.logger.Info().Str("game", id).Msg("game deleted")
	return nil
}

// FindGameByID loads one aggregate from its snapshot.
func (s *Store) FindGameByID(ctx context.Context, id string) (*game.Game, error) {
	var rec GameRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err, apperr.CodeGameNotFound, "game "+id+" not found")
	}
	return decodeGame(rec.State)
}

// FindGameByRoomID loads the game hosted in the given room.
func (s *Store) FindGameByRoomID(ctx context.Context, roomID string) (*game.Game, error) {
	var rec GameRecord
	if err := s.db.WithContext(ctx).First(&rec, "room_id = ?", roomID).Error; err != nil {
		return nil, notFound(err, apperr.CodeGameNotFound, "no game in room "+roomID)
	}
	return decodeGame(rec.State)
}

// ListGames returns the stored records, newest first, without decoding
// snapshots. Used by operational tooling.
func (s *Store) ListGames(ctx context.Context, limit int) ([]GameRecord, error) {
	var recs []GameRecord
	q := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true})
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
