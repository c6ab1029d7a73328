package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/game"
)

// UserStore implements the engine's UserService over the users table.
type UserStore struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Users returns the user service backed by this store.
func (s *Store) Users() *UserStore {
	return &UserStore{db: s.db, logger: s.logger}
}

// CreateOrReactivate registers a user. A brand new id is created active; an
// inactive user is renamed and reactivated; an active user cannot be
// registered twice.
func (u *UserStore) CreateOrReactivate(ctx context.Context, id, name string) (game.User, error) {
	if id == "" {
		return game.User{}, apperr.New(apperr.CodeUserNotFound, "user id is empty")
	}
	if name == "" {
		return game.User{}, apperr.New(apperr.CodeUserNotFound, "user name is empty")
	}

	var rec UserRecord
	err := u.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = UserRecord{ID: id, Name: name, Active: true}
		if err := u.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return game.User{}, err
		}
	case err != nil:
		return game.User{}, err
	case rec.Active:
		return game.User{}, apperr.Newf(apperr.CodeUserAlreadyExists, "user %s already exists", id)
	default:
		rec.Name = name
		rec.Active = true
		if err := u.db.WithContext(ctx).Save(&rec).Error; err != nil {
			return game.User{}, err
		}
	}

	u.logger.Info().Str("user", id).Msg("user registered")
	return game.User{ID: rec.ID, Name: rec.Name, Active: rec.Active}, nil
}

// Deactivate marks a user inactive without deleting their history.
func (u *UserStore) Deactivate(ctx context.Context, id string) error {
	res := u.db.WithContext(ctx).Model(&UserRecord{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.CodeUserNotFound, "user %s not found", id)
	}
	return nil
}

// GetByID resolves an active user.
func (u *UserStore) GetByID(ctx context.Context, id string) (game.User, error) {
	var rec UserRecord
	if err := u.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return game.User{}, notFound(err, apperr.CodeUserNotFound, "user "+id+" not found")
	}
	if !rec.Active {
		return game.User{}, apperr.Newf(apperr.CodeUserNotActive, "user %s is not active", id)
	}
	return game.User{ID: rec.ID, Name: rec.Name, Active: rec.Active}, nil
}
