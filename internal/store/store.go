// Package store persists games, users, rooms and card dictionaries in
// Postgres through GORM. Game aggregates are stored as denormalised columns
// plus a JSON snapshot; the snapshot is canonical when loading.
package store

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/partydeck/partydeck/internal/apperr"
)

// Store is the Postgres-backed implementation of the engine's storage and
// lookup collaborators.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open connects using DATABASE_URL, runs migrations and returns a Store.
func Open(logger zerolog.Logger) (*Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return New(conn, logger)
}

// New wraps an existing GORM connection and runs migrations.
func New(conn *gorm.DB, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		db:     conn,
		logger: logger.With().Str("component", "store").Logger(),
	}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(
		&GameRecord{},
		&UserRecord{},
		&RoomRecord{},
		&DictionaryRecord{},
		&CardRecord{},
	); err != nil {
		return err
	}
	s.logger.Debug().Msg("database migration complete")
	return nil
}

// notFound converts gorm's sentinel into a typed code, passing other errors
// through unchanged.
func notFound(err error, code apperr.Code, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(code, msg)
	}
	return err
}
