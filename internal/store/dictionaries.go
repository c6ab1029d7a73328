package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
	"github.com/partydeck/partydeck/internal/game"
)

// DictionaryStore implements the engine's DictionaryService and the card
// catalog maintenance operations.
type DictionaryStore struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Dictionaries returns the dictionary service backed by this store.
func (s *Store) Dictionaries() *DictionaryStore {
	return &DictionaryStore{db: s.db, logger: s.logger}
}

// Create registers a new dictionary.
func (d *DictionaryStore) Create(ctx context.Context, name, creatorID string, shared bool) (game.Dictionary, error) {
	rec := DictionaryRecord{
		ID:        uuid.NewString(),
		Name:      name,
		CreatorID: creatorID,
		Shared:    shared,
	}
	if err := d.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return game.Dictionary{}, err
	}
	d.logger.Info().Str("dictionary", rec.ID).Str("name", name).Msg("dictionary created")
	return game.Dictionary{ID: rec.ID, Name: rec.Name, Shared: rec.Shared}, nil
}

// GetByID resolves a dictionary.
func (d *DictionaryStore) GetByID(ctx context.Context, id string) (game.Dictionary, error) {
	var rec DictionaryRecord
	if err := d.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return game.Dictionary{}, notFound(err, apperr.CodeDictionaryNotFound, "dictionary "+id+" not found")
	}
	return game.Dictionary{ID: rec.ID, Name: rec.Name, Shared: rec.Shared}, nil
}

// AddCard appends a card to a dictionary's catalog.
func (d *DictionaryStore) AddCard(ctx context.Context, dictionaryID string, kind card.Kind, text string) (card.Card, error) {
	if _, err := d.GetByID(ctx, dictionaryID); err != nil {
		return card.Card{}, err
	}
	rec := CardRecord{
		ID:           uuid.NewString(),
		DictionaryID: dictionaryID,
		Kind:         kind.String(),
		Text:         text,
	}
	if err := d.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return card.Card{}, apperr.Newf(apperr.CodeCardAlreadyExists, "card %q already in dictionary %s", text, dictionaryID)
		}
		return card.Card{}, err
	}
	return card.Card{ID: rec.ID, Kind: kind, Text: rec.Text, DictionaryID: rec.DictionaryID}, nil
}

// DeleteCard removes a card from its dictionary.
func (d *DictionaryStore) DeleteCard(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).Delete(&CardRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.CodeCardNotFound, "card %s not found", id)
	}
	return nil
}

// CardsByDictionaryAndKind returns one kind's cards in insertion order.
func (d *DictionaryStore) CardsByDictionaryAndKind(ctx context.Context, dictionaryID string, kind card.Kind) ([]card.Card, error) {
	var recs []CardRecord
	err := d.db.WithContext(ctx).
		Where("dictionary_id = ? AND kind = ?", dictionaryID, kind.String()).
		Order("created_at").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	cards := make([]card.Card, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, card.Card{
			ID:           rec.ID,
			Kind:         kind,
			Text:         rec.Text,
			DictionaryID: rec.DictionaryID,
		})
	}
	return cards, nil
}
