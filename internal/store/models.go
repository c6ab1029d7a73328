package store

import (
	"time"

	"gorm.io/datatypes"
)

// GameRecord is the persisted form of a game aggregate. The indexed columns
// are denormalised for lookups; State holds the full engine snapshot and is
// canonical on load.
type GameRecord struct {
	ID           string         `gorm:"primaryKey;size:36"`
	RoomID       string         `gorm:"uniqueIndex;size:64;not null"`
	CreatorID    string         `gorm:"size:64;not null"`
	Status       string         `gorm:"size:16;not null"`
	Mode         string         `gorm:"size:16;not null"`
	TargetScore  int            `gorm:"not null;default:0"`
	MaxPlayers   int            `gorm:"not null;default:0"`
	DictionaryID string         `gorm:"size:36"`
	LastRoundSeq int            `gorm:"not null;default:0"`
	State        datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

type UserRecord struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:64;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type RoomRecord struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:128;not null"`
	OwnerID   string    `gorm:"size:64;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type DictionaryRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:128;not null"`
	CreatorID string    `gorm:"size:64"`
	Shared    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Cards     []CardRecord
}

type CardRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	DictionaryID string    `gorm:"index;size:36;not null;uniqueIndex:idx_cards_dictionary_kind_text"`
	Kind         string    `gorm:"size:16;not null;uniqueIndex:idx_cards_dictionary_kind_text"`
	Text         string    `gorm:"size:280;not null;uniqueIndex:idx_cards_dictionary_kind_text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
