package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/partydeck/partydeck/cmd/partydeck/shared"
	"github.com/partydeck/partydeck/internal/card"
	"github.com/partydeck/partydeck/internal/store"
)

// SeedCmd loads a dictionary file into the database so games can be
// configured against it.
type SeedCmd struct {
	File   string `kong:"arg,help='Path to a dictionary JSON file'"`
	Shared bool   `kong:"help='Make the dictionary available to every room'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

// dictionaryFile is the on-disk dictionary format.
type dictionaryFile struct {
	Name      string   `json:"name"`
	CreatorID string   `json:"creatorId,omitempty"`
	Prompts   []string `json:"prompts"`
	Responses []string `json:"responses"`
}

func (c *SeedCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	var file dictionaryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", c.File, err)
	}
	if file.Name == "" {
		return fmt.Errorf("%s: dictionary name is required", c.File)
	}
	if len(file.Prompts) == 0 || len(file.Responses) == 0 {
		return fmt.Errorf("%s: a dictionary needs both prompts and responses", c.File)
	}

	st, err := store.Open(logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	dicts := st.Dictionaries()
	dict, err := dicts.Create(ctx, file.Name, file.CreatorID, c.Shared)
	if err != nil {
		return err
	}
	for _, text := range file.Prompts {
		if _, err := dicts.AddCard(ctx, dict.ID, card.Prompt, text); err != nil {
			return err
		}
	}
	for _, text := range file.Responses {
		if _, err := dicts.AddCard(ctx, dict.ID, card.Response, text); err != nil {
			return err
		}
	}

	logger.Info().
		Str("dictionary", dict.ID).
		Str("name", dict.Name).
		Int("prompts", len(file.Prompts)).
		Int("responses", len(file.Responses)).
		Msg("dictionary loaded")
	return nil
}
