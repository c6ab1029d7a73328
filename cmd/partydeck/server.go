package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/partydeck/partydeck/cmd/partydeck/shared"
	"github.com/partydeck/partydeck/internal/game"
	"github.com/partydeck/partydeck/internal/server"
	"github.com/partydeck/partydeck/internal/store"
	"github.com/partydeck/partydeck/internal/store/memstore"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Addr   string `kong:"help='Server address, overrides the config file'"`
	Config string `kong:"default='partydeck.hcl',help='Path to HCL config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	JSON   bool   `kong:"help='Structured JSON logs instead of console output'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)
	if c.JSON {
		logger = shared.SetupStructuredLogger(c.Debug)
	}

	// DATABASE_URL may come from a .env file in development.
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	var (
		storage game.Storage
		users   server.UserRegistry
		rooms   game.RoomService
		dicts   game.DictionaryService
	)
	if os.Getenv("DATABASE_URL") != "" {
		st, err := store.Open(logger)
		if err != nil {
			return err
		}
		storage, users, rooms, dicts = st, st.Users(), st.Rooms(), st.Dictionaries()
		logger.Info().Msg("using postgres storage")
	} else {
		mem := memstore.New()
		storage, users, rooms, dicts = mem, mem.Users(), mem.Rooms(), mem.Dictionaries()
		logger.Warn().Msg("DATABASE_URL not set, falling back to in-memory storage")
	}

	engineLogger := shared.SetupEngineLogger(os.Stderr, c.Debug)
	service := server.NewGameService(storage, users, rooms, dicts,
		logger, engineLogger, quartz.NewReal(), cfg.ServiceConfig())
	srv := server.NewServer(addr, engineLogger, service)

	logger.Info().
		Str("address", addr).
		Int("min_players", cfg.Game.MinPlayers).
		Int("hand_size", cfg.Game.HandSize).
		Int("lock_timeout_ms", cfg.Game.LockTimeoutMs).
		Msg("Starting partydeck server")

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
