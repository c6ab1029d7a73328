package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/game"
	"github.com/partydeck/partydeck/internal/randutil"
)

// Broadcaster delivers messages to every connection subscribed to a room
// and drops the subscriptions once the room's game is gone.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msg *Message)
	ClearRoom(roomID string)
}

// UserRegistry is the user service as the transport needs it: identity
// lookup for the engine plus the name-based registration performed when a
// client authenticates.
type UserRegistry interface {
	game.UserService
	CreateOrReactivate(ctx context.Context, id, name string) (game.User, error)
}

// ServiceConfig carries the game defaults the service applies to every
// orchestrator it builds.
type ServiceConfig struct {
	MinPlayers  int
	HandSize    int
	LockTimeout time.Duration
	Seed        int64
}

// DefaultServiceConfig returns the defaults used when a field is zero.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MinPlayers:  3,
		HandSize:    5,
		LockTimeout: 3 * time.Second,
	}
}

// GameService is the operation surface the transport layer invokes. It owns
// the registry, builds orchestrators around stored games and serialises all
// mutations through per-game handles.
type GameService struct {
	registry     *GameRegistry
	storage      game.Storage
	users        UserRegistry
	rooms        game.RoomService
	dicts        game.DictionaryService
	logger       zerolog.Logger
	engineLogger *log.Logger
	clock        quartz.Clock
	broadcaster  Broadcaster
	cfg          ServiceConfig
}

// NewGameService wires a service over storage and the lookup collaborators.
func NewGameService(storage game.Storage, users UserRegistry, rooms game.RoomService, dicts game.DictionaryService,
	logger zerolog.Logger, engineLogger *log.Logger, clock quartz.Clock, cfg ServiceConfig) *GameService {
	defaults := DefaultServiceConfig()
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = defaults.MinPlayers
	}
	if cfg.HandSize <= 0 {
		cfg.HandSize = defaults.HandSize
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaults.LockTimeout
	}
	return &GameService{
		registry:     NewGameRegistry(logger),
		storage:      storage,
		users:        users,
		rooms:        rooms,
		dicts:        dicts,
		logger:       logger.With().Str("component", "game_service").Logger(),
		engineLogger: engineLogger,
		clock:        clock,
		cfg:          cfg,
	}
}

// SetBroadcaster attaches the transport used to push engine events to rooms.
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Registry exposes the live game registry for operational endpoints.
func (s *GameService) Registry() *GameRegistry {
	return s.registry
}

// Authenticate registers the user, or logs them back in when the id is
// already registered and active. Inactive users are reactivated under the
// supplied name.
func (s *GameService) Authenticate(ctx context.Context, userID, userName string) (game.User, error) {
	_, err := s.users.CreateOrReactivate(ctx, userID, userName)
	if err != nil && !apperr.HasCode(err, apperr.CodeUserAlreadyExists) {
		return game.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *GameService) newHandle(g *game.Game) *GameHandle {
	bus := game.NewEventBus()
	if s.broadcaster != nil {
		bus.Subscribe(&roomNotifier{roomID: g.RoomID, broadcaster: s.broadcaster, logger: s.logger})
	}
	// A configured seed is a base, not a shared value: each game derives its
	// own stream from it so concurrent games never deal identical decks.
	seed := s.cfg.Seed
	if seed != 0 {
		seed = randutil.Derive(seed, g.ID)
	}
	orch := game.NewOrchestrator(g, s.storage, s.users, s.dicts, s.engineLogger, bus, game.Options{
		MinPlayers: s.cfg.MinPlayers,
		HandSize:   s.cfg.HandSize,
		Seed:       seed,
	})
	return NewGameHandle(g.RoomID, orch, s.clock, s.cfg.LockTimeout)
}

// handleFor returns the room's live handle, rebuilding it from storage when
// the game exists but is not resident (after a restart, say).
func (s *GameService) handleFor(ctx context.Context, roomID string) (*GameHandle, error) {
	if handle, ok := s.registry.Get(roomID); ok {
		return handle, nil
	}
	g, err := s.storage.FindGameByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.registry.Register(roomID, s.newHandle(g)), nil
}

// CreateGame creates a game for a room, registering the room on first use.
// A room hosts at most one game at a time.
func (s *GameService) CreateGame(ctx context.Context, roomID, roomName, userID string) (*game.Game, error) {
	creator, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.CreateOrReactivate(ctx, roomID, roomName, creator.ID)
	if err != nil {
		return nil, err
	}

	g := game.New(uuid.NewString(), room.ID, creator.ID)
	stored, err := s.storage.CreateGame(ctx, g)
	if err != nil {
		return nil, err
	}

	handle := s.registry.Register(room.ID, s.newHandle(stored))
	s.logger.Info().Str("room", room.ID).Str("game", stored.ID).Str("creator", creator.ID).Msg("game created")

	var out *game.Game
	if err := handle.Do(ctx, func(orch *game.Orchestrator) error {
		// The creator always plays.
		if _, err := orch.AddPlayer(ctx, creator.ID); err != nil {
			return err
		}
		out = orch.Game()
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfigureGame applies one or more configuration fields. Each field is
// exactly-once; only the game's creator may configure.
type GameConfig struct {
	Mode        string
	TargetScore int
	MaxPlayers  int
	Dictionary  string
}

func (s *GameService) ConfigureGame(ctx context.Context, roomID, userID string, cfg GameConfig) error {
	handle, err := s.handleFor(ctx, roomID)
	if err != nil {
		return err
	}
	return handle.Do(ctx, func(orch *game.Orchestrator) error {
		if orch.Game().CreatorID != userID {
			return apperr.Newf(apperr.CodePlayerNotFound, "only the creator may configure game %s", orch.Game().ID)
		}
		if cfg.Mode != "" {
			mode, err := game.ParseMode(cfg.Mode)
			if err != nil {
				return err
			}
			if err := orch.SetMode(ctx, mode); err != nil {
				return err
			}
		}
		if cfg.TargetScore != 0 {
			if err := orch.SetTargetScore(ctx, cfg.TargetScore); err != nil {
				return err
			}
		}
		if cfg.MaxPlayers != 0 {
			if err := orch.SetMaxPlayers(ctx, cfg.MaxPlayers); err != nil {
				return err
			}
		}
		if cfg.Dictionary != "" {
			if err := orch.SetDictionary(ctx, cfg.Dictionary); err != nil {
				return err
			}
		}
		return nil
	})
}

// JoinGame adds the user to the room's game roster.
func (s *GameService) JoinGame(ctx context.Context, roomID, userID string) error {
	handle, err := s.handleFor(ctx, roomID)
	if err != nil {
		return err
	}
	return handle.Do(ctx, func(orch *game.Orchestrator) error {
		_, err := orch.AddPlayer(ctx, userID)
		return err
	})
}

// StartGame moves the room's game to STARTED and opens the first round.
func (s *GameService) StartGame(ctx context.Context, roomID, userID string) error {
	handle, err := s.handleFor(ctx, roomID)
	if err != nil {
		return err
	}
	return handle.Do(ctx, func(orch *game.Orchestrator) error {
		if orch.Game().CreatorID != userID {
			return apperr.Newf(apperr.CodePlayerNotFound, "only the creator may start game %s", orch.Game().ID)
		}
		return orch.Start(ctx)
	})
}

// PlayCard submits a response card for the user in the room's game.
func (s *GameService) PlayCard(ctx context.Context, roomID, userID, cardID string) error {
	handle, err := s.handleFor(ctx, roomID)
	if err != nil {
		return err
	}
	return handle.Do(ctx, func(orch *game.Orchestrator) error {
		return orch.PlayCard(ctx, userID, cardID)
	})
}

// CastVote records a judgment for the user. When the judgment closes the
// round, the round resolves and the next one starts in the same critical
// section so clients never observe a resolved-but-unscored round.
func (s *GameService) CastVote(ctx context.Context, roomID, userID, cardID string) error {
	handle, err := s.handleFor(ctx, roomID)
	if err != nil {
		return err
	}
	return handle.Do(ctx, func(orch *game.Orchestrator) error {
		if err := orch.CastJudgment(ctx, userID, cardID); err != nil {
			return err
		}
		if state, ok := orch.RoundState(); ok && state == game.RoundResolved {
			if _, err := orch.EndRound(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteGame removes the room's game. Only the creator may delete it.
func (s *GameService) DeleteGame(ctx context.Context, roomID, userID string) error {
	handle, err := s.handleFor(ctx, roomID)
	if err != nil {
		return err
	}
	if err := handle.Do(ctx, func(orch *game.Orchestrator) error {
		if orch.Game().CreatorID != userID {
			return apperr.Newf(apperr.CodePlayerNotFound, "only the creator may delete game %s", orch.Game().ID)
		}
		return orch.Delete(ctx)
	}); err != nil {
		return err
	}
	s.registry.Remove(roomID)
	if s.broadcaster != nil {
		// Tell the room before dropping its subscribers, so members do not
		// keep a stale association with a game that no longer exists.
		if msg, err := NewMessage(MessageTypeGameDeleted, map[string]string{"roomId": roomID}); err == nil {
			s.broadcaster.BroadcastToRoom(roomID, msg)
		}
		s.broadcaster.ClearRoom(roomID)
	}
	s.logger.Info().Str("room", roomID).Msg("game deleted")
	return nil
}

// GameState returns the room's game as seen by one user, including that
// user's private hand.
func (s *GameService) GameState(ctx context.Context, roomID, userID string) (*GameStateData, error) {
	handle, err := s.handleFor(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var state *GameStateData
	err = handle.Do(ctx, func(orch *game.Orchestrator) error {
		state = gameStateFor(orch.Game(), userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}
