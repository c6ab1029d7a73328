package game

import (
	"context"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
	"github.com/partydeck/partydeck/internal/randutil"
)

// Options tunes engine behaviour that is not part of a game's own
// configuration.
type Options struct {
	// MinPlayers is the roster size required to start a game.
	MinPlayers int
	// HandSize is the number of response cards a hand is topped up to at
	// the start of each round.
	HandSize int
	// Seed drives the pool shuffle. Zero selects a random seed.
	Seed int64
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return Options{
		MinPlayers: 3,
		HandSize:   5,
	}
}

// Orchestrator owns one Game's identity and top-level state machine. It is
// the only component that mutates Game.Status, and the only one that talks
// to the external collaborators. It is not safe for concurrent use; the
// server layer serialises calls per game.
type Orchestrator struct {
	game    *Game
	rounds  *RoundEngine
	hands   *HandManager
	storage Storage
	users   UserService
	dicts   DictionaryService
	logger  *log.Logger
	bus     EventBus
	opts    Options
}

// NewOrchestrator wires an orchestrator around an existing game aggregate.
func NewOrchestrator(g *Game, storage Storage, users UserService, dicts DictionaryService, logger *log.Logger, bus EventBus, opts Options) *Orchestrator {
	if opts.MinPlayers <= 0 {
		opts.MinPlayers = DefaultOptions().MinPlayers
	}
	if opts.HandSize <= 0 {
		opts.HandSize = DefaultOptions().HandSize
	}
	hands := NewHandManager(opts.HandSize)
	return &Orchestrator{
		game:    g,
		rounds:  NewRoundEngine(g, hands, logger, bus),
		hands:   hands,
		storage: storage,
		users:   users,
		dicts:   dicts,
		logger:  logger.With("game", g.ID),
		bus:     bus,
		opts:    opts,
	}
}

// Game returns the aggregate the orchestrator owns.
func (o *Orchestrator) Game() *Game {
	return o.game
}

// EventBus returns the bus engine events are published on.
func (o *Orchestrator) EventBus() EventBus {
	return o.bus
}

// Configure sets one configuration field. Each field may be set exactly
// once and the order is irrelevant; all four must be set before Start.
func (o *Orchestrator) SetMode(ctx context.Context, mode Mode) error {
	if err := o.game.SetMode(mode); err != nil {
		return err
	}
	return o.persist(ctx)
}

// SetTargetScore configures the number of won rounds that finishes the game.
func (o *Orchestrator) SetTargetScore(ctx context.Context, target int) error {
	if err := o.game.SetTargetScore(target); err != nil {
		return err
	}
	return o.persist(ctx)
}

// SetMaxPlayers configures the roster capacity.
func (o *Orchestrator) SetMaxPlayers(ctx context.Context, max int) error {
	if err := o.game.SetMaxPlayers(max); err != nil {
		return err
	}
	return o.persist(ctx)
}

// SetDictionary configures the card dictionary, validating it exists.
func (o *Orchestrator) SetDictionary(ctx context.Context, dictionaryID string) error {
	if o.game.DictionaryID != "" {
		return apperr.New(apperr.CodeGameAlreadyConfigured, "dictionary already set")
	}
	if _, err := o.dicts.GetByID(ctx, dictionaryID); err != nil {
		return err
	}
	if err := o.game.SetDictionary(dictionaryID); err != nil {
		return err
	}
	return o.persist(ctx)
}

// AddPlayer creates a player for the given user. Joining is only possible
// while the game is in CREATED status and the roster has room.
func (o *Orchestrator) AddPlayer(ctx context.Context, userID string) (*Player, error) {
	if o.game.Status != StatusCreated {
		return nil, apperr.Newf(apperr.CodeGameAlreadyStarted, "game %s already started", o.game.ID)
	}
	if o.game.MaxPlayers > 0 && len(o.game.Players) >= o.game.MaxPlayers {
		return nil, apperr.Newf(apperr.CodeGameRosterFull, "game %s already has %d players", o.game.ID, o.game.MaxPlayers)
	}
	if _, ok := o.game.PlayerByUserID(userID); ok {
		return nil, apperr.Newf(apperr.CodePlayerAlreadyExists, "user %s already joined game %s", userID, o.game.ID)
	}

	user, err := o.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := NewPlayer(uuid.NewString(), user.ID)
	o.game.Players = append(o.game.Players, p)

	o.logger.Info("Player joined", "player", p.ID, "user", user.ID, "roster", len(o.game.Players))
	if err := o.persist(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Start moves the game to STARTED: it builds the shuffled card pool from
// the dictionary, deals every player an initial reserve and starts the
// first round. All validation happens before any mutation.
func (o *Orchestrator) Start(ctx context.Context) error {
	if o.game.Status == StatusStarted {
		return apperr.Newf(apperr.CodeGameAlreadyStarted, "game %s already started", o.game.ID)
	}
	if o.game.Status == StatusFinished {
		return apperr.Newf(apperr.CodeGameFinished, "game %s is finished", o.game.ID)
	}
	if !o.game.Configured() {
		return apperr.Newf(apperr.CodeGameNotConfigured, "game %s is missing configuration", o.game.ID)
	}
	if len(o.game.Players) < o.opts.MinPlayers {
		return apperr.Newf(apperr.CodeGameNotFilled, "game %s has %d of %d required players", o.game.ID, len(o.game.Players), o.opts.MinPlayers)
	}

	prompts, err := o.dicts.CardsByDictionaryAndKind(ctx, o.game.DictionaryID, card.Prompt)
	if err != nil {
		return err
	}
	responses, err := o.dicts.CardsByDictionaryAndKind(ctx, o.game.DictionaryID, card.Response)
	if err != nil {
		return err
	}

	reservePerPlayer := len(responses) / len(o.game.Players)
	if len(prompts) == 0 || reservePerPlayer < o.opts.HandSize {
		return apperr.Wrap(apperr.CodeGameNotFilled, "dictionary cannot supply the configured player count",
			apperr.Newf(apperr.CodeDictionaryNotFilled, "dictionary %s has %d prompts and %d responses for %d players",
				o.game.DictionaryID, len(prompts), len(responses), len(o.game.Players)))
	}

	seed := o.opts.Seed
	if seed == 0 {
		seed = rand.Int64()
	}
	pool := card.NewPool(randutil.New(seed), append(append([]card.Card(nil), prompts...), responses...))
	o.game.Pool = pool

	for _, p := range o.game.Players {
		dealt := o.hands.DealInitial(pool, p, reservePerPlayer)
		o.logger.Debug("Dealt initial reserve", "player", p.ID, "dealt", dealt)
	}

	o.game.Status = StatusStarted
	o.logger.Info("Game started", "players", len(o.game.Players), "mode", o.game.Mode, "target", o.game.TargetScore)
	o.bus.Publish(NewGameStartedEvent(o.game.ID, len(o.game.Players), o.game.Mode))

	if err := o.rounds.StartRound(); err != nil {
		return err
	}
	return o.persist(ctx)
}

// PlayCard submits a response card for the player backed by userID.
func (o *Orchestrator) PlayCard(ctx context.Context, userID, cardID string) error {
	if o.game.Status != StatusStarted {
		return apperr.Newf(apperr.CodeGameNotStarted, "game %s is not in progress", o.game.ID)
	}
	p, ok := o.game.PlayerByUserID(userID)
	if !ok {
		return apperr.Newf(apperr.CodePlayerNotFound, "user %s has no player in game %s", userID, o.game.ID)
	}
	if err := o.rounds.Submit(p.ID, cardID); err != nil {
		return err
	}
	return o.persist(ctx)
}

// CastJudgment records a vote or judge pick for the player backed by userID.
func (o *Orchestrator) CastJudgment(ctx context.Context, userID, cardID string) error {
	if o.game.Status != StatusStarted {
		return apperr.Newf(apperr.CodeGameNotStarted, "game %s is not in progress", o.game.ID)
	}
	p, ok := o.game.PlayerByUserID(userID)
	if !ok {
		return apperr.Newf(apperr.CodePlayerNotFound, "user %s has no player in game %s", userID, o.game.ID)
	}
	if err := o.rounds.Judge(p.ID, cardID); err != nil {
		return err
	}
	return o.persist(ctx)
}

// RoundState returns the current round's phase, or false when no round is
// active.
func (o *Orchestrator) RoundState() (RoundState, bool) {
	if o.game.Table == nil {
		return 0, false
	}
	return o.game.Table.State, true
}

// EndRound resolves the current round, applies the score and either
// finishes the game or starts the next round.
func (o *Orchestrator) EndRound(ctx context.Context) (*RoundResult, error) {
	if o.game.Status != StatusStarted {
		return nil, apperr.Newf(apperr.CodeGameNotStarted, "game %s is not in progress", o.game.ID)
	}

	result, err := o.rounds.Resolve()
	if err != nil {
		return nil, err
	}

	if result.Winner.Score >= o.game.TargetScore {
		o.game.Status = StatusFinished
		result.GameFinished = true
		o.logger.Info("Game finished", "winner", result.Winner.ID, "score", result.Winner.Score)
		o.bus.Publish(NewGameFinishedEvent(o.game.ID, result.Winner.ID, result.Winner.Score))
		if err := o.persist(ctx); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := o.rounds.StartRound(); err != nil {
		// An exhausted prompt pool ends the game's continuation; surface
		// it after persisting what resolved.
		if perr := o.persist(ctx); perr != nil {
			return nil, perr
		}
		return nil, err
	}
	if err := o.persist(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the game and all its players from storage.
func (o *Orchestrator) Delete(ctx context.Context) error {
	return o.storage.DeleteGame(ctx, o.game.ID)
}

// persist saves the aggregate and adopts the returned snapshot as
// canonical.
func (o *Orchestrator) persist(ctx context.Context) error {
	updated, err := o.storage.UpdateGame(ctx, o.game)
	if err != nil {
		return err
	}
	if updated != nil {
		o.game = updated
		o.rounds.game = updated
	}
	return nil
}
