package server

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
	"github.com/partydeck/partydeck/internal/store/memstore"
)

type captureBroadcaster struct {
	mu       sync.Mutex
	messages []*Message
	cleared  []string
}

func (b *captureBroadcaster) BroadcastToRoom(_ string, msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *captureBroadcaster) ClearRoom(roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared = append(b.cleared, roomID)
}

func (b *captureBroadcaster) clearedRooms() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.cleared...)
}

func (b *captureBroadcaster) types() []MessageType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]MessageType, 0, len(b.messages))
	for _, m := range b.messages {
		out = append(out, m.Type)
	}
	return out
}

// newTestService seeds a memstore with three users and a filled dictionary
// and returns a service wired to it.
func newTestService(t *testing.T) (*GameService, string, *captureBroadcaster) {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()

	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := mem.Users().CreateOrReactivate(ctx, u, "user-"+u)
		require.NoError(t, err)
	}

	dict, err := mem.Dictionaries().Create(ctx, "base", "u1", true)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, err := mem.Dictionaries().AddCard(ctx, dict.ID, card.Prompt, "prompt "+string(rune('a'+i)))
		require.NoError(t, err)
	}
	for i := 0; i < 60; i++ {
		_, err := mem.Dictionaries().AddCard(ctx, dict.ID, card.Response, "response "+string(rune('a'+i%26))+string(rune('a'+i/26)))
		require.NoError(t, err)
	}

	engineLogger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	svc := NewGameService(mem, mem.Users(), mem.Rooms(), mem.Dictionaries(),
		zerolog.Nop(), engineLogger, quartz.NewReal(), ServiceConfig{Seed: 42})

	broadcaster := &captureBroadcaster{}
	svc.SetBroadcaster(broadcaster)
	return svc, dict.ID, broadcaster
}

func setupStartedGame(t *testing.T, svc *GameService, dictID string, targetScore int) {
	t.Helper()
	ctx := context.Background()

	_, err := svc.CreateGame(ctx, "room1", "Room One", "u1")
	require.NoError(t, err)
	require.NoError(t, svc.ConfigureGame(ctx, "room1", "u1", GameConfig{
		Mode:        "open-vote",
		TargetScore: targetScore,
		MaxPlayers:  4,
		Dictionary:  dictID,
	}))
	require.NoError(t, svc.JoinGame(ctx, "room1", "u2"))
	require.NoError(t, svc.JoinGame(ctx, "room1", "u3"))
	require.NoError(t, svc.StartGame(ctx, "room1", "u1"))
}

func TestCreateGamePerRoomIsExclusive(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	g, err := svc.CreateGame(ctx, "room1", "Room One", "u1")
	require.NoError(t, err)
	require.Len(t, g.Players, 1, "the creator joins their own game")
	assert.Equal(t, "u1", g.Players[0].UserID)

	_, err = svc.CreateGame(ctx, "room1", "Room One", "u2")
	assert.Equal(t, apperr.CodeGameAlreadyExists, apperr.GetCode(err))
}

func TestOnlyCreatorMayConfigureStartAndDelete(t *testing.T) {
	t.Parallel()
	svc, dictID, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateGame(ctx, "room1", "Room One", "u1")
	require.NoError(t, err)

	err = svc.ConfigureGame(ctx, "room1", "u2", GameConfig{Mode: "judge"})
	require.Error(t, err)

	require.NoError(t, svc.ConfigureGame(ctx, "room1", "u1", GameConfig{
		Mode: "open-vote", TargetScore: 2, MaxPlayers: 4, Dictionary: dictID,
	}))
	require.NoError(t, svc.JoinGame(ctx, "room1", "u2"))
	require.NoError(t, svc.JoinGame(ctx, "room1", "u3"))

	require.Error(t, svc.StartGame(ctx, "room1", "u3"))
	require.NoError(t, svc.StartGame(ctx, "room1", "u1"))

	require.Error(t, svc.DeleteGame(ctx, "room1", "u2"))
	require.NoError(t, svc.DeleteGame(ctx, "room1", "u1"))

	_, err = svc.GameState(ctx, "room1", "u1")
	assert.Equal(t, apperr.CodeGameNotFound, apperr.GetCode(err))
}

func TestConfigureTwiceFails(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateGame(ctx, "room1", "Room One", "u1")
	require.NoError(t, err)
	require.NoError(t, svc.ConfigureGame(ctx, "room1", "u1", GameConfig{Mode: "open-vote"}))

	err = svc.ConfigureGame(ctx, "room1", "u1", GameConfig{Mode: "judge"})
	assert.Equal(t, apperr.CodeGameAlreadyConfigured, apperr.GetCode(err))

	err = svc.ConfigureGame(ctx, "room1", "u1", GameConfig{Dictionary: "missing"})
	assert.Equal(t, apperr.CodeDictionaryNotFound, apperr.GetCode(err))
}

func TestGameStateHidesOtherHands(t *testing.T) {
	t.Parallel()
	svc, dictID, _ := newTestService(t)
	setupStartedGame(t, svc, dictID, 2)
	ctx := context.Background()

	state, err := svc.GameState(ctx, "room1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "started", state.Status)
	require.NotNil(t, state.Round)
	assert.Equal(t, "awaiting-submissions", state.Round.State)
	assert.Empty(t, state.Round.Table, "submissions are hidden while the round is open")
	assert.Len(t, state.Hand, 5)
	for _, p := range state.Players {
		assert.Equal(t, 5, p.HandSize)
	}

	// A spectator sees the public state but no hand.
	spectator, err := svc.GameState(ctx, "room1", "u9")
	require.NoError(t, err)
	assert.Empty(t, spectator.Hand)
}

// playRound drives one full open-vote round through the service surface,
// the way connected clients would: read state, play, read the table, vote.
func playRound(t *testing.T, svc *GameService) {
	t.Helper()
	ctx := context.Background()
	users := []string{"u1", "u2", "u3"}

	played := make(map[string]string)
	for _, u := range users {
		state, err := svc.GameState(ctx, "room1", u)
		require.NoError(t, err)
		require.NotEmpty(t, state.Hand)
		played[u] = state.Hand[0].ID
		require.NoError(t, svc.PlayCard(ctx, "room1", u, state.Hand[0].ID))
	}

	state, err := svc.GameState(ctx, "room1", "u1")
	require.NoError(t, err)
	require.NotNil(t, state.Round)
	require.Equal(t, "awaiting-judgment", state.Round.State)
	require.Len(t, state.Round.Table, 3)

	for _, u := range users {
		pick := state.Round.Table[0].ID
		if pick == played[u] {
			pick = state.Round.Table[1].ID
		}
		require.NoError(t, svc.CastVote(ctx, "room1", u, pick))
	}
}

func TestFullGameThroughService(t *testing.T) {
	t.Parallel()
	svc, dictID, broadcaster := newTestService(t)
	setupStartedGame(t, svc, dictID, 2)
	ctx := context.Background()

	finished := false
	for i := 0; i < 6 && !finished; i++ {
		playRound(t, svc)
		state, err := svc.GameState(ctx, "room1", "u1")
		require.NoError(t, err)
		finished = state.Status == "finished"
	}
	require.True(t, finished, "a target score of 2 ends within a handful of rounds")

	state, err := svc.GameState(ctx, "room1", "u1")
	require.NoError(t, err)
	assert.Nil(t, state.Round)

	best := 0
	for _, p := range state.Players {
		if p.Score > best {
			best = p.Score
		}
	}
	assert.Equal(t, 2, best)

	types := broadcaster.types()
	assert.Contains(t, types, MessageTypeGameStarted)
	assert.Contains(t, types, MessageTypeRoundStarted)
	assert.Contains(t, types, MessageTypeCardPlayed)
	assert.Contains(t, types, MessageTypeVoteCast)
	assert.Contains(t, types, MessageTypeRoundEnded)
	assert.Contains(t, types, MessageTypeGameFinished)
}

func TestAuthenticateRegistersAndLogsIn(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// An unknown id is registered on first authentication.
	user, err := svc.Authenticate(ctx, "fresh", "Fresh One")
	require.NoError(t, err)
	assert.Equal(t, "fresh", user.ID)
	assert.Equal(t, "Fresh One", user.Name)

	// Registered users can immediately act.
	_, err = svc.CreateGame(ctx, "room-fresh", "Fresh Room", "fresh")
	require.NoError(t, err)

	// Authenticating an already-active id is a login, not an error, and
	// keeps the stored name.
	user, err = svc.Authenticate(ctx, "fresh", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, "Fresh One", user.Name)
}

func TestDeleteGameNotifiesRoomAndClearsSubscriptions(t *testing.T) {
	t.Parallel()
	svc, dictID, broadcaster := newTestService(t)
	setupStartedGame(t, svc, dictID, 2)
	ctx := context.Background()

	require.NoError(t, svc.DeleteGame(ctx, "room1", "u1"))

	assert.Contains(t, broadcaster.types(), MessageTypeGameDeleted)
	assert.Equal(t, []string{"room1"}, broadcaster.clearedRooms())
}

func TestGamesWithSharedSeedShuffleIndependently(t *testing.T) {
	t.Parallel()
	svc, dictID, _ := newTestService(t)
	ctx := context.Background()

	handIDs := func(roomID string) []string {
		_, err := svc.CreateGame(ctx, roomID, "Room "+roomID, "u1")
		require.NoError(t, err)
		require.NoError(t, svc.ConfigureGame(ctx, roomID, "u1", GameConfig{
			Mode: "open-vote", TargetScore: 2, MaxPlayers: 4, Dictionary: dictID,
		}))
		require.NoError(t, svc.JoinGame(ctx, roomID, "u2"))
		require.NoError(t, svc.JoinGame(ctx, roomID, "u3"))
		require.NoError(t, svc.StartGame(ctx, roomID, "u1"))

		var ids []string
		for _, u := range []string{"u1", "u2", "u3"} {
			state, err := svc.GameState(ctx, roomID, u)
			require.NoError(t, err)
			for _, c := range state.Hand {
				ids = append(ids, c.ID)
			}
		}
		return ids
	}

	// One configured seed, two games: the deals must not match card for
	// card, or every table on the server runs the same deck order.
	assert.NotEqual(t, handIDs("room-a"), handIDs("room-b"))
}

func TestActionsOnUnknownRoom(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.JoinGame(ctx, "nowhere", "u1")
	assert.Equal(t, apperr.CodeGameNotFound, apperr.GetCode(err))
	err = svc.PlayCard(ctx, "nowhere", "u1", "c1")
	assert.Equal(t, apperr.CodeGameNotFound, apperr.GetCode(err))
}

func TestHandleRebuiltFromStorage(t *testing.T) {
	t.Parallel()
	svc, dictID, _ := newTestService(t)
	setupStartedGame(t, svc, dictID, 2)
	ctx := context.Background()

	// Dropping the live handle simulates a restart; the game is rebuilt
	// from its stored snapshot on next access.
	_, ok := svc.Registry().Remove("room1")
	require.True(t, ok)

	state, err := svc.GameState(ctx, "room1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "started", state.Status)
	assert.Len(t, state.Hand, 5)
}
