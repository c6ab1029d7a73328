package game

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// fakeStorage accepts every write and hands the aggregate back unchanged.
type fakeStorage struct {
	updates int
	deleted []string
}

func (s *fakeStorage) CreateGame(_ context.Context, g *Game) (*Game, error) { return g, nil }
func (s *fakeStorage) UpdateGame(_ context.Context, g *Game) (*Game, error) {
	s.updates++
	return g, nil
}
func (s *fakeStorage) DeleteGame(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *fakeStorage) FindGameByID(_ context.Context, id string) (*Game, error) {
	return nil, apperr.Newf(apperr.CodeGameNotFound, "game %s not found", id)
}
func (s *fakeStorage) FindGameByRoomID(_ context.Context, roomID string) (*Game, error) {
	return nil, apperr.Newf(apperr.CodeGameNotFound, "no game in room %s", roomID)
}

type fakeUsers struct {
	inactive map[string]bool
}

func (u *fakeUsers) GetByID(_ context.Context, id string) (User, error) {
	if u.inactive[id] {
		return User{}, apperr.Newf(apperr.CodeUserNotActive, "user %s is not active", id)
	}
	return User{ID: id, Name: "user-" + id, Active: true}, nil
}

type fakeDicts struct {
	prompts   int
	responses int
}

func (d *fakeDicts) GetByID(_ context.Context, id string) (Dictionary, error) {
	if id == "missing" {
		return Dictionary{}, apperr.Newf(apperr.CodeDictionaryNotFound, "dictionary %s not found", id)
	}
	return Dictionary{ID: id, Name: "dict-" + id}, nil
}

func (d *fakeDicts) CardsByDictionaryAndKind(_ context.Context, dictID string, kind card.Kind) ([]card.Card, error) {
	count := d.responses
	if kind == card.Prompt {
		count = d.prompts
	}
	cards := make([]card.Card, 0, count)
	for i := 0; i < count; i++ {
		cards = append(cards, card.Card{
			ID:           fmt.Sprintf("%s-%s-%d", dictID, kind, i),
			Kind:         kind,
			Text:         fmt.Sprintf("%s %d", kind, i),
			DictionaryID: dictID,
		})
	}
	return cards, nil
}

// newTestOrchestrator builds an orchestrator over fakes with a
// deterministic shuffle seed.
func newTestOrchestrator(t *testing.T, mode Mode, users int) (*Orchestrator, *fakeStorage) {
	t.Helper()

	g := New("g1", "room1", "creator")
	storage := &fakeStorage{}
	dicts := &fakeDicts{prompts: 40, responses: 120}
	orch := NewOrchestrator(g, storage, &fakeUsers{}, dicts, testLogger(), NewEventBus(), Options{
		MinPlayers: 3,
		HandSize:   5,
		Seed:       42,
	})

	ctx := context.Background()
	require.NoError(t, orch.SetMode(ctx, mode))
	require.NoError(t, orch.SetTargetScore(ctx, 3))
	require.NoError(t, orch.SetMaxPlayers(ctx, 4))
	require.NoError(t, orch.SetDictionary(ctx, "d1"))

	for i := 0; i < users; i++ {
		_, err := orch.AddPlayer(ctx, fmt.Sprintf("u%d", i+1))
		require.NoError(t, err)
	}
	return orch, storage
}

// playFullRound drives one round to resolution: everyone eligible submits
// their first hand card, then judgments all land on the same submission.
func playFullRound(t *testing.T, orch *Orchestrator) *RoundResult {
	t.Helper()
	ctx := context.Background()
	g := orch.Game()
	table := g.Table
	require.NotNil(t, table)

	for _, p := range g.Players {
		if g.Mode == ModeJudge && p.ID == table.JudgeID {
			continue
		}
		require.NoError(t, orch.PlayCard(ctx, p.UserID, p.Hand[0].ID))
	}
	require.Equal(t, AwaitingJudgment, table.State)

	target := table.Submissions()[0]
	if g.Mode == ModeJudge {
		judge, ok := g.PlayerByID(table.JudgeID)
		require.True(t, ok)
		require.NoError(t, orch.CastJudgment(ctx, judge.UserID, target.Card.ID))
	} else {
		for _, p := range g.Players {
			pick := target
			if p.ID == target.PlayerID {
				// Players cannot vote for their own card.
				pick = table.Submissions()[1]
			}
			require.NoError(t, orch.CastJudgment(ctx, p.UserID, pick.Card.ID))
		}
	}

	result, err := orch.EndRound(ctx)
	require.NoError(t, err)
	return result
}
