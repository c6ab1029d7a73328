package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/card"
)

func TestStartRoundTopsUpEveryHand(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeOpenVote, 3)
	require.NoError(t, orch.Start(context.Background()))

	g := orch.Game()
	require.NotNil(t, g.Table)
	assert.Equal(t, 1, g.Table.Seq)
	assert.Equal(t, AwaitingSubmissions, g.Table.State)
	assert.Equal(t, card.Prompt, g.Table.Prompt.Kind)
	for _, p := range g.Players {
		assert.Len(t, p.Hand, 5)
	}
}

func TestJudgeRotatesAcrossRounds(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeJudge, 3)
	require.NoError(t, orch.Start(context.Background()))

	g := orch.Game()
	judges := []string{g.Table.JudgeID}
	for i := 0; i < 2; i++ {
		playFullRound(t, orch)
		require.NotNil(t, g.Table)
		judges = append(judges, g.Table.JudgeID)
	}

	assert.Equal(t, g.Players[0].ID, judges[0])
	assert.Equal(t, g.Players[1].ID, judges[1])
	assert.Equal(t, g.Players[2].ID, judges[2])
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeOpenVote, 3)
	ctx := context.Background()
	require.NoError(t, orch.Start(ctx))
	g := orch.Game()
	p1 := g.Players[0]

	// Unknown user has no player in the round.
	err := orch.PlayCard(ctx, "stranger", p1.Hand[0].ID)
	assert.Equal(t, apperr.CodePlayerNotFound, apperr.GetCode(err))

	// The card must come from the player's own hand.
	other := g.Players[1].Hand[0]
	err = orch.PlayCard(ctx, p1.UserID, other.ID)
	assert.Equal(t, apperr.CodeCardNotInHand, apperr.GetCode(err))

	// A second submission in the same round is rejected and the hand is
	// left untouched.
	require.NoError(t, orch.PlayCard(ctx, p1.UserID, p1.Hand[0].ID))
	handAfter := len(p1.Hand)
	err = orch.PlayCard(ctx, p1.UserID, p1.Hand[0].ID)
	assert.Equal(t, apperr.CodePlayerAlreadyPlayed, apperr.GetCode(err))
	assert.Len(t, p1.Hand, handAfter)
	assert.Equal(t, 1, g.Table.SubmissionCount())
}

func TestJudgeCannotSubmitInJudgeMode(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeJudge, 3)
	ctx := context.Background()
	require.NoError(t, orch.Start(ctx))
	g := orch.Game()

	judge, ok := g.PlayerByID(g.Table.JudgeID)
	require.True(t, ok)
	err := orch.PlayCard(ctx, judge.UserID, judge.Hand[0].ID)
	assert.Equal(t, apperr.CodePlayerNotInRound, apperr.GetCode(err))
}

func TestSubmissionsCloseAutomatically(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeJudge, 3)
	ctx := context.Background()
	require.NoError(t, orch.Start(ctx))
	g := orch.Game()

	submitted := 0
	for _, p := range g.Players {
		if p.ID == g.Table.JudgeID {
			continue
		}
		require.NoError(t, orch.PlayCard(ctx, p.UserID, p.Hand[0].ID))
		submitted++
		if submitted < 2 {
			assert.Equal(t, AwaitingSubmissions, g.Table.State)
		}
	}
	// All players but the judge have played; judgment opens by itself.
	assert.Equal(t, AwaitingJudgment, g.Table.State)
}

func TestJudgmentRejectedDuringSubmissions(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeOpenVote, 3)
	ctx := context.Background()
	require.NoError(t, orch.Start(ctx))
	g := orch.Game()

	err := orch.CastJudgment(ctx, g.Players[0].UserID, "whatever")
	assert.Equal(t, apperr.CodeRoundWrongState, apperr.GetCode(err))
}

func TestOwnCardVoteRejectedInOpenVote(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeOpenVote, 3)
	ctx := context.Background()
	require.NoError(t, orch.Start(ctx))
	g := orch.Game()

	for _, p := range g.Players {
		require.NoError(t, orch.PlayCard(ctx, p.UserID, p.Hand[0].ID))
	}

	own := g.Table.Submissions()[0]
	voter, ok := g.PlayerByID(own.PlayerID)
	require.True(t, ok)
	err := orch.CastJudgment(ctx, voter.UserID, own.Card.ID)
	assert.Equal(t, apperr.CodeCardNotPlayed, apperr.GetCode(err))
}

func TestResolveUnreachableBeforeThreshold(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeOpenVote, 3)
	ctx := context.Background()
	require.NoError(t, orch.Start(ctx))
	g := orch.Game()

	// No submissions yet.
	_, err := orch.EndRound(ctx)
	assert.Equal(t, apperr.CodeRoundWrongState, apperr.GetCode(err))

	for _, p := range g.Players {
		require.NoError(t, orch.PlayCard(ctx, p.UserID, p.Hand[0].ID))
	}

	// Submissions in but judgments incomplete.
	subs := g.Table.Submissions()
	require.NoError(t, orch.CastJudgment(ctx, g.Players[0].UserID, subs[1].Card.ID))
	_, err = orch.EndRound(ctx)
	assert.Equal(t, apperr.CodeRoundWrongState, apperr.GetCode(err))
}

func TestResolveAwardsExactlyOnePoint(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(t, ModeOpenVote, 3)
	require.NoError(t, orch.Start(context.Background()))
	g := orch.Game()

	result := playFullRound(t, orch)
	require.NotNil(t, result.Winner)
	assert.Equal(t, 1, result.Winner.Score)

	total := 0
	for _, p := range g.Players {
		total += p.Score
	}
	assert.Equal(t, 1, total, "exactly one player scores per round")
	require.NotNil(t, g.Table, "next round starts after a non-terminal resolve")
	assert.Equal(t, 2, g.Table.Seq)
}

func TestPromptExhaustionIsFatal(t *testing.T) {
	t.Parallel()
	g := New("g1", "room1", "creator")
	storage := &fakeStorage{}
	// A single prompt: the first round consumes it, the second cannot
	// start.
	dicts := &fakeDicts{prompts: 1, responses: 120}
	orch := NewOrchestrator(g, storage, &fakeUsers{}, dicts, testLogger(), NewEventBus(), Options{
		MinPlayers: 3, HandSize: 5, Seed: 42,
	})
	ctx := context.Background()
	require.NoError(t, orch.SetMode(ctx, ModeOpenVote))
	require.NoError(t, orch.SetTargetScore(ctx, 3))
	require.NoError(t, orch.SetMaxPlayers(ctx, 4))
	require.NoError(t, orch.SetDictionary(ctx, "d1"))
	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := orch.AddPlayer(ctx, u)
		require.NoError(t, err)
	}
	require.NoError(t, orch.Start(ctx))

	for _, p := range g.Players {
		require.NoError(t, orch.PlayCard(ctx, p.UserID, p.Hand[0].ID))
	}
	subs := g.Table.Submissions()
	for i, p := range g.Players {
		pick := subs[(i+1)%len(subs)]
		require.NoError(t, orch.CastJudgment(ctx, p.UserID, pick.Card.ID))
	}

	_, err := orch.EndRound(ctx)
	require.Error(t, err)
	assert.Equal(t, apperr.CodePoolExhausted, apperr.GetCode(err))
	assert.True(t, apperr.Fatal(err))
}
