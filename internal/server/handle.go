package server

import (
	"context"
	"time"

	"github.com/coder/quartz"

	"github.com/partydeck/partydeck/internal/apperr"
	"github.com/partydeck/partydeck/internal/game"
)

// GameHandle guards one game's orchestrator. The engine is not safe for
// concurrent use, so every mutation passes through Do, which serialises
// callers on a single-slot semaphore. Acquisition is bounded: a caller that
// cannot get the slot within the timeout gets a retryable GameBusy error
// instead of queueing forever.
type GameHandle struct {
	roomID  string
	orch    *game.Orchestrator
	sem     chan struct{}
	clock   quartz.Clock
	timeout time.Duration
}

// NewGameHandle wraps an orchestrator for serialised access.
func NewGameHandle(roomID string, orch *game.Orchestrator, clock quartz.Clock, timeout time.Duration) *GameHandle {
	return &GameHandle{
		roomID:  roomID,
		orch:    orch,
		sem:     make(chan struct{}, 1),
		clock:   clock,
		timeout: timeout,
	}
}

// Do runs fn with exclusive access to the game. It fails with a retryable
// GameBusy error when the slot cannot be acquired within the handle's
// timeout, and with the context's error when ctx ends first.
func (h *GameHandle) Do(ctx context.Context, fn func(*game.Orchestrator) error) error {
	timedOut := make(chan struct{})
	timer := h.clock.AfterFunc(h.timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
		return fn(h.orch)
	case <-timedOut:
		return apperr.Newf(apperr.CodeGameBusy, "game in room %s is busy, retry", h.roomID)
	case <-ctx.Done():
		return ctx.Err()
	}
}
