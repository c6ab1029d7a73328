package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partydeck/partydeck/internal/card"
	"github.com/partydeck/partydeck/internal/store/memstore"
)

// newWSTestServer builds a full server over a memstore seeded with a
// dictionary but no users, so clients have to register through auth like
// real ones do. Returns the server, a ws:// URL and the dictionary id.
func newWSTestServer(t *testing.T) (*Server, string, string) {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()

	dict, err := mem.Dictionaries().Create(ctx, "base", "system", true)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, err := mem.Dictionaries().AddCard(ctx, dict.ID, card.Prompt, fmt.Sprintf("prompt %d", i))
		require.NoError(t, err)
	}
	for i := 0; i < 60; i++ {
		_, err := mem.Dictionaries().AddCard(ctx, dict.ID, card.Response, fmt.Sprintf("response %d", i))
		require.NoError(t, err)
	}

	discard := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	svc := NewGameService(mem, mem.Users(), mem.Rooms(), mem.Dictionaries(),
		zerolog.Nop(), discard, quartz.NewReal(), ServiceConfig{})
	srv := NewServer("127.0.0.1:0", discard, svc)
	go srv.run()

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		ts.Close()
	})

	return srv, "ws" + strings.TrimPrefix(ts.URL, "http"), dict.ID
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, wsURL string) *wsClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msgType MessageType, data any) {
	c.t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// await reads messages until one of the wanted type arrives, skipping
// interleaved broadcasts. It fails the test after a deadline.
func (c *wsClient) await(want MessageType) *Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for i := 0; i < 50; i++ {
		var msg Message
		require.NoError(c.t, c.conn.ReadJSON(&msg), "waiting for %s", want)
		if msg.Type == MessageTypeError {
			var e ErrorData
			_ = json.Unmarshal(msg.Data, &e)
			c.t.Fatalf("got error %s (%s) while waiting for %s", e.Code, e.Message, want)
		}
		if msg.Type == want {
			return &msg
		}
	}
	c.t.Fatalf("no %s within 50 messages", want)
	return nil
}

func (c *wsClient) auth(userID, userName string) {
	c.t.Helper()
	c.send(MessageTypeAuth, AuthData{UserID: userID, UserName: userName})
	var resp AuthResponseData
	decodeData(c.t, c.await(MessageTypeAuthResponse), &resp)
	require.True(c.t, resp.Success)
	require.Equal(c.t, userID, resp.UserID)
}

func (c *wsClient) state(roomID string) *GameStateData {
	c.t.Helper()
	c.send(MessageTypeGameState, GameStateRequestData{RoomID: roomID})
	var state GameStateData
	decodeData(c.t, c.await(MessageTypeGameStateData), &state)
	return &state
}

func decodeData(t *testing.T, msg *Message, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(msg.Data, out))
}

// TestWebSocketGameFlow drives a full game over the wire: three previously
// unknown clients register through auth, create and fill a room, play an
// open-vote round to the target score and tear the game down, asserting the
// broadcasts every room member sees along the way.
func TestWebSocketGameFlow(t *testing.T) {
	srv, wsURL, dictID := newWSTestServer(t)
	const room = "table-1"

	alpha := dialWS(t, wsURL)
	beta := dialWS(t, wsURL)
	gamma := dialWS(t, wsURL)

	alpha.auth("u-alpha", "Alpha")
	beta.auth("u-beta", "Beta")
	gamma.auth("u-gamma", "Gamma")

	alpha.send(MessageTypeCreateGame, CreateGameData{RoomID: room, RoomName: "Table One"})
	var created GameStateData
	decodeData(t, alpha.await(MessageTypeGameCreated), &created)
	require.Len(t, created.Players, 1)
	assert.Equal(t, "u-alpha", created.Players[0].UserID)

	alpha.send(MessageTypeConfigureGame, ConfigureGameData{
		RoomID: room, Mode: "open-vote", TargetScore: 1, MaxPlayers: 3, Dictionary: dictID,
	})
	alpha.await(MessageTypeActionOK)

	beta.send(MessageTypeJoinGame, JoinGameData{RoomID: room})
	beta.await(MessageTypeGameJoined)
	gamma.send(MessageTypeJoinGame, JoinGameData{RoomID: room})
	gamma.await(MessageTypeGameJoined)

	alpha.send(MessageTypeStartGame, StartGameData{RoomID: room})
	for _, c := range []*wsClient{alpha, beta, gamma} {
		c.await(MessageTypeGameStarted)
		var round RoundStartedData
		decodeData(t, c.await(MessageTypeRoundStarted), &round)
		assert.Equal(t, 1, round.Seq)
	}

	// Submission order is alpha, beta, gamma, so the revealed table leads
	// with alpha's card.
	clients := []*wsClient{alpha, beta, gamma}
	played := make(map[*wsClient]string)
	for _, c := range clients {
		state := c.state(room)
		require.Len(t, state.Hand, 5)
		require.Empty(t, state.Round.Table, "submissions stay hidden while the round is open")
		played[c] = state.Hand[0].ID
		c.send(MessageTypePlayCard, PlayCardData{RoomID: room, CardID: state.Hand[0].ID})
		c.await(MessageTypeActionOK)
	}

	// Everyone votes for the first table card that is not their own, which
	// lands two votes on alpha's submission. The final vote resolves the
	// round, so its broadcasts land before the voter's own ack; waiting on
	// game_finished below covers both.
	for _, c := range clients {
		state := c.state(room)
		require.Equal(t, "awaiting-judgment", state.Round.State)
		require.Len(t, state.Round.Table, 3)
		pick := state.Round.Table[0].ID
		if pick == played[c] {
			pick = state.Round.Table[1].ID
		}
		c.send(MessageTypeCastVote, CastVoteData{RoomID: room, CardID: pick})
	}

	for _, c := range clients {
		var finished GameFinishedData
		decodeData(t, c.await(MessageTypeGameFinished), &finished)
		assert.Equal(t, 1, finished.Score)
	}
	assert.ElementsMatch(t, []string{"u-alpha", "u-beta", "u-gamma"}, srv.GetRoomUsers(room))

	alpha.send(MessageTypeDeleteGame, DeleteGameData{RoomID: room})
	for _, c := range clients {
		c.await(MessageTypeGameDeleted)
	}
	alpha.await(MessageTypeActionOK)
	assert.Empty(t, srv.GetRoomUsers(room), "deleting the game drops every member's room association")
}

// TestWebSocketRejectsUnauthenticated covers the gate every game action
// passes through before touching the service.
func TestWebSocketRejectsUnauthenticated(t *testing.T) {
	_, wsURL, _ := newWSTestServer(t)

	c := dialWS(t, wsURL)
	c.send(MessageTypeCreateGame, CreateGameData{RoomID: "r1"})

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, c.conn.ReadJSON(&msg))
	require.Equal(t, MessageTypeError, msg.Type)
	var e ErrorData
	decodeData(t, &msg, &e)
	assert.Equal(t, "not_authenticated", e.Code)
}
