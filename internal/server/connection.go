package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/partydeck/partydeck/internal/apperr"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	userID      string
	roomID      string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetUser associates this connection with a user
func (c *Connection) SetUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

// GetUser returns the associated user ID
func (c *Connection) GetUser() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom returns the associated room ID
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "user", c.GetUser())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeCreateGame:
		var data CreateGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create game data")
			return
		}
		c.handleCreateGame(data)

	case MessageTypeConfigureGame:
		var data ConfigureGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse configure game data")
			return
		}
		c.handleConfigureGame(data)

	case MessageTypeJoinGame:
		var data JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join game data")
			return
		}
		c.handleJoinGame(data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypePlayCard:
		var data PlayCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play card data")
			return
		}
		c.handlePlayCard(data)

	case MessageTypeCastVote:
		var data CastVoteData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse cast vote data")
			return
		}
		c.handleCastVote(data)

	case MessageTypeGameState:
		var data GameStateRequestData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse game state request")
			return
		}
		c.handleGameState(data)

	case MessageTypeDeleteGame:
		var data DeleteGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse delete game data")
			return
		}
		c.handleDeleteGame(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// sendServiceError maps a service error onto the wire, carrying the typed
// code and whether the client may simply retry.
func (c *Connection) sendServiceError(err error) {
	errorMsg, merr := NewMessage(MessageTypeError, ErrorData{
		Code:      string(apperr.GetCode(err)),
		Message:   err.Error(),
		Retryable: apperr.Retryable(err),
	})
	if merr != nil {
		c.logger.Error("Failed to create error message", "error", merr)
		return
	}
	_ = c.SendMessage(errorMsg)
}

func (c *Connection) sendActionOK(action, roomID string) {
	response, _ := NewMessage(MessageTypeActionOK, ActionOKData{Action: action, RoomID: roomID})
	_ = c.SendMessage(response)
}

// authedUser returns the connection's user, reporting to the client when
// there is none.
func (c *Connection) authedUser() (string, bool) {
	userID := c.GetUser()
	if userID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return "", false
	}
	return userID, true
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "userId", data.UserID)

	if data.UserID == "" {
		c.sendError("invalid_auth", "User id required")
		return
	}

	user, err := c.gameService.Authenticate(c.ctx, data.UserID, data.UserName)
	if err != nil {
		c.sendServiceError(err)
		return
	}

	c.SetUser(user.ID)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		UserID:   user.ID,
		UserName: user.Name,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateGame(data CreateGameData) {
	c.logger.Info("Create game request", "roomId", data.RoomID, "user", c.GetUser())

	userID, ok := c.authedUser()
	if !ok {
		return
	}

	g, err := c.gameService.CreateGame(c.ctx, data.RoomID, data.RoomName, userID)
	if err != nil {
		c.sendServiceError(err)
		return
	}

	c.SetRoom(data.RoomID)

	response, _ := NewMessage(MessageTypeGameCreated, gameStateFor(g, userID))
	_ = c.SendMessage(response)
}

func (c *Connection) handleConfigureGame(data ConfigureGameData) {
	userID, ok := c.authedUser()
	if !ok {
		return
	}

	err := c.gameService.ConfigureGame(c.ctx, data.RoomID, userID, GameConfig{
		Mode:        data.Mode,
		TargetScore: data.TargetScore,
		MaxPlayers:  data.MaxPlayers,
		Dictionary:  data.Dictionary,
	})
	if err != nil {
		c.sendServiceError(err)
		return
	}
	c.sendActionOK("configure_game", data.RoomID)
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	c.logger.Info("Join game request", "roomId", data.RoomID, "user", c.GetUser())

	userID, ok := c.authedUser()
	if !ok {
		return
	}

	if err := c.gameService.JoinGame(c.ctx, data.RoomID, userID); err != nil {
		c.sendServiceError(err)
		return
	}

	c.SetRoom(data.RoomID)

	state, err := c.gameService.GameState(c.ctx, data.RoomID, userID)
	if err != nil {
		c.sendServiceError(err)
		return
	}
	response, _ := NewMessage(MessageTypeGameJoined, state)
	_ = c.SendMessage(response)
}

func (c *Connection) handleStartGame(data StartGameData) {
	userID, ok := c.authedUser()
	if !ok {
		return
	}

	if err := c.gameService.StartGame(c.ctx, data.RoomID, userID); err != nil {
		c.sendServiceError(err)
		return
	}
	c.sendActionOK("start_game", data.RoomID)
}

func (c *Connection) handlePlayCard(data PlayCardData) {
	userID, ok := c.authedUser()
	if !ok {
		return
	}

	if err := c.gameService.PlayCard(c.ctx, data.RoomID, userID, data.CardID); err != nil {
		c.sendServiceError(err)
		return
	}
	c.sendActionOK("play_card", data.RoomID)
}

func (c *Connection) handleCastVote(data CastVoteData) {
	userID, ok := c.authedUser()
	if !ok {
		return
	}

	if err := c.gameService.CastVote(c.ctx, data.RoomID, userID, data.CardID); err != nil {
		c.sendServiceError(err)
		return
	}
	c.sendActionOK("cast_vote", data.RoomID)
}

func (c *Connection) handleGameState(data GameStateRequestData) {
	userID, ok := c.authedUser()
	if !ok {
		return
	}

	state, err := c.gameService.GameState(c.ctx, data.RoomID, userID)
	if err != nil {
		c.sendServiceError(err)
		return
	}
	response, _ := NewMessage(MessageTypeGameStateData, state)
	_ = c.SendMessage(response)
}

func (c *Connection) handleDeleteGame(data DeleteGameData) {
	userID, ok := c.authedUser()
	if !ok {
		return
	}

	// DeleteGame broadcasts game_deleted to the room and clears every
	// member's association, this connection included.
	if err := c.gameService.DeleteGame(c.ctx, data.RoomID, userID); err != nil {
		c.sendServiceError(err)
		return
	}
	c.SetRoom("")
	c.sendActionOK("delete_game", data.RoomID)
}
