package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants used for the client-server protocol.
const (
	// Client to server messages
	MessageTypeAuth          MessageType = "auth"
	MessageTypeCreateGame    MessageType = "create_game"
	MessageTypeConfigureGame MessageType = "configure_game"
	MessageTypeJoinGame      MessageType = "join_game"
	MessageTypeStartGame     MessageType = "start_game"
	MessageTypePlayCard      MessageType = "play_card"
	MessageTypeCastVote      MessageType = "cast_vote"
	MessageTypeGameState     MessageType = "game_state"
	MessageTypeDeleteGame    MessageType = "delete_game"

	// Server to client messages
	MessageTypeError         MessageType = "error"
	MessageTypeAuthResponse  MessageType = "auth_response"
	MessageTypeGameCreated   MessageType = "game_created"
	MessageTypeGameJoined    MessageType = "game_joined"
	MessageTypeGameStateData MessageType = "game_state_data"
	MessageTypeGameDeleted   MessageType = "game_deleted"
	MessageTypeActionOK      MessageType = "action_ok"

	// Engine events forwarded to rooms
	MessageTypeGameStarted  MessageType = "game_started"
	MessageTypeRoundStarted MessageType = "round_started"
	MessageTypeCardPlayed   MessageType = "card_played"
	MessageTypeVoteCast     MessageType = "vote_cast"
	MessageTypeRoundEnded   MessageType = "round_ended"
	MessageTypeGameFinished MessageType = "game_finished"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
