// Package apperr provides the typed domain error taxonomy shared by the
// game engine, the storage layer and the transport layer. Callers branch on
// codes via errors.As/GetCode rather than on error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unexpected internal error.
	CodeUnknown Code = "UNKNOWN"

	// Game errors
	CodeGameNotFound          Code = "GAME_NOT_FOUND"
	CodeGameAlreadyExists     Code = "GAME_ALREADY_EXISTS"
	CodeGameNotConfigured     Code = "GAME_NOT_CONFIGURED"
	CodeGameAlreadyConfigured Code = "GAME_ALREADY_CONFIGURED"
	CodeGameNotStarted        Code = "GAME_NOT_STARTED"
	CodeGameAlreadyStarted    Code = "GAME_ALREADY_STARTED"
	CodeGameNotFilled         Code = "GAME_NOT_FILLED"
	CodeGameRosterFull        Code = "GAME_ROSTER_FULL"
	CodeGameFinished          Code = "GAME_FINISHED"
	CodeGameBusy              Code = "GAME_BUSY"

	// Round errors
	CodeRoundWrongState Code = "ROUND_WRONG_STATE"
	CodeRoundNoWinner   Code = "ROUND_NO_WINNER"

	// Player errors
	CodePlayerNotFound      Code = "PLAYER_NOT_FOUND"
	CodePlayerAlreadyExists Code = "PLAYER_ALREADY_EXISTS"
	CodePlayerNotInRound    Code = "PLAYER_NOT_IN_ROUND"
	CodePlayerAlreadyPlayed Code = "PLAYER_ALREADY_PLAYED"
	CodePlayerAlreadyVoted  Code = "PLAYER_ALREADY_VOTED"

	// Card errors
	CodeCardNotFound      Code = "CARD_NOT_FOUND"
	CodeCardAlreadyExists Code = "CARD_ALREADY_EXISTS"
	CodeCardNotInHand     Code = "CARD_NOT_IN_HAND"
	CodeCardNotPlayed     Code = "CARD_NOT_PLAYED"
	CodePoolExhausted     Code = "CARD_POOL_EXHAUSTED"

	// User errors
	CodeUserNotFound      Code = "USER_NOT_FOUND"
	CodeUserNotActive     Code = "USER_NOT_ACTIVE"
	CodeUserAlreadyExists Code = "USER_ALREADY_EXISTS"

	// Room errors
	CodeRoomNotFound  Code = "ROOM_NOT_FOUND"
	CodeRoomNotActive Code = "ROOM_NOT_ACTIVE"

	// Dictionary errors
	CodeDictionaryNotFound  Code = "DICTIONARY_NOT_FOUND"
	CodeDictionaryNotFilled Code = "DICTIONARY_NOT_FILLED"
)

// Error is a domain error carrying a code and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that wraps a cause, preserving it for errors.Is/As.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// GetCode extracts the domain code from any error, returning CodeUnknown
// for errors outside the taxonomy.
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}

// Retryable reports whether the error is transient and the caller should
// retry the operation. Only lock contention qualifies; domain failures are
// final.
func Retryable(err error) bool {
	return GetCode(err) == CodeGameBusy
}

// Fatal reports whether the error ends the game's continuation entirely,
// as opposed to failing a single call.
func Fatal(err error) bool {
	return GetCode(err) == CodePoolExhausted
}
