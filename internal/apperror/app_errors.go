package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrOutOfBounds      = errors.New("cell is out of bounds")

	ErrUnknownRoomStatus = errors.New("unknown room status")

	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrNotInRoom       = errors.New("player is not in a room")
	ErrAlreadyInRoom   = errors.New("player is already in a room")
	ErrSessionNotFound = errors.New("session not found")

	ErrEmptyName       = errors.New("player name is required")
	ErrNameTooLong     = errors.New("player name is too long")
	ErrInvalidRoomCode = errors.New("invalid room code")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrMessageTooLong  = errors.New("message is too long")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrUnknownAction   = errors.New("unknown action")

	ErrCodeSpaceExhausted = errors.New("could not allocate a free room code")
)

// Reason codes sent to clients alongside rejections.
const (
	ReasonGameFinished   = "game_finished"
	ReasonGameNotStarted = "game_not_started"
	ReasonNotYourTurn    = "not_your_turn"
	ReasonCellOccupied   = "cell_occupied"
	ReasonOutOfBounds    = "out_of_bounds"
	ReasonRoomNotFound   = "room_not_found"
	ReasonRoomFull       = "room_full"
	ReasonNotInRoom      = "not_in_room"
	ReasonAlreadyInRoom  = "already_in_room"
	ReasonValidation     = "validation"
	ReasonUnknownAction  = "unknown_action"
	ReasonInternal       = "internal"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrGameFinished, ReasonGameFinished},
	{ErrGameIsNotStarted, ReasonGameNotStarted},
	{ErrNotYourTurn, ReasonNotYourTurn},
	{ErrCellOccupied, ReasonCellOccupied},
	{ErrOutOfBounds, ReasonOutOfBounds},
	{ErrRoomNotFound, ReasonRoomNotFound},
	{ErrRoomFull, ReasonRoomFull},
	{ErrNotInRoom, ReasonNotInRoom},
	{ErrSessionNotFound, ReasonNotInRoom},
	{ErrAlreadyInRoom, ReasonAlreadyInRoom},
	{ErrEmptyName, ReasonValidation},
	{ErrNameTooLong, ReasonValidation},
	{ErrInvalidRoomCode, ReasonValidation},
	{ErrEmptyMessage, ReasonValidation},
	{ErrMessageTooLong, ReasonValidation},
	{ErrInvalidPayload, ReasonValidation},
	{ErrUnknownAction, ReasonUnknownAction},
}

// Reason returns the client facing reason code for err.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}

	return ReasonInternal
}

// IsIllegalMove reports whether err rejects a move on an existing room.
func IsIllegalMove(err error) bool {
	return errors.Is(err, ErrGameFinished) ||
		errors.Is(err, ErrGameIsNotStarted) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrCellOccupied) ||
		errors.Is(err, ErrOutOfBounds)
}
