package websocket

import (
	"encoding/json"
	"time"

	"github.com/rocketscienceinc/caro-backend/internal/entity"
)

// Inbound actions.
const (
	ActionCreateRoom  = "createRoom"
	ActionJoinRoom    = "joinRoom"
	ActionMakeMove    = "makeMove"
	ActionResetGame   = "resetGame"
	ActionLeaveRoom   = "leaveRoom"
	ActionChatMessage = "chatMessage"
)

// Outbound actions.
const (
	ActionRoomCreated  = "roomCreated"
	ActionPlayerJoined = "playerJoined"
	ActionGameUpdate   = "gameUpdate"
	ActionGameStarted  = "gameStarted"
	ActionGameFinished = "gameFinished"
	ActionGameReset    = "gameReset"
	ActionGameFull     = "gameFull"
	ActionPlayerLeft   = "playerLeft"
	ActionRoomClosed   = "roomClosed"
	ActionRoomLeft     = "roomLeft"
	ActionMoveRejected = "moveRejected"
	ActionError        = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
	RoomID     string `json:"roomId"`
}

type MakeMoveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type ChatMessageRequest struct {
	Message string `json:"message"`
}

type RoomCreatedPayload struct {
	RoomID   string           `json:"roomId"`
	PlayerID string           `json:"playerId"`
	Symbol   string           `json:"symbol"`
	Room     *entity.RoomView `json:"room"`
}

type PlayerJoinedPayload struct {
	PlayerID string          `json:"playerId"`
	Symbol   string          `json:"symbol"`
	RoomID   string          `json:"roomId"`
	Players  []entity.Player `json:"players"`
}

type PlayerLeftPayload struct {
	Players []entity.Player  `json:"players"`
	Message string           `json:"message"`
	Room    *entity.RoomView `json:"room"`
}

type GameFullPayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type InfoPayload struct {
	Message string `json:"message"`
}

type ChatPayload struct {
	Player    string    `json:"player"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}
