package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/caro-backend/internal/apperror"
	"github.com/rocketscienceinc/caro-backend/internal/pkg"
	"github.com/rocketscienceinc/caro-backend/internal/usecase"
)

func (that *Router) handleCreateRoom(ctx context.Context, sessionID string, payload json.RawMessage) error {
	var req CreateRoomRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	room, session, err := that.registry.CreateRoom(ctx, sessionID, req.PlayerName)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.send(sessionID, ActionRoomCreated, RoomCreatedPayload{
		RoomID:   room.ID,
		PlayerID: sessionID,
		Symbol:   session.Symbol,
		Room:     room.View(),
	})

	that.broadcast(room.ID, ActionPlayerJoined, PlayerJoinedPayload{
		PlayerID: sessionID,
		Symbol:   session.Symbol,
		RoomID:   room.ID,
		Players:  room.PlayerList(),
	})

	return nil
}

func (that *Router) handleJoinRoom(ctx context.Context, sessionID string, payload json.RawMessage) error {
	var req JoinRoomRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	room, session, err := that.registry.JoinRoom(ctx, sessionID, req.PlayerName, req.RoomID)
	if errors.Is(err, apperror.ErrRoomFull) {
		code, _ := pkg.NormalizeRoomCode(req.RoomID)
		that.send(sessionID, ActionGameFull, GameFullPayload{RoomID: code, Message: "Room is full"})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	that.broadcast(room.ID, ActionPlayerJoined, PlayerJoinedPayload{
		PlayerID: sessionID,
		Symbol:   session.Symbol,
		RoomID:   room.ID,
		Players:  room.PlayerList(),
	})

	if room.IsPlaying() {
		that.broadcast(room.ID, ActionGameStarted, room.View())
	}

	return nil
}

func (that *Router) handleMakeMove(ctx context.Context, sessionID string, payload json.RawMessage) error {
	var req MakeMoveRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	if req.Row == nil || req.Col == nil {
		return fmt.Errorf("%w: row and col are required", apperror.ErrInvalidPayload)
	}

	room, err := that.registry.MakeMove(ctx, sessionID, *req.Row, *req.Col)
	if err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	if room.IsFinished() {
		that.logger.Info("game finished", "roomID", room.ID, "winner", room.Winner)
		that.broadcast(room.ID, ActionGameFinished, room.View())
		return nil
	}

	that.broadcast(room.ID, ActionGameUpdate, room.View())

	return nil
}

func (that *Router) handleResetGame(ctx context.Context, sessionID string, _ json.RawMessage) error {
	room, err := that.registry.ResetGame(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to reset game: %w", err)
	}

	that.broadcast(room.ID, ActionGameReset, room.View())

	return nil
}

func (that *Router) handleLeaveRoom(ctx context.Context, sessionID string, _ json.RawMessage) error {
	result, err := that.registry.LeaveRoom(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	that.send(sessionID, ActionRoomLeft, InfoPayload{Message: "You left room " + result.RoomCode})

	if result.Closed {
		that.send(sessionID, ActionRoomClosed, InfoPayload{Message: "Room " + result.RoomCode + " was closed"})
		return nil
	}

	that.notifyPlayerLeft(result)

	return nil
}

func (that *Router) handleChatMessage(_ context.Context, sessionID string, payload json.RawMessage) error {
	var req ChatMessageRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	message, err := that.registry.Chat(sessionID, req.Message)
	if err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	that.broadcast(message.RoomCode, ActionChatMessage, ChatPayload{
		Player:    message.Player,
		Symbol:    message.Symbol,
		Message:   message.Message,
		Timestamp: message.Timestamp,
	})

	return nil
}

func (that *Router) handleDisconnect(ctx context.Context, sessionID string) {
	log := that.logger.With("method", "handleDisconnect", "sessionID", sessionID)

	delete(that.conns, sessionID)

	result, err := that.registry.Disconnect(ctx, sessionID)
	if err != nil {
		log.Error("failed to detach session", "error", err)
		return
	}

	log.Info("session disconnected")

	if result == nil {
		return
	}

	if result.Closed {
		for _, id := range result.Evicted {
			that.send(id, ActionRoomClosed, InfoPayload{Message: "Room " + result.RoomCode + " was closed"})
		}
		return
	}

	that.notifyPlayerLeft(result)
}

func (that *Router) notifyPlayerLeft(result *usecase.LeaveResult) {
	if result.Room == nil {
		return
	}

	name := "Opponent"
	if result.Player != nil {
		name = result.Player.Name
	}

	that.broadcast(result.RoomCode, ActionPlayerLeft, PlayerLeftPayload{
		Players: result.Room.PlayerList(),
		Message: name + " left the room",
		Room:    result.Room.View(),
	})
}

func decode(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidPayload, err)
	}

	return nil
}
