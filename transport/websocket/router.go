package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/caro-backend/internal/apperror"
	"github.com/rocketscienceinc/caro-backend/internal/entity"
	"github.com/rocketscienceinc/caro-backend/internal/usecase"
)

const defaultQueueSize = 256

type registry interface {
	Connect(sessionID string) entity.Session
	Members(roomCode string) []string

	CreateRoom(ctx context.Context, sessionID, playerName string) (*entity.Room, entity.Session, error)
	JoinRoom(ctx context.Context, sessionID, playerName, rawCode string) (*entity.Room, entity.Session, error)
	MakeMove(ctx context.Context, sessionID string, row, col int) (*entity.Room, error)
	ResetGame(ctx context.Context, sessionID string) (*entity.Room, error)
	LeaveRoom(ctx context.Context, sessionID string) (*usecase.LeaveResult, error)
	Disconnect(ctx context.Context, sessionID string) (*usecase.LeaveResult, error)
	Chat(sessionID, text string) (entity.ChatMessage, error)
}

type outbox interface {
	TrySend(data []byte) error
}

type eventKind int

const (
	eventConnect eventKind = iota
	eventMessage
	eventDisconnect
)

type event struct {
	kind      eventKind
	sessionID string
	out       outbox
	data      []byte
}

type handlerFunc func(ctx context.Context, sessionID string, payload json.RawMessage) error

// Router turns client events into registry calls and fans the results out to
// the sessions of the affected room. Events are processed one at a time in
// arrival order by Run.
type Router struct {
	logger   *slog.Logger
	registry registry

	events   chan event
	conns    map[string]outbox
	handlers map[string]handlerFunc
}

func NewRouter(logger *slog.Logger, registry registry, queueSize int) *Router {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	router := &Router{
		logger:   logger.With("component", "router"),
		registry: registry,

		events:   make(chan event, queueSize),
		conns:    make(map[string]outbox),
		handlers: make(map[string]handlerFunc),
	}

	router.handlers[ActionCreateRoom] = router.handleCreateRoom
	router.handlers[ActionJoinRoom] = router.handleJoinRoom
	router.handlers[ActionMakeMove] = router.handleMakeMove
	router.handlers[ActionResetGame] = router.handleResetGame
	router.handlers[ActionLeaveRoom] = router.handleLeaveRoom
	router.handlers[ActionChatMessage] = router.handleChatMessage

	return router
}

// Run processes queued events until ctx is done.
func (that *Router) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")
	log.Info("event loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info("event loop stopped")
			return
		case ev := <-that.events:
			that.handleEvent(ctx, ev)
		}
	}
}

func (that *Router) Connect(ctx context.Context, sessionID string, out outbox) error {
	return that.enqueue(ctx, event{kind: eventConnect, sessionID: sessionID, out: out})
}

func (that *Router) Dispatch(ctx context.Context, sessionID string, data []byte) error {
	return that.enqueue(ctx, event{kind: eventMessage, sessionID: sessionID, data: data})
}

func (that *Router) Disconnect(ctx context.Context, sessionID string) error {
	return that.enqueue(ctx, event{kind: eventDisconnect, sessionID: sessionID})
}

func (that *Router) enqueue(ctx context.Context, ev event) error {
	select {
	case that.events <- ev:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to queue event: %w", ctx.Err())
	}
}

func (that *Router) handleEvent(ctx context.Context, ev event) {
	switch ev.kind {
	case eventConnect:
		that.handleConnect(ev.sessionID, ev.out)
	case eventMessage:
		that.handleMessage(ctx, ev.sessionID, ev.data)
	case eventDisconnect:
		that.handleDisconnect(ctx, ev.sessionID)
	}
}

func (that *Router) handleConnect(sessionID string, out outbox) {
	that.conns[sessionID] = out
	that.registry.Connect(sessionID)

	that.logger.Info("session connected", "sessionID", sessionID)
}

func (that *Router) handleMessage(ctx context.Context, sessionID string, data []byte) {
	log := that.logger.With("method", "handleMessage", "sessionID", sessionID)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		that.reject(sessionID, "", fmt.Errorf("%w: %v", apperror.ErrInvalidPayload, err))
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		that.reject(sessionID, message.Action, fmt.Errorf("%w: %q", apperror.ErrUnknownAction, message.Action))
		return
	}

	if err := handler(ctx, sessionID, message.Payload); err != nil {
		log.Info("action rejected", "action", message.Action, "error", err)
		that.reject(sessionID, message.Action, err)
	}
}

// reject reports a failed action to the session that sent it.
func (that *Router) reject(sessionID, action string, err error) {
	reason := apperror.Reason(err)

	switch {
	case apperror.IsIllegalMove(err):
		that.send(sessionID, ActionMoveRejected, ErrorPayload{Message: rootMessage(err), Reason: reason})
	case reason == apperror.ReasonInternal:
		that.logger.Error("failed to process action", "action", action, "sessionID", sessionID, "error", err)
		that.send(sessionID, ActionError, ErrorPayload{Message: "internal error", Reason: reason})
	default:
		that.send(sessionID, ActionError, ErrorPayload{Message: rootMessage(err), Reason: reason})
	}
}

// send delivers a message to a single session. Delivery is best effort.
func (that *Router) send(sessionID, action string, payload any) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	that.deliver(sessionID, action, data)
}

// broadcast delivers a message to every session attached to the room.
func (that *Router) broadcast(roomCode, action string, payload any) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	for _, sessionID := range that.registry.Members(roomCode) {
		that.deliver(sessionID, action, data)
	}
}

func (that *Router) deliver(sessionID, action string, data []byte) {
	out, ok := that.conns[sessionID]
	if !ok {
		that.logger.Warn("connection not found for session", "sessionID", sessionID, "action", action)
		return
	}

	if err := out.TrySend(data); err != nil {
		that.logger.Warn("failed to send message", "sessionID", sessionID, "action", action, "error", err)
	}
}

func encode(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

// rootMessage returns the text of the innermost wrapped error.
func rootMessage(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err.Error()
		}
		err = inner
	}
}
