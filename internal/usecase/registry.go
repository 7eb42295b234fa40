package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/caro-backend/internal/apperror"
	"github.com/rocketscienceinc/caro-backend/internal/entity"
	"github.com/rocketscienceinc/caro-backend/internal/pkg"
)

const (
	defaultCodeAttempts  = 32
	defaultMaxNameLength = 20
	defaultMaxChatLength = 500
)

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Exists(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Purge(ctx context.Context) error
}

type RegistryConfig struct {
	CodeAttempts  int
	MaxNameLength int
	MaxChatLength int
}

// LeaveResult describes what happened to a room when a player left it.
type LeaveResult struct {
	RoomCode string
	Player   *entity.Player
	// Room is nil when the room was closed.
	Room   *entity.Room
	Closed bool
	// Evicted lists the other sessions detached because the room was closed.
	Evicted []string
}

// Stats is a point in time snapshot of the registry size.
type Stats struct {
	Rooms    int `json:"rooms"`
	Sessions int `json:"sessions"`
}

// Registry owns every room and session. It is the only place where rooms are
// created, mutated or removed.
type Registry struct {
	logger *slog.Logger
	repo   roomRepo

	mu       sync.Mutex
	sessions map[string]entity.Session

	codeAttempts  int
	maxNameLength int
	maxChatLength int

	generateCode func() (string, error)
	now          func() time.Time
}

func NewRegistry(logger *slog.Logger, repo roomRepo, conf RegistryConfig) *Registry {
	registry := &Registry{
		logger:   logger.With("component", "registry"),
		repo:     repo,
		sessions: make(map[string]entity.Session),

		codeAttempts:  conf.CodeAttempts,
		maxNameLength: conf.MaxNameLength,
		maxChatLength: conf.MaxChatLength,

		generateCode: pkg.GenerateRoomCode,
		now:          time.Now,
	}

	if registry.codeAttempts <= 0 {
		registry.codeAttempts = defaultCodeAttempts
	}
	if registry.maxNameLength <= 0 {
		registry.maxNameLength = defaultMaxNameLength
	}
	if registry.maxChatLength <= 0 {
		registry.maxChatLength = defaultMaxChatLength
	}

	return registry
}

// Init - drops rooms left over from a previous process, sessions never survive a restart.
func (that *Registry) Init(ctx context.Context) error {
	if err := that.repo.Purge(ctx); err != nil {
		return fmt.Errorf("failed to purge rooms: %w", err)
	}

	return nil
}

// Connect registers a session for a new connection.
func (that *Registry) Connect(sessionID string) entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	if session, ok := that.sessions[sessionID]; ok {
		return session
	}

	session := entity.NewSession(sessionID)
	that.sessions[sessionID] = session

	return session
}

func (that *Registry) Session(sessionID string) (entity.Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[sessionID]

	return session, ok
}

// Members returns the ids of the sessions attached to a room.
func (that *Registry) Members(roomCode string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var members []string
	for id, session := range that.sessions {
		if session.RoomCode == roomCode {
			members = append(members, id)
		}
	}

	return members
}

func (that *Registry) CreateRoom(ctx context.Context, sessionID, playerName string) (*entity.Room, entity.Session, error) {
	log := that.logger.With("method", "CreateRoom", "sessionID", sessionID)

	name, err := that.validateName(playerName)
	if err != nil {
		return nil, entity.Session{}, err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.freeSession(sessionID)
	if err != nil {
		return nil, entity.Session{}, err
	}

	code, err := that.allocateCode(ctx)
	if err != nil {
		return nil, entity.Session{}, err
	}

	room := entity.NewRoom(code)

	player, err := room.AddPlayer(sessionID, name)
	if err != nil {
		return nil, entity.Session{}, fmt.Errorf("failed to seat creator: %w", err)
	}

	if err = that.repo.CreateOrUpdate(ctx, room); err != nil {
		return nil, entity.Session{}, fmt.Errorf("failed to create room: %w", err)
	}

	session = session.Attach(code, player)
	that.sessions[sessionID] = session

	log.Info("room created", "roomID", code)

	return room, session, nil
}

func (that *Registry) JoinRoom(ctx context.Context, sessionID, playerName, rawCode string) (*entity.Room, entity.Session, error) {
	log := that.logger.With("method", "JoinRoom", "sessionID", sessionID)

	name, err := that.validateName(playerName)
	if err != nil {
		return nil, entity.Session{}, err
	}

	code, err := pkg.NormalizeRoomCode(rawCode)
	if err != nil {
		return nil, entity.Session{}, err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.freeSession(sessionID)
	if err != nil {
		return nil, entity.Session{}, err
	}

	room, err := that.repo.GetByID(ctx, code)
	if err != nil {
		return nil, entity.Session{}, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	player, err := room.AddPlayer(sessionID, name)
	if err != nil {
		return nil, entity.Session{}, err
	}

	if err = that.repo.CreateOrUpdate(ctx, room); err != nil {
		return nil, entity.Session{}, fmt.Errorf("failed to update room: %w", err)
	}

	session = session.Attach(code, player)
	that.sessions[sessionID] = session

	log.Info("player joined room", "roomID", code, "symbol", player.Symbol)

	return room, session, nil
}

// MakeMove applies a move for the session's player. Rejected moves do not
// touch the stored room.
func (that *Registry) MakeMove(ctx context.Context, sessionID string, row, col int) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.sessionRoom(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err = room.MakeMove(sessionID, row, col); err != nil {
		return nil, fmt.Errorf("move rejected in room %s: %w", room.ID, err)
	}

	if err = that.repo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	return room, nil
}

func (that *Registry) ResetGame(ctx context.Context, sessionID string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.sessionRoom(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	room.Reset()

	if err = that.repo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("game reset", "roomID", room.ID, "status", room.Status)

	return room, nil
}

func (that *Registry) LeaveRoom(ctx context.Context, sessionID string) (*LeaveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.leave(ctx, sessionID)
}

// Disconnect detaches a closed connection from its room and forgets the
// session. The result is nil when the session was not in a room.
func (that *Registry) Disconnect(ctx context.Context, sessionID string) (*LeaveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	defer delete(that.sessions, sessionID)

	session, ok := that.sessions[sessionID]
	if !ok || !session.InRoom() {
		return nil, nil
	}

	result, err := that.leave(ctx, sessionID)
	if err == nil {
		return result, nil
	}

	// The seat could not be released, so the whole room goes. A stored room
	// that cannot be deleted either still expires with its key ttl.
	log := that.logger.With("method", "Disconnect", "sessionID", sessionID, "roomID", session.RoomCode)
	log.Warn("failed to leave room, closing it", "error", err)

	detached, closeErr := that.removeRoom(ctx, session.RoomCode)
	if closeErr != nil {
		return nil, errors.Join(err, closeErr)
	}

	return &LeaveResult{
		RoomCode: session.RoomCode,
		Closed:   true,
		Evicted:  without(detached, sessionID),
	}, nil
}

// Chat validates a chat line and stamps it with the sender identity.
func (that *Registry) Chat(sessionID, text string) (entity.ChatMessage, error) {
	message := strings.TrimSpace(text)
	if message == "" {
		return entity.ChatMessage{}, apperror.ErrEmptyMessage
	}

	if utf8.RuneCountInString(message) > that.maxChatLength {
		return entity.ChatMessage{}, fmt.Errorf("%w: max %d characters", apperror.ErrMessageTooLong, that.maxChatLength)
	}

	session, ok := that.Session(sessionID)
	if !ok || !session.InRoom() {
		return entity.ChatMessage{}, apperror.ErrNotInRoom
	}

	return entity.ChatMessage{
		RoomCode:  session.RoomCode,
		Player:    session.Name,
		Symbol:    session.Symbol,
		Message:   message,
		Timestamp: that.now().UTC(),
	}, nil
}

func (that *Registry) GetRoom(ctx context.Context, rawCode string) (*entity.Room, error) {
	code, err := pkg.NormalizeRoomCode(rawCode)
	if err != nil {
		return nil, err
	}

	room, err := that.repo.GetByID(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	return room, nil
}

// RemoveRoom deletes a room and detaches every session still pointing at it.
func (that *Registry) RemoveRoom(ctx context.Context, code string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, err := that.removeRoom(ctx, code)

	return err
}

func (that *Registry) Stats(ctx context.Context) (Stats, error) {
	rooms, err := that.repo.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count rooms: %w", err)
	}

	that.mu.Lock()
	sessions := len(that.sessions)
	that.mu.Unlock()

	return Stats{Rooms: rooms, Sessions: sessions}, nil
}

func (that *Registry) leave(ctx context.Context, sessionID string) (*LeaveResult, error) {
	log := that.logger.With("method", "leave", "sessionID", sessionID)

	session, ok := that.sessions[sessionID]
	if !ok || !session.InRoom() {
		return nil, apperror.ErrNotInRoom
	}

	code := session.RoomCode

	room, err := that.repo.GetByID(ctx, code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		log.Warn("session pointed at a missing room", "roomID", code)
		that.sessions[sessionID] = session.Detach()
		return &LeaveResult{RoomCode: code, Closed: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	player, _ := room.RemovePlayer(sessionID)
	result := &LeaveResult{RoomCode: code, Player: player}

	if room.IsEmpty() {
		if _, err = that.removeRoom(ctx, code); err != nil {
			return nil, err
		}

		result.Closed = true
		log.Info("room closed", "roomID", code)

		return result, nil
	}

	if err = that.repo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.sessions[sessionID] = session.Detach()

	result.Room = room
	log.Info("player left room", "roomID", code, "remaining", len(room.Players))

	return result, nil
}

// removeRoom deletes a room and returns the sessions it detached from it.
func (that *Registry) removeRoom(ctx context.Context, code string) ([]string, error) {
	if err := that.repo.DeleteByID(ctx, code); err != nil && !errors.Is(err, apperror.ErrRoomNotFound) {
		return nil, fmt.Errorf("failed to delete room %s: %w", code, err)
	}

	var detached []string
	for id, session := range that.sessions {
		if session.RoomCode == code {
			that.sessions[id] = session.Detach()
			detached = append(detached, id)
		}
	}

	return detached, nil
}

func without(ids []string, id string) []string {
	result := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			result = append(result, candidate)
		}
	}

	return result
}

// sessionRoom loads the room the session is seated in.
func (that *Registry) sessionRoom(ctx context.Context, sessionID string) (*entity.Room, error) {
	session, ok := that.sessions[sessionID]
	if !ok || !session.InRoom() {
		return nil, apperror.ErrNotInRoom
	}

	room, err := that.repo.GetByID(ctx, session.RoomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", session.RoomCode, err)
	}

	return room, nil
}

// freeSession returns the session if it exists and is not seated yet.
func (that *Registry) freeSession(sessionID string) (entity.Session, error) {
	session, ok := that.sessions[sessionID]
	if !ok {
		return entity.Session{}, apperror.ErrSessionNotFound
	}

	if session.InRoom() {
		return entity.Session{}, fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, session.RoomCode)
	}

	return session, nil
}

func (that *Registry) allocateCode(ctx context.Context) (string, error) {
	for i, n := 0, that.codeAttempts; i < n; i++ {
		code, err := that.generateCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}

		exists, err := that.repo.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check room code: %w", err)
		}

		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", apperror.ErrCodeSpaceExhausted, that.codeAttempts)
}

func (that *Registry) validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperror.ErrEmptyName
	}

	if utf8.RuneCountInString(name) > that.maxNameLength {
		return "", fmt.Errorf("%w: max %d characters", apperror.ErrNameTooLong, that.maxNameLength)
	}

	return name, nil
}
