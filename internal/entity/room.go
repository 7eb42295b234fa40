package entity

import (
	"fmt"
	"sort"
	"time"

	"github.com/rocketscienceinc/caro-backend/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	WinnerDraw = "draw"
	WinnerNone = ""

	MaxPlayers = 2
)

// Room is a single match. Players are keyed by session id.
type Room struct {
	ID          string             `json:"id"`
	Board       Board              `json:"board"`
	Turn        string             `json:"turn"`
	Players     map[string]*Player `json:"players"`
	Status      string             `json:"status"`
	Winner      string             `json:"winner"`
	WinningLine []Cell             `json:"winning_line,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// RoomView is the part of a room that is broadcast to its players.
type RoomView struct {
	ID          string   `json:"id"`
	Board       Board    `json:"board"`
	Turn        string   `json:"turn"`
	Status      string   `json:"status"`
	Winner      string   `json:"winner"`
	WinningLine []Cell   `json:"winningLine"`
	Players     []Player `json:"players"`
}

func NewRoom(id string) *Room {
	now := time.Now().UTC()

	return &Room{
		ID:        id,
		Turn:      PlayerX,
		Players:   make(map[string]*Player, MaxPlayers),
		Status:    StatusWaiting,
		Winner:    WinnerNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) Player(id string) (*Player, bool) {
	player, ok := that.Players[id]
	return player, ok
}

// ConfirmPlaying returns nil only while moves are accepted.
func (that *Room) ConfirmPlaying() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsPlaying():
		return nil
	default:
		return fmt.Errorf("%w: %s", apperror.ErrUnknownRoomStatus, that.Status)
	}
}

// FreeSymbol returns the first symbol not held by a current player.
func (that *Room) FreeSymbol() (string, bool) {
	taken := make(map[string]bool, MaxPlayers)
	for _, player := range that.Players {
		taken[player.Symbol] = true
	}

	for _, symbol := range []string{PlayerX, PlayerO} {
		if !taken[symbol] {
			return symbol, true
		}
	}

	return "", false
}

// AddPlayer seats a new player. Filling the last seat starts a fresh game.
func (that *Room) AddPlayer(id, name string) (*Player, error) {
	if _, ok := that.Players[id]; ok {
		return nil, apperror.ErrAlreadyInRoom
	}

	if that.IsFull() {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.ID)
	}

	symbol, ok := that.FreeSymbol()
	if !ok {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.ID)
	}

	player := &Player{ID: id, Name: name, Symbol: symbol}
	if that.Players == nil {
		that.Players = make(map[string]*Player, MaxPlayers)
	}
	that.Players[id] = player

	if that.IsFull() {
		that.Reset()
	}

	that.touch()

	return player, nil
}

// RemovePlayer drops a player. A surviving player keeps their symbol and the
// room goes back to waiting on a fresh board.
func (that *Room) RemovePlayer(id string) (*Player, bool) {
	player, ok := that.Players[id]
	if !ok {
		return nil, false
	}

	delete(that.Players, id)

	if !that.IsEmpty() {
		that.Reset()
	}

	that.touch()

	return player, true
}

// MakeMove applies a move by the player with the given id. A rejected move
// leaves the room untouched.
func (that *Room) MakeMove(playerID string, row, col int) error {
	player, ok := that.Players[playerID]
	if !ok {
		return apperror.ErrNotInRoom
	}

	if err := that.ConfirmPlaying(); err != nil {
		return err
	}

	if player.Symbol != that.Turn {
		return apperror.ErrNotYourTurn
	}

	if err := that.Board.Place(row, col, player.Symbol); err != nil {
		return err
	}

	that.updateGameState(row, col, player.Symbol)
	that.touch()

	return nil
}

func (that *Room) updateGameState(row, col int, symbol string) {
	if line := that.Board.CheckWin(row, col, symbol); line != nil {
		that.Status = StatusFinished
		that.Winner = symbol
		that.WinningLine = line
		return
	}

	if that.Board.CheckDraw() {
		that.Status = StatusFinished
		that.Winner = WinnerDraw
		return
	}

	that.Turn = toggleMark(symbol)
}

// Reset clears the board and result. The game restarts only with both seats taken.
func (that *Room) Reset() {
	that.Board.Reset()
	that.Turn = PlayerX
	that.Winner = WinnerNone
	that.WinningLine = nil

	if that.IsFull() {
		that.Status = StatusPlaying
	} else {
		that.Status = StatusWaiting
	}

	that.touch()
}

// PlayerList returns the players ordered by symbol, X first.
func (that *Room) PlayerList() []Player {
	players := make([]Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, *player)
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].Symbol > players[j].Symbol
	})

	return players
}

func (that *Room) View() *RoomView {
	line := make([]Cell, len(that.WinningLine))
	copy(line, that.WinningLine)

	return &RoomView{
		ID:          that.ID,
		Board:       that.Board,
		Turn:        that.Turn,
		Status:      that.Status,
		Winner:      that.Winner,
		WinningLine: line,
		Players:     that.PlayerList(),
	}
}

// Clone returns a deep copy of the room.
func (that *Room) Clone() *Room {
	clone := *that

	clone.Players = make(map[string]*Player, len(that.Players))
	for id, player := range that.Players {
		p := *player
		clone.Players[id] = &p
	}

	if that.WinningLine != nil {
		clone.WinningLine = make([]Cell, len(that.WinningLine))
		copy(clone.WinningLine, that.WinningLine)
	}

	return &clone
}

func (that *Room) touch() {
	that.UpdatedAt = time.Now().UTC()
}
