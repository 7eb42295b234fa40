package entity

import (
	"testing"

	"github.com/rocketscienceinc/caro-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayingRoom(t *testing.T) *Room {
	t.Helper()

	room := NewRoom("ABC234")
	_, err := room.AddPlayer("alice", "Alice")
	require.NoError(t, err)
	_, err = room.AddPlayer("bob", "Bob")
	require.NoError(t, err)
	require.True(t, room.IsPlaying())

	return room
}

func TestNewRoom(t *testing.T) {
	// When: a room is created
	room := NewRoom("ABC234")

	// Then: it waits on an empty board with X to move
	assert.Equal(t, "ABC234", room.ID)
	assert.Equal(t, StatusWaiting, room.Status)
	assert.Equal(t, PlayerX, room.Turn)
	assert.Equal(t, WinnerNone, room.Winner)
	assert.Equal(t, Board{}, room.Board)
	assert.Empty(t, room.Players)
}

func TestRoom_ConfirmPlaying(t *testing.T) {
	t.Run("Returns nil when playing", func(t *testing.T) {
		room := &Room{Status: StatusPlaying}
		assert.NoError(t, room.ConfirmPlaying())
	})

	t.Run("Returns ErrGameIsNotStarted when waiting", func(t *testing.T) {
		room := &Room{Status: StatusWaiting}
		assert.ErrorIs(t, room.ConfirmPlaying(), apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrGameFinished when finished", func(t *testing.T) {
		room := &Room{Status: StatusFinished}
		assert.ErrorIs(t, room.ConfirmPlaying(), apperror.ErrGameFinished)
	})

	t.Run("Returns error for unknown status", func(t *testing.T) {
		room := &Room{Status: "unknown"}
		err := room.ConfirmPlaying()
		require.ErrorIs(t, err, apperror.ErrUnknownRoomStatus)
	})
}

func TestRoom_AddPlayer(t *testing.T) {
	t.Run("First player gets X and room keeps waiting", func(t *testing.T) {
		room := NewRoom("ABC234")

		player, err := room.AddPlayer("alice", "Alice")

		require.NoError(t, err)
		assert.Equal(t, PlayerX, player.Symbol)
		assert.Equal(t, StatusWaiting, room.Status)
	})

	t.Run("Second player gets O and the game starts fresh", func(t *testing.T) {
		// Given: a waiting room whose board was touched
		room := NewRoom("ABC234")
		_, err := room.AddPlayer("alice", "Alice")
		require.NoError(t, err)
		room.Board[0][0] = PlayerX
		room.Turn = PlayerO

		// When: the second player joins
		player, err := room.AddPlayer("bob", "Bob")

		// Then: Bob is O and the game is playing from a clean board
		require.NoError(t, err)
		assert.Equal(t, PlayerO, player.Symbol)
		assert.Equal(t, StatusPlaying, room.Status)
		assert.Equal(t, Board{}, room.Board)
		assert.Equal(t, PlayerX, room.Turn)
	})

	t.Run("Third player is rejected", func(t *testing.T) {
		room := newPlayingRoom(t)

		player, err := room.AddPlayer("carol", "Carol")

		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Nil(t, player)
		assert.Len(t, room.Players, MaxPlayers)
	})

	t.Run("Same player cannot take two seats", func(t *testing.T) {
		room := NewRoom("ABC234")
		_, err := room.AddPlayer("alice", "Alice")
		require.NoError(t, err)

		_, err = room.AddPlayer("alice", "Alice")

		require.ErrorIs(t, err, apperror.ErrAlreadyInRoom)
	})

	t.Run("Newcomer takes the symbol nobody holds", func(t *testing.T) {
		// Given: X left, only O remains
		room := newPlayingRoom(t)
		_, ok := room.RemovePlayer("alice")
		require.True(t, ok)

		// When: a new player joins
		player, err := room.AddPlayer("carol", "Carol")

		// Then: the newcomer gets X
		require.NoError(t, err)
		assert.Equal(t, PlayerX, player.Symbol)
		assert.Equal(t, PlayerO, room.Players["bob"].Symbol)
	})
}

func TestRoom_RemovePlayer(t *testing.T) {
	t.Run("Survivor keeps symbol and room waits", func(t *testing.T) {
		// Given: a game in progress
		room := newPlayingRoom(t)
		require.NoError(t, room.MakeMove("alice", 7, 7))

		// When: X leaves
		player, ok := room.RemovePlayer("alice")

		// Then: O remains alone on a fresh board
		require.True(t, ok)
		assert.Equal(t, "Alice", player.Name)
		assert.Equal(t, StatusWaiting, room.Status)
		assert.Equal(t, Board{}, room.Board)
		require.Len(t, room.Players, 1)
		assert.Equal(t, PlayerO, room.Players["bob"].Symbol)
	})

	t.Run("Last player leaves an empty room", func(t *testing.T) {
		room := NewRoom("ABC234")
		_, err := room.AddPlayer("alice", "Alice")
		require.NoError(t, err)

		_, ok := room.RemovePlayer("alice")

		require.True(t, ok)
		assert.True(t, room.IsEmpty())
	})

	t.Run("Unknown player is ignored", func(t *testing.T) {
		room := newPlayingRoom(t)

		_, ok := room.RemovePlayer("mallory")

		assert.False(t, ok)
		assert.True(t, room.IsPlaying())
	})
}

func TestRoom_MakeMove(t *testing.T) {
	t.Run("Accepted move flips the turn once", func(t *testing.T) {
		room := newPlayingRoom(t)

		require.NoError(t, room.MakeMove("alice", 7, 7))
		assert.Equal(t, PlayerX, room.Board[7][7])
		assert.Equal(t, PlayerO, room.Turn)

		require.NoError(t, room.MakeMove("bob", 8, 8))
		assert.Equal(t, PlayerO, room.Board[8][8])
		assert.Equal(t, PlayerX, room.Turn)
	})

	t.Run("Rejected moves leave the room unchanged", func(t *testing.T) {
		room := newPlayingRoom(t)
		require.NoError(t, room.MakeMove("alice", 7, 7))

		testCases := []struct {
			name     string
			playerID string
			row, col int
			err      error
		}{
			{"out of turn", "alice", 0, 0, apperror.ErrNotYourTurn},
			{"occupied cell", "bob", 7, 7, apperror.ErrCellOccupied},
			{"out of bounds", "bob", 15, 0, apperror.ErrOutOfBounds},
			{"negative index", "bob", 0, -1, apperror.ErrOutOfBounds},
			{"stranger", "mallory", 1, 1, apperror.ErrNotInRoom},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				before := room.Clone()

				err := room.MakeMove(tc.playerID, tc.row, tc.col)

				require.ErrorIs(t, err, tc.err)
				assert.Equal(t, before.Board, room.Board)
				assert.Equal(t, before.Turn, room.Turn)
				assert.Equal(t, before.Status, room.Status)
			})
		}
	})

	t.Run("Moves are rejected while waiting", func(t *testing.T) {
		room := NewRoom("ABC234")
		_, err := room.AddPlayer("alice", "Alice")
		require.NoError(t, err)

		err = room.MakeMove("alice", 7, 7)

		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
		assert.Equal(t, Board{}, room.Board)
	})

	t.Run("Five in a row finishes the game and freezes the turn", func(t *testing.T) {
		// Given: a started game
		room := newPlayingRoom(t)

		// When: X builds (7,7)..(7,11) while O plays on row 0
		for i := 0; i < 4; i++ {
			require.NoError(t, room.MakeMove("alice", 7, 7+i))
			require.NoError(t, room.MakeMove("bob", 0, i))
		}
		require.NoError(t, room.MakeMove("alice", 7, 11))

		// Then: X wins with the full line and nothing else is accepted
		assert.Equal(t, StatusFinished, room.Status)
		assert.Equal(t, PlayerX, room.Winner)
		assert.Equal(t, []Cell{{7, 7}, {7, 8}, {7, 9}, {7, 10}, {7, 11}}, room.WinningLine)
		assert.Equal(t, PlayerX, room.Turn)

		err := room.MakeMove("bob", 1, 1)
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, EmptyCell, room.Board[1][1])
	})

	t.Run("Filling the last cell without five is a draw", func(t *testing.T) {
		// Given: a board filled with the draw pattern except one cell
		room := newPlayingRoom(t)
		room.Board = fullDrawBoard()
		last := room.Board[14][14]
		room.Board[14][14] = EmptyCell
		room.Turn = last

		mover := "alice"
		if last == PlayerO {
			mover = "bob"
		}

		// When: the last cell is played
		require.NoError(t, room.MakeMove(mover, 14, 14))

		// Then: the game ends in a draw
		assert.Equal(t, StatusFinished, room.Status)
		assert.Equal(t, WinnerDraw, room.Winner)
		assert.Empty(t, room.WinningLine)
	})
}

func TestRoom_Reset(t *testing.T) {
	t.Run("Reset with two players restarts the game", func(t *testing.T) {
		room := newPlayingRoom(t)
		require.NoError(t, room.MakeMove("alice", 7, 7))
		room.Status = StatusFinished
		room.Winner = PlayerX
		room.WinningLine = []Cell{{7, 7}}

		room.Reset()

		assert.Equal(t, StatusPlaying, room.Status)
		assert.Equal(t, Board{}, room.Board)
		assert.Equal(t, PlayerX, room.Turn)
		assert.Equal(t, WinnerNone, room.Winner)
		assert.Nil(t, room.WinningLine)
	})

	t.Run("Reset with one player keeps the room waiting", func(t *testing.T) {
		room := NewRoom("ABC234")
		_, err := room.AddPlayer("alice", "Alice")
		require.NoError(t, err)
		room.Board[3][3] = PlayerX

		room.Reset()

		assert.Equal(t, StatusWaiting, room.Status)
		assert.Equal(t, Board{}, room.Board)
	})
}

func TestRoom_View(t *testing.T) {
	room := newPlayingRoom(t)
	require.NoError(t, room.MakeMove("alice", 7, 7))

	view := room.View()

	assert.Equal(t, room.ID, view.ID)
	assert.Equal(t, room.Board, view.Board)
	assert.Equal(t, PlayerO, view.Turn)
	assert.Equal(t, StatusPlaying, view.Status)
	assert.Equal(t, []Player{
		{ID: "alice", Name: "Alice", Symbol: PlayerX},
		{ID: "bob", Name: "Bob", Symbol: PlayerO},
	}, view.Players)
	assert.NotNil(t, view.WinningLine)
}

func TestRoom_Clone(t *testing.T) {
	room := newPlayingRoom(t)

	clone := room.Clone()
	clone.Players["alice"].Name = "Changed"
	clone.Board[0][0] = PlayerO

	assert.Equal(t, "Alice", room.Players["alice"].Name)
	assert.Equal(t, EmptyCell, room.Board[0][0])
}
