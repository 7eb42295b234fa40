package entity

import (
	"fmt"

	"github.com/rocketscienceinc/caro-backend/internal/apperror"
)

const (
	BoardSize    = 15
	WinCondition = 5

	PlayerX   = "X"
	PlayerO   = "O"
	EmptyCell = ""
)

// directions are scanned in this order; the first winning one is reported.
var directions = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal
	{1, -1}, // anti-diagonal
}

// Cell is a board coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board is the 15x15 playing grid. The zero value is an empty board.
type Board [BoardSize][BoardSize]string

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Place puts symbol on an empty cell.
func (that *Board) Place(row, col int, symbol string) error {
	if !InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrOutOfBounds, row, col)
	}

	if that[row][col] != EmptyCell {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrCellOccupied, row, col)
	}

	that[row][col] = symbol

	return nil
}

// CheckWin looks for WinCondition contiguous symbols through the cell that was
// just played. Only the four lines crossing (row, col) are inspected.
//
// Cells of a run are ordered from its backward end to its forward end. When
// the run is longer than WinCondition the window most centered on the played
// cell is returned, so the result always has exactly WinCondition cells.
func (that *Board) CheckWin(row, col int, symbol string) []Cell {
	if !InBounds(row, col) || symbol == EmptyCell || that[row][col] != symbol {
		return nil
	}

	for _, dir := range directions {
		dr, dc := dir[0], dir[1]

		forward := that.countFrom(row, col, dr, dc, symbol)
		backward := that.countFrom(row, col, -dr, -dc, symbol)

		total := backward + 1 + forward
		if total < WinCondition {
			continue
		}

		start := min(max(backward-WinCondition/2, 0), total-WinCondition)
		firstRow, firstCol := row-backward*dr, col-backward*dc

		line := make([]Cell, 0, WinCondition)
		for i := start; i < start+WinCondition; i++ {
			line = append(line, Cell{Row: firstRow + i*dr, Col: firstCol + i*dc})
		}

		return line
	}

	return nil
}

// countFrom counts contiguous symbol cells stepping away from (row, col),
// not counting the origin itself.
func (that *Board) countFrom(row, col, dr, dc int, symbol string) int {
	count := 0
	for r, c := row+dr, col+dc; InBounds(r, c) && that[r][c] == symbol; r, c = r+dr, c+dc {
		count++
	}

	return count
}

// CheckDraw reports whether no empty cell is left.
func (that *Board) CheckDraw() bool {
	for row := range that {
		for col := range that[row] {
			if that[row][col] == EmptyCell {
				return false
			}
		}
	}

	return true
}

func (that *Board) Reset() {
	*that = Board{}
}

func toggleMark(currentMark string) string {
	if currentMark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
