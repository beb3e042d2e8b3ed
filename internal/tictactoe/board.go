package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

const cellCount = entity.BoardSize * entity.BoardSize

var (
	ErrInvalidPosition = errors.New("invalid cell position")
	ErrInvalidCoords   = errors.New("invalid cell coordinates")

	// WinCombos - rows, then columns, then diagonals.
	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// CheckWinner - returns the mark of the first uniform non-empty line, or EmptyCell.
func CheckWinner(board entity.Board) entity.Mark {
	for _, combo := range WinCombos {
		a, b, c := cellAt(board, combo[0]), cellAt(board, combo[1]), cellAt(board, combo[2])
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}

// IsFull - true when no empty cell remains.
func IsFull(board entity.Board) bool {
	for _, row := range board {
		for _, cell := range row {
			if cell == entity.EmptyCell {
				return false
			}
		}
	}

	return true
}

// IsLegalMove - coordinates are on the board and the target cell is empty.
func IsLegalMove(board entity.Board, row, col int) bool {
	if !onBoard(row, col) {
		return false
	}

	return board[row][col] == entity.EmptyCell
}

// PositionToCoords - maps a 0..8 cell index to (row, col).
func PositionToCoords(pos int) (int, int, error) {
	if pos < 0 || pos >= cellCount {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}

	return pos / entity.BoardSize, pos % entity.BoardSize, nil
}

// CoordsToPosition - the exact inverse of PositionToCoords.
func CoordsToPosition(row, col int) (int, error) {
	if !onBoard(row, col) {
		return 0, fmt.Errorf("%w: (%d, %d)", ErrInvalidCoords, row, col)
	}

	return row*entity.BoardSize + col, nil
}

func onBoard(row, col int) bool {
	return row >= 0 && row < entity.BoardSize && col >= 0 && col < entity.BoardSize
}

func cellAt(board entity.Board, pos int) entity.Mark {
	return board[pos/entity.BoardSize][pos%entity.BoardSize]
}
