package tictactoe

import "github.com/oakleaf-games/tictactoe-arena/internal/entity"

// Outcome - is the verdict of the board engine for a given position.
type Outcome string

const (
	OutcomeXWins      Outcome = "X"
	OutcomeOWins      Outcome = "O"
	OutcomeDraw       Outcome = "draw"
	OutcomeInProgress Outcome = "in-progress"
)

var winCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - determines the outcome of a board: a win on any of the 8 lines,
// a draw when the board is full with no line, otherwise in-progress.
// Pure function, no side effects.
func Evaluate(board [9]string) Outcome {
	for _, combo := range winCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return Outcome(a)
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return OutcomeInProgress
		}
	}

	return OutcomeDraw
}

// ToggleMark - returns the mark that plays after currentMark.
func ToggleMark(currentMark string) string {
	if currentMark == entity.MarkX {
		return entity.MarkO
	}
	return entity.MarkX
}
