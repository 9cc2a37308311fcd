package game

import "errors"

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrNoLegalMoves = errors.New("no legal moves")
	ErrInvalidBoard = errors.New("invalid board")
)
