package gamemaster

import (
	"boards/game"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrGameOver    = errors.New("game is over - no moves allowed")
	ErrIllegalMove = errors.New("illegal move")
)

// UpdateGetter returns the next move played and the board after it. ok is
// false when no update is pending; board is nil once the game has ended and
// every update was consumed.
type UpdateGetter func() (move game.Move, board *game.Board, ok bool)

type Engine interface {
	Init() (*game.Board, UpdateGetter)
	Play(game.Move) error
}

type update struct {
	move  game.Move
	board *game.Board
}

// LocalEngine owns the authoritative board of one game. It doubles as the
// game.View handed to players.
type LocalEngine struct {
	mu       sync.RWMutex
	rules    game.Rules
	board    *game.Board
	history  []game.Move
	winner   game.Player
	gameOver bool
	updateCh chan update
}

func NewLocalEngine(rules game.Rules) (*LocalEngine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &LocalEngine{rules: rules}, nil
}

// Init starts a fresh game and returns a copy of the empty board.
func (e *LocalEngine) Init() (*game.Board, UpdateGetter) {
	board, _ := game.NewBoard(e.rules) // rules validated in NewLocalEngine
	return e.InitFrom(board)
}

// InitFrom starts a game from a position. The position is copied and its
// rules replace the engine's.
func (e *LocalEngine) InitFrom(board *game.Board) (*game.Board, UpdateGetter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rules = board.Rules()
	e.board = board.Clone()
	e.history = nil
	e.gameOver, e.winner = e.board.Status()
	// Every cell can be filled once, so Play never blocks on a slow reader
	e.updateCh = make(chan update, e.rules.Cells())
	if e.gameOver {
		close(e.updateCh)
	}

	updates := e.updateCh
	return e.board.Clone(), func() (game.Move, *game.Board, bool) {
		select {
		case u, ok := <-updates:
			if !ok { // Game over
				return game.Move{}, nil, true
			}
			return u.move, u.board, true
		default:
			return game.Move{}, nil, false
		}
	}
}

// Play applies move for the player to move.
func (e *LocalEngine) Play(move game.Move) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.board == nil {
		return fmt.Errorf("%w: game not initialised", ErrIllegalMove)
	}
	if e.gameOver {
		return ErrGameOver
	}
	mover := e.board.ToMove()
	if err := e.board.Apply(move); err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	e.history = append(e.history, move)

	if e.board.WinsAt(move.X, move.Y) {
		e.gameOver = true
		e.winner = mover
	} else if e.board.Full() {
		e.gameOver = true
	}

	e.updateCh <- update{move: move, board: e.board.Clone()}
	if e.gameOver {
		close(e.updateCh)
	}
	return nil
}

func (e *LocalEngine) Dimensions() (int, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules.Width, e.rules.Height
}

func (e *LocalEngine) Target() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules.Target
}

func (e *LocalEngine) Gravity() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules.Gravity
}

func (e *LocalEngine) PieceAt(x, y int) game.Player {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.board == nil {
		return game.None
	}
	return e.board.At(x, y)
}

func (e *LocalEngine) PlacePiece(move game.Move) error {
	return e.Play(move)
}

func (e *LocalEngine) ToMove() game.Player {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.board == nil {
		return game.None
	}
	return e.board.ToMove()
}

// Status reports whether the game has ended and who won it. A finished game
// with no winner is a draw.
func (e *LocalEngine) Status() (over bool, winner game.Player) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gameOver, e.winner
}

// Board returns a copy of the current board.
func (e *LocalEngine) Board() *game.Board {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.board == nil {
		return nil
	}
	return e.board.Clone()
}

func (e *LocalEngine) History() []game.Move {
	e.mu.RLock()
	defer e.mu.RUnlock()
	history := make([]game.Move, len(e.history))
	copy(history, e.history)
	return history
}

// Forfeit ends the game in favour of the opponent of loser.
func (e *LocalEngine) Forfeit(loser game.Player) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gameOver {
		return
	}
	e.gameOver = true
	e.winner = loser.Opponent()
	if e.updateCh != nil {
		close(e.updateCh)
	}
}
