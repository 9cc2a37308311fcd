package engine

import (
	"boards/experiments/metrics"
	"boards/game"
	"boards/gamemaster"
	"boards/player"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Slack allowed past the turn deadline for a player to hand its move back.
const TimeoutGrace = 100 * time.Millisecond

type MatchOption func(m *Match)

// WithTurnTimeout forfeits a player that takes longer than timeout to move.
func WithTurnTimeout(timeout time.Duration) MatchOption {
	return func(m *Match) {
		if timeout > 0 {
			m.turnTimeout = timeout
		}
	}
}

// WithStart plays from board instead of an empty grid.
func WithStart(board *game.Board) MatchOption {
	return func(m *Match) {
		m.start = board
	}
}

// WithObserver is called with every move and the board after it.
func WithObserver(observer func(move game.Move, board *game.Board)) MatchOption {
	return func(m *Match) {
		m.observer = observer
	}
}

// Match plays one game between two players on a local game master.
type Match struct {
	rules       game.Rules
	players     [2]player.Player // Indexed by game.Player - 1
	start       *game.Board
	turnTimeout time.Duration
	observer    func(move game.Move, board *game.Board)
}

// NewMatch seats first as game.PlayerA and second as game.PlayerB.
func NewMatch(rules game.Rules, first, second player.Player, options ...MatchOption) *Match {
	m := &Match{
		rules:   rules,
		players: [2]player.Player{first, second},
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// turnView lets the mover place exactly one piece before the deadline.
type turnView struct {
	*gamemaster.LocalEngine
	deadline time.Time // Zero without a turn limit
	placed   bool
	move     game.Move
}

func (v *turnView) PlacePiece(move game.Move) error {
	if v.placed {
		return ErrAlreadyPlaced
	}
	if !v.deadline.IsZero() && time.Now().After(v.deadline) {
		return ErrTurnTimeout
	}
	if err := v.LocalEngine.Play(move); err != nil {
		return err
	}
	v.placed, v.move = true, move
	return nil
}

// Run executes the entire game loop until the game is decided.
func (m *Match) Run(ctx context.Context) (Outcome, error) {
	master, err := gamemaster.NewLocalEngine(m.rules)
	if err != nil {
		return Outcome{}, err
	}
	var (
		board     *game.Board
		getUpdate gamemaster.UpdateGetter
	)
	if m.start != nil {
		board, getUpdate = master.InitFrom(m.start)
	} else {
		board, getUpdate = master.Init()
	}

	outcome := Outcome{}
	gameMetric := metrics.GameMetric{
		StartingPlayer: int(board.ToMove()),
		StartTime:      time.Now(),
	}
	log.Info().Msgf("%s plays %s against %s as %s", m.players[0].Name(), game.PlayerA, m.players[1].Name(), game.PlayerB)

	for i, p := range m.players {
		id := game.Player(i + 1)
		if err := p.Init(master, id); err != nil {
			log.Warn().Err(err).Msgf("%s failed to initialise and forfeits", p.Name())
			master.Forfeit(id)
			outcome.Forfeit = true
			break
		}
	}

	step := 1
	for {
		if over, _ := master.Status(); over {
			break
		}
		if err := ctx.Err(); err != nil {
			return outcome, fmt.Errorf("match interrupted after %d moves: %w", step-1, err)
		}

		id := master.ToMove()
		p := m.players[id-1]
		move, err := m.turn(ctx, master, p, id)
		if err != nil {
			log.Warn().Err(err).Msgf("%s forfeits on move %d", p.Name(), step)
			master.Forfeit(id)
			outcome.Forfeit = true
			break
		}

		moveMetric := metrics.MoveMetric{Step: step, Player: int(id), Column: move.X, Row: move.Y}
		if reporter, ok := p.(player.Reporter); ok {
			moveMetric.SearchMetric = reporter.LastMetric()
		}
		outcome.MoveMetrics = append(outcome.MoveMetrics, moveMetric)
		log.Debug().Msgf("move %d: %s plays %s", step, id, move)

		m.publish(getUpdate)
		step++
	}
	m.publish(getUpdate)

	_, winner := master.Status()
	for _, p := range m.players {
		if err := p.EndGame(master, winner); err != nil {
			log.Warn().Err(err).Msgf("%s failed to end the game", p.Name())
		}
	}

	outcome.Winner = winner
	outcome.Moves = master.History()
	outcome.Board = master.Board()
	gameMetric.Winner = winner.String()
	gameMetric.Forfeit = outcome.Forfeit
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(outcome.Moves)
	outcome.GameMetric = gameMetric

	if winner == game.None {
		log.Info().Msgf("game drawn after %d moves", gameMetric.TotalMoves)
	} else {
		log.Info().Msgf("%s (%s) wins after %d moves", m.players[winner-1].Name(), winner, gameMetric.TotalMoves)
	}
	return outcome, nil
}

// turn asks p for one placement within the turn limit.
func (m *Match) turn(ctx context.Context, master *gamemaster.LocalEngine, p player.Player, id game.Player) (game.Move, error) {
	turnCtx, cancel := ctx, context.CancelFunc(func() {})
	if m.turnTimeout > 0 {
		turnCtx, cancel = context.WithTimeout(ctx, m.turnTimeout)
	}
	defer cancel()

	view := &turnView{LocalEngine: master}
	if m.turnTimeout > 0 {
		view.deadline = time.Now().Add(m.turnTimeout + TimeoutGrace)
	}
	if err := p.TakeTurn(turnCtx, view, id); err != nil {
		return game.Move{}, err
	}
	if !view.deadline.IsZero() && time.Now().After(view.deadline) {
		return game.Move{}, ErrTurnTimeout
	}
	if !view.placed {
		return game.Move{}, ErrNotPlaced
	}
	return view.move, nil
}

func (m *Match) publish(getUpdate gamemaster.UpdateGetter) {
	for {
		move, board, ok := getUpdate()
		if !ok || board == nil {
			return
		}
		if m.observer != nil {
			m.observer(move, board)
		}
	}
}
