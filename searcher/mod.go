package searcher

import "time"

// Hyperparameters for MCTS

const Exploration = 1.21 // UCB1 exploration constant C

const Epsilon = 1e-5 // Keeps UCB1 finite for unvisited children

const DefaultDuration = 2000 * time.Millisecond

// Scoring decides the sign of the score credited to the winner's moves
// during backpropagation.
type Scoring int

const (
	// ScoreSearcher credits +1 when the searching player wins and -1 when the
	// opponent wins, always from the searching player's point of view.
	ScoreSearcher Scoring = iota
	// ScoreMover credits +1 to the moves of whichever player won, so every
	// level of the tree maximises its own mover's outcome.
	ScoreMover
)

func (s Scoring) String() string {
	switch s {
	case ScoreSearcher:
		return "searcher"
	case ScoreMover:
		return "mover"
	default:
		return "unknown"
	}
}

// delta is the score added to a node at ply (root = 1) whose move was made by
// the winner. outcome is +1, -1 or 0 from the searching player's view.
func (s Scoring) delta(outcome, ply int) int {
	weight := ply / 2
	if s == ScoreMover {
		if outcome == 0 {
			return 0
		}
		return weight
	}
	return outcome * weight
}

// Selection picks the root child that becomes the chosen move.
type Selection int

const (
	// SelectMostVisited returns the child with the most visits.
	SelectMostVisited Selection = iota
	// SelectExplorationQuirk evaluates UCB1 once more with a parent visit count
	// of 1, which reduces to the highest score per visit.
	SelectExplorationQuirk
)

func (s Selection) String() string {
	switch s {
	case SelectMostVisited:
		return "most-visited"
	case SelectExplorationQuirk:
		return "ucb-iteration-1"
	default:
		return "unknown"
	}
}
