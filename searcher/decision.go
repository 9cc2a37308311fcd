package searcher

import "boards/game"

// ChildStats summarises one root child after a search.
type ChildStats struct {
	Move   game.Move
	Visits int
	Score  int
}

// merge sums root child statistics across workers. Every worker expands the
// same root, so children line up by index.
func merge(roots []*node) []ChildStats {
	var children []ChildStats
	for _, root := range roots {
		if root == nil {
			continue
		}
		if children == nil {
			children = make([]ChildStats, len(root.children))
			for i, child := range root.children {
				children[i].Move = child.move
			}
		}
		for i, child := range root.children {
			children[i].Visits += child.visits
			children[i].Score += child.score
		}
	}
	return children
}

func (m *MCTS) findBestMove(children []ChildStats) int {
	switch m.selection {
	case SelectExplorationQuirk:
		return argmax(len(children), func(i int) float64 {
			return ucb1(float64(children[i].Score), float64(children[i].Visits), 1, m.exploration)
		})
	default:
		return argmax(len(children), func(i int) float64 {
			return float64(children[i].Visits)
		})
	}
}
