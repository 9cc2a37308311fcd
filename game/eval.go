package game

// Weights for an open window holding target-1, target-2 and fewer marks.
const (
	ThreatWeight = 100
	PairWeight   = 10
	SingleWeight = 1
)

// Heuristic scores a position for p by counting open windows: every run of
// Target in-bounds cells that holds marks of only one player. Windows owned by
// p add to the score and windows owned by the opponent subtract from it.
func (b *Board) Heuristic(p Player) int {
	return ScoreWindows(b.rules, b.At, p)
}

// ScoreWindows is Heuristic over any grid, read through at.
func ScoreWindows(rules Rules, at func(x, y int) Player, p Player) int {
	opponent := p.Opponent()
	target := rules.Target
	score := 0
	for x := 0; x < rules.Width; x++ {
		for y := 0; y < rules.Height; y++ {
			for _, d := range directions {
				endX, endY := x+d.dx*(target-1), y+d.dy*(target-1)
				if endX < 0 || endX >= rules.Width || endY >= rules.Height {
					continue
				}
				mine, theirs := 0, 0
				for i := 0; i < target; i++ {
					switch at(x+d.dx*i, y+d.dy*i) {
					case p:
						mine++
					case opponent:
						theirs++
					}
				}
				switch {
				case mine > 0 && theirs == 0:
					score += windowWeight(mine, target)
				case theirs > 0 && mine == 0:
					score -= windowWeight(theirs, target)
				}
			}
		}
	}
	return score
}

func windowWeight(marks, target int) int {
	switch {
	case marks >= target-1 && target > 1:
		return ThreatWeight
	case marks == target-2:
		return PairWeight
	default:
		return SingleWeight
	}
}
