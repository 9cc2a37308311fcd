package game

// Player identifies the owner of a cell. None marks an empty cell.
type Player uint8

const (
	None Player = iota
	PlayerA
	PlayerB
)

func (p Player) Opponent() Player {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return None
	}
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "X"
	case PlayerB:
		return "O"
	default:
		return "."
	}
}

// Fingerprint is a canonical 64-bit identity of a board grid. Two boards with
// the same marks in the same cells share a fingerprint regardless of move order.
type Fingerprint uint64

// View is the live game as seen by a player. The driver owns the game and
// applies moves; players only read cells and place their own piece.
type View interface {
	Dimensions() (width, height int)
	Target() int
	Gravity() bool
	PieceAt(x, y int) Player
	PlacePiece(Move) error
}

// Snapshot copies the live game into a board with toMove as the player to move.
func Snapshot(view View, toMove Player) (*Board, error) {
	width, height := view.Dimensions()
	rules := Rules{Width: width, Height: height, Target: view.Target(), Gravity: view.Gravity()}
	b, err := NewBoard(rules)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if p := view.PieceAt(x, y); p != None {
				b.cells[b.index(x, y)] = p
				b.occupied++
			}
		}
	}
	b.toMove = toMove
	return b, nil
}
