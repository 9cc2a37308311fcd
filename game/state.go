package game

import (
	"fmt"
	"strings"
)

// Board is one position of a connection game. Boards handed to searchers are
// treated as immutable: Play returns a new board and leaves the receiver
// untouched. Apply mutates in place and is meant for private copies only.
type Board struct {
	rules    Rules
	cells    []Player // indexed y*width+x, row 0 at the bottom
	toMove   Player
	occupied int
}

func NewBoard(rules Rules) (*Board, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Board{
		rules:  rules,
		cells:  make([]Player, rules.Cells()),
		toMove: PlayerA,
	}, nil
}

// ParseBoard builds a board from rows of '.', 'X' and 'O', top row first.
// X is PlayerA, who always moves first, so the player to move follows from the
// number of marks on the board.
func ParseBoard(rules Rules, rows ...string) (*Board, error) {
	b, err := NewBoard(rules)
	if err != nil {
		return nil, err
	}
	if len(rows) != rules.Height {
		return nil, fmt.Errorf("%w: got %d rows, want %d", ErrInvalidBoard, len(rows), rules.Height)
	}

	counts := map[Player]int{}
	for i, row := range rows {
		if len(row) != rules.Width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, i, len(row), rules.Width)
		}
		y := rules.Height - 1 - i
		for x, c := range row {
			var p Player
			switch c {
			case '.':
				continue
			case 'X', 'x':
				p = PlayerA
			case 'O', 'o':
				p = PlayerB
			default:
				return nil, fmt.Errorf("%w: unknown mark %q at row %d", ErrInvalidBoard, c, i)
			}
			b.cells[b.index(x, y)] = p
			b.occupied++
			counts[p]++
		}
	}

	switch counts[PlayerA] - counts[PlayerB] {
	case 0:
		b.toMove = PlayerA
	case 1:
		b.toMove = PlayerB
	default:
		return nil, fmt.Errorf("%w: %d X marks against %d O marks", ErrInvalidBoard, counts[PlayerA], counts[PlayerB])
	}

	if rules.Gravity {
		for x := 0; x < rules.Width; x++ {
			for y := 1; y < rules.Height; y++ {
				if b.At(x, y) != None && b.At(x, y-1) == None {
					return nil, fmt.Errorf("%w: floating piece at (%d,%d)", ErrInvalidBoard, x, y)
				}
			}
		}
	}
	return b, nil
}

func (b *Board) index(x, y int) int {
	return y*b.rules.Width + x
}

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.rules.Width && y >= 0 && y < b.rules.Height
}

func (b *Board) Rules() Rules {
	return b.rules
}

func (b *Board) Width() int {
	return b.rules.Width
}

func (b *Board) Height() int {
	return b.rules.Height
}

func (b *Board) Target() int {
	return b.rules.Target
}

// ToMove returns the player whose mark the next move places.
func (b *Board) ToMove() Player {
	return b.toMove
}

func (b *Board) Occupied() int {
	return b.occupied
}

// Empty returns the number of free cells.
func (b *Board) Empty() int {
	return len(b.cells) - b.occupied
}

// At returns the mark at (x, y), or None when out of bounds.
func (b *Board) At(x, y int) Player {
	if !b.inBounds(x, y) {
		return None
	}
	return b.cells[b.index(x, y)]
}

// DropRow returns the row a piece dropped in column x lands on, or -1 when the
// column is full or out of bounds.
func (b *Board) DropRow(x int) int {
	if x < 0 || x >= b.rules.Width {
		return -1
	}
	for y := 0; y < b.rules.Height; y++ {
		if b.cells[b.index(x, y)] == None {
			return y
		}
	}
	return -1
}

// LegalMoves lists the available moves in a fixed order. With gravity there
// is one move per non-full column in ascending column order. Without gravity
// every empty cell is listed row by row, bottom row first.
func (b *Board) LegalMoves() []Move {
	if b.rules.Gravity {
		moves := make([]Move, 0, b.rules.Width)
		for x := 0; x < b.rules.Width; x++ {
			if y := b.DropRow(x); y >= 0 {
				moves = append(moves, Move{X: x, Y: y})
			}
		}
		return moves
	}

	moves := make([]Move, 0, b.Empty())
	for y := 0; y < b.rules.Height; y++ {
		for x := 0; x < b.rules.Width; x++ {
			if b.cells[b.index(x, y)] == None {
				moves = append(moves, Move{X: x, Y: y})
			}
		}
	}
	return moves
}

// Column returns the gravity move for column x.
func (b *Board) Column(x int) (Move, error) {
	y := b.DropRow(x)
	if y < 0 {
		return Move{}, fmt.Errorf("%w: column %d is full", ErrInvalidMove, x)
	}
	return Move{X: x, Y: y}, nil
}

func (b *Board) Legal(m Move) bool {
	if !b.inBounds(m.X, m.Y) || b.cells[b.index(m.X, m.Y)] != None {
		return false
	}
	if b.rules.Gravity {
		return b.DropRow(m.X) == m.Y
	}
	return true
}

// Apply places the mover's mark and passes the turn, mutating the board.
func (b *Board) Apply(m Move) error {
	if !b.Legal(m) {
		return fmt.Errorf("%w: %s", ErrInvalidMove, m)
	}
	b.cells[b.index(m.X, m.Y)] = b.toMove
	b.occupied++
	b.toMove = b.toMove.Opponent()
	return nil
}

// Play returns the successor board after m, leaving b unchanged.
func (b *Board) Play(m Move) (*Board, error) {
	next := b.Clone()
	if err := next.Apply(m); err != nil {
		return nil, err
	}
	return next, nil
}

// IsFirstMove reports whether nobody has moved yet: the bottom row is empty
// for gravity games, the whole board otherwise.
func (b *Board) IsFirstMove() bool {
	if !b.rules.Gravity {
		return b.occupied == 0
	}
	for x := 0; x < b.rules.Width; x++ {
		if b.cells[b.index(x, 0)] != None {
			return false
		}
	}
	return true
}

// OpeningMove returns the centre column (or centre cell) on a fresh board.
func (b *Board) OpeningMove() (Move, bool) {
	if !b.IsFirstMove() {
		return Move{}, false
	}
	x := b.rules.Width / 2
	if b.rules.Gravity {
		return Move{X: x, Y: 0}, true
	}
	return Move{X: x, Y: b.rules.Height / 2}, true
}

func (b *Board) Clone() *Board {
	cells := make([]Player, len(b.cells))
	copy(cells, b.cells)
	return &Board{
		rules:    b.rules,
		cells:    cells,
		toMove:   b.toMove,
		occupied: b.occupied,
	}
}

// Equal reports whether both boards have the same rules, marks and mover.
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.rules != other.rules || b.toMove != other.toMove {
		return false
	}
	for i, p := range b.cells {
		if other.cells[i] != p {
			return false
		}
	}
	return true
}

// Encode packs the grid at two bits per cell, four cells per byte.
func (b *Board) Encode() []byte {
	out := make([]byte, (len(b.cells)+3)/4)
	for i, p := range b.cells {
		out[i/4] |= byte(p&0b11) << uint((i%4)*2)
	}
	return out
}

// Rows renders the board top row first, in the format ParseBoard reads.
func (b *Board) Rows() []string {
	rows := make([]string, 0, b.rules.Height)
	for y := b.rules.Height - 1; y >= 0; y-- {
		var sb strings.Builder
		for x := 0; x < b.rules.Width; x++ {
			sb.WriteString(b.At(x, y).String())
		}
		rows = append(rows, sb.String())
	}
	return rows
}

func (b *Board) String() string {
	return strings.Join(b.Rows(), "\n")
}
