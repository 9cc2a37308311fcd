package searcher

import "boards/game"

type node struct {
	board    *game.Board
	move     game.Move // Move that led here from the parent
	parent   *node
	children []*node
	visits   int
	score    int
	terminal bool
}

func newNode(parent *node, move game.Move, board *game.Board) *node {
	terminal, _ := board.Status()
	return &node{
		board:    board,
		move:     move,
		parent:   parent,
		terminal: terminal,
	}
}

// expand adds one child per legal move, in legal move order. Terminal and
// already expanded nodes are left as they are.
func (n *node) expand() {
	if n.terminal || len(n.children) > 0 {
		return
	}
	moves := n.board.LegalMoves()
	n.children = make([]*node, 0, len(moves))
	for _, move := range moves {
		child, err := n.board.Play(move)
		if err != nil {
			panic(err)
		}
		n.children = append(n.children, newNode(n, move, child))
	}
}

// depth is the path length from the root.
func (n *node) depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// find returns the grandchild whose board equals b: the position after one
// move by each side.
func (n *node) find(b *game.Board) *node {
	if n.board.Equal(b) {
		return n
	}
	for _, child := range n.children {
		for _, grandChild := range child.children {
			if grandChild.board.Equal(b) {
				return grandChild
			}
		}
	}
	return nil
}
