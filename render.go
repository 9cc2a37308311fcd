package main

import (
	"boards/game"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// renderBoard draws b top row first with column numbers underneath. The last
// move, if any, is drawn bold.
func renderBoard(out *termenv.Output, b *game.Board, last *game.Move) string {
	var sb strings.Builder
	for y := b.Height() - 1; y >= 0; y-- {
		sb.WriteString("|")
		for x := 0; x < b.Width(); x++ {
			sb.WriteString(" ")
			sb.WriteString(renderCell(out, b.At(x, y), last != nil && last.X == x && last.Y == y))
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString(" ")
	for x := 0; x < b.Width(); x++ {
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(x % 10))
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderCell(out *termenv.Output, p game.Player, highlight bool) string {
	style := out.String(p.String())
	switch p {
	case game.PlayerA:
		style = style.Foreground(out.Color("1"))
	case game.PlayerB:
		style = style.Foreground(out.Color("3"))
	default:
		style = style.Faint()
	}
	if highlight {
		style = style.Bold()
	}
	return style.String()
}
