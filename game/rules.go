package game

import "fmt"

// Rules describe a connection game: a Width x Height grid where the first
// player to line up Target marks wins. With Gravity, pieces drop to the lowest
// empty row of a column; otherwise any empty cell may be taken.
type Rules struct {
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
	Target  int  `yaml:"target"`
	Gravity bool `yaml:"gravity"`
}

// StandardRules is Connect Four: 7 columns, 6 rows, four in a row.
func StandardRules() Rules {
	return Rules{Width: 7, Height: 6, Target: 4, Gravity: true}
}

func (r Rules) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid board dimensions %dx%d", r.Width, r.Height)
	}
	if r.Target <= 0 || (r.Target > r.Width && r.Target > r.Height) {
		return fmt.Errorf("invalid target %d for a %dx%d board", r.Target, r.Width, r.Height)
	}
	return nil
}

func (r Rules) Cells() int {
	return r.Width * r.Height
}
