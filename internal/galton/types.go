package galton

// BoardConfig describes one simulation run. It is not mutated once a run starts.
type BoardConfig struct {
	Levels           int     `json:"levels" yaml:"levels"`
	BallCount        int     `json:"balls" yaml:"balls"`
	RightProbability float64 `json:"p" yaml:"p"`
}

// Trials is the number of peg decisions a ball makes on this board.
func (c BoardConfig) Trials() int {
	if c.Levels < 1 {
		return 0
	}
	return c.Levels - 1
}

// Position addresses one peg. Columns are doubled so that neighbours in a row
// are two apart and the entry peg sits at column Levels-1.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Slot maps a bottom-row column to its landing slot.
func (p Position) Slot() int { return p.Col / 2 }

// BallPath lists the positions a ball visits after leaving the entry peg,
// one per row transition.
type BallPath []Position

// Final returns the landing position; ok is false for a single-level board.
func (bp BallPath) Final() (Position, bool) {
	if len(bp) == 0 {
		return Position{}, false
	}
	return bp[len(bp)-1], true
}

// Slot is the landing slot. On a single-level board the ball never moves and
// lands in slot 0.
func (bp BallPath) Slot() int {
	last, ok := bp.Final()
	if !ok {
		return 0
	}
	return last.Slot()
}

// SlotProbability pairs a slot with its expected share of balls.
type SlotProbability struct {
	Slot        int     `json:"slot"`
	Probability float64 `json:"probability"`
}
