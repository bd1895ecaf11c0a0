package galton

// EntryPosition is where every ball starts: row 0, centred.
func EntryPosition(levels int) Position {
	return Position{Row: 0, Col: levels - 1}
}

// ValidPosition reports whether (row, col) is a peg of a board with the given
// number of levels: columns levels-1-row .. levels-1+row, stepping by 2.
func ValidPosition(levels int, pos Position) bool {
	if levels < 1 || pos.Row < 0 || pos.Row >= levels {
		return false
	}
	first := levels - 1 - pos.Row
	last := levels - 1 + pos.Row
	if pos.Col < first || pos.Col > last {
		return false
	}
	return (pos.Col-first)%2 == 0
}

// Walker advances one ball a row at a time. The random draw for a row happens
// inside Next, so a caller that commits each position before asking for the
// next one never draws ahead of its own bookkeeping.
type Walker struct {
	levels int
	p      float64
	rng    RandomSource
	pos    Position
}

// NewWalker places a ball on the entry peg. nil rng => DefaultRNG.
func NewWalker(levels int, p float64, rng RandomSource) (*Walker, error) {
	if err := validateLevels(levels); err != nil {
		return nil, err
	}
	if err := validateProb(p); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Walker{levels: levels, p: p, rng: rng, pos: EntryPosition(levels)}, nil
}

// Position is the peg the ball currently rests on.
func (w *Walker) Position() Position { return w.pos }

// Done is true once the ball sits on the bottom row.
func (w *Walker) Done() bool { return w.pos.Row >= w.levels-1 }

// Next moves the ball down one row and returns the new position.
// ok is false when the ball is already on the bottom row.
func (w *Walker) Next() (Position, bool) {
	if w.Done() {
		return w.pos, false
	}
	// p was validated in NewWalker
	right, _ := Deflect(w.p, w.rng)
	w.pos.Row++
	if right {
		w.pos.Col++
	} else {
		w.pos.Col--
	}
	return w.pos, true
}

// SimulateDrop runs a whole descent at once. It touches no shared counters;
// the caller decides when each position counts as a hit.
func SimulateDrop(levels int, p float64, rng RandomSource) (BallPath, error) {
	w, err := NewWalker(levels, p, rng)
	if err != nil {
		return nil, err
	}
	path := make(BallPath, 0, levels-1)
	for {
		pos, ok := w.Next()
		if !ok {
			return path, nil
		}
		path = append(path, pos)
	}
}
