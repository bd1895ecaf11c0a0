package galton

// HitCounts counts how many balls passed each peg in the current run.
// Row r is stored compactly: entry i is column levels-1-r+2i.
type HitCounts struct {
	levels int
	rows   [][]int
}

func NewHitCounts(levels int) *HitCounts {
	if levels < 1 {
		levels = 1
	}
	rows := make([][]int, levels)
	for r := range rows {
		rows[r] = make([]int, r+1)
	}
	return &HitCounts{levels: levels, rows: rows}
}

func (h *HitCounts) Levels() int { return h.levels }

func (h *HitCounts) index(pos Position) (int, bool) {
	if !ValidPosition(h.levels, pos) {
		return 0, false
	}
	return (pos.Col - (h.levels - 1 - pos.Row)) / 2, true
}

// Increment records one ball passing pos and returns the new count.
func (h *HitCounts) Increment(pos Position) (int, error) {
	i, ok := h.index(pos)
	if !ok {
		return 0, ErrInvalidPosition
	}
	h.rows[pos.Row][i]++
	return h.rows[pos.Row][i], nil
}

// At returns the count at pos, 0 for positions that are not pegs.
func (h *HitCounts) At(pos Position) int {
	i, ok := h.index(pos)
	if !ok {
		return 0
	}
	return h.rows[pos.Row][i]
}

// RowTotal is the number of balls that have committed row r so far.
func (h *HitCounts) RowTotal(r int) int {
	if r < 0 || r >= h.levels {
		return 0
	}
	total := 0
	for _, c := range h.rows[r] {
		total += c
	}
	return total
}

// SlotCounts is the bottom row read as landing slots.
func (h *HitCounts) SlotCounts() []int {
	return append([]int(nil), h.rows[h.levels-1]...)
}

// Rows returns a deep copy in the compact layout.
func (h *HitCounts) Rows() [][]int {
	out := make([][]int, len(h.rows))
	for r, row := range h.rows {
		out[r] = append([]int(nil), row...)
	}
	return out
}

func (h *HitCounts) Reset() {
	for _, row := range h.rows {
		clear(row)
	}
}

// Zero reports whether no peg has been counted yet.
func (h *HitCounts) Zero() bool {
	for _, row := range h.rows {
		for _, c := range row {
			if c != 0 {
				return false
			}
		}
	}
	return true
}
