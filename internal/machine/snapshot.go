package machine

import (
	"time"

	"github.com/xtding233/beanmachine/internal/galton"
)

// Snapshot is a copy of a run's state, safe to hand to another goroutine.
type Snapshot struct {
	RunID    string              `json:"run_id"`
	Status   Status              `json:"status"`
	Config   galton.BoardConfig  `json:"config"`
	Expected galton.Distribution `json:"expected"`
	// Hits uses the compact layout of galton.HitCounts.Rows.
	Hits       [][]int       `json:"hits"`
	SlotCounts []int         `json:"slot_counts"`
	Launched   int           `json:"launched"`
	Landed     int           `json:"landed"`
	Retired    int           `json:"retired"`
	Speed      float64       `json:"speed"`
	Elapsed    time.Duration `json:"elapsed"`
	Stats      *galton.Stats `json:"stats,omitempty"`
}

// Snapshot copies the latest run; ok is false before the first Start.
func (m *Machine) Snapshot() (Snapshot, bool) {
	r := m.run
	if r == nil {
		return Snapshot{Speed: m.speed}, false
	}
	s := Snapshot{
		RunID:      r.ID,
		Status:     r.status,
		Config:     r.Config,
		Expected:   r.Expected,
		Hits:       r.Hits.Rows(),
		SlotCounts: r.Hits.SlotCounts(),
		Launched:   r.launched,
		Landed:     r.landed,
		Retired:    r.retired,
		Speed:      m.speed,
		Elapsed:    r.elapsed(),
	}
	if r.stats != nil {
		st := *r.stats
		s.Stats = &st
	}
	return s, true
}
