package castle

import (
	"time"

	"github.com/vovakirdan/tui-castle/internal/core"
)

// MaxHistory is the largest supported rolling speed window.
const MaxHistory = 16

// speedHistory is a fixed-size ring of recent speed samples kept inline in
// a part slot.
type speedHistory struct {
	buf  [MaxHistory]float64
	size int // Window length, 1..MaxHistory
	n    int // Samples present, <= size
	next int
}

func (h *speedHistory) push(v float64) {
	h.buf[h.next] = v
	h.next = (h.next + 1) % h.size
	if h.n < h.size {
		h.n++
	}
}

// mean returns the average of the samples present, or 0 when empty.
func (h *speedHistory) mean() float64 {
	if h.n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < h.n; i++ {
		sum += h.buf[i]
	}
	return sum / float64(h.n)
}

func (h *speedHistory) len() int { return h.n }

// slot is one arena cell. A slot is live while it holds a part.
type slot struct {
	gen  uint32
	live bool
	rec  PartRecord
	hist speedHistory

	classified bool
	awarded    bool
	settleBy   time.Time // Deadline for the settle award
}

// CastleAggregate is derived from the live parts on demand.
type CastleAggregate struct {
	MaxLevel      int // 0 when empty
	CountsByLevel [LevelCount + 1]int
	TotalParts    int
}

// Count returns the number of live parts at level l.
func (a CastleAggregate) Count(l int) int {
	if !ValidLevel(l) {
		return 0
	}
	return a.CountsByLevel[l]
}

// Store is the arena of live parts. It is not safe for concurrent use;
// Engine serializes access.
type Store struct {
	slots       []slot
	free        []uint32
	live        int
	historySize int
}

// NewStore creates a store whose parts keep historySize speed samples.
// historySize is clamped to 1..MaxHistory.
func NewStore(historySize int) *Store {
	return &Store{historySize: core.Clamp(historySize, 1, MaxHistory)}
}

// HistorySize returns the configured rolling window length.
func (s *Store) HistorySize() int {
	return s.historySize
}

// Insert adds a part and returns its handle.
func (s *Store) Insert(level int, pos, vel core.Vec2) (PartID, error) {
	if !ValidLevel(level) {
		return NoPart, ErrInvalidLevel
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}

	sl := &s.slots[idx]
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1 // Generation 0 is reserved for NoPart
	}
	sl.live = true
	id := makePartID(idx, sl.gen)
	sl.rec = PartRecord{
		ID:       id,
		Level:    level,
		Position: pos,
		Velocity: vel,
	}
	sl.hist = speedHistory{size: s.historySize}
	s.live++
	return id, nil
}

// slot returns the live slot for id, or nil for stale or unknown handles.
func (s *Store) slot(id PartID) *slot {
	idx := id.index()
	if id == NoPart || int(idx) >= len(s.slots) {
		return nil
	}
	sl := &s.slots[idx]
	if !sl.live || sl.gen != id.gen() {
		return nil
	}
	return sl
}

// Update refreshes the kinematic state of a part.
// It returns false if the handle is stale.
func (s *Store) Update(id PartID, pos, vel core.Vec2) bool {
	sl := s.slot(id)
	if sl == nil {
		return false
	}
	sl.rec.Position = pos
	sl.rec.Velocity = vel
	return true
}

// Remove frees the slot of a part. Freeing is the only place the speed
// history is discarded.
func (s *Store) Remove(id PartID) bool {
	sl := s.slot(id)
	if sl == nil {
		return false
	}
	gen := sl.gen
	*sl = slot{gen: gen}
	s.free = append(s.free, id.index())
	s.live--
	return true
}

// Get returns a copy of a live part.
func (s *Store) Get(id PartID) (PartRecord, bool) {
	sl := s.slot(id)
	if sl == nil {
		return PartRecord{}, false
	}
	return sl.rec, true
}

// HistoryLen returns the number of speed samples held for a part.
// Stale handles hold none.
func (s *Store) HistoryLen(id PartID) int {
	sl := s.slot(id)
	if sl == nil {
		return 0
	}
	return sl.hist.len()
}

// Active returns all live parts in slot order.
func (s *Store) Active() []PartRecord {
	out := make([]PartRecord, 0, s.live)
	for i := range s.slots {
		if s.slots[i].live {
			out = append(out, s.slots[i].rec)
		}
	}
	return out
}

// IDs returns the handles of all live parts in slot order.
func (s *Store) IDs() []PartID {
	out := make([]PartID, 0, s.live)
	for i := range s.slots {
		if s.slots[i].live {
			out = append(out, s.slots[i].rec.ID)
		}
	}
	return out
}

// Len returns the number of live parts.
func (s *Store) Len() int {
	return s.live
}

// Aggregate computes max level, per-level counts and total.
func (s *Store) Aggregate() CastleAggregate {
	var a CastleAggregate
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.live {
			continue
		}
		a.CountsByLevel[sl.rec.Level]++
		a.TotalParts++
		if sl.rec.Level > a.MaxLevel {
			a.MaxLevel = sl.rec.Level
		}
	}
	return a
}

// CountsByLevel returns the live part count per level, indexed by level.
// Index 0 is unused.
func (s *Store) CountsByLevel() [LevelCount + 1]int {
	return s.Aggregate().CountsByLevel
}

// MaxLevel returns the highest live part level, or 0 when empty.
func (s *Store) MaxLevel() int {
	return s.Aggregate().MaxLevel
}

// Reset frees every slot. Generations survive so old handles stay stale.
func (s *Store) Reset() {
	s.free = s.free[:0]
	for i := len(s.slots) - 1; i >= 0; i-- {
		gen := s.slots[i].gen
		s.slots[i] = slot{gen: gen}
		s.free = append(s.free, uint32(i))
	}
	s.live = 0
}
