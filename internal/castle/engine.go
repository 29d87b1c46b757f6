package castle

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-castle/internal/core"
)

// Params bundles every tunable of the engine.
type Params struct {
	Capacity      CapacityTable
	Scoring       ScoringConfig
	Classifier    ClassifierConfig
	Collapse      CollapseConfig
	HistorySize   int
	SettleTimeout time.Duration
	QueueSize     int
}

// DefaultParams returns the default engine parameters.
func DefaultParams() Params {
	return Params{
		Capacity:      DefaultCapacity(),
		Scoring:       DefaultScoringConfig(),
		Classifier:    DefaultClassifierConfig(),
		Collapse:      DefaultCollapseConfig(),
		HistorySize:   5,
		SettleTimeout: 3 * time.Second,
		QueueSize:     DefaultQueueSize,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used for throttling and settle timeouts.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// TickResult summarizes one Tick.
type TickResult struct {
	Evaluation Evaluation
	Collapse   CollapseReport // Zero when the evaluation was throttled
	Collapsed  bool           // Latched collapse state after this tick
	Awards     []SettleAwarded
}

// Engine owns the castle state and wires the store, classifier, collapse
// detector, progression gate and scorer together. All methods are safe for
// concurrent use.
type Engine struct {
	mu sync.Mutex

	params   Params
	provider SampleProvider
	clock    Clock
	logger   *log.Logger

	store      *Store
	classifier *Classifier
	detector   *CollapseDetector
	gate       *Gate
	scorer     *Scorer
	events     *EventQueue

	eligible      Eligibility
	eligibleKnown bool
	collapsed     bool
}

// NewEngine creates an engine reading kinematic samples from provider.
// The collapse detector's unstable threshold always follows the
// classifier's warning threshold.
func NewEngine(p Params, provider SampleProvider, opts ...Option) *Engine {
	p.Collapse.UnstableThreshold = p.Classifier.Thresholds.Warning

	e := &Engine{
		params:     p,
		provider:   provider,
		clock:      SystemClock{},
		logger:     log.New(io.Discard),
		store:      NewStore(p.HistorySize),
		classifier: NewClassifier(p.Classifier),
		detector:   NewCollapseDetector(p.Collapse),
		gate:       NewGate(p.Capacity),
		scorer:     NewScorer(p.Scoring),
		events:     NewEventQueue(p.QueueSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.updateProgression()
	return e
}

// Params returns the engine parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Spawn inserts a new part at level if the progression gate allows it.
func (e *Engine) Spawn(level int, pos, vel core.Vec2) (PartID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !ValidLevel(level) {
		return NoPart, ErrInvalidLevel
	}
	if !e.gate.Allows(e.store.Aggregate(), level) {
		e.logger.Debug("spawn refused", "level", level, "eligible", e.eligible.Levels)
		return NoPart, ErrLevelNotEligible
	}

	id, err := e.store.Insert(level, pos, vel)
	if err != nil {
		return NoPart, err
	}
	e.logger.Debug("part spawned", "part", id, "level", level)
	e.updateProgression()
	return id, nil
}

// Place judges a landed part and scores it.
func (e *Engine) Place(ev DropEvent) (PlacementResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sl := e.store.slot(ev.Part)
	if sl == nil {
		return PlacementResult{}, ErrUnknownPart
	}
	if sl.rec.Placed {
		return PlacementResult{}, ErrAlreadyPlaced
	}

	var onGround bool
	support := make([]int, 0, len(ev.Contacts))
	for _, c := range ev.Contacts {
		if c.Ground {
			onGround = true
			continue
		}
		if c.Part == ev.Part {
			continue
		}
		// A misplaced part is awaiting removal and supports nothing.
		if rec, ok := e.store.Get(c.Part); ok && !(rec.Placed && !rec.PlacedOnValidTarget) {
			support = append(support, rec.Level)
		}
	}

	level := sl.rec.Level
	valid, target := ValidatePlacement(level, onGround, support)

	var delta int
	if valid {
		delta = e.scorer.Valid(level)
		sl.settleBy = e.clock.Now().Add(e.params.SettleTimeout)
	} else {
		delta = e.scorer.Invalid()
	}
	sl.rec.Placed = true
	sl.rec.PlacedOnValidTarget = valid

	res := PlacementResult{
		Part:        ev.Part,
		Level:       level,
		Valid:       valid,
		TargetLevel: target,
		ScoreDelta:  delta,
	}
	e.events.Push(res)
	e.logger.Debug("placement judged",
		"part", ev.Part,
		"level", level,
		"valid", valid,
		"target", target,
		"delta", delta,
		"combo", e.scorer.state.ComboCount,
	)
	return res, nil
}

// Remove deletes a part from the castle.
func (e *Engine) Remove(id PartID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.store.Get(id)
	if !ok {
		return ErrUnknownPart
	}
	e.store.Remove(id)
	e.classifier.Forget(id)
	e.events.Push(PartRemoved{Part: id, Level: rec.Level})
	e.logger.Debug("part removed", "part", id, "level", rec.Level)
	e.updateProgression()
	return nil
}

// Tick refreshes every part from the sample provider and runs a
// (possibly throttled) evaluation. Parts the provider does not know keep
// their last sample.
func (e *Engine) Tick() TickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.provider != nil {
		for _, id := range e.store.IDs() {
			if s, ok := e.provider.Sample(id); ok {
				e.store.Update(id, s.Position, s.Velocity)
			}
		}
	}

	now := e.clock.Now()
	res := TickResult{Evaluation: e.classifier.Evaluate(now, e.store)}
	if res.Evaluation.Throttled {
		res.Collapsed = e.collapsed
		return res
	}

	for _, ch := range res.Evaluation.Changes {
		e.events.Push(ch)
	}

	res.Collapse = e.detector.Detect(e.store.Active())
	if res.Collapse.Collapsed && !e.collapsed {
		e.collapsed = true
		e.events.Push(CollapseDetected{Report: res.Collapse})
		e.logger.Warn("castle collapsed",
			"settled", res.Collapse.Settled,
			"moving", res.Collapse.HighlyUnstable,
			"parts", res.Collapse.Active,
		)
	}
	res.Collapsed = e.collapsed

	res.Awards = e.settleAwards(now)
	return res
}

// settleAwards grants the one-off stability award to validly placed parts
// that are now stable or whose settle timeout has expired.
func (e *Engine) settleAwards(now time.Time) []SettleAwarded {
	var awards []SettleAwarded
	th := e.classifier.Thresholds()
	for i := range e.store.slots {
		sl := &e.store.slots[i]
		if !sl.live || !sl.rec.PlacedOnValidTarget || sl.awarded {
			continue
		}
		if sl.rec.Stability != Stable && now.Before(sl.settleBy) {
			continue
		}
		avg := sl.rec.AvgSpeed
		a := SettleAwarded{
			Part:      sl.rec.ID,
			Points:    th.PointValue(avg),
			Perfect:   th.IsPerfect(avg),
			Stability: sl.rec.Stability,
		}
		sl.awarded = true
		e.scorer.Award(a.Points, a.Perfect)
		e.events.Push(a)
		awards = append(awards, a)
		e.logger.Debug("settle awarded", "part", a.Part, "points", a.Points, "perfect", a.Perfect)
	}
	return awards
}

// Bonus adds flat points to the score.
func (e *Engine) Bonus(points int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scorer.Bonus(points)
}

// Reset clears parts, score, collapse latch and pending events.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Reset()
	e.classifier.Reset()
	e.scorer.Reset()
	e.events.Clear()
	e.collapsed = false
	e.eligibleKnown = false
	e.updateProgression()
	e.logger.Debug("castle reset")
}

// updateProgression recomputes eligibility and emits ProgressionUpdated
// when it changed. Callers hold e.mu.
func (e *Engine) updateProgression() {
	el := e.gate.Eligible(e.store.Aggregate())
	if e.eligibleKnown && el.Equal(e.eligible) {
		return
	}
	e.eligible = el
	e.eligibleKnown = true
	e.events.Push(ProgressionUpdated{EligibleLevels: append([]int(nil), el.Levels...)})
	if el.Deadlocked() {
		e.logger.Info("castle deadlocked", "parts", e.store.Len())
	}
}

// Events drains pending events in emission order.
func (e *Engine) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events.Drain()
}

// Eligible returns the currently spawnable levels.
func (e *Engine) Eligible() Eligibility {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Eligibility{Levels: append([]int(nil), e.eligible.Levels...)}
}

// Deadlocked reports whether no level can be spawned.
func (e *Engine) Deadlocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eligible.Deadlocked()
}

// Collapsed reports whether a collapse has been detected since the last Reset.
func (e *Engine) Collapsed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collapsed
}

// Score returns the scoring state.
func (e *Engine) Score() ScoringState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scorer.State()
}

// ComboFactor returns the multiplier the next valid placement would get.
func (e *Engine) ComboFactor() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scorer.ComboFactor()
}

// Part returns a live part.
func (e *Engine) Part(id PartID) (PartRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// Parts returns every live part in slot order.
func (e *Engine) Parts() []PartRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Active()
}

// Aggregate returns the derived castle aggregate.
func (e *Engine) Aggregate() CastleAggregate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Aggregate()
}

// HistoryLen returns the number of speed samples held for a part.
func (e *Engine) HistoryLen(id PartID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.HistoryLen(id)
}

// Settled reports whether a part has received its settle award.
func (e *Engine) Settled(id PartID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	sl := e.store.slot(id)
	return sl != nil && sl.awarded
}
