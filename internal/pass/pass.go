// Package pass provides the generic analysis/transform framework gpir's IR
// passes run on: a per-unit result cache (Manager), a pure-analysis
// contract (Analysis) and a mutating-transform contract (Transform). It
// has no knowledge of the IR itself — internal/ir instantiates it over
// *ir.Module and *ir.Function.
package pass

// Identity distinguishes one analysis from another in a Manager's cache.
// Analyses typically use their own (zero-sized) type as their identity, so
// that two calls to Result with the same Analysis type collide in the
// cache regardless of field values — matching spec §4.4's "analysis(from:
// A) returns the cached result or computes and caches it." It is an alias
// for any so that Analysis implementations need not import this package
// just to spell their Identity() return type.
type Identity = any

// Analysis is a pure computation over a unit U producing a result R. It
// must not mutate U.
type Analysis[U any, R any] interface {
	Identity() Identity
	Compute(unit U) R
}

// Transform mutates a unit U and reports whether it changed anything.
type Transform[U any] interface {
	Name() string
	Apply(unit U) bool
}

// Invalidator is implemented by any IR unit whose mutation APIs must drop
// cached analysis results.
type Invalidator interface {
	InvalidatePassResults()
}

// Manager is the per-unit analysis-result cache described in spec §4.4.
// Repeated calls to Result with the same Analysis identity return the same
// cached value until Invalidate runs.
type Manager[U any] struct {
	unit  U
	cache map[Identity]any
}

// NewManager creates a pass manager owned by unit.
func NewManager[U any](unit U) *Manager[U] {
	return &Manager[U]{unit: unit}
}

// Invalidate drops every cached analysis result.
func (m *Manager[U]) Invalidate() {
	m.cache = nil
}

// Result returns the cached result of a, computing and caching it on a
// miss. Object identity of the returned value is stable across calls
// until the next Invalidate, per spec §5 "Analyses are computed lazily and
// memoized; repeated analysis(from: A) returns the same object identity
// until invalidation."
func Result[U any, R any](m *Manager[U], a Analysis[U, R]) R {
	if m.cache == nil {
		m.cache = make(map[Identity]any)
	}
	if cached, ok := m.cache[a.Identity()]; ok {
		return cached.(R)
	}
	result := a.Compute(m.unit)
	m.cache[a.Identity()] = result
	return result
}

// RunTransform applies t to unit and invalidates the unit's cached
// analyses when it reports a change.
func RunTransform[U Invalidator](unit U, t Transform[U]) bool {
	changed := t.Apply(unit)
	if changed {
		unit.InvalidatePassResults()
	}
	return changed
}

// maxFixpointIterations bounds RunToFixpoint: a transform that never
// settles is a bug in the transform, not a case to loop on forever.
const maxFixpointIterations = 64

// RunToFixpoint applies t repeatedly until it reports no change, per the
// idempotence properties spec §8 requires of DCE and CSE. It panics if t
// has not settled within maxFixpointIterations, since that means t is not
// actually idempotent.
func RunToFixpoint[U Invalidator](unit U, t Transform[U]) bool {
	changedEver := false
	for i := 0; i < maxFixpointIterations; i++ {
		if !RunTransform(unit, t) {
			return changedEver
		}
		changedEver = true
	}
	panic("pass: " + t.Name() + " did not reach a fixpoint within " + itoa(maxFixpointIterations) + " iterations")
}

// NamedTransform pairs a Transform with the short name used in the CLI's
// --passes flag (spec §6), so a Pipeline can be built from string input.
type NamedTransform[U any] struct {
	Abbrev string
	Full   string
	Transform Transform[U]
}

// Pipeline is an ordered sequence of named transforms run over a unit in
// order — adapted from the teacher's OptimizationPipeline (ordered
// []OptimizationPass, AddPass, Run) but generic over the unit type and
// silent by default (callers decide how to report progress).
type Pipeline[U Invalidator] struct {
	stages []NamedTransform[U]
}

// NewPipeline creates an empty pipeline.
func NewPipeline[U Invalidator]() *Pipeline[U] {
	return &Pipeline[U]{}
}

// Add appends a named transform stage.
func (p *Pipeline[U]) Add(stage NamedTransform[U]) {
	p.stages = append(p.stages, stage)
}

// Run executes every stage over unit in order, returning whether any stage
// changed anything and, per stage, whether it changed anything.
func (p *Pipeline[U]) Run(unit U) (changedOverall bool, perStage []bool) {
	perStage = make([]bool, len(p.stages))
	for i, stage := range p.stages {
		changed := RunTransform(unit, stage.Transform)
		perStage[i] = changed
		changedOverall = changedOverall || changed
	}
	return changedOverall, perStage
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
