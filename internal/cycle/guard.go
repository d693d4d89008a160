// Package cycle detects re-entrant computations on recursive graphs such as
// supertype hierarchies.
package cycle

// Guard tracks keys whose computation is in progress. A Guard belongs to one
// binding context and is not safe for concurrent use.
type Guard[K comparable] struct {
	active map[K]struct{}
}

func NewGuard[K comparable]() *Guard[K] {
	return &Guard[K]{active: make(map[K]struct{})}
}

// Enter marks key active. It returns false when key is already active, in
// which case release is a no-op.
func (g *Guard[K]) Enter(key K) (release func(), ok bool) {
	if _, busy := g.active[key]; busy {
		return func() {}, false
	}
	g.active[key] = struct{}{}
	return func() { delete(g.active, key) }, true
}

// Handle runs action for key. When key is already being computed further up
// the stack, onCycle runs instead. The key is released on every exit path,
// including panics.
func Handle[K comparable, R any](g *Guard[K], key K, action func() R, onCycle func() R) R {
	release, ok := g.Enter(key)
	if !ok {
		return onCycle()
	}
	defer release()
	return action()
}

// Set is an explicit visiting set threaded through a single graph walk.
type Set[K comparable] map[K]struct{}

// Visit adds key and reports whether it was new.
func (s Set[K]) Visit(key K) bool {
	if _, seen := s[key]; seen {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Has reports whether key was visited.
func (s Set[K]) Has(key K) bool {
	_, ok := s[key]
	return ok
}
