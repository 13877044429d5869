package group

import (
	"sort"
	"sync"

	"github.com/crosstalk-go/crosstalk/pkg/keys"
)

// Group is the shared state behind one group name.
type Group struct {
	name     string
	registry *Registry

	mu   sync.Mutex
	vars map[string]*Var

	// filterMu serialises contribution updates with the filter Var swap so
	// the Var always equals the FilterSet's intersection.
	filterMu sync.Mutex
	filters  *FilterSet

	// Guarded by registry.mu.
	refs   int
	pinned bool
}

func newGroup(r *Registry, name string) *Group {
	g := &Group{
		name:     name,
		registry: r,
		vars:     make(map[string]*Var),
		filters:  NewFilterSet(),
	}
	g.vars[VarSelection] = newVar(g, VarSelection)
	g.vars[VarFilter] = newVar(g, VarFilter)
	return g
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Var returns the named Var, creating it on first use.
func (g *Group) Var(name string) *Var {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.vars[name]
	if !ok {
		v = newVar(g, name)
		g.vars[name] = v
	}
	return v
}

// VarNames returns the names of all Vars in the group, sorted.
func (g *Group) VarNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.vars))
	for name := range g.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Selection returns the selection Var.
func (g *Group) Selection() *Var {
	return g.Var(VarSelection)
}

// Filter returns the derived filter Var.
func (g *Group) Filter() *Var {
	return g.Var(VarFilter)
}

// FilteredKeys returns the current filter intersection, or keys.None()
// when no handle contributes a filter.
func (g *Group) FilteredKeys() keys.Optional {
	return g.Filter().Get()
}

// Contribution returns handleID's current filter contribution.
func (g *Group) Contribution(handleID string) ([]string, bool) {
	g.filterMu.Lock()
	defer g.filterMu.Unlock()
	return g.filters.Contribution(handleID)
}

// ContributionCount returns the number of active filter contributions.
func (g *Group) ContributionCount() int {
	g.filterMu.Lock()
	defer g.filterMu.Unlock()
	return g.filters.Len()
}

// Contribute replaces handleID's filter contribution with ks, recomputes the
// intersection and broadcasts it on the filter Var. An empty ks withdraws
// the contribution instead.
func (g *Group) Contribute(handleID string, ks []string, sender Sender, extra map[string]any) {
	if len(ks) == 0 {
		g.Withdraw(handleID, sender, extra)
		return
	}

	fv := g.Filter()

	g.filterMu.Lock()
	g.filters.Update(handleID, ks)
	value := g.filters.Value()
	count := g.filters.Len()
	old, changed := fv.swap(value)
	g.filterMu.Unlock()

	if changed {
		fv.publish(value, old, sender, extra, count)
	}
}

// Withdraw removes handleID's filter contribution, recomputes the
// intersection and broadcasts it. It reports false, without broadcasting,
// when handleID had no contribution.
func (g *Group) Withdraw(handleID string, sender Sender, extra map[string]any) bool {
	fv := g.Filter()

	g.filterMu.Lock()
	if !g.filters.Clear(handleID) {
		g.filterMu.Unlock()
		return false
	}
	value := g.filters.Value()
	count := g.filters.Len()
	old, changed := fv.swap(value)
	g.filterMu.Unlock()

	if changed {
		fv.publish(value, old, sender, extra, count)
	}
	return true
}
