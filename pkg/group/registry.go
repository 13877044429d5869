package group

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Registry maps group names to Group records.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	groups map[string]*Group
	config Config
}

// NewRegistry creates a registry. Nil Logger and Trace fall back to the
// DefaultConfig values.
func NewRegistry(cfg Config) *Registry {
	def := DefaultConfig()
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if cfg.Trace == nil {
		cfg.Trace = def.Trace
	}
	return &Registry{
		groups: make(map[string]*Group),
		config: cfg,
	}
}

// Group returns the group named name, creating it if needed.
// Groups fetched this way are pinned and never evicted.
func (r *Registry) Group(name string) *Group {
	r.mu.Lock()
	g, created := r.lookupLocked(name)
	g.pinned = true
	r.mu.Unlock()

	if created {
		r.groupCreated(g)
	}
	return g
}

// Acquire returns the group named name, creating it if needed, and records
// one more bound handle. Every Acquire must be paired with a Release.
func (r *Registry) Acquire(name string) *Group {
	r.mu.Lock()
	g, created := r.lookupLocked(name)
	g.refs++
	r.mu.Unlock()

	if created {
		r.groupCreated(g)
	}
	return g
}

// Release records that one handle left g. When no handles remain, the group
// is evicted unless it is pinned or the registry retains idle groups.
func (r *Registry) Release(g *Group) {
	if g == nil {
		return
	}

	r.mu.Lock()
	if g.refs > 0 {
		g.refs--
	}
	evict := g.refs == 0 && !g.pinned && !r.config.RetainIdleGroups && r.groups[g.name] == g
	if evict {
		delete(r.groups, g.name)
	}
	r.mu.Unlock()

	if evict {
		r.config.Logger.Debug("crosstalk group evicted", "group", g.name)
		r.config.Trace.Log(trace.Event{
			Timestamp: time.Now(),
			Group:     g.name,
			Kind:      trace.KindGroup,
			Action:    trace.ActionEvict,
		})
	}
}

func (r *Registry) lookupLocked(name string) (*Group, bool) {
	if g, ok := r.groups[name]; ok {
		return g, false
	}
	g := newGroup(r, name)
	r.groups[name] = g
	return g, true
}

func (r *Registry) groupCreated(g *Group) {
	r.config.Logger.Debug("crosstalk group created", "group", g.name)
	r.config.Trace.Log(trace.Event{
		Timestamp: time.Now(),
		Group:     g.name,
		Kind:      trace.KindGroup,
		Action:    trace.ActionCreate,
	})
}

// Lookup returns the group named name if a record exists. Unlike Group it
// neither creates nor pins the record.
func (r *Registry) Lookup(name string) (*Group, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[name]
	return g, ok
}

// Has reports whether a record exists for name.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.groups[name]
	return ok
}

// Len returns the number of group records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups)
}

// Groups returns all group names, sorted.
func (r *Registry) Groups() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RefCount returns the number of handles bound to name.
func (r *Registry) RefCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groups[name]; ok {
		return g.refs
	}
	return 0
}

func (r *Registry) logger() *slog.Logger {
	return r.config.Logger
}

func (r *Registry) trace() trace.Logger {
	return r.config.Trace
}
