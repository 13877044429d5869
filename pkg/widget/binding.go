package widget

import (
	"slices"
	"sync"

	"github.com/crosstalk-go/crosstalk/pkg/filter"
	"github.com/crosstalk-go/crosstalk/pkg/group"
	"github.com/crosstalk-go/crosstalk/pkg/keys"
	"github.com/crosstalk-go/crosstalk/pkg/selection"
)

// RowState is how the host should draw one row.
type RowState struct {
	Key string

	// Selected is true when a selection is active and contains Key.
	Selected bool

	// Visible is false when a filter is active and excludes Key.
	Visible bool
}

// Option configures a Binding.
type Option func(*bindingOptions)

type bindingOptions struct {
	extra map[string]any
}

// WithExtraInfo attaches metadata to every event the binding sends.
func WithExtraInfo(extra map[string]any) Option {
	return func(o *bindingOptions) {
		o.extra = extra
	}
}

// Binding links one widget instance to a crosstalk group.
type Binding struct {
	sel  *selection.Handle
	filt *filter.Handle

	mu       sync.Mutex
	keys     []string
	onChange []func(*Binding)
	onBrush  []func()
	closed   bool
}

// New creates an unlinked Binding. Call Render to join a group.
func New(reg *group.Registry, opts ...Option) *Binding {
	var o bindingOptions
	for _, opt := range opts {
		opt(&o)
	}

	b := &Binding{
		sel:  selection.New(reg, selection.WithExtraInfo(o.extra)),
		filt: filter.New(reg, filter.WithExtraInfo(o.extra)),
	}
	b.sel.On(group.EventChange, b.selectionChanged)
	b.filt.On(group.EventChange, b.filterChanged)
	return b
}

// Selection returns the binding's selection handle.
func (b *Binding) Selection() *selection.Handle {
	return b.sel
}

// Filter returns the binding's filter handle.
func (b *Binding) Filter() *filter.Handle {
	return b.filt
}

// Render applies a new payload. It joins p.Group, or leaves the current
// group when p carries no keys, and stores the row keys. Changing group
// withdraws this widget's filter in the old one.
func (b *Binding) Render(p Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.keys = slices.Clone([]string(p.Keys))
	b.mu.Unlock()

	if !p.Linked() {
		b.sel.Unbind()
		b.filt.Unbind()
	} else {
		b.sel.SetGroup(p.Group)
		b.filt.SetGroup(p.Group)
	}

	b.notify()
	return nil
}

// Group returns the linked group name and whether the binding is linked.
func (b *Binding) Group() (string, bool) {
	return b.sel.GroupName()
}

// Select publishes the host's brush as the group selection.
// An empty ks clears the selection.
func (b *Binding) Select(ks []string) {
	b.sel.Set(ks, nil)
}

// ClearSelection clears the group selection.
func (b *Binding) ClearSelection() {
	b.sel.Clear(nil)
}

// FilterKeys publishes the widget's filter contribution.
// An empty ks withdraws it.
func (b *Binding) FilterKeys(ks []string) {
	b.filt.Set(ks, nil)
}

// ClearFilter withdraws the widget's filter contribution.
func (b *Binding) ClearFilter() {
	b.filt.Clear(nil)
}

// Rows returns the draw state of every row, in payload order.
func (b *Binding) Rows() []RowState {
	b.mu.Lock()
	rowKeys := b.keys
	b.mu.Unlock()

	sel := b.sel.Value()
	filt := b.filt.FilteredKeys()

	var selected, visible keys.Set
	if sel.IsPresent() {
		selected = keys.NewSet(sel.Keys)
	}
	if filt.IsPresent() {
		visible = keys.NewSet(filt.Keys)
	}

	rows := make([]RowState, len(rowKeys))
	for i, k := range rowKeys {
		rows[i] = RowState{
			Key:      k,
			Selected: selected != nil && selected.Has(k),
			Visible:  visible == nil || visible.Has(k),
		}
	}
	return rows
}

// OnChange registers fn to run after any selection or filter change in
// the group, and after Render.
func (b *Binding) OnChange(fn func(*Binding)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = append(b.onChange, fn)
}

// OnBrushReset registers fn to run when another participant makes a
// selection.
func (b *Binding) OnBrushReset(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onBrush = append(b.onBrush, fn)
}

// Close withdraws the widget from its group. The group selection is kept.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.onChange = nil
	b.onBrush = nil
	b.mu.Unlock()

	b.sel.Close()
	b.filt.Close()
}

func (b *Binding) selectionChanged(ev group.ChangeEvent) {
	if !b.sel.IsSender(ev) && ev.Value.IsPresent() {
		b.mu.Lock()
		hooks := slices.Clone(b.onBrush)
		b.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
	}
	b.notify()
}

func (b *Binding) filterChanged(group.ChangeEvent) {
	b.notify()
}

func (b *Binding) notify() {
	b.mu.Lock()
	hooks := slices.Clone(b.onChange)
	b.mu.Unlock()
	for _, fn := range hooks {
		fn(b)
	}
}
