package form

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-dynform/pkg/events"
)

// Change describes one slot value update.
type Change struct {
	Field    string
	Value    any
	Previous any
}

// Subscribe registers fn for value changes anywhere in the tree. With
// WithChangeDebounce only the last change of a burst is delivered. The
// returned function removes the listener.
func (f *FormState) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	r := f.root
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return func() {}
	}
	id := r.listeners.add(fn)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.listeners.remove(id)
	}
}

// EmitChanges forwards every delivered change to emitter as a change event.
// Emit failures are logged and do not stop later deliveries.
func (f *FormState) EmitChanges(ctx context.Context, emitter events.Emitter, source string) func() {
	if emitter == nil {
		return func() {}
	}
	logger := f.root.logger
	subject := f.root.id
	return f.Subscribe(func(change Change) {
		event, err := events.NewChanged(source, subject, events.ChangedData{
			Field:    change.Field,
			Value:    change.Value,
			Previous: change.Previous,
		})
		if err != nil {
			logger.Error("form: build change event", "field", change.Field, "error", err)
			return
		}
		if err := emitter.Emit(ctx, event); err != nil {
			logger.Warn("form: emit change event", "field", change.Field, "error", err)
		}
	})
}

func (r *root) notify(change Change) {
	r.mu.RLock()
	ready, closed, debounce := r.ready, r.closed, r.debounce
	r.mu.RUnlock()
	if !ready || closed {
		return
	}
	if debounce != nil {
		debounce.push(change)
		return
	}
	r.deliver(change)
}

func (r *root) deliver(change Change) {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return
	}
	listeners := r.listeners.snapshot()
	r.mu.RUnlock()

	r.logger.Debug("form: value changed", "form", r.id, "field", change.Field, "value", change.Value)
	for _, fn := range listeners {
		fn(change)
	}
}

// listenerSet keeps listeners in registration order. Callers hold root.mu.
type listenerSet struct {
	next  int
	items map[int]func(Change)
}

func newListenerSet() *listenerSet {
	return &listenerSet{items: make(map[int]func(Change))}
}

func (l *listenerSet) add(fn func(Change)) int {
	id := l.next
	l.next++
	l.items[id] = fn
	return id
}

func (l *listenerSet) remove(id int) {
	delete(l.items, id)
}

func (l *listenerSet) clear() {
	l.items = make(map[int]func(Change))
}

func (l *listenerSet) snapshot() []func(Change) {
	ids := make([]int, 0, len(l.items))
	for id := range l.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Change), len(ids))
	for i, id := range ids {
		out[i] = l.items[id]
	}
	return out
}

// debouncer delivers the last pushed change once no new change has arrived
// for delay.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	deliver func(Change)
	timer   *time.Timer
	pending Change
	stopped bool
}

func newDebouncer(delay time.Duration, deliver func(Change)) *debouncer {
	return &debouncer{delay: delay, deliver: deliver}
}

func (d *debouncer) push(change Change) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = change
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	change := d.pending
	d.timer = nil
	d.mu.Unlock()
	d.deliver(change)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
