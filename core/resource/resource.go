package resource

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
)

// DefaultRetryDelay is the pause before the single retry of a failed list.
const DefaultRetryDelay = time.Second

// ErrUnsupported is returned by commands the backend does not offer for an entity.
var ErrUnsupported = errors.New("operation not supported")

type State uint8

const (
	Idle State = iota
	Loading
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "idle"
}

// Funcs are the backend calls behind a Resource. A nil command is unsupported.
type Funcs[T, C, U any] struct {
	List   func(ctx context.Context) ([]T, error)
	Create func(ctx context.Context, data C) (T, error)
	Update func(ctx context.Context, id string, data U) (T, error)
	Delete func(ctx context.Context, id string) error
}

// Snapshot is what a view sees of a Resource at one point in time.
// Items is never nil.
type Snapshot[T any] struct {
	State    State
	Items    []T
	Err      error
	Mutating bool
	// Stale is set once the cache has been invalidated and until the next list is applied.
	Stale bool
}

type options struct {
	retryDelay time.Duration
	retryable  func(error) bool
	log        core.Logger
	observer   Observer
}

type Option func(*options)

func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.retryDelay = d }
}

// WithRetryable limits the list retry to errors for which retryable reports true.
// Without it every failure is retried once.
func WithRetryable(retryable func(error) bool) Option {
	return func(o *options) {
		if retryable != nil {
			o.retryable = retryable
		}
	}
}

func WithLogger(log core.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		retryDelay: DefaultRetryDelay,
		retryable:  func(error) bool { return true },
		log:        core.NopLogger{},
		observer:   NopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Resource caches the list of one entity and runs its commands.
//
// Every list request is tagged; a response is applied only when it answers the latest
// request, so a superseded response never overwrites a newer one. Commands are
// serialized and, once the backend accepts them, the cached list is invalidated and
// replaced by a fresh one. A failed command leaves the cache as it was.
type Resource[T, C, U any] struct {
	key   string
	funcs Funcs[T, C, U]
	opts  options

	cmdMu sync.Mutex // serializes commands

	mu     sync.Mutex
	seq    uint64
	snap   Snapshot[T]
	subs   map[int]chan Snapshot[T]
	nextID int
}

func New[T, C, U any](key string, funcs Funcs[T, C, U], opts ...Option) *Resource[T, C, U] {
	return &Resource[T, C, U]{
		key:   key,
		funcs: funcs,
		opts:  newOptions(opts),
		snap:  Snapshot[T]{State: Idle, Items: []T{}},
		subs:  make(map[int]chan Snapshot[T]),
	}
}

func (r *Resource[T, C, U]) Key() string { return r.key }

func (r *Resource[T, C, U]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Fresh reports whether the cached list can be served without asking the backend.
func (r *Resource[T, C, U]) Fresh() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.freshLocked()
}

// Items returns the cached list when fresh, otherwise it fetches it.
func (r *Resource[T, C, U]) Items(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	if r.freshLocked() {
		items := r.snapshotLocked().Items
		r.mu.Unlock()
		return items, nil
	}
	r.mu.Unlock()
	return r.Fetch(ctx)
}

// Fetch lists the entity, retrying once on failure.
// The result is applied to the cache only if no newer Fetch started in the meantime;
// a superseded Fetch still returns what it received.
func (r *Resource[T, C, U]) Fetch(ctx context.Context) ([]T, error) {
	if r.funcs.List == nil {
		return nil, ErrUnsupported
	}

	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.snap.State = Loading
	r.publishLocked()
	r.mu.Unlock()

	start := time.Now()
	items, attempts, err := r.list(ctx)
	r.opts.observer.FetchDone(r.key, attempts, err, time.Since(start))
	if items == nil {
		items = []T{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		r.opts.observer.StaleDiscarded(r.key)
		r.opts.log.Debug("discarding superseded list response", map[string]interface{}{"resource": r.key, "seq": seq, "latest": r.seq})
		return items, err
	}

	if err != nil {
		r.snap = Snapshot[T]{State: Error, Items: []T{}, Err: err, Mutating: r.snap.Mutating}
		r.opts.log.Warn("listing failed", err, map[string]interface{}{"resource": r.key})
	} else {
		r.snap = Snapshot[T]{State: Ready, Items: items, Mutating: r.snap.Mutating}
	}
	r.publishLocked()
	return cloneItems(items), err
}

func (r *Resource[T, C, U]) list(ctx context.Context) ([]T, int, error) {
	items, err := r.funcs.List(ctx)
	if err == nil || ctx.Err() != nil || !r.opts.retryable(err) {
		return items, 1, err
	}

	r.opts.log.Debug("retrying list", map[string]interface{}{"resource": r.key, "error": err.Error()})
	if r.opts.retryDelay > 0 {
		timer := time.NewTimer(r.opts.retryDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, 1, err
		}
	}
	items, err = r.funcs.List(ctx)
	return items, 2, err
}

// Invalidate marks the cached list stale; the next read fetches it again.
func (r *Resource[T, C, U]) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap.Stale {
		return
	}
	r.snap.Stale = true
	r.publishLocked()
}

// Reset drops the cached list, e.g. when the session ends.
func (r *Resource[T, C, U]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++ // orphan in-flight requests
	r.snap = Snapshot[T]{State: Idle, Items: []T{}}
	r.publishLocked()
}

func (r *Resource[T, C, U]) Create(ctx context.Context, data C) (T, error) {
	var created T
	if r.funcs.Create == nil {
		return created, ErrUnsupported
	}
	err := r.command(ctx, "create", func(ctx context.Context) (err error) {
		created, err = r.funcs.Create(ctx, data)
		return err
	})
	return created, err
}

func (r *Resource[T, C, U]) Update(ctx context.Context, id string, data U) (T, error) {
	var updated T
	if r.funcs.Update == nil {
		return updated, ErrUnsupported
	}
	err := r.command(ctx, "update", func(ctx context.Context) (err error) {
		updated, err = r.funcs.Update(ctx, id, data)
		return err
	})
	return updated, err
}

func (r *Resource[T, C, U]) Delete(ctx context.Context, id string) error {
	if r.funcs.Delete == nil {
		return ErrUnsupported
	}
	return r.command(ctx, "delete", func(ctx context.Context) error {
		return r.funcs.Delete(ctx, id)
	})
}

// command runs call once. Commands are never retried: resubmitting is up to the user.
func (r *Resource[T, C, U]) command(ctx context.Context, op string, call func(context.Context) error) error {
	r.cmdMu.Lock()
	defer r.cmdMu.Unlock()

	r.setMutating(true)
	defer r.setMutating(false)

	start := time.Now()
	err := call(ctx)
	r.opts.observer.CommandDone(r.key, op, err, time.Since(start))
	if err != nil {
		return err
	}

	r.Invalidate()
	if _, err := r.Fetch(ctx); err != nil {
		// the command went through, the list shows the fetch error
		r.opts.log.Warn("refetch after "+op+" failed", err, map[string]interface{}{"resource": r.key})
	}
	return nil
}

func (r *Resource[T, C, U]) setMutating(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Mutating = on
	r.publishLocked()
}

// Subscribe returns a channel receiving the current snapshot and every later change.
// Slow readers only miss intermediate snapshots, never the latest one.
// When the cache is not fresh a fetch is started with ctx.
func (r *Resource[T, C, U]) Subscribe(ctx context.Context) (<-chan Snapshot[T], func()) {
	ch := make(chan Snapshot[T], 1)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	ch <- r.snapshotLocked()
	fetch := !r.freshLocked() && r.snap.State != Loading
	r.mu.Unlock()

	if fetch {
		go func() { _, _ = r.Fetch(ctx) }()
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs, id)
			close(ch)
		})
	}
	return ch, unsubscribe
}

func (r *Resource[T, C, U]) publishLocked() {
	snap := r.snapshotLocked()
	for _, ch := range r.subs {
		select {
		case ch <- snap:
		default:
			// drop the unread snapshot for the latest one
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (r *Resource[T, C, U]) freshLocked() bool {
	return r.snap.State == Ready && !r.snap.Stale
}

func (r *Resource[T, C, U]) snapshotLocked() Snapshot[T] {
	snap := r.snap
	snap.Items = cloneItems(r.snap.Items)
	return snap
}

func cloneItems[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
