package pixfx

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// ErrSessionClosed is returned by session methods after Close.
var ErrSessionClosed = errors.New("pixfx: session closed")

// resourcePressureBackoff is the delay before the single retry of a
// render that failed with ErrResourcePressure.
const resourcePressureBackoff = 50 * time.Millisecond

// RenderCallback receives the result of an asynchronous render. Exactly
// one of result and err is set. Superseded renders are never delivered.
type RenderCallback func(result *Pixmap, err error)

// SessionOption configures a session.
type SessionOption func(*Session)

// WithRenderer sets the renderer used for all rendering. The default is
// the software renderer.
func WithRenderer(r Renderer) SessionOption {
	return func(s *Session) { s.renderer = r }
}

// WithOperations sets the operation registry the session constructs
// operations from.
func WithOperations(reg *OperationRegistry) SessionOption {
	return func(s *Session) { s.registry = reg }
}

// Session is an interactive editing session over one source image. It
// owns an operations stack and re-renders automatically whenever an
// operation is activated, deactivated or re-parameterized.
//
// Renders run asynchronously with last-writer-wins delivery: a mutation
// arriving while a render is in flight cancels it, and only the result
// matching the latest state reaches the callback. Each render works on a
// snapshot of the stack taken when it is scheduled, so in-flight renders
// never observe later mutations. Pause and Resume bracket a batch of
// mutations into a single render; operation-updated notifications are
// swallowed while paused and delivered once per changed operation on the
// final Resume.
//
// Activation, deactivation, pause control and callbacks are safe for
// concurrent use. Parameter setters on the operations themselves must be
// called from a single goroutine, typically the UI loop.
type Session struct {
	// immutable after NewSession
	renderer Renderer
	registry *OperationRegistry

	mu         sync.Mutex
	source     *Pixmap
	stack      *OperationsStack
	result     *Pixmap
	onRender   RenderCallback
	onUpdate   func(id string)
	generation uint64
	cancel     context.CancelFunc
	paused     int
	pending    bool
	updated    []string
	closed     bool
}

// NewSession creates a session over the source image. The source is
// cloned, so the caller keeps ownership of its pixmap.
func NewSession(source *Pixmap, opts ...SessionOption) (*Session, error) {
	if source == nil || source.Width() == 0 || source.Height() == 0 {
		return nil, fmt.Errorf("pixfx: session source is empty")
	}
	s := &Session{
		source: source.Clone(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = NewSoftwareRenderer()
	}
	if s.registry == nil {
		s.registry = NewOperationRegistry()
	}
	s.stack = NewOperationsStack(s.registry)
	return s, nil
}

// SetRenderCallback installs the callback invoked with each completed
// render. It replaces any earlier callback.
func (s *Session) SetRenderCallback(cb RenderCallback) {
	s.mu.Lock()
	s.onRender = cb
	s.mu.Unlock()
}

// SetOperationCallback installs a callback invoked with the identifier of
// every operation whose parameters change.
func (s *Session) SetOperationCallback(cb func(id string)) {
	s.mu.Lock()
	s.onUpdate = cb
	s.mu.Unlock()
}

// Activate adds the operation to the session's stack, constructing it if
// necessary, and schedules a render. An unknown identifier returns
// ErrUnknownOperation and changes nothing.
func (s *Session) Activate(id string) (Operation, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if op, ok := s.stack.Get(id); ok {
		s.mu.Unlock()
		return op, nil
	}
	op, err := s.stack.Activate(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if n, ok := op.(notifiable); ok {
		n.bind(s.operationUpdated)
	}
	s.scheduleLocked()
	s.mu.Unlock()
	Logger().Debug("operation activated", "operation", id)
	return op, nil
}

// Deactivate removes the operation from the stack and schedules a render
// if it was active.
func (s *Session) Deactivate(id string) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	ok := s.stack.Deactivate(id)
	if ok {
		s.scheduleLocked()
	}
	s.mu.Unlock()
	if ok {
		Logger().Debug("operation deactivated", "operation", id)
	}
	return ok
}

// Operation returns the active operation for the identifier, if any.
func (s *Session) Operation(id string) (Operation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Get(id)
}

// ActiveOperations returns the active operations in rendering order.
func (s *Session) ActiveOperations() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Active()
}

// SetSource replaces the session's source image and schedules a render.
// The pixmap is cloned.
func (s *Session) SetSource(source *Pixmap) error {
	if source == nil || source.Width() == 0 || source.Height() == 0 {
		return fmt.Errorf("pixfx: session source is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.source = source.Clone()
	s.scheduleLocked()
	return nil
}

// Invalidate schedules a render without an operation change. Operations
// that do not report their own parameter updates use it to request a
// refresh.
func (s *Session) Invalidate() {
	s.mu.Lock()
	if !s.closed {
		s.scheduleLocked()
	}
	s.mu.Unlock()
}

// Pause suspends automatic rendering. Pause nests; rendering resumes when
// Resume has been called as many times as Pause.
func (s *Session) Pause() {
	s.mu.Lock()
	s.paused++
	s.mu.Unlock()
}

// Resume re-enables automatic rendering. If any mutations arrived while
// paused, exactly one render covering all of them is scheduled, and each
// operation that changed is reported to the operation callback once.
func (s *Session) Resume() {
	s.mu.Lock()
	if s.paused > 0 {
		s.paused--
	}
	var ids []string
	var cb func(id string)
	if s.paused == 0 && !s.closed {
		ids = s.updated
		s.updated = nil
		cb = s.onUpdate
		if s.pending {
			s.pending = false
			s.startRenderLocked()
		}
	}
	s.mu.Unlock()
	if cb != nil {
		for _, id := range ids {
			cb(id)
		}
	}
}

// Paused reports whether automatic rendering is currently suspended.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused > 0
}

// Result returns the most recent successful render, if any.
func (s *Session) Result() (*Pixmap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, false
	}
	return s.result, true
}

// RenderSync renders the current state synchronously, bypassing the
// asynchronous pipeline. It does not interact with pause state or the
// render callback; exports typically use it.
func (s *Session) RenderSync(ctx context.Context) (*Pixmap, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	src := s.source
	ops := s.stack.Snapshot()
	s.mu.Unlock()
	return s.renderOnce(ctx, src, ops)
}

// Close cancels any in-flight render and invalidates the session. It is
// idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.updated = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}

// operationUpdated is the bound notification target of the session's
// operations. While paused it records the identifier instead of calling
// the operation callback; Resume delivers the recorded identifiers.
func (s *Session) operationUpdated(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.scheduleLocked()
	if s.paused > 0 {
		if !slices.Contains(s.updated, id) {
			s.updated = append(s.updated, id)
		}
		s.mu.Unlock()
		return
	}
	cb := s.onUpdate
	s.mu.Unlock()
	if cb != nil {
		cb(id)
	}
}

// scheduleLocked requests a render for the current state. While paused it
// only records that state changed; Resume folds any number of recorded
// changes into one render.
func (s *Session) scheduleLocked() {
	if s.paused > 0 {
		s.pending = true
		return
	}
	s.startRenderLocked()
}

// startRenderLocked cancels the in-flight render, bumps the generation
// and starts a goroutine rendering a snapshot of the current state. The
// snapshot is taken under the lock, so the goroutine never reads the
// live stack or operation fields. It delivers its result only if its
// generation is still the latest.
func (s *Session) startRenderLocked() {
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	src := s.source
	ops := s.stack.Snapshot()

	go func() {
		result, err := s.renderOnce(ctx, src, ops)
		if ctx.Err() != nil {
			// Superseded or closed; the result belongs to stale state.
			Logger().Debug("render superseded", "generation", gen)
			return
		}

		s.mu.Lock()
		if gen != s.generation {
			s.mu.Unlock()
			return
		}
		if err == nil {
			s.result = result
		}
		cb := s.onRender
		s.mu.Unlock()

		if err != nil {
			Logger().Debug("render failed", "generation", gen, "error", err)
		}
		if cb != nil {
			cb(result, err)
		}
	}()
}

// renderOnce runs the snapshotted operations over src, retrying once
// after a short backoff if the renderer reports resource pressure.
func (s *Session) renderOnce(ctx context.Context, src *Pixmap, ops []Operation) (*Pixmap, error) {
	result, err := applyOperations(ctx, s.renderer, src, ops)
	if err == nil || !errors.Is(err, ErrResourcePressure) {
		return result, err
	}
	Logger().Debug("render retry after resource pressure", "backoff", resourcePressureBackoff)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(resourcePressureBackoff):
	}
	return applyOperations(ctx, s.renderer, src, ops)
}
