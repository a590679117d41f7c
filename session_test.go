package pixfx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// renderRecorder collects render callback deliveries for assertions.
type renderRecorder struct {
	mu      sync.Mutex
	results []*Pixmap
	errs    []error
}

func (r *renderRecorder) callback(result *Pixmap, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	r.errs = append(r.errs, err)
}

func (r *renderRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func (r *renderRecorder) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d renders, have %d", n, r.count())
		}
		time.Sleep(time.Millisecond)
	}
}

// flakyRenderer fails the first N primitive renders with the given error
// and delegates to the software renderer afterwards.
type flakyRenderer struct {
	mu       sync.Mutex
	failures int
	err      error
	inner    Renderer
}

func (f *flakyRenderer) RenderPrimitive(dst *Pixmap, p Primitive) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return f.err
	}
	f.mu.Unlock()
	return f.inner.RenderPrimitive(dst, p)
}

// gatedRenderer blocks every primitive render until the gate channel is
// closed, signalling entry first so tests can mutate the session while a
// render is in flight.
type gatedRenderer struct {
	inner   Renderer
	gate    chan struct{}
	entered chan struct{}
}

func newGatedRenderer() *gatedRenderer {
	return &gatedRenderer{
		inner:   NewSoftwareRenderer(),
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
}

func (g *gatedRenderer) RenderPrimitive(dst *Pixmap, p Primitive) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.gate
	return g.inner.RenderPrimitive(dst, p)
}

func newTestSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	s, err := NewSession(gradientPixmap(8, 8), opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestNewSession_RejectsEmptySource(t *testing.T) {
	if _, err := NewSession(nil); err == nil {
		t.Error("NewSession(nil) succeeded")
	}
	if _, err := NewSession(NewPixmap(0, 0)); err == nil {
		t.Error("NewSession(empty) succeeded")
	}
}

func TestSession_ActivateRenders(t *testing.T) {
	s := newTestSession(t)
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	op, err := s.Activate(OpBrightness)
	if err != nil {
		t.Fatal(err)
	}
	rec.waitFor(t, 1)
	if _, ok := op.(*BrightnessOperation); !ok {
		t.Fatalf("Activate returned %T, want *BrightnessOperation", op)
	}
	if rec.errs[0] != nil {
		t.Errorf("render error = %v", rec.errs[0])
	}
	if _, ok := s.Result(); !ok {
		t.Error("Result() empty after successful render")
	}
}

func TestSession_ActivateUnknown(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Activate("bogus"); !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Activate(bogus) error = %v, want ErrUnknownOperation", err)
	}
	if len(s.ActiveOperations()) != 0 {
		t.Error("failed activation left an operation active")
	}
}

func TestSession_PauseBatchesToOneRender(t *testing.T) {
	s := newTestSession(t)
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	s.Pause()
	op, err := s.Activate(OpBrightness)
	if err != nil {
		t.Fatal(err)
	}
	b := op.(*BrightnessOperation)
	for _, amount := range []float64{0.1, 0.2, 0.3} {
		if err := b.SetAmount(amount); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Activate(OpContrast); err != nil {
		t.Fatal(err)
	}
	if rec.count() != 0 {
		t.Fatalf("%d renders delivered while paused, want 0", rec.count())
	}
	s.Resume()

	rec.waitFor(t, 1)
	// Give a stray extra render a chance to show up.
	time.Sleep(50 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Errorf("renders after resume = %d, want exactly 1", got)
	}
}

func TestSession_NestedPause(t *testing.T) {
	s := newTestSession(t)
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	s.Pause()
	s.Pause()
	s.Invalidate()
	s.Resume()
	if !s.Paused() {
		t.Error("Paused() = false after one Resume of two Pauses")
	}
	if rec.count() != 0 {
		t.Error("render delivered while still paused")
	}
	s.Resume()
	rec.waitFor(t, 1)
}

func TestSession_ResumeWithoutChangesDoesNotRender(t *testing.T) {
	s := newTestSession(t)
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	s.Pause()
	s.Resume()
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("renders = %d after empty pause window, want 0", rec.count())
	}
}

func TestSession_ParameterChangeSchedulesRender(t *testing.T) {
	s := newTestSession(t)
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	var updates []string
	var updatesMu sync.Mutex
	s.SetOperationCallback(func(id string) {
		updatesMu.Lock()
		updates = append(updates, id)
		updatesMu.Unlock()
	})

	op, err := s.Activate(OpSaturation)
	if err != nil {
		t.Fatal(err)
	}
	rec.waitFor(t, 1)
	if err := op.(*SaturationOperation).SetAmount(1.5); err != nil {
		t.Fatal(err)
	}
	rec.waitFor(t, 2)

	updatesMu.Lock()
	defer updatesMu.Unlock()
	if len(updates) != 1 || updates[0] != OpSaturation {
		t.Errorf("operation updates = %v, want [%s]", updates, OpSaturation)
	}
}

func TestSession_PauseSuppressesOperationCallbacks(t *testing.T) {
	s := newTestSession(t)
	var updates []string
	var updatesMu sync.Mutex
	s.SetOperationCallback(func(id string) {
		updatesMu.Lock()
		updates = append(updates, id)
		updatesMu.Unlock()
	})

	s.Pause()
	bop, err := s.Activate(OpBrightness)
	if err != nil {
		t.Fatal(err)
	}
	cop, err := s.Activate(OpContrast)
	if err != nil {
		t.Fatal(err)
	}
	b := bop.(*BrightnessOperation)
	for _, amount := range []float64{0.1, 0.2, 0.3} {
		if err := b.SetAmount(amount); err != nil {
			t.Fatal(err)
		}
	}
	if err := cop.(*ContrastOperation).SetAmount(1.5); err != nil {
		t.Fatal(err)
	}

	updatesMu.Lock()
	paused := len(updates)
	updatesMu.Unlock()
	if paused != 0 {
		t.Fatalf("%d operation callbacks delivered while paused, want 0", paused)
	}

	s.Resume()
	updatesMu.Lock()
	defer updatesMu.Unlock()
	if len(updates) != 2 || updates[0] != OpBrightness || updates[1] != OpContrast {
		t.Errorf("operation callbacks after resume = %v, want [%s %s]",
			updates, OpBrightness, OpContrast)
	}
}

func TestSession_SupersededRenderNotDelivered(t *testing.T) {
	g := newGatedRenderer()
	s := newTestSession(t, WithRenderer(g))
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	s.Pause()
	op, err := s.Activate(OpBrightness)
	if err != nil {
		t.Fatal(err)
	}
	b := op.(*BrightnessOperation)
	if err := b.SetAmount(0.1); err != nil {
		t.Fatal(err)
	}
	s.Resume()

	// The first render is inside the renderer now; change the amount so
	// it is superseded mid-flight, then let both renders run.
	<-g.entered
	if err := b.SetAmount(0.2); err != nil {
		t.Fatal(err)
	}
	close(g.gate)

	rec.waitFor(t, 1)
	time.Sleep(50 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Fatalf("renders delivered = %d, want exactly 1", got)
	}

	want := gradientPixmap(8, 8)
	if err := NewSoftwareRenderer().RenderPrimitive(want, Brightness{Amount: 0.2}); err != nil {
		t.Fatal(err)
	}
	rec.mu.Lock()
	result, rerr := rec.results[0], rec.errs[0]
	rec.mu.Unlock()
	if rerr != nil {
		t.Fatalf("render error = %v", rerr)
	}
	if !result.EqualTo(want) {
		t.Error("delivered render does not match the newest amount")
	}
}

func TestSession_CloseDropsInFlightRender(t *testing.T) {
	g := newGatedRenderer()
	s := newTestSession(t, WithRenderer(g))
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	s.Pause()
	op, err := s.Activate(OpBrightness)
	if err != nil {
		t.Fatal(err)
	}
	if err := op.(*BrightnessOperation).SetAmount(0.3); err != nil {
		t.Fatal(err)
	}
	s.Resume()

	<-g.entered
	s.Close()
	close(g.gate)

	time.Sleep(100 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("renders delivered after Close = %d, want 0", got)
	}
}

func TestSession_SettersDuringRenderInFlight(t *testing.T) {
	s := newTestSession(t)
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	op, err := s.Activate(OpBrightness)
	if err != nil {
		t.Fatal(err)
	}
	b := op.(*BrightnessOperation)
	last := 0.0
	for i := 1; i <= 50; i++ {
		last = float64(i%9+1) / 10
		if err := b.SetAmount(last); err != nil {
			t.Fatal(err)
		}
	}
	rec.waitFor(t, 1)

	got, err := s.RenderSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := gradientPixmap(8, 8)
	if err := NewSoftwareRenderer().RenderPrimitive(want, Brightness{Amount: last}); err != nil {
		t.Fatal(err)
	}
	if !got.EqualTo(want) {
		t.Error("final render does not match the last amount written")
	}
}

func TestSession_RenderSync(t *testing.T) {
	s := newTestSession(t)
	op, err := s.Activate(OpBrightness)
	if err != nil {
		t.Fatal(err)
	}
	if err := op.(*BrightnessOperation).SetAmount(0.2); err != nil {
		t.Fatal(err)
	}

	got, err := s.RenderSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := gradientPixmap(8, 8)
	if err := NewSoftwareRenderer().RenderPrimitive(want, Brightness{Amount: 0.2}); err != nil {
		t.Fatal(err)
	}
	if !got.EqualTo(want) {
		t.Error("RenderSync output differs from direct primitive render")
	}
}

func TestSession_RetriesOnResourcePressure(t *testing.T) {
	r := &flakyRenderer{
		failures: 1,
		err:      fmt.Errorf("%w: out of buffers", ErrResourcePressure),
		inner:    NewSoftwareRenderer(),
	}
	s := newTestSession(t, WithRenderer(r))
	op, err := s.Activate(OpContrast)
	if err != nil {
		t.Fatal(err)
	}
	if err := op.(*ContrastOperation).SetAmount(1.5); err != nil {
		t.Fatal(err)
	}

	got, err := s.RenderSync(context.Background())
	if err != nil {
		t.Fatalf("RenderSync() error = %v after transient pressure", err)
	}
	want := gradientPixmap(8, 8)
	if err := NewSoftwareRenderer().RenderPrimitive(want, Contrast{Amount: 1.5}); err != nil {
		t.Fatal(err)
	}
	if !got.EqualTo(want) {
		t.Error("retried render differs from direct primitive render")
	}
}

func TestSession_DoesNotRetryOtherErrors(t *testing.T) {
	r := &flakyRenderer{
		failures: 1,
		err:      errBoom,
		inner:    NewSoftwareRenderer(),
	}
	s := newTestSession(t, WithRenderer(r))
	op, err := s.Activate(OpContrast)
	if err != nil {
		t.Fatal(err)
	}
	if err := op.(*ContrastOperation).SetAmount(1.5); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RenderSync(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("RenderSync() error = %v, want wrapped errBoom", err)
	}
}

func TestSession_Close(t *testing.T) {
	s := newTestSession(t)
	s.Close()
	s.Close()
	if _, err := s.Activate(OpFlip); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Activate() after Close error = %v, want ErrSessionClosed", err)
	}
	if err := s.SetSource(gradientPixmap(4, 4)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("SetSource() after Close error = %v, want ErrSessionClosed", err)
	}
	if _, err := s.RenderSync(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("RenderSync() after Close error = %v, want ErrSessionClosed", err)
	}
}

func TestSession_SetSourceRenders(t *testing.T) {
	s := newTestSession(t)
	rec := &renderRecorder{}
	s.SetRenderCallback(rec.callback)

	if err := s.SetSource(solidPixmap(4, 4, White)); err != nil {
		t.Fatal(err)
	}
	rec.waitFor(t, 1)
	rec.mu.Lock()
	result := rec.results[0]
	rec.mu.Unlock()
	if result.Width() != 4 || result.Height() != 4 {
		t.Errorf("render size = %dx%d, want 4x4", result.Width(), result.Height())
	}
}

func TestSession_DeactivateRestoresOriginal(t *testing.T) {
	s := newTestSession(t)
	op, err := s.Activate(OpBrightness)
	if err != nil {
		t.Fatal(err)
	}
	if err := op.(*BrightnessOperation).SetAmount(0.5); err != nil {
		t.Fatal(err)
	}
	if !s.Deactivate(OpBrightness) {
		t.Fatal("Deactivate() = false for active operation")
	}

	got, err := s.RenderSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !got.EqualTo(gradientPixmap(8, 8)) {
		t.Error("render after deactivation differs from the source")
	}
}
