package backend

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pixfx/pixfx"
)

// stubBackend is a registrable backend whose Init outcome is scripted.
type stubBackend struct {
	name    string
	initErr error
	inited  bool
	closed  bool
}

func (b *stubBackend) Name() string { return b.name }
func (b *stubBackend) Init() error {
	if b.initErr != nil {
		return b.initErr
	}
	b.inited = true
	return nil
}
func (b *stubBackend) Close()                      { b.closed = true }
func (b *stubBackend) NewRenderer() pixfx.Renderer { return pixfx.NewSoftwareRenderer() }

func TestGet_Software(t *testing.T) {
	b, err := Get(BackendSoftware)
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != BackendSoftware {
		t.Errorf("Name() = %q, want %q", b.Name(), BackendSoftware)
	}
	if err := b.Init(); err != nil {
		t.Errorf("Init() error = %v", err)
	}
	if b.NewRenderer() == nil {
		t.Error("NewRenderer() = nil")
	}
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("no-such-backend")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Get() error = %v, want ErrUnknownBackend", err)
	}
}

func TestRegisterUnregister(t *testing.T) {
	Register("stub", func() RenderBackend { return &stubBackend{name: "stub"} })
	defer Unregister("stub")

	if !IsRegistered("stub") {
		t.Fatal("IsRegistered(stub) = false after Register")
	}
	b, err := Get("stub")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != "stub" {
		t.Errorf("Name() = %q, want stub", b.Name())
	}

	Unregister("stub")
	if IsRegistered("stub") {
		t.Error("IsRegistered(stub) = true after Unregister")
	}
}

func TestAvailable_IncludesSoftware(t *testing.T) {
	for _, name := range Available() {
		if name == BackendSoftware {
			return
		}
	}
	t.Errorf("Available() = %v, missing %q", Available(), BackendSoftware)
}

func TestDefault_NotNil(t *testing.T) {
	if Default() == nil {
		t.Error("Default() = nil with the software backend registered")
	}
}

func TestInitDefault_SkipsFailingBackend(t *testing.T) {
	// A wgpu entry that fails Init must not prevent falling back to the
	// software backend.
	Register(BackendWGPU, func() RenderBackend {
		return &stubBackend{name: BackendWGPU, initErr: fmt.Errorf("%w: no adapter", ErrBackendNotAvailable)}
	})
	defer Unregister(BackendWGPU)

	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault() error = %v", err)
	}
	if b.Name() != BackendSoftware {
		t.Errorf("InitDefault() selected %q, want %q", b.Name(), BackendSoftware)
	}
}

func TestFallbackRenderer_RetriesUnsupported(t *testing.T) {
	primary := &scriptedRenderer{err: fmt.Errorf("wgpu: %w", pixfx.ErrUnsupportedPrimitive)}
	fallback := &scriptedRenderer{}
	r := NewFallbackRenderer(primary, fallback)

	dst := pixfx.NewPixmap(2, 2)
	if err := r.RenderPrimitive(dst, pixfx.Grayscale()); err != nil {
		t.Fatalf("RenderPrimitive() error = %v", err)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = primary %d fallback %d, want 1 and 1", primary.calls, fallback.calls)
	}
}

func TestFallbackRenderer_PropagatesOtherErrors(t *testing.T) {
	wantErr := errors.New("device lost")
	primary := &scriptedRenderer{err: wantErr}
	fallback := &scriptedRenderer{}
	r := NewFallbackRenderer(primary, fallback)

	if err := r.RenderPrimitive(pixfx.NewPixmap(2, 2), pixfx.Grayscale()); !errors.Is(err, wantErr) {
		t.Errorf("RenderPrimitive() error = %v, want %v", err, wantErr)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback calls = %d, want 0", fallback.calls)
	}
}

type scriptedRenderer struct {
	err   error
	calls int
}

func (r *scriptedRenderer) RenderPrimitive(_ *pixfx.Pixmap, _ pixfx.Primitive) error {
	r.calls++
	return r.err
}
