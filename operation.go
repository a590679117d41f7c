package pixfx

import (
	"fmt"
	"sync"
)

// ErrUnknownOperation is returned when an operation identifier has no
// registered constructor.
var ErrUnknownOperation = fmt.Errorf("pixfx: unknown operation")

// Operation identifiers for the built-in operations. The rendering order
// of operations is fixed regardless of activation order; see OperationOrder.
const (
	OpCropRotation = "crop-rotation"
	OpFlip         = "flip"
	OpFilters      = "filters"
	OpContrast     = "contrast"
	OpBrightness   = "brightness"
	OpSaturation   = "saturation"
	OpRadialBlur   = "radial-blur"
	OpTiltShift    = "tilt-shift"
	OpFrames       = "frames"
	OpStickers     = "stickers"
	OpText         = "text"
)

// Operation is a user-facing editing step. An operation holds its own
// parameters and renders by decomposing itself into primitives (or direct
// pixel work) against the renderer it is given.
//
// Apply must treat src as read-only and return a new pixmap. Operations
// whose IsIdentity reports true are skipped entirely during stack
// rendering, so a freshly constructed operation must be parameterized to
// have no visual effect.
type Operation interface {
	// Identifier returns the stable string identity of the operation,
	// e.g. "brightness". Identifiers determine rendering order.
	Identifier() string

	// IsIdentity reports whether the operation currently has no visual
	// effect. Identity operations are skipped during rendering.
	IsIdentity() bool

	// Apply renders the operation into a new pixmap.
	Apply(r Renderer, src *Pixmap) (*Pixmap, error)
}

// freezer is implemented by operations that can produce a detached copy
// of themselves for rendering. The copy shares no mutable state with the
// original and carries no change notification, so it can render on
// another goroutine while the original keeps taking setter calls.
type freezer interface {
	freeze() Operation
}

// notifiable is implemented by operations that can report parameter
// changes to their owning session. Built-in operations implement it via
// operationBase; external operations may omit it and drive re-renders
// through Session.Invalidate instead.
type notifiable interface {
	bind(func(id string))
}

// operationBase carries the identifier and change notification shared by
// the built-in operations.
type operationBase struct {
	id     string
	notify func(id string)
}

func (b *operationBase) Identifier() string { return b.id }

func (b *operationBase) bind(fn func(id string)) { b.notify = fn }

// touch signals a parameter change. Setters call it after validation, so
// an invalid update never triggers a render.
func (b *operationBase) touch() {
	if b.notify != nil {
		b.notify(b.id)
	}
}

// OperationConstructor creates a fresh operation in its identity state.
type OperationConstructor func() Operation

// OperationRegistry maps operation identifiers to constructors. The zero
// value is unusable; use NewOperationRegistry, which comes preloaded with
// the built-in operations.
type OperationRegistry struct {
	mu    sync.RWMutex
	ctors map[string]OperationConstructor
}

// NewOperationRegistry returns a registry with all built-in operations
// registered.
func NewOperationRegistry() *OperationRegistry {
	r := &OperationRegistry{ctors: make(map[string]OperationConstructor)}
	r.Register(OpCropRotation, func() Operation { return NewCropRotationOperation() })
	r.Register(OpFlip, func() Operation { return NewFlipOperation() })
	r.Register(OpFilters, func() Operation { return NewFilterOperation() })
	r.Register(OpContrast, func() Operation { return NewContrastOperation() })
	r.Register(OpBrightness, func() Operation { return NewBrightnessOperation() })
	r.Register(OpSaturation, func() Operation { return NewSaturationOperation() })
	r.Register(OpRadialBlur, func() Operation { return NewRadialBlurOperation() })
	r.Register(OpTiltShift, func() Operation { return NewTiltShiftOperation() })
	r.Register(OpFrames, func() Operation { return NewFramesOperation() })
	r.Register(OpStickers, func() Operation { return NewStickersOperation() })
	r.Register(OpText, func() Operation { return NewTextOperation() })
	return r
}

// Register adds or replaces a constructor. Replacing is allowed so
// applications can swap a built-in operation for a custom variant.
func (r *OperationRegistry) Register(id string, ctor OperationConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[id] = ctor
}

// New constructs a fresh operation for the identifier. It returns
// ErrUnknownOperation if no constructor is registered.
func (r *OperationRegistry) New(id string) (Operation, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, id)
	}
	return ctor(), nil
}

// Known reports whether a constructor is registered for the identifier.
func (r *OperationRegistry) Known(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[id]
	return ok
}

// Identifiers returns the registered operation identifiers in rendering
// order.
func (r *OperationRegistry) Identifiers() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.ctors))
	for id := range r.ctors {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sortByRenderOrder(ids)
	return ids
}
