// Package backend provides a pluggable rendering backend abstraction.
//
// A backend owns the resources behind a pixfx.Renderer, such as a GPU
// device or a CPU worker pool. Backends register themselves from init()
// functions; importing a backend package makes it available:
//
//	import _ "github.com/pixfx/pixfx/backend/wgpu"
//
// Default selects the best registered backend, preferring GPU over
// software.
package backend

import (
	"errors"

	"github.com/pixfx/pixfx"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU backend.
	BackendSoftware = "software"
	// BackendWGPU is the name of the GPU backend (gogpu/wgpu).
	BackendWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// available on this system.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrUnknownBackend is returned when a backend name is not
	// registered.
	ErrUnknownBackend = errors.New("backend: unknown backend")

	// ErrNotInitialized is returned when operations are called before
	// Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// RenderBackend is the interface rendering backends implement. Backends
// are registered via Register and selected via Get or Default.
type RenderBackend interface {
	// Name returns the backend identifier (e.g. "software", "wgpu").
	Name() string

	// Init acquires the backend's resources. It must be called before
	// NewRenderer. Init may fail on systems lacking the required
	// hardware; callers typically fall back to the software backend.
	Init() error

	// Close releases all backend resources. The backend must not be
	// used afterwards.
	Close()

	// NewRenderer returns a renderer backed by this backend. The
	// renderer remains valid until Close.
	NewRenderer() pixfx.Renderer
}
