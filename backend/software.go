package backend

import "github.com/pixfx/pixfx"

// SoftwareBackend is the CPU backend. It wraps pixfx.SoftwareRenderer
// and is always available.
type SoftwareBackend struct {
	initialized bool
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() RenderBackend {
		return &SoftwareBackend{}
	})
}

// NewSoftwareBackend creates a new software rendering backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend. It never fails.
func (b *SoftwareBackend) Init() error {
	b.initialized = true
	return nil
}

// Close releases backend resources.
func (b *SoftwareBackend) Close() {
	b.initialized = false
}

// NewRenderer returns a CPU renderer.
func (b *SoftwareBackend) NewRenderer() pixfx.Renderer {
	return pixfx.NewSoftwareRenderer()
}
