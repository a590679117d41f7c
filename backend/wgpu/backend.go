package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/pixfx/pixfx"
	"github.com/pixfx/pixfx/backend"
	"github.com/pixfx/pixfx/render"
)

// Backend is the GPU rendering backend. Init opens a Vulkan device and
// builds the compute pipeline; NewRenderer hands out renderers that
// dispatch point primitives to it.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	caps           render.DeviceCapabilities
	ready          bool
	externalDevice bool
}

// init registers the wgpu backend on package import.
func init() {
	backend.Register(backend.BackendWGPU, func() backend.RenderBackend {
		return &Backend{}
	})
}

// New creates an uninitialized GPU backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendWGPU }

// Init opens a GPU device and builds the compute pipeline. It fails when
// no Vulkan adapter is available; callers usually fall back to the
// software backend then.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready {
		return nil
	}

	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend not registered", backend.ErrBackendNotAvailable)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}
	b.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		b.closeLocked()
		return fmt.Errorf("%w: no GPU adapters found", backend.ErrBackendNotAvailable)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		b.closeLocked()
		return fmt.Errorf("wgpu: open device: %w", err)
	}
	b.device = openDev.Device
	b.queue = openDev.Queue

	if err := b.createPipeline(); err != nil {
		b.closeLocked()
		return err
	}

	b.caps = render.DeviceCapabilities{
		SupportsCompute: true,
		DeviceName:      selected.Info.Name,
	}
	b.ready = true
	pixfx.Logger().Debug("wgpu backend initialized", "device", selected.Info.Name)
	return nil
}

// SetDeviceProvider switches the backend to a GPU device shared by the
// host application. The provider must expose the underlying HAL device
// and queue through HalDevice() and HalQueue().
func (b *Backend) SetDeviceProvider(provider render.DeviceHandle) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.destroyPipeline()
	if !b.externalDevice && b.device != nil {
		b.device.Destroy()
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}

	b.device = device
	b.queue = queue
	b.externalDevice = true

	if err := b.createPipeline(); err != nil {
		b.ready = false
		return fmt.Errorf("wgpu: create pipeline with shared device: %w", err)
	}
	b.ready = true
	pixfx.Logger().Debug("wgpu backend using shared device")
	return nil
}

// Close releases all GPU resources. Shared devices are not destroyed.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

func (b *Backend) closeLocked() {
	b.destroyPipeline()
	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
	}
	b.device = nil
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.queue = nil
	b.ready = false
	b.externalDevice = false
}

// Capabilities returns the capabilities of the opened device. Zero value
// before Init.
func (b *Backend) Capabilities() render.DeviceCapabilities {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps
}

// NewRenderer returns a renderer that runs point primitives on the GPU
// and falls back to the software renderer for everything else.
func (b *Backend) NewRenderer() pixfx.Renderer {
	return backend.NewFallbackRenderer(
		&Renderer{backend: b},
		pixfx.NewSoftwareRenderer(),
	)
}
