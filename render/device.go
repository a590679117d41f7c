// Package render defines the GPU device integration surface of pixfx.
//
// Applications that already own a GPU device (a game, a gogpu app, an
// editor with its own swapchain) share it with pixfx instead of letting
// the wgpu backend create a second one. The host implements DeviceHandle
// and passes it to the backend's SetDeviceProvider.
package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// pixfx receives the device from the host, it does not create one when a
// handle is supplied. DeviceHandle is an alias for
// gpucontext.DeviceProvider so any provider from the gpucontext
// ecosystem plugs in directly.
type DeviceHandle = gpucontext.DeviceProvider

// DeviceCapabilities describes the GPU device behind a backend. Callers
// use it to decide whether to route work to the GPU at all.
type DeviceCapabilities struct {
	// MaxTextureSize is the maximum texture dimension supported.
	MaxTextureSize uint32

	// SupportsCompute indicates if compute shaders are supported.
	SupportsCompute bool

	// VendorName is the GPU vendor name.
	VendorName string

	// DeviceName is the GPU device name.
	DeviceName string
}

// NullDeviceHandle is a DeviceHandle with nil implementations, for
// CPU-only configurations.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns zero adapter metadata for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{}
}

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}
