// Package wgpu provides a GPU rendering backend built on gogpu/wgpu HAL
// compute shaders.
//
// The backend runs per-pixel primitives (tone curves and the color
// adjustments) as a single compute dispatch per primitive: pixels are
// packed into a storage buffer, transformed on the GPU and read back.
// Spatial primitives (blur, overlay) are not implemented here; the
// renderer reports pixfx.ErrUnsupportedPrimitive for them so a fallback
// renderer can take over. NewRenderer already wraps the GPU renderer
// with the software fallback.
//
// Importing the package registers the backend:
//
//	import _ "github.com/pixfx/pixfx/backend/wgpu"
//
// Init requires a Vulkan-capable adapter. Alternatively an application
// that already owns a GPU device can share it via SetDeviceProvider.
package wgpu
