package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/point.wgsl
var pointShaderWGSL string

// Transform modes; must match the switch in shaders/point.wgsl.
const (
	modeToneCurve    = 0
	modeDesaturation = 1
	modeSaturation   = 2
	modeBrightness   = 3
	modeContrast     = 4
)

// pointParams is the uniform block of the point shader. Layout must match
// the WGSL Params struct (16 bytes, 4-byte fields).
type pointParams struct {
	Width  uint32
	Height uint32
	Mode   uint32
	Amount float32
}

// lutEntries is the size of the LUT storage buffer: three 256-entry
// channel planes.
const lutEntries = 3 * 256

// createPipeline compiles the point shader and builds the bind group
// layout and compute pipeline. Called with b.mu held.
func (b *Backend) createPipeline() error {
	// Compile WGSL to SPIR-V.
	spirvBytes, err := naga.Compile(pointShaderWGSL)
	if err != nil {
		return fmt.Errorf("wgpu: compile point shader: %w", err)
	}
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	shader, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "pixfx_point",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create shader module: %w", err)
	}
	b.shader = shader

	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "pixfx_point_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	b.bindLayout = bindLayout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "pixfx_point_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout

	pipeline, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "pixfx_point_pipeline",
		Layout:  b.pipeLayout,
		Compute: hal.ComputeState{Module: b.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create compute pipeline: %w", err)
	}
	b.pipeline = pipeline
	return nil
}

// destroyPipeline tears down pipeline objects. Called with b.mu held.
func (b *Backend) destroyPipeline() {
	if b.device == nil {
		return
	}
	if b.pipeline != nil {
		b.device.DestroyComputePipeline(b.pipeline)
		b.pipeline = nil
	}
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.bindLayout != nil {
		b.device.DestroyBindGroupLayout(b.bindLayout)
		b.bindLayout = nil
	}
	if b.shader != nil {
		b.device.DestroyShaderModule(b.shader)
		b.shader = nil
	}
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // fixed-layout struct upload
}

// packPixels converts RGBA8 bytes into little-endian packed u32 words for
// the storage buffer.
func packPixels(data []uint8, pixelCount int) []byte {
	out := make([]byte, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		src := i * 4
		packed := uint32(data[src]) |
			uint32(data[src+1])<<8 |
			uint32(data[src+2])<<16 |
			uint32(data[src+3])<<24
		binary.LittleEndian.PutUint32(out[i*4:], packed)
	}
	return out
}

// unpackPixels converts packed u32 words back into RGBA8 bytes.
func unpackPixels(packed []byte, dst []uint8, pixelCount int) {
	for i := 0; i < pixelCount; i++ {
		val := binary.LittleEndian.Uint32(packed[i*4:])
		d := i * 4
		dst[d+0] = uint8(val & 0xFF)
		dst[d+1] = uint8((val >> 8) & 0xFF)
		dst[d+2] = uint8((val >> 16) & 0xFF)
		dst[d+3] = uint8((val >> 24) & 0xFF)
	}
}

// packLUT widens the tone curve LUT into the u32 storage layout the
// shader indexes.
func packLUT(lut *[3][256]uint8) []byte {
	out := make([]byte, lutEntries*4)
	for ch := 0; ch < 3; ch++ {
		for i := 0; i < 256; i++ {
			binary.LittleEndian.PutUint32(out[(ch*256+i)*4:], uint32(lut[ch][i]))
		}
	}
	return out
}
