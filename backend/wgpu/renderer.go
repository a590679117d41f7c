package wgpu

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/pixfx/pixfx"
	"github.com/pixfx/pixfx/backend"
)

// gpuTimeout bounds the fence wait of a single dispatch.
const gpuTimeout = 5 * time.Second

// Renderer dispatches point primitives to the backend's compute
// pipeline. Blur and overlay are not supported and return
// pixfx.ErrUnsupportedPrimitive.
type Renderer struct {
	backend *Backend
}

var _ pixfx.Renderer = (*Renderer)(nil)

// RenderPrimitive implements pixfx.Renderer.
func (r *Renderer) RenderPrimitive(dst *pixfx.Pixmap, p pixfx.Primitive) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var (
		mode   uint32
		amount float32
		lut    *[3][256]uint8
	)
	switch prim := p.(type) {
	case pixfx.ToneCurvePrimitive:
		mode = modeToneCurve
		lut = prim.Curve.LUT()
	case pixfx.Desaturation:
		mode = modeDesaturation
		amount = float32(prim.Intensity)
	case pixfx.Saturation:
		mode = modeSaturation
		amount = float32(prim.Amount)
	case pixfx.Brightness:
		mode = modeBrightness
		amount = float32(prim.Amount)
	case pixfx.Contrast:
		mode = modeContrast
		amount = float32(prim.Amount)
	default:
		return fmt.Errorf("%w: %s on wgpu", pixfx.ErrUnsupportedPrimitive, p.Kind())
	}

	b := r.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return backend.ErrNotInitialized
	}
	return b.dispatch(dst, mode, amount, lut)
}

// dispatch uploads the pixmap, runs one compute pass and reads the result
// back. Called with b.mu held.
func (b *Backend) dispatch(dst *pixfx.Pixmap, mode uint32, amount float32, lut *[3][256]uint8) error {
	w := uint32(dst.Width())
	h := uint32(dst.Height())
	pixelCount := int(w * h)
	pixelBufSize := uint64(pixelCount * 4)

	params := pointParams{Width: w, Height: h, Mode: mode, Amount: amount}
	paramsBytes := structToBytes(unsafe.Pointer(&params), unsafe.Sizeof(params))

	uniformBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pixfx_params", Size: uint64(len(paramsBytes)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: create uniform buffer: %v", pixfx.ErrResourcePressure, err)
	}
	defer b.device.DestroyBuffer(uniformBuf)

	lutBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pixfx_lut", Size: uint64(lutEntries * 4),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: create lut buffer: %v", pixfx.ErrResourcePressure, err)
	}
	defer b.device.DestroyBuffer(lutBuf)

	storageBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pixfx_pixels", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: create storage buffer: %v", pixfx.ErrResourcePressure, err)
	}
	defer b.device.DestroyBuffer(storageBuf)

	stagingBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pixfx_staging", Size: pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: create staging buffer: %v", pixfx.ErrResourcePressure, err)
	}
	defer b.device.DestroyBuffer(stagingBuf)

	b.queue.WriteBuffer(uniformBuf, 0, paramsBytes)
	if lut != nil {
		b.queue.WriteBuffer(lutBuf, 0, packLUT(lut))
	} else {
		// The layout requires the binding even for modes that ignore it.
		b.queue.WriteBuffer(lutBuf, 0, make([]byte, lutEntries*4))
	}
	b.queue.WriteBuffer(storageBuf, 0, packPixels(dst.Data(), pixelCount))

	bindGroup, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "pixfx_point_bind",
		Layout: b.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(paramsBytes))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: lutBuf.NativeHandle(), Offset: 0, Size: uint64(lutEntries * 4)}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: storageBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create bind group: %v", pixfx.ErrResourcePressure, err)
	}
	defer b.device.DestroyBindGroup(bindGroup)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "pixfx_point_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("pixfx_point"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "pixfx_point_pass"})
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch((w+7)/8, (h+7)/8, 1)
	pass.End()

	encoder.CopyBufferToBuffer(storageBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("%w: create fence: %v", pixfx.ErrResourcePressure, err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	fenceOK, err := b.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := b.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}
	unpackPixels(readback, dst.Data(), pixelCount)
	return nil
}
