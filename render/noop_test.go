package render

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a Device over the noop backend for testing.
// Returns the device and a cleanup function.
func createNoopDevice(t *testing.T) (*Device, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	dev := NewDeviceFromHal(openDev.Device, openDev.Queue)
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return dev, cleanup
}

// createTestSystem builds a RenderingSystem over a noop device and an
// offscreen surface.
func createTestSystem(t *testing.T, width, height uint32) (*RenderingSystem, *TextureSurface, func()) {
	t.Helper()
	dev, cleanup := createNoopDevice(t)
	surface := NewTextureSurface(dev)
	rs, err := NewRenderingSystem(dev, surface, width, height)
	if err != nil {
		surface.Destroy()
		cleanup()
		t.Fatalf("NewRenderingSystem failed: %v", err)
	}
	return rs, surface, func() {
		rs.Destroy()
		surface.Destroy()
		cleanup()
	}
}
