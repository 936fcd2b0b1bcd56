package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/mkualquiera/webengine"
)

var (
	// ErrBackendUnavailable is returned when the requested GPU backend is
	// not compiled in or cannot initialize on this machine.
	ErrBackendUnavailable = errors.New("render: GPU backend not available")

	// ErrNoAdapter is returned when the backend exposes no adapters.
	ErrNoAdapter = errors.New("render: no GPU adapters found")
)

// deviceConfig holds device acquisition settings, mutated by DeviceOption.
type deviceConfig struct {
	backend      gputypes.Backend
	adapterIndex int
}

// DeviceOption configures RequestDevice.
type DeviceOption func(*deviceConfig)

// WithBackend selects the GPU backend to initialize. The default is Vulkan.
func WithBackend(b gputypes.Backend) DeviceOption {
	return func(c *deviceConfig) { c.backend = b }
}

// WithAdapterIndex pins device creation to a specific adapter index,
// bypassing the discrete-first preference. Useful on multi-GPU machines.
func WithAdapterIndex(i int) DeviceOption {
	return func(c *deviceConfig) { c.adapterIndex = i }
}

// Device owns the HAL device and queue the engine renders with, plus the
// instance they came from when the engine created them itself.
//
// Device implements gpucontext.DeviceProvider and the HalDevice/HalQueue
// accessors, so a host framework can hand the engine's device to other
// gpucontext consumers (or the other way around, via NewDeviceFromHal).
type Device struct {
	instance    hal.Instance
	dev         hal.Device
	queue       hal.Queue
	name        string
	adapterType gpucontext.AdapterType

	// ownsDevice is false for devices wrapped via NewDeviceFromHal; Close
	// then leaves the underlying resources to their real owner.
	ownsDevice bool
}

var _ gpucontext.DeviceProvider = (*Device)(nil)

// RequestDevice initializes a GPU backend, enumerates its adapters, and
// opens a logical device on the best one. Discrete GPUs are preferred,
// then integrated, then whatever the backend lists first.
func RequestDevice(opts ...DeviceOption) (*Device, error) {
	cfg := deviceConfig{
		backend:      gputypes.BackendVulkan,
		adapterIndex: -1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	backend, ok := hal.GetBackend(cfg.backend)
	if !ok {
		return nil, fmt.Errorf("%w: backend %v", ErrBackendUnavailable, cfg.backend)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("render: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	if cfg.adapterIndex >= 0 {
		if cfg.adapterIndex >= len(adapters) {
			instance.Destroy()
			return nil, fmt.Errorf("%w: adapter index %d of %d", ErrNoAdapter, cfg.adapterIndex, len(adapters))
		}
		selected = &adapters[cfg.adapterIndex]
	} else {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
				selected = &adapters[i]
				break
			}
		}
		if selected == nil {
			for i := range adapters {
				if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
					selected = &adapters[i]
					break
				}
			}
		}
		if selected == nil {
			selected = &adapters[0]
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("render: open device: %w", err)
	}

	webengine.Logger().Info("render: GPU device opened", "adapter", selected.Info.Name)
	return &Device{
		instance:    instance,
		dev:         openDev.Device,
		queue:       openDev.Queue,
		name:        selected.Info.Name,
		adapterType: adapterTypeOf(selected.Info.DeviceType),
		ownsDevice:  true,
	}, nil
}

// adapterTypeOf maps a hal device type to the gpucontext adapter taxonomy.
func adapterTypeOf(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// NewDeviceFromHal wraps an externally owned HAL device and queue. Close
// on the returned Device is a no-op; the caller keeps ownership. Tests use
// this with the noop backend.
func NewDeviceFromHal(dev hal.Device, queue hal.Queue) *Device {
	return &Device{
		dev:         dev,
		queue:       queue,
		name:        "external",
		adapterType: gpucontext.AdapterTypeUnknown,
	}
}

// AdapterName returns the name of the adapter the device was opened on.
func (d *Device) AdapterName() string { return d.name }

// Close destroys the device and instance if this Device created them.
func (d *Device) Close() {
	if !d.ownsDevice {
		return
	}
	if d.dev != nil {
		d.dev.Destroy()
		d.dev = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// HalDevice returns the underlying hal.Device. Part of the device-sharing
// contract consumed by gpucontext-aware hosts.
func (d *Device) HalDevice() any { return d.dev }

// HalQueue returns the underlying hal.Queue.
func (d *Device) HalQueue() any { return d.queue }

// Device implements gpucontext.DeviceProvider. The gpucontext handles are
// type tokens; consumers type-assert back to the hal types.
func (d *Device) Device() gpucontext.Device { return d.dev }

// Queue implements gpucontext.DeviceProvider.
func (d *Device) Queue() gpucontext.Queue { return d.queue }

// Adapter implements gpucontext.DeviceProvider. The engine does not retain
// the adapter past device creation, which the contract permits.
func (d *Device) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo implements gpucontext.DeviceProvider.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: d.name, Type: d.adapterType}
}

// SurfaceFormat implements gpucontext.DeviceProvider. The engine renders
// BGRA8 everywhere.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}
