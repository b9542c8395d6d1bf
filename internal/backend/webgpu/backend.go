//go:build windows

package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// Backend implements the point cloud kernels on GPU using WebGPU.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfo

	// Staging buffer reuse for readbacks
	bufferPool *BufferPool
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (backend *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Backend{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: &adapterInfo,
		bufferPool:  NewBufferPool(device),
	}, nil
}

// Release frees all GPU resources held by the backend.
func (b *Backend) Release() {
	b.mu.Lock()
	for _, p := range b.pipelines {
		p.Release()
	}
	for _, s := range b.shaders {
		s.Release()
	}
	b.pipelines = make(map[string]*wgpu.ComputePipeline)
	b.shaders = make(map[string]*wgpu.ShaderModule)
	b.mu.Unlock()

	b.bufferPool.Clear()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}

// Name returns the backend name including the adapter when known.
func (b *Backend) Name() string {
	if b.adapterInfo != nil && b.adapterInfo.Device != "" {
		return "WebGPU(" + b.adapterInfo.Device + ")"
	}
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterInfo returns information about the selected GPU adapter.
func (b *Backend) AdapterInfo() *wgpu.AdapterInfo {
	return b.adapterInfo
}

// FurthestPointSample selects npoint spread-out points per batch element.
func (b *Backend) FurthestPointSample(points *tensor.RawTensor, npoint int) *tensor.RawTensor {
	out, err := b.runFurthestPointSample(points, npoint)
	if err != nil {
		panic("webgpu: FurthestPointSample: " + err.Error())
	}
	return out
}

// BallQuery finds radius neighborhoods around each center.
func (b *Backend) BallQuery(centers, points *tensor.RawTensor, radius float32, maxSamples int) *tensor.RawTensor {
	out, err := b.runBallQuery(centers, points, radius, maxSamples)
	if err != nil {
		panic("webgpu: BallQuery: " + err.Error())
	}
	return out
}

// GatherPoints gathers feature columns by index.
func (b *Backend) GatherPoints(features, index *tensor.RawTensor) *tensor.RawTensor {
	out, err := b.runGatherPoints(features, index)
	if err != nil {
		panic("webgpu: GatherPoints: " + err.Error())
	}
	return out
}

// GatherPointsGrad scatter-adds gather gradients into the feature shape.
func (b *Backend) GatherPointsGrad(gradOut, index *tensor.RawTensor, n int) *tensor.RawTensor {
	out, err := b.runGatherPointsGrad(gradOut, index, n)
	if err != nil {
		panic("webgpu: GatherPointsGrad: " + err.Error())
	}
	return out
}

// GroupPoints gathers grouped feature columns by index.
func (b *Backend) GroupPoints(features, index *tensor.RawTensor) *tensor.RawTensor {
	out, err := b.runGroupPoints(features, index)
	if err != nil {
		panic("webgpu: GroupPoints: " + err.Error())
	}
	return out
}

// GroupPointsGrad scatter-adds grouped gather gradients.
func (b *Backend) GroupPointsGrad(gradOut, index *tensor.RawTensor, n int) *tensor.RawTensor {
	out, err := b.runGroupPointsGrad(gradOut, index, n)
	if err != nil {
		panic("webgpu: GroupPointsGrad: " + err.Error())
	}
	return out
}

// ThreeNN finds the three nearest known points for every unknown point.
func (b *Backend) ThreeNN(unknown, known *tensor.RawTensor) (*tensor.RawTensor, *tensor.RawTensor) {
	dist, idx, err := b.runThreeNN(unknown, known)
	if err != nil {
		panic("webgpu: ThreeNN: " + err.Error())
	}
	return dist, idx
}

// ThreeInterpolate computes the weighted three-neighbor feature sum.
func (b *Backend) ThreeInterpolate(features, index, weight *tensor.RawTensor) *tensor.RawTensor {
	out, err := b.runThreeInterpolate(features, index, weight)
	if err != nil {
		panic("webgpu: ThreeInterpolate: " + err.Error())
	}
	return out
}

// ThreeInterpolateGrad scatters interpolation gradients onto the sources.
func (b *Backend) ThreeInterpolateGrad(gradOut, index, weight *tensor.RawTensor, m int) *tensor.RawTensor {
	out, err := b.runThreeInterpolateGrad(gradOut, index, weight, m)
	if err != nil {
		panic("webgpu: ThreeInterpolateGrad: " + err.Error())
	}
	return out
}

// Add performs element-wise addition on GPU.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out, err := b.runAdd(x, y)
	if err != nil {
		panic("webgpu: Add: " + err.Error())
	}
	return out
}

// Cat concatenates tensors along a dimension. Pure memory movement runs
// on the host; a round-trip through GPU memory would only add transfers.
func (b *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	return hostCat(tensors, dim, tensor.WebGPU)
}

// Transpose swaps two dimensions on the host.
func (b *Backend) Transpose(t *tensor.RawTensor, dim0, dim1 int) *tensor.RawTensor {
	return hostTranspose(t, dim0, dim1, tensor.WebGPU)
}

// SubtractGroupCenters re-centers grouped coordinates on the host.
func (b *Backend) SubtractGroupCenters(grouped, centers *tensor.RawTensor) *tensor.RawTensor {
	return hostSubtractCenters(grouped, centers, tensor.WebGPU)
}
