// Package cpu implements the CPU backend with SIMD fast paths for the point kernels.
package cpu

import (
	"fmt"

	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"

	"github.com/pointgrad-ml/pointgrad/internal/parallel"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// CPUBackend implements point-set operations on CPU. Batch elements run on
// independent goroutine lanes; flat float32 slice math goes through vek.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend with default parallelism.
func New() *CPUBackend {
	return NewWithParallel(parallel.DefaultConfig())
}

// NewWithParallel creates a CPU backend with explicit parallel configuration.
// Useful for forcing sequential execution in determinism tests.
func NewWithParallel(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition of same-shape tensors.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("add: shape mismatch: %v vs %v", a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("add: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	// Fast path: accumulate inplace when a is the only reference.
	if a.IsUnique() {
		switch a.DType() {
		case tensor.Float32:
			vek32.Add_Inplace(a.AsFloat32(), b.AsFloat32())
		case tensor.Float64:
			vek.Add_Inplace(a.AsFloat64(), b.AsFloat64())
		case tensor.Int32:
			dst, src := a.AsInt32(), b.AsInt32()
			for i := range dst {
				dst[i] += src[i]
			}
		}
		return a
	}

	result, err := tensor.NewRaw(a.Shape(), a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("add: failed to create result tensor: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		vek32.Add_Into(result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		vek.Add_Into(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	case tensor.Int32:
		dst, x, y := result.AsInt32(), a.AsInt32(), b.AsInt32()
		for i := range dst {
			dst[i] = x[i] + y[i]
		}
	}
	return result
}

// Cat concatenates tensors along a dimension.
// All inputs must share rank, dtype, and every dimension except dim.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no input tensors")
	}

	first := tensors[0]
	ndim := len(first.Shape())
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: invalid dim %d for %dD tensor", dim, ndim))
	}

	outShape := first.Shape().Clone()
	for _, t := range tensors[1:] {
		if len(t.Shape()) != ndim {
			panic(fmt.Sprintf("cat: rank mismatch: %v vs %v", first.Shape(), t.Shape()))
		}
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: dtype mismatch: %s vs %s", first.DType(), t.DType()))
		}
		for d := 0; d < ndim; d++ {
			if d != dim && t.Shape()[d] != first.Shape()[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dim %d: %v vs %v", d, first.Shape(), t.Shape()))
			}
		}
		outShape[dim] += t.Shape()[dim]
	}

	result, err := tensor.NewRaw(outShape, first.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cat: failed to create result tensor: %v", err))
	}

	// Each (outer, input) pair contributes one contiguous byte block, so
	// concatenation reduces to interleaved block copies regardless of dtype.
	elemSize := first.DType().Size()
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= outShape[d]
	}
	inner := elemSize
	for d := dim + 1; d < ndim; d++ {
		inner *= outShape[d]
	}

	dst := result.Data()
	pos := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			block := t.Shape()[dim] * inner
			src := t.Data()[o*block : (o+1)*block]
			copy(dst[pos:pos+block], src)
			pos += block
		}
	}
	return result
}

// Transpose swaps two dimensions, copying into a dense row-major result.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, dim0, dim1 int) *tensor.RawTensor {
	ndim := len(t.Shape())
	if dim0 < 0 {
		dim0 += ndim
	}
	if dim1 < 0 {
		dim1 += ndim
	}
	if dim0 < 0 || dim0 >= ndim || dim1 < 0 || dim1 >= ndim {
		panic(fmt.Sprintf("transpose: invalid dims (%d, %d) for %dD tensor", dim0, dim1, ndim))
	}

	outShape := t.Shape().Clone()
	outShape[dim0], outShape[dim1] = outShape[dim1], outShape[dim0]

	result, err := tensor.NewRaw(outShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: failed to create result tensor: %v", err))
	}
	if dim0 == dim1 {
		copy(result.Data(), t.Data())
		return result
	}

	srcStrides := t.Shape().ComputeStrides()
	outStrides := outShape.ComputeStrides()
	elemSize := t.DType().Size()
	numElements := t.NumElements()

	src := t.Data()
	dst := result.Data()
	coords := make([]int, ndim)
	for i := 0; i < numElements; i++ {
		remaining := i
		for d := 0; d < ndim; d++ {
			coords[d] = remaining / srcStrides[d]
			remaining %= srcStrides[d]
		}

		outIdx := 0
		for d := 0; d < ndim; d++ {
			c := coords[d]
			switch d {
			case dim0:
				outIdx += c * outStrides[dim1]
			case dim1:
				outIdx += c * outStrides[dim0]
			default:
				outIdx += c * outStrides[d]
			}
		}
		copy(dst[outIdx*elemSize:(outIdx+1)*elemSize], src[i*elemSize:(i+1)*elemSize])
	}
	return result
}

// SubtractGroupCenters recenters grouped coordinates (B, 3, M, S) by subtracting
// the center coordinates (B, M, 3) from every sample in the group.
func (cpu *CPUBackend) SubtractGroupCenters(grouped, centers *tensor.RawTensor) *tensor.RawTensor {
	gs := grouped.Shape()
	b, m, s := gs[0], gs[2], gs[3]

	out, err := tensor.NewRaw(gs, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("subtract_group_centers: %v", err))
	}
	copy(out.AsFloat32(), grouped.AsFloat32())

	ctr := centers.AsFloat32()
	dst := out.AsFloat32()
	parallel.Lanes(b, func(bi int) {
		for c := 0; c < 3; c++ {
			for mi := 0; mi < m; mi++ {
				row := dst[((bi*3+c)*m+mi)*s : ((bi*3+c)*m+mi+1)*s]
				vek32.SubNumber_Inplace(row, ctr[(bi*m+mi)*3+c])
			}
		}
	}, cpu.par)

	return out
}
