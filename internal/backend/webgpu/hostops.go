//go:build windows

package webgpu

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// Host-side layout operations. These are pure memory movement; shipping
// them through GPU buffers would cost two transfers per call for no
// compute gain.

func hostCat(tensors []*tensor.RawTensor, dim int, device tensor.Device) *tensor.RawTensor {
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
		outShape[dim] += t.Shape()[dim]
	}

	result, err := tensor.NewRaw(outShape, first.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

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
			copy(dst[pos:pos+block], t.Data()[o*block:(o+1)*block])
			pos += block
		}
	}
	return result
}

func hostTranspose(t *tensor.RawTensor, dim0, dim1 int, device tensor.Device) *tensor.RawTensor {
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

	result, err := tensor.NewRaw(outShape, t.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}
	if dim0 == dim1 {
		copy(result.Data(), t.Data())
		return result
	}

	srcStrides := t.Shape().ComputeStrides()
	outStrides := outShape.ComputeStrides()
	elemSize := t.DType().Size()

	src := t.Data()
	dst := result.Data()
	coords := make([]int, ndim)
	for i := 0; i < t.NumElements(); i++ {
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

func hostSubtractCenters(grouped, centers *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	gs := grouped.Shape()
	b, k, m, s := gs[0], gs[1], gs[2], gs[3]

	out, err := tensor.NewRaw(gs, tensor.Float32, device)
	if err != nil {
		panic(fmt.Sprintf("subtract_group_centers: %v", err))
	}

	src := grouped.AsFloat32()
	ctr := centers.AsFloat32()
	dst := out.AsFloat32()
	for bi := 0; bi < b; bi++ {
		for c := 0; c < k; c++ {
			for mi := 0; mi < m; mi++ {
				base := ((bi*k+c)*m + mi) * s
				center := ctr[(bi*m+mi)*k+c]
				for si := 0; si < s; si++ {
					dst[base+si] = src[base+si] - center
				}
			}
		}
	}
	return out
}
