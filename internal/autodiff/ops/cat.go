package ops

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// CatOp records a concatenation along one dimension.
//
// Backward splits the output gradient back into one slab per input,
// reversing the interleaved block copy of the forward pass.
type CatOp struct {
	inputs []*tensor.RawTensor
	dim    int
	output *tensor.RawTensor
}

// NewCatOp creates a new concatenation operation.
func NewCatOp(inputs []*tensor.RawTensor, dim int, output *tensor.RawTensor) *CatOp {
	return &CatOp{
		inputs: inputs,
		dim:    dim,
		output: output,
	}
}

// Inputs returns the concatenated tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor.
func (op *CatOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward splits the output gradient along the concatenation dimension.
func (op *CatOp) Backward(gradOutput *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := gradOutput.Shape()
	elemSize := gradOutput.DType().Size()

	outer := 1
	for d := 0; d < op.dim; d++ {
		outer *= shape[d]
	}
	innerBytes := elemSize
	for d := op.dim + 1; d < len(shape); d++ {
		innerBytes *= shape[d]
	}

	outBlockBytes := shape[op.dim] * innerBytes
	gradData := gradOutput.Data()

	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		grad := zeros(in.Shape(), in.DType(), backend)
		blockBytes := in.Shape()[op.dim] * innerBytes
		dst := grad.Data()
		for o := 0; o < outer; o++ {
			src := gradData[o*outBlockBytes+offset : o*outBlockBytes+offset+blockBytes]
			copy(dst[o*blockBytes:(o+1)*blockBytes], src)
		}
		offset += blockBytes
		grads[i] = grad
	}
	return grads
}
