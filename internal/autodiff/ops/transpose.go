package ops

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// TransposeOp records a dimension swap.
//
// Backward swaps the same two dimensions of the output gradient, which
// restores the input's layout.
type TransposeOp struct {
	input      *tensor.RawTensor
	dim0, dim1 int
	output     *tensor.RawTensor
}

// NewTransposeOp creates a new transpose operation.
func NewTransposeOp(input *tensor.RawTensor, dim0, dim1 int, output *tensor.RawTensor) *TransposeOp {
	return &TransposeOp{
		input:  input,
		dim0:   dim0,
		dim1:   dim1,
		output: output,
	}
}

// Inputs returns the input tensor.
func (op *TransposeOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *TransposeOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward transposes the output gradient back.
func (op *TransposeOp) Backward(gradOutput *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(gradOutput, op.dim0, op.dim1)}
}
