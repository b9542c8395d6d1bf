package ops

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// FurthestPointSampleOp records a furthest point sampling pass.
//
// The output is an integer index tensor, so the operation is not
// differentiable. Backward returns a zero gradient of the input's shape
// so that accumulation above the sampler stays well defined.
type FurthestPointSampleOp struct {
	points *tensor.RawTensor // (B, N, 3)
	output *tensor.RawTensor // (B, npoint) int32
}

// NewFurthestPointSampleOp creates a new sampling operation.
func NewFurthestPointSampleOp(points, output *tensor.RawTensor) *FurthestPointSampleOp {
	return &FurthestPointSampleOp{
		points: points,
		output: output,
	}
}

// Inputs returns the point coordinate tensor.
func (op *FurthestPointSampleOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.points}
}

// Output returns the sampled index tensor.
func (op *FurthestPointSampleOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward returns a zero gradient for the coordinates.
func (op *FurthestPointSampleOp) Backward(gradOutput *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{zeros(op.points.Shape(), op.points.DType(), backend)}
}
