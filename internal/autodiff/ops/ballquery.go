package ops

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// BallQueryOp records a radius neighborhood query.
//
// Like sampling, the output is an index tensor and the operation is not
// differentiable. Backward returns zero gradients for both coordinate
// inputs.
type BallQueryOp struct {
	centers *tensor.RawTensor // (B, M, 3)
	points  *tensor.RawTensor // (B, N, 3)
	output  *tensor.RawTensor // (B, M, maxSamples) int32
}

// NewBallQueryOp creates a new ball query operation.
func NewBallQueryOp(centers, points, output *tensor.RawTensor) *BallQueryOp {
	return &BallQueryOp{
		centers: centers,
		points:  points,
		output:  output,
	}
}

// Inputs returns the center and point coordinate tensors.
func (op *BallQueryOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.centers, op.points}
}

// Output returns the neighbor index tensor.
func (op *BallQueryOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward returns zero gradients for both coordinate inputs.
func (op *BallQueryOp) Backward(gradOutput *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		zeros(op.centers.Shape(), op.centers.DType(), backend),
		zeros(op.points.Shape(), op.points.DType(), backend),
	}
}
