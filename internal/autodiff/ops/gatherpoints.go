package ops

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// GatherPointsOp records an index gather over feature columns.
//
// Forward: output[b,c,m] = features[b,c,index[b,m]]
//
// Backward:
//
//	Scatter-add gradOutput into a zero-initialized tensor of the features'
//	shape. Indices repeated within a batch element accumulate their gradients.
//
// The index tensor is a discrete selection and receives no gradient.
type GatherPointsOp struct {
	features *tensor.RawTensor // (B, C, N) gathered source
	index    *tensor.RawTensor // (B, M) int32
	output   *tensor.RawTensor // (B, C, M)
}

// NewGatherPointsOp creates a new gather operation.
func NewGatherPointsOp(features, index, output *tensor.RawTensor) *GatherPointsOp {
	return &GatherPointsOp{
		features: features,
		index:    index,
		output:   output,
	}
}

// Inputs returns the feature tensor. The index tensor needs no gradient.
func (op *GatherPointsOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.features}
}

// Output returns the output tensor.
func (op *GatherPointsOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the feature gradient via scatter-add.
func (op *GatherPointsOp) Backward(gradOutput *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := op.features.Shape()[2]
	return []*tensor.RawTensor{backend.GatherPointsGrad(gradOutput, op.index, n)}
}
