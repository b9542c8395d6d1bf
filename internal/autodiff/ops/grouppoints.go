package ops

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// GroupPointsOp records a grouped index gather.
//
// Forward: output[b,c,m,s] = features[b,c,index[b,m,s]]
//
// Backward mirrors GatherPointsOp: scatter-add into the features' shape.
// A point referenced by several groups accumulates all of their gradients.
type GroupPointsOp struct {
	features *tensor.RawTensor // (B, C, N)
	index    *tensor.RawTensor // (B, M, S) int32
	output   *tensor.RawTensor // (B, C, M, S)
}

// NewGroupPointsOp creates a new grouped gather operation.
func NewGroupPointsOp(features, index, output *tensor.RawTensor) *GroupPointsOp {
	return &GroupPointsOp{
		features: features,
		index:    index,
		output:   output,
	}
}

// Inputs returns the feature tensor. The index tensor needs no gradient.
func (op *GroupPointsOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.features}
}

// Output returns the output tensor.
func (op *GroupPointsOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the feature gradient via scatter-add.
func (op *GroupPointsOp) Backward(gradOutput *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := op.features.Shape()[2]
	return []*tensor.RawTensor{backend.GroupPointsGrad(gradOutput, op.index, n)}
}
