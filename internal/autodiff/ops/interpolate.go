package ops

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// ThreeInterpolateOp records a weighted three-neighbor interpolation.
//
// Forward: output[b,c,i] = sum_k weight[b,i,k] * features[b,c,index[b,i,k]]
//
// Backward scatters each output-position gradient back onto its three
// source positions, scaled by the same weights. Index and weight are
// treated as constants.
type ThreeInterpolateOp struct {
	features *tensor.RawTensor // (B, C, M)
	index    *tensor.RawTensor // (B, N, 3) int32
	weight   *tensor.RawTensor // (B, N, 3)
	output   *tensor.RawTensor // (B, C, N)
}

// NewThreeInterpolateOp creates a new interpolation operation.
func NewThreeInterpolateOp(features, index, weight, output *tensor.RawTensor) *ThreeInterpolateOp {
	return &ThreeInterpolateOp{
		features: features,
		index:    index,
		weight:   weight,
		output:   output,
	}
}

// Inputs returns the feature tensor. Index and weight need no gradient.
func (op *ThreeInterpolateOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.features}
}

// Output returns the output tensor.
func (op *ThreeInterpolateOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the feature gradient via weighted scatter-add.
func (op *ThreeInterpolateOp) Backward(gradOutput *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	m := op.features.Shape()[2]
	return []*tensor.RawTensor{backend.ThreeInterpolateGrad(gradOutput, op.index, op.weight, m)}
}
