// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - GatherPointsOp: index gather (backward: scatter-add)
//   - GroupPointsOp: grouped index gather (backward: scatter-add)
//   - ThreeInterpolateOp: inverse-distance weighted sum (backward: weighted scatter)
//   - RecenterOp: group re-centering (backward: identity / negated sum)
//   - CatOp: channel concatenation (backward: split)
//   - TransposeOp: dimension swap (backward: swap back)
//   - AddOp: element-wise addition (backward: identity to both inputs)
//   - FurthestPointSampleOp, BallQueryOp: discrete selections (backward: zeros)
package ops

import "github.com/pointgrad-ml/pointgrad/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// zeros allocates a zero-initialized gradient with the given shape and dtype.
func zeros(shape tensor.Shape, dtype tensor.DataType, backend tensor.Backend) *tensor.RawTensor {
	grad, err := tensor.NewRaw(shape, dtype, backend.Device())
	if err != nil {
		panic(err)
	}
	return grad
}
