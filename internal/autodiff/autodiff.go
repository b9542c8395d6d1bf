// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation (CPU, GPU, etc.) and adds
// gradient tracking capabilities through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op implements its own backward pass
//   - Reverse-mode AD: Computes gradients efficiently using chain rule
//
// Usage:
//
//	// Wrap any backend with autodiff
//	cpuBackend := cpu.New()
//	autodiffBackend := autodiff.New(cpuBackend)
//
//	// Record the forward pass
//	autodiffBackend.Tape().StartRecording()
//	gathered := autodiffBackend.GatherPoints(features, index)
//
//	// Compute gradients
//	gradients := autodiffBackend.Tape().Backward(outputGrad, autodiffBackend)
//	grad := gradients[features]
package autodiff

import (
	"github.com/pointgrad-ml/pointgrad/internal/autodiff/ops"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
//
// Type parameter B must satisfy the tensor.Backend interface.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend (CPU, GPU, etc.)
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// FurthestPointSample selects a spread-out subset of points and records
// the operation. The backward pass produces a zero gradient because index
// selection is not differentiable.
func (b *AutodiffBackend[B]) FurthestPointSample(points *tensor.RawTensor, npoint int) *tensor.RawTensor {
	defer points.ForceNonUnique()()

	result := b.inner.FurthestPointSample(points, npoint)

	if b.tape.IsRecording() {
		op := ops.NewFurthestPointSampleOp(points, result)
		b.tape.Record(op)
	}

	return result
}

// BallQuery finds radius neighborhoods and records the operation.
// Like FurthestPointSample, its backward pass is a zero gradient.
func (b *AutodiffBackend[B]) BallQuery(centers, points *tensor.RawTensor, radius float32, maxSamples int) *tensor.RawTensor {
	defer centers.ForceNonUnique()()
	defer points.ForceNonUnique()()

	result := b.inner.BallQuery(centers, points, radius, maxSamples)

	if b.tape.IsRecording() {
		op := ops.NewBallQueryOp(centers, points, result)
		b.tape.Record(op)
	}

	return result
}

// GatherPoints gathers feature columns by index and records the operation.
func (b *AutodiffBackend[B]) GatherPoints(features, index *tensor.RawTensor) *tensor.RawTensor {
	defer features.ForceNonUnique()()

	result := b.inner.GatherPoints(features, index)

	if b.tape.IsRecording() {
		op := ops.NewGatherPointsOp(features, index, result)
		b.tape.Record(op)
	}

	return result
}

// GatherPointsGrad delegates to the wrapped backend without recording.
// It is itself a gradient kernel.
func (b *AutodiffBackend[B]) GatherPointsGrad(gradOut, index *tensor.RawTensor, n int) *tensor.RawTensor {
	return b.inner.GatherPointsGrad(gradOut, index, n)
}

// GroupPoints gathers grouped feature columns and records the operation.
func (b *AutodiffBackend[B]) GroupPoints(features, index *tensor.RawTensor) *tensor.RawTensor {
	defer features.ForceNonUnique()()

	result := b.inner.GroupPoints(features, index)

	if b.tape.IsRecording() {
		op := ops.NewGroupPointsOp(features, index, result)
		b.tape.Record(op)
	}

	return result
}

// GroupPointsGrad delegates to the wrapped backend without recording.
func (b *AutodiffBackend[B]) GroupPointsGrad(gradOut, index *tensor.RawTensor, n int) *tensor.RawTensor {
	return b.inner.GroupPointsGrad(gradOut, index, n)
}

// ThreeNN delegates to the wrapped backend without recording.
// Its distance output feeds the interpolation weights, which are treated
// as constants during backpropagation.
func (b *AutodiffBackend[B]) ThreeNN(unknown, known *tensor.RawTensor) (*tensor.RawTensor, *tensor.RawTensor) {
	return b.inner.ThreeNN(unknown, known)
}

// ThreeInterpolate interpolates features and records the operation.
func (b *AutodiffBackend[B]) ThreeInterpolate(features, index, weight *tensor.RawTensor) *tensor.RawTensor {
	defer features.ForceNonUnique()()

	result := b.inner.ThreeInterpolate(features, index, weight)

	if b.tape.IsRecording() {
		op := ops.NewThreeInterpolateOp(features, index, weight, result)
		b.tape.Record(op)
	}

	return result
}

// ThreeInterpolateGrad delegates to the wrapped backend without recording.
func (b *AutodiffBackend[B]) ThreeInterpolateGrad(gradOut, index, weight *tensor.RawTensor, m int) *tensor.RawTensor {
	return b.inner.ThreeInterpolateGrad(gradOut, index, weight, m)
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	// Prevent inplace modification that would corrupt the autodiff graph.
	// Temporarily increase refCount so IsUnique() returns false and the
	// wrapped backend allocates a new result.
	defer a.ForceNonUnique()()
	defer c.ForceNonUnique()()

	result := b.inner.Add(a, c)

	if b.tape.IsRecording() {
		op := ops.NewAddOp(a, c, result)
		b.tape.Record(op)
	}

	return result
}

// Cat concatenates tensors along a dimension and records the operation.
func (b *AutodiffBackend[B]) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	for _, t := range tensors {
		defer t.ForceNonUnique()()
	}

	result := b.inner.Cat(tensors, dim)

	if b.tape.IsRecording() {
		op := ops.NewCatOp(tensors, dim, result)
		b.tape.Record(op)
	}

	return result
}

// Transpose swaps two dimensions and records the operation.
//
// Even though conceptually a transpose is a "view", the wrapped backend
// materializes a new tensor. Without recording, gradients computed for
// the transposed tensor would never reach the original.
func (b *AutodiffBackend[B]) Transpose(t *tensor.RawTensor, dim0, dim1 int) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	result := b.inner.Transpose(t, dim0, dim1)

	if b.tape.IsRecording() {
		op := ops.NewTransposeOp(t, dim0, dim1, result)
		b.tape.Record(op)
	}

	return result
}

// SubtractGroupCenters re-centers grouped coordinates and records the operation.
func (b *AutodiffBackend[B]) SubtractGroupCenters(grouped, centers *tensor.RawTensor) *tensor.RawTensor {
	defer grouped.ForceNonUnique()()
	defer centers.ForceNonUnique()()

	result := b.inner.SubtractGroupCenters(grouped, centers)

	if b.tape.IsRecording() {
		op := ops.NewRecenterOp(grouped, centers, result)
		b.tape.Record(op)
	}

	return result
}
