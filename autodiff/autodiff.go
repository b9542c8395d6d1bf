// Copyright 2025 PointGrad ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation
// (backpropagation) using a gradient tape. It wraps any backend to add
// autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/pointgrad-ml/pointgrad/autodiff"
//	    "github.com/pointgrad-ml/pointgrad/backend/cpu"
//	    "github.com/pointgrad-ml/pointgrad/points"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    gathered, _ := points.GatherPoints(features, index)
//
//	    grads := autodiff.Backward(gathered, backend)
//	    _ = grads[features.Raw()]
//	}
package autodiff

import (
	"github.com/pointgrad-ml/pointgrad/internal/autodiff"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is the interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients for a tensor, seeding the output gradient
// with ones. Returns a map from RawTensor to its accumulated gradient.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
