// Copyright 2025 PointGrad ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/pointgrad-ml/pointgrad/internal/tensor"

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for the point cloud kernels.
//
// Implementations:
//   - backend/cpu: Pure Go with SIMD fast paths and per-batch goroutine lanes
//   - backend/webgpu: GPU compute via WebGPU (windows only)
//
// Decorator backends for additional functionality:
//   - autodiff: Automatic differentiation (wraps any backend)
type Backend = tensor.Backend

// Errors surfaced by the typed operator layer.
var (
	// ErrUnsupportedOperation signals an explicit request for a derivative
	// that does not exist.
	ErrUnsupportedOperation = tensor.ErrUnsupportedOperation

	// ErrNotContiguous reports tensor memory that kernels cannot consume.
	ErrNotContiguous = tensor.ErrNotContiguous
)

// ShapeError reports a wrong-rank or dimension-mismatch precondition failure.
type ShapeError = tensor.ShapeError

// ValueError reports an invalid argument value.
type ValueError = tensor.ValueError
