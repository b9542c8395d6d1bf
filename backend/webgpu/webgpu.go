//go:build windows

// Copyright 2025 PointGrad ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for GPU-accelerated point
// cloud kernels.
//
// Example:
//
//	import (
//	    "github.com/pointgrad-ml/pointgrad/autodiff"
//	    "github.com/pointgrad-ml/pointgrad/backend/webgpu"
//	)
//
//	func main() {
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//
//	    backend := autodiff.New(gpu)
//	    // ...
//	}
package webgpu

import (
	internalwebgpu "github.com/pointgrad-ml/pointgrad/internal/backend/webgpu"
	"github.com/pointgrad-ml/pointgrad/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new WebGPU backend.
//
// This initializes the WebGPU device and returns a backend ready for
// kernel dispatch. Call Release() when done to free GPU resources.
// Returns an error if WebGPU initialization fails (e.g., no compatible
// GPU or missing wgpu_native runtime).
func New() (*Backend, error) {
	return internalwebgpu.New()
}
