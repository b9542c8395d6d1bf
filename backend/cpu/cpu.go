// Copyright 2025 PointGrad ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU backend for the point cloud kernels.
package cpu

import (
	internalcpu "github.com/pointgrad-ml/pointgrad/internal/backend/cpu"
	"github.com/pointgrad-ml/pointgrad/internal/parallel"
	"github.com/pointgrad-ml/pointgrad/tensor"
)

// Backend represents the CPU backend implementation.
//
// Batch elements run on independent goroutine lanes; flat float32 slice
// math goes through SIMD where available.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// ParallelConfig controls goroutine fan-out inside the backend.
type ParallelConfig = parallel.Config

// New creates a new CPU backend with default parallelism.
//
// Example:
//
//	backend := cpu.New()
//	xyz := tensor.Zeros[float32](tensor.Shape{2, 1024, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithParallel creates a CPU backend with explicit parallel
// configuration. Passing a disabled config forces sequential execution,
// which is useful when bit-exact run-to-run behavior matters more than
// throughput.
func NewWithParallel(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithParallel(cfg)
}

// DefaultParallelConfig returns the parallel configuration New uses.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}
