// Package webgpu implements the point cloud kernels on GPU using WebGPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// The backend is only built on windows, where the wgpu_native runtime is
// available. Sampling, neighborhood queries, gathers and interpolation run
// as WGSL compute shaders; pure memory-movement operations (concatenation,
// transpose, re-centering) run on the host.
package webgpu
