// Package points provides the typed operator layer for point cloud
// sampling, grouping and interpolation.
//
// Every operator validates its arguments and returns an error before any
// buffer is allocated or kernel dispatched. The backend kernels themselves
// panic on violated internal invariants; all caller-facing preconditions
// are checked here.
//
// Coordinate tensors are (B, N, 3) float32. Feature tensors are
// channel-major (B, C, N) float32. Index tensors are int32.
package points
