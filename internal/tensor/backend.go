package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for point-set operations.
//
// Implementations:
//   - CPU: Pure Go reference kernels with SIMD fast paths
//   - WebGPU: WGSL compute shaders (windows builds)
//
// Kernels assume inputs have been validated by the points package: coordinate
// tensors are float32 with contiguous (B, N, 3) layout, index tensors are int32.
type Backend interface {
	// FurthestPointSample selects npoint indices per batch element via greedy
	// farthest-point sampling. points is (B, N, 3); the result is int32 (B, npoint)
	// with the selection order preserved. The first selected index is always 0.
	FurthestPointSample(points *RawTensor, npoint int) *RawTensor

	// BallQuery returns, for each center, up to maxSamples indices of points within
	// radius. centers is (B, M, 3), points is (B, N, 3); the result is int32
	// (B, M, maxSamples). Rows start zero-initialized; the first qualifying
	// neighbor fills the whole row and later qualifiers overwrite in scan order.
	BallQuery(centers, points *RawTensor, radius float32, maxSamples int) *RawTensor

	// GatherPoints gathers features (B, C, N) at indices (B, M) -> (B, C, M).
	GatherPoints(features, index *RawTensor) *RawTensor

	// GatherPointsGrad scatter-adds gradOut (B, C, M) back into a zero-initialized
	// (B, C, n) tensor at the positions named by index (B, M).
	GatherPointsGrad(gradOut, index *RawTensor, n int) *RawTensor

	// GroupPoints gathers features (B, C, N) at grouped indices (B, M, S)
	// -> (B, C, M, S).
	GroupPoints(features, index *RawTensor) *RawTensor

	// GroupPointsGrad scatter-adds gradOut (B, C, M, S) back into a
	// zero-initialized (B, C, n) tensor.
	GroupPointsGrad(gradOut, index *RawTensor, n int) *RawTensor

	// ThreeNN finds the three nearest neighbors of each point in unknown (B, n, 3)
	// among known (B, m, 3). Returns Euclidean distances and int32 indices, both
	// shaped (B, n, 3) and sorted by ascending distance.
	ThreeNN(unknown, known *RawTensor) (*RawTensor, *RawTensor)

	// ThreeInterpolate computes weighted sums over three source features:
	// features (B, C, M), index (B, n, 3), weight (B, n, 3) -> (B, C, n).
	ThreeInterpolate(features, index, weight *RawTensor) *RawTensor

	// ThreeInterpolateGrad scatters gradOut (B, C, n), scaled by weight, back
	// into a zero-initialized (B, C, m) tensor.
	ThreeInterpolateGrad(gradOut, index, weight *RawTensor, m int) *RawTensor

	// Support operations used by the grouping modules and gradient accumulation.

	// Add performs element-wise addition of same-shape tensors.
	Add(a, b *RawTensor) *RawTensor

	// Cat concatenates tensors along a dimension.
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Transpose swaps two dimensions, copying into a dense result.
	Transpose(t *RawTensor, dim0, dim1 int) *RawTensor

	// SubtractGroupCenters recenters grouped coordinates (B, 3, M, S) by
	// subtracting the center coordinates (B, M, 3) from every sample in the group.
	SubtractGroupCenters(grouped, centers *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
