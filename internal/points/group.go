package points

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// QueryAndGroup bundles ball query, grouped gather and re-centering into
// one set-abstraction grouping step.
//
// For each query center it gathers up to MaxSamples neighbor coordinates,
// subtracts the center so groups are locally centered, and optionally
// concatenates grouped features along the channel dimension.
type QueryAndGroup[B tensor.Backend] struct {
	Radius     float32
	MaxSamples int
	UseXYZ     bool // Include re-centered coordinates in the output channels
}

// NewQueryAndGroup creates a grouping module with the given neighborhood
// parameters.
func NewQueryAndGroup[B tensor.Backend](radius float32, maxSamples int, useXYZ bool) *QueryAndGroup[B] {
	return &QueryAndGroup[B]{Radius: radius, MaxSamples: maxSamples, UseXYZ: useXYZ}
}

// Forward groups neighborhoods around each center.
//
// xyz is (B, N, 3), centers is (B, M, 3), features is (B, C, N) or nil.
// The result is (B, 3+C, M, S) when UseXYZ and features are both present,
// (B, C, M, S) with features alone, and (B, 3, M, S) with coordinates
// alone. Passing nil features with UseXYZ disabled is an error because the
// output would be empty.
func (q *QueryAndGroup[B]) Forward(xyz, centers *tensor.Tensor[float32, B], features *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	const op = "query_and_group"

	if features == nil && !q.UseXYZ {
		return nil, &tensor.ValueError{Op: op, Details: "features required when UseXYZ is disabled"}
	}

	idx, err := BallQuery(centers, xyz, q.Radius, q.MaxSamples)
	if err != nil {
		return nil, err
	}

	backend := xyz.Backend()

	// (B, N, 3) -> (B, 3, N) so coordinates group like feature channels.
	xyzTrans := backend.Transpose(xyz.Raw(), 1, 2)
	groupedXYZ := backend.GroupPoints(xyzTrans, idx.Raw())
	centered := backend.SubtractGroupCenters(groupedXYZ, centers.Raw())

	if features == nil {
		return tensor.New[float32](centered, backend), nil
	}

	if err := checkFeatures(op, features.Raw()); err != nil {
		return nil, err
	}
	if err := checkSameBatch(op, xyz.Raw(), features.Raw()); err != nil {
		return nil, err
	}

	groupedFeat := backend.GroupPoints(features.Raw(), idx.Raw())
	if !q.UseXYZ {
		return tensor.New[float32](groupedFeat, backend), nil
	}

	out := backend.Cat([]*tensor.RawTensor{centered, groupedFeat}, 1)
	return tensor.New[float32](out, backend), nil
}

// GroupAll groups the entire point set into a single neighborhood.
// It is the degenerate grouping used by the final set-abstraction level,
// where one feature vector summarizes the whole cloud.
type GroupAll[B tensor.Backend] struct {
	UseXYZ bool
}

// NewGroupAll creates a whole-cloud grouping module.
func NewGroupAll[B tensor.Backend](useXYZ bool) *GroupAll[B] {
	return &GroupAll[B]{UseXYZ: useXYZ}
}

// Forward groups all points into one group per batch element.
//
// xyz is (B, N, 3), features is (B, C, N) or nil. The result is
// (B, 3+C, 1, N), (B, C, 1, N), or (B, 3, 1, N) following the same rules
// as QueryAndGroup. Coordinates are not re-centered.
func (g *GroupAll[B]) Forward(xyz *tensor.Tensor[float32, B], features *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	const op = "group_all"

	if features == nil && !g.UseXYZ {
		return nil, &tensor.ValueError{Op: op, Details: "features required when UseXYZ is disabled"}
	}
	if err := checkCoords(op, xyz.Raw()); err != nil {
		return nil, err
	}

	backend := xyz.Backend()
	b := xyz.Shape()[0]
	n := xyz.Shape()[1]

	// Identity index (B, 1, N) selects every point into the single group,
	// keeping the gather on the tape so gradients flow like any grouping.
	allIdx, err := tensor.NewRaw(tensor.Shape{b, 1, n}, tensor.Int32, backend.Device())
	if err != nil {
		return nil, err
	}
	idxData := allIdx.AsInt32()
	for bi := 0; bi < b; bi++ {
		for i := 0; i < n; i++ {
			idxData[bi*n+i] = int32(i)
		}
	}

	xyzTrans := backend.Transpose(xyz.Raw(), 1, 2)
	groupedXYZ := backend.GroupPoints(xyzTrans, allIdx)

	if features == nil {
		return tensor.New[float32](groupedXYZ, backend), nil
	}

	if err := checkFeatures(op, features.Raw()); err != nil {
		return nil, err
	}
	if err := checkSameBatch(op, xyz.Raw(), features.Raw()); err != nil {
		return nil, err
	}

	groupedFeat := backend.GroupPoints(features.Raw(), allIdx)
	if !g.UseXYZ {
		return tensor.New[float32](groupedFeat, backend), nil
	}

	out := backend.Cat([]*tensor.RawTensor{groupedXYZ, groupedFeat}, 1)
	return tensor.New[float32](out, backend), nil
}
