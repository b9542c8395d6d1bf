package points

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// GatherPoints selects feature columns by index:
//
//	out[b,c,m] = features[b,c,index[b,m]]
//
// features is (B, C, N), index is (B, M) int32; the result is (B, C, M).
// The gradient of the result scatter-adds back into the features' shape.
func GatherPoints[B tensor.Backend](features *tensor.Tensor[float32, B], index *tensor.Tensor[int32, B]) (*tensor.Tensor[float32, B], error) {
	const op = "gather_points"

	if err := checkFeatures(op, features.Raw()); err != nil {
		return nil, err
	}
	if err := checkIndexRank(op, index.Raw(), 2, "(B, M)"); err != nil {
		return nil, err
	}
	if err := checkSameBatch(op, features.Raw(), index.Raw()); err != nil {
		return nil, err
	}

	raw := features.Backend().GatherPoints(features.Raw(), index.Raw())
	return tensor.New[float32](raw, features.Backend()), nil
}

// GroupPoints selects grouped feature columns by index:
//
//	out[b,c,m,s] = features[b,c,index[b,m,s]]
//
// features is (B, C, N), index is (B, M, S) int32; the result is
// (B, C, M, S).
func GroupPoints[B tensor.Backend](features *tensor.Tensor[float32, B], index *tensor.Tensor[int32, B]) (*tensor.Tensor[float32, B], error) {
	const op = "group_points"

	if err := checkFeatures(op, features.Raw()); err != nil {
		return nil, err
	}
	if err := checkIndexRank(op, index.Raw(), 3, "(B, M, S)"); err != nil {
		return nil, err
	}
	if err := checkSameBatch(op, features.Raw(), index.Raw()); err != nil {
		return nil, err
	}

	raw := features.Backend().GroupPoints(features.Raw(), index.Raw())
	return tensor.New[float32](raw, features.Backend()), nil
}
