package points

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// weightEpsilon guards against division by zero when an unknown point
// coincides with a known point.
const weightEpsilon = 1e-8

// ThreeNN finds the three nearest known points for every unknown point.
//
// unknown is (B, N, 3), known is (B, M, 3) with M >= 3. It returns
// Euclidean distances (B, N, 3) and matching indices (B, N, 3) int32,
// ordered nearest first.
func ThreeNN[B tensor.Backend](unknown, known *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[int32, B], error) {
	const op = "three_nn"

	if err := checkCoords(op, unknown.Raw()); err != nil {
		return nil, nil, err
	}
	if err := checkCoords(op, known.Raw()); err != nil {
		return nil, nil, err
	}
	if err := checkSameBatch(op, unknown.Raw(), known.Raw()); err != nil {
		return nil, nil, err
	}
	if m := known.Shape()[1]; m < 3 {
		return nil, nil, &tensor.ValueError{Op: op, Details: fmt.Sprintf("need at least 3 known points, got %d", m)}
	}

	distRaw, idxRaw := unknown.Backend().ThreeNN(unknown.Raw(), known.Raw())
	return tensor.New[float32](distRaw, unknown.Backend()), tensor.New[int32](idxRaw, unknown.Backend()), nil
}

// InterpolationWeights converts ThreeNN distances into normalized
// inverse-distance weights:
//
//	w_k = (1 / (d_k + eps)) / sum_j (1 / (d_j + eps))
//
// Each row of the result sums to 1. dist is (B, N, 3).
func InterpolationWeights[B tensor.Backend](dist *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	const op = "interpolation_weights"

	shape := dist.Shape()
	if len(shape) != 3 || shape[2] != 3 {
		return nil, &tensor.ShapeError{Op: op, Want: "(B, N, 3)", Got: shape}
	}

	raw, err := tensor.NewRaw(shape.Clone(), tensor.Float32, dist.Device())
	if err != nil {
		return nil, err
	}

	src := dist.Raw().AsFloat32()
	dst := raw.AsFloat32()
	for row := 0; row < len(src); row += 3 {
		r0 := 1 / (src[row] + weightEpsilon)
		r1 := 1 / (src[row+1] + weightEpsilon)
		r2 := 1 / (src[row+2] + weightEpsilon)
		norm := r0 + r1 + r2
		dst[row] = r0 / norm
		dst[row+1] = r1 / norm
		dst[row+2] = r2 / norm
	}

	return tensor.New[float32](raw, dist.Backend()), nil
}

// ThreeInterpolate computes a weighted sum of three source features per
// output position:
//
//	out[b,c,i] = sum_k weight[b,i,k] * features[b,c,index[b,i,k]]
//
// features is (B, C, M), index and weight are (B, N, 3); the result is
// (B, C, N). The gradient of the result scatters back onto the source
// features scaled by the same weights.
func ThreeInterpolate[B tensor.Backend](features *tensor.Tensor[float32, B], index *tensor.Tensor[int32, B], weight *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	const op = "three_interpolate"

	if err := checkFeatures(op, features.Raw()); err != nil {
		return nil, err
	}
	if err := checkIndexRank(op, index.Raw(), 3, "(B, N, 3)"); err != nil {
		return nil, err
	}
	if idxShape := index.Shape(); idxShape[2] != 3 {
		return nil, &tensor.ShapeError{Op: op, Want: "(B, N, 3)", Got: idxShape}
	}
	if !weight.Shape().Equal(index.Shape()) {
		return nil, &tensor.ValueError{
			Op:      op,
			Details: fmt.Sprintf("weight shape %v does not match index shape %v", weight.Shape(), index.Shape()),
		}
	}
	if err := checkSameBatch(op, features.Raw(), index.Raw()); err != nil {
		return nil, err
	}

	raw := features.Backend().ThreeInterpolate(features.Raw(), index.Raw(), weight.Raw())
	return tensor.New[float32](raw, features.Backend()), nil
}
