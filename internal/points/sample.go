package points

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// FurthestPointSample selects npoint indices from each batch element's
// point set so that the chosen points are maximally spread out.
//
// The first selected index is always 0. Each following round picks the
// point with the greatest distance to the set already selected, breaking
// ties toward the lowest index. Selected indices are distinct even when
// the cloud contains coincident points.
//
// xyz is (B, N, 3); the result is (B, npoint) int32.
func FurthestPointSample[B tensor.Backend](xyz *tensor.Tensor[float32, B], npoint int) (*tensor.Tensor[int32, B], error) {
	const op = "furthest_point_sample"

	if err := checkCoords(op, xyz.Raw()); err != nil {
		return nil, err
	}
	n := xyz.Shape()[1]
	if npoint <= 0 {
		return nil, &tensor.ValueError{Op: op, Details: fmt.Sprintf("npoint must be positive, got %d", npoint)}
	}
	if npoint > n {
		return nil, &tensor.ValueError{Op: op, Details: fmt.Sprintf("npoint %d exceeds point count %d", npoint, n)}
	}

	raw := xyz.Backend().FurthestPointSample(xyz.Raw(), npoint)
	return tensor.New[int32](raw, xyz.Backend()), nil
}
