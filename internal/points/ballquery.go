package points

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// BallQuery finds up to maxSamples points within radius of each query
// center. Rows with fewer than maxSamples hits are padded by repeating
// the first hit; rows with no hits are all zeros.
//
// centers is (B, M, 3), xyz is (B, N, 3); the result is
// (B, M, maxSamples) int32.
func BallQuery[B tensor.Backend](centers, xyz *tensor.Tensor[float32, B], radius float32, maxSamples int) (*tensor.Tensor[int32, B], error) {
	const op = "ball_query"

	if err := checkCoords(op, centers.Raw()); err != nil {
		return nil, err
	}
	if err := checkCoords(op, xyz.Raw()); err != nil {
		return nil, err
	}
	if err := checkSameBatch(op, centers.Raw(), xyz.Raw()); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, &tensor.ValueError{Op: op, Details: fmt.Sprintf("radius must be positive, got %g", radius)}
	}
	if maxSamples <= 0 {
		return nil, &tensor.ValueError{Op: op, Details: fmt.Sprintf("maxSamples must be positive, got %d", maxSamples)}
	}

	raw := xyz.Backend().BallQuery(centers.Raw(), xyz.Raw(), radius, maxSamples)
	return tensor.New[int32](raw, xyz.Backend()), nil
}
