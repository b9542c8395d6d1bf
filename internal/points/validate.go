package points

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// checkCoords validates a (B, N, 3) coordinate tensor.
func checkCoords(op string, t *tensor.RawTensor) error {
	shape := t.Shape()
	if len(shape) != 3 || shape[2] != 3 {
		return &tensor.ShapeError{Op: op, Want: "(B, N, 3)", Got: shape}
	}
	if !t.IsContiguous() {
		return fmt.Errorf("%s: %w", op, tensor.ErrNotContiguous)
	}
	return nil
}

// checkFeatures validates a (B, C, N) feature tensor.
func checkFeatures(op string, t *tensor.RawTensor) error {
	shape := t.Shape()
	if len(shape) != 3 {
		return &tensor.ShapeError{Op: op, Want: "(B, C, N)", Got: shape}
	}
	if !t.IsContiguous() {
		return fmt.Errorf("%s: %w", op, tensor.ErrNotContiguous)
	}
	return nil
}

// checkIndexRank validates an index tensor of the given rank.
func checkIndexRank(op string, t *tensor.RawTensor, rank int, want string) error {
	shape := t.Shape()
	if len(shape) != rank {
		return &tensor.ShapeError{Op: op, Want: want, Got: shape}
	}
	if t.DType() != tensor.Int32 {
		return &tensor.ValueError{Op: op, Details: fmt.Sprintf("index dtype must be int32, got %s", t.DType())}
	}
	return nil
}

// checkSameBatch validates that two tensors share a leading batch dimension.
func checkSameBatch(op string, a, b *tensor.RawTensor) error {
	if a.Shape()[0] != b.Shape()[0] {
		return &tensor.ValueError{
			Op:      op,
			Details: fmt.Sprintf("batch size mismatch: %d vs %d", a.Shape()[0], b.Shape()[0]),
		}
	}
	return nil
}
