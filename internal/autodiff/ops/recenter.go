package ops

import (
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// RecenterOp records the subtraction of group centers from grouped
// coordinates.
//
// Forward: output[b,k,m,s] = grouped[b,k,m,s] - centers[b,m,k]
//
// Backward:
//
//	grouped receives the output gradient unchanged. Each center coordinate
//	is broadcast across its group's samples, so its gradient is the negated
//	sum of the output gradient over the sample dimension.
type RecenterOp struct {
	grouped *tensor.RawTensor // (B, K, M, S)
	centers *tensor.RawTensor // (B, M, K)
	output  *tensor.RawTensor // (B, K, M, S)
}

// NewRecenterOp creates a new re-centering operation.
func NewRecenterOp(grouped, centers, output *tensor.RawTensor) *RecenterOp {
	return &RecenterOp{
		grouped: grouped,
		centers: centers,
		output:  output,
	}
}

// Inputs returns the grouped coordinates and the centers.
func (op *RecenterOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.grouped, op.centers}
}

// Output returns the output tensor.
func (op *RecenterOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward passes the gradient through to the grouped coordinates and
// reduces it over the sample dimension for the centers.
func (op *RecenterOp) Backward(gradOutput *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradGrouped := gradOutput.Clone()

	shape := gradOutput.Shape()
	b, k, m, s := shape[0], shape[1], shape[2], shape[3]

	gradCenters := zeros(op.centers.Shape(), op.centers.DType(), backend)

	gradData := gradOutput.AsFloat32()
	centerData := gradCenters.AsFloat32()
	for bi := 0; bi < b; bi++ {
		for ki := 0; ki < k; ki++ {
			for mi := 0; mi < m; mi++ {
				row := gradData[((bi*k+ki)*m+mi)*s : ((bi*k+ki)*m+mi+1)*s]
				var sum float32
				for _, g := range row {
					sum += g
				}
				centerData[(bi*m+mi)*k+ki] = -sum
			}
		}
	}

	return []*tensor.RawTensor{gradGrouped, gradCenters}
}
