package cpu

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/parallel"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// GatherPoints gathers feature columns by index:
// features (B, C, N), index (B, M) -> output (B, C, M) with
// output[b,c,m] = features[b,c,index[b,m]].
func (cpu *CPUBackend) GatherPoints(features, index *tensor.RawTensor) *tensor.RawTensor {
	fs := features.Shape()
	b, c, n := fs[0], fs[1], fs[2]
	m := index.Shape()[1]

	out, err := tensor.NewRaw(tensor.Shape{b, c, m}, features.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("gather_points: %v", err))
	}

	src := features.AsFloat32()
	idx := index.AsInt32()
	dst := out.AsFloat32()

	parallel.ForBatch(b, c, func(bi, ci int) {
		row := src[(bi*c+ci)*n : (bi*c+ci+1)*n]
		outRow := dst[(bi*c+ci)*m : (bi*c+ci+1)*m]
		laneIdx := idx[bi*m : (bi+1)*m]
		for mi, j := range laneIdx {
			if int(j) < 0 || int(j) >= n {
				panic(fmt.Sprintf("gather_points: index %d out of bounds [0, %d)", j, n))
			}
			outRow[mi] = row[j]
		}
	}, cpu.par)

	return out
}

// GatherPointsGrad scatter-adds gradOut (B, C, M) back into a zero-initialized
// (B, C, n) tensor. Indices repeated within a batch element accumulate.
func (cpu *CPUBackend) GatherPointsGrad(gradOut, index *tensor.RawTensor, n int) *tensor.RawTensor {
	gs := gradOut.Shape()
	b, c, m := gs[0], gs[1], gs[2]

	grad, err := tensor.NewRaw(tensor.Shape{b, c, n}, gradOut.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("gather_points_grad: %v", err))
	}

	src := gradOut.AsFloat32()
	idx := index.AsInt32()
	dst := grad.AsFloat32()

	// Parallel over (b, c): every lane writes a disjoint (n,) row.
	parallel.ForBatch(b, c, func(bi, ci int) {
		gradRow := dst[(bi*c+ci)*n : (bi*c+ci+1)*n]
		srcRow := src[(bi*c+ci)*m : (bi*c+ci+1)*m]
		laneIdx := idx[bi*m : (bi+1)*m]
		for mi, j := range laneIdx {
			gradRow[j] += srcRow[mi]
		}
	}, cpu.par)

	return grad
}
