package cpu

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/parallel"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// GroupPoints gathers feature columns by grouped index:
// features (B, C, N), index (B, M, S) -> output (B, C, M, S) with
// output[b,c,m,s] = features[b,c,index[b,m,s]].
func (cpu *CPUBackend) GroupPoints(features, index *tensor.RawTensor) *tensor.RawTensor {
	fs := features.Shape()
	b, c, n := fs[0], fs[1], fs[2]
	is := index.Shape()
	m, s := is[1], is[2]

	out, err := tensor.NewRaw(tensor.Shape{b, c, m, s}, features.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("group_points: %v", err))
	}

	src := features.AsFloat32()
	idx := index.AsInt32()
	dst := out.AsFloat32()

	parallel.ForBatch(b, c, func(bi, ci int) {
		row := src[(bi*c+ci)*n : (bi*c+ci+1)*n]
		outRow := dst[(bi*c+ci)*m*s : (bi*c+ci+1)*m*s]
		laneIdx := idx[bi*m*s : (bi+1)*m*s]
		for k, j := range laneIdx {
			if int(j) < 0 || int(j) >= n {
				panic(fmt.Sprintf("group_points: index %d out of bounds [0, %d)", j, n))
			}
			outRow[k] = row[j]
		}
	}, cpu.par)

	return out
}

// GroupPointsGrad scatter-adds gradOut (B, C, M, S) back into a zero-initialized
// (B, C, n) tensor. Indices repeated within a batch element accumulate.
func (cpu *CPUBackend) GroupPointsGrad(gradOut, index *tensor.RawTensor, n int) *tensor.RawTensor {
	gs := gradOut.Shape()
	b, c, m, s := gs[0], gs[1], gs[2], gs[3]

	grad, err := tensor.NewRaw(tensor.Shape{b, c, n}, gradOut.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("group_points_grad: %v", err))
	}

	src := gradOut.AsFloat32()
	idx := index.AsInt32()
	dst := grad.AsFloat32()

	parallel.ForBatch(b, c, func(bi, ci int) {
		gradRow := dst[(bi*c+ci)*n : (bi*c+ci+1)*n]
		srcRow := src[(bi*c+ci)*m*s : (bi*c+ci+1)*m*s]
		laneIdx := idx[bi*m*s : (bi+1)*m*s]
		for k, j := range laneIdx {
			gradRow[j] += srcRow[k]
		}
	}, cpu.par)

	return grad
}
