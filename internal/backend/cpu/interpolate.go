package cpu

import (
	"fmt"
	"math"

	"github.com/pointgrad-ml/pointgrad/internal/parallel"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// ThreeNN finds the three nearest neighbors of each point in unknown (B, n, 3)
// among known (B, m, 3). Returns Euclidean distances and int32 indices, both
// shaped (B, n, 3) and sorted by ascending distance. Requires m >= 3.
func (cpu *CPUBackend) ThreeNN(unknown, known *tensor.RawTensor) (*tensor.RawTensor, *tensor.RawTensor) {
	us := unknown.Shape()
	b, n := us[0], us[1]
	m := known.Shape()[1]

	dist, err := tensor.NewRaw(tensor.Shape{b, n, 3}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("three_nn: %v", err))
	}
	idx, err := tensor.NewRaw(tensor.Shape{b, n, 3}, tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("three_nn: %v", err))
	}

	uxyz := unknown.AsFloat32()
	kxyz := known.AsFloat32()
	dout := dist.AsFloat32()
	iout := idx.AsInt32()

	parallel.Lanes(b, func(bi int) {
		laneU := uxyz[bi*n*3 : (bi+1)*n*3]
		laneK := kxyz[bi*m*3 : (bi+1)*m*3]
		laneD := dout[bi*n*3 : (bi+1)*n*3]
		laneI := iout[bi*n*3 : (bi+1)*n*3]

		for i := 0; i < n; i++ {
			ux := laneU[i*3]
			uy := laneU[i*3+1]
			uz := laneU[i*3+2]

			// Insertion-ordered three best squared distances.
			best1, best2, best3 := initialDistance, initialDistance, initialDistance
			idx1, idx2, idx3 := int32(0), int32(0), int32(0)
			for j := 0; j < m; j++ {
				dx := laneK[j*3] - ux
				dy := laneK[j*3+1] - uy
				dz := laneK[j*3+2] - uz
				d := dx*dx + dy*dy + dz*dz
				switch {
				case d < best1:
					best3, idx3 = best2, idx2
					best2, idx2 = best1, idx1
					best1, idx1 = d, int32(j)
				case d < best2:
					best3, idx3 = best2, idx2
					best2, idx2 = d, int32(j)
				case d < best3:
					best3, idx3 = d, int32(j)
				}
			}

			laneD[i*3] = float32(math.Sqrt(float64(best1)))
			laneD[i*3+1] = float32(math.Sqrt(float64(best2)))
			laneD[i*3+2] = float32(math.Sqrt(float64(best3)))
			laneI[i*3] = idx1
			laneI[i*3+1] = idx2
			laneI[i*3+2] = idx3
		}
	}, cpu.par)

	return dist, idx
}

// ThreeInterpolate computes weighted sums over three source features:
// features (B, C, M), index (B, n, 3), weight (B, n, 3) -> output (B, C, n) with
// output[b,c,i] = sum_k weight[b,i,k] * features[b,c,index[b,i,k]].
func (cpu *CPUBackend) ThreeInterpolate(features, index, weight *tensor.RawTensor) *tensor.RawTensor {
	fs := features.Shape()
	b, c, m := fs[0], fs[1], fs[2]
	n := index.Shape()[1]

	out, err := tensor.NewRaw(tensor.Shape{b, c, n}, features.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("three_interpolate: %v", err))
	}

	src := features.AsFloat32()
	idx := index.AsInt32()
	w := weight.AsFloat32()
	dst := out.AsFloat32()

	parallel.ForBatch(b, c, func(bi, ci int) {
		row := src[(bi*c+ci)*m : (bi*c+ci+1)*m]
		outRow := dst[(bi*c+ci)*n : (bi*c+ci+1)*n]
		laneIdx := idx[bi*n*3 : (bi+1)*n*3]
		laneW := w[bi*n*3 : (bi+1)*n*3]
		for i := 0; i < n; i++ {
			outRow[i] = laneW[i*3]*row[laneIdx[i*3]] +
				laneW[i*3+1]*row[laneIdx[i*3+1]] +
				laneW[i*3+2]*row[laneIdx[i*3+2]]
		}
	}, cpu.par)

	return out
}

// ThreeInterpolateGrad scatters gradOut (B, C, n), scaled by weight, back into
// a zero-initialized (B, C, m) tensor.
func (cpu *CPUBackend) ThreeInterpolateGrad(gradOut, index, weight *tensor.RawTensor, m int) *tensor.RawTensor {
	gs := gradOut.Shape()
	b, c, n := gs[0], gs[1], gs[2]

	grad, err := tensor.NewRaw(tensor.Shape{b, c, m}, gradOut.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("three_interpolate_grad: %v", err))
	}

	src := gradOut.AsFloat32()
	idx := index.AsInt32()
	w := weight.AsFloat32()
	dst := grad.AsFloat32()

	parallel.ForBatch(b, c, func(bi, ci int) {
		gradRow := dst[(bi*c+ci)*m : (bi*c+ci+1)*m]
		srcRow := src[(bi*c+ci)*n : (bi*c+ci+1)*n]
		laneIdx := idx[bi*n*3 : (bi+1)*n*3]
		laneW := w[bi*n*3 : (bi+1)*n*3]
		for i := 0; i < n; i++ {
			g := srcRow[i]
			gradRow[laneIdx[i*3]] += laneW[i*3] * g
			gradRow[laneIdx[i*3+1]] += laneW[i*3+1] * g
			gradRow[laneIdx[i*3+2]] += laneW[i*3+2] * g
		}
	}, cpu.par)

	return grad
}
