package cpu

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/parallel"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// initialDistance seeds the min-distance scratch; any real squared distance
// observed during the first round replaces it.
const initialDistance = float32(1e10)

// FurthestPointSample selects npoint indices per batch element using greedy
// farthest-point sampling over (B, N, 3) coordinates.
//
// Per batch element:
//  1. dist[i] starts at initialDistance for every point.
//  2. Index 0 is always the first selection (fixed seed, data-independent).
//  3. Each round folds the squared distance to the last selection into dist
//     and picks the unselected argmax, ties going to the lowest index.
//
// Batch elements are independent and run on separate goroutine lanes; the
// rounds within one element are strictly sequential. Each lane owns its
// distance scratch and selection mask exclusively.
func (cpu *CPUBackend) FurthestPointSample(points *tensor.RawTensor, npoint int) *tensor.RawTensor {
	shape := points.Shape()
	b, n := shape[0], shape[1]

	out, err := tensor.NewRaw(tensor.Shape{b, npoint}, tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("furthest_point_sample: %v", err))
	}

	xyz := points.AsFloat32()
	idx := out.AsInt32()
	parallel.Lanes(b, func(bi int) {
		sampleLane(xyz[bi*n*3:(bi+1)*n*3], idx[bi*npoint:(bi+1)*npoint], n, npoint)
	}, cpu.par)

	return out
}

// sampleLane runs the full selection sequence for one batch element.
// xyz is the element's flat (N, 3) coordinate block, out its npoint index slots.
func sampleLane(xyz []float32, out []int32, n, npoint int) {
	dist := make([]float32, n)
	for i := range dist {
		dist[i] = initialDistance
	}

	// Already-selected points are excluded from both the distance update and
	// the argmax. This keeps results distinct even when the input contains
	// coincident points whose distances collapse to zero.
	selected := make([]bool, n)

	last := 0
	out[0] = 0
	selected[0] = true

	for round := 1; round < npoint; round++ {
		lx := xyz[last*3]
		ly := xyz[last*3+1]
		lz := xyz[last*3+2]

		best := -1
		bestDist := float32(-1)
		for i := 0; i < n; i++ {
			if selected[i] {
				continue
			}
			dx := xyz[i*3] - lx
			dy := xyz[i*3+1] - ly
			dz := xyz[i*3+2] - lz
			d := dx*dx + dy*dy + dz*dz
			if d < dist[i] {
				dist[i] = d
			}
			// Strict comparison keeps the lowest index on ties.
			if dist[i] > bestDist {
				bestDist = dist[i]
				best = i
			}
		}

		out[round] = int32(best)
		selected[best] = true
		last = best
	}
}
