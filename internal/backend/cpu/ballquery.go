package cpu

import (
	"fmt"

	"github.com/pointgrad-ml/pointgrad/internal/parallel"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// BallQuery returns, for each query center, up to maxSamples indices of points
// within radius. centers is (B, M, 3), points is (B, N, 3); the result is int32
// (B, M, maxSamples).
//
// Output rows start zero-initialized. The first qualifying neighbor fills the
// entire row before counting begins, so rows with fewer than maxSamples hits
// are padded by repeating the first hit; rows with no hits stay zero.
func (cpu *CPUBackend) BallQuery(centers, points *tensor.RawTensor, radius float32, maxSamples int) *tensor.RawTensor {
	cs := centers.Shape()
	ps := points.Shape()
	b, m := cs[0], cs[1]
	n := ps[1]

	out, err := tensor.NewRaw(tensor.Shape{b, m, maxSamples}, tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("ball_query: %v", err))
	}

	ctr := centers.AsFloat32()
	xyz := points.AsFloat32()
	idx := out.AsInt32()
	r2 := radius * radius

	parallel.Lanes(b, func(bi int) {
		laneCtr := ctr[bi*m*3 : (bi+1)*m*3]
		laneXYZ := xyz[bi*n*3 : (bi+1)*n*3]
		laneIdx := idx[bi*m*maxSamples : (bi+1)*m*maxSamples]

		for mi := 0; mi < m; mi++ {
			cx := laneCtr[mi*3]
			cy := laneCtr[mi*3+1]
			cz := laneCtr[mi*3+2]
			row := laneIdx[mi*maxSamples : (mi+1)*maxSamples]

			cnt := 0
			for j := 0; j < n && cnt < maxSamples; j++ {
				dx := laneXYZ[j*3] - cx
				dy := laneXYZ[j*3+1] - cy
				dz := laneXYZ[j*3+2] - cz
				if dx*dx+dy*dy+dz*dz > r2 {
					continue
				}
				if cnt == 0 {
					for k := range row {
						row[k] = int32(j)
					}
				}
				row[cnt] = int32(j)
				cnt++
			}
		}
	}, cpu.par)

	return out
}
