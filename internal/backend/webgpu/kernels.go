//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// packU32 encodes uniform parameters as little-endian u32 words.
func packU32(vals ...uint32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// newResult wraps raw kernel output bytes in a RawTensor.
func newResult(data []byte, shape tensor.Shape, dtype tensor.DataType) (*tensor.RawTensor, error) {
	result, err := tensor.NewRaw(shape, dtype, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}

func (b *Backend) runFurthestPointSample(points *tensor.RawTensor, npoint int) (*tensor.RawTensor, error) {
	if points.DType() != tensor.Float32 {
		return nil, fmt.Errorf("only float32 is supported, got %s", points.DType())
	}
	shape := points.Shape()
	batch, n := shape[0], shape[1]

	// The distance scratch is a read_write binding the shader initializes
	// itself; only its size matters here.
	distScratch := make([]byte, batch*n*4)

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(n), uint32(npoint))
	outSize := uint64(batch * npoint * 4)

	results, err := b.dispatch("fps", fpsShader,
		[][]byte{points.Data(), distScratch},
		[]uint64{outSize},
		params,
		uint32(batch)) // one workgroup per batch lane
	if err != nil {
		return nil, err
	}

	return newResult(results[0], tensor.Shape{batch, npoint}, tensor.Int32)
}

func (b *Backend) runBallQuery(centers, points *tensor.RawTensor, radius float32, maxSamples int) (*tensor.RawTensor, error) {
	if points.DType() != tensor.Float32 {
		return nil, fmt.Errorf("only float32 is supported, got %s", points.DType())
	}
	batch := points.Shape()[0]
	n := points.Shape()[1]
	m := centers.Shape()[1]

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(batch), uint32(n), uint32(m), uint32(maxSamples), math.Float32bits(radius*radius))
	outSize := uint64(batch * m * maxSamples * 4)

	results, err := b.dispatch("ball_query", ballQueryShader,
		[][]byte{centers.Data(), points.Data()},
		[]uint64{outSize},
		params,
		threadWorkgroups(batch*m))
	if err != nil {
		return nil, err
	}

	return newResult(results[0], tensor.Shape{batch, m, maxSamples}, tensor.Int32)
}

func (b *Backend) runGatherPoints(features, index *tensor.RawTensor) (*tensor.RawTensor, error) {
	batch, c, n := features.Shape()[0], features.Shape()[1], features.Shape()[2]
	m := index.Shape()[1]

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(batch), uint32(c), uint32(n), uint32(m))
	outSize := uint64(batch * c * m * 4)

	results, err := b.dispatch("gather", gatherShader,
		[][]byte{features.Data(), index.Data()},
		[]uint64{outSize},
		params,
		threadWorkgroups(batch*c*m))
	if err != nil {
		return nil, err
	}

	return newResult(results[0], tensor.Shape{batch, c, m}, tensor.Float32)
}

func (b *Backend) runGatherPointsGrad(gradOut, index *tensor.RawTensor, n int) (*tensor.RawTensor, error) {
	batch, c, m := gradOut.Shape()[0], gradOut.Shape()[1], gradOut.Shape()[2]

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(batch), uint32(c), uint32(n), uint32(m))
	outSize := uint64(batch * c * n * 4)

	results, err := b.dispatch("gather_grad", gatherGradShader,
		[][]byte{gradOut.Data(), index.Data()},
		[]uint64{outSize},
		params,
		threadWorkgroups(batch*c))
	if err != nil {
		return nil, err
	}

	return newResult(results[0], tensor.Shape{batch, c, n}, tensor.Float32)
}

func (b *Backend) runGroupPoints(features, index *tensor.RawTensor) (*tensor.RawTensor, error) {
	batch, c, n := features.Shape()[0], features.Shape()[1], features.Shape()[2]
	m, s := index.Shape()[1], index.Shape()[2]

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(batch), uint32(c), uint32(n), uint32(m), uint32(s))
	outSize := uint64(batch * c * m * s * 4)

	results, err := b.dispatch("group", groupShader,
		[][]byte{features.Data(), index.Data()},
		[]uint64{outSize},
		params,
		threadWorkgroups(batch*c*m*s))
	if err != nil {
		return nil, err
	}

	return newResult(results[0], tensor.Shape{batch, c, m, s}, tensor.Float32)
}

func (b *Backend) runGroupPointsGrad(gradOut, index *tensor.RawTensor, n int) (*tensor.RawTensor, error) {
	batch, c, m, s := gradOut.Shape()[0], gradOut.Shape()[1], gradOut.Shape()[2], gradOut.Shape()[3]

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(batch), uint32(c), uint32(n), uint32(m), uint32(s))
	outSize := uint64(batch * c * n * 4)

	results, err := b.dispatch("group_grad", groupGradShader,
		[][]byte{gradOut.Data(), index.Data()},
		[]uint64{outSize},
		params,
		threadWorkgroups(batch*c))
	if err != nil {
		return nil, err
	}

	return newResult(results[0], tensor.Shape{batch, c, n}, tensor.Float32)
}

func (b *Backend) runThreeNN(unknown, known *tensor.RawTensor) (*tensor.RawTensor, *tensor.RawTensor, error) {
	batch, n := unknown.Shape()[0], unknown.Shape()[1]
	m := known.Shape()[1]

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(batch), uint32(n), uint32(m))
	outSize := uint64(batch * n * 3 * 4)

	results, err := b.dispatch("three_nn", threeNNShader,
		[][]byte{unknown.Data(), known.Data()},
		[]uint64{outSize, outSize},
		params,
		threadWorkgroups(batch*n))
	if err != nil {
		return nil, nil, err
	}

	dist, err := newResult(results[0], tensor.Shape{batch, n, 3}, tensor.Float32)
	if err != nil {
		return nil, nil, err
	}
	idx, err := newResult(results[1], tensor.Shape{batch, n, 3}, tensor.Int32)
	if err != nil {
		return nil, nil, err
	}
	return dist, idx, nil
}

func (b *Backend) runThreeInterpolate(features, index, weight *tensor.RawTensor) (*tensor.RawTensor, error) {
	batch, c, m := features.Shape()[0], features.Shape()[1], features.Shape()[2]
	n := index.Shape()[1]

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(batch), uint32(c), uint32(m), uint32(n))
	outSize := uint64(batch * c * n * 4)

	results, err := b.dispatch("three_interpolate", threeInterpolateShader,
		[][]byte{features.Data(), index.Data(), weight.Data()},
		[]uint64{outSize},
		params,
		threadWorkgroups(batch*c*n))
	if err != nil {
		return nil, err
	}

	return newResult(results[0], tensor.Shape{batch, c, n}, tensor.Float32)
}

func (b *Backend) runThreeInterpolateGrad(gradOut, index, weight *tensor.RawTensor, m int) (*tensor.RawTensor, error) {
	batch, c, n := gradOut.Shape()[0], gradOut.Shape()[1], gradOut.Shape()[2]

	//nolint:gosec // G115: dimensions are non-negative
	params := packU32(uint32(batch), uint32(c), uint32(m), uint32(n))
	outSize := uint64(batch * c * m * 4)

	results, err := b.dispatch("three_interpolate_grad", threeInterpolateGradShader,
		[][]byte{gradOut.Data(), index.Data(), weight.Data()},
		[]uint64{outSize},
		params,
		threadWorkgroups(batch*c))
	if err != nil {
		return nil, err
	}

	return newResult(results[0], tensor.Shape{batch, c, m}, tensor.Float32)
}

func (b *Backend) runAdd(x, y *tensor.RawTensor) (*tensor.RawTensor, error) {
	if x.DType() != tensor.Float32 {
		return nil, fmt.Errorf("only float32 is supported, got %s", x.DType())
	}
	if !x.Shape().Equal(y.Shape()) {
		return nil, fmt.Errorf("shape mismatch: %v vs %v", x.Shape(), y.Shape())
	}

	numElements := x.NumElements()
	//nolint:gosec // G115: element count is non-negative
	params := packU32(uint32(numElements))

	results, err := b.dispatch("add", addShader,
		[][]byte{x.Data(), y.Data()},
		[]uint64{uint64(x.ByteSize())},
		params,
		threadWorkgroups(numElements))
	if err != nil {
		return nil, err
	}

	return newResult(results[0], x.Shape(), tensor.Float32)
}
