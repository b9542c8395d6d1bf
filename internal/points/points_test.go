package points

import (
	"testing"

	"github.com/pointgrad-ml/pointgrad/internal/autodiff"
	"github.com/pointgrad-ml/pointgrad/internal/backend/cpu"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Backend = *cpu.CPUBackend

func coords(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor[float32, Backend] {
	t.Helper()
	out, err := tensor.FromSlice[float32](data, shape, cpu.New())
	require.NoError(t, err)
	return out
}

func TestFurthestPointSample(t *testing.T) {
	xyz := coords(t, []float32{
		0, 0, 0,
		0.1, 0, 0,
		0.2, 0, 0,
		10, 10, 10,
	}, tensor.Shape{1, 4, 3})

	idx, err := FurthestPointSample(xyz, 2)
	require.NoError(t, err)

	require.True(t, idx.Shape().Equal(tensor.Shape{1, 2}))
	assert.Equal(t, int32(0), idx.Data()[0], "first selection is always index 0")
	assert.Equal(t, int32(3), idx.Data()[1], "second selection is the farthest point")
}

func TestFurthestPointSample_Errors(t *testing.T) {
	xyz := coords(t, make([]float32, 12), tensor.Shape{1, 4, 3})

	_, err := FurthestPointSample(xyz, 0)
	var valErr *tensor.ValueError
	require.ErrorAs(t, err, &valErr)

	_, err = FurthestPointSample(xyz, 5)
	require.ErrorAs(t, err, &valErr)

	bad := coords(t, make([]float32, 8), tensor.Shape{1, 4, 2})
	_, err = FurthestPointSample(bad, 2)
	var shapeErr *tensor.ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

func TestBallQuery(t *testing.T) {
	xyz := coords(t, []float32{
		0, 0, 0,
		0.2, 0, 0,
		5, 5, 5,
	}, tensor.Shape{1, 3, 3})
	centers := coords(t, []float32{0, 0, 0}, tensor.Shape{1, 1, 3})

	idx, err := BallQuery(centers, xyz, 1.0, 3)
	require.NoError(t, err)

	require.True(t, idx.Shape().Equal(tensor.Shape{1, 1, 3}))
	// Two hits, row padded with the first hit.
	assert.Equal(t, []int32{0, 1, 0}, idx.Data())
}

func TestBallQuery_Errors(t *testing.T) {
	xyz := coords(t, make([]float32, 9), tensor.Shape{1, 3, 3})
	centers := coords(t, make([]float32, 3), tensor.Shape{1, 1, 3})

	var valErr *tensor.ValueError

	_, err := BallQuery(centers, xyz, -1, 3)
	require.ErrorAs(t, err, &valErr)

	_, err = BallQuery(centers, xyz, 1, 0)
	require.ErrorAs(t, err, &valErr)

	other := coords(t, make([]float32, 18), tensor.Shape{2, 3, 3})
	_, err = BallQuery(centers, other, 1, 3)
	require.ErrorAs(t, err, &valErr)
}

func TestGatherPoints(t *testing.T) {
	backend := cpu.New()
	features, err := tensor.FromSlice([]float32{
		1, 2, 3, 4, // channel 0
		5, 6, 7, 8, // channel 1
	}, tensor.Shape{1, 2, 4}, backend)
	require.NoError(t, err)
	index, err := tensor.FromSlice([]int32{3, 0}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)

	out, err := GatherPoints(features, index)
	require.NoError(t, err)

	require.True(t, out.Shape().Equal(tensor.Shape{1, 2, 2}))
	assert.Equal(t, []float32{4, 1, 8, 5}, out.Data())
}

func TestGatherPoints_Errors(t *testing.T) {
	backend := cpu.New()
	features, _ := tensor.FromSlice(make([]float32, 8), tensor.Shape{1, 2, 4}, backend)

	badRank, _ := tensor.FromSlice([]int32{0}, tensor.Shape{1, 1, 1}, backend)
	_, err := GatherPoints(features, badRank)
	var shapeErr *tensor.ShapeError
	require.ErrorAs(t, err, &shapeErr)

	badBatch, _ := tensor.FromSlice([]int32{0, 0}, tensor.Shape{2, 1}, backend)
	_, err = GatherPoints(features, badBatch)
	var valErr *tensor.ValueError
	require.ErrorAs(t, err, &valErr)
}

func TestGroupPoints(t *testing.T) {
	backend := cpu.New()
	features, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{1, 1, 3}, backend)
	require.NoError(t, err)
	index, err := tensor.FromSlice([]int32{0, 2, 2, 1}, tensor.Shape{1, 2, 2}, backend)
	require.NoError(t, err)

	out, err := GroupPoints(features, index)
	require.NoError(t, err)

	require.True(t, out.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.Equal(t, []float32{10, 30, 30, 20}, out.Data())
}

func TestThreeNN(t *testing.T) {
	unknown := coords(t, []float32{0, 0, 0}, tensor.Shape{1, 1, 3})
	known := coords(t, []float32{
		3, 0, 0,
		1, 0, 0,
		2, 0, 0,
		9, 9, 9,
	}, tensor.Shape{1, 4, 3})

	dist, idx, err := ThreeNN(unknown, known)
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2, 0}, idx.Data(), "neighbors ordered nearest first")
	assert.InDelta(t, 1.0, dist.Data()[0], 1e-6)
	assert.InDelta(t, 2.0, dist.Data()[1], 1e-6)
	assert.InDelta(t, 3.0, dist.Data()[2], 1e-6)
}

func TestThreeNN_TooFewKnown(t *testing.T) {
	unknown := coords(t, make([]float32, 3), tensor.Shape{1, 1, 3})
	known := coords(t, make([]float32, 6), tensor.Shape{1, 2, 3})

	_, _, err := ThreeNN(unknown, known)
	var valErr *tensor.ValueError
	require.ErrorAs(t, err, &valErr)
}

func TestInterpolationWeights(t *testing.T) {
	dist := coords(t, []float32{1, 2, 4}, tensor.Shape{1, 1, 3})

	weight, err := InterpolationWeights(dist)
	require.NoError(t, err)

	w := weight.Data()
	assert.InDelta(t, 1.0, w[0]+w[1]+w[2], 1e-6, "weights sum to 1")
	assert.Greater(t, w[0], w[1], "nearer neighbor weighs more")
	assert.Greater(t, w[1], w[2])
}

func TestThreeInterpolate_Pipeline(t *testing.T) {
	// Interpolating exactly at a known point reproduces its feature.
	unknown := coords(t, []float32{1, 0, 0}, tensor.Shape{1, 1, 3})
	known := coords(t, []float32{
		1, 0, 0,
		5, 0, 0,
		9, 0, 0,
	}, tensor.Shape{1, 3, 3})

	dist, idx, err := ThreeNN(unknown, known)
	require.NoError(t, err)

	weight, err := InterpolationWeights(dist)
	require.NoError(t, err)

	features, err := tensor.FromSlice([]float32{7, 8, 9}, tensor.Shape{1, 1, 3}, cpu.New())
	require.NoError(t, err)

	out, err := ThreeInterpolate(features, idx, weight)
	require.NoError(t, err)

	require.True(t, out.Shape().Equal(tensor.Shape{1, 1, 1}))
	assert.InDelta(t, 7.0, out.Data()[0], 1e-3)
}

func TestQueryAndGroup(t *testing.T) {
	xyz := coords(t, []float32{
		0, 0, 0,
		0.5, 0, 0,
		9, 9, 9,
	}, tensor.Shape{1, 3, 3})
	centers := coords(t, []float32{0, 0, 0}, tensor.Shape{1, 1, 3})
	features, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{1, 1, 3}, cpu.New())
	require.NoError(t, err)

	qg := NewQueryAndGroup[Backend](1.0, 2, true)
	out, err := qg.Forward(xyz, centers, features)
	require.NoError(t, err)

	// 3 coordinate channels + 1 feature channel.
	require.True(t, out.Shape().Equal(tensor.Shape{1, 4, 1, 2}))

	data := out.Data()
	// Re-centered x coordinates of the two neighbors.
	assert.InDelta(t, 0.0, data[0], 1e-6)
	assert.InDelta(t, 0.5, data[1], 1e-6)
	// Grouped features fill the last channel.
	assert.Equal(t, float32(10), data[6])
	assert.Equal(t, float32(20), data[7])
}

func TestQueryAndGroup_CoordinatesOnly(t *testing.T) {
	xyz := coords(t, []float32{
		0, 0, 0,
		0.5, 0, 0,
	}, tensor.Shape{1, 2, 3})
	centers := coords(t, []float32{0, 0, 0}, tensor.Shape{1, 1, 3})

	qg := NewQueryAndGroup[Backend](1.0, 2, true)
	out, err := qg.Forward(xyz, centers, nil)
	require.NoError(t, err)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 3, 1, 2}))
}

func TestQueryAndGroup_NoOutput(t *testing.T) {
	xyz := coords(t, make([]float32, 6), tensor.Shape{1, 2, 3})
	centers := coords(t, make([]float32, 3), tensor.Shape{1, 1, 3})

	qg := NewQueryAndGroup[Backend](1.0, 2, false)
	_, err := qg.Forward(xyz, centers, nil)
	var valErr *tensor.ValueError
	require.ErrorAs(t, err, &valErr)
}

func TestGroupAll(t *testing.T) {
	xyz := coords(t, []float32{
		1, 2, 3,
		4, 5, 6,
	}, tensor.Shape{1, 2, 3})
	features, err := tensor.FromSlice([]float32{10, 20}, tensor.Shape{1, 1, 2}, cpu.New())
	require.NoError(t, err)

	ga := NewGroupAll[Backend](true)
	out, err := ga.Forward(xyz, features)
	require.NoError(t, err)

	require.True(t, out.Shape().Equal(tensor.Shape{1, 4, 1, 2}))
	data := out.Data()
	// Channel-major coordinates, then features.
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6, 10, 20}, data)
}

func TestQueryAndGroup_GradientFlow(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	xyz, err := tensor.FromSlice([]float32{
		0, 0, 0,
		0.5, 0, 0,
	}, tensor.Shape{1, 2, 3}, backend)
	require.NoError(t, err)
	centers, err := tensor.FromSlice([]float32{0, 0, 0}, tensor.Shape{1, 1, 3}, backend)
	require.NoError(t, err)
	features, err := tensor.FromSlice([]float32{10, 20}, tensor.Shape{1, 1, 2}, backend)
	require.NoError(t, err)

	qg := NewQueryAndGroup[*autodiff.AutodiffBackend[*cpu.CPUBackend]](1.0, 2, true)
	out, err := qg.Forward(xyz, centers, features)
	require.NoError(t, err)

	grads := autodiff.Backward(out, backend)

	featGrad := grads[features.Raw()]
	require.NotNil(t, featGrad, "gradient reaches the features")
	assert.Equal(t, []float32{1, 1}, featGrad.AsFloat32())

	xyzGrad := grads[xyz.Raw()]
	require.NotNil(t, xyzGrad, "gradient reaches the coordinates")
	require.True(t, xyzGrad.Shape().Equal(xyz.Shape()))
}
