package autodiff_test

import (
	"math"
	"testing"

	"github.com/pointgrad-ml/pointgrad/internal/autodiff"
	"github.com/pointgrad-ml/pointgrad/internal/backend/cpu"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// TestAutodiffBackend_Name tests the Name method.
func TestAutodiffBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	expected := "Autodiff(CPU)"
	if backend.Name() != expected {
		t.Errorf("Name() = %s, want %s", backend.Name(), expected)
	}
}

// TestAutodiffBackend_Device tests the Device method.
func TestAutodiffBackend_Device(t *testing.T) {
	backend := autodiff.New(cpu.New())
	if backend.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want %v", backend.Device(), tensor.CPU)
	}
}

// TestTape_Recording tests tape recording on/off.
func TestTape_Recording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	if tape.IsRecording() {
		t.Error("Tape should not be recording initially")
	}

	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("Tape should be recording after StartRecording()")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("Tape should not be recording after StopRecording()")
	}
}

// TestTape_Clear tests tape clearing.
func TestTape_Clear(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	tape.StartRecording()

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	b, _ := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2}, backend)
	backend.Add(a.Raw(), b.Raw())

	if tape.NumOps() == 0 {
		t.Error("Tape should have recorded operations")
	}

	tape.Clear()

	if tape.NumOps() != 0 {
		t.Errorf("Tape should be empty after Clear(), got %d ops", tape.NumOps())
	}

	// Clear() preserves recording state so the tape can be reused between
	// iterations without restarting.
	if !tape.IsRecording() {
		t.Error("Tape should still be recording after Clear()")
	}
}

// TestAutodiffBackend_GatherPoints_Backward tests the scatter-add gradient.
func TestAutodiffBackend_GatherPoints_Backward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// (1, 1, 4) features, gather columns [2, 0, 2]
	features, _ := tensor.FromSlice([]float32{10, 20, 30, 40}, tensor.Shape{1, 1, 4}, backend)
	index, _ := tensor.FromSlice([]int32{2, 0, 2}, tensor.Shape{1, 3}, backend)

	out := backend.GatherPoints(features.Raw(), index.Raw())

	expected := []float32{30, 10, 30}
	for i, v := range expected {
		if out.AsFloat32()[i] != v {
			t.Fatalf("forward[%d] = %f, want %f", i, out.AsFloat32()[i], v)
		}
	}

	// Seed gradient [1, 2, 3]: column 2 gathered twice accumulates 1+3.
	gradOut, _ := tensor.NewRaw(tensor.Shape{1, 1, 3}, tensor.Float32, backend.Device())
	copy(gradOut.AsFloat32(), []float32{1, 2, 3})

	grads := backend.Tape().Backward(gradOut, backend)
	grad, ok := grads[features.Raw()]
	if !ok {
		t.Fatal("no gradient for features")
	}

	wantGrad := []float32{2, 0, 4, 0}
	for i, v := range wantGrad {
		if grad.AsFloat32()[i] != v {
			t.Errorf("grad[%d] = %f, want %f", i, grad.AsFloat32()[i], v)
		}
	}
}

// TestAutodiffBackend_GroupPoints_Backward tests the grouped scatter-add gradient.
func TestAutodiffBackend_GroupPoints_Backward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// (1, 1, 3) features, two groups of two samples each
	features, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 1, 3}, backend)
	index, _ := tensor.FromSlice([]int32{0, 1, 1, 2}, tensor.Shape{1, 2, 2}, backend)

	out := backend.GroupPoints(features.Raw(), index.Raw())
	wantOut := []float32{1, 2, 2, 3}
	for i, v := range wantOut {
		if out.AsFloat32()[i] != v {
			t.Fatalf("forward[%d] = %f, want %f", i, out.AsFloat32()[i], v)
		}
	}

	gradOut, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, backend.Device())
	copy(gradOut.AsFloat32(), []float32{1, 1, 1, 1})

	grads := backend.Tape().Backward(gradOut, backend)
	grad := grads[features.Raw()]
	if grad == nil {
		t.Fatal("no gradient for features")
	}

	// Point 1 appears in both groups.
	wantGrad := []float32{1, 2, 1}
	for i, v := range wantGrad {
		if grad.AsFloat32()[i] != v {
			t.Errorf("grad[%d] = %f, want %f", i, grad.AsFloat32()[i], v)
		}
	}
}

// TestAutodiffBackend_ThreeInterpolate_Backward tests the weighted scatter gradient.
func TestAutodiffBackend_ThreeInterpolate_Backward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// (1, 1, 3) source features interpolated at 1 position
	features, _ := tensor.FromSlice([]float32{2, 4, 8}, tensor.Shape{1, 1, 3}, backend)
	index, _ := tensor.FromSlice([]int32{0, 1, 2}, tensor.Shape{1, 1, 3}, backend)
	weight, _ := tensor.FromSlice([]float32{0.5, 0.3, 0.2}, tensor.Shape{1, 1, 3}, backend)

	out := backend.ThreeInterpolate(features.Raw(), index.Raw(), weight.Raw())
	want := float32(0.5*2 + 0.3*4 + 0.2*8)
	if math.Abs(float64(out.AsFloat32()[0]-want)) > 1e-6 {
		t.Fatalf("forward = %f, want %f", out.AsFloat32()[0], want)
	}

	gradOut, _ := tensor.NewRaw(tensor.Shape{1, 1, 1}, tensor.Float32, backend.Device())
	gradOut.AsFloat32()[0] = 2

	grads := backend.Tape().Backward(gradOut, backend)
	grad := grads[features.Raw()]
	if grad == nil {
		t.Fatal("no gradient for features")
	}

	wantGrad := []float32{1.0, 0.6, 0.4}
	for i, v := range wantGrad {
		if math.Abs(float64(grad.AsFloat32()[i]-v)) > 1e-6 {
			t.Errorf("grad[%d] = %f, want %f", i, grad.AsFloat32()[i], v)
		}
	}
}

// TestAutodiffBackend_FurthestPointSample_ZeroGrad tests that sampling
// produces a zero gradient for the coordinates.
func TestAutodiffBackend_FurthestPointSample_ZeroGrad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	xyz, _ := tensor.FromSlice([]float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		5, 5, 5,
	}, tensor.Shape{1, 4, 3}, backend)

	idx := backend.FurthestPointSample(xyz.Raw(), 2)

	gradOut, _ := tensor.NewRaw(idx.Shape(), tensor.Float32, backend.Device())
	grads := backend.Tape().Backward(gradOut, backend)

	grad := grads[xyz.Raw()]
	if grad == nil {
		t.Fatal("no gradient for coordinates")
	}
	if !grad.Shape().Equal(xyz.Shape()) {
		t.Fatalf("grad shape = %v, want %v", grad.Shape(), xyz.Shape())
	}
	for i, v := range grad.AsFloat32() {
		if v != 0 {
			t.Errorf("grad[%d] = %f, want 0", i, v)
		}
	}
}

// TestAutodiffBackend_BallQuery_ZeroGrad tests that the neighborhood query
// produces zero gradients for both coordinate inputs.
func TestAutodiffBackend_BallQuery_ZeroGrad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	points, _ := tensor.FromSlice([]float32{
		0, 0, 0,
		0.1, 0, 0,
		3, 3, 3,
	}, tensor.Shape{1, 3, 3}, backend)
	centers, _ := tensor.FromSlice([]float32{0, 0, 0}, tensor.Shape{1, 1, 3}, backend)

	idx := backend.BallQuery(centers.Raw(), points.Raw(), 0.5, 2)

	gradOut, _ := tensor.NewRaw(idx.Shape(), tensor.Float32, backend.Device())
	grads := backend.Tape().Backward(gradOut, backend)

	for _, in := range []*tensor.RawTensor{centers.Raw(), points.Raw()} {
		grad := grads[in]
		if grad == nil {
			t.Fatal("missing zero gradient")
		}
		for i, v := range grad.AsFloat32() {
			if v != 0 {
				t.Errorf("grad[%d] = %f, want 0", i, v)
			}
		}
	}
}

// TestAutodiffBackend_Cat_Backward tests that concatenation splits the
// gradient back into per-input slabs.
func TestAutodiffBackend_Cat_Backward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// Concatenate (1, 2, 2) and (1, 1, 2) along the channel dim.
	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 2, 2}, backend)
	b, _ := tensor.FromSlice([]float32{5, 6}, tensor.Shape{1, 1, 2}, backend)

	out := backend.Cat([]*tensor.RawTensor{a.Raw(), b.Raw()}, 1)
	if !out.Shape().Equal(tensor.Shape{1, 3, 2}) {
		t.Fatalf("cat shape = %v", out.Shape())
	}

	gradOut, _ := tensor.NewRaw(tensor.Shape{1, 3, 2}, tensor.Float32, backend.Device())
	copy(gradOut.AsFloat32(), []float32{10, 11, 12, 13, 14, 15})

	grads := backend.Tape().Backward(gradOut, backend)

	gradA := grads[a.Raw()]
	gradB := grads[b.Raw()]
	if gradA == nil || gradB == nil {
		t.Fatal("missing gradients for cat inputs")
	}

	wantA := []float32{10, 11, 12, 13}
	for i, v := range wantA {
		if gradA.AsFloat32()[i] != v {
			t.Errorf("gradA[%d] = %f, want %f", i, gradA.AsFloat32()[i], v)
		}
	}
	wantB := []float32{14, 15}
	for i, v := range wantB {
		if gradB.AsFloat32()[i] != v {
			t.Errorf("gradB[%d] = %f, want %f", i, gradB.AsFloat32()[i], v)
		}
	}
}

// TestAutodiffBackend_Transpose_Backward tests that the gradient is
// transposed back to the input layout.
func TestAutodiffBackend_Transpose_Backward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// (1, 2, 3) -> (1, 3, 2)
	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 2, 3}, backend)
	out := backend.Transpose(x.Raw(), 1, 2)
	if !out.Shape().Equal(tensor.Shape{1, 3, 2}) {
		t.Fatalf("transpose shape = %v", out.Shape())
	}

	gradOut, _ := tensor.NewRaw(tensor.Shape{1, 3, 2}, tensor.Float32, backend.Device())
	copy(gradOut.AsFloat32(), []float32{1, 4, 2, 5, 3, 6})

	grads := backend.Tape().Backward(gradOut, backend)
	grad := grads[x.Raw()]
	if grad == nil {
		t.Fatal("no gradient for input")
	}

	want := []float32{1, 2, 3, 4, 5, 6}
	for i, v := range want {
		if grad.AsFloat32()[i] != v {
			t.Errorf("grad[%d] = %f, want %f", i, grad.AsFloat32()[i], v)
		}
	}
}

// TestAutodiffBackend_Recenter_Backward tests the pass-through and
// negated-sum gradients of group re-centering.
func TestAutodiffBackend_Recenter_Backward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// One batch, 3 coords, 1 group, 2 samples.
	grouped, _ := tensor.FromSlice([]float32{
		1, 2, // x
		3, 4, // y
		5, 6, // z
	}, tensor.Shape{1, 3, 1, 2}, backend)
	centers, _ := tensor.FromSlice([]float32{1, 3, 5}, tensor.Shape{1, 1, 3}, backend)

	out := backend.SubtractGroupCenters(grouped.Raw(), centers.Raw())
	wantOut := []float32{0, 1, 0, 1, 0, 1}
	for i, v := range wantOut {
		if out.AsFloat32()[i] != v {
			t.Fatalf("forward[%d] = %f, want %f", i, out.AsFloat32()[i], v)
		}
	}

	gradOut, _ := tensor.NewRaw(tensor.Shape{1, 3, 1, 2}, tensor.Float32, backend.Device())
	copy(gradOut.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})

	grads := backend.Tape().Backward(gradOut, backend)

	gradGrouped := grads[grouped.Raw()]
	if gradGrouped == nil {
		t.Fatal("no gradient for grouped coordinates")
	}
	for i, v := range []float32{1, 2, 3, 4, 5, 6} {
		if gradGrouped.AsFloat32()[i] != v {
			t.Errorf("gradGrouped[%d] = %f, want %f", i, gradGrouped.AsFloat32()[i], v)
		}
	}

	gradCenters := grads[centers.Raw()]
	if gradCenters == nil {
		t.Fatal("no gradient for centers")
	}
	wantCenters := []float32{-3, -7, -11}
	for i, v := range wantCenters {
		if gradCenters.AsFloat32()[i] != v {
			t.Errorf("gradCenters[%d] = %f, want %f", i, gradCenters.AsFloat32()[i], v)
		}
	}
}

// TestTape_AccumulatesReusedInput tests gradient accumulation when the
// same tensor feeds two recorded operations.
func TestTape_AccumulatesReusedInput(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	features, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 1, 2}, backend)
	index, _ := tensor.FromSlice([]int32{0, 1}, tensor.Shape{1, 2}, backend)

	// Gather twice and add, so features contributes through both branches.
	g1 := backend.GatherPoints(features.Raw(), index.Raw())
	g2 := backend.GatherPoints(features.Raw(), index.Raw())
	sum := backend.Add(g1, g2)

	gradOut, _ := tensor.NewRaw(sum.Shape(), tensor.Float32, backend.Device())
	for i := range gradOut.AsFloat32() {
		gradOut.AsFloat32()[i] = 1
	}

	grads := backend.Tape().Backward(gradOut, backend)
	grad := grads[features.Raw()]
	if grad == nil {
		t.Fatal("no gradient for features")
	}

	for i, v := range []float32{2, 2} {
		if grad.AsFloat32()[i] != v {
			t.Errorf("grad[%d] = %f, want %f", i, grad.AsFloat32()[i], v)
		}
	}
}

// TestBackward_Helper tests the ones-seeded Backward helper.
func TestBackward_Helper(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	features, _ := tensor.FromSlice([]float32{5, 6, 7}, tensor.Shape{1, 1, 3}, backend)
	index, _ := tensor.FromSlice([]int32{1, 1}, tensor.Shape{1, 2}, backend)

	raw := backend.GatherPoints(features.Raw(), index.Raw())
	out := tensor.New[float32](raw, backend)

	grads := autodiff.Backward(out, backend)
	grad := grads[features.Raw()]
	if grad == nil {
		t.Fatal("no gradient for features")
	}

	// Index 1 gathered twice with ones seed.
	for i, v := range []float32{0, 2, 0} {
		if grad.AsFloat32()[i] != v {
			t.Errorf("grad[%d] = %f, want %f", i, grad.AsFloat32()[i], v)
		}
	}
}
