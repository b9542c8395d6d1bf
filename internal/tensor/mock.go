package tensor

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a minimal backend for testing the tensor storage layer.
// Only element-wise addition is implemented; the point kernels panic, as
// tensor tests never dispatch them.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Add performs naive element-wise addition.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	result, err := NewRaw(a.Shape(), a.DType(), CPU)
	if err != nil {
		panic(err)
	}
	switch a.DType() {
	case Float32:
		dst, x, y := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			dst[i] = x[i] + y[i]
		}
	case Float64:
		dst, x, y := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			dst[i] = x[i] + y[i]
		}
	case Int32:
		dst, x, y := result.AsInt32(), a.AsInt32(), b.AsInt32()
		for i := range dst {
			dst[i] = x[i] + y[i]
		}
	}
	return result
}

func (m *MockBackend) FurthestPointSample(*RawTensor, int) *RawTensor {
	panic("mock: FurthestPointSample not implemented")
}

func (m *MockBackend) BallQuery(*RawTensor, *RawTensor, float32, int) *RawTensor {
	panic("mock: BallQuery not implemented")
}

func (m *MockBackend) GatherPoints(*RawTensor, *RawTensor) *RawTensor {
	panic("mock: GatherPoints not implemented")
}

func (m *MockBackend) GatherPointsGrad(*RawTensor, *RawTensor, int) *RawTensor {
	panic("mock: GatherPointsGrad not implemented")
}

func (m *MockBackend) GroupPoints(*RawTensor, *RawTensor) *RawTensor {
	panic("mock: GroupPoints not implemented")
}

func (m *MockBackend) GroupPointsGrad(*RawTensor, *RawTensor, int) *RawTensor {
	panic("mock: GroupPointsGrad not implemented")
}

func (m *MockBackend) ThreeNN(*RawTensor, *RawTensor) (*RawTensor, *RawTensor) {
	panic("mock: ThreeNN not implemented")
}

func (m *MockBackend) ThreeInterpolate(*RawTensor, *RawTensor, *RawTensor) *RawTensor {
	panic("mock: ThreeInterpolate not implemented")
}

func (m *MockBackend) ThreeInterpolateGrad(*RawTensor, *RawTensor, *RawTensor, int) *RawTensor {
	panic("mock: ThreeInterpolateGrad not implemented")
}

func (m *MockBackend) Cat([]*RawTensor, int) *RawTensor {
	panic("mock: Cat not implemented")
}

func (m *MockBackend) Transpose(*RawTensor, int, int) *RawTensor {
	panic("mock: Transpose not implemented")
}

func (m *MockBackend) SubtractGroupCenters(*RawTensor, *RawTensor) *RawTensor {
	panic("mock: SubtractGroupCenters not implemented")
}
