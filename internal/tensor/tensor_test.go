package tensor

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{4}, 4},
		{Shape{2, 3}, 6},
		{Shape{32, 1, 28, 28}, 25088},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("NumElements(%v) = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeEqual(t *testing.T) {
	if !(Shape{2, 3}).Equal(Shape{2, 3}) {
		t.Error("expected {2,3} == {2,3}")
	}
	if (Shape{2, 3}).Equal(Shape{3, 2}) {
		t.Error("expected {2,3} != {3,2}")
	}
	if (Shape{2, 3}).Equal(Shape{2, 3, 1}) {
		t.Error("expected {2,3} != {2,3,1}")
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("unexpected error for valid shape: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("expected error for zero dimension")
	}
	if err := (Shape{-1}).Validate(); err == nil {
		t.Error("expected error for negative dimension")
	}
}

func TestNewAndReshape(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	tr := New(Shape{2, 3}, data)

	if tr.NumElements() != 6 {
		t.Fatalf("expected 6 elements, got %d", tr.NumElements())
	}

	r := tr.Reshape(3, 2)
	if !r.Shape().Equal(Shape{3, 2}) {
		t.Errorf("reshape: expected shape [3 2], got %v", r.Shape())
	}

	// Reshape is a view: writes are visible through both tensors.
	r.Data()[0] = 42
	if tr.Data()[0] != 42 {
		t.Error("expected reshape to share data")
	}
}

func TestNewPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched data length")
		}
	}()
	New(Shape{2, 3}, make([]float32, 5))
}

func TestReshapePanicsOnElementMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for element-count-changing reshape")
		}
	}()
	Zeros(Shape{2, 3}).Reshape(4, 2)
}

func TestCloneIsDeep(t *testing.T) {
	orig := Full(Shape{4}, 1.5)
	clone := orig.Clone()
	clone.Data()[0] = 9

	if orig.Data()[0] != 1.5 {
		t.Error("clone should not share data with original")
	}
}

func TestAddScaled(t *testing.T) {
	a := Full(Shape{3}, 1)
	b := New(Shape{3}, []float32{1, 2, 3})
	a.AddScaled(b, 2)

	want := []float32{3, 5, 7}
	for i, v := range a.Data() {
		if v != want[i] {
			t.Errorf("AddScaled[%d] = %v, want %v", i, v, want[i])
		}
	}
}
