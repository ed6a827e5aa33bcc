package cpu

import (
	"math"
	"testing"

	"github.com/lucent-ml/lucent/internal/tensor"
)

func rawFromFloat32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

func TestAdd(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	c := rawFromFloat32(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	result := b.Add(a, c)

	expected := []float32{11, 22, 33, 44}
	for i, v := range result.AsFloat32() {
		if v != expected[i] {
			t.Errorf("Add[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestAddInPlaceWhenUnique(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{1, 2}, tensor.Shape{2})
	c := rawFromFloat32(t, []float32{3, 4}, tensor.Shape{2})

	result := b.Add(a, c)
	if result != a {
		t.Error("expected in-place add to reuse the unique lhs tensor")
	}
}

func TestAddCopiesWhenShared(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{1, 2}, tensor.Shape{2})
	shared := a.Clone()
	defer shared.Release()

	c := rawFromFloat32(t, []float32{3, 4}, tensor.Shape{2})
	result := b.Add(a, c)

	if result == a {
		t.Error("expected shared lhs to be left untouched")
	}
	if a.AsFloat32()[0] != 1 {
		t.Errorf("shared lhs mutated: got %v", a.AsFloat32()[0])
	}
}

func TestSubMulDiv(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{6, 8, 10, 12}, tensor.Shape{4})
	c := rawFromFloat32(t, []float32{2, 4, 5, 3}, tensor.Shape{4})

	sub := b.Sub(a.Clone(), c)
	mul := b.Mul(a.Clone(), c)
	div := b.Div(a.Clone(), c)

	wantSub := []float32{4, 4, 5, 9}
	wantMul := []float32{12, 32, 50, 36}
	wantDiv := []float32{3, 2, 2, 4}

	for i := range wantSub {
		if sub.AsFloat32()[i] != wantSub[i] {
			t.Errorf("Sub[%d] = %v, want %v", i, sub.AsFloat32()[i], wantSub[i])
		}
		if mul.AsFloat32()[i] != wantMul[i] {
			t.Errorf("Mul[%d] = %v, want %v", i, mul.AsFloat32()[i], wantMul[i])
		}
		if div.AsFloat32()[i] != wantDiv[i] {
			t.Errorf("Div[%d] = %v, want %v", i, div.AsFloat32()[i], wantDiv[i])
		}
	}
}

func TestAddBroadcast(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := rawFromFloat32(t, []float32{10, 20, 30}, tensor.Shape{3})

	result := b.Add(a, bias)

	if !result.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("broadcast shape = %v, want [2 3]", result.Shape())
	}
	expected := []float32{11, 22, 33, 14, 25, 36}
	for i, v := range result.AsFloat32() {
		if v != expected[i] {
			t.Errorf("broadcast Add[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestMulScalar(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{1, -2, 3}, tensor.Shape{3})

	result := b.MulScalar(a, float32(2.5))

	expected := []float32{2.5, -5, 7.5}
	for i, v := range result.AsFloat32() {
		if v != expected[i] {
			t.Errorf("MulScalar[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestAddScalar(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{1, 2}, tensor.Shape{2})

	result := b.AddScalar(a, float32(0.5))

	expected := []float32{1.5, 2.5}
	for i, v := range result.AsFloat32() {
		if v != expected[i] {
			t.Errorf("AddScalar[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestScalarTypeMismatchPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for float64 scalar on float32 tensor")
		}
	}()

	b := New()
	a := rawFromFloat32(t, []float32{1}, tensor.Shape{1})
	b.MulScalar(a, float64(2))
}

func TestAbs(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{-1.5, 0, 2.5}, tensor.Shape{3})

	result := b.Abs(a)

	expected := []float32{1.5, 0, 2.5}
	for i, v := range result.AsFloat32() {
		if v != expected[i] {
			t.Errorf("Abs[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestLeakyReLU(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{-2, -0.5, 0, 1, 3}, tensor.Shape{5})

	result := b.LeakyReLU(a, 0.1)

	expected := []float32{-0.2, -0.05, 0, 1, 3}
	for i, v := range result.AsFloat32() {
		if math.Abs(float64(v-expected[i])) > 1e-6 {
			t.Errorf("LeakyReLU[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestSumMean(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	sum := b.Sum(a)
	mean := b.Mean(a)

	if !sum.Shape().Equal(tensor.Shape{1}) {
		t.Errorf("Sum shape = %v, want [1]", sum.Shape())
	}
	if got := sum.AsFloat32()[0]; got != 10 {
		t.Errorf("Sum = %v, want 10", got)
	}
	if got := mean.AsFloat32()[0]; got != 2.5 {
		t.Errorf("Mean = %v, want 2.5", got)
	}
}

func TestReshape(t *testing.T) {
	b := New()
	a := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	result := b.Reshape(a, tensor.Shape{3, 2})

	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Reshape shape = %v, want [3 2]", result.Shape())
	}
	for i, v := range result.AsFloat32() {
		if v != float32(i+1) {
			t.Errorf("Reshape[%d] = %v, want %v", i, v, i+1)
		}
	}
}

func TestReshapeElementMismatchPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for element count mismatch")
		}
	}()

	b := New()
	a := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b.Reshape(a, tensor.Shape{3})
}
