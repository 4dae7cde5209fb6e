package math

import (
	"math"
	"testing"
)

func TestVec2Operations(t *testing.T) {
	v1 := NewVec2(1, 2)
	v2 := NewVec2(4, 6)

	result := v1.Add(v2)
	expected := NewVec2(5, 8)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	result = v2.Sub(v1)
	expected = NewVec2(3, 4)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	result = v1.Mul(2)
	expected = NewVec2(2, 4)
	if result != expected {
		t.Errorf("Mul: expected %v, got %v", expected, result)
	}

	result = v1.MulVec(v2)
	expected = NewVec2(4, 12)
	if result != expected {
		t.Errorf("MulVec: expected %v, got %v", expected, result)
	}

	dot := v1.Dot(v2)
	if dot != 16 {
		t.Errorf("Dot: expected 16, got %v", dot)
	}

	length := result.Sub(NewVec2(1, 8)).Length() // (3,4)
	if math.Abs(float64(length-5)) > 0.0001 {
		t.Errorf("Length: expected 5, got %v", length)
	}
}

func TestVec2Abs(t *testing.T) {
	v := NewVec2(-0.25, 0.5).Abs()
	if v != NewVec2(0.25, 0.5) {
		t.Errorf("Abs: got %v", v)
	}
}

func TestVec2InUnitSquare(t *testing.T) {
	cases := []struct {
		v    Vec2
		want bool
	}{
		{NewVec2(0, 0), true},
		{NewVec2(1, 1), true},
		{NewVec2(0.5, 0.5), true},
		{NewVec2(-0.001, 0.5), false},
		{NewVec2(0.5, 1.001), false},
	}
	for _, c := range cases {
		if got := c.v.InUnitSquare(); got != c.want {
			t.Errorf("InUnitSquare(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestVec2Lerp(t *testing.T) {
	a := NewVec2(0, 0)
	b := NewVec2(10, 20)
	if got := a.Lerp(b, 0.5); got != NewVec2(5, 10) {
		t.Errorf("Lerp: expected (5,10), got %v", got)
	}
}
