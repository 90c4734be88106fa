package core

import "testing"

func TestFixed32FromUint(t *testing.T) {
	f, ok := Fixed32FromUint(125000000)
	if !ok {
		t.Fatal("125 MHz should fit in 28 integer bits")
	}
	if f.Floor() != 125000000 {
		t.Errorf("Floor() = %d, want 125000000", f.Floor())
	}

	if _, ok := Fixed32FromUint(1 << 28); ok {
		t.Error("2^28 should not fit in 28 integer bits")
	}
	if _, ok := Fixed32FromUint((1 << 28) - 1); !ok {
		t.Error("2^28-1 should fit in 28 integer bits")
	}
}

func TestFixed32DivFloors(t *testing.T) {
	// 125e6 / 6_553_600 = 19.0734...; the quotient floors to the nearest
	// 1/16, which is 19.0625 (raw 305).
	a, _ := Fixed32FromUint(125000000)
	b, _ := Fixed32FromUint(6553600)

	q := a.Div(b)
	if q.Raw() != 305 {
		t.Errorf("Div raw = %d, want 305", q.Raw())
	}
	if q.Floor() != 19 {
		t.Errorf("Div floor = %d, want 19", q.Floor())
	}
}

func TestFixed32MulOverflow(t *testing.T) {
	f, _ := Fixed32FromUint((1 << 28) - 1)
	if _, ok := f.MulUint(16); ok {
		t.Error("expected overflow multiplying near-max value by 16")
	}
	if _, ok := f.Shl(4); ok {
		t.Error("expected overflow shifting near-max value by 4")
	}
	if got, ok := f.MulUint(1); !ok || got != f {
		t.Error("multiplying by one should be exact")
	}
}

func TestFixed32SubOne(t *testing.T) {
	f := Fixed32FromRaw(0x1A) // 1.625
	if got := f.SubOne().Float64(); got != 0.625 {
		t.Errorf("SubOne = %v, want 0.625", got)
	}
	if got := Fixed32FromRaw(0x08).SubOne(); got != 0 {
		t.Errorf("SubOne below one should floor at zero, got raw %d", got.Raw())
	}
}

func TestFixed16Narrowing(t *testing.T) {
	if _, ok := Fixed32FromRaw(4095).Fixed16(); !ok {
		t.Error("255.9375 should fit the 8.4 register")
	}
	if _, ok := Fixed32FromRaw(4096).Fixed16(); ok {
		t.Error("256.0 should not fit the 8.4 register")
	}

	reg, _ := Fixed32FromRaw(306).Fixed16()
	if reg.Float64() != 19.125 {
		t.Errorf("raw 306 = %v, want 19.125", reg.Float64())
	}
}
