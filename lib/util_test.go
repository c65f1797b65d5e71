package lib

import "testing"

func TestMixhash(t *testing.T) {
	if x, y := Mixhash(0, 1), Mixhash(0, 1); x != y {
		t.Errorf("expected %v, got %v", x, y)
	}
	if x, y := Mixhash(0, 1), Mixhash(0, 2); x == y {
		t.Errorf("unexpected collision %v", x)
	}
	if x, y := Mixhash(1, 0), Mixhash(2, 0); x == y {
		t.Errorf("unexpected collision %v", x)
	}
	// order sensitive
	a := Mixhash(Mixhash(0, 1), 2)
	b := Mixhash(Mixhash(0, 2), 1)
	if a == b {
		t.Errorf("unexpected collision %v", a)
	}
}

func TestMixstring(t *testing.T) {
	if x, y := Mixstring(0, "hello"), Mixstring(0, "hello"); x != y {
		t.Errorf("expected %v, got %v", x, y)
	}
	if x, y := Mixstring(0, "hello"), Mixstring(0, "world"); x == y {
		t.Errorf("unexpected collision %v", x)
	}
	// strings longer than one 8-byte chunk
	long1 := Mixstring(0, "a long symbol name here")
	long2 := Mixstring(0, "a long symbol name her")
	if long1 == long2 {
		t.Errorf("unexpected collision %v", long1)
	}
	if x, y := Mixstring(0, ""), Mixstring(0, ""); x != y {
		t.Errorf("expected %v, got %v", x, y)
	}
}

func BenchmarkMixhash(b *testing.B) {
	h := uint64(0)
	for i := 0; i < b.N; i++ {
		h = Mixhash(h, uint64(i))
	}
}

func BenchmarkMixstring(b *testing.B) {
	h := uint64(0)
	for i := 0; i < b.N; i++ {
		h = Mixstring(h, "function_symbol")
	}
}
