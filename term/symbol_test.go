package term

import "testing"

func TestSymbolIntern(t *testing.T) {
	pool := NewPool("symintern", Defaultsettings())
	defer pool.Close()

	f1 := pool.Symbol("f", 2)
	f2 := pool.Symbol("f", 2)
	if f1 != f2 {
		t.Errorf("expected same record for (f,2)")
	} else if f1.Name() != "f" {
		t.Errorf("expected %q, got %q", "f", f1.Name())
	} else if f1.Arity() != 2 {
		t.Errorf("expected %v, got %v", 2, f1.Arity())
	} else if f1.Index() != f2.Index() {
		t.Errorf("expected %v, got %v", f1.Index(), f2.Index())
	}

	g := pool.Symbol("f", 3)
	if g == f1 {
		t.Errorf("(f,2) and (f,3) interned to one record")
	}
	if f1.IsNil() {
		t.Errorf("unexpected nil symbol")
	}

	pool.ReleaseSymbol(f2)
	pool.ReleaseSymbol(g)
}

func TestSymbolLess(t *testing.T) {
	pool := NewPool("symless", Defaultsettings())
	defer pool.Close()

	a, b := pool.Symbol("a", 2), pool.Symbol("b", 0)
	a0 := pool.Symbol("a", 0)
	if SymbolLess(a, b) == false {
		t.Errorf("expected a < b")
	} else if SymbolLess(b, a) {
		t.Errorf("expected b > a")
	} else if SymbolLess(a0, a) == false {
		t.Errorf("expected (a,0) < (a,2)")
	} else if SymbolLess(a, a) {
		t.Errorf("expected !(a < a)")
	}
}

func TestSymbolRefcount(t *testing.T) {
	pool := NewPool("symref", Defaultsettings())
	defer pool.Close()

	sym := pool.Symbol("transient", 1)
	pool.ProtectSymbol(sym)
	pool.ReleaseSymbol(sym)
	pool.ReleaseSymbol(sym) // count back to zero

	pool.Collect() // sweeps the zero-count record

	fresh := pool.Symbol("transient", 1)
	if fresh.Name() != "transient" || fresh.Arity() != 1 {
		t.Errorf("unexpected record %v/%v", fresh.Name(), fresh.Arity())
	}
	pool.ReleaseSymbol(fresh)
}

func TestSymbolReleaseUnderflow(t *testing.T) {
	pool := NewPool("symunderflow", Defaultsettings())
	defer pool.Close()

	sym := pool.Symbol("once", 0)
	pool.ReleaseSymbol(sym)

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic")
		}
	}()
	pool.ReleaseSymbol(sym)
}

func TestSymbolIndexDispatch(t *testing.T) {
	pool := NewPool("symindex", Defaultsettings())
	defer pool.Close()

	syms := make([]Symbol, 0, 16)
	seen := make(map[int]bool)
	for _, name := range []string{"w", "x", "y", "z"} {
		for arity := 0; arity < 4; arity++ {
			sym := pool.Symbol(name, arity)
			if seen[sym.Index()] {
				t.Errorf("index %v assigned twice", sym.Index())
			}
			seen[sym.Index()] = true
			syms = append(syms, sym)
		}
	}
	for _, sym := range syms {
		again := pool.Symbol(sym.Name(), sym.Arity())
		if again.Index() != sym.Index() {
			t.Errorf("expected %v, got %v", sym.Index(), again.Index())
		}
		pool.ReleaseSymbol(again)
		pool.ReleaseSymbol(sym)
	}
}
