package term

import "testing"

import "github.com/bnclabs/goterm/api"

func TestParseRoundtrip(t *testing.T) {
	pool := NewPool("roundtrip", Defaultsettings())
	defer pool.Close()

	texts := []string{
		"f",
		"f(a,b)",
		"42",
		"-7",
		"[]",
		"[1,2,3]",
		"f(g(x),h(y,[1,2]))",
		"cons(1,[2,[3,4],g])",
		`"quoted name"(a)`,
		`"with \"escape\""`,
		"outer(inner(deep(leaf)),[],0)",
	}
	for _, text := range texts {
		parsed, err := pool.Parse([]byte(text))
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		printed := pool.Print(parsed)
		if printed != text {
			t.Errorf("expected %q, got %q", text, printed)
		}
		reparsed, err := pool.Parse([]byte(printed))
		if err != nil {
			t.Fatalf("Parse(%q): %v", printed, err)
		}
		if reparsed != parsed {
			t.Errorf("%q: expected %x, got %x", text, parsed, reparsed)
		}
	}
}

func TestParseWhitespace(t *testing.T) {
	pool := NewPool("parsews", Defaultsettings())
	defer pool.Close()

	a, err := pool.Parse([]byte(" f( a , [ 1 , 2 ] ) "))
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	b, err := pool.Parse([]byte("f(a,[1,2])"))
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	if a != b {
		t.Errorf("expected %x, got %x", b, a)
	}
}

func TestParseCanonical(t *testing.T) {
	pool := NewPool("parsecanon", Defaultsettings())
	defer pool.Close()

	f := pool.Symbol("f", 2)
	ta, _ := pool.MakeTerm(pool.Symbol("a", 0), nil)
	tb, _ := pool.MakeTerm(pool.Symbol("b", 0), nil)
	made, _ := pool.MakeTerm(f, []Term{ta, tb})

	parsed, err := pool.Parse([]byte("f(a,b)"))
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	if parsed != made {
		t.Errorf("expected %x, got %x", made, parsed)
	}
}

func TestParseErrors(t *testing.T) {
	setts := Defaultsettings()
	setts["autocollect"] = false
	pool := NewPool("parseerr", setts)
	defer pool.Close()

	size := pool.Size()
	texts := []string{
		"",
		"f(",
		"f)",
		"f(a,)",
		"(a)",
		"[1,2",
		"1 2",
		"f(a) trailing",
		`"unterminated`,
		"f(,)",
	}
	for _, text := range texts {
		if _, err := pool.Parse([]byte(text)); err == nil {
			t.Errorf("Parse(%q): expected error", text)
		}
	}
	// rejected input leaves no live garbage behind a cycle
	pool.Collect()
	if x := pool.Size(); x != size {
		t.Errorf("expected %v, got %v", size, x)
	}
}

func TestParseReservedSymbols(t *testing.T) {
	pool := NewPool("parseresv", Defaultsettings())
	defer pool.Close()

	// quoted reserved names go through the same construction checks
	parsed, err := pool.Parse([]byte(`"<list>"(1,[])`))
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	cell, err := pool.Cons(pool.MakeInt(1), pool.EmptyList())
	if err != nil {
		t.Fatalf("Cons(): %v", err)
	}
	if parsed != cell {
		t.Errorf("expected %x, got %x", cell, parsed)
	}
	if pool.Print(parsed) != "[1]" {
		t.Errorf("expected %q, got %q", "[1]", pool.Print(parsed))
	}

	if _, err := pool.Parse([]byte(`"<list>"(1,2)`)); err != api.ErrorInvalidList {
		t.Errorf("expected %v, got %v", api.ErrorInvalidList, err)
	}
}

func BenchmarkMakeTerm(b *testing.B) {
	pool := NewPool("benchmake", Defaultsettings())
	defer pool.Close()

	f := pool.Symbol("f", 2)
	ta, _ := pool.MakeTerm(pool.Symbol("a", 0), nil)
	tb, _ := pool.MakeTerm(pool.Symbol("b", 0), nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t, _ := pool.MakeTerm(f, []Term{ta, tb})
		pool.Release(t)
	}
}

func BenchmarkParse(b *testing.B) {
	pool := NewPool("benchparse", Defaultsettings())
	defer pool.Close()

	text := []byte("f(g(x),h(y,[1,2,3]))")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t, err := pool.Parse(text)
		if err != nil {
			b.Fatalf("Parse(): %v", err)
		}
		pool.Release(t)
	}
}

func BenchmarkCollect(b *testing.B) {
	setts := Defaultsettings()
	setts["autocollect"] = false
	pool := NewPool("benchgc", setts)
	defer pool.Close()

	n := pool.EmptyList()
	for i := 0; i < 10000; i++ {
		n, _ = pool.Cons(pool.MakeInt(int64(i)), n)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Collect()
	}
}
