package term

import "fmt"
import "sync"
import "testing"

import "github.com/bnclabs/goterm/api"

func TestConcurDedup(t *testing.T) {
	pool := NewPool("concurdedup", Defaultsettings())
	defer pool.Close()

	nroutines, repeat := 16, 1000
	size := pool.Size()

	f := pool.Symbol("f", 2)
	ta, _ := pool.MakeTerm(pool.Symbol("a", 0), nil)
	tb, _ := pool.MakeTerm(pool.Symbol("b", 0), nil)

	var wg sync.WaitGroup
	handles := make([]Term, nroutines)
	wg.Add(nroutines)
	for n := 0; n < nroutines; n++ {
		go func(n int) {
			defer wg.Done()
			var last Term
			for i := 0; i < repeat; i++ {
				x, err := pool.MakeTerm(f, []Term{ta, tb})
				if err != nil {
					t.Errorf("MakeTerm(): %v", err)
					return
				}
				if i < repeat-1 {
					pool.Release(x)
				}
				last = x
			}
			handles[n] = last
		}(n)
	}
	wg.Wait()

	for n := 1; n < nroutines; n++ {
		if handles[n] != handles[0] {
			t.Errorf("expected %x, got %x", handles[0], handles[n])
		}
	}
	// one canonical instance for f(a,b), on top of a and b
	if x := pool.Size(); x != size+3 {
		t.Errorf("expected %v, got %v", size+3, x)
	}
}

func TestConcurChurn(t *testing.T) {
	setts := Defaultsettings()
	setts["capacity"] = int64(64 * 1024)
	setts["gc.threshold"] = float64(0.5)
	pool := NewPool("concurchurn", setts)
	defer pool.Close()

	nroutines, repeat := 8, 5000
	var wg sync.WaitGroup
	wg.Add(nroutines)
	for n := 0; n < nroutines; n++ {
		go func(n int) {
			defer wg.Done()
			g := pool.Symbol(fmt.Sprintf("g%v", n%4), 1)
			defer pool.ReleaseSymbol(g)
			for i := 0; i < repeat; i++ {
				inner := pool.MakeInt(int64(i % 512))
				outer, err := pool.MakeTerm(g, []Term{inner})
				if err != nil {
					t.Errorf("MakeTerm(): %v", err)
					return
				}
				pool.Release(inner)
				pool.Release(outer)
			}
		}(n)
	}
	wg.Wait()

	pool.Collect()
	pool.Validate()
	if x, y := pool.Size(), int64(1); x != y {
		t.Errorf("expected %v live terms after churn, got %v", y, x)
	}
}

func TestConcurSlabGrowth(t *testing.T) {
	setts := Defaultsettings()
	setts["capacity"] = int64(4096)
	setts["partitions"] = int64(1)
	setts["slabsize"] = int64(1)
	setts["autocollect"] = false
	pool := NewPool("slabgrowth", setts)
	defer pool.Close()

	// every construction carves a fresh slab while readers chase
	// published handles through the directory
	var mu sync.Mutex
	published := make([]Term, 0, 2048)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			x := pool.MakeInt(int64(i))
			mu.Lock()
			published = append(published, x)
			mu.Unlock()
		}
	}()
	for n := 0; n < 4; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20000; i++ {
				mu.Lock()
				var x Term
				if len(published) > 0 {
					x = published[len(published)-1]
				}
				mu.Unlock()
				if x != 0 {
					if pool.IsInt(x) == false {
						t.Errorf("published handle %x lost int classification", x)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	if x, y := pool.Size(), int64(2001); x != y { // 2000 ints and []
		t.Errorf("expected %v, got %v", y, x)
	}
}

func TestConcurRoots(t *testing.T) {
	setts := Defaultsettings()
	setts["capacity"] = int64(32 * 1024)
	setts["gc.threshold"] = float64(0.5)
	pool := NewPool("concurroots", setts)
	defer pool.Close()

	type holder struct {
		mu    sync.Mutex
		terms []Term
	}
	h := &holder{}
	reg := pool.RegisterRootFunc(
		func(stack api.MarkStack) {
			// exclusive gate is held, but the registrant still guards
			// its own structure against its own writers
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, t := range h.terms {
				stack.Push(t)
			}
		},
		func() int {
			h.mu.Lock()
			defer h.mu.Unlock()
			return len(h.terms)
		})
	defer reg.Close()

	nroutines, repeat := 4, 2000
	var wg sync.WaitGroup
	wg.Add(nroutines)
	for n := 0; n < nroutines; n++ {
		go func(n int) {
			defer wg.Done()
			for i := 0; i < repeat; i++ {
				x := pool.MakeInt(int64(n*repeat + i))
				if i%100 == 0 {
					h.mu.Lock()
					h.terms = append(h.terms, x)
					h.mu.Unlock()
				}
				// handle dropped either way; only sampled terms stay
				// reachable, via the root
				pool.Release(x)
			}
		}(n)
	}
	wg.Wait()

	pool.Collect()
	for _, x := range h.terms {
		if _, ok := pool.IntValue(x); ok == false {
			t.Errorf("rooted term %x lost", x)
		}
	}
	want := int64(nroutines*(repeat/100) + 1)
	if x := pool.Size(); x != want {
		t.Errorf("expected %v, got %v", want, x)
	}
}
