package main

import "flag"
import "fmt"
import "math/rand"
import "runtime"
import "sync"
import "time"

import s "github.com/bnclabs/gosettings"
import hm "github.com/dustin/go-humanize"

import "github.com/bnclabs/goterm/api"
import "github.com/bnclabs/goterm/term"

var loadopts struct {
	n         int
	par       int
	ncpu      int
	depth     int
	width     int
	seed      int
	capacity  int
	threshold float64
	mprof     string
	args      []string
}

func parseLoadopts(args []string) {
	f := flag.NewFlagSet("load", flag.ExitOnError)

	seed := int(time.Now().UnixNano() & 0xFFFF)
	f.IntVar(&loadopts.n, "n", 100000,
		"number of terms to generate and intern")
	f.IntVar(&loadopts.par, "par", 8,
		"number of load generators")
	f.IntVar(&loadopts.ncpu, "ncpu", runtime.NumCPU(),
		"set number cores to use.")
	f.IntVar(&loadopts.depth, "depth", 6,
		"maximum nesting depth of generated terms")
	f.IntVar(&loadopts.width, "width", 3,
		"maximum arity of generated terms")
	f.IntVar(&loadopts.seed, "seed", seed,
		"random seed")
	f.IntVar(&loadopts.capacity, "capacity", 1024*1024,
		"maximum number of term slots in the pool")
	f.Float64Var(&loadopts.threshold, "threshold", 0.875,
		"gc watermark as a fraction of capacity")
	f.StringVar(&loadopts.mprof, "mprof", "",
		"dump mem-profile to file")
	f.Parse(args)

	loadopts.args = f.Args()
	setCPU(loadopts.ncpu)
}

func doLoad(args []string) {
	parseLoadopts(args)
	fmt.Printf("seed: %v\n", loadopts.seed)

	setts := term.Defaultsettings().Mixin(s.Settings{
		"capacity":     int64(loadopts.capacity),
		"gc.threshold": loadopts.threshold,
	})
	pool := term.NewPool("load", setts)

	now := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < loadopts.par; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g := &termgen{
				pool: pool,
				rnd:  rand.New(rand.NewSource(int64(loadopts.seed + i))),
			}
			for j := 0; j < loadopts.n/loadopts.par; j++ {
				t := g.generate(loadopts.depth)
				pool.Release(t)
			}
		}(i)
	}
	wg.Wait()

	took := time.Since(now)
	rate := float64(loadopts.n) / took.Seconds()
	fmt.Printf(
		"took %v to make %v terms, %v/sec\n",
		took, hm.Comma(int64(loadopts.n)), hm.Comma(int64(rate)))
	pool.Log(true /*humanized*/)
	pool.Collect()
	pool.Validate()

	if takeMEMProfile(loadopts.mprof) {
		fmt.Printf("dumped mem-profile to %v\n", loadopts.mprof)
	}
	pool.Close()
}

// termgen build random terms bounded by depth and loadopts.width,
// leaving one protected handle per generated term with the caller.
type termgen struct {
	pool *term.Pool
	rnd  *rand.Rand
}

var gennames = []string{"f", "g", "h", "cons", "succ", "pair", "node"}

func (g *termgen) generate(depth int) api.Term {
	if depth <= 0 || g.rnd.Intn(4) == 0 {
		return g.pool.MakeInt(int64(g.rnd.Intn(1024)))
	}
	if g.rnd.Intn(8) == 0 {
		return g.genlist(depth - 1)
	}
	arity := g.rnd.Intn(loadopts.width + 1)
	args := make([]api.Term, arity)
	for i := range args {
		args[i] = g.generate(depth - 1)
	}
	name := gennames[g.rnd.Intn(len(gennames))]
	sym := g.pool.Symbol(name, arity)
	t, err := g.pool.MakeTerm(sym, args)
	if err != nil {
		panic(err)
	}
	for _, arg := range args {
		g.pool.Release(arg)
	}
	g.pool.ReleaseSymbol(sym)
	return t
}

func (g *termgen) genlist(depth int) api.Term {
	t := g.pool.EmptyList()
	for i, n := 0, g.rnd.Intn(loadopts.width+1); i < n; i++ {
		elem := g.generate(depth - 1)
		cell, err := g.pool.Cons(elem, t)
		if err != nil {
			panic(err)
		}
		g.pool.Release(elem)
		g.pool.Release(t)
		t = cell
	}
	return t
}
