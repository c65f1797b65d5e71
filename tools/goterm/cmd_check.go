package main

import "flag"
import "fmt"
import "log"
import "time"

import s "github.com/bnclabs/gosettings"
import hm "github.com/dustin/go-humanize"

import "github.com/bnclabs/goterm/term"

var checkopts struct {
	repeat   int
	seed     int
	vtick    time.Duration
	bagdir   string
	prodfile string
	opdump   bool
	capacity int
	args     []string
}

func parseCheckopts(args []string) {
	f := flag.NewFlagSet("check", flag.ExitOnError)

	var vtick int

	seed := time.Now().UTC().Second()
	f.IntVar(&checkopts.repeat, "repeat", 1000,
		"number of times to repeat the generator")
	f.IntVar(&checkopts.seed, "seed", seed,
		"seed value for generating inputs")
	f.IntVar(&vtick, "vtick", 1000,
		"validate tick, in milliseconds")
	f.StringVar(&checkopts.bagdir, "bagdir", "./",
		"bagdir for monster")
	f.StringVar(&checkopts.prodfile, "prodfile", "./term.prod",
		"monster production file")
	f.BoolVar(&checkopts.opdump, "opdump", false,
		"dump monster generated terms")
	f.IntVar(&checkopts.capacity, "capacity", 1024*1024,
		"maximum number of term slots in the pool")
	f.Parse(args)

	checkopts.args = f.Args()
	checkopts.vtick = time.Duration(vtick) * time.Millisecond
}

func doCheck(args []string) {
	parseCheckopts(args)
	fmt.Printf("seed: %v\n", checkopts.seed)

	monsteropts.seed, monsteropts.bagdir = checkopts.seed, checkopts.bagdir
	textch := make(chan string, 10000)
	go generate(checkopts.repeat, checkopts.prodfile, textch)

	setts := term.Defaultsettings().Mixin(s.Settings{
		"capacity": int64(checkopts.capacity),
	})
	pool := term.NewPool("check", setts)

	tm := time.NewTicker(checkopts.vtick)
	defer tm.Stop()

	count, skipped := 0, 0
	for count < checkopts.repeat {
		text := <-textch
		count++
		if checkopts.opdump {
			fmt.Printf("term %v\n", text)
		}
		first, err := pool.Parse([]byte(text))
		if err != nil {
			skipped++
			continue
		}
		printed := pool.Print(first)
		second, err := pool.Parse([]byte(printed))
		if err != nil {
			log.Fatalf("reparse %q: %v", printed, err)
		} else if first != second {
			log.Fatalf("%q: expected %x, got %x", text, first, second)
		}
		pool.Release(first)
		pool.Release(second)

		select {
		case <-tm.C:
			pool.Collect()
			pool.Validate()
		default:
		}
	}

	fmt.Printf(
		"round-tripped %v terms, %v skipped\n",
		hm.Comma(int64(count-skipped)), hm.Comma(int64(skipped)))
	pool.Collect()
	pool.Validate()
	pool.Log(true /*humanized*/)
	pool.Close()
}
