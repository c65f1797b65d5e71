package main

import "flag"
import "fmt"
import "io/ioutil"
import "log"

import parsec "github.com/prataprc/goparsec"
import "github.com/prataprc/monster"
import mcommon "github.com/prataprc/monster/common"

var monsteropts struct {
	n        int
	seed     int
	bagdir   string
	prodfile string
}

func parseMonsteropts(args []string) {
	f := flag.NewFlagSet("monster", flag.ExitOnError)

	f.IntVar(&monsteropts.n, "n", 1000,
		"number of term texts to generate")
	f.IntVar(&monsteropts.seed, "seed", 1,
		"random seed")
	f.StringVar(&monsteropts.bagdir, "bagdir", "",
		"bag directory for monster sample data.")
	f.StringVar(&monsteropts.prodfile, "prodfile", "./term.prod",
		"monster production file")
	f.Parse(args)

	fmt.Printf("seed: %v\n", monsteropts.seed)
}

func doMonster(args []string) {
	parseMonsteropts(args)

	textch := make(chan string, 10000)
	go generate(monsteropts.n, monsteropts.prodfile, textch)
	for i := 0; i < monsteropts.n; i++ {
		fmt.Printf("%v\n", <-textch)
	}
}

//--------
// monster
//--------

func generate(repeat int, prodfile string, textch chan<- string) {
	text, err := ioutil.ReadFile(prodfile)
	if err != nil {
		log.Fatal(err)
	}
	root := compile(parsec.NewScanner(text)).(mcommon.Scope)
	seed, bagdir := uint64(monsteropts.seed), monsteropts.bagdir
	scope := monster.BuildContext(root, seed, bagdir, prodfile)
	nterms := scope["_nonterminals"].(mcommon.NTForms)
	for i := 0; i < repeat; i++ {
		scope = scope.RebuildContext()
		val := evaluate("root", scope, nterms["s"])
		textch <- val.(string)
	}
}

func compile(s parsec.Scanner) parsec.ParsecNode {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("%v at %v", r, s.GetCursor())
		}
	}()
	root, _ := monster.Y(s)
	return root
}

func evaluate(
	name string, scope mcommon.Scope, forms []*mcommon.Form) interface{} {

	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("%v", r)
		}
	}()
	return monster.EvalForms(name, scope, forms)
}
