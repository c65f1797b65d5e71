package term

import "strconv"

import parsec "github.com/prataprc/goparsec"

import "github.com/bnclabs/goterm/api"

// Parse build the term denoted by text, ref. Print for the grammar.
// The returned handle is protected, same as MakeTerm. Fails with
// ErrorParseFailure on malformed input, in which case nothing new stays
// in the pool beyond the next collection cycle.
func (pool *Pool) Parse(text []byte) (Term, error) {
	p := newtermparser(pool)
	node, scanner := p.y(parsec.NewScanner(text))
	t, ok := node.(Term)
	if ok && p.err == nil {
		if _, scanner = scanner.SkipWS(); scanner.Endof() == false {
			ok = false
		}
	}
	if ok == false || p.err != nil {
		p.releaseall(0)
		if p.err != nil {
			return 0, p.err
		}
		return 0, api.ErrorParseFailure
	}
	p.releaseall(t)
	return t, nil
}

// termparser holds the grammar and the handles constructed while a
// single Parse call is in flight. Intermediates are protected by
// construction, so a collection cycle triggered mid-parse cannot
// reclaim them; releaseall settles the accounting when the call
// returns.
type termparser struct {
	pool *Pool
	y    parsec.Parser
	held []Term
	syms []Symbol
	err  error
}

// grammar:
//	term  : INT | list | appl
//	appl  : name | name "(" args ")"
//	name  : NAME | QNAME
//	list  : "[" "]" | "[" args "]"
//	args  : term | term "," args
func newtermparser(pool *Pool) *termparser {
	p := &termparser{pool: pool}

	yname := parsec.Token(`[A-Za-z_][A-Za-z0-9_']*`, "NAME")
	yqname := parsec.Token(`"(?:[^"\\]|\\.)*"`, "QNAME")
	yint := parsec.Token(`-?[0-9]+`, "INT")
	yopenp := parsec.Atom("(", "OPENP")
	yclosep := parsec.Atom(")", "CLOSEP")
	yopenb := parsec.Atom("[", "OPENB")
	ycloseb := parsec.Atom("]", "CLOSEB")
	ycomma := parsec.Atom(",", "COMMA")

	ynext := parsec.And(p.nodifysecond, ycomma, &p.y)
	yrest := parsec.Kleene(p.nodifyrest, ynext)
	yargs := parsec.And(p.nodifyargs, &p.y, yrest)
	yparen := parsec.And(p.nodifyparen, yopenp, yargs, yclosep)
	yhead := parsec.OrdChoice(p.nodifyfirst, yqname, yname)
	yappl := parsec.And(p.nodifyappl, yhead, parsec.Maybe(p.nodifymaybe, yparen))
	ylist := parsec.And(
		p.nodifylist, yopenb, parsec.Maybe(p.nodifymaybe, yargs), ycloseb)
	p.y = parsec.OrdChoice(p.nodifyterm, yint, ylist, yappl)
	return p
}

// releaseall drop the references held on intermediates and interned
// symbols, keeping a single reference on result when it is non-nil.
func (p *termparser) releaseall(result Term) {
	kept := false
	for _, t := range p.held {
		if kept == false && t == result {
			kept = true
			continue
		}
		p.pool.Release(t)
	}
	for _, sym := range p.syms {
		p.pool.ReleaseSymbol(sym)
	}
	p.held, p.syms = nil, nil
}

func (p *termparser) nodifyterm(ns []parsec.ParsecNode) parsec.ParsecNode {
	if p.err != nil || len(ns) == 0 {
		return nil
	}
	switch n := ns[0].(type) {
	case *parsec.Terminal: // INT
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			p.err = api.ErrorParseFailure
			return nil
		}
		t := p.pool.MakeInt(v)
		p.held = append(p.held, t)
		return t
	case Term:
		return n
	}
	return nil
}

func (p *termparser) nodifyappl(ns []parsec.ParsecNode) parsec.ParsecNode {
	if p.err != nil || len(ns) != 2 {
		return nil
	}
	head, ok := ns[0].(*parsec.Terminal)
	if ok == false {
		return nil
	}
	name := head.Value
	if head.Name == "QNAME" {
		unquoted, err := strconv.Unquote(name)
		if err != nil {
			p.err = api.ErrorParseFailure
			return nil
		}
		name = unquoted
	}
	var args []Term
	switch x := ns[1].(type) {
	case []Term:
		args = x
	case parsec.MaybeNone:
	default:
		return nil
	}
	sym := p.pool.Symbol(name, len(args))
	p.syms = append(p.syms, sym)
	t, err := p.pool.MakeTerm(sym, args)
	if err != nil {
		p.err = err
		return nil
	}
	p.held = append(p.held, t)
	return t
}

func (p *termparser) nodifylist(ns []parsec.ParsecNode) parsec.ParsecNode {
	if p.err != nil || len(ns) != 3 {
		return nil
	}
	var elems []Term
	switch x := ns[1].(type) {
	case []Term:
		elems = x
	case parsec.MaybeNone:
	default:
		return nil
	}
	t := p.pool.EmptyList()
	p.held = append(p.held, t)
	for i := len(elems) - 1; i >= 0; i-- {
		cell, err := p.pool.Cons(elems[i], t)
		if err != nil {
			p.err = err
			return nil
		}
		p.held = append(p.held, cell)
		t = cell
	}
	return t
}

// args : term ("," term)*
func (p *termparser) nodifyargs(ns []parsec.ParsecNode) parsec.ParsecNode {
	if len(ns) != 2 {
		return nil
	}
	first, ok := ns[0].(Term)
	if ok == false {
		return nil
	}
	rest, ok := ns[1].([]Term)
	if ok == false {
		return nil
	}
	return append([]Term{first}, rest...)
}

func (p *termparser) nodifyrest(ns []parsec.ParsecNode) parsec.ParsecNode {
	rest := make([]Term, 0, len(ns))
	for _, n := range ns {
		t, ok := n.(Term)
		if ok == false {
			return nil
		}
		rest = append(rest, t)
	}
	return rest
}

func (p *termparser) nodifysecond(ns []parsec.ParsecNode) parsec.ParsecNode {
	if len(ns) != 2 {
		return nil
	}
	return ns[1]
}

func (p *termparser) nodifyparen(ns []parsec.ParsecNode) parsec.ParsecNode {
	if len(ns) != 3 {
		return nil
	}
	return ns[1]
}

func (p *termparser) nodifyfirst(ns []parsec.ParsecNode) parsec.ParsecNode {
	if len(ns) == 0 {
		return nil
	}
	return ns[0]
}

func (p *termparser) nodifymaybe(ns []parsec.ParsecNode) parsec.ParsecNode {
	if len(ns) == 0 {
		return nil
	}
	return ns[0]
}
