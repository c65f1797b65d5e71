package term

import "bytes"
import "strconv"

// Print render t in the canonical textual form: `name(a1,...,aN)` for
// applications, bare `name` for arity zero, decimal for integer
// literals, `[a,b,c]` for lists. Names that do not scan as identifiers
// are double quoted. Parse(Print(t)) returns a handle equal to t for
// every constructible term.
func (pool *Pool) Print(t Term) string {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	var buf bytes.Buffer
	pool.printterm(&buf, pool.fetch(t))
	return buf.String()
}

func (pool *Pool) printterm(buf *bytes.Buffer, nd *termnode) {
	switch nd.sym {
	case pool.symint.r:
		buf.WriteString(strconv.FormatInt(nd.ival, 10))

	case pool.symnil.r:
		buf.WriteString("[]")

	case pool.symcons.r:
		buf.WriteByte('[')
		for {
			pool.printterm(buf, pool.fetch(nd.args[0]))
			tail := pool.fetch(nd.args[1])
			if tail.sym == pool.symnil.r {
				break
			}
			buf.WriteByte(',')
			nd = tail
		}
		buf.WriteByte(']')

	default:
		printname(buf, nd.sym.name)
		if len(nd.args) > 0 {
			buf.WriteByte('(')
			for i, arg := range nd.args {
				if i > 0 {
					buf.WriteByte(',')
				}
				pool.printterm(buf, pool.fetch(arg))
			}
			buf.WriteByte(')')
		}
	}
}

func printname(buf *bytes.Buffer, name string) {
	if isident(name) {
		buf.WriteString(name)
		return
	}
	buf.WriteString(strconv.Quote(name))
}

func isident(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch == '_':
		case i > 0 && (ch == '\'' || (ch >= '0' && ch <= '9')):
		default:
			return false
		}
	}
	return true
}
