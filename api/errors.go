package api

import "errors"

// ErrorArityMismatch when the number of argument terms differ from the
// function symbol's arity.
var ErrorArityMismatch = errors.New("term.aritymismatch")

// ErrorIndexOutofRange when an argument index exceeds the term's arity.
var ErrorIndexOutofRange = errors.New("term.indexoutofrange")

// ErrorInvalidList when the tail of a list construction is not a list
// term.
var ErrorInvalidList = errors.New("term.invalidlist")

// ErrorParseFailure when textual input does not conform to the term
// grammar.
var ErrorParseFailure = errors.New("term.parsefailure")

// ErrorReleaseUnderflow when Release, or ReleaseSymbol, is called on a
// handle whose reference count is already zero.
var ErrorReleaseUnderflow = errors.New("term.releaseunderflow")

// ErrorPoolFull when construction finds no free slot: every slot up to
// the pool's configured capacity holds a live node.
var ErrorPoolFull = errors.New("term.outofmemory")

// ErrorPoolClosed when any term operation is attempted on a pool whose
// Close has run.
var ErrorPoolClosed = errors.New("term.poolclosed")
