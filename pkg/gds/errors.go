package gds

import (
	"errors"

	"github.com/layoutkit/gdsgo/internal/stream"
)

var (
	// ErrGrammarViolation reports a record that is illegal in the
	// current state of the stream grammar. A violation aborts the whole
	// decode: a misordered record invalidates trust in everything that
	// follows it.
	ErrGrammarViolation = errors.New("gds: record illegal in current state")

	// ErrDanglingReference reports a structure reference whose name has
	// no definition in the library.
	ErrDanglingReference = errors.New("gds: reference to undefined structure")

	// ErrReferenceCycle reports a structure reachable from itself
	// through reference edges.
	ErrReferenceCycle = errors.New("gds: structure reference cycle")
)

// Errors surfaced from the record layer, re-exported so callers can
// match them with errors.Is without importing internal packages.
var (
	ErrUnexpectedEnd   = stream.ErrUnexpectedEnd
	ErrMalformedRecord = stream.ErrMalformedRecord
	ErrRealOverflow    = stream.ErrRealOverflow
)
