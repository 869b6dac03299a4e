// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pyrev

import (
	"fmt"
	"sort"
)

// ParseError is returned when disassembly text does not match the
// instruction grammar (spec.md §7, kind 1).
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s\n\t%s", e.Line, e.Msg, e.Text)
}

// ParseErrorList collects every malformed record in one parse rather
// than aborting on the first, grounded on parser.ErrorList.
type ParseErrorList []*ParseError

func (p *ParseErrorList) Add(line int, text, msg string) {
	*p = append(*p, &ParseError{Line: line, Text: text, Msg: msg})
}

func (p ParseErrorList) Len() int      { return len(p) }
func (p ParseErrorList) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p ParseErrorList) Less(i, j int) bool {
	return p[i].Line < p[j].Line
}

func (p ParseErrorList) Sort() { sort.Sort(p) }

func (p ParseErrorList) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", p[0], len(p)-1)
}

// Err returns nil if the list is empty, otherwise itself as an error.
func (p ParseErrorList) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// ReconstructError aborts reconstruction of one code object (spec.md §7,
// kinds 2-3: missing argument, stack underflow). It always carries the
// offset and mark of the instruction that triggered it.
type ReconstructError struct {
	Mark   string
	Offset int
	Reason string
}

func (e *ReconstructError) Error() string {
	return fmt.Sprintf("reconstruct error in %s at offset %d: %s", e.Mark, e.Offset, e.Reason)
}

// Format implements fmt.Formatter; "%+v" additionally prints the
// owning mark on its own line, grounded on parser.Error.Format's
// richer %+v rendering.
func (e *ReconstructError) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "%s\n\tin code object %s", e.Error(), e.Mark)
			return
		}
		fmt.Fprint(f, e.Error())
	default:
		fmt.Fprint(f, e.Error())
	}
}

// LinkError aborts linking when a MAKE_FUNCTION/class-construction
// instruction references a mark absent from the CodeObjectMap
// (spec.md §7, kind 4).
type LinkError struct {
	Mark         string
	MissingMark  string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link error: %s references unknown code object %s", e.Mark, e.MissingMark)
}

// StackUnderflowError is a specialization of ReconstructError raised
// when an instruction pops more values than the expression stack holds.
func StackUnderflowError(mark string, offset int) *ReconstructError {
	return &ReconstructError{Mark: mark, Offset: offset, Reason: "stack underflow"}
}

// MissingArgError is a specialization of ReconstructError raised when
// an opcode that requires arg/argval is missing it.
func MissingArgError(mark string, offset int, opname string) *ReconstructError {
	return &ReconstructError{Mark: mark, Offset: offset, Reason: "missing argument for " + opname}
}
