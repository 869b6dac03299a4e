// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pyrev

import (
	"strconv"
	"strings"
)

// FastLocalInfo is the per-index bookkeeping a Traceback keeps for each
// fast-local slot observed in a code object (spec.md §3, §4.3).
type FastLocalInfo struct {
	Name             string
	StoredBeforeLoaded bool
	ProbablyArg      bool
}

// Traceback is the per-code-object record produced by the analyser
// pass: fast-local usage, jump-start -> jump-target pairs, and whether
// the code object is a generator/coroutine (spec.md §3, §4.3), grounded
// on gad's per-function SymbolTable bookkeeping (symbol_table.go).
type Traceback struct {
	Mark    string
	Locals  map[int]*FastLocalInfo
	Jumps   map[int]int
	IsAsync bool
}

// NewTraceback returns an empty, ready-to-use Traceback for mark.
func NewTraceback(mark string) *Traceback {
	return &Traceback{
		Mark:   mark,
		Locals: make(map[int]*FastLocalInfo),
		Jumps:  make(map[int]int),
	}
}

// AnalyseTraceback runs the single forward pass described in spec.md
// §4.3 over a code object's instructions.
func AnalyseTraceback(co *CodeObject) *Traceback {
	tb := NewTraceback(co.Mark)
	for _, ins := range co.Instructions {
		switch ins.Op {
		case OpLoadFast:
			info := tb.localInfo(ins.Arg, ins.Argval)
			if !info.StoredBeforeLoaded {
				info.ProbablyArg = true
			}
		case OpStoreFast:
			info, seen := tb.Locals[ins.Arg]
			if !seen {
				info = tb.localInfo(ins.Arg, ins.Argval)
				info.StoredBeforeLoaded = true
			}
			// A later STORE_FAST on an index already loaded does not
			// clear ProbablyArg: parameters may be reassigned.
		case OpReturnGenerator:
			tb.IsAsync = true
		}
		if isJumpOpcode(ins.Op) && ins.HasArg {
			target := ins.Arg
			if k := strings.LastIndex(ins.Argval, "to "); k >= 0 {
				if n, err := strconv.Atoi(ins.Argval[k+3:]); err == nil {
					target = n
				}
			}
			tb.Jumps[ins.Offset] = target
		}
	}
	return tb
}

func (tb *Traceback) localInfo(index int, name string) *FastLocalInfo {
	info, ok := tb.Locals[index]
	if !ok {
		info = &FastLocalInfo{Name: name}
		tb.Locals[index] = info
	}
	return info
}

func isJumpOpcode(op Opcode) bool {
	switch op {
	case OpJumpForward, OpPopJumpIfTrue, OpPopJumpIfFalse, OpForIter:
		return true
	default:
		return false
	}
}

// Args returns the fast-local indices marked ProbablyArg, sorted by
// index — the seed set the Linker promotes into a Function's parameter
// list (spec.md §4.5).
func (tb *Traceback) Args() []int {
	var out []int
	for idx, info := range tb.Locals {
		if info.ProbablyArg {
			out = append(out, idx)
		}
	}
	sortInts(out)
	return out
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
