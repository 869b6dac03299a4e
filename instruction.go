// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pyrev

import "fmt"

// MainMark is the synthetic object mark assigned to the root (module
// level) code object, which never has its own "Disassembly of ..."
// header in the input text (spec.md §3).
const MainMark = "<main>"

// Instruction is a single disassembled record. Offset is unique within
// its owning CodeObject. A record printed without a line number carries
// the line of the nearest preceding numbered record in the same code
// object, so Line is never zero for a parsed record (spec.md §3).
type Instruction struct {
	Op      Opcode
	Opname  string
	Arg     int
	HasArg  bool
	Argval  string
	HasArgval bool
	Offset  int
	Line    int
	JumpTo  bool // ">>" marker present
}

func (ins Instruction) String() string {
	s := fmt.Sprintf("%6d %s", ins.Offset, ins.Opname)
	if ins.HasArg {
		s += fmt.Sprintf(" %d", ins.Arg)
	}
	if ins.HasArgval {
		s += fmt.Sprintf(" (%s)", ins.Argval)
	}
	return s
}

// CodeObject is an ordered sequence of instructions sharing one object
// mark (spec.md §3).
type CodeObject struct {
	Mark         string
	Instructions []Instruction
}

// ByOffset returns the index of the instruction at the given offset, or
// -1 if no instruction in this code object has that offset.
func (co *CodeObject) ByOffset(offset int) int {
	for i := range co.Instructions {
		if co.Instructions[i].Offset == offset {
			return i
		}
	}
	return -1
}

// CodeObjectMap is an insertion-ordered mark -> CodeObject mapping.
// Insertion order equals the order "Disassembly of ..." headers appear
// in the input, with MainMark always first (spec.md §3).
type CodeObjectMap struct {
	order []string
	byKey map[string]*CodeObject
}

// NewCodeObjectMap returns an empty, ready-to-use map.
func NewCodeObjectMap() *CodeObjectMap {
	return &CodeObjectMap{byKey: make(map[string]*CodeObject)}
}

// Open returns the CodeObject for mark, creating it (and recording
// insertion order) on first use.
func (m *CodeObjectMap) Open(mark string) *CodeObject {
	if co, ok := m.byKey[mark]; ok {
		return co
	}
	co := &CodeObject{Mark: mark}
	m.byKey[mark] = co
	m.order = append(m.order, mark)
	return co
}

// Get returns the CodeObject for mark and whether it was present.
func (m *CodeObjectMap) Get(mark string) (*CodeObject, bool) {
	co, ok := m.byKey[mark]
	return co, ok
}

// Marks returns every mark in insertion order.
func (m *CodeObjectMap) Marks() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of code objects in the map.
func (m *CodeObjectMap) Len() int {
	return len(m.order)
}

// Each iterates code objects in insertion order.
func (m *CodeObjectMap) Each(fn func(mark string, co *CodeObject)) {
	for _, mark := range m.order {
		fn(mark, m.byKey[mark])
	}
}
