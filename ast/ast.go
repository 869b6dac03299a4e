// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package ast holds the tagged-variant expression tree the
// reconstructor builds and the linker/emitter consume (spec.md §3).
// Every node has a (start_offset, end_offset, start_line) triple. The
// reconstructor fills it in for names and literals (BaseValue),
// attributes, functions, classes, imports, assignments, returns,
// raises, asserts and If/For/With blocks; the other expression nodes it
// builds from the stack (calls, containers, operators, slices, f-string
// parts, yield, await, except clauses) keep a zero triple.
package ast

import "fmt"

// Node is the interface every AST variant implements.
type Node interface {
	// Start returns the byte offset of the first instruction that
	// produced this node.
	Start() int
	// End returns the byte offset of the last instruction that produced
	// this node; for If/For/With blocks it is the offset the block's
	// jump lands on, just past the block.
	End() int
	// Line returns the source line of the first instruction.
	Line() int
	String() string
}

// base carries the (start_offset, end_offset, start_line) triple every
// node needs, grounded on how the teacher's node package gives every
// Expr a Pos()/End() pair.
type base struct {
	StartOffset int
	EndOffset   int
	StartLine   int
}

func (b base) Start() int { return b.StartOffset }
func (b base) End() int   { return b.EndOffset }
func (b base) Line() int  { return b.StartLine }

// SetSpan stamps the (start_offset, end_offset, start_line) triple onto
// a node after construction. base is unexported so other packages build
// nodes with zero-valued position fields by default; reconstruct uses
// SetSpan (promoted through the embedded field) to fill them in once the
// producing instruction range is known.
func (b *base) SetSpan(start, end, line int) {
	b.StartOffset = start
	b.EndOffset = end
	b.StartLine = line
}

// At returns a base spanning a single instruction.
func At(offset, line int) base {
	return base{StartOffset: offset, EndOffset: offset, StartLine: line}
}

// Span returns a base covering [start, end] at the given line.
func Span(start, end, line int) base {
	return base{StartOffset: start, EndOffset: end, StartLine: line}
}

// UnaryKind enumerates the unary operator variants (spec.md §3).
type UnaryKind int

const (
	UnaryNot UnaryKind = iota
	UnaryNegative
	UnaryInvert
)

func (k UnaryKind) String() string {
	switch k {
	case UnaryNot:
		return "not "
	case UnaryNegative:
		return "-"
	case UnaryInvert:
		return "~"
	default:
		return "?"
	}
}

// ContainerKind enumerates the container literal variants.
type ContainerKind int

const (
	List ContainerKind = iota
	Tuple
	Set
	Dict
)

// BaseValue is a literal or name, verbatim from an instruction's
// argval (spec.md §3).
type BaseValue struct {
	base
	Text string
}

func NewBaseValue(text string, offset, line int) *BaseValue {
	return &BaseValue{base: At(offset, line), Text: text}
}

func (n *BaseValue) String() string { return n.Text }

// Attribute is `parent.attr`.
type Attribute struct {
	base
	Parent Node
	Attr   string
}

func (n *Attribute) String() string { return n.Parent.String() + "." + n.Attr }

// Assign is `target operator value`, operator usually "=".
type Assign struct {
	base
	Target   Node
	Value    Node
	Operator string
}

func (n *Assign) String() string {
	op := n.Operator
	if op == "" {
		op = "="
	}
	return fmt.Sprintf("%s %s %s", n.Target.String(), op, n.Value.String())
}

// BinaryOperation is `left operator right`.
type BinaryOperation struct {
	base
	Left     Node
	Right    Node
	Operator string
}

func (n *BinaryOperation) String() string {
	return fmt.Sprintf("%s %s %s", n.Left.String(), n.Operator, n.Right.String())
}

// UnaryOperation wraps a single target expression.
type UnaryOperation struct {
	base
	Target Node
	Kind   UnaryKind
}

func (n *UnaryOperation) String() string {
	return n.Kind.String() + n.Target.String()
}

// Call is `callee(args...)`.
type Call struct {
	base
	Callee Node
	Args   []Node
}

func (n *Call) String() string {
	var s string
	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return n.Callee.String() + "(" + s + ")"
}

// Container is a list/tuple/set/dict literal. For Dict, Values holds
// alternating key/value pairs (even length).
type Container struct {
	base
	Values []Node
	Kind   ContainerKind
}

func (n *Container) String() string {
	switch n.Kind {
	case List:
		return bracket(n.Values, "[", "]", false)
	case Tuple:
		return bracket(n.Values, "(", ")", false)
	case Set:
		if len(n.Values) == 0 {
			return "set()"
		}
		return bracket(n.Values, "{", "}", false)
	case Dict:
		return bracket(n.Values, "{", "}", true)
	default:
		return bracket(n.Values, "[", "]", false)
	}
}

func bracket(values []Node, open, close string, asDict bool) string {
	s := open
	if asDict {
		for i := 0; i+1 < len(values); i += 2 {
			if i > 0 {
				s += ", "
			}
			s += values[i].String() + ": " + values[i+1].String()
		}
	} else {
		for i, v := range values {
			if i > 0 {
				s += ", "
			}
			s += v.String()
		}
	}
	return s + close
}

// Slice is `origin[parts...]`.
type Slice struct {
	base
	Origin Node
	Parts  []Node
}

func (n *Slice) String() string {
	s := ""
	for i, p := range n.Parts {
		if i > 0 {
			s += ":"
		}
		if p != nil {
			s += p.String()
		}
	}
	return n.Origin.String() + "[" + s + "]"
}

// FastVariable is a function parameter/local backed by a LOAD_FAST /
// STORE_FAST slot (spec.md §3).
type FastVariable struct {
	Index      int
	Name       string
	Annotation Node
}

func (v *FastVariable) String() string {
	if v.Annotation != nil {
		return v.Name + ": " + v.Annotation.String()
	}
	return v.Name
}

// Function is a def/lambda/comprehension body.
type Function struct {
	base
	Mark      string
	Name      string
	Args      []*FastVariable
	Defaults  []Node
	ReturnAnn Node
	Body      []Node
	IsAsync   bool
}

func (n *Function) String() string {
	s := ""
	if n.IsAsync {
		s += "async "
	}
	s += "def " + n.Name + "("
	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
		if i >= len(n.Args)-len(n.Defaults) {
			idx := i - (len(n.Args) - len(n.Defaults))
			s += "=" + n.Defaults[idx].String()
		}
	}
	s += ")"
	if n.ReturnAnn != nil {
		s += " -> " + n.ReturnAnn.String()
	}
	s += ":"
	return s
}

// Class is a class body.
type Class struct {
	base
	Mark    string
	Name    string
	Bases   []Node
	Members []Node
}

func (n *Class) String() string {
	s := "class " + n.Name
	if len(n.Bases) > 0 {
		s += "("
		for i, b := range n.Bases {
			if i > 0 {
				s += ", "
			}
			s += b.String()
		}
		s += ")"
	}
	return s + ":"
}

// Import is a module import, possibly `from X import fragment as
// alias` (spec.md §4.7).
type Import struct {
	base
	Module    string
	Fragments []string
	Aliases   []string
	FromList  bool
	IsStar    bool
}

func (n *Import) String() string {
	if len(n.Fragments) == 0 {
		s := "import " + n.Module
		if len(n.Aliases) == 1 && n.Aliases[0] != "" {
			s += " as " + n.Aliases[0]
		}
		return s
	}
	s := "from " + n.Module + " import "
	if n.IsStar {
		return s + "*"
	}
	for i, f := range n.Fragments {
		if i > 0 {
			s += ", "
		}
		s += f
		if i < len(n.Aliases) && n.Aliases[i] != "" && n.Aliases[i] != f {
			s += " as " + n.Aliases[i]
		}
	}
	return s
}

// If is an if/else statement.
type If struct {
	base
	Test   Node
	Body   []Node
	OrElse []Node
}

func (n *If) String() string { return "if " + n.Test.String() + ":" }

// For is a for statement, possibly async.
type For struct {
	base
	Iterator   Node
	Items      []Node
	FromOffset int
	ToOffset   int
	Body       []Node
	IsAsync    bool
}

func (n *For) String() string {
	s := ""
	if n.IsAsync {
		s += "async "
	}
	s += "for "
	for i, it := range n.Items {
		if i > 0 {
			s += ", "
		}
		s += it.String()
	}
	return s + " in " + n.Iterator.String() + ":"
}

// With is a with statement, possibly async, possibly aliased.
type With struct {
	base
	Item    Node
	Alias   Node
	Body    []Node
	IsAsync bool
}

func (n *With) String() string {
	s := ""
	if n.IsAsync {
		s += "async "
	}
	s += "with " + n.Item.String()
	if n.Alias != nil {
		s += " as " + n.Alias.String()
	}
	return s + ":"
}

// Return/Yield/Await all wrap a single value expression.
type Return struct {
	base
	Value Node
}

func (n *Return) String() string {
	if n.Value == nil {
		return "return"
	}
	return "return " + n.Value.String()
}

type Yield struct {
	base
	Value Node
}

func (n *Yield) String() string {
	if n.Value == nil {
		return "yield"
	}
	return "yield " + n.Value.String()
}

type Await struct {
	base
	Value Node
}

func (n *Await) String() string { return "await " + n.Value.String() }

// Assert is `assert test, msg`.
type Assert struct {
	base
	Test Node
	Msg  Node
}

func (n *Assert) String() string {
	s := "assert " + n.Test.String()
	if n.Msg != nil {
		s += ", " + n.Msg.String()
	}
	return s
}

// Raise is `raise exception`.
type Raise struct {
	base
	Exception Node
}

func (n *Raise) String() string {
	if n.Exception == nil {
		return "raise"
	}
	return "raise " + n.Exception.String()
}

// Except is an `except Exception as alias:` clause.
type Except struct {
	base
	Exception Node
	Alias     Node
	Body      []Node
}

func (n *Except) String() string {
	s := "except"
	if n.Exception != nil {
		s += " " + n.Exception.String()
	}
	if n.Alias != nil {
		s += " as " + n.Alias.String()
	}
	return s + ":"
}

// Alias is a bare `as name` target, e.g. of a with-item or import.
type Alias struct {
	base
	Target Node
	Name   string
}

func (n *Alias) String() string { return n.Name }

// Format is an f-string built from parts via BUILD_STRING.
type Format struct {
	base
	Parts []Node
}

func (n *Format) String() string {
	s := "f\""
	for _, p := range n.Parts {
		s += p.String()
	}
	return s + "\""
}

// FormatValue wraps a single interpolated expression inside a Format.
type FormatValue struct {
	base
	Value Node
}

func (n *FormatValue) String() string { return "{" + n.Value.String() + "}" }

// Jump is a placeholder node for a not-yet-resolved control-flow range
// (spec.md §3). The reconstructor and linker locate block extents by
// offset directly and never create one.
type Jump struct {
	base
	Target int
	Body   []Node
}

func (n *Jump) String() string { return fmt.Sprintf("<jump to %d>", n.Target) }
