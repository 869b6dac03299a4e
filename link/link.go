// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package link reassembles the independently reconstructed per-mark
// fragments into one tree: splicing child Function/Class bodies in by
// mark, promoting fast-local parameters, and relocating For-body
// siblings by the offset range FOR_ITER recorded (spec.md §4.5). It is
// grounded on gad's two-pass compiler structure (symbol resolution
// before code generation), adapted here into a single recursive splice
// pass over an already-built tree rather than a second compiler pass.
package link

import (
	"github.com/hacbit/pyrev-sub000"
	"github.com/hacbit/pyrev-sub000/ast"
	"github.com/hacbit/pyrev-sub000/reconstruct"
)

// Link assembles every reconstructed fragment into the module's
// top-level statement list, fully spliced and with parameters promoted.
func Link(fragments map[string]*reconstruct.Fragment) ([]ast.Node, error) {
	l := &linker{
		relocated:   make(map[string][]ast.Node, len(fragments)),
		tracebacks:  make(map[string]*pyrev.Traceback, len(fragments)),
		splicedFn:   make(map[*ast.Function]bool),
		splicedCls:  make(map[*ast.Class]bool),
	}
	for mark, frag := range fragments {
		l.relocated[mark] = relocateForBodies(frag.Body)
		l.tracebacks[mark] = frag.Traceback
	}

	main, ok := l.relocated[pyrev.MainMark]
	if !ok {
		return nil, &pyrev.LinkError{Mark: pyrev.MainMark, MissingMark: pyrev.MainMark}
	}
	l.processList(main)
	if l.err != nil {
		return nil, l.err
	}
	return l.relocated[pyrev.MainMark], nil
}

type linker struct {
	relocated  map[string][]ast.Node
	tracebacks map[string]*pyrev.Traceback
	splicedFn  map[*ast.Function]bool
	splicedCls map[*ast.Class]bool
	err        error
}

func (l *linker) processList(list []ast.Node) {
	for _, n := range list {
		if l.err != nil {
			return
		}
		l.process(n)
	}
}

func (l *linker) process(n ast.Node) {
	if n == nil || l.err != nil {
		return
	}
	switch v := n.(type) {
	case *ast.Function:
		if v.Mark != "" && !l.splicedFn[v] {
			l.splicedFn[v] = true
			body, ok := l.relocated[v.Mark]
			if !ok {
				l.err = &pyrev.LinkError{Mark: v.Mark, MissingMark: v.Mark}
				return
			}
			v.Body = body
			if tb, ok2 := l.tracebacks[v.Mark]; ok2 {
				promoteParams(v, tb)
				v.IsAsync = v.IsAsync || tb.IsAsync
			}
		}
		l.processList(v.Body)

	case *ast.Class:
		if v.Mark != "" && !l.splicedCls[v] {
			l.splicedCls[v] = true
			members, ok := l.relocated[v.Mark]
			if !ok {
				l.err = &pyrev.LinkError{Mark: v.Mark, MissingMark: v.Mark}
				return
			}
			v.Members = members
		}
		l.processList(v.Members)

	default:
		for _, c := range children(v) {
			l.process(c)
		}
	}
}

// promoteParams turns the fast-locals a Traceback marked ProbablyArg
// into fn's parameter list, sorted by slot index. An argument that
// already carries an annotation (from MAKE_FUNCTION's tuple) keeps its
// Annotation and simply gains its Index; annotations always win over a
// bare promotion (spec.md §4.5).
func promoteParams(fn *ast.Function, tb *pyrev.Traceback) {
	if tb == nil {
		return
	}
	existing := make(map[string]*ast.FastVariable, len(fn.Args))
	for _, a := range fn.Args {
		existing[a.Name] = a
	}

	var promoted []*ast.FastVariable
	seen := make(map[*ast.FastVariable]bool)
	for _, idx := range tb.Args() {
		info := tb.Locals[idx]
		if a, ok := existing[info.Name]; ok {
			a.Index = idx
			promoted = append(promoted, a)
			seen[a] = true
		} else {
			promoted = append(promoted, &ast.FastVariable{Index: idx, Name: info.Name})
		}
	}
	for _, a := range fn.Args {
		if !seen[a] {
			promoted = append(promoted, a)
		}
	}
	fn.Args = promoted
}

// relocateForBodies repeatedly finds a For node with a still-empty Body
// in list and moves every sibling whose (start, end) falls strictly
// inside (FromOffset, ToOffset) into it, smallest ranges first so that
// nested loops settle before their enclosing loop claims them (spec.md
// §4.5).
func relocateForBodies(list []ast.Node) []ast.Node {
	body := append([]ast.Node(nil), list...)
	for {
		idx := -1
		smallest := 0
		for i, n := range body {
			f, ok := n.(*ast.For)
			if !ok || f.Body != nil {
				continue
			}
			span := f.ToOffset - f.FromOffset
			if idx == -1 || span < smallest {
				idx = i
				smallest = span
			}
		}
		if idx == -1 {
			return body
		}
		forNode := body[idx].(*ast.For)
		var captured, rest []ast.Node
		for _, n := range body {
			if n == ast.Node(forNode) {
				rest = append(rest, n)
				continue
			}
			if n.Start() > forNode.FromOffset && n.End() < forNode.ToOffset {
				captured = append(captured, n)
			} else {
				rest = append(rest, n)
			}
		}
		if captured == nil {
			captured = []ast.Node{}
		}
		forNode.Body = captured
		body = rest
	}
}

func children(n ast.Node) []ast.Node {
	switch v := n.(type) {
	case *ast.Attribute:
		return []ast.Node{v.Parent}
	case *ast.Assign:
		return []ast.Node{v.Target, v.Value}
	case *ast.BinaryOperation:
		return []ast.Node{v.Left, v.Right}
	case *ast.UnaryOperation:
		return []ast.Node{v.Target}
	case *ast.Call:
		return append([]ast.Node{v.Callee}, v.Args...)
	case *ast.Container:
		return append([]ast.Node(nil), v.Values...)
	case *ast.Slice:
		return append([]ast.Node{v.Origin}, v.Parts...)
	case *ast.Function:
		out := append([]ast.Node(nil), v.Body...)
		out = append(out, v.Defaults...)
		if v.ReturnAnn != nil {
			out = append(out, v.ReturnAnn)
		}
		for _, a := range v.Args {
			if a.Annotation != nil {
				out = append(out, a.Annotation)
			}
		}
		return out
	case *ast.Class:
		return append(append([]ast.Node(nil), v.Bases...), v.Members...)
	case *ast.If:
		out := append([]ast.Node{v.Test}, v.Body...)
		return append(out, v.OrElse...)
	case *ast.For:
		out := append([]ast.Node{v.Iterator}, v.Items...)
		return append(out, v.Body...)
	case *ast.With:
		out := []ast.Node{v.Item}
		if v.Alias != nil {
			out = append(out, v.Alias)
		}
		return append(out, v.Body...)
	case *ast.Return:
		if v.Value != nil {
			return []ast.Node{v.Value}
		}
	case *ast.Yield:
		if v.Value != nil {
			return []ast.Node{v.Value}
		}
	case *ast.Await:
		return []ast.Node{v.Value}
	case *ast.Assert:
		out := []ast.Node{v.Test}
		if v.Msg != nil {
			out = append(out, v.Msg)
		}
		return out
	case *ast.Raise:
		if v.Exception != nil {
			return []ast.Node{v.Exception}
		}
	case *ast.Except:
		var out []ast.Node
		if v.Exception != nil {
			out = append(out, v.Exception)
		}
		if v.Alias != nil {
			out = append(out, v.Alias)
		}
		return append(out, v.Body...)
	case *ast.Alias:
		return []ast.Node{v.Target}
	case *ast.Format:
		return append([]ast.Node(nil), v.Parts...)
	case *ast.FormatValue:
		return []ast.Node{v.Value}
	}
	return nil
}
