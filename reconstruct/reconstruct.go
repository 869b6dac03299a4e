// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package reconstruct executes a code object's instructions
// symbolically against an expression stack, emitting AST nodes
// (spec.md §4.4). It is grounded on gad/vm_loop.go's dispatch-loop
// shape (a switch over opcodes mutating a stack) but the "values" on
// the stack are ast.Node trees rather than runtime objects, and the
// loop's job is to build a tree, never to execute anything.
package reconstruct

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hacbit/pyrev-sub000"
	"github.com/hacbit/pyrev-sub000/ast"
)

// Fragment is the result of reconstructing one code object: its
// top-level statements and the Traceback the linker needs to promote
// parameters and mark async functions.
type Fragment struct {
	Body      []ast.Node
	Traceback *pyrev.Traceback
}

// Run reconstructs every code object in m independently (spec.md §5:
// reconstructing one code object never depends on another) and returns
// one Fragment per mark.
func Run(m *pyrev.CodeObjectMap) (map[string]*Fragment, error) {
	out := make(map[string]*Fragment, m.Len())
	var err error
	m.Each(func(mark string, co *pyrev.CodeObject) {
		if err != nil {
			return
		}
		tb := pyrev.AnalyseTraceback(co)
		r := &reconstructor{mark: mark}
		var body []ast.Node
		body, err = r.block(co, 0, len(co.Instructions))
		if err != nil {
			return
		}
		out[mark] = &Fragment{Body: body, Traceback: tb}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type reconstructor struct {
	mark  string
	stack []ast.Node
}

func (r *reconstructor) pop(offset int) (ast.Node, error) {
	if len(r.stack) == 0 {
		return nil, pyrev.StackUnderflowError(r.mark, offset)
	}
	v := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return v, nil
}

func (r *reconstructor) popN(n, offset int) ([]ast.Node, error) {
	out := make([]ast.Node, n)
	for i := n - 1; i >= 0; i-- {
		v, err := r.pop(offset)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *reconstructor) push(v ast.Node) { r.stack = append(r.stack, v) }

// pendingImportFragment is a transient stack value linking a STORE_*
// back to the Import it should finalize an alias on (spec.md §4.7).
type pendingImportFragment struct {
	Imp    *ast.Import
	Index  int
	offset int
	line   int
}

func (p *pendingImportFragment) Start() int    { return p.offset }
func (p *pendingImportFragment) End() int      { return p.offset }
func (p *pendingImportFragment) Line() int     { return p.line }
func (p *pendingImportFragment) String() string { return p.Imp.Fragments[p.Index] }

// block reconstructs instructions[start:end) into a sequence of
// top-level statement nodes. Recursion for If/For/With bodies is
// always on a strict subslice of this range (spec.md §4.4 "Block
// reconstruction policy"). Each call gets its own expression stack,
// swapped back in for the caller on return, so a nested body's
// unconsumed pushes never leak into or drain from its parent's.
func (r *reconstructor) block(co *pyrev.CodeObject, start, end int) ([]ast.Node, error) {
	instructions := co.Instructions
	var stmts []ast.Node

	outerStack := r.stack
	r.stack = nil
	defer func() { r.stack = outerStack }()

	for i := start; i < end; i++ {
		ins := instructions[i]

		switch ins.Op {
		case pyrev.OpLoadConst, pyrev.OpLoadName, pyrev.OpLoadGlobal, pyrev.OpLoadFast:
			text := strings.TrimPrefix(ins.Argval, "NULL + ")
			r.push(ast.NewBaseValue(text, ins.Offset, ins.Line))

		case pyrev.OpLoadAttr, pyrev.OpLoadMethod:
			parent, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(attributeNode(parent, ins))

		case pyrev.OpStoreName, pyrev.OpStoreGlobal, pyrev.OpStoreFast:
			value, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			stmt, err := r.finishStore(value, ins, ins.Op == pyrev.OpStoreFast, &stmts)
			if err != nil {
				return nil, err
			}
			if stmt != nil {
				stmts = append(stmts, stmt)
			}

		case pyrev.OpStoreAttr:
			parent, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			value, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			assign := &ast.Assign{Target: attributeNode(parent, ins), Value: value}
			assign.SetSpan(ins.Offset, ins.Offset, ins.Line)
			stmts = append(stmts, assign)

		case pyrev.OpBuildTuple, pyrev.OpBuildList, pyrev.OpBuildSet:
			values, err := r.popN(ins.Arg, ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.Container{Values: values, Kind: buildKind(ins.Op)})

		case pyrev.OpListExtend:
			exts, err := r.popN(ins.Arg, ins.Offset)
			if err != nil {
				return nil, err
			}
			base, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			container, ok := base.(*ast.Container)
			if !ok {
				container = &ast.Container{Kind: ast.List}
			}
			for _, e := range exts {
				container.Values = append(container.Values, splitTupleLiteral(e.String())...)
			}
			r.push(container)

		case pyrev.OpBuildMap:
			flat, err := r.popN(2*ins.Arg, ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.Container{Values: flat, Kind: ast.Dict})

		case pyrev.OpBuildConstKeyMap:
			keysNode, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			values, err := r.popN(ins.Arg, ins.Offset)
			if err != nil {
				return nil, err
			}
			keyTexts := splitTupleLiteral(keysNode.String())
			var flat []ast.Node
			for i := range values {
				var key ast.Node
				if i < len(keyTexts) {
					key = keyTexts[i]
				} else {
					key = ast.NewBaseValue("", ins.Offset, ins.Line)
				}
				flat = append(flat, key, values[i])
			}
			r.push(&ast.Container{Values: flat, Kind: ast.Dict})

		case pyrev.OpBuildSlice:
			n := ins.Arg
			if n == 0 {
				n = 2
			}
			parts, err := r.popN(n, ins.Offset)
			if err != nil {
				return nil, err
			}
			origin, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.Slice{Origin: origin, Parts: parts})

		case pyrev.OpBuildString:
			parts, err := r.popN(ins.Arg, ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.Format{Parts: parts})

		case pyrev.OpFormatValue:
			v, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.FormatValue{Value: v})

		case pyrev.OpBinaryOp, pyrev.OpCompareOp:
			right, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			left, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.BinaryOperation{Left: left, Right: right, Operator: ins.Argval})

		case pyrev.OpIsOp:
			right, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			left, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			op := "is"
			if ins.Arg != 0 {
				op = "is not"
			}
			r.push(&ast.BinaryOperation{Left: left, Right: right, Operator: op})

		case pyrev.OpContainsOp:
			right, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			left, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			op := "in"
			if ins.Arg != 0 {
				op = "not in"
			}
			r.push(&ast.BinaryOperation{Left: left, Right: right, Operator: op})

		case pyrev.OpUnaryNot, pyrev.OpUnaryNegative, pyrev.OpUnaryInvert:
			target, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.UnaryOperation{Target: target, Kind: unaryKind(ins.Op)})

		case pyrev.OpCall:
			args, err := r.popN(ins.Arg, ins.Offset)
			if err != nil {
				return nil, err
			}
			callee, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			if assertNode, ok := callee.(*ast.Assert); ok && len(args) >= 1 {
				assertNode.Msg = args[0]
				r.push(assertNode)
				continue
			}
			if bv, ok := callee.(*ast.BaseValue); ok && strings.Contains(bv.Text, " ") {
				r.push(callee)
				continue
			}
			r.push(&ast.Call{Callee: callee, Args: args})

		case pyrev.OpMakeFunction:
			markNode, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			name, startLine := parseCodeObjectMarker(markNode.String())
			fn := &ast.Function{Mark: markNode.String(), Name: name}
			if startLine == 0 {
				startLine = markNode.Line()
			}
			fn.SetSpan(markNode.Start(), ins.Offset, startLine)
			if strings.Contains(ins.Argval, "annotations") {
				annTuple, err := r.pop(ins.Offset)
				if err != nil {
					return nil, err
				}
				applyAnnotations(annTuple.String(), fn)
			}
			if strings.Contains(ins.Argval, "defaults") {
				defTuple, err := r.pop(ins.Offset)
				if err != nil {
					return nil, err
				}
				fn.Defaults = splitTupleLiteral(defTuple.String())
			}
			r.push(fn)

		case pyrev.OpReturnValue:
			v, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			ret := &ast.Return{Value: v}
			ret.SetSpan(ins.Offset, ins.Offset, ins.Line)
			stmts = append(stmts, ret)

		case pyrev.OpYieldValue:
			v, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.Yield{Value: v})

		case pyrev.OpLoadBuildClass:
			if i+1 >= end {
				return nil, pyrev.StackUnderflowError(r.mark, ins.Offset)
			}
			next := instructions[i+1]
			name, classLine := parseCodeObjectMarker(next.Argval)
			if classLine == 0 {
				classLine = ins.Line
			}
			cls := &ast.Class{Mark: next.Argval, Name: name}
			j := i + 1
			for j < end && instructions[j].Line == ins.Line {
				j++
			}
			endOffset := ins.Offset
			if j-1 >= 0 && j-1 < len(instructions) {
				endOffset = instructions[j-1].Offset
			}
			cls.SetSpan(ins.Offset, endOffset, classLine)
			r.push(cls)
			i = j - 1

		case pyrev.OpLoadAssertionError:
			test, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.Assert{Test: test})

		case pyrev.OpRaiseVarargs:
			if len(r.stack) == 0 {
				continue
			}
			tos := r.stack[len(r.stack)-1]
			switch v := tos.(type) {
			case *ast.Assert:
				r.stack = r.stack[:len(r.stack)-1]
				v.SetSpan(ins.Offset, ins.Offset, ins.Line)
				stmts = append(stmts, v)
			case *ast.BaseValue:
				r.stack = r.stack[:len(r.stack)-1]
				raise := &ast.Raise{Exception: v}
				raise.SetSpan(ins.Offset, ins.Offset, ins.Line)
				stmts = append(stmts, raise)
			default:
				r.stack = r.stack[:len(r.stack)-1]
				raise := &ast.Raise{Exception: v}
				raise.SetSpan(ins.Offset, ins.Offset, ins.Line)
				stmts = append(stmts, raise)
			}

		case pyrev.OpForIter:
			iterator, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			forNode := &ast.For{Iterator: iterator, FromOffset: ins.Offset, ToOffset: jumpTarget(ins)}
			forNode.SetSpan(ins.Offset, jumpTarget(ins), ins.Line)
			if i+1 < end && isStoreOp(instructions[i+1].Op) {
				nxt := instructions[i+1]
				forNode.Items = []ast.Node{ast.NewBaseValue(nxt.Argval, nxt.Offset, nxt.Line)}
				i++
			}
			stmts = append(stmts, forNode)

		case pyrev.OpUnpackSequence:
			targets, consumed := consumeStoreTargets(instructions, i+1, end, ins.Arg)
			i += consumed
			if len(stmts) > 0 {
				if forNode, ok := stmts[len(stmts)-1].(*ast.For); ok && forNode.Items == nil {
					forNode.Items = targets
					continue
				}
			}
			value, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			assign := &ast.Assign{Target: &ast.Container{Values: targets, Kind: ast.Tuple}, Value: value}
			assign.SetSpan(ins.Offset, ins.Offset, ins.Line)
			stmts = append(stmts, assign)

		case pyrev.OpGetAiter:
			iterator, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			sendIdx := i + 1
			for sendIdx < end && instructions[sendIdx].Op != pyrev.OpSend {
				sendIdx++
			}
			if sendIdx >= end {
				return nil, pyrev.MissingArgError(r.mark, ins.Offset, "SEND")
			}
			to := jumpTarget(instructions[sendIdx])
			forNode := &ast.For{Iterator: iterator, FromOffset: ins.Offset, ToOffset: to, IsAsync: true}
			forNode.SetSpan(ins.Offset, to, ins.Line)
			next := sendIdx + 1
			if next < end && isStoreOp(instructions[next].Op) {
				nxt := instructions[next]
				forNode.Items = []ast.Node{ast.NewBaseValue(nxt.Argval, nxt.Offset, nxt.Line)}
				next++
			}
			stmts = append(stmts, forNode)
			i = next - 1

		case pyrev.OpEndAsyncFor:
			// No-op here: unlike the original's exprs_stack-popping
			// finalizer, this port captures a For's Body generically
			// at link time from FromOffset/ToOffset (link.go's
			// relocateForBodies), the same mechanism synchronous
			// FOR_ITER loops already rely on. OpGetAiter above sets
			// that range, so the async loop's body is captured without
			// any work needed on END_ASYNC_FOR itself.

		case pyrev.OpGetAwaitable:
			target, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			r.push(&ast.Await{Value: target})
			if j, ok := skipPastSend(instructions, i+1, end); ok {
				i = j
			}

		case pyrev.OpBeforeWith, pyrev.OpBeforeAsyncWith:
			ctxMgr, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			withNode := &ast.With{Item: ctxMgr, IsAsync: ins.Op == pyrev.OpBeforeAsyncWith}
			next := i + 1
			if next < end && isStoreOp(instructions[next].Op) {
				a := instructions[next]
				withNode.Alias = ast.NewBaseValue(a.Argval, a.Offset, a.Line)
				next++
			}
			bodyEnd := next
			for bodyEnd < end && instructions[bodyEnd].Line != ins.Line {
				bodyEnd++
			}
			body, err := r.block(co, next, bodyEnd)
			if err != nil {
				return nil, err
			}
			withNode.Body = body
			endOffset := ins.Offset
			if bodyEnd < len(instructions) {
				endOffset = instructions[bodyEnd].Offset
			}
			withNode.SetSpan(ins.Offset, endOffset, ins.Line)
			stmts = append(stmts, withNode)
			i = bodyEnd - 1

		case pyrev.OpCheckExcMatch:
			excType, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			var alias ast.Node
			for j := i + 1; j < end; j++ {
				if isStoreOp(instructions[j].Op) {
					a := instructions[j]
					alias = ast.NewBaseValue(a.Argval, a.Offset, a.Line)
					break
				}
			}
			r.push(&ast.Except{Exception: excType, Alias: alias})

		case pyrev.OpImportName:
			fromListNode, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			if _, err = r.pop(ins.Offset); err != nil {
				return nil, err
			}
			imp := &ast.Import{Module: ins.Argval}
			imp.SetSpan(ins.Offset, ins.Offset, ins.Line)
			fl := fromListNode.String()
			if fl != "" && fl != "None" {
				imp.FromList = true
				if strings.Contains(fl, "*") {
					imp.IsStar = true
				}
			}
			r.push(imp)

		case pyrev.OpImportFrom:
			if len(r.stack) == 0 {
				return nil, pyrev.StackUnderflowError(r.mark, ins.Offset)
			}
			top := r.stack[len(r.stack)-1]
			imp, ok := top.(*ast.Import)
			if !ok {
				continue
			}
			imp.Fragments = append(imp.Fragments, ins.Argval)
			imp.Aliases = append(imp.Aliases, ins.Argval)
			imp.FromList = true
			r.push(&pendingImportFragment{Imp: imp, Index: len(imp.Fragments) - 1, offset: ins.Offset, line: ins.Line})

		case pyrev.OpPopJumpIfTrue, pyrev.OpPopJumpIfFalse:
			rawCond, err := r.pop(ins.Offset)
			if err != nil {
				return nil, err
			}
			if i+1 < end && instructions[i+1].Op == pyrev.OpLoadAssertionError {
				r.push(rawCond)
				continue
			}
			cond := rawCond
			if ins.Op == pyrev.OpPopJumpIfTrue {
				cond = &ast.UnaryOperation{Target: rawCond, Kind: ast.UnaryNot}
			}
			target := jumpTarget(ins)
			l1 := co.ByOffset(target)
			if l1 == -1 || l1 <= i {
				degenerate := &ast.If{Test: cond}
				degenerate.SetSpan(ins.Offset, ins.Offset, ins.Line)
				stmts = append(stmts, degenerate)
				continue
			}
			thenEnd := l1
			overallEnd := l1
			var elseBody []ast.Node
			if l1-1 >= i+1 && instructions[l1-1].Op == pyrev.OpJumpForward {
				jmp := instructions[l1-1]
				l2 := co.ByOffset(jumpTarget(jmp))
				if l2 != -1 && l2 > l1 {
					thenEnd = l1 - 1
					elseBody, err = r.block(co, l1, l2)
					if err != nil {
						return nil, err
					}
					overallEnd = l2
				}
			}
			thenBody, err := r.block(co, i+1, thenEnd)
			if err != nil {
				return nil, err
			}
			ifNode := &ast.If{Test: cond, Body: thenBody, OrElse: elseBody}
			ifNode.SetSpan(ins.Offset, target, ins.Line)
			stmts = append(stmts, ifNode)
			i = overallEnd - 1

		default:
			// All other 3.11/3.12 opcodes are no-ops for reconstruction
			// (RESUME, PUSH_NULL, PRECALL, COPY, SWAP, POP_TOP, NOP,
			// cache slots, GET_ANEXT, a bare SEND not paired with a
			// preceding GET_AITER/GET_AWAITABLE, JUMP_FORWARD used
			// outside the if/else pairing above).
		}
	}

	// Anything left on the stack when the block ends was never stored,
	// called as a sub-expression, or otherwise consumed - a bare class
	// object, a dangling call result POP_TOP discarded, an unattached
	// except clause. It becomes a statement in push order. An Import
	// is the one exception: IMPORT_FROM only peeks at it, so it lingers
	// under its own accumulated fragments even after finishStore already
	// appended it once.
	for _, leftover := range r.stack {
		if imp, ok := leftover.(*ast.Import); ok && containsNode(stmts, imp) {
			continue
		}
		stmts = append(stmts, leftover)
	}

	return stmts, nil
}

func containsNode(list []ast.Node, n ast.Node) bool {
	for _, s := range list {
		if s == n {
			return true
		}
	}
	return false
}

func (r *reconstructor) finishStore(value ast.Node, ins pyrev.Instruction, isFast bool, stmts *[]ast.Node) (ast.Node, error) {
	switch v := value.(type) {
	case *pendingImportFragment:
		imp := v.Imp
		frag := imp.Fragments[v.Index]
		if ins.Argval != frag {
			imp.Aliases[v.Index] = ins.Argval
		}
		imp.SetSpan(imp.Start(), ins.Offset, imp.Line())
		if len(*stmts) > 0 && (*stmts)[len(*stmts)-1] == ast.Node(imp) {
			return nil, nil
		}
		return imp, nil
	case *ast.Import:
		if len(v.Fragments) == 0 {
			last := v.Module
			if idx := strings.LastIndexByte(last, '.'); idx >= 0 {
				last = last[idx+1:]
			}
			if ins.Argval != last {
				v.Aliases = []string{ins.Argval}
			}
		}
		v.SetSpan(ins.Offset, ins.Offset, ins.Line)
		return v, nil
	case *ast.Function:
		if !isSyntheticName(v.Name) && ins.Argval == v.Name {
			return v, nil
		}
		assign := &ast.Assign{Target: ast.NewBaseValue(ins.Argval, ins.Offset, ins.Line), Value: v, Operator: "="}
		assign.SetSpan(ins.Offset, ins.Offset, ins.Line)
		return assign, nil
	default:
		target := ast.NewBaseValue(ins.Argval, ins.Offset, ins.Line)
		assign := &ast.Assign{Target: target, Value: value, Operator: "="}
		assign.SetSpan(ins.Offset, ins.Offset, ins.Line)
		return assign, nil
	}
}

func attributeNode(parent ast.Node, ins pyrev.Instruction) *ast.Attribute {
	attr := &ast.Attribute{Parent: parent, Attr: ins.Argval}
	attr.SetSpan(parent.Start(), ins.Offset, parent.Line())
	return attr
}

func buildKind(op pyrev.Opcode) ast.ContainerKind {
	switch op {
	case pyrev.OpBuildTuple:
		return ast.Tuple
	case pyrev.OpBuildSet:
		return ast.Set
	default:
		return ast.List
	}
}

func unaryKind(op pyrev.Opcode) ast.UnaryKind {
	switch op {
	case pyrev.OpUnaryNegative:
		return ast.UnaryNegative
	case pyrev.OpUnaryInvert:
		return ast.UnaryInvert
	default:
		return ast.UnaryNot
	}
}

func isStoreOp(op pyrev.Opcode) bool {
	switch op {
	case pyrev.OpStoreName, pyrev.OpStoreGlobal, pyrev.OpStoreFast, pyrev.OpStoreAttr:
		return true
	default:
		return false
	}
}

func isSyntheticName(name string) bool {
	switch name {
	case "<lambda>", "<genexpr>", "<listcomp>", "<setcomp>", "<dictcomp>":
		return true
	default:
		return false
	}
}

var jumpToRe = regexp.MustCompile(`to (\d+)`)

func jumpTarget(ins pyrev.Instruction) int {
	if m := jumpToRe.FindStringSubmatch(ins.Argval); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}
	return ins.Arg
}

// skipPastSend scans forward from idx for the paired SEND instruction and
// returns the index of the last instruction strictly before its jump
// target (spec.md §4.4 "GET_AITER / GET_AWAITABLE: mark the construct
// async; skip forward past the paired SEND by reading SEND's to argval").
// The intervening YIELD_VALUE/JUMP_BACKWARD_NO_INTERRUPT/RESUME machinery
// that drives the awaitable has no counterpart in this package's model
// and is never turned into AST nodes.
func skipPastSend(instructions []pyrev.Instruction, idx, end int) (int, bool) {
	for idx < end && instructions[idx].Op != pyrev.OpSend {
		idx++
	}
	if idx >= end {
		return 0, false
	}
	to := jumpTarget(instructions[idx])
	for idx+1 < end && instructions[idx+1].Offset < to {
		idx++
	}
	return idx, true
}

var markerRe = regexp.MustCompile(`<code object (\S+) at 0x[0-9A-Fa-f]+, file "[^"]*", line (\d+)>`)

func parseCodeObjectMarker(text string) (name string, line int) {
	m := markerRe.FindStringSubmatch(text)
	if m == nil {
		return text, 0
	}
	line, _ = strconv.Atoi(m[2])
	return m[1], line
}

// consumeStoreTargets peeks forward from idx, consuming up to n STORE_*
// instructions (recursing into nested UNPACK_SEQUENCE for nested tuple
// targets) to build an UNPACK_SEQUENCE's target list (spec.md §4.4).
func consumeStoreTargets(instructions []pyrev.Instruction, idx, limit, n int) ([]ast.Node, int) {
	var targets []ast.Node
	start := idx
	for len(targets) < n && idx < limit {
		ins := instructions[idx]
		if isStoreOp(ins.Op) {
			targets = append(targets, ast.NewBaseValue(ins.Argval, ins.Offset, ins.Line))
			idx++
		} else if ins.Op == pyrev.OpUnpackSequence {
			nested, consumed := consumeStoreTargets(instructions, idx+1, limit, ins.Arg)
			targets = append(targets, &ast.Container{Values: nested, Kind: ast.Tuple})
			idx = idx + 1 + consumed
		} else {
			break
		}
	}
	return targets, idx - start
}

// splitTupleLiteral splits a pretty-printed tuple literal's argval
// text (e.g. "(1, 3, 'asf')") into one BaseValue per element, respecting
// nested brackets and quotes (spec.md §4.4, LIST_EXTEND / BUILD_CONST_KEY_MAP).
func splitTupleLiteral(text string) []ast.Node {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := splitTopLevel(s)
	out := make([]ast.Node, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, ast.NewBaseValue(p, 0, 0))
	}
	return out
}

func splitTopLevel(s string) []string {
	var out []string
	depth := 0
	inQuote := byte(0)
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote != 0:
			if c == inQuote && (i == 0 || s[i-1] != '\\') {
				inQuote = 0
			}
		case c == '\'' || c == '"':
			inQuote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func applyAnnotations(tupleText string, fn *ast.Function) {
	parts := splitTupleLiteral(tupleText)
	for i := 0; i+1 < len(parts); i += 2 {
		name := strings.Trim(parts[i].String(), "'\"")
		ann := parts[i+1]
		if name == "return" {
			fn.ReturnAnn = ann
			continue
		}
		fn.Args = append(fn.Args, &ast.FastVariable{Name: name, Annotation: ann})
	}
}
