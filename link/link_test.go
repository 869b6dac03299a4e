// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package link_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hacbit/pyrev-sub000"
	"github.com/hacbit/pyrev-sub000/ast"
	"github.com/hacbit/pyrev-sub000/link"
	"github.com/hacbit/pyrev-sub000/reconstruct"
)

func TestLink_MissingMarkReturnsLinkError(t *testing.T) {
	fn := &ast.Function{Mark: "<code object missing at 0x1, file \"x.py\", line 1>", Name: "missing"}
	fragments := map[string]*reconstruct.Fragment{
		pyrev.MainMark: {Body: []ast.Node{fn}, Traceback: pyrev.NewTraceback(pyrev.MainMark)},
	}
	_, err := link.Link(fragments)
	require.Error(t, err)
	var lerr *pyrev.LinkError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, fn.Mark, lerr.MissingMark)
}

func TestLink_MissingMainMarkReturnsLinkError(t *testing.T) {
	_, err := link.Link(map[string]*reconstruct.Fragment{})
	require.Error(t, err)
	var lerr *pyrev.LinkError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, pyrev.MainMark, lerr.MissingMark)
}

func TestLink_SplicesFunctionBodyByMark(t *testing.T) {
	const mark = `<code object add at 0x10, file "x.py", line 1>`
	fn := &ast.Function{Mark: mark, Name: "add"}
	body := []ast.Node{&ast.Return{Value: ast.NewBaseValue("a + b", 0, 1)}}

	fragments := map[string]*reconstruct.Fragment{
		pyrev.MainMark: {Body: []ast.Node{fn}, Traceback: pyrev.NewTraceback(pyrev.MainMark)},
		mark:           {Body: body, Traceback: pyrev.NewTraceback(mark)},
	}
	out, err := link.Link(fragments)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Same(t, fn, out[0])
	require.Equal(t, body, fn.Body)
}

func TestLink_PromoteParamsAnnotationWins(t *testing.T) {
	const mark = `<code object f at 0x10, file "x.py", line 1>`
	fn := &ast.Function{
		Mark: mark,
		Name: "f",
		Args: []*ast.FastVariable{{Name: "a", Annotation: ast.NewBaseValue("int", 0, 0)}},
	}
	tb := pyrev.NewTraceback(mark)
	tb.Locals[0] = &pyrev.FastLocalInfo{Name: "a", ProbablyArg: true}
	tb.Locals[1] = &pyrev.FastLocalInfo{Name: "b", ProbablyArg: true}

	fragments := map[string]*reconstruct.Fragment{
		pyrev.MainMark: {Body: []ast.Node{fn}, Traceback: pyrev.NewTraceback(pyrev.MainMark)},
		mark:           {Body: nil, Traceback: tb},
	}
	_, err := link.Link(fragments)
	require.NoError(t, err)
	require.Len(t, fn.Args, 2)
	require.Equal(t, "a", fn.Args[0].Name)
	require.Equal(t, 0, fn.Args[0].Index)
	require.Equal(t, "int", fn.Args[0].Annotation.String())
	require.Equal(t, "b", fn.Args[1].Name)
	require.Equal(t, 1, fn.Args[1].Index)
	require.Nil(t, fn.Args[1].Annotation)
}

func TestLink_RelocatesNestedForBodiesInnermostFirst(t *testing.T) {
	outer := &ast.For{Iterator: ast.NewBaseValue("rows", 0, 1), FromOffset: 0, ToOffset: 100}
	outer.SetSpan(0, 100, 1)
	inner := &ast.For{Iterator: ast.NewBaseValue("row", 10, 2), FromOffset: 10, ToOffset: 50}
	inner.SetSpan(10, 50, 2)
	innerStmt := ast.NewBaseValue("use(cell)", 20, 3)
	innerStmt.SetSpan(20, 20, 3)
	outerStmt := ast.NewBaseValue("done()", 60, 4)
	outerStmt.SetSpan(60, 60, 4)

	body := []ast.Node{outer, inner, innerStmt, outerStmt}
	fragments := map[string]*reconstruct.Fragment{
		pyrev.MainMark: {Body: body, Traceback: pyrev.NewTraceback(pyrev.MainMark)},
	}
	out, err := link.Link(fragments)
	require.NoError(t, err)
	require.Len(t, out, 1)

	resultOuter, ok := out[0].(*ast.For)
	require.True(t, ok)
	require.Len(t, resultOuter.Body, 2)
	require.Same(t, outerStmt, resultOuter.Body[1])

	resultInner, ok := resultOuter.Body[0].(*ast.For)
	require.True(t, ok)
	require.Len(t, resultInner.Body, 1)
	require.Same(t, innerStmt, resultInner.Body[0])
}
