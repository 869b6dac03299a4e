// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package reconstruct_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hacbit/pyrev-sub000"
	"github.com/hacbit/pyrev-sub000/ast"
	"github.com/hacbit/pyrev-sub000/disasm"
	"github.com/hacbit/pyrev-sub000/reconstruct"
)

func mainBody(t *testing.T, text string) []ast.Node {
	t.Helper()
	m, err := disasm.Parse(text)
	require.NoError(t, err)
	frags, err := reconstruct.Run(m)
	require.NoError(t, err)
	frag, ok := frags[pyrev.MainMark]
	require.True(t, ok)
	return frag.Body
}

func TestRun_AssertWithoutMessage(t *testing.T) {
	text := `
  1           0 LOAD_NAME                0 (x)
              2 LOAD_CONST               0 (0)
              4 COMPARE_OP               4 (>)
              6 POP_JUMP_IF_TRUE         3 (to 12)
              8 LOAD_ASSERTION_ERROR
             10 RAISE_VARARGS            1
        >>   12 LOAD_CONST               1 (None)
             14 RETURN_VALUE
`
	body := mainBody(t, text)
	require.Len(t, body, 2)
	assertNode, ok := body[0].(*ast.Assert)
	require.True(t, ok)
	require.Nil(t, assertNode.Msg)
	require.Equal(t, "x > 0", assertNode.Test.String())
}

func TestRun_AssertWithMessage(t *testing.T) {
	text := `
  1           0 LOAD_NAME                0 (x)
              2 POP_JUMP_IF_TRUE         3 (to 12)
              4 LOAD_ASSERTION_ERROR
              6 LOAD_CONST               0 ('x must be truthy')
              8 CALL                     1
             10 RAISE_VARARGS            1
        >>   12 LOAD_CONST               1 (None)
             14 RETURN_VALUE
`
	body := mainBody(t, text)
	require.Len(t, body, 2)
	assertNode, ok := body[0].(*ast.Assert)
	require.True(t, ok)
	require.NotNil(t, assertNode.Msg)
	require.Equal(t, "'x must be truthy'", assertNode.Msg.String())
}

func TestRun_ImportAccumulatesFragments(t *testing.T) {
	text := `
  1           0 LOAD_CONST               0 (0)
              2 LOAD_CONST               1 (('a', 'b'))
              4 IMPORT_NAME              0 (mod)
              6 IMPORT_FROM              1 (a)
              8 STORE_NAME               1 (a)
             10 IMPORT_FROM              2 (b)
             12 STORE_NAME               2 (b)
             14 POP_TOP
`
	body := mainBody(t, text)
	require.Len(t, body, 1)
	imp, ok := body[0].(*ast.Import)
	require.True(t, ok)
	require.Equal(t, "mod", imp.Module)
	require.Equal(t, []string{"a", "b"}, imp.Fragments)
	require.Equal(t, "from mod import a, b", imp.String())
}

func TestRun_ImportWithAlias(t *testing.T) {
	text := `
  1           0 LOAD_CONST               0 (0)
              2 LOAD_CONST               1 (None)
              4 IMPORT_NAME              0 (os)
              6 STORE_NAME               1 (sysos)
`
	body := mainBody(t, text)
	require.Len(t, body, 1)
	imp, ok := body[0].(*ast.Import)
	require.True(t, ok)
	require.Equal(t, "import os as sysos", imp.String())
}

func TestRun_ListExtendSplitsTupleLiteralIntoBaseList(t *testing.T) {
	text := `
  1           0 BUILD_LIST               0
              2 LOAD_CONST               0 ((1, 3, 'asf'))
              4 LIST_EXTEND              1
              6 STORE_NAME               0 (a)
`
	body := mainBody(t, text)
	require.Len(t, body, 1)
	assign, ok := body[0].(*ast.Assign)
	require.True(t, ok)
	container, ok := assign.Value.(*ast.Container)
	require.True(t, ok)
	require.Equal(t, ast.List, container.Kind)
	require.Equal(t, "[1, 3, 'asf']", container.String())
}

func TestRun_BuildConstKeyMapZipsKeysAndValues(t *testing.T) {
	text := `
  1           0 LOAD_CONST               0 (1)
              2 LOAD_CONST               1 (2)
              4 LOAD_CONST               2 (('a', 'b'))
              6 BUILD_CONST_KEY_MAP      2
              8 STORE_NAME               0 (d)
`
	body := mainBody(t, text)
	require.Len(t, body, 1)
	assign, ok := body[0].(*ast.Assign)
	require.True(t, ok)
	container, ok := assign.Value.(*ast.Container)
	require.True(t, ok)
	require.Equal(t, ast.Dict, container.Kind)
	require.Equal(t, "{'a': 1, 'b': 2}", container.String())
}

func TestRun_AsyncForMarksLoopAsync(t *testing.T) {
	text := `
  1           0 LOAD_NAME                0 (items)
              2 GET_AITER
        >>    4 SEND                     8 (to 14)
              6 STORE_FAST               0 (x)
              8 LOAD_FAST                0 (x)
             10 STORE_NAME               1 (total)
             12 JUMP_BACKWARD_NO_INTERRUPT 4 (to 4)
        >>   14 END_ASYNC_FOR
`
	body := mainBody(t, text)
	require.Len(t, body, 2)
	forNode, ok := body[0].(*ast.For)
	require.True(t, ok)
	require.True(t, forNode.IsAsync)
	require.Equal(t, "items", forNode.Iterator.String())
	require.Len(t, forNode.Items, 1)
	require.Equal(t, "x", forNode.Items[0].String())
	require.Equal(t, 2, forNode.FromOffset)
	require.Equal(t, 14, forNode.ToOffset)

	assign, ok := body[1].(*ast.Assign)
	require.True(t, ok)
	require.Equal(t, "total = x", assign.String())
}

func TestRun_GetAwaitableSkipsPastSend(t *testing.T) {
	text := `
  1           0 LOAD_NAME                0 (coro)
              2 CALL                     0
              4 GET_AWAITABLE            0
              6 LOAD_CONST               0 (None)
        >>    8 SEND                     2 (to 14)
             10 JUMP_BACKWARD_NO_INTERRUPT 2 (to 8)
        >>   14 STORE_NAME               1 (result)
`
	body := mainBody(t, text)
	require.Len(t, body, 1)
	assign, ok := body[0].(*ast.Assign)
	require.True(t, ok)
	await, ok := assign.Value.(*ast.Await)
	require.True(t, ok)
	require.Equal(t, "coro()", await.Value.String())
}

func TestRun_StackUnderflowReportsMark(t *testing.T) {
	text := `
  1           0 RETURN_VALUE
`
	m, err := disasm.Parse(text)
	require.NoError(t, err)
	_, err = reconstruct.Run(m)
	require.Error(t, err)
	var rerr *pyrev.ReconstructError
	require.ErrorAs(t, err, &rerr)
}
