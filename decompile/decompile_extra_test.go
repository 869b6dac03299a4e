// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package decompile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hacbit/pyrev-sub000/decompile"
)

func TestDecompile_BareCallStatement(t *testing.T) {
	text := `
  1           0 LOAD_NAME                0 (risky)
              2 CALL                     0
              4 POP_TOP
              6 LOAD_CONST               0 (None)
              8 RETURN_VALUE
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	require.Contains(t, result.Source, "risky()")
}

func TestDecompile_ClassWithMethod(t *testing.T) {
	text := `
  1           0 LOAD_BUILD_CLASS
              2 LOAD_CONST               0 (<code object Greeter at 0x30, file "x.py", line 1>)
              4 LOAD_CONST               1 ('Greeter')
              6 MAKE_FUNCTION            0
              8 LOAD_CONST               1 ('Greeter')
             10 CALL                     2
             12 STORE_NAME               0 (Greeter)

Disassembly of <code object Greeter at 0x30, file "x.py", line 1>:
  1           0 LOAD_CONST               0 (<code object greet at 0x40, file "x.py", line 2>)
              2 MAKE_FUNCTION            0
              4 STORE_NAME               0 (greet)
              6 LOAD_CONST               1 (None)
              8 RETURN_VALUE

Disassembly of <code object greet at 0x40, file "x.py", line 2>:
  2           0 LOAD_FAST                0 (self)
              2 LOAD_ATTR                0 (name)
              4 RETURN_VALUE
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	require.Contains(t, result.Source, "class Greeter")
	require.Contains(t, result.Source, "def greet(self)")
}

func TestDecompile_FStringFormatValue(t *testing.T) {
	text := `
  1           0 LOAD_NAME                0 (name)
              2 FORMAT_VALUE             0
              4 BUILD_STRING             1
              6 STORE_NAME               1 (msg)
`
	result, err := decompile.Decompile(text)
	require.NoError(t, err)
	require.Contains(t, result.Source, `msg = f"{name}"`)
}
