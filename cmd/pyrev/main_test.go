// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `
  1           0 RESUME                   0
              2 LOAD_CONST               0 (1)
              4 STORE_NAME               0 (x)
`

func captureRun(t *testing.T, text string) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	err = run(text, w)
	require.NoError(t, w.Close())
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func resetFlags() {
	*flagListing = false
	*flagASTTree = false
}

func TestRun_DefaultPrintsSource(t *testing.T) {
	defer resetFlags()
	out := captureRun(t, sample)
	require.Equal(t, "x = 1\n", out)
}

func TestRun_ListingFlagPrintsInstructionCounts(t *testing.T) {
	defer resetFlags()
	*flagListing = true
	out := captureRun(t, sample)
	require.Contains(t, out, "<main>:")
	require.Contains(t, out, "total code objects")
}

func TestRun_ASTTreeFlagPrintsTree(t *testing.T) {
	defer resetFlags()
	*flagASTTree = true
	out := captureRun(t, sample)
	require.NotEmpty(t, out)
}

func TestRun_PropagatesDecompileError(t *testing.T) {
	defer resetFlags()
	err := run("not a valid disassembly line at all", os.Stdout)
	require.Error(t, err)
}
