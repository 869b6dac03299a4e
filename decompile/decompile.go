// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package decompile orchestrates the full disasm -> reconstruct ->
// link -> emit pipeline (spec.md §2). It lives outside the root pyrev
// package so that package can stay free of the subpackages it would
// otherwise need to import, avoiding an import cycle.
package decompile

import (
	"github.com/hacbit/pyrev-sub000"
	"github.com/hacbit/pyrev-sub000/ast"
	"github.com/hacbit/pyrev-sub000/disasm"
	"github.com/hacbit/pyrev-sub000/emit"
	"github.com/hacbit/pyrev-sub000/link"
	"github.com/hacbit/pyrev-sub000/reconstruct"
)

// Result is everything a caller might want back from a run: the final
// source text, the linked AST for the --ast-tree dump, and the
// intermediate CodeObjectMap for the --listing dump.
type Result struct {
	Source  string
	Body    []ast.Node
	Objects *pyrev.CodeObjectMap
}

// Decompile runs the full pipeline over raw CPython disassembly text.
func Decompile(text string) (*Result, error) {
	objects, err := disasm.Parse(text)
	if err != nil {
		return nil, err
	}

	fragments, err := reconstruct.Run(objects)
	if err != nil {
		return nil, err
	}

	body, err := link.Link(fragments)
	if err != nil {
		return nil, err
	}

	return &Result{
		Source:  emit.Source(body),
		Body:    body,
		Objects: objects,
	}, nil
}
