// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package emit walks the linked AST and prints indented Python source
// text, grounded on gad/bytecode.go's Fprint (a recursive, indent-aware
// writer over a tree of values) but targeting Python syntax rather than
// a bytecode listing.
package emit

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hacbit/pyrev-sub000"
	"github.com/hacbit/pyrev-sub000/ast"
)

const indentUnit = "    "

// Source renders a module's (or a spliced function/class's) top-level
// statement list as indented Python source text (spec.md §4.6).
func Source(body []ast.Node) string {
	e := &emitter{}
	e.block(body)
	return e.buf.String()
}

type emitter struct {
	buf    strings.Builder
	indent int
}

func (e *emitter) writeLine(s string) {
	e.buf.WriteString(strings.Repeat(indentUnit, e.indent))
	e.buf.WriteString(s)
	e.buf.WriteString("\n")
}

func (e *emitter) block(list []ast.Node) {
	if len(list) == 0 {
		e.writeLine("pass")
		return
	}
	for _, n := range list {
		e.stmt(n)
	}
}

func (e *emitter) nested(header string, body []ast.Node) {
	e.writeLine(header)
	e.indent++
	e.block(body)
	e.indent--
}

func (e *emitter) stmt(n ast.Node) {
	switch v := n.(type) {
	case *ast.Function:
		e.nested(v.String(), v.Body)
	case *ast.Class:
		e.nested(v.String(), v.Members)
	case *ast.If:
		e.nested(v.String(), v.Body)
		if len(v.OrElse) > 0 {
			e.nested("else:", v.OrElse)
		}
	case *ast.For:
		e.nested(v.String(), v.Body)
	case *ast.With:
		e.nested(v.String(), v.Body)
	case *ast.Except:
		e.nested(v.String(), v.Body)
	default:
		if n == nil {
			return
		}
		e.writeLine(n.String())
	}
}

// Listing renders a CodeObjectMap as a one-line-per-mark instruction
// count summary, the "colour-free listing" debug mode the CLI's
// --listing flag exposes (SPEC_FULL.md §4.6). It wires go-humanize for
// thousands separators, a library the teacher's go.mod declares but
// never imports.
func Listing(m *pyrev.CodeObjectMap) string {
	var b strings.Builder
	m.Each(func(mark string, co *pyrev.CodeObject) {
		b.WriteString(mark)
		b.WriteString(": ")
		b.WriteString(humanize.Comma(int64(len(co.Instructions))))
		b.WriteString(" instructions\n")
	})
	return b.String()
}
