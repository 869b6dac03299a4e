// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package disasm tokenizes the textual disassembly CPython's standard
// disassembler produces into a pyrev.CodeObjectMap (spec.md §4.1). It
// is a line-oriented regex scan rather than a hand-written
// recursive-descent scanner, grounded loosely on gad/parser's
// dedicated parser package but simplified because the input grammar is
// already a flat, line-delimited record format rather than a
// programming language.
package disasm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hacbit/pyrev-sub000"
)

var (
	headerRe = regexp.MustCompile(`^Disassembly of (.+>):\s*$`)
	instRe   = regexp.MustCompile(
		`^\s*(?:(\d+)\s+)?(>>)?\s*(\d+)\s+([A-Za-z][A-Za-z0-9_]*)(?:\s+(-?\d+))?(?:\s*\((.*)\))?\s*$`,
	)
)

// Parse tokenizes disassembly text into a CodeObjectMap. It fails only
// when the first non-blank record cannot be recognised as either a
// Disassembly-of header or an instruction record (spec.md §4.1); any
// later malformed record is collected into the returned error without
// aborting the scan, so callers see every violation at once.
func Parse(text string) (*pyrev.CodeObjectMap, error) {
	m := pyrev.NewCodeObjectMap()
	m.Open(pyrev.MainMark)

	var (
		errs       pyrev.ParseErrorList
		current    = pyrev.MainMark
		lastLine   int
		sawFirst   bool
	)

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if hm := headerRe.FindStringSubmatch(trimmed); hm != nil {
			current = hm[1]
			m.Open(current)
			lastLine = 0
			sawFirst = true
			continue
		}

		im := instRe.FindStringSubmatch(line)
		if im == nil {
			if !sawFirst {
				return nil, &pyrev.ParseError{Line: i + 1, Text: line, Msg: "unrecognised first record"}
			}
			errs.Add(i+1, line, "does not match instruction grammar")
			continue
		}
		sawFirst = true

		ins := pyrev.Instruction{JumpTo: im[2] == ">>"}

		if im[1] != "" {
			n, err := strconv.Atoi(im[1])
			if err != nil {
				errs.Add(i+1, line, "bad line number")
				continue
			}
			ins.Line = n
			lastLine = n
		} else {
			if lastLine == 0 {
				errs.Add(i+1, line, "instruction has no preceding line number")
				continue
			}
			ins.Line = lastLine
		}

		offset, err := strconv.Atoi(im[3])
		if err != nil {
			errs.Add(i+1, line, "bad offset")
			continue
		}
		ins.Offset = offset
		ins.Opname = im[4]
		ins.Op = pyrev.ResolveOpcode(ins.Opname)

		if im[5] != "" {
			arg, err := strconv.Atoi(im[5])
			if err == nil {
				ins.Arg = arg
				ins.HasArg = true
			}
		}
		if im[6] != "" {
			ins.Argval = im[6]
			ins.HasArgval = true
		}

		co := m.Open(current)
		co.Instructions = append(co.Instructions, ins)
	}

	return m, errs.Err()
}
