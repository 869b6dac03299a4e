// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Command pyrev turns CPython 3.11/3.12 disassembly text back into
// best-effort Python source. It reads either a pre-dumped disassembly
// file or, given a .py/.pyc path and -py3, shells out to `python3 -m
// dis` to produce that text itself (spec.md §6), grounded on the
// teacher's cmd/gad REPL for the flag/liner/prompt shape.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/peterh/liner"
	cmdu "github.com/unapu-go/cmd-utils"

	"github.com/hacbit/pyrev-sub000/ast"
	"github.com/hacbit/pyrev-sub000/decompile"
	"github.com/hacbit/pyrev-sub000/emit"
)

var (
	flagListing = flag.Bool("listing", false, "print the per-mark instruction-count listing instead of source")
	flagASTTree = flag.Bool("ast-tree", false, "print the linked AST as a debug tree instead of source")
	flagPy3     = flag.Bool("py3", false, "treat the input path as a .py/.pyc file and run `python3 -m dis` on it")
	flagREPL    = flag.Bool("repl", false, "start an interactive disassembly-text REPL")
)

func main() {
	flag.Parse()

	if *flagREPL {
		runREPL()
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pyrev [flags] <disassembly-file>")
		os.Exit(2)
	}

	text, err := acquireText(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "pyrev:", err)
		os.Exit(1)
	}

	if err := run(text, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pyrev:", err)
		os.Exit(1)
	}
}

// acquireText returns the disassembly text to parse: either the raw
// contents of path, or (with -py3) the text `python3 -m dis path`
// prints, via unapu-go/cmd-utils's command builder.
func acquireText(path string) (string, error) {
	if !*flagPy3 {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	builder := cmdu.CmdBuilder{Name: "python3", Args: []string{"-m", "dis", path}}
	cmd, err := builder.Build(nil)
	if err != nil {
		return "", fmt.Errorf("building python3 -m dis command: %w", err)
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := cmd.StartContext(context.Background()); err != nil {
		return "", fmt.Errorf("starting python3 -m dis: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("running python3 -m dis: %w", err)
	}
	return stdout.String(), nil
}

func run(text string, out *os.File) error {
	result, err := decompile.Decompile(text)
	if err != nil {
		return err
	}

	switch {
	case *flagListing:
		fmt.Fprint(out, emit.Listing(result.Objects))
		fmt.Fprintf(out, "%s total code objects\n", humanize.Comma(int64(result.Objects.Len())))
	case *flagASTTree:
		fmt.Fprintln(out, ast.Tree("<main>", result.Body).String())
	default:
		fmt.Fprint(out, result.Source)
	}
	return nil
}

// runREPL starts an interactive loop: lines are collected until a blank
// line, and the collected block is fed to Decompile, letting you paste
// disassembly text fragments and see the reconstructed source
// immediately (grounded on cmd/gad's liner-backed REPL).
func runREPL() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("pyrev REPL — paste disassembly text, blank line to run, Ctrl-D to quit")
	for {
		var block string
		for {
			text, err := line.Prompt("pyrev> ")
			if err != nil {
				return
			}
			if text == "" {
				break
			}
			block += text + "\n"
			line.AppendHistory(text)
		}
		if block == "" {
			continue
		}
		if err := run(block, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "pyrev:", err)
		}
	}
}
