// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ast

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Tree renders nodes as a treeprint.Tree for the CLI's --ast-tree debug
// dump (SPEC_FULL.md §4.6). Unlike the teacher's dependency list (which
// declares treeprint but never imports it), this is the one place in
// the repo that genuinely needs a recursive tree printer.
func Tree(name string, nodes []Node) treeprint.Tree {
	root := treeprint.NewWithRoot(name)
	for _, n := range nodes {
		addNode(root, n)
	}
	return root
}

func addNode(parent treeprint.Tree, n Node) {
	if n == nil {
		parent.AddNode("<nil>")
		return
	}
	label := fmt.Sprintf("%T @%d: %s", n, n.Start(), n.String())
	switch v := n.(type) {
	case *Function:
		branch := parent.AddBranch(label)
		for _, b := range v.Body {
			addNode(branch, b)
		}
	case *Class:
		branch := parent.AddBranch(label)
		for _, m := range v.Members {
			addNode(branch, m)
		}
	case *If:
		branch := parent.AddBranch(label)
		then := branch.AddBranch("body")
		for _, b := range v.Body {
			addNode(then, b)
		}
		if len(v.OrElse) > 0 {
			els := branch.AddBranch("else")
			for _, b := range v.OrElse {
				addNode(els, b)
			}
		}
	case *For:
		branch := parent.AddBranch(label)
		for _, b := range v.Body {
			addNode(branch, b)
		}
	case *With:
		branch := parent.AddBranch(label)
		for _, b := range v.Body {
			addNode(branch, b)
		}
	case *Except:
		branch := parent.AddBranch(label)
		for _, b := range v.Body {
			addNode(branch, b)
		}
	default:
		parent.AddNode(label)
	}
}
