// Package ast declares the types used to represent parsed SQL statements.
// A statement is held in a Tree, an arena of immutable nodes addressed by
// ID.  Analyses key their results by ID so that two structurally identical
// nodes are always distinct.
package ast

// This module is derived from the GO AST design pattern in
// https://golang.org/pkg/go/ast/
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

type Node interface {
	Pos() int // Position of first character belonging to the node.
	End() int // Position of first character immediately after the node.
	node()
}

type Loc struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// NoLoc marks a node that was synthesized rather than parsed.
var NoLoc = Loc{-1, -1}

func NewLoc(pos, end int) Loc {
	return Loc{pos, end}
}

func (l Loc) Pos() int { return l.First }
func (l Loc) End() int { return l.Last }

// Contains reports whether offset pos falls within l.
func (l Loc) Contains(pos int) bool {
	return l.First >= 0 && pos >= l.First && pos < l.Last
}

// IsValid is false for synthesized nodes.
func (l Loc) IsValid() bool {
	return l.First >= 0
}
