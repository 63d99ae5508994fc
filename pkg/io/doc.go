// Package io reads and writes graphs, optionally with an initial partition,
// in the text formats canonic accepts.
//
// # Formats
//
// Edge list ([FormatEdgeList], .txt and .edges): a header line with the
// vertex count, optionally followed by "directed", then one "u v" pair per
// line. A blank line ends a graph, so one file may hold a batch. Lines
// starting with '#' are comments.
//
//	# the 4-cycle
//	4
//	0 1
//	1 2
//	2 3
//	3 0
//
// Neighbor list ([FormatList], .list): one "u : v1 v2 ;" line per vertex,
// optionally followed by an initial partition in printer form. A blank line
// ends a graph.
//
//	0 : 1 ;
//	1 : 0 2 ;
//	2 : 1 ;
//	[ 1 | 0 2 ]
//
// DIMACS ([FormatDIMACS], .dimacs and .col): "p edge n m" followed by
// 1-based "e u v" lines; "p arc" and "a u v" lines for digraphs. Lines
// starting with 'c' are comments.
//
// JSON ([FormatJSON], .json): a [Document].
//
//	{"order": 3, "directed": false, "edges": [[0, 1], [1, 2]], "cells": [[1], [0, 2]]}
//
// # Partitions
//
// The partition printer form, "[ 0 2 | 1 ]", lists cells in partition order
// with runs of three or more consecutive vertices written "a:b". Use
// [ParsePartition] to read it back.
//
// # Errors
//
// Malformed input yields an error coded [errors.ErrCodeInvalidFormat] that
// names the offending line; an initial partition that does not cover the
// graph is coded [errors.ErrCodeInvalidPartition]. Missing files are coded
// [errors.ErrCodeFileNotFound].
//
// [errors.ErrCodeInvalidFormat]: github.com/matzehuels/canonic/pkg/errors.ErrCodeInvalidFormat
// [errors.ErrCodeInvalidPartition]: github.com/matzehuels/canonic/pkg/errors.ErrCodeInvalidPartition
// [errors.ErrCodeFileNotFound]: github.com/matzehuels/canonic/pkg/errors.ErrCodeFileNotFound
package io
