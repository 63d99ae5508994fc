package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/partition"
)

// Document is the JSON shape of an [Instance]. The HTTP API accepts the same
// shape in request bodies.
//
// Weights, when present, holds the weight of each entry of Edges. It is
// omitted for graphs whose edges all weigh [graph.DefaultWeight].
type Document struct {
	Order    int      `json:"order" yaml:"order"`
	Directed bool     `json:"directed" yaml:"directed"`
	Edges    [][2]int `json:"edges" yaml:"edges"`
	Weights  []int    `json:"weights,omitempty" yaml:"weights,omitempty"`
	Cells    [][]int  `json:"cells,omitempty" yaml:"cells,omitempty"`
}

// NewDocument converts an instance into its JSON shape.
func NewDocument(inst Instance) Document {
	g := inst.Graph
	doc := Document{
		Order:    g.Order(),
		Directed: g.Directed(),
		Edges:    make([][2]int, 0, g.EdgeCount()),
	}
	weighted := g.HasWeights()
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, [2]int{e.From, e.To})
		if weighted {
			doc.Weights = append(doc.Weights, g.Weight(e.From, e.To))
		}
	}
	if inst.Partition != nil {
		doc.Cells = inst.Partition.CellSets()
	}
	return doc
}

// Instance validates the document and builds the graph and partition.
func (d Document) Instance() (Instance, error) {
	if err := errs.ValidateOrder(d.Order); err != nil {
		return Instance{}, err
	}
	if d.Weights != nil && len(d.Weights) != len(d.Edges) {
		return Instance{}, errs.New(errs.ErrCodeInvalidInput, "%d weights for %d edges", len(d.Weights), len(d.Edges))
	}
	g := graph.MustNew(d.Order, d.Directed)
	for i, e := range d.Edges {
		w := graph.DefaultWeight
		if d.Weights != nil {
			w = d.Weights[i]
		}
		if err := g.AddWeightedEdge(e[0], e[1], w); err != nil {
			return Instance{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "edge %d (%d, %d)", i, e[0], e[1])
		}
	}
	inst := Instance{Graph: g}
	if d.Cells != nil {
		p, err := partition.FromCells(d.Order, d.Cells)
		if err != nil {
			return Instance{}, errs.Wrap(errs.ErrCodeInvalidPartition, err, "cells")
		}
		inst.Partition = p
	}
	return inst, nil
}

// ReadJSON decodes a [Document] from r and builds its instance.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - The order is negative or too large
//   - An edge names a vertex outside [0, order)
//   - Weights is present but does not match Edges in length
//   - The cells do not partition [0, order)
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (Instance, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Instance{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode")
	}
	return doc.Instance()
}

// ImportJSON reads a JSON file at path. The error wraps the underlying cause
// with the file path for context.
func ImportJSON(path string) (Instance, error) {
	f, err := open(path)
	if err != nil {
		return Instance{}, err
	}
	defer f.Close()
	inst, err := ReadJSON(f)
	if err != nil {
		return Instance{}, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// WriteJSON encodes inst as an indented [Document].
func WriteJSON(w io.Writer, inst Instance) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(inst)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes inst to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(inst Instance, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, inst)
}
