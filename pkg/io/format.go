package io

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/partition"
)

// Format names a graph file format.
type Format string

const (
	FormatEdgeList Format = "edges"
	FormatList     Format = "list"
	FormatDIMACS   Format = "dimacs"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatEdgeList, FormatList, FormatDIMACS, FormatJSON}

var formatByExt = map[string]Format{
	".txt":    FormatEdgeList,
	".edges":  FormatEdgeList,
	".list":   FormatList,
	".dimacs": FormatDIMACS,
	".col":    FormatDIMACS,
	".json":   FormatJSON,
}

// Instance is a graph with an optional initial partition.
type Instance struct {
	Graph     *graph.Adjacency
	Partition *partition.Partition // nil means the unit partition
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	if err := errs.ValidateFormat(s, names...); err != nil {
		return "", err
	}
	return Format(s), nil
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formatByExt[ext]; ok {
		return f, nil
	}
	return "", errs.New(errs.ErrCodeUnsupported, "cannot detect graph format of %q", path)
}

// Read decodes every instance in r. directed applies to the list format,
// which carries no direction marker; the other formats declare it.
func Read(r io.Reader, format Format, directed bool) ([]Instance, error) {
	switch format {
	case FormatEdgeList:
		gs, err := ReadEdgeList(r)
		if err != nil {
			return nil, err
		}
		return instances(gs), nil
	case FormatList:
		return ReadList(r, directed)
	case FormatDIMACS:
		g, err := ReadDIMACS(r)
		if err != nil {
			return nil, err
		}
		return []Instance{{Graph: g}}, nil
	case FormatJSON:
		inst, err := ReadJSON(r)
		if err != nil {
			return nil, err
		}
		return []Instance{inst}, nil
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unknown format %q", format)
	}
}

// ReadFile opens path and decodes it. An empty format is detected from the
// extension.
func ReadFile(path string, format Format, directed bool) ([]Instance, error) {
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	insts, err := Read(f, format, directed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return insts, nil
}

// Write encodes instances to w. DIMACS and JSON hold a single graph.
func Write(w io.Writer, format Format, insts ...Instance) error {
	switch format {
	case FormatEdgeList:
		gs := make([]*graph.Adjacency, len(insts))
		for i, inst := range insts {
			gs[i] = inst.Graph
		}
		return WriteEdgeList(w, gs...)
	case FormatList:
		return WriteList(w, insts...)
	case FormatDIMACS, FormatJSON:
		if len(insts) != 1 {
			return errs.New(errs.ErrCodeUnsupported, "%s holds exactly one graph, got %d", format, len(insts))
		}
		if format == FormatDIMACS {
			return WriteDIMACS(w, insts[0].Graph)
		}
		return WriteJSON(w, insts[0])
	default:
		return errs.New(errs.ErrCodeUnsupported, "unknown format %q", format)
	}
}

func open(path string) (*os.File, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func instances(gs []*graph.Adjacency) []Instance {
	out := make([]Instance, len(gs))
	for i, g := range gs {
		out[i] = Instance{Graph: g}
	}
	return out
}

func formatError(line int, format string, args ...any) error {
	return errs.New(errs.ErrCodeInvalidFormat, "line %d: %s", line, fmt.Sprintf(format, args...))
}
