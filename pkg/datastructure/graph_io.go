package datastructure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/roadflow/pkg/util"
)

// graph file (bzip2 text):
//
//	numRoads numEdges
//	roadId length        (numRoads lines, vertex order)
//	fromRoadId toRoadId weight   (numEdges lines)

func (g *RoadGraph) Write(out io.Writer) error {
	bz, err := bzip2.NewWriter(out, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d\n", g.NumberOfRoads(), g.NumberOfEdges())

	for u := 0; u < g.NumberOfRoads(); u++ {
		r := g.roads[u]
		lengthF := strconv.FormatFloat(r.length, 'f', -1, 64)
		fmt.Fprintf(w, "%d %s\n", r.id, lengthF)
	}

	for u := Index(0); u < Index(g.NumberOfRoads()); u++ {
		tail := g.roads[u].id
		g.ForOutEdgesOf(u, func(e *OutEdge) {
			weightF := strconv.FormatFloat(e.weight, 'f', -1, 64)
			fmt.Fprintf(w, "%d %d %s\n", tail, g.roads[e.head].id, weightF)
		})
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func (g *RoadGraph) WriteGraph(filename string) error {
	return util.AtomicWriteFile(filename, g.Write)
}

func fields(s string) []string {
	return strings.Fields(s)
}

func ReadRoadGraph(in io.Reader) (*RoadGraph, error) {
	bz, err := bzip2.NewReader(in, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, fmt.Errorf("read graph header: %w", err)
	}
	tokens := fields(line)
	if len(tokens) != 2 {
		return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "graph header: expected 2 fields, got %d", len(tokens))
	}
	numRoads, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrMalformedRow, "graph header")
	}
	numEdges, err := strconv.Atoi(tokens[1])
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrMalformedRow, "graph header")
	}

	builder := NewGraphBuilder()
	for i := 0; i < numRoads; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read road %d: %w", i, err)
		}
		tokens := fields(line)
		if len(tokens) != 2 {
			return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "road line %d: expected 2 fields, got %d", i, len(tokens))
		}
		id, err := strconv.ParseInt(tokens[0], 10, 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "road line %d", i)
		}
		length, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "road line %d", i)
		}
		if err := builder.AddRoad(id, length); err != nil {
			return nil, err
		}
	}

	for i := 0; i < numEdges; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read edge %d: %w", i, err)
		}
		tokens := fields(line)
		if len(tokens) != 3 {
			return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "edge line %d: expected 3 fields, got %d", i, len(tokens))
		}
		from, err := strconv.ParseInt(tokens[0], 10, 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "edge line %d", i)
		}
		to, err := strconv.ParseInt(tokens[1], 10, 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "edge line %d", i)
		}
		weight, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "edge line %d", i)
		}
		if err := builder.AddEdge(from, to, weight); err != nil {
			return nil, err
		}
	}

	return builder.Build(), nil
}

func ReadGraph(filename string) (*RoadGraph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadRoadGraph(f)
}
