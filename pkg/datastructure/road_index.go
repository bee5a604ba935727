package datastructure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/roadflow/pkg/util"
)

// RoadIndex maps a road id to its dense position in flow tables and transition tensors.
// the order is persisted in road_list.csv so tensors stay comparable across runs.
type RoadIndex struct {
	roads []int64
	index map[int64]Index
}

func NewRoadIndex(roads []int64) (*RoadIndex, error) {
	ri := &RoadIndex{
		roads: make([]int64, len(roads)),
		index: make(map[int64]Index, len(roads)),
	}
	for i, id := range roads {
		if _, ok := ri.index[id]; ok {
			return nil, fmt.Errorf("duplicate road %d in road index", id)
		}
		ri.roads[i] = id
		ri.index[id] = Index(i)
	}
	return ri, nil
}

func (ri *RoadIndex) Len() int {
	return len(ri.roads)
}

func (ri *RoadIndex) IndexOf(roadID int64) (Index, bool) {
	i, ok := ri.index[roadID]
	return i, ok
}

func (ri *RoadIndex) RoadID(i Index) int64 {
	return ri.roads[i]
}

func (ri *RoadIndex) Contains(roadID int64) bool {
	_, ok := ri.index[roadID]
	return ok
}

// Roads returns the road ids in index order. callers must not modify it.
func (ri *RoadIndex) Roads() []int64 {
	return ri.roads
}

func (ri *RoadIndex) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "road_id"); err != nil {
		return err
	}
	for _, id := range ri.roads {
		if _, err := fmt.Fprintln(bw, id); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (ri *RoadIndex) WriteToFile(filename string) error {
	return util.AtomicWriteFile(filename, ri.Write)
}

func ReadRoadIndex(r io.Reader) (*RoadIndex, error) {
	br := bufio.NewReader(r)
	header, err := util.ReadLine(br)
	if err != nil {
		return nil, fmt.Errorf("read road list header: %w", err)
	}
	if strings.TrimSpace(header) != "road_id" {
		return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "road list header %q, want road_id", header)
	}

	roads := make([]int64, 0)
	for lineNo := 2; ; lineNo++ {
		line, err := util.ReadLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "road list line %d", lineNo)
		}
		roads = append(roads, id)
	}
	return NewRoadIndex(roads)
}

func ReadRoadIndexFromFile(filename string) (*RoadIndex, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRoadIndex(f)
}
