package datastructure

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/lintang-b-s/roadflow/pkg/util"
)

// FlowTable counts trajectory entries per (time interval, road) for one calendar date.
// rows are the intervals of the date, columns the roads in road index order.
type FlowTable struct {
	intervals   []time.Time
	intervalPos map[int64]int // unix seconds -> row
	roads       []int64
	roadPos     map[int64]int
	counts      [][]int64
	interval    int // minute
}

func NewFlowTable(date string, intervalMinutes int, roads []int64) (*FlowTable, error) {
	intervals, err := GenerateTimeIntervals(date, intervalMinutes)
	if err != nil {
		return nil, err
	}
	return newFlowTable(intervals, intervalMinutes, roads)
}

func newFlowTable(intervals []time.Time, intervalMinutes int, roads []int64) (*FlowTable, error) {
	ft := &FlowTable{
		intervals:   intervals,
		intervalPos: make(map[int64]int, len(intervals)),
		roads:       make([]int64, len(roads)),
		roadPos:     make(map[int64]int, len(roads)),
		counts:      make([][]int64, len(intervals)),
		interval:    intervalMinutes,
	}
	for i, t := range intervals {
		ft.intervalPos[t.Unix()] = i
		ft.counts[i] = make([]int64, len(roads))
	}
	for j, id := range roads {
		if _, ok := ft.roadPos[id]; ok {
			return nil, fmt.Errorf("duplicate road %d in flow table", id)
		}
		ft.roads[j] = id
		ft.roadPos[id] = j
	}
	return ft, nil
}

func (ft *FlowTable) Intervals() []time.Time {
	return ft.intervals
}

func (ft *FlowTable) Roads() []int64 {
	return ft.roads
}

// Increment adds one to flow[RoundTime(t), roadID].
func (ft *FlowTable) Increment(t time.Time, roadID int64) error {
	bucket := RoundTime(t, ft.interval)
	i, ok := ft.intervalPos[bucket.Unix()]
	if !ok {
		return util.WrapErrorf(nil, util.ErrMalformedRow, "time %s is outside the flow table date", FormatTimestamp(t))
	}
	j, ok := ft.roadPos[roadID]
	if !ok {
		return util.WrapErrorf(nil, util.ErrUnknownRoad, "road %d has no flow column", roadID)
	}
	ft.counts[i][j]++
	return nil
}

func (ft *FlowTable) Get(t time.Time, roadID int64) int64 {
	i, ok := ft.intervalPos[RoundTime(t, ft.interval).Unix()]
	if !ok {
		return 0
	}
	j, ok := ft.roadPos[roadID]
	if !ok {
		return 0
	}
	return ft.counts[i][j]
}

// RoadSeries returns the counts of one road for every interval of the date.
func (ft *FlowTable) RoadSeries(roadID int64) ([]int64, bool) {
	j, ok := ft.roadPos[roadID]
	if !ok {
		return nil, false
	}
	series := make([]int64, len(ft.intervals))
	for i := range ft.intervals {
		series[i] = ft.counts[i][j]
	}
	return series, true
}

func (ft *FlowTable) Total() int64 {
	var total int64
	for i := range ft.counts {
		for _, c := range ft.counts[i] {
			total += c
		}
	}
	return total
}

// WriteCSV writes header "time,<road ids>" then one row per interval.
func (ft *FlowTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	record := make([]string, len(ft.roads)+1)
	record[0] = "time"
	for j, id := range ft.roads {
		record[j+1] = strconv.FormatInt(id, 10)
	}
	if err := cw.Write(record); err != nil {
		return err
	}

	for i, t := range ft.intervals {
		record[0] = FormatTimestamp(t)
		for j, c := range ft.counts[i] {
			record[j+1] = strconv.FormatInt(c, 10)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (ft *FlowTable) WriteToFile(filename string) error {
	return util.AtomicWriteFile(filename, ft.WriteCSV)
}

func ReadFlowTableCSV(r io.Reader, intervalMinutes int) (*FlowTable, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read flow table header: %w", err)
	}
	if len(header) < 1 {
		return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "empty flow table header")
	}
	roads := make([]int64, len(header)-1)
	for j, col := range header[1:] {
		id, err := strconv.ParseInt(col, 10, 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "flow table column %d", j+1)
		}
		roads[j] = id
	}

	intervals := make([]time.Time, 0)
	rows := make([][]int64, 0)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "flow table line %d", line)
		}
		t, err := ParseTimestamp(record[0])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "flow table line %d", line)
		}
		row := make([]int64, len(roads))
		for j := range roads {
			c, err := strconv.ParseInt(record[j+1], 10, 64)
			if err != nil {
				return nil, util.WrapErrorf(err, util.ErrMalformedRow, "flow table line %d column %d", line, j+1)
			}
			row[j] = c
		}
		intervals = append(intervals, t)
		rows = append(rows, row)
	}

	ft, err := newFlowTable(intervals, intervalMinutes, roads)
	if err != nil {
		return nil, err
	}
	ft.counts = rows
	return ft, nil
}

func ReadFlowTableFromFile(filename string, intervalMinutes int) (*FlowTable, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFlowTableCSV(f, intervalMinutes)
}

// Compatible reports whether other covers the same intervals and roads as ft.
func (ft *FlowTable) Compatible(other *FlowTable) bool {
	if len(ft.intervals) != len(other.intervals) || len(ft.roads) != len(other.roads) ||
		ft.interval != other.interval {
		return false
	}
	for i := range ft.intervals {
		if !ft.intervals[i].Equal(other.intervals[i]) {
			return false
		}
	}
	for j := range ft.roads {
		if ft.roads[j] != other.roads[j] {
			return false
		}
	}
	return true
}
