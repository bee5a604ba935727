package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"

	"github.com/lintang-b-s/roadflow/pkg"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/util"
)

var trajectoryHeader = []string{COL_VEHICLE_ID, COL_TRAJECTORY_ID, COL_TIME, COL_ROAD_ID, COL_SCENARIO}

// TrajectoryWriter appends recovered trajectory points as csv rows.
type TrajectoryWriter struct {
	cw     *csv.Writer
	record []string
}

func NewTrajectoryWriter(w io.Writer) *TrajectoryWriter {
	return &TrajectoryWriter{
		cw:     csv.NewWriter(w),
		record: make([]string, len(trajectoryHeader)),
	}
}

func (tw *TrajectoryWriter) WriteHeader() error {
	if err := tw.cw.Write(trajectoryHeader); err != nil {
		return err
	}
	return tw.Flush()
}

func (tw *TrajectoryWriter) Write(points []da.TrajectoryPoint) error {
	for _, p := range points {
		tw.record[0] = p.VehicleID
		tw.record[1] = strconv.Itoa(p.TrajectoryID)
		tw.record[2] = da.FormatTimestamp(p.Time)
		tw.record[3] = strconv.FormatInt(p.RoadID, 10)
		tw.record[4] = p.Scenario.String()
		if err := tw.cw.Write(tw.record); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TrajectoryWriter) Flush() error {
	tw.cw.Flush()
	return tw.cw.Error()
}

// TrajectoryReader streams the rows of a recovered trajectory file.
type TrajectoryReader struct {
	cr  *csv.Reader
	pos map[string]int
}

func NewTrajectoryReader(r io.Reader) (*TrajectoryReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read trajectory header: %w", err)
	}
	pos, err := columnPositions(header, COL_VEHICLE_ID, COL_TRAJECTORY_ID, COL_TIME, COL_ROAD_ID)
	if err != nil {
		return nil, err
	}
	return &TrajectoryReader{cr: cr, pos: pos}, nil
}

func (tr *TrajectoryReader) parse(record []string, lineNo int) (da.TrajectoryPoint, error) {
	var p da.TrajectoryPoint

	vehicleID, err := field(record, tr.pos[COL_VEHICLE_ID], lineNo, COL_VEHICLE_ID)
	if err != nil {
		return p, err
	}
	trajStr, err := field(record, tr.pos[COL_TRAJECTORY_ID], lineNo, COL_TRAJECTORY_ID)
	if err != nil {
		return p, err
	}
	timeStr, err := field(record, tr.pos[COL_TIME], lineNo, COL_TIME)
	if err != nil {
		return p, err
	}
	roadStr, err := field(record, tr.pos[COL_ROAD_ID], lineNo, COL_ROAD_ID)
	if err != nil {
		return p, err
	}

	trajectoryID, err := parseInteger(trajStr)
	if err != nil {
		return p, util.WrapErrorf(err, util.ErrMalformedRow, "line %d: %s", lineNo, COL_TRAJECTORY_ID)
	}
	t, err := da.ParseTimestamp(timeStr)
	if err != nil {
		return p, util.WrapErrorf(err, util.ErrMalformedRow, "line %d: time", lineNo)
	}
	roadID, err := parseInteger(roadStr)
	if err != nil {
		return p, util.WrapErrorf(err, util.ErrMalformedRow, "line %d: %s", lineNo, COL_ROAD_ID)
	}

	var scenario pkg.Scenario
	if i, ok := tr.pos[COL_SCENARIO]; ok && i < len(record) {
		scenario = pkg.Scenario(record[i])
	}

	return da.TrajectoryPoint{
		VehicleID:    vehicleID,
		TrajectoryID: int(trajectoryID),
		Time:         t,
		RoadID:       roadID,
		Scenario:     scenario,
	}, nil
}

// All yields every row in file order with its 0-based row index. iteration stops at the first error,
// which is yielded with index -1.
func (tr *TrajectoryReader) All() iter.Seq2[int, RowResult] {
	return func(yield func(int, RowResult) bool) {
		for i := 0; ; i++ {
			lineNo := i + 2
			record, err := tr.cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(-1, RowResult{Err: util.WrapErrorf(err, util.ErrMalformedRow, "line %d", lineNo)})
				return
			}
			p, err := tr.parse(record, lineNo)
			if err != nil {
				yield(-1, RowResult{Err: err})
				return
			}
			if !yield(i, RowResult{Point: p}) {
				return
			}
		}
	}
}

type RowResult struct {
	Point da.TrajectoryPoint
	Err   error
}

// HasOnlyTrajectoryHeader reports whether filename holds the header row and no points.
func HasOnlyTrajectoryHeader(filename string) (bool, error) {
	var header bytes.Buffer
	if err := NewTrajectoryWriter(&header).WriteHeader(); err != nil {
		return false, err
	}

	info, err := os.Stat(filename)
	if err != nil {
		return false, err
	}
	if info.Size() != int64(header.Len()) {
		return false, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return false, err
	}
	return bytes.Equal(data, header.Bytes()), nil
}
