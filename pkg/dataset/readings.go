package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/util"
)

const (
	COL_VEHICLE_ID      = "vehicle_id"
	COL_TIME            = "time"
	COL_MATCHED_ROAD_ID = "matched_road_id"
	COL_TRAJECTORY_ID   = "trajectory_id"
	COL_ROAD_ID         = "road_id"
	COL_SCENARIO        = "scenario"
)

// columnPositions maps every required column to its position in header.
func columnPositions(header []string, required ...string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := pos[col]; !ok {
			return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "header is missing column %q", col)
		}
	}
	return pos, nil
}

func field(record []string, pos int, lineNo int, col string) (string, error) {
	if pos >= len(record) || strings.TrimSpace(record[pos]) == "" {
		return "", util.WrapErrorf(nil, util.ErrMalformedRow, "line %d: missing %s", lineNo, col)
	}
	return strings.TrimSpace(record[pos]), nil
}

// ReadReadings reads map-matched gps readings. the header must contain vehicle_id, time and
// matched_road_id, other columns are ignored. exact duplicate rows are kept, the segmenter drops them.
func ReadReadings(r io.Reader) ([]da.Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read readings header: %w", err)
	}
	pos, err := columnPositions(header, COL_VEHICLE_ID, COL_TIME, COL_MATCHED_ROAD_ID)
	if err != nil {
		return nil, err
	}

	readings := make([]da.Reading, 0, 1024)
	for lineNo := 2; ; lineNo++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "line %d", lineNo)
		}

		vehicleID, err := field(record, pos[COL_VEHICLE_ID], lineNo, COL_VEHICLE_ID)
		if err != nil {
			return nil, err
		}
		timeStr, err := field(record, pos[COL_TIME], lineNo, COL_TIME)
		if err != nil {
			return nil, err
		}
		roadStr, err := field(record, pos[COL_MATCHED_ROAD_ID], lineNo, COL_MATCHED_ROAD_ID)
		if err != nil {
			return nil, err
		}

		t, err := da.ParseTimestamp(timeStr)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "line %d: time", lineNo)
		}
		roadID, err := parseInteger(roadStr)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "line %d: %s", lineNo, COL_MATCHED_ROAD_ID)
		}

		readings = append(readings, da.NewReading(vehicleID, t, roadID))
	}
	return readings, nil
}

// parseInteger accepts "123" and the "123.0" float form of integer columns.
func parseInteger(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return id, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != float64(int64(f)) {
		return 0, err
	}
	return int64(f), nil
}

func ReadReadingsFromFile(filename string) ([]da.Reading, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	readings, err := ReadReadings(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return readings, nil
}

// GroupByVehicle groups readings per vehicle, vehicles in order of first appearance.
func GroupByVehicle(readings []da.Reading) ([]string, map[string][]da.Reading) {
	order := make([]string, 0)
	groups := make(map[string][]da.Reading)
	for _, r := range readings {
		if _, ok := groups[r.VehicleID]; !ok {
			order = append(order, r.VehicleID)
		}
		groups[r.VehicleID] = append(groups[r.VehicleID], r)
	}
	return order, groups
}
