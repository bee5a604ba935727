package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

const (
	COL_LENGTH = "length"
	COL_FROM   = "from"
	COL_TO     = "to"
	COL_WEIGHT = "weight"
)

func readRecords(r io.Reader, name string, required ...string) (map[string]int, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", name, err)
	}
	pos, err := columnPositions(header, required...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, util.WrapErrorf(err, util.ErrMalformedRow, "%s", name)
	}
	return pos, records, nil
}

// ReadGraphCSV builds the road graph from a node list (road_id,length) and an edge list (from,to,weight).
// self-loops are skipped with a warning, the number skipped is returned.
func ReadGraphCSV(nodes, edges io.Reader, logger *zap.Logger) (*da.RoadGraph, int, error) {
	builder := da.NewGraphBuilder()

	pos, records, err := readRecords(nodes, "node list", COL_ROAD_ID, COL_LENGTH)
	if err != nil {
		return nil, 0, err
	}
	for i, record := range records {
		lineNo := i + 2
		idStr, err := field(record, pos[COL_ROAD_ID], lineNo, COL_ROAD_ID)
		if err != nil {
			return nil, 0, err
		}
		lengthStr, err := field(record, pos[COL_LENGTH], lineNo, COL_LENGTH)
		if err != nil {
			return nil, 0, err
		}
		id, err := parseInteger(idStr)
		if err != nil {
			return nil, 0, util.WrapErrorf(err, util.ErrMalformedRow, "node list line %d", lineNo)
		}
		length, err := strconv.ParseFloat(lengthStr, 64)
		if err != nil {
			return nil, 0, util.WrapErrorf(err, util.ErrMalformedRow, "node list line %d", lineNo)
		}
		if err := builder.AddRoad(id, length); err != nil {
			return nil, 0, util.WrapErrorf(err, util.ErrMalformedRow, "node list line %d", lineNo)
		}
	}

	pos, records, err = readRecords(edges, "edge list", COL_FROM, COL_TO, COL_WEIGHT)
	if err != nil {
		return nil, 0, err
	}
	skipped := 0
	for i, record := range records {
		lineNo := i + 2
		values := make([]string, 3)
		for j, col := range []string{COL_FROM, COL_TO, COL_WEIGHT} {
			values[j], err = field(record, pos[col], lineNo, col)
			if err != nil {
				return nil, 0, err
			}
		}
		from, err := parseInteger(values[0])
		if err != nil {
			return nil, 0, util.WrapErrorf(err, util.ErrMalformedRow, "edge list line %d", lineNo)
		}
		to, err := parseInteger(values[1])
		if err != nil {
			return nil, 0, util.WrapErrorf(err, util.ErrMalformedRow, "edge list line %d", lineNo)
		}
		weight, err := strconv.ParseFloat(values[2], 64)
		if err != nil {
			return nil, 0, util.WrapErrorf(err, util.ErrMalformedRow, "edge list line %d", lineNo)
		}

		if from == to {
			logger.Warn("skipping self-loop", zap.Int64("road_id", from), zap.Int("line", lineNo))
			skipped++
			continue
		}
		if err := builder.AddEdge(from, to, weight); err != nil {
			return nil, 0, fmt.Errorf("edge list line %d: %w", lineNo, err)
		}
	}

	return builder.Build(), skipped, nil
}
