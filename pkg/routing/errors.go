package routing

import (
	"fmt"

	"github.com/lintang-b-s/roadflow/pkg/util"
)

// NoPathError is returned by ShortestPath and PathLength when destination is unreachable from origin.
type NoPathError struct {
	Origin      int64
	Destination int64
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from road %d to road %d", e.Origin, e.Destination)
}

func (e *NoPathError) Is(target error) bool {
	return target == util.ErrNoPath
}
