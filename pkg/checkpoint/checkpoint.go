package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lintang-b-s/roadflow/pkg/util"
)

// Checkpoint is the resume cursor of a batch job: the last fully processed input index and
// a job specific value (running total for flow, byte offset of the output for the extractor).
type Checkpoint struct {
	Index    int64
	Value    int64
	HasValue bool
}

func New(index, value int64) Checkpoint {
	return Checkpoint{Index: index, Value: value, HasValue: true}
}

// ReplaceExt returns path with its extension replaced by .checkpoint, e.g. flow_a_b.csv -> flow_a_b.checkpoint.
func ReplaceExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".checkpoint"
}

// Sidecar returns path + ".checkpoint".
func Sidecar(path string) string {
	return path + ".checkpoint"
}

// Write replaces the checkpoint file atomically.
func Write(path string, cp Checkpoint) error {
	return util.AtomicWriteFile(path, func(w io.Writer) error {
		var err error
		if cp.HasValue {
			_, err = fmt.Fprintf(w, "%d %d\n", cp.Index, cp.Value)
		} else {
			_, err = fmt.Fprintf(w, "%d\n", cp.Index)
		}
		return err
	})
}

// Read parses "index value" or the single "index" form. anything else is ErrCheckpointCorrupted.
func Read(path string) (Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Checkpoint{}, err
	}
	tokens := strings.Fields(string(data))
	if len(tokens) < 1 || len(tokens) > 2 {
		return Checkpoint{}, util.WrapErrorf(nil, util.ErrCheckpointCorrupted, "checkpoint %s: %q", path, string(data))
	}

	var cp Checkpoint
	cp.Index, err = strconv.ParseInt(tokens[0], 10, 64)
	if err != nil {
		return Checkpoint{}, util.WrapErrorf(err, util.ErrCheckpointCorrupted, "checkpoint %s", path)
	}
	if cp.Index < -1 {
		return Checkpoint{}, util.WrapErrorf(nil, util.ErrCheckpointCorrupted, "checkpoint %s: negative index %d", path, cp.Index)
	}
	if len(tokens) == 2 {
		cp.Value, err = strconv.ParseInt(tokens[1], 10, 64)
		if err != nil {
			return Checkpoint{}, util.WrapErrorf(err, util.ErrCheckpointCorrupted, "checkpoint %s", path)
		}
		cp.HasValue = true
	}
	return cp, nil
}

// Resumable reports whether a previous run left output and checkpoint behind.
// exactly one of the two being present is ErrCheckpointCorrupted: restarting from zero would double count.
func Resumable(outputPath, checkpointPath string) (bool, error) {
	outputExists, err := util.FileExists(outputPath)
	if err != nil {
		return false, err
	}
	cpExists, err := util.FileExists(checkpointPath)
	if err != nil {
		return false, err
	}

	switch {
	case outputExists && cpExists:
		return true, nil
	case !outputExists && !cpExists:
		return false, nil
	case outputExists:
		return false, util.WrapErrorf(nil, util.ErrCheckpointCorrupted,
			"%s exists but checkpoint %s is missing", outputPath, checkpointPath)
	default:
		return false, util.WrapErrorf(nil, util.ErrCheckpointCorrupted,
			"checkpoint %s exists but %s is missing", checkpointPath, outputPath)
	}
}

// DonePath returns path + ".done". the marker exists only while the job that writes path has finished it.
func DonePath(path string) string {
	return path + ".done"
}

// MarkDone records path as finished, at its current size, after the last input index.
func MarkDone(path string, lastIndex int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return Write(DonePath(path), New(lastIndex, info.Size()))
}

// ClearDone drops the done marker of path before path is written again.
func ClearDone(path string) error {
	err := os.Remove(DonePath(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RequireDone returns nil only for a finished path. a missing marker is ErrNotFound,
// a marker recording another size than path has is ErrCheckpointCorrupted.
func RequireDone(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	donePath := DonePath(path)
	exists, err := util.FileExists(donePath)
	if err != nil {
		return err
	}
	if !exists {
		return util.WrapErrorf(nil, util.ErrNotFound, "%s is not finished, %s is missing", path, donePath)
	}

	cp, err := Read(donePath)
	if err != nil {
		return err
	}
	if !cp.HasValue || cp.Value != info.Size() {
		return util.WrapErrorf(nil, util.ErrCheckpointCorrupted,
			"%s records %d bytes but %s has %d", donePath, cp.Value, path, info.Size())
	}
	return nil
}
