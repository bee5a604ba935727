package util

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

// Is matches the error code, so errors.Is(err, ErrCheckpointCorrupted) holds for wrapped errors.
func (e *Error) Is(target error) bool {
	return e.code != nil && e.code == target
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrInternalServerError = errors.New("internal Server Error")
	ErrNotFound            = errors.New("your requested Item is not found")
	ErrBadParamInput       = errors.New("given Param is not valid")

	ErrNoPath              = errors.New("no path between road segments")
	ErrUnknownRoad         = errors.New("road segment is not in the road graph")
	ErrCheckpointCorrupted = errors.New("checkpoint and partial output are inconsistent")
	ErrMalformedRow        = errors.New("malformed input row")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

var MessageInternalServerError string = "internal server error"

func ReadLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
		} else {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AtomicWriteFile writes to a temp file next to filename, syncs it and renames it over filename.
// a crash mid-write leaves either the old content or the new one at filename, never a mix.
func AtomicWriteFile(filename string, write func(w io.Writer) error) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		cleanup()
		return err
	}
	// CreateTemp opens with 0600
	if err := tmp.Chmod(0644); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func FileExists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// DateRange returns every date from date1 to date2 inclusive, formatted YYYYMMDD.
func DateRange(date1, date2 string) ([]string, error) {
	d1, err := time.Parse("20060102", date1)
	if err != nil {
		return nil, WrapErrorf(err, ErrBadParamInput, "invalid start date %q", date1)
	}
	d2, err := time.Parse("20060102", date2)
	if err != nil {
		return nil, WrapErrorf(err, ErrBadParamInput, "invalid end date %q", date2)
	}
	if d2.Before(d1) {
		return nil, WrapErrorf(nil, ErrBadParamInput, "end date %s is before start date %s", date2, date1)
	}

	dates := make([]string, 0, int(d2.Sub(d1).Hours()/24)+1)
	for d := d1; !d.After(d2); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("20060102"))
	}
	return dates, nil
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

func StopConcurrentOperation(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
