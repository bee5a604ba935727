package datastructure

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"golang.org/x/exp/constraints"
)

type TransitionKey struct {
	Bucket      int
	Origin      Index
	Destination Index
}

func compareTransitionKey(a, b TransitionKey) int {
	if c := cmp.Compare(a.Bucket, b.Bucket); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Origin, b.Origin); c != 0 {
		return c
	}
	return cmp.Compare(a.Destination, b.Destination)
}

/*
TransitionTensor is the [bucket][origin][destination] count tensor of road-to-road transitions.
a dense buckets*n*n array is mostly zeros on real road networks (a road only transitions into its
few successors), so only nonzero cells are stored, keyed by (bucket, origin, destination).
*/
type TransitionTensor[T constraints.Integer] struct {
	buckets int
	roads   int
	counts  map[TransitionKey]T
}

func NewTransitionTensor[T constraints.Integer](buckets, roads int) *TransitionTensor[T] {
	return &TransitionTensor[T]{
		buckets: buckets,
		roads:   roads,
		counts:  make(map[TransitionKey]T),
	}
}

func (tt *TransitionTensor[T]) Shape() (int, int, int) {
	return tt.buckets, tt.roads, tt.roads
}

func (tt *TransitionTensor[T]) inBounds(bucket int, origin, destination Index) bool {
	return bucket >= 0 && bucket < tt.buckets && int(origin) < tt.roads && int(destination) < tt.roads
}

func (tt *TransitionTensor[T]) Increment(bucket int, origin, destination Index) error {
	if !tt.inBounds(bucket, origin, destination) {
		return fmt.Errorf("transition (%d, %d, %d) out of shape (%d, %d, %d)",
			bucket, origin, destination, tt.buckets, tt.roads, tt.roads)
	}
	tt.counts[TransitionKey{bucket, origin, destination}]++
	return nil
}

func (tt *TransitionTensor[T]) Get(bucket int, origin, destination Index) T {
	return tt.counts[TransitionKey{bucket, origin, destination}]
}

func (tt *TransitionTensor[T]) NonZero() int {
	return len(tt.counts)
}

func (tt *TransitionTensor[T]) Total() int64 {
	var total int64
	for _, c := range tt.counts {
		total += int64(c)
	}
	return total
}

// Add accumulates other into tt elementwise.
func (tt *TransitionTensor[T]) Add(other *TransitionTensor[T]) error {
	if tt.buckets != other.buckets || tt.roads != other.roads {
		return fmt.Errorf("cannot add tensor of shape (%d, %d, %d) to (%d, %d, %d)",
			other.buckets, other.roads, other.roads, tt.buckets, tt.roads, tt.roads)
	}
	for k, c := range other.counts {
		tt.counts[k] += c
	}
	return nil
}

// Keys returns the nonzero cells sorted by (bucket, origin, destination).
func (tt *TransitionTensor[T]) Keys() []TransitionKey {
	return slices.SortedFunc(maps.Keys(tt.counts), compareTransitionKey)
}

// Equal compares shape and every cell.
func (tt *TransitionTensor[T]) Equal(other *TransitionTensor[T]) bool {
	if tt.buckets != other.buckets || tt.roads != other.roads || len(tt.counts) != len(other.counts) {
		return false
	}
	for k, c := range tt.counts {
		if other.counts[k] != c {
			return false
		}
	}
	return true
}

// ForOrigin calls handle for every nonzero transition leaving origin, in key order.
func (tt *TransitionTensor[T]) ForOrigin(origin Index, handle func(k TransitionKey, count T)) {
	for _, k := range tt.Keys() {
		if k.Origin == origin {
			handle(k, tt.counts[k])
		}
	}
}

// tensor file (bzip2 text):
//
//	buckets roads nnz
//	bucket origin destination count   (nnz lines, sorted)

func (tt *TransitionTensor[T]) Write(out io.Writer) error {
	bz, err := bzip2.NewWriter(out, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d %d\n", tt.buckets, tt.roads, len(tt.counts))
	for _, k := range tt.Keys() {
		fmt.Fprintf(w, "%d %d %d %d\n", k.Bucket, k.Origin, k.Destination, tt.counts[k])
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func (tt *TransitionTensor[T]) WriteToFile(filename string) error {
	return util.AtomicWriteFile(filename, tt.Write)
}

func ReadTransitionTensor[T constraints.Integer](in io.Reader) (*TransitionTensor[T], error) {
	bz, err := bzip2.NewReader(in, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, fmt.Errorf("read tensor header: %w", err)
	}
	tokens := fields(line)
	if len(tokens) != 3 {
		return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "tensor header: expected 3 fields, got %d", len(tokens))
	}
	header := make([]int, 3)
	for i, tok := range tokens {
		header[i], err = strconv.Atoi(tok)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedRow, "tensor header")
		}
	}

	tt := NewTransitionTensor[T](header[0], header[1])
	for i := 0; i < header[2]; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read tensor cell %d: %w", i, err)
		}
		tokens := fields(line)
		if len(tokens) != 4 {
			return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "tensor cell %d: expected 4 fields, got %d", i, len(tokens))
		}
		vals := make([]int64, 4)
		for j, tok := range tokens {
			vals[j], err = strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return nil, util.WrapErrorf(err, util.ErrMalformedRow, "tensor cell %d", i)
			}
		}
		key := TransitionKey{Bucket: int(vals[0]), Origin: Index(vals[1]), Destination: Index(vals[2])}
		if !tt.inBounds(key.Bucket, key.Origin, key.Destination) {
			return nil, util.WrapErrorf(nil, util.ErrMalformedRow, "tensor cell %d out of shape", i)
		}
		tt.counts[key] = T(vals[3])
	}

	return tt, nil
}

func ReadTransitionTensorFromFile[T constraints.Integer](filename string) (*TransitionTensor[T], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTransitionTensor[T](f)
}

// RoadTransition is one nonzero tensor cell with road ids resolved.
type RoadTransition struct {
	Bucket      int
	Origin      int64
	Destination int64
	Count       int64
}
