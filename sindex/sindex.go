// Package sindex implements the sample-name index (spec §4.10): a sidecar
// `.idx` file mapping a sample name to the block offset of its record in
// the main file, with a stable iteration order matching insertion order.
package sindex

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zhoulab/yame/errs"
)

// Pair is one (sample name, virtual offset) entry, in insertion order.
type Pair struct {
	Name   string
	Offset uint64
}

// Index is an in-memory sample name -> block offset map that preserves
// insertion order for iteration (spec §8 property 6). Keys are owned by
// the Index; there is no separate release step in Go, unlike the source's
// C ownership model (spec §4.10, §5).
type Index struct {
	order  []string
	byName map[string]uint64
}

// New returns an empty Index.
func New() *Index {
	return &Index{byName: make(map[string]uint64)}
}

// Insert adds name -> offset. It fails if name already exists (spec §4.10).
func (idx *Index) Insert(name string, offset uint64) error {
	if _, ok := idx.byName[name]; ok {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateSampleName, name)
	}
	idx.byName[name] = offset
	idx.order = append(idx.order, name)
	return nil
}

// Get returns the offset for name, or ErrSampleNotFound.
func (idx *Index) Get(name string) (uint64, error) {
	offset, ok := idx.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrSampleNotFound, name)
	}
	return offset, nil
}

// Pairs returns the (name, offset) entries in insertion order.
func (idx *Index) Pairs() []Pair {
	out := make([]Pair, len(idx.order))
	for i, name := range idx.order {
		out[i] = Pair{Name: name, Offset: idx.byName[name]}
	}
	return out
}

// Names returns the sample names in insertion order, the "sample-name list
// derived from an index file" spec §6 names as an external helper.
func (idx *Index) Names() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.order)
}

// Load reads an Index from a tab-separated file at path, in the format
// spec §6 fixes: one "sampleName\tvirtualOffset\n" line per entry. Opening
// a missing index file is a caller-recoverable condition (spec §7:
// "ResourceOpen... or 'not found' for optional index"); callers that want
// to proceed without an index should check os.IsNotExist on the returned
// error themselves.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrResourceOpen, err)
	}
	defer f.Close()

	idx := New()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		name, offsetStr, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: %q", errs.ErrInvalidIndexLine, lineNo, line)
		}
		offset, err := strconv.ParseUint(offsetStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", errs.ErrInvalidIndexLine, lineNo, err)
		}
		if err := idx.Insert(name, offset); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrShortRead, err)
	}

	return idx, nil
}

// Write serializes idx to path in insertion order.
func (idx *Index) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrResourceOpen, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range idx.Pairs() {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", p.Name, p.Offset); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// WriteTo serializes idx to an arbitrary writer, for callers that already
// have an open file or in-memory buffer.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range idx.Pairs() {
		n, err := fmt.Fprintf(w, "%s\t%d\n", p.Name, p.Offset)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
