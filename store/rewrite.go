package store

import (
	"fmt"

	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
	"github.com/zhoulab/yame/sindex"
)

// RewriteWithIndex implements the "rewrite with new index" pattern spec
// §4.11 names: used when a subcommand has already produced a reorganized
// output file at path by writing records with a Writer, and now needs a
// fresh .idx sidecar for it. It reopens path for sequential reading,
// calling Tell between reads exactly as spec describes, and zips the
// resulting offsets with names (the output's sample names, in the same
// order the records were written).
func RewriteWithIndex(path string, compressionType format.CompressionType, names []string) (*sindex.Index, error) {
	r, err := OpenReader(path, compressionType)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	idx := sindex.New()
	scratch := &column.Column{}
	for i := 0; ; i++ {
		offset := r.Tell()
		ok, err := r.ReadNext(scratch)
		if err != nil {
			return nil, err
		}
		if !ok {
			if i != len(names) {
				return nil, fmt.Errorf("%w: %d records but %d names", errs.ErrShapeMismatch, i, len(names))
			}
			break
		}
		if i >= len(names) {
			return nil, fmt.Errorf("%w: more records than names (%d)", errs.ErrShapeMismatch, len(names))
		}
		if err := idx.Insert(names[i], offset); err != nil {
			return nil, err
		}
	}

	if err := idx.Write(path + ".idx"); err != nil {
		return nil, err
	}
	return idx, nil
}
