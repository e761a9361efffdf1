package sliceops

import "github.com/zhoulab/yame/codec"

// The functions in this file implement range/index/mask slicing for the
// two bit-packed formats (0: 1 bit/row, 6: 2 bits/row), generalized over
// bitsPerRow so the same code serves both (spec §4.8's 2-bit field and
// §4.2's 1-bit field pack the same way: low bits first, rowsPerByte =
// 8/bitsPerRow rows per byte).

func rowsPerByte(bitsPerRow int) int {
	return 8 / bitsPerRow
}

func packedLen(n, bitsPerRow int) int {
	rpb := rowsPerByte(bitsPerRow)
	return (n + rpb - 1) / rpb
}

func getField(payload []byte, i, bitsPerRow int) byte {
	rpb := rowsPerByte(bitsPerRow)
	shift := uint(i%rpb) * uint(bitsPerRow)
	mask := byte(1<<uint(bitsPerRow) - 1)
	return (payload[i/rpb] >> shift) & mask
}

func setField(payload []byte, i, bitsPerRow int, v byte) {
	rpb := rowsPerByte(bitsPerRow)
	shift := uint(i%rpb) * uint(bitsPerRow)
	mask := byte(1<<uint(bitsPerRow) - 1)
	byteIdx := i / rpb
	payload[byteIdx] = payload[byteIdx]&^(mask<<shift) | ((v & mask) << shift)
}

func fieldSliceRange(payload []byte, b, e, bitsPerRow int) []byte {
	n := e - b + 1
	out := make([]byte, packedLen(n, bitsPerRow))
	for i := range n {
		setField(out, i, bitsPerRow, getField(payload, b+i, bitsPerRow))
	}
	return out
}

func fieldSliceIndices(payload []byte, indices []int, bitsPerRow int) []byte {
	out := make([]byte, packedLen(len(indices), bitsPerRow))
	for i, idx := range indices {
		setField(out, i, bitsPerRow, getField(payload, idx, bitsPerRow))
	}
	return out
}

func fieldSliceMask(payload, mask []byte, n, bitsPerRow int) []byte {
	var rows []byte
	for i := range n {
		if (codec.Fmt0{}).GetBit(mask, i) {
			rows = append(rows, getField(payload, i, bitsPerRow))
		}
	}
	out := make([]byte, packedLen(len(rows), bitsPerRow))
	for i, v := range rows {
		setField(out, i, bitsPerRow, v)
	}
	return out
}
