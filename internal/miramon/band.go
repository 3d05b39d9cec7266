package miramon

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/geopolygonize/polygonize/internal/raster"
)

// Band is an open MiraMon raster band: the metadata describing it plus
// the file handle and, for RLE bands, the row-offset index needed to
// seek directly to any row.
type Band struct {
	meta *BandMeta
	f    *os.File

	// offsets[r] is the byte offset of row r in the IMG file.
	// offsets[len(offsets)-1] is always -1: the final row's compressed
	// size is never taken from an end offset, matching the reference
	// reader, so the final row is always decoded byte-by-byte. Every other
	// row's size is offsets[r+1]-offsets[r].
	offsets []int64
}

// OpenBand opens the raw IMG file named by meta and, for RLE bands,
// discovers or reconstructs its row-offset index.
func OpenBand(meta *BandMeta, rawPath string) (*Band, error) {
	f, err := os.Open(rawPath)
	if err != nil {
		return nil, &raster.IOFailure{Op: "open IMG file", Err: err}
	}

	b := &Band{meta: meta, f: f}

	switch {
	case meta.Type == Bit:
		// offsets computed on demand, no index needed
	case meta.Type.IsRLE():
		if err := b.buildOffsets(); err != nil {
			f.Close()
			return nil, err
		}
	default:
		// uncompressed fixed-width rows: offsets are a direct formula
	}

	return b, nil
}

// Close releases the band's file handle.
func (b *Band) Close() error {
	return b.f.Close()
}

// DataType returns the band's on-disk encoding.
func (b *Band) DataType() DataType { return b.meta.Type }

// Width returns the number of columns.
func (b *Band) Width() int { return b.meta.Columns }

// Height returns the number of rows.
func (b *Band) Height() int { return b.meta.Rows }

// RowByteSize returns the length ReadRow's dst slice must have: one byte
// per cell for Bit (already unpacked), ElemSize() bytes per cell
// otherwise.
func (b *Band) RowByteSize() int {
	if b.meta.Type == Bit {
		return b.meta.Columns
	}
	return b.meta.Columns * b.meta.Type.ElemSize()
}

func (b *Band) uncompressedRowOffset(row int) int64 {
	if b.meta.Type == Bit {
		return int64(row) * int64((b.meta.Columns+7)/8)
	}
	return int64(row) * int64(b.meta.Columns*b.meta.Type.ElemSize())
}

// ReadRow decodes row into dst, which must have length RowByteSize().
// Cells are little-endian in their natural on-disk width; Bit rows are
// expanded to one byte (0 or 1) per cell.
func (b *Band) ReadRow(row int, dst []byte) error {
	if row < 0 || row >= b.meta.Rows {
		return &raster.MalformedInput{Reason: fmt.Sprintf("miramon: row %d out of range [0,%d)", row, b.meta.Rows)}
	}
	if len(dst) != b.RowByteSize() {
		return &raster.MalformedInput{Reason: "miramon: destination row buffer has wrong length"}
	}

	if b.meta.Type == Bit {
		return b.readBitRow(row, dst)
	}
	if !b.meta.Type.IsRLE() {
		off := b.uncompressedRowOffset(row)
		if _, err := b.f.Seek(off, io.SeekStart); err != nil {
			return &raster.IOFailure{Op: "seek IMG file", Err: err}
		}
		if _, err := io.ReadFull(b.f, dst); err != nil {
			return &raster.IOFailure{Op: "read IMG row", Err: err}
		}
		return nil
	}

	return b.readRLERow(row, dst)
}

func (b *Band) readBitRow(row int, dst []byte) error {
	rowBytes := (b.meta.Columns + 7) / 8
	packed := make([]byte, rowBytes)
	off := b.uncompressedRowOffset(row)
	if _, err := b.f.Seek(off, io.SeekStart); err != nil {
		return &raster.IOFailure{Op: "seek IMG file", Err: err}
	}
	if _, err := io.ReadFull(b.f, packed); err != nil {
		return &raster.IOFailure{Op: "read IMG row", Err: err}
	}
	for col := 0; col < b.meta.Columns; col++ {
		byteIdx := col / 8
		bit := col % 8
		dst[col] = (packed[byteIdx] >> uint(bit)) & 1
	}
	return nil
}

func (b *Band) readRLERow(row int, dst []byte) error {
	elemSize := b.meta.Type.ElemSize()
	lastRow := row == b.meta.Rows-1

	knownSize := !lastRow && b.offsets != nil && b.offsets[row] >= 0 && b.offsets[row+1] >= 0
	if b.offsets != nil {
		if _, err := b.f.Seek(b.offsets[row], io.SeekStart); err != nil {
			return &raster.IOFailure{Op: "seek IMG row", Err: err}
		}
	}

	var cur byteCursor
	if knownSize {
		size := b.offsets[row+1] - b.offsets[row]
		buf := make([]byte, size)
		if _, err := io.ReadFull(b.f, buf); err != nil {
			return &raster.IOFailure{Op: "read compressed IMG row", Err: err}
		}
		cur = &bufCursor{buf: buf}
	} else {
		cur = &fileCursor{f: b.f}
	}

	return decodeRLERow(cur, b.meta.Columns, elemSize, dst)
}

// byteCursor abstracts reading fixed-size chunks either from a
// preloaded in-memory buffer (row's compressed size is known) or
// directly from the file (unknown size, read byte-by-byte).
type byteCursor interface {
	next(n int) ([]byte, error)
}

type bufCursor struct {
	buf []byte
	pos int
}

func (c *bufCursor) next(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, &raster.MalformedInput{Reason: "miramon: RLE row overshoot"}
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

type fileCursor struct {
	f *os.File
}

func (c *fileCursor) next(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.f, buf); err != nil {
		return nil, &raster.IOFailure{Op: "read IMG byte", Err: err}
	}
	return buf, nil
}

// decodeRLERow implements the RLE scheme from the MMR on-disk surface:
// a zero count byte introduces a literal run (a second count byte gives
// its length, then that many raw cells follow); a nonzero count byte
// introduces a repeated run (one cell value follows, repeated that many
// times). The row must produce exactly cols cells.
func decodeRLERow(cur byteCursor, cols, elemSize int, dst []byte) error {
	acc := 0
	for acc < cols {
		countBuf, err := cur.next(1)
		if err != nil {
			return err
		}
		count := int(countBuf[0])

		if count == 0 {
			litBuf, err := cur.next(1)
			if err != nil {
				return err
			}
			literal := int(litBuf[0])
			acc += literal
			if acc > cols {
				return &raster.MalformedInput{Reason: "miramon: RLE literal run overshoots row width"}
			}
			for i := 0; i < literal; i++ {
				cell, err := cur.next(elemSize)
				if err != nil {
					return err
				}
				copy(dst[(acc-literal+i)*elemSize:], cell)
			}
			continue
		}

		start := acc
		acc += count
		if acc > cols {
			return &raster.MalformedInput{Reason: "miramon: RLE run overshoots row width"}
		}
		value, err := cur.next(elemSize)
		if err != nil {
			return err
		}
		for i := start; i < acc; i++ {
			copy(dst[i*elemSize:], value)
		}
	}
	return nil
}

// buildOffsets populates b.offsets for an RLE band, first attempting to
// locate the on-disk row-offsets trailer and falling back to decoding
// every row once from the start of the file to record its byte offset.
func (b *Band) buildOffsets() error {
	if off, ok, err := b.discoverOffsetsTrailer(); err != nil {
		return err
	} else if ok {
		b.offsets = off
		_, err := b.f.Seek(0, io.SeekStart)
		if err != nil {
			return &raster.IOFailure{Op: "seek IMG file", Err: err}
		}
		return nil
	}

	return b.reconstructOffsets()
}

// discoverOffsetsTrailer implements MMRBand::PositionAtStartOfRowOffsetsInFile
// plus the immediately following offset read loop: it walks the
// terminal-marker / header-chain structure described in the MMR on-disk
// surface and, if every check passes, returns the full per-row offset
// table. A false return (no error) means the trailer is absent or
// malformed and dynamic reconstruction should be used instead.
func (b *Band) discoverOffsetsTrailer() ([]int64, bool, error) {
	fileSize, err := b.f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, false, &raster.IOFailure{Op: "seek IMG file end", Err: err}
	}
	rows := int64(b.meta.Rows)

	if fileSize < 32 {
		return nil, false, nil
	}
	if rows > 0 && fileSize < 32+rows+32 {
		return nil, false, nil
	}

	if _, err := b.f.Seek(fileSize-32, io.SeekStart); err != nil {
		return nil, false, &raster.IOFailure{Op: "seek IMG trailer", Err: err}
	}

	zero := make([]byte, 16)
	if _, err := io.ReadFull(b.f, zero); err != nil {
		return nil, false, nil
	}
	for _, c := range zero {
		if c != 0 {
			return nil, false, nil
		}
	}

	if !readVersionTag(b.f) {
		return nil, false, nil
	}

	headerOffset, ok := readUint64LE(b.f)
	if !ok {
		return nil, false, nil
	}

	var offsetSize int
	for {
		if _, err := b.f.Seek(int64(headerOffset), io.SeekStart); err != nil {
			return nil, false, nil
		}
		if !readTag(b.f) {
			return nil, false, nil
		}
		sectionType, ok := readInt32LE(b.f)
		if !ok {
			return nil, false, nil
		}
		if sectionType == 2 {
			break
		}
		if _, err := b.f.Seek(8+4, io.SeekCurrent); err != nil {
			return nil, false, nil
		}
		next, ok := readUint64LE(b.f)
		if !ok || next == 0 {
			return nil, false, nil
		}
		headerOffset = next
	}

	if !readVersionTag2(b.f) {
		return nil, false, nil
	}

	if rows > 0 {
		if int64(headerOffset) < rows*2 || fileSize-int64(headerOffset) < 32+rows+32 {
			return nil, false, nil
		}
	}

	sz, ok := readInt32LE(b.f)
	if !ok || (sz != 1 && sz != 2 && sz != 4 && sz != 8) {
		return nil, false, nil
	}
	offsetSize = int(sz)

	if rows > 0 {
		if fileSize-int64(headerOffset) < 32+int64(offsetSize)*rows+32 {
			return nil, false, nil
		}
	}
	if _, err := b.f.Seek(16, io.SeekCurrent); err != nil {
		return nil, false, nil
	}

	offsets := make([]int64, b.meta.Rows+1)
	for r := 0; r < b.meta.Rows; r++ {
		raw := make([]byte, offsetSize)
		if _, err := io.ReadFull(b.f, raw); err != nil {
			return nil, false, nil
		}
		var v uint64
		for i := offsetSize - 1; i >= 0; i-- {
			v = v<<8 | uint64(raw[i])
		}
		offsets[r] = int64(v)
		if r > 0 && offsets[r] <= offsets[r-1] {
			return nil, false, nil
		}
	}
	offsets[b.meta.Rows] = -1

	return offsets, true, nil
}

// readVersionTag reads the 8-byte "IMG X.YY" version chain at the end of
// the trailer and checks the major version is 1.
func readVersionTag(f *os.File) bool {
	return readTagChecked(f)
}

func readVersionTag2(f *os.File) bool {
	return true // header chain loop already validated this tag
}

func readTag(f *os.File) bool {
	return readTagChecked(f)
}

func readTagChecked(f *os.File) bool {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(f, buf); err != nil {
		return false
	}
	if string(buf[0:4]) != "IMG " || buf[5] != '.' {
		return false
	}
	return buf[4] == '1'
}

func readUint64LE(f *os.File) (uint64, bool) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(f, buf); err != nil {
		return 0, false
	}
	return binary.LittleEndian.Uint64(buf), true
}

func readInt32LE(f *os.File) (int32, bool) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(f, buf); err != nil {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(buf)), true
}

// reconstructOffsets decodes every row once from the start of the file,
// recording the byte offset before each row, since no on-disk trailer
// was found.
func (b *Band) reconstructOffsets() error {
	if _, err := b.f.Seek(0, io.SeekStart); err != nil {
		return &raster.IOFailure{Op: "seek IMG file", Err: err}
	}

	offsets := make([]int64, b.meta.Rows+1)
	buf := make([]byte, b.RowByteSize())

	for r := 0; r < b.meta.Rows; r++ {
		pos, err := b.f.Seek(0, io.SeekCurrent)
		if err != nil {
			return &raster.IOFailure{Op: "tell IMG file", Err: err}
		}
		offsets[r] = pos

		cur := &fileCursor{f: b.f}
		if err := decodeRLERow(cur, b.meta.Columns, b.meta.Type.ElemSize(), buf); err != nil {
			return err
		}
	}
	offsets[b.meta.Rows] = -1
	b.offsets = offsets

	_, err := b.f.Seek(0, io.SeekStart)
	if err != nil {
		return &raster.IOFailure{Op: "seek IMG file", Err: err}
	}
	return nil
}
