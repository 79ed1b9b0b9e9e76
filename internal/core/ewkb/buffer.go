package ewkb

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// reader is a cursor over one decode call's input. order is switched by
// every header read and restored by the caller once a nested element ends.
type reader struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
	depth int
}

func newReader(data []byte) *reader {
	return &reader{buf: data, order: binary.LittleEndian}
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) next(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d", n, r.pos, r.remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *reader) readFloat64() (float64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// readCount reads an element count and rejects counts whose minimal
// encoding (minSize bytes per element) would not fit in the input.
func (r *reader) readCount(minSize int) (int, error) {
	n, err := r.readUint32()
	if err != nil {
		return 0, err
	}
	if minSize > 0 && uint64(n)*uint64(minSize) > uint64(r.remaining()) {
		return 0, errors.Wrapf(ErrTooManyElements, "count %d at offset %d", n, r.pos-4)
	}
	return int(n), nil
}

// writer appends little-endian output.
type writer struct {
	buf   []byte
	depth int
}

func (w *writer) writeByte(b byte) { w.buf = append(w.buf, b) }

func (w *writer) writeUint32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *writer) writeFloat64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *writer) writeCount(n int) { w.writeUint32(uint32(n)) }
