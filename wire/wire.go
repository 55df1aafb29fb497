// Package wire implements the canonical binary serialization context used by
// every proof value: a streaming writer/reader pair over an in-memory byte
// slice, base-128 varuints, and length-prefixed byte strings.
//
// The cursor shape is modeled directly on the rubin-protocol teacher's
// consensus.cursor (clients/go/consensus/wire.go): a byte slice plus an
// integer read position, advanced by pointer receiver, with no io.Reader
// indirection because proof values are always held fully in memory.
package wire

import "github.com/certenlabs/sealproof/errs"

// Writer accumulates an encoded proof value. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the bytes written so far. The returned slice aliases the
// Writer's internal buffer and must not be mutated by the caller.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteBool appends a single canonical bool byte: 0x00 or 0x01.
func (w *Writer) WriteBool(b bool) {
	if b {
		w.buf = append(w.buf, 0x01)
	} else {
		w.buf = append(w.buf, 0x00)
	}
}

// WriteVarUint appends n as a base-128, little-endian, continuation-bit
// varuint in its minimal (canonical) form.
func (w *Writer) WriteVarUint(n uint64) {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			w.buf = append(w.buf, b|0x80)
			continue
		}
		w.buf = append(w.buf, b)
		return
	}
}

// WriteBytes appends b verbatim, with no length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteDigest appends a fixed 32-byte digest verbatim.
func (w *Writer) WriteDigest(d [32]byte) {
	w.buf = append(w.buf, d[:]...)
}

// WriteLenPrefixed appends varuint(len(b)) followed by b.
func (w *Writer) WriteLenPrefixed(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// Reader consumes bytes from a fixed buffer, tracking a read cursor.
type Reader struct {
	b   []byte
	pos int
}

// NewReader creates a Reader over b with the cursor at position 0.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.b) {
		return 0
	}
	return len(r.b) - r.pos
}

// AtEnd reports whether every byte of the buffer has been consumed. Callers
// performing a top-level deserialize should check this after decoding a
// value to reject trailing garbage.
func (r *Reader) AtEnd() bool {
	return r.Remaining() == 0
}

func (r *Reader) readExact(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errs.New(errs.KindFormat, "truncated input: need %d bytes, have %d", n, r.Remaining())
	}
	start := r.pos
	r.pos += n
	return r.b[start:r.pos], nil
}

// ReadBool reads a canonical bool byte, rejecting any value other than
// 0x00/0x01.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.readExact(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, errs.New(errs.KindFormat, "illegal bool byte 0x%02x", b[0])
	}
}

// ReadVarUint decodes a base-128 varuint, rejecting overlong (non-minimal)
// encodings and encodings that would overflow 64 bits.
func (r *Reader) ReadVarUint() (uint64, error) {
	var result uint64
	var shift uint
	var n int
	for {
		b, err := r.readExact(1)
		if err != nil {
			return 0, errs.New(errs.KindFormat, "truncated varuint")
		}
		n++
		if shift >= 64 || (shift == 63 && b[0] > 1) {
			return 0, errs.New(errs.KindFormat, "varuint overflow")
		}
		result |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
		if n > 10 {
			return 0, errs.New(errs.KindFormat, "varuint too long")
		}
	}
	if n > 1 && result>>(7*uint(n-1)) == 0 {
		return 0, errs.New(errs.KindFormat, "non-minimal varuint encoding")
	}
	return result, nil
}

// ReadBytes reads exactly n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.readExact(n)
}

// ReadDigest reads a fixed 32-byte digest.
func (r *Reader) ReadDigest() ([32]byte, error) {
	var d [32]byte
	b, err := r.readExact(32)
	if err != nil {
		return d, err
	}
	copy(d[:], b)
	return d, nil
}

// ReadLenPrefixed reads a varuint length followed by that many bytes.
func (r *Reader) ReadLenPrefixed() ([]byte, error) {
	n, err := r.ReadVarUint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()) {
		return nil, errs.New(errs.KindFormat, "length-prefixed value overruns buffer: len=%d remaining=%d", n, r.Remaining())
	}
	return r.readExact(int(n))
}
