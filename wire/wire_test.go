package wire

import (
	"bytes"
	"testing"

	"github.com/certenlabs/sealproof/errs"
)

func TestVarUintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 16384, 1 << 40, ^uint64(0)}
	for _, n := range cases {
		w := NewWriter()
		w.WriteVarUint(n)
		r := NewReader(w.Bytes())
		got, err := r.ReadVarUint()
		if err != nil {
			t.Fatalf("ReadVarUint(%d): %v", n, err)
		}
		if got != n {
			t.Fatalf("round trip %d != %d", n, got)
		}
		if !r.AtEnd() {
			t.Fatalf("expected reader exhausted after %d", n)
		}
	}
}

func TestVarUintRejectsNonMinimal(t *testing.T) {
	// 0x80 0x00 encodes 0 non-minimally (should be just 0x00).
	r := NewReader([]byte{0x80, 0x00})
	if _, err := r.ReadVarUint(); !errs.Is(err, errs.KindFormat) {
		t.Fatalf("expected Format error for non-minimal varuint, got %v", err)
	}
}

func TestVarUintRejectsTruncated(t *testing.T) {
	r := NewReader([]byte{0x80})
	if _, err := r.ReadVarUint(); !errs.Is(err, errs.KindFormat) {
		t.Fatalf("expected Format error for truncated varuint, got %v", err)
	}
}

func TestBoolStrict(t *testing.T) {
	for _, b := range []bool{true, false} {
		w := NewWriter()
		w.WriteBool(b)
		r := NewReader(w.Bytes())
		got, err := r.ReadBool()
		if err != nil || got != b {
			t.Fatalf("bool round trip failed for %v: %v %v", b, got, err)
		}
	}
	r := NewReader([]byte{0x02})
	if _, err := r.ReadBool(); !errs.Is(err, errs.KindFormat) {
		t.Fatalf("expected Format error for illegal bool byte, got %v", err)
	}
}

func TestLenPrefixedRoundTrip(t *testing.T) {
	payload := []byte("hello, sealproof")
	w := NewWriter()
	w.WriteLenPrefixed(payload)
	r := NewReader(w.Bytes())
	got, err := r.ReadLenPrefixed()
	if err != nil {
		t.Fatalf("ReadLenPrefixed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestLenPrefixedRejectsOverrun(t *testing.T) {
	w := NewWriter()
	w.WriteVarUint(100)
	r := NewReader(w.Bytes())
	if _, err := r.ReadLenPrefixed(); !errs.Is(err, errs.KindFormat) {
		t.Fatalf("expected Format error for length overrunning buffer, got %v", err)
	}
}

func TestDigestRoundTrip(t *testing.T) {
	var d [32]byte
	for i := range d {
		d[i] = byte(i)
	}
	w := NewWriter()
	w.WriteDigest(d)
	r := NewReader(w.Bytes())
	got, err := r.ReadDigest()
	if err != nil || got != d {
		t.Fatalf("digest round trip failed: %v %v", got, err)
	}
}
