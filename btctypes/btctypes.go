// Package btctypes is the minimal Bitcoin-transaction-shaped value layer
// sealproof builds against: outpoints, transactions, legacy byte
// serialization, double-SHA-256 txids, HASH160, and builders/matchers for
// the three canonical scriptPubKey templates a SingleUseSeal can bind to.
// A full node/wallet transaction library is explicitly out of scope (see
// SPEC_FULL.md); this package is the external-contract stand-in, grounded
// on the legacy transaction encoding in rubin-protocol's
// clients/go/consensus package (TxNoWitnessBytes, TxOutputBytes) adapted to
// Bitcoin's actual field layout and double-SHA-256 hashing rule.
package btctypes

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/ripemd160"

	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/wire"
)

// OutPoint identifies a transaction output: the 32-byte txid (internal
// byte order, not the reversed display form) and the output index.
type OutPoint struct {
	Txid [32]byte
	Vout uint32
}

// Equal reports whether two outpoints reference the same output.
func (o OutPoint) Equal(other OutPoint) bool {
	return o.Txid == other.Txid && o.Vout == other.Vout
}

// TxIn is one transaction input.
type TxIn struct {
	Prevout   OutPoint
	ScriptSig []byte
	Sequence  uint32
}

// TxOut is one transaction output.
type TxOut struct {
	Value        int64
	ScriptPubKey []byte
}

// Transaction is a legacy (pre-segwit-shaped) Bitcoin transaction: the
// fields a SingleUseSeal witness needs to validate a closing transaction
// against, nothing more.
type Transaction struct {
	Version  uint32
	Vin      []TxIn
	Vout     []TxOut
	LockTime uint32
}

// ReadCompactSize decodes Bitcoin's native CompactSize integer encoding off
// r, rejecting non-minimal encodings. This is the read-side counterpart of
// appendCompactSize and is shared by every package that parses raw
// transaction bytes (txproof, btcbridge), since it is distinct from this
// module's own base-128 varuint used everywhere else on the wire.
func ReadCompactSize(r *wire.Reader) (uint64, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	switch b[0] {
	case 0xfd:
		v, err := r.ReadBytes(2)
		if err != nil {
			return 0, err
		}
		n := uint64(v[0]) | uint64(v[1])<<8
		if n < 0xfd {
			return 0, errs.New(errs.KindFormat, "non-minimal CompactSize encoding")
		}
		return n, nil
	case 0xfe:
		v, err := r.ReadBytes(4)
		if err != nil {
			return 0, err
		}
		n := uint64(v[0]) | uint64(v[1])<<8 | uint64(v[2])<<16 | uint64(v[3])<<24
		if n <= 0xffff {
			return 0, errs.New(errs.KindFormat, "non-minimal CompactSize encoding")
		}
		return n, nil
	case 0xff:
		v, err := r.ReadBytes(8)
		if err != nil {
			return 0, err
		}
		var n uint64
		for i := 7; i >= 0; i-- {
			n = n<<8 | uint64(v[i])
		}
		if n <= 0xffffffff {
			return 0, errs.New(errs.KindFormat, "non-minimal CompactSize encoding")
		}
		return n, nil
	default:
		return uint64(b[0]), nil
	}
}

func appendCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		dst = append(dst, 0xfd)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(n))
		return append(dst, tmp[:]...)
	case n <= 0xffffffff:
		dst = append(dst, 0xfe)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(n))
		return append(dst, tmp[:]...)
	default:
		dst = append(dst, 0xff)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], n)
		return append(dst, tmp[:]...)
	}
}

// Bytes returns tx's canonical legacy serialization: version, inputs
// (compact-size count, then prevout/scriptSig/sequence per input), outputs
// (compact-size count, then value/scriptPubKey per output), locktime — all
// multi-byte integers little-endian.
func (tx *Transaction) Bytes() []byte {
	out := make([]byte, 0, 4+9+9+4)
	var tmp4 [4]byte

	binary.LittleEndian.PutUint32(tmp4[:], tx.Version)
	out = append(out, tmp4[:]...)

	out = appendCompactSize(out, uint64(len(tx.Vin)))
	for _, in := range tx.Vin {
		out = append(out, in.Prevout.Txid[:]...)
		binary.LittleEndian.PutUint32(tmp4[:], in.Prevout.Vout)
		out = append(out, tmp4[:]...)
		out = appendCompactSize(out, uint64(len(in.ScriptSig)))
		out = append(out, in.ScriptSig...)
		binary.LittleEndian.PutUint32(tmp4[:], in.Sequence)
		out = append(out, tmp4[:]...)
	}

	out = appendCompactSize(out, uint64(len(tx.Vout)))
	for _, o := range tx.Vout {
		var tmp8 [8]byte
		binary.LittleEndian.PutUint64(tmp8[:], uint64(o.Value))
		out = append(out, tmp8[:]...)
		out = appendCompactSize(out, uint64(len(o.ScriptPubKey)))
		out = append(out, o.ScriptPubKey...)
	}

	binary.LittleEndian.PutUint32(tmp4[:], tx.LockTime)
	out = append(out, tmp4[:]...)
	return out
}

// Txid returns the double-SHA-256 of tx's canonical serialization, in
// internal (non-reversed) byte order.
func (tx *Transaction) Txid() [32]byte {
	first := sha256.Sum256(tx.Bytes())
	return sha256.Sum256(first[:])
}

// Hash160 returns RIPEMD160(SHA256(b)), Bitcoin's standard pubkey/script
// hash used by the P2SH and P2PKH scriptPubKey templates.
func Hash160(b []byte) [20]byte {
	sh := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sh[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Canonical Bitcoin script opcodes used by the three templates this
// package supports.
const (
	OpReturn      = 0x6a
	OpDup         = 0x76
	OpHash160     = 0xa9
	OpEqual       = 0x87
	OpEqualVerify = 0x88
	OpCheckSig    = 0xac
)

// OpReturnScript builds an OP_RETURN scriptPubKey committing to payload:
// OP_RETURN <push payload>. payload must be short enough for a direct push
// (length < 0x4c); sealproof only ever commits 32-byte digests.
func OpReturnScript(payload []byte) []byte {
	if len(payload) >= 0x4c {
		panic("btctypes: OP_RETURN payload too large for direct push")
	}
	out := make([]byte, 0, 2+len(payload))
	out = append(out, OpReturn, byte(len(payload)))
	return append(out, payload...)
}

// MatchOpReturn reports whether script is exactly an OP_RETURN push of a
// single payload, returning that payload.
func MatchOpReturn(script []byte) (payload []byte, ok bool) {
	if len(script) < 2 || script[0] != OpReturn {
		return nil, false
	}
	n := int(script[1])
	if n >= 0x4c || len(script) != 2+n {
		return nil, false
	}
	return script[2:], true
}

// P2SHScript builds a bare P2SH-style scriptPubKey: OP_HASH160 <push
// hash160> OP_EQUAL.
func P2SHScript(hash160 [20]byte) []byte {
	out := make([]byte, 0, 23)
	out = append(out, OpHash160, 20)
	out = append(out, hash160[:]...)
	return append(out, OpEqual)
}

// MatchP2SH reports whether script is exactly OP_HASH160 <20 bytes>
// OP_EQUAL, returning the embedded hash.
func MatchP2SH(script []byte) (hash160 [20]byte, ok bool) {
	if len(script) != 23 || script[0] != OpHash160 || script[1] != 20 || script[22] != OpEqual {
		return hash160, false
	}
	copy(hash160[:], script[2:22])
	return hash160, true
}

// P2PKHScript builds a P2PKH-style scriptPubKey: OP_DUP OP_HASH160 <push
// hash160> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHScript(hash160 [20]byte) []byte {
	out := make([]byte, 0, 25)
	out = append(out, OpDup, OpHash160, 20)
	out = append(out, hash160[:]...)
	return append(out, OpEqualVerify, OpCheckSig)
}

// MatchP2PKH reports whether script is exactly OP_DUP OP_HASH160 <20
// bytes> OP_EQUALVERIFY OP_CHECKSIG, returning the embedded hash.
func MatchP2PKH(script []byte) (hash160 [20]byte, ok bool) {
	if len(script) != 25 || script[0] != OpDup || script[1] != OpHash160 || script[2] != 20 ||
		script[23] != OpEqualVerify || script[24] != OpCheckSig {
		return hash160, false
	}
	copy(hash160[:], script[3:23])
	return hash160, true
}

// ScriptsEqual is a small helper so callers needn't import bytes directly.
func ScriptsEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}
