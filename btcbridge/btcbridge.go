// Package btcbridge adapts btctypes values (OutPoint, Transaction) into
// proof.Serializer implementations, so they can appear as plain (non-Proof)
// attributes of a generic proof value — e.g. SingleUseSeal's bound outpoint,
// or a transaction embedded as a composed attribute. These are
// deliberately NOT HashingSerializers: the parent class hashes the
// attribute's canonical bytes directly, the same as any other plain field.
package btcbridge

import (
	"github.com/certenlabs/sealproof/btctypes"
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/proof"
	"github.com/certenlabs/sealproof/wire"
)

// OutPointSerializer serializes a btctypes.OutPoint as its 32-byte txid
// followed by its vout as a base-128 varuint (for consistency with the
// rest of the wire format).
type OutPointSerializer struct{}

func (OutPointSerializer) Check(v any) error {
	if _, ok := v.(btctypes.OutPoint); !ok {
		return errs.New(errs.KindSerializerType, "expected OutPoint, got %T", v)
	}
	return nil
}

func (OutPointSerializer) Encode(w *wire.Writer, v any) {
	o := v.(btctypes.OutPoint)
	w.WriteDigest(o.Txid)
	w.WriteVarUint(uint64(o.Vout))
}

func (OutPointSerializer) Decode(r *wire.Reader) (any, error) {
	txid, err := r.ReadDigest()
	if err != nil {
		return nil, err
	}
	vout, err := r.ReadVarUint()
	if err != nil {
		return nil, err
	}
	return btctypes.OutPoint{Txid: txid, Vout: uint32(vout)}, nil
}

var _ proof.Serializer = OutPointSerializer{}

// TransactionSerializer serializes a *btctypes.Transaction as a
// length-prefixed blob of its canonical legacy bytes: varuint(len) ||
// tx.Bytes(). Decode re-parses those bytes back into field values.
type TransactionSerializer struct{}

func (TransactionSerializer) Check(v any) error {
	if _, ok := v.(*btctypes.Transaction); !ok {
		return errs.New(errs.KindSerializerType, "expected *Transaction, got %T", v)
	}
	return nil
}

func (TransactionSerializer) Encode(w *wire.Writer, v any) {
	tx := v.(*btctypes.Transaction)
	w.WriteLenPrefixed(tx.Bytes())
}

func (TransactionSerializer) Decode(r *wire.Reader) (any, error) {
	raw, err := r.ReadLenPrefixed()
	if err != nil {
		return nil, err
	}
	return DecodeTransactionBytes(raw)
}

var _ proof.Serializer = TransactionSerializer{}

// DecodeTransactionBytes parses a transaction's raw canonical legacy
// bytes (as produced by btctypes.Transaction.Bytes), with no length
// prefix. Exposed for callers holding a standalone raw transaction blob,
// e.g. sus-tool reading a file written by mkclosetx.
func DecodeTransactionBytes(raw []byte) (*btctypes.Transaction, error) {
	r := wire.NewReader(raw)
	tx := &btctypes.Transaction{}

	ver, err := readU32le(r)
	if err != nil {
		return nil, err
	}
	tx.Version = ver

	nin, err := btctypes.ReadCompactSize(r)
	if err != nil {
		return nil, err
	}
	tx.Vin = make([]btctypes.TxIn, nin)
	for i := range tx.Vin {
		txid, err := r.ReadDigest()
		if err != nil {
			return nil, err
		}
		vout, err := readU32le(r)
		if err != nil {
			return nil, err
		}
		scriptLen, err := btctypes.ReadCompactSize(r)
		if err != nil {
			return nil, err
		}
		script, err := r.ReadBytes(int(scriptLen))
		if err != nil {
			return nil, err
		}
		seq, err := readU32le(r)
		if err != nil {
			return nil, err
		}
		tx.Vin[i] = btctypes.TxIn{
			Prevout:   btctypes.OutPoint{Txid: txid, Vout: vout},
			ScriptSig: script,
			Sequence:  seq,
		}
	}

	nout, err := btctypes.ReadCompactSize(r)
	if err != nil {
		return nil, err
	}
	tx.Vout = make([]btctypes.TxOut, nout)
	for i := range tx.Vout {
		value, err := readU64le(r)
		if err != nil {
			return nil, err
		}
		scriptLen, err := btctypes.ReadCompactSize(r)
		if err != nil {
			return nil, err
		}
		script, err := r.ReadBytes(int(scriptLen))
		if err != nil {
			return nil, err
		}
		tx.Vout[i] = btctypes.TxOut{Value: int64(value), ScriptPubKey: script}
	}

	lockTime, err := readU32le(r)
	if err != nil {
		return nil, err
	}
	tx.LockTime = lockTime

	if !r.AtEnd() {
		return nil, errs.New(errs.KindFormat, "trailing bytes after transaction encoding")
	}
	return tx, nil
}

func readU32le(r *wire.Reader) (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func readU64le(r *wire.Reader) (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}
