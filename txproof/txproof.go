// Package txproof implements TxProof, TxInProof, and TxOutProof — the proof
// classes anchoring a SingleUseSeal's closing side to an actual Bitcoin
// transaction.
//
// TxProof's hash formula is deliberately not the generic HASHTAG(attrs)
// rule: its commitment is the transaction's own txid, XORed with a fixed
// pad, so the txid can be recovered from the hash by undoing the XOR
// (per spec.md §5.F). It therefore
// implements proof.Proof directly instead of going through
// proof.GenericValue, the same way the package doc of proof.proof.go calls
// out as the intended escape hatch for non-generic hash rules.
package txproof

import (
	"github.com/certenlabs/sealproof/btctypes"
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/proof"
	"github.com/certenlabs/sealproof/wire"
)

// TxHashXORPad is XORed into a transaction's txid to derive its TxProof
// hash; XORing the hash with it again gives back the txid.
var TxHashXORPad = [32]byte{
	0x54, 0x58, 0x50, 0x52, 0x4f, 0x4f, 0x46, 0x58,
	0x4f, 0x52, 0x50, 0x41, 0x44, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// TxProof wraps a full transaction, exposing it as a Proof whose hash is
// independent of the generic HASHTAG scheme. TxProof supports only the two
// pruning states full/fully-pruned: there is no partial form, since its
// single attribute (the transaction) either is or isn't present.
type TxProof struct {
	tx          *btctypes.Transaction
	fullyPruned bool
	hash        *hashtag.Digest
}

var _ proof.Proof = (*TxProof)(nil)

// New wraps tx in a not-pruned TxProof.
func New(tx *btctypes.Transaction) *TxProof {
	return &TxProof{tx: tx}
}

// FullyPruned constructs a TxProof retaining only its commitment hash.
func FullyPruned(hash hashtag.Digest) *TxProof {
	return &TxProof{fullyPruned: true, hash: &hash}
}

func xorDigest(txid [32]byte) hashtag.Digest {
	var out hashtag.Digest
	for i := range txid {
		out[i] = txid[i] ^ TxHashXORPad[i]
	}
	return out
}

// Hash returns the transaction's txid XORed with TxHashXORPad.
func (p *TxProof) Hash() hashtag.Digest {
	if p.hash != nil {
		return *p.hash
	}
	h := xorDigest(p.tx.Txid())
	p.hash = &h
	return h
}

// Txid returns the transaction's txid, available even when the TxProof is
// pruned: it is recoverable directly from Hash by undoing the XOR pad, with
// no need for the full transaction body.
func (p *TxProof) Txid() [32]byte {
	h := p.Hash()
	var txid [32]byte
	for i := range txid {
		txid[i] = h[i] ^ TxHashXORPad[i]
	}
	return txid
}

func (p *TxProof) IsFullyPruned() bool { return p.fullyPruned }
func (p *TxProof) IsPruned() bool      { return p.fullyPruned }

// Prune returns a fully-pruned sibling. Because a TxProof's only content is
// the transaction itself (no partial structure), prune discards it outright;
// there is no back-reference chain to materialize it back from.
func (p *TxProof) Prune() proof.Proof {
	h := p.Hash()
	return &TxProof{fullyPruned: true, hash: &h}
}

// Transaction returns the wrapped transaction, or an error if p is pruned.
func (p *TxProof) Transaction() (*btctypes.Transaction, error) {
	if p.fullyPruned {
		return nil, errs.New(errs.KindPruned, "TxProof is fully pruned; transaction body unavailable")
	}
	return p.tx, nil
}

// Serialize writes pruned-bool, then either the 32-byte hash or the
// length-prefixed canonical transaction bytes.
func (p *TxProof) Serialize(w *wire.Writer) {
	w.WriteBool(p.fullyPruned)
	if p.fullyPruned {
		h := p.Hash()
		w.WriteDigest([32]byte(h))
		return
	}
	w.WriteLenPrefixed(p.tx.Bytes())
}

// Decode reads a TxProof back off r.
func Decode(r *wire.Reader) (*TxProof, error) {
	fullyPruned, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if fullyPruned {
		raw, err := r.ReadDigest()
		if err != nil {
			return nil, err
		}
		return FullyPruned(hashtag.Digest(raw)), nil
	}
	raw, err := r.ReadLenPrefixed()
	if err != nil {
		return nil, err
	}
	tx, err := decodeTxBytes(raw)
	if err != nil {
		return nil, err
	}
	return New(tx), nil
}

func decodeTxBytes(raw []byte) (*btctypes.Transaction, error) {
	r := wire.NewReader(raw)
	tx := &btctypes.Transaction{}

	verB, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	tx.Version = uint32(verB[0]) | uint32(verB[1])<<8 | uint32(verB[2])<<16 | uint32(verB[3])<<24

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
		voutB, err := r.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		vout := uint32(voutB[0]) | uint32(voutB[1])<<8 | uint32(voutB[2])<<16 | uint32(voutB[3])<<24
		scriptLen, err := btctypes.ReadCompactSize(r)
		if err != nil {
			return nil, err
		}
		script, err := r.ReadBytes(int(scriptLen))
		if err != nil {
			return nil, err
		}
		seqB, err := r.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		seq := uint32(seqB[0]) | uint32(seqB[1])<<8 | uint32(seqB[2])<<16 | uint32(seqB[3])<<24
		tx.Vin[i] = btctypes.TxIn{Prevout: btctypes.OutPoint{Txid: txid, Vout: vout}, ScriptSig: script, Sequence: seq}
	}

	nout, err := btctypes.ReadCompactSize(r)
	if err != nil {
		return nil, err
	}
	tx.Vout = make([]btctypes.TxOut, nout)
	for i := range tx.Vout {
		valB, err := r.ReadBytes(8)
		if err != nil {
			return nil, err
		}
		var value uint64
		for j := 7; j >= 0; j-- {
			value = value<<8 | uint64(valB[j])
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

	ltB, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	tx.LockTime = uint32(ltB[0]) | uint32(ltB[1])<<8 | uint32(ltB[2])<<16 | uint32(ltB[3])<<24

	if !r.AtEnd() {
		return nil, errs.New(errs.KindFormat, "trailing bytes after transaction encoding")
	}
	return tx, nil
}

// TxInProof and TxOutProof identify one input/output of a TxProof by
// index, each carrying the parent TxProof as given: their hash is
// HASHTAG(varuint(index) || parent.Hash()), a plain generic value built
// against these package-level classes.
var (
	TxInProofTag  = hashtag.MustNew("6f1e2d3c-4b5a-4968-8778-697665543210")
	TxOutProofTag = hashtag.MustNew("7f2e3d4c-5b6a-4a79-9889-7a8776654321")
)

type parentSerializer struct{}

func (parentSerializer) Check(v any) error {
	if _, ok := v.(*TxProof); !ok {
		return errs.New(errs.KindSerializerType, "expected *TxProof, got %T", v)
	}
	return nil
}
func (parentSerializer) Encode(w *wire.Writer, v any) { v.(*TxProof).Serialize(w) }
func (parentSerializer) Decode(r *wire.Reader) (any, error) {
	return Decode(r)
}
func (parentSerializer) Hash(v any) hashtag.Digest { return v.(*TxProof).Hash() }

// TxInProofClass and TxOutProofClass declare their attributes in the same
// order as spec.md §4.F's literal field lists (index before the parent
// TxProof): that order is consensus-critical serialization/hashing order.
var TxInProofClass = &proof.Class{
	Name: "TxInProof",
	Tag:  TxInProofTag,
	Attrs: []proof.AttrSpec{
		{Name: "i", Serializer: proof.VarUintSerializer{}},
		{Name: "txproof", Serializer: parentSerializer{}},
	},
}

var TxOutProofClass = &proof.Class{
	Name: "TxOutProof",
	Tag:  TxOutProofTag,
	Attrs: []proof.AttrSpec{
		{Name: "i", Serializer: proof.VarUintSerializer{}},
		{Name: "txproof", Serializer: parentSerializer{}},
	},
}

// NewTxInProof builds a TxInProof over input index i of tx, validating i
// against the transaction's actual input count when tx is not pruned.
func NewTxInProof(tx *TxProof, i uint64) (*proof.GenericValue, error) {
	if full, err := tx.Transaction(); err == nil {
		if i >= uint64(len(full.Vin)) {
			return nil, errs.New(errs.KindFormat, "TxInProof index %d out of range [0,%d)", i, len(full.Vin))
		}
	}
	return proof.New(TxInProofClass, i, tx)
}

// NewTxOutProof builds a TxOutProof over output index i of tx, validating i
// against the transaction's actual output count when tx is not pruned.
func NewTxOutProof(tx *TxProof, i uint64) (*proof.GenericValue, error) {
	if full, err := tx.Transaction(); err == nil {
		if i >= uint64(len(full.Vout)) {
			return nil, errs.New(errs.KindFormat, "TxOutProof index %d out of range [0,%d)", i, len(full.Vout))
		}
	}
	return proof.New(TxOutProofClass, i, tx)
}

// TxIn returns the referenced input of v (a TxInProof GenericValue),
// resolving both attributes through Attr. On a pruned TxInProof the
// txproof attribute materializes as a fully-pruned TxProof with no
// transaction body (TxProof.Prune keeps no back-reference), so TxIn then
// fails with a Pruned error.
func TxIn(v *proof.GenericValue) (btctypes.TxIn, error) {
	iv, err := v.Attr(0)
	if err != nil {
		return btctypes.TxIn{}, err
	}
	txv, err := v.Attr(1)
	if err != nil {
		return btctypes.TxIn{}, err
	}
	tp := txv.(*TxProof)
	full, err := tp.Transaction()
	if err != nil {
		return btctypes.TxIn{}, err
	}
	i := iv.(uint64)
	if i >= uint64(len(full.Vin)) {
		return btctypes.TxIn{}, errs.New(errs.KindFormat, "TxInProof index %d out of range [0,%d)", i, len(full.Vin))
	}
	return full.Vin[i], nil
}

// TxOut returns the referenced output of v (a TxOutProof GenericValue).
func TxOut(v *proof.GenericValue) (btctypes.TxOut, error) {
	iv, err := v.Attr(0)
	if err != nil {
		return btctypes.TxOut{}, err
	}
	txv, err := v.Attr(1)
	if err != nil {
		return btctypes.TxOut{}, err
	}
	tp := txv.(*TxProof)
	full, err := tp.Transaction()
	if err != nil {
		return btctypes.TxOut{}, err
	}
	i := iv.(uint64)
	if i >= uint64(len(full.Vout)) {
		return btctypes.TxOut{}, errs.New(errs.KindFormat, "TxOutProof index %d out of range [0,%d)", i, len(full.Vout))
	}
	return full.Vout[i], nil
}
