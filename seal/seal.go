// Package seal implements SingleUseSeal and SealWitness: the Bitcoin
// single-use-seal protocol binding a resource (an unspent outpoint) to the
// transaction that eventually spends it, with a Fake variant for tests and
// tooling that need a seal not anchored to any real chain.
package seal

import (
	"github.com/certenlabs/sealproof/btcbridge"
	"github.com/certenlabs/sealproof/btctypes"
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/proof"
	"github.com/certenlabs/sealproof/txproof"
	"github.com/certenlabs/sealproof/wire"
)

// SingleUseSealTag roots the HASHTAG shared across every SingleUseSeal
// variant; variant separation comes from the varuint(variant_index) prefix
// (see proof.Union).
var SingleUseSealTag = hashtag.MustNew("8f3e4d5c-6b7a-4b89-a998-8b9887765432")

const (
	// SealVariantBitcoin is the declaration index of BitcoinSingleUseSeal.
	SealVariantBitcoin = 0
	// SealVariantFake is the declaration index of FakeSingleUseSeal.
	SealVariantFake = 1
)

// SingleUseSealUnion is the ProofUnion descriptor for a seal resource: a
// Bitcoin outpoint, or a Fake seal holding a committed_hash digest directly
// (for tests and tooling with no real chain to anchor to).
var SingleUseSealUnion = &proof.Union{
	Name: "SingleUseSeal",
	Tag:  SingleUseSealTag,
	Variants: []proof.VariantSpec{
		{
			Name: "Bitcoin",
			Attrs: []proof.AttrSpec{
				{Name: "outpoint", Serializer: btcbridge.OutPointSerializer{}},
			},
		},
		{
			Name: "Fake",
			Attrs: []proof.AttrSpec{
				{Name: "committed_hash", Serializer: proof.DigestSerializer{}},
			},
		},
	},
}

// NewBitcoinSeal constructs a BitcoinSingleUseSeal over outpoint.
func NewBitcoinSeal(outpoint btctypes.OutPoint) (*proof.GenericValue, error) {
	return SingleUseSealUnion.New(SealVariantBitcoin, outpoint)
}

// NewFakeSeal constructs a FakeSingleUseSeal committed to h directly, with
// no chain to anchor to.
func NewFakeSeal(h hashtag.Digest) (*proof.GenericValue, error) {
	return SingleUseSealUnion.New(SealVariantFake, h)
}

// CommittedHash returns the committed_hash bound by a FakeSingleUseSeal
// value, erroring if v is not that variant.
func CommittedHash(v *proof.GenericValue) (hashtag.Digest, error) {
	if v.UnionIndex() != SealVariantFake {
		return hashtag.Digest{}, errs.New(errs.KindUnionVariant, "not a FakeSingleUseSeal value")
	}
	a, err := v.Attr(0)
	if err != nil {
		return hashtag.Digest{}, err
	}
	return a.(hashtag.Digest), nil
}

// Outpoint returns the outpoint bound by a BitcoinSingleUseSeal value,
// erroring if v is not that variant or is pruned without a back-reference.
func Outpoint(v *proof.GenericValue) (btctypes.OutPoint, error) {
	if v.UnionIndex() != SealVariantBitcoin {
		return btctypes.OutPoint{}, errs.New(errs.KindUnionVariant, "not a BitcoinSingleUseSeal value")
	}
	a, err := v.Attr(0)
	if err != nil {
		return btctypes.OutPoint{}, err
	}
	return a.(btctypes.OutPoint), nil
}

// ---------------------------------------------------------------------
// SealWitness
// ---------------------------------------------------------------------

// SealWitnessTag is the HASHTAG for SealWitness values. SealWitness is a
// plain (non-union) class witnessing a seal through the txinproof/
// txoutproof of its closing transaction; Fake seals are witnessed by the
// separate FakeSealWitnessClass below.
var SealWitnessTag = hashtag.MustNew("9f4e5d6c-7b8a-4c99-b9a9-9ca998876543")

type txInProofSerializer struct{}

func (txInProofSerializer) Check(v any) error {
	gv, ok := v.(*proof.GenericValue)
	if !ok || gv.Class() != txproof.TxInProofClass {
		return errs.New(errs.KindSerializerType, "expected TxInProof value, got %T", v)
	}
	return nil
}
func (txInProofSerializer) Encode(w *wire.Writer, v any) { v.(*proof.GenericValue).Serialize(w) }
func (txInProofSerializer) Decode(r *wire.Reader) (any, error) {
	return proof.Decode(txproof.TxInProofClass, r)
}
func (txInProofSerializer) Hash(v any) hashtag.Digest { return v.(*proof.GenericValue).Hash() }

type txOutProofSerializer struct{}

func (txOutProofSerializer) Check(v any) error {
	gv, ok := v.(*proof.GenericValue)
	if !ok || gv.Class() != txproof.TxOutProofClass {
		return errs.New(errs.KindSerializerType, "expected TxOutProof value, got %T", v)
	}
	return nil
}
func (txOutProofSerializer) Encode(w *wire.Writer, v any) { v.(*proof.GenericValue).Serialize(w) }
func (txOutProofSerializer) Decode(r *wire.Reader) (any, error) {
	return proof.Decode(txproof.TxOutProofClass, r)
}
func (txOutProofSerializer) Hash(v any) hashtag.Digest { return v.(*proof.GenericValue).Hash() }

type sealUnionSerializer struct{}

func (sealUnionSerializer) Check(v any) error {
	gv, ok := v.(*proof.GenericValue)
	if !ok || gv.UnionIndex() < 0 {
		return errs.New(errs.KindSerializerType, "expected SingleUseSeal union value, got %T", v)
	}
	return nil
}
func (sealUnionSerializer) Encode(w *wire.Writer, v any) { v.(*proof.GenericValue).Serialize(w) }
func (sealUnionSerializer) Decode(r *wire.Reader) (any, error) {
	return SingleUseSealUnion.Decode(r)
}
func (sealUnionSerializer) Hash(v any) hashtag.Digest { return v.(*proof.GenericValue).Hash() }

// SealWitnessClass declares attributes in order: seal, txinproof,
// txoutproof — matching spec.md §4.G's literal field order.
var SealWitnessClass = &proof.Class{
	Name: "SealWitness",
	Tag:  SealWitnessTag,
	Attrs: []proof.AttrSpec{
		{Name: "seal", Serializer: sealUnionSerializer{}},
		{Name: "txinproof", Serializer: txInProofSerializer{}},
		{Name: "txoutproof", Serializer: txOutProofSerializer{}},
	},
}

// NewWitness constructs a SealWitness binding sealVal to the given
// TxInProof/TxOutProof values.
func NewWitness(sealVal, txinproof, txoutproof *proof.GenericValue) (*proof.GenericValue, error) {
	return proof.New(SealWitnessClass, sealVal, txinproof, txoutproof)
}

// DecodeWitness reads a SealWitness value back off r.
func DecodeWitness(r *wire.Reader) (*proof.GenericValue, error) {
	return proof.Decode(SealWitnessClass, r)
}

// FakeSealWitnessTag is the HASHTAG for FakeSealWitness values.
// FakeSealWitness is a distinct, smaller class from SealWitnessClass: a
// Fake seal closes by direct hash commitment, not by an actual chain
// transaction, so it carries no txinproof/txoutproof at all.
var FakeSealWitnessTag = hashtag.MustNew("a3b1c9d8-2e4f-4a1b-9c3d-5e6f7a8b9c0d")

// FakeSealWitnessClass declares a single attribute, the FakeSingleUseSeal
// being witnessed.
var FakeSealWitnessClass = &proof.Class{
	Name: "FakeSealWitness",
	Tag:  FakeSealWitnessTag,
	Attrs: []proof.AttrSpec{
		{Name: "seal", Serializer: sealUnionSerializer{}},
	},
}

// NewFakeWitness constructs a FakeSealWitness over sealVal, which must be a
// FakeSingleUseSeal value.
func NewFakeWitness(sealVal *proof.GenericValue) (*proof.GenericValue, error) {
	if sealVal.UnionIndex() != SealVariantFake {
		return nil, errs.New(errs.KindUnionVariant, "NewFakeWitness requires a FakeSingleUseSeal value")
	}
	return proof.New(FakeSealWitnessClass, sealVal)
}

// DecodeFakeWitness reads a FakeSealWitness value back off r.
func DecodeFakeWitness(r *wire.Reader) (*proof.GenericValue, error) {
	return proof.Decode(FakeSealWitnessClass, r)
}

// VerifyHash checks that w's sealed committed_hash equals h, failing with
// KindDigestMismatch otherwise.
func VerifyHash(w *proof.GenericValue, h hashtag.Digest) error {
	sealAttr, err := w.Attr(0)
	if err != nil {
		return err
	}
	sealVal := sealAttr.(*proof.GenericValue)
	committed, err := CommittedHash(sealVal)
	if err != nil {
		return err
	}
	if committed != h {
		return errs.New(errs.KindDigestMismatch, "committed_hash does not match supplied hash")
	}
	return nil
}

// Verify checks seal.outpoint == txinproof.txin.prevout and
// txinproof.txproof == txoutproof.txproof, per spec.md §4.G.
func Verify(w *proof.GenericValue) error {
	sealAttr, err := w.Attr(0)
	if err != nil {
		return err
	}
	sealVal := sealAttr.(*proof.GenericValue)

	txinAttr, err := w.Attr(1)
	if err != nil {
		return err
	}
	txinproof := txinAttr.(*proof.GenericValue)

	txoutAttr, err := w.Attr(2)
	if err != nil {
		return err
	}
	txoutproof := txoutAttr.(*proof.GenericValue)

	if sealVal.UnionIndex() == SealVariantBitcoin {
		outpoint, err := Outpoint(sealVal)
		if err != nil {
			return err
		}
		txin, err := txproof.TxIn(txinproof)
		if err != nil {
			return err
		}
		if !outpoint.Equal(txin.Prevout) {
			return errs.New(errs.KindWitnessMismatch, "seal outpoint does not match txinproof.txin.prevout")
		}
	}

	inTxProofAttr, err := txinproof.Attr(1)
	if err != nil {
		return err
	}
	outTxProofAttr, err := txoutproof.Attr(1)
	if err != nil {
		return err
	}
	if !proof.Equal(inTxProofAttr.(proof.Proof), outTxProofAttr.(proof.Proof)) {
		return errs.New(errs.KindWitnessMismatch, "txinproof.txproof and txoutproof.txproof disagree")
	}
	return nil
}

// VerifyDigest checks that the witness's closing scriptPubKey matches one
// of the three canonical templates for d.
func VerifyDigest(w *proof.GenericValue, d hashtag.Digest) error {
	txoutAttr, err := w.Attr(2)
	if err != nil {
		return err
	}
	txoutproof := txoutAttr.(*proof.GenericValue)
	txout, err := txproof.TxOut(txoutproof)
	if err != nil {
		return err
	}

	h160 := btctypes.Hash160(d[:])
	candidates := [][]byte{
		btctypes.OpReturnScript(d[:]),
		btctypes.P2SHScript(h160),
		btctypes.P2PKHScript(h160),
	}
	for _, c := range candidates {
		if btctypes.ScriptsEqual(c, txout.ScriptPubKey) {
			return nil
		}
	}
	return errs.New(errs.KindDigestMismatch, "closing scriptPubKey matches none of the accepted templates")
}
