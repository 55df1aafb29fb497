package gumap

import (
	"testing"

	"github.com/certenlabs/sealproof/bitseq"
	"github.com/certenlabs/sealproof/btctypes"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/proof"
	"github.com/certenlabs/sealproof/seal"
	"github.com/certenlabs/sealproof/txproof"
)

func init() {
	SetWitnessVerifier(seal.VerifyDigest)
}

var mapTag = hashtag.MustNew("33333333-3333-4333-8333-333333333333")

func newTestMap() *Map {
	return New(mapTag, proof.BytesSerializer{}, proof.BytesSerializer{}, seal.SingleUseSealUnion, seal.SealWitnessClass, func(key any) bitseq.Bits {
		b := key.([]byte)
		bits, _ := bitseq.FromBytes(b, -1)
		return bits
	})
}

// mintWitness builds a legitimate closing witness over unusedSeal for
// content digest h, simulating an external closing transaction the way a
// real chain-watching caller would supply one.
func mintWitness(unusedSeal *proof.GenericValue, h hashtag.Digest) (*proof.GenericValue, error) {
	outpoint, err := seal.Outpoint(unusedSeal)
	if err != nil {
		return nil, err
	}
	tx := &btctypes.Transaction{
		Version: 2,
		Vin:     []btctypes.TxIn{{Prevout: outpoint, Sequence: 0xffffffff}},
		Vout:    []btctypes.TxOut{{Value: 1, ScriptPubKey: btctypes.OpReturnScript(h[:])}},
	}
	txp := txproof.New(tx)
	txinproof, err := txproof.NewTxInProof(txp, 0)
	if err != nil {
		return nil, err
	}
	txoutproof, err := txproof.NewTxOutProof(txp, 0)
	if err != nil {
		return nil, err
	}
	return seal.NewWitness(unusedSeal, txinproof, txoutproof)
}

func unusedNode(t *testing.T, m *Map, prefix bitseq.Bits, salt byte) *proof.GenericValue {
	t.Helper()
	sealVal, err := seal.NewBitcoinSeal(btctypes.OutPoint{Txid: [32]byte{salt}, Vout: 0})
	if err != nil {
		t.Fatalf("NewBitcoinSeal: %v", err)
	}
	node, err := m.NewUnusedPrefix(prefix, sealVal)
	if err != nil {
		t.Fatalf("NewUnusedPrefix: %v", err)
	}
	return node
}

func TestLeafVerifySucceeds(t *testing.T) {
	m := newTestMap()
	unused := unusedNode(t, m, bitseq.Empty(), 1)
	leaf, err := m.LeafFromUnusedPrefix(unused, []byte("key"), []byte("value"), mintWitness)
	if err != nil {
		t.Fatalf("LeafFromUnusedPrefix: %v", err)
	}
	if err := m.Verify(leaf); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestLeafVerifyFailsOnTamperedValue(t *testing.T) {
	m := newTestMap()
	unused := unusedNode(t, m, bitseq.Empty(), 2)
	leaf, err := m.LeafFromUnusedPrefix(unused, []byte("key"), []byte("value"), mintWitness)
	if err != nil {
		t.Fatalf("LeafFromUnusedPrefix: %v", err)
	}
	// Rebuild a structurally similar leaf with a different value but the
	// same witness: verify must fail since the content digest no longer
	// matches what the witness actually closes over.
	tamperedAttr, err := leaf.Attr(0)
	if err != nil {
		t.Fatalf("Attr: %v", err)
	}
	tampered, err := m.union.New(VariantLeafPrefix, tamperedAttr, []byte("key"), []byte("different-value"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Verify(tampered); err == nil {
		t.Fatal("expected verify failure for tampered leaf value")
	}
}

func TestInnerVerifySucceeds(t *testing.T) {
	m := newTestMap()
	leftUnused := unusedNode(t, m, bitseq.FromBools([]bool{false}), 3)
	left, err := m.LeafFromUnusedPrefix(leftUnused, []byte("left-key"), []byte("left-value"), mintWitness)
	if err != nil {
		t.Fatalf("left LeafFromUnusedPrefix: %v", err)
	}
	rightUnused := unusedNode(t, m, bitseq.FromBools([]bool{true}), 4)
	right, err := m.LeafFromUnusedPrefix(rightUnused, []byte("right-key"), []byte("right-value"), mintWitness)
	if err != nil {
		t.Fatalf("right LeafFromUnusedPrefix: %v", err)
	}

	rootUnused := unusedNode(t, m, bitseq.Empty(), 5)
	inner, err := m.InnerFromUnusedPrefix(rootUnused, left, right, mintWitness)
	if err != nil {
		t.Fatalf("InnerFromUnusedPrefix: %v", err)
	}
	if err := m.Verify(inner); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	prefixAttr, err := inner.Attr(0)
	if err != nil {
		t.Fatalf("Attr(0): %v", err)
	}
	if prefixAttr.(bitseq.Bits).Len() != 0 {
		t.Fatal("InnerFromUnusedPrefix must carry over the UnusedPrefix node's own prefix")
	}

	node, ok := Walk(inner, bitseq.FromBools([]bool{false}))
	if !ok {
		t.Fatal("Walk must reach the left leaf")
	}
	if node.Hash() != left.Hash() {
		t.Fatal("Walk(left) must return the left leaf")
	}

	node, ok = Walk(inner, bitseq.FromBools([]bool{true}))
	if !ok {
		t.Fatal("Walk must reach the right leaf")
	}
	if node.Hash() != right.Hash() {
		t.Fatal("Walk(right) must return the right leaf")
	}
}

func TestUnusedPrefixTriviallyVerifies(t *testing.T) {
	m := newTestMap()
	unused := unusedNode(t, m, bitseq.Empty(), 6)
	if err := m.Verify(unused); err != nil {
		t.Fatalf("UnusedPrefix must trivially verify, got %v", err)
	}
}
