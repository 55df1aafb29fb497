package seal

import (
	"testing"

	"github.com/certenlabs/sealproof/btctypes"
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/proof"
	"github.com/certenlabs/sealproof/txproof"
)

func closingTx(outpoint btctypes.OutPoint, digest hashtag.Digest) *btctypes.Transaction {
	return &btctypes.Transaction{
		Version: 2,
		Vin: []btctypes.TxIn{
			{Prevout: outpoint, Sequence: 0xffffffff},
		},
		Vout: []btctypes.TxOut{
			{Value: 1000, ScriptPubKey: btctypes.OpReturnScript(digest[:])},
		},
	}
}

func buildWitness(t *testing.T, digest hashtag.Digest) (*proof.GenericValue, btctypes.OutPoint) {
	t.Helper()
	outpoint := btctypes.OutPoint{Txid: [32]byte{1, 2, 3}, Vout: 0}
	sealVal, err := NewBitcoinSeal(outpoint)
	if err != nil {
		t.Fatalf("NewBitcoinSeal: %v", err)
	}
	tx := closingTx(outpoint, digest)
	txp := txproof.New(tx)
	txinproof, err := txproof.NewTxInProof(txp, 0)
	if err != nil {
		t.Fatalf("NewTxInProof: %v", err)
	}
	txoutproof, err := txproof.NewTxOutProof(txp, 0)
	if err != nil {
		t.Fatalf("NewTxOutProof: %v", err)
	}
	witness, err := NewWitness(sealVal, txinproof, txoutproof)
	if err != nil {
		t.Fatalf("NewWitness: %v", err)
	}
	return witness, outpoint
}

func TestWitnessVerifySucceedsForLegitimateClose(t *testing.T) {
	var digest hashtag.Digest
	for i := range digest {
		digest[i] = byte(i)
	}
	witness, _ := buildWitness(t, digest)
	if err := Verify(witness); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := VerifyDigest(witness, digest); err != nil {
		t.Fatalf("VerifyDigest: %v", err)
	}
}

func TestWitnessVerifyDigestAllThreeTemplates(t *testing.T) {
	var digest hashtag.Digest
	for i := range digest {
		digest[i] = byte(255 - i)
	}
	outpoint := btctypes.OutPoint{Txid: [32]byte{4, 5, 6}, Vout: 2}
	sealVal, _ := NewBitcoinSeal(outpoint)

	h160 := btctypes.Hash160(digest[:])
	templates := [][]byte{
		btctypes.OpReturnScript(digest[:]),
		btctypes.P2SHScript(h160),
		btctypes.P2PKHScript(h160),
	}
	for i, script := range templates {
		tx := &btctypes.Transaction{
			Version: 2,
			Vin:     []btctypes.TxIn{{Prevout: outpoint, Sequence: 0xffffffff}},
			Vout:    []btctypes.TxOut{{Value: 1, ScriptPubKey: script}},
		}
		txp := txproof.New(tx)
		txinproof, _ := txproof.NewTxInProof(txp, 0)
		txoutproof, _ := txproof.NewTxOutProof(txp, 0)
		witness, err := NewWitness(sealVal, txinproof, txoutproof)
		if err != nil {
			t.Fatalf("template %d NewWitness: %v", i, err)
		}
		if err := VerifyDigest(witness, digest); err != nil {
			t.Fatalf("template %d VerifyDigest: %v", i, err)
		}
	}
}

func TestWitnessVerifyFailsWrongOutpoint(t *testing.T) {
	var digest hashtag.Digest
	wrongSeal, _ := NewBitcoinSeal(btctypes.OutPoint{Txid: [32]byte{9, 9, 9}, Vout: 5})
	outpoint := btctypes.OutPoint{Txid: [32]byte{1, 2, 3}, Vout: 0}
	tx := closingTx(outpoint, digest)
	txp := txproof.New(tx)
	txinproof, _ := txproof.NewTxInProof(txp, 0)
	txoutproof, _ := txproof.NewTxOutProof(txp, 0)
	witness, err := NewWitness(wrongSeal, txinproof, txoutproof)
	if err != nil {
		t.Fatalf("NewWitness: %v", err)
	}
	if err := Verify(witness); err == nil {
		t.Fatal("expected WitnessMismatch for seal/txin outpoint disagreement")
	}
}

func TestWitnessVerifyDigestFailsWrongScript(t *testing.T) {
	var digest hashtag.Digest
	var wrongDigest hashtag.Digest
	wrongDigest[0] = 0xff
	witness, _ := buildWitness(t, digest)
	if err := VerifyDigest(witness, wrongDigest); err == nil {
		t.Fatal("expected DigestMismatch for non-matching digest")
	}
}

func TestSealPruneRoundTrip(t *testing.T) {
	outpoint := btctypes.OutPoint{Txid: [32]byte{7}, Vout: 0}
	sealVal, _ := NewBitcoinSeal(outpoint)
	h := sealVal.Hash()
	pruned := sealVal.Prune()
	if pruned.Hash() != h {
		t.Fatal("prune must preserve seal hash")
	}
}

func TestFakeSealVariantSeparation(t *testing.T) {
	var h hashtag.Digest
	fake, err := NewFakeSeal(h)
	if err != nil {
		t.Fatalf("NewFakeSeal: %v", err)
	}
	bitcoin, err := NewBitcoinSeal(btctypes.OutPoint{Txid: [32]byte{}, Vout: 0})
	if err != nil {
		t.Fatalf("NewBitcoinSeal: %v", err)
	}
	if fake.Hash() == bitcoin.Hash() {
		t.Fatal("Fake and Bitcoin seal variants must not collide")
	}
}

// TestFakeSealWitnessVerifyHash reproduces spec.md §8 scenario S1: a Fake
// seal committed to the zero digest, witnessed and checked against both the
// matching and a one-bit-flipped digest.
func TestFakeSealWitnessVerifyHash(t *testing.T) {
	var committed hashtag.Digest // all-zero
	fake, err := NewFakeSeal(committed)
	if err != nil {
		t.Fatalf("NewFakeSeal: %v", err)
	}
	w, err := NewFakeWitness(fake)
	if err != nil {
		t.Fatalf("NewFakeWitness: %v", err)
	}
	if err := VerifyHash(w, committed); err != nil {
		t.Fatalf("VerifyHash: %v", err)
	}

	var wrong hashtag.Digest
	wrong[0] = 0x01
	err = VerifyHash(w, wrong)
	if err == nil {
		t.Fatal("expected DigestMismatch for non-matching hash")
	}
	if !errs.Is(err, errs.KindDigestMismatch) {
		t.Fatalf("expected KindDigestMismatch, got %v", err)
	}
}

func TestFakeSealWitnessRejectsBitcoinSeal(t *testing.T) {
	bitcoin, err := NewBitcoinSeal(btctypes.OutPoint{Txid: [32]byte{1}, Vout: 0})
	if err != nil {
		t.Fatalf("NewBitcoinSeal: %v", err)
	}
	if _, err := NewFakeWitness(bitcoin); err == nil {
		t.Fatal("expected error constructing a FakeSealWitness over a BitcoinSingleUseSeal")
	}
}
