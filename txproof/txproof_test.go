package txproof

import (
	"testing"

	"github.com/certenlabs/sealproof/btctypes"
	"github.com/certenlabs/sealproof/wire"
)

func sampleTx() *btctypes.Transaction {
	return &btctypes.Transaction{
		Version: 2,
		Vin: []btctypes.TxIn{
			{Prevout: btctypes.OutPoint{Txid: [32]byte{1, 2}, Vout: 0}, Sequence: 0xffffffff},
		},
		Vout: []btctypes.TxOut{
			{Value: 100, ScriptPubKey: btctypes.OpReturnScript(make([]byte, 32))},
		},
	}
}

func TestTxProofHashBijection(t *testing.T) {
	tx := sampleTx()
	p := New(tx)
	txid := tx.Txid()
	wantHash := xorDigest(txid)
	if p.Hash() != wantHash {
		t.Fatal("TxProof hash must equal txid XOR pad")
	}
	if p.Txid() != txid {
		t.Fatal("TxProof.Txid() must invert back to the original txid")
	}
}

func TestTxProofPruneRoundTrip(t *testing.T) {
	tx := sampleTx()
	p := New(tx)
	h := p.Hash()
	pruned := p.Prune()
	if pruned.Hash() != h {
		t.Fatal("pruning must preserve hash")
	}
	if !pruned.IsFullyPruned() {
		t.Fatal("prune must fully prune")
	}
}

func TestTxProofSerializeDecodeRoundTrip(t *testing.T) {
	tx := sampleTx()
	p := New(tx)
	w := wire.NewWriter()
	p.Serialize(w)
	r := wire.NewReader(w.Bytes())
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Hash() != p.Hash() {
		t.Fatal("decoded TxProof must match original hash")
	}
}

func TestTxInProofBoundsCheck(t *testing.T) {
	tx := sampleTx()
	p := New(tx)
	if _, err := NewTxInProof(p, 0); err != nil {
		t.Fatalf("valid index must succeed: %v", err)
	}
	if _, err := NewTxInProof(p, 5); err == nil {
		t.Fatal("expected error for out-of-range input index")
	}
}

func TestTxOutProofBoundsCheck(t *testing.T) {
	tx := sampleTx()
	p := New(tx)
	if _, err := NewTxOutProof(p, 0); err != nil {
		t.Fatalf("valid index must succeed: %v", err)
	}
	if _, err := NewTxOutProof(p, 5); err == nil {
		t.Fatal("expected error for out-of-range output index")
	}
}

func TestTxInProofAccessor(t *testing.T) {
	tx := sampleTx()
	p := New(tx)
	v, err := NewTxInProof(p, 0)
	if err != nil {
		t.Fatalf("NewTxInProof: %v", err)
	}
	got, err := TxIn(v)
	if err != nil {
		t.Fatalf("TxIn: %v", err)
	}
	if got.Prevout != tx.Vin[0].Prevout {
		t.Fatal("accessor must return the underlying input")
	}
}
