package btcbridge

import (
	"testing"

	"github.com/certenlabs/sealproof/btctypes"
	"github.com/certenlabs/sealproof/wire"
)

func TestOutPointRoundTrip(t *testing.T) {
	o := btctypes.OutPoint{Txid: [32]byte{9, 8, 7}, Vout: 3}
	ser := OutPointSerializer{}
	w := wire.NewWriter()
	ser.Encode(w, o)
	r := wire.NewReader(w.Bytes())
	got, err := ser.Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.(btctypes.OutPoint) != o {
		t.Fatal("round trip mismatch")
	}
}

func TestTransactionSerializerRoundTrip(t *testing.T) {
	tx := &btctypes.Transaction{
		Version: 1,
		Vin: []btctypes.TxIn{
			{Prevout: btctypes.OutPoint{Txid: [32]byte{1}, Vout: 1}, ScriptSig: []byte{1, 2}, Sequence: 1},
		},
		Vout: []btctypes.TxOut{
			{Value: 500, ScriptPubKey: []byte{0x6a, 0x01, 0xff}},
		},
		LockTime: 7,
	}
	ser := TransactionSerializer{}
	w := wire.NewWriter()
	ser.Encode(w, tx)
	r := wire.NewReader(w.Bytes())
	got, err := ser.Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	gotTx := got.(*btctypes.Transaction)
	if gotTx.Txid() != tx.Txid() {
		t.Fatal("decoded transaction must have the same txid")
	}
}

func TestDecodeTransactionBytesRejectsTrailingGarbage(t *testing.T) {
	tx := &btctypes.Transaction{Version: 1}
	raw := append(tx.Bytes(), 0xff)
	if _, err := DecodeTransactionBytes(raw); err == nil {
		t.Fatal("expected error for trailing garbage")
	}
}
