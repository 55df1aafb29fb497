package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/certenlabs/sealproof/btcbridge"
	"github.com/certenlabs/sealproof/btctypes"
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/proof"
	"github.com/certenlabs/sealproof/seal"
	"github.com/certenlabs/sealproof/sealproofcfg"
	"github.com/certenlabs/sealproof/telemetry"
	"github.com/certenlabs/sealproof/txproof"
	"github.com/certenlabs/sealproof/wire"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "mkseal":
		err = cmdMkSeal(args)
	case "mkclosetx":
		err = cmdMkCloseTx(args)
	case "mkwitness":
		err = cmdMkWitness(args)
	case "verifywitness":
		err = cmdVerifyWitness(args)
	case "sealinfo":
		err = cmdSealInfo(args)
	case "witnessinfo":
		err = cmdWitnessInfo(args)
	case "stats":
		err = cmdStats(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("sus-tool %s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sus-tool <mkseal|mkclosetx|mkwitness|verifywitness|sealinfo|witnessinfo|stats> [flags]")
}

// writeFile writes a serialized proof.Proof to path, one object per file.
func writeFile(path string, p proof.Proof) error {
	return os.WriteFile(path, proof.Serialize(p), 0o644)
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// cmdMkSeal creates a BitcoinSingleUseSeal over an outpoint and writes it
// to --out.
func cmdMkSeal(args []string) error {
	fs := flag.NewFlagSet("mkseal", flag.ExitOnError)
	txidHex := fs.String("txid", "", "prevout txid, hex (internal byte order)")
	vout := fs.Uint("vout", 0, "prevout output index")
	out := fs.String("out", "", "output seal file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *txidHex == "" || *out == "" {
		return errs.New(errs.KindFormat, "mkseal requires --txid and --out")
	}
	raw, err := hex.DecodeString(*txidHex)
	if err != nil || len(raw) != 32 {
		return errs.New(errs.KindFormat, "--txid must be 32 bytes of hex")
	}
	var txid [32]byte
	copy(txid[:], raw)

	sealVal, err := seal.NewBitcoinSeal(btctypes.OutPoint{Txid: txid, Vout: uint32(*vout)})
	if err != nil {
		return err
	}
	if err := writeFile(*out, sealVal); err != nil {
		return err
	}
	telemetry.Global.SealsCreated.Add(1)
	fmt.Printf("wrote seal %s (hash %x)\n", *out, sealVal.Hash())
	return nil
}

// cmdMkCloseTx builds a raw closing transaction spending --txid:--vout and
// emitting one of the three canonical scriptPubKey templates over --digest,
// writing the serialized transaction bytes to --out.
func cmdMkCloseTx(args []string) error {
	fs := flag.NewFlagSet("mkclosetx", flag.ExitOnError)
	txidHex := fs.String("txid", "", "prevout txid, hex")
	vout := fs.Uint("vout", 0, "prevout output index")
	digestHex := fs.String("digest", "", "32-byte content digest, hex")
	template := fs.String("template", "op_return", "op_return|p2sh|p2pkh")
	value := fs.Int64("value", 0, "output value, satoshis")
	out := fs.String("out", "", "output transaction file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	txidRaw, err := hex.DecodeString(*txidHex)
	if err != nil || len(txidRaw) != 32 {
		return errs.New(errs.KindFormat, "--txid must be 32 bytes of hex")
	}
	digestRaw, err := hex.DecodeString(*digestHex)
	if err != nil || len(digestRaw) != 32 {
		return errs.New(errs.KindFormat, "--digest must be 32 bytes of hex")
	}
	var txid, digest [32]byte
	copy(txid[:], txidRaw)
	copy(digest[:], digestRaw)

	var script []byte
	switch *template {
	case "op_return":
		script = btctypes.OpReturnScript(digest[:])
	case "p2sh":
		script = btctypes.P2SHScript(btctypes.Hash160(digest[:]))
	case "p2pkh":
		script = btctypes.P2PKHScript(btctypes.Hash160(digest[:]))
	default:
		return errs.New(errs.KindFormat, "unknown --template %q", *template)
	}

	tx := &btctypes.Transaction{
		Version: 2,
		Vin: []btctypes.TxIn{
			{Prevout: btctypes.OutPoint{Txid: txid, Vout: uint32(*vout)}, Sequence: 0xffffffff},
		},
		Vout: []btctypes.TxOut{
			{Value: *value, ScriptPubKey: script},
		},
	}
	if err := os.WriteFile(*out, tx.Bytes(), 0o644); err != nil {
		return err
	}
	txid2 := tx.Txid()
	fmt.Printf("wrote transaction %s (txid %x)\n", *out, txid2)
	return nil
}

// cmdMkWitness builds a SealWitness from a seal file and a raw closing
// transaction, given the vin/vout indices that close the seal.
func cmdMkWitness(args []string) error {
	fs := flag.NewFlagSet("mkwitness", flag.ExitOnError)
	sealPath := fs.String("seal", "", "seal file path")
	txPath := fs.String("tx", "", "raw closing transaction file path")
	vinIndex := fs.Uint64("vin", 0, "closing input index")
	voutIndex := fs.Uint64("vout", 0, "closing output index")
	out := fs.String("out", "", "output witness file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sealBytes, err := readFile(*sealPath)
	if err != nil {
		return err
	}
	sealVal, err := seal.SingleUseSealUnion.Decode(wire.NewReader(sealBytes))
	if err != nil {
		return err
	}

	txBytes, err := readFile(*txPath)
	if err != nil {
		return err
	}
	tx, err := btcbridge.DecodeTransactionBytes(txBytes)
	if err != nil {
		return err
	}

	txProof := txproof.New(tx)
	txinproof, err := txproof.NewTxInProof(txProof, *vinIndex)
	if err != nil {
		return err
	}
	txoutproof, err := txproof.NewTxOutProof(txProof, *voutIndex)
	if err != nil {
		return err
	}

	witness, err := seal.NewWitness(sealVal, txinproof, txoutproof)
	if err != nil {
		return err
	}
	if err := writeFile(*out, witness); err != nil {
		return err
	}
	telemetry.Global.WitnessesMinted.Add(1)
	fmt.Printf("wrote witness %s (hash %x)\n", *out, witness.Hash())
	return nil
}

// cmdVerifyWitness checks a witness file's structural and digest
// invariants against a supplied content digest.
func cmdVerifyWitness(args []string) error {
	fs := flag.NewFlagSet("verifywitness", flag.ExitOnError)
	witnessPath := fs.String("witness", "", "witness file path")
	digestHex := fs.String("digest", "", "32-byte content digest, hex")
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := readFile(*witnessPath)
	if err != nil {
		return err
	}
	witness, err := seal.DecodeWitness(wire.NewReader(raw))
	if err != nil {
		return err
	}

	if err := seal.Verify(witness); err != nil {
		telemetry.Global.VerifyFailures.Add(1)
		return err
	}

	if *digestHex != "" {
		digestRaw, err := hex.DecodeString(*digestHex)
		if err != nil || len(digestRaw) != 32 {
			return errs.New(errs.KindFormat, "--digest must be 32 bytes of hex")
		}
		var digest hashtag.Digest
		copy(digest[:], digestRaw)
		if err := seal.VerifyDigest(witness, digest); err != nil {
			telemetry.Global.VerifyFailures.Add(1)
			return err
		}
	}
	telemetry.Global.VerifySuccesses.Add(1)
	fmt.Println("witness verifies OK")
	return nil
}

func cmdSealInfo(args []string) error {
	fs := flag.NewFlagSet("sealinfo", flag.ExitOnError)
	path := fs.String("seal", "", "seal file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	raw, err := readFile(*path)
	if err != nil {
		return err
	}
	sealVal, err := seal.SingleUseSealUnion.Decode(wire.NewReader(raw))
	if err != nil {
		return err
	}
	fmt.Printf("hash:    %x\n", sealVal.Hash())
	fmt.Printf("variant: %d\n", sealVal.UnionIndex())
	fmt.Printf("state:   %s\n", proof.StateOf(sealVal))
	if sealVal.UnionIndex() == seal.SealVariantBitcoin {
		if outpoint, err := seal.Outpoint(sealVal); err == nil {
			fmt.Printf("outpoint: %x:%d\n", outpoint.Txid, outpoint.Vout)
		}
	}
	return nil
}

func cmdWitnessInfo(args []string) error {
	fs := flag.NewFlagSet("witnessinfo", flag.ExitOnError)
	path := fs.String("witness", "", "witness file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	raw, err := readFile(*path)
	if err != nil {
		return err
	}
	witness, err := seal.DecodeWitness(wire.NewReader(raw))
	if err != nil {
		return err
	}
	fmt.Printf("hash:  %x\n", witness.Hash())
	fmt.Printf("state: %s\n", proof.StateOf(witness))
	return nil
}

func cmdStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	cfgPath := fs.String("config", "", "optional sealproofcfg YAML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := sealproofcfg.Default()
	if *cfgPath != "" {
		loaded, err := sealproofcfg.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if !cfg.Telemetry.Enabled {
		fmt.Println("telemetry disabled")
		return nil
	}
	snap := telemetry.Snap()
	fmt.Printf("seals created:     %d\n", snap.SealsCreated)
	fmt.Printf("witnesses minted:  %d\n", snap.WitnessesMinted)
	fmt.Printf("verify successes:  %d\n", snap.VerifySuccesses)
	fmt.Printf("verify failures:   %d\n", snap.VerifyFailures)
	return nil
}
