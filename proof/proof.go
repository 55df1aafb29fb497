// Package proof implements the proof value model: immutable,
// hash-committed, structurally-typed values that support pruning — lossy
// substitution of a subtree by its commitment digest that nonetheless
// reproduces the same root hash.
//
// This re-expresses the source framework's class-level reflection
// (SERIALIZED_ATTRS / HASHTAG queried off a class object, union-subclass
// registration via decorator, __getattr__-based pruned-attribute access) as
// a construction-time Schema value walked by a single generic engine
// (GenericValue), per spec.md §9's "re-architecting dynamic patterns"
// guidance. Concrete proof "classes" are Class/Union descriptors; concrete
// values are GenericValue instances built against them. Proof types whose
// hash formula is not the generic HASHTAG(attrs) rule (TxProof's txid-XOR
// hash, see package txproof) implement the Proof interface directly instead
// of going through GenericValue.
package proof

import (
	"bytes"

	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/wire"
)

// Proof is the contract every proof value satisfies, whether backed by the
// generic engine (GenericValue) or hand-implemented (txproof.TxProof).
type Proof interface {
	// Hash returns the value's commitment digest, identical across all
	// pruned and unpruned forms of the same logical value.
	Hash() hashtag.Digest

	// IsPruned is the disjunction of IsFullyPruned and any serialized
	// sub-proof's IsPruned.
	IsPruned() bool

	// IsFullyPruned reports whether only the commitment digest remains.
	IsFullyPruned() bool

	// Prune returns a new, fully-pruned sibling with the same hash. A
	// GenericValue's pruned sibling carries a back-reference to the
	// receiver, so attributes remain recoverable on demand; a
	// txproof.TxProof's does not, and its transaction is not recoverable.
	Prune() Proof

	// Serialize writes the canonical proof(C) wire envelope: a pruned-bool
	// followed by either the 32-byte digest or the class body.
	Serialize(w *wire.Writer)
}

// State describes a proof value's pruning state, for diagnostics only — it
// plays no role in hashing or equality.
type State int

const (
	StateFull State = iota
	StatePartiallyPruned
	StateFullyPruned
)

func (s State) String() string {
	switch s {
	case StateFull:
		return "full"
	case StatePartiallyPruned:
		return "partially-pruned"
	case StateFullyPruned:
		return "fully-pruned"
	default:
		return "unknown"
	}
}

// StateOf derives a Proof's State from IsFullyPruned/IsPruned.
func StateOf(p Proof) State {
	switch {
	case p.IsFullyPruned():
		return StateFullyPruned
	case p.IsPruned():
		return StatePartiallyPruned
	default:
		return StateFull
	}
}

// Equal reports whether a and b carry the same commitment hash.
func Equal(a, b Proof) bool {
	ha, hb := a.Hash(), b.Hash()
	return bytes.Equal(ha[:], hb[:])
}

// Serialize is a convenience that runs p.Serialize against a fresh Writer and
// returns the resulting bytes.
func Serialize(p Proof) []byte {
	w := wire.NewWriter()
	p.Serialize(w)
	return w.Bytes()
}
