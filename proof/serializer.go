package proof

import (
	"github.com/certenlabs/sealproof/bitseq"
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/wire"
)

// Serializer is the capability every attribute serializer exposes: a
// construction-time type check, and an encode/decode pair.
type Serializer interface {
	// Check verifies v is a legal value for this attribute, returning a
	// KindSerializerType error otherwise.
	Check(v any) error
	// Encode writes v's canonical bytes. The caller must have already
	// checked v.
	Encode(w *wire.Writer, v any)
	// Decode reads one value back off r.
	Decode(r *wire.Reader) (any, error)
}

// HashingSerializer is the subset of serializers that additionally expose a
// dedicated Hash, used when the hashing engine walks SERIALIZED_ATTRS: for a
// hashing serializer, the parent digest is computed over the attribute's
// hash rather than its raw canonical bytes. This is what lets a pruned
// sub-proof's digest stand in for its full encoding without perturbing the
// parent's hash.
type HashingSerializer interface {
	Serializer
	Hash(v any) hashtag.Digest
}

// ---------------------------------------------------------------------
// Built-in non-hashing serializers for plain (non-proof) attribute types.
// ---------------------------------------------------------------------

// VarUintSerializer serializes a uint64 as a canonical varuint.
type VarUintSerializer struct{}

func (VarUintSerializer) Check(v any) error {
	if _, ok := v.(uint64); !ok {
		return errs.New(errs.KindSerializerType, "expected uint64, got %T", v)
	}
	return nil
}

func (VarUintSerializer) Encode(w *wire.Writer, v any) {
	w.WriteVarUint(v.(uint64))
}

func (VarUintSerializer) Decode(r *wire.Reader) (any, error) {
	return r.ReadVarUint()
}

// BoolSerializer serializes a bool as a canonical bool byte.
type BoolSerializer struct{}

func (BoolSerializer) Check(v any) error {
	if _, ok := v.(bool); !ok {
		return errs.New(errs.KindSerializerType, "expected bool, got %T", v)
	}
	return nil
}

func (BoolSerializer) Encode(w *wire.Writer, v any) {
	w.WriteBool(v.(bool))
}

func (BoolSerializer) Decode(r *wire.Reader) (any, error) {
	return r.ReadBool()
}

// BytesSerializer serializes a []byte as a length-prefixed byte string.
type BytesSerializer struct{}

func (BytesSerializer) Check(v any) error {
	if _, ok := v.([]byte); !ok {
		return errs.New(errs.KindSerializerType, "expected []byte, got %T", v)
	}
	return nil
}

func (BytesSerializer) Encode(w *wire.Writer, v any) {
	w.WriteLenPrefixed(v.([]byte))
}

func (BytesSerializer) Decode(r *wire.Reader) (any, error) {
	return r.ReadLenPrefixed()
}

// DigestSerializer serializes a fixed 32-byte hashtag.Digest.
type DigestSerializer struct{}

func (DigestSerializer) Check(v any) error {
	if _, ok := v.(hashtag.Digest); !ok {
		return errs.New(errs.KindSerializerType, "expected Digest, got %T", v)
	}
	return nil
}

func (DigestSerializer) Encode(w *wire.Writer, v any) {
	w.WriteDigest([32]byte(v.(hashtag.Digest)))
}

func (DigestSerializer) Decode(r *wire.Reader) (any, error) {
	raw, err := r.ReadDigest()
	if err != nil {
		return nil, err
	}
	return hashtag.Digest(raw), nil
}

// BitsSerializer serializes a bitseq.Bits value in its canonical wire form.
type BitsSerializer struct{}

func (BitsSerializer) Check(v any) error {
	if _, ok := v.(bitseq.Bits); !ok {
		return errs.New(errs.KindSerializerType, "expected Bits, got %T", v)
	}
	return nil
}

func (BitsSerializer) Encode(w *wire.Writer, v any) {
	v.(bitseq.Bits).Encode(w)
}

func (BitsSerializer) Decode(r *wire.Reader) (any, error) {
	return bitseq.Decode(r)
}

// ---------------------------------------------------------------------
// The hashing serializer: wraps a nested Proof attribute.
// ---------------------------------------------------------------------

// ProofSerializer is a HashingSerializer for attributes that are themselves
// nested Proof values (sub-proofs). Its Hash is the sub-proof's own Hash, so
// pruning the sub-proof leaves the parent's hash untouched. CheckType lets
// callers additionally require a specific concrete Go type (e.g. the union
// must only accept a *GenericValue built against a particular Class), beyond
// the plain "is this a Proof" check; leave it nil to accept any Proof.
type ProofSerializer struct {
	CheckType func(v any) error
	DecodeFn  func(r *wire.Reader) (Proof, error)
}

func (s ProofSerializer) Check(v any) error {
	if _, ok := v.(Proof); !ok {
		return errs.New(errs.KindSerializerType, "expected Proof, got %T", v)
	}
	if s.CheckType != nil {
		return s.CheckType(v)
	}
	return nil
}

func (s ProofSerializer) Encode(w *wire.Writer, v any) {
	v.(Proof).Serialize(w)
}

func (s ProofSerializer) Decode(r *wire.Reader) (any, error) {
	p, err := s.DecodeFn(r)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s ProofSerializer) Hash(v any) hashtag.Digest {
	return v.(Proof).Hash()
}
