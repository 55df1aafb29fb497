package proof

import (
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/wire"
)

// AttrSpec is one (name, serializer) pair from a class's SERIALIZED_ATTRS.
// The order of a Class's Attrs slice IS the canonical serialization and
// hashing order — consensus-critical.
type AttrSpec struct {
	Name       string
	Serializer Serializer
}

// Class is a compile-time (or construction-time) proof class descriptor: a
// HASHTAG plus an ordered attribute schema. It plays the role the source
// framework filled with class-level reflection.
type Class struct {
	Name  string
	Tag   hashtag.HashTag
	Attrs []AttrSpec
}

// GenericValue is the data-driven engine that walks a Class's schema to
// implement construction, lazy hashing, pruning, and attribute
// materialization, for every proof class whose hash is the standard
// HASHTAG(attrs) rule (plain classes and GuMap union variants alike).
type GenericValue struct {
	class *Class

	// unionIndex is the declaration index of this value's variant when it
	// is being used as a ProofUnion member (see Union), or -1 otherwise. A
	// non-negative unionIndex means varuint(unionIndex) is hashed and
	// serialized immediately before the class's own attributes.
	unionIndex int

	// attrs holds the attribute values in class.Attrs order. A nil slice
	// means "fully pruned, nothing materialized yet"; once any attribute is
	// materialized the slice is allocated and individual nil entries mean
	// "not yet materialized, fetch via backref".
	attrs []any

	fullyPruned bool
	hash        *hashtag.Digest
	backref     *GenericValue
}

// New constructs a not-pruned GenericValue, type-checking each attribute
// value against the class's schema in order.
func New(class *Class, attrVals ...any) (*GenericValue, error) {
	return newMember(class, -1, attrVals...)
}

func newMember(class *Class, unionIndex int, attrVals ...any) (*GenericValue, error) {
	if len(attrVals) != len(class.Attrs) {
		return nil, errs.New(errs.KindSerializerType, "class %s: expected %d attributes, got %d", class.Name, len(class.Attrs), len(attrVals))
	}
	attrs := make([]any, len(attrVals))
	for i, a := range attrVals {
		spec := class.Attrs[i]
		if err := spec.Serializer.Check(a); err != nil {
			return nil, errs.New(errs.KindSerializerType, "class %s attribute %q: %v", class.Name, spec.Name, err)
		}
		attrs[i] = a
	}
	return &GenericValue{class: class, unionIndex: unionIndex, attrs: attrs}, nil
}

// FullyPruned constructs a value that retains only its commitment digest.
func FullyPruned(class *Class, digest hashtag.Digest) *GenericValue {
	return &GenericValue{class: class, unionIndex: -1, fullyPruned: true, hash: &digest}
}

// Class returns the value's class descriptor.
func (v *GenericValue) Class() *Class { return v.class }

// UnionIndex returns the value's variant index within its union, or -1 if
// the value is not a union member.
func (v *GenericValue) UnionIndex() int { return v.unionIndex }

// IsFullyPruned reports whether only the commitment digest remains.
func (v *GenericValue) IsFullyPruned() bool { return v.fullyPruned }

// IsPruned is the disjunction of IsFullyPruned and any attribute's IsPruned.
func (v *GenericValue) IsPruned() bool {
	if v.fullyPruned {
		return true
	}
	for _, a := range v.attrs {
		if p, ok := a.(Proof); ok && p.IsPruned() {
			return true
		}
	}
	return false
}

func (v *GenericValue) hashedBytes() []byte {
	w := wire.NewWriter()
	if v.unionIndex >= 0 {
		w.WriteVarUint(uint64(v.unionIndex))
	}
	for i, a := range v.attrs {
		spec := v.class.Attrs[i]
		if hs, ok := spec.Serializer.(HashingSerializer); ok {
			d := hs.Hash(a)
			w.WriteDigest([32]byte(d))
		} else {
			spec.Serializer.Encode(w, a)
		}
	}
	return w.Bytes()
}

// Hash computes (and memoizes) the value's commitment digest.
func (v *GenericValue) Hash() hashtag.Digest {
	if v.hash != nil {
		return *v.hash
	}
	h := v.class.Tag.Apply(v.hashedBytes())
	v.hash = &h
	return h
}

// Prune returns a new, fully-pruned sibling carrying a back-reference to v.
func (v *GenericValue) Prune() Proof {
	h := v.Hash()
	return &GenericValue{class: v.class, unionIndex: v.unionIndex, fullyPruned: true, hash: &h, backref: v}
}

// Attr returns the i'th attribute value (in class.Attrs order), recursively
// materializing it from the back-reference chain if necessary. Any
// sub-proof fetched this way is itself pruned one level before being
// cached, per spec.md §4.D.
func (v *GenericValue) Attr(i int) (any, error) {
	if v.attrs != nil && v.attrs[i] != nil {
		return v.attrs[i], nil
	}
	if v.backref == nil {
		return nil, errs.New(errs.KindPruned, "attribute %q unavailable: fully pruned with no back-reference", v.class.Attrs[i].Name)
	}
	src, err := v.backref.Attr(i)
	if err != nil {
		return nil, err
	}
	materialized := src
	if p, ok := src.(Proof); ok {
		materialized = p.Prune()
	}
	if v.attrs == nil {
		v.attrs = make([]any, len(v.class.Attrs))
	}
	v.attrs[i] = materialized
	v.fullyPruned = false
	return materialized, nil
}

// MustAttr is Attr, panicking on error. Intended for call sites that already
// know (by construction) the attribute is available.
func (v *GenericValue) MustAttr(i int) any {
	a, err := v.Attr(i)
	if err != nil {
		panic(err)
	}
	return a
}

// Serialize writes the canonical proof(C) wire envelope.
func (v *GenericValue) Serialize(w *wire.Writer) {
	w.WriteBool(v.fullyPruned)
	if v.fullyPruned {
		h := v.Hash()
		w.WriteDigest([32]byte(h))
		return
	}
	if v.unionIndex >= 0 {
		w.WriteVarUint(uint64(v.unionIndex))
	}
	for i, a := range v.attrs {
		v.class.Attrs[i].Serializer.Encode(w, a)
	}
}

// Decode reads a non-union GenericValue of class back off r.
func Decode(class *Class, r *wire.Reader) (*GenericValue, error) {
	return decodeMember(class, -1, r)
}

func decodeMember(class *Class, unionIndex int, r *wire.Reader) (*GenericValue, error) {
	fullyPruned, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if fullyPruned {
		raw, err := r.ReadDigest()
		if err != nil {
			return nil, err
		}
		v := FullyPruned(class, hashtag.Digest(raw))
		v.unionIndex = unionIndex
		return v, nil
	}
	attrs := make([]any, len(class.Attrs))
	for i, spec := range class.Attrs {
		val, err := spec.Serializer.Decode(r)
		if err != nil {
			return nil, err
		}
		attrs[i] = val
	}
	return newMember(class, unionIndex, attrs...)
}
