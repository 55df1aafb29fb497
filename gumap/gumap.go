// Package gumap implements the GuMap factory: a prefix tree of
// seal-witness-authenticated nodes (Unused/Leaf/Inner), parameterized by a
// user-supplied HASHTAG, key/value serializers, seal/witness classes, and a
// key2prefix mapping from application keys to bit paths.
package gumap

import (
	"github.com/certenlabs/sealproof/bitseq"
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/proof"
	"github.com/certenlabs/sealproof/wire"
)

const (
	// VariantUnusedPrefix is the declaration index of the Unused node.
	VariantUnusedPrefix = 0
	// VariantLeafPrefix is the declaration index of the Leaf node.
	VariantLeafPrefix = 1
	// VariantInnerPrefix is the declaration index of the Inner node.
	VariantInnerPrefix = 2
)

// MakeWitness mints a SealWitness closing unused.seal over content digest h.
// Supplied by the caller, since minting a witness requires constructing and
// observing an actual closing Bitcoin transaction — an I/O concern outside
// this package's synchronous, side-effect-free core.
type MakeWitness func(unusedSeal *proof.GenericValue, h hashtag.Digest) (*proof.GenericValue, error)

// sealSerializer and witnessSerializer adapt the caller's chosen seal/
// witness classes into hashing serializers for use as GuMap attributes.
// Because SEAL_CLASS/WITNESS_CLASS are parameters of the factory rather
// than fixed Go types, these wrap a *proof.Union (seal) and *proof.Class
// (witness) supplied at Map construction.

type sealSerializer struct{ union *proof.Union }

func (s sealSerializer) Check(v any) error {
	gv, ok := v.(*proof.GenericValue)
	if !ok || gv.UnionIndex() < 0 {
		return errs.New(errs.KindSerializerType, "expected seal union value, got %T", v)
	}
	return nil
}
func (s sealSerializer) Encode(w *wire.Writer, v any) { v.(*proof.GenericValue).Serialize(w) }
func (s sealSerializer) Decode(r *wire.Reader) (any, error) {
	return s.union.Decode(r)
}
func (s sealSerializer) Hash(v any) hashtag.Digest { return v.(*proof.GenericValue).Hash() }

type witnessSerializer struct{ class *proof.Class }

func (s witnessSerializer) Check(v any) error {
	gv, ok := v.(*proof.GenericValue)
	if !ok || gv.Class() != s.class {
		return errs.New(errs.KindSerializerType, "expected witness class %s value, got %T", s.class.Name, v)
	}
	return nil
}
func (s witnessSerializer) Encode(w *wire.Writer, v any) { v.(*proof.GenericValue).Serialize(w) }
func (s witnessSerializer) Decode(r *wire.Reader) (any, error) {
	return proof.Decode(s.class, r)
}
func (s witnessSerializer) Hash(v any) hashtag.Digest { return v.(*proof.GenericValue).Hash() }

type bitsSerializer struct{}

func (bitsSerializer) Check(v any) error {
	if _, ok := v.(bitseq.Bits); !ok {
		return errs.New(errs.KindSerializerType, "expected Bits, got %T", v)
	}
	return nil
}
func (bitsSerializer) Encode(w *wire.Writer, v any) { v.(bitseq.Bits).Encode(w) }
func (bitsSerializer) Decode(r *wire.Reader) (any, error) {
	return bitseq.Decode(r)
}

// Map is a GuMap instance: the realization of the factory described in
// spec.md §4.H, parameterized at construction time instead of via a
// user-subclassed descriptor class.
type Map struct {
	Tag           hashtag.HashTag
	KeySerializer proof.Serializer
	ValSerializer proof.Serializer
	SealUnion     *proof.Union
	WitnessClass  *proof.Class
	Key2Prefix    func(key any) bitseq.Bits

	union            *proof.Union
	leafContentsTag  hashtag.HashTag
	innerContentsTag hashtag.HashTag
}

// New constructs a Map from its fixed parameters, deriving the
// Leaf/Inner content-digest HASHTAGs from the map's own Tag exactly as
// spec.md §4.C's domain-separation model prescribes: each sub-purpose gets
// its own tag, derived rather than independently rooted.
func New(tag hashtag.HashTag, keySer, valSer proof.Serializer, sealUnion *proof.Union, witnessClass *proof.Class, key2prefix func(key any) bitseq.Bits) *Map {
	m := &Map{
		Tag:           tag,
		KeySerializer: keySer,
		ValSerializer: valSer,
		SealUnion:     sealUnion,
		WitnessClass:  witnessClass,
		Key2Prefix:    key2prefix,
	}
	m.leafContentsTag = hashtag.MustNew("af556677-8899-4aab-bbcc-ddeeff001122").Derive(tag)
	m.innerContentsTag = hashtag.MustNew("bf667788-99aa-4bbc-ccdd-eeff00112233").Derive(tag)

	sealSer := sealSerializer{union: sealUnion}
	witnessSer := witnessSerializer{class: witnessClass}

	m.union = &proof.Union{
		Name: "GuMapNode",
		Tag:  tag,
		Variants: []proof.VariantSpec{
			{
				Name: "UnusedPrefix",
				Attrs: []proof.AttrSpec{
					{Name: "prefix", Serializer: bitsSerializer{}},
					{Name: "seal", Serializer: sealSer},
				},
			},
			{
				Name: "LeafPrefix",
				Attrs: []proof.AttrSpec{
					{Name: "witness", Serializer: witnessSer},
					{Name: "key", Serializer: keySer},
					{Name: "value", Serializer: valSer},
				},
			},
			{
				Name: "InnerPrefix",
				Attrs: []proof.AttrSpec{
					{Name: "prefix", Serializer: bitsSerializer{}},
					{Name: "witness", Serializer: witnessSer},
					{Name: "left", Serializer: nodeSerializer{m: m}},
					{Name: "right", Serializer: nodeSerializer{m: m}},
				},
			},
		},
	}
	return m
}

// nodeSerializer lets an InnerPrefix node nest left/right GuMap nodes as
// hashing attributes; it is defined after Map's fields so it can reach
// m.union lazily (the union isn't built yet at the point left/right's own
// AttrSpecs are constructed, so this indirects through m).
type nodeSerializer struct{ m *Map }

func (s nodeSerializer) Check(v any) error {
	gv, ok := v.(*proof.GenericValue)
	if !ok || gv.UnionIndex() < 0 {
		return errs.New(errs.KindSerializerType, "expected GuMap node value, got %T", v)
	}
	return nil
}
func (s nodeSerializer) Encode(w *wire.Writer, v any) { v.(*proof.GenericValue).Serialize(w) }
func (s nodeSerializer) Decode(r *wire.Reader) (any, error) {
	return s.m.union.Decode(r)
}
func (s nodeSerializer) Hash(v any) hashtag.Digest { return v.(*proof.GenericValue).Hash() }

// NewUnusedPrefix constructs an UnusedPrefix node over prefix and seal.
func (m *Map) NewUnusedPrefix(prefix bitseq.Bits, sealVal *proof.GenericValue) (*proof.GenericValue, error) {
	return m.union.New(VariantUnusedPrefix, prefix, sealVal)
}

func attrHashOrBytes(ser proof.Serializer, v any) []byte {
	if hs, ok := ser.(proof.HashingSerializer); ok {
		d := hs.Hash(v)
		return d[:]
	}
	w := wire.NewWriter()
	ser.Encode(w, v)
	return w.Bytes()
}

// LeafFromUnusedPrefix builds a LeafPrefix node from an UnusedPrefix node,
// key, and value: computes the content digest h =
// Leaf_CONTENTS_HASHTAG(key_hash || value_hash), mints the closing witness
// via makeWitness, and constructs the variant.
func (m *Map) LeafFromUnusedPrefix(unused *proof.GenericValue, key, value any, makeWitness MakeWitness) (*proof.GenericValue, error) {
	if unused.UnionIndex() != VariantUnusedPrefix {
		return nil, errs.New(errs.KindUnionVariant, "LeafFromUnusedPrefix requires an UnusedPrefix node")
	}
	if err := m.KeySerializer.Check(key); err != nil {
		return nil, err
	}
	if err := m.ValSerializer.Check(value); err != nil {
		return nil, err
	}
	sealAttr, err := unused.Attr(1)
	if err != nil {
		return nil, err
	}
	unusedSeal := sealAttr.(*proof.GenericValue)

	msg := append(append([]byte{}, attrHashOrBytes(m.KeySerializer, key)...), attrHashOrBytes(m.ValSerializer, value)...)
	h := m.leafContentsTag.Apply(msg)

	witness, err := makeWitness(unusedSeal, h)
	if err != nil {
		return nil, err
	}
	return m.union.New(VariantLeafPrefix, witness, key, value)
}

// InnerFromUnusedPrefix builds an InnerPrefix node from an UnusedPrefix
// node and two already-sealed child nodes. The Inner node's prefix is
// carried over from the UnusedPrefix node it replaces, unchanged: left and
// right each implicitly extend it with bits 0 and 1 respectively.
func (m *Map) InnerFromUnusedPrefix(unused *proof.GenericValue, left, right *proof.GenericValue, makeWitness MakeWitness) (*proof.GenericValue, error) {
	if unused.UnionIndex() != VariantUnusedPrefix {
		return nil, errs.New(errs.KindUnionVariant, "InnerFromUnusedPrefix requires an UnusedPrefix node")
	}
	prefixAttr, err := unused.Attr(0)
	if err != nil {
		return nil, err
	}
	sealAttr, err := unused.Attr(1)
	if err != nil {
		return nil, err
	}
	unusedSeal := sealAttr.(*proof.GenericValue)

	leftSeal, err := childSeal(left)
	if err != nil {
		return nil, err
	}
	rightSeal, err := childSeal(right)
	if err != nil {
		return nil, err
	}
	msg := append(append([]byte{}, leftSeal[:]...), rightSeal[:]...)
	h := m.innerContentsTag.Apply(msg)

	witness, err := makeWitness(unusedSeal, h)
	if err != nil {
		return nil, err
	}
	return m.union.New(VariantInnerPrefix, prefixAttr, witness, left, right)
}

func childSeal(node *proof.GenericValue) (hashtag.Digest, error) {
	var sealAttr any
	var err error
	switch node.UnionIndex() {
	case VariantUnusedPrefix:
		sealAttr, err = node.Attr(1)
	case VariantLeafPrefix:
		wAttr, werr := node.Attr(0)
		if werr != nil {
			return hashtag.Digest{}, werr
		}
		sealAttr, err = witnessSealAttr(wAttr.(*proof.GenericValue))
	case VariantInnerPrefix:
		wAttr, werr := node.Attr(1)
		if werr != nil {
			return hashtag.Digest{}, werr
		}
		sealAttr, err = witnessSealAttr(wAttr.(*proof.GenericValue))
	default:
		return hashtag.Digest{}, errs.New(errs.KindUnionVariant, "unrecognized GuMap node variant %d", node.UnionIndex())
	}
	if err != nil {
		return hashtag.Digest{}, err
	}
	return sealAttr.(*proof.GenericValue).Hash(), nil
}

func witnessSealAttr(witness *proof.GenericValue) (any, error) {
	return witness.Attr(0)
}

// Verify recomputes a node's content digest and checks it against the
// node's witness, per spec.md §4.H / §8.7. UnusedPrefix trivially verifies.
func (m *Map) Verify(node *proof.GenericValue) error {
	switch node.UnionIndex() {
	case VariantUnusedPrefix:
		return nil
	case VariantLeafPrefix:
		witnessAttr, err := node.Attr(0)
		if err != nil {
			return err
		}
		keyAttr, err := node.Attr(1)
		if err != nil {
			return err
		}
		valAttr, err := node.Attr(2)
		if err != nil {
			return err
		}
		msg := append(append([]byte{}, attrHashOrBytes(m.KeySerializer, keyAttr)...), attrHashOrBytes(m.ValSerializer, valAttr)...)
		h := m.leafContentsTag.Apply(msg)
		return verifyWitnessDigest(witnessAttr.(*proof.GenericValue), h)
	case VariantInnerPrefix:
		// prefixAttr (index 0) is consensus-critical serialized data but
		// isn't itself re-derived here; Verify only checks the content
		// digest left/right seal into.
		witnessAttr, err := node.Attr(1)
		if err != nil {
			return err
		}
		leftAttr, err := node.Attr(2)
		if err != nil {
			return err
		}
		rightAttr, err := node.Attr(3)
		if err != nil {
			return err
		}
		leftSeal, err := childSeal(leftAttr.(*proof.GenericValue))
		if err != nil {
			return err
		}
		rightSeal, err := childSeal(rightAttr.(*proof.GenericValue))
		if err != nil {
			return err
		}
		msg := append(append([]byte{}, leftSeal[:]...), rightSeal[:]...)
		h := m.innerContentsTag.Apply(msg)
		return verifyWitnessDigest(witnessAttr.(*proof.GenericValue), h)
	default:
		return errs.New(errs.KindUnionVariant, "unrecognized GuMap node variant %d", node.UnionIndex())
	}
}

// verifyWitnessDigest is indirected through a package variable: gumap does
// not import seal, and its witness class is merely typed as *proof.Class.
// Callers install the check (normally seal.VerifyDigest) with
// SetWitnessVerifier.
var verifyWitnessDigestFn = func(witness *proof.GenericValue, h hashtag.Digest) error {
	return errs.New(errs.KindWitnessMismatch, "no witness verifier configured: set gumap.SetWitnessVerifier")
}

func verifyWitnessDigest(witness *proof.GenericValue, h hashtag.Digest) error {
	return verifyWitnessDigestFn(witness, h)
}

// SetWitnessVerifier installs the function used to check a witness's
// closing scriptPubKey against a content digest (normally
// seal.VerifyDigest). Call it once at program startup before using
// Map.Verify; left unset, Verify always fails closed.
func SetWitnessVerifier(fn func(witness *proof.GenericValue, h hashtag.Digest) error) {
	verifyWitnessDigestFn = fn
}

// Walk follows prefix through root (bit 0 selects left, bit 1 selects
// right at an Inner node) and returns the node reached, or false if the
// path runs into a Leaf or Unused node before prefix is exhausted, or the
// path is too short. This is the lookup helper spec.md §4.H calls out as
// implicit in the model and explicitly leaves to implementers.
func Walk(root *proof.GenericValue, prefix bitseq.Bits) (*proof.GenericValue, bool) {
	node := root
	for i := 0; i < prefix.Len(); i++ {
		if node.UnionIndex() != VariantInnerPrefix {
			return nil, false
		}
		idx := 2
		if prefix.At(i) {
			idx = 3
		}
		childAttr, err := node.Attr(idx)
		if err != nil {
			return nil, false
		}
		node = childAttr.(*proof.GenericValue)
	}
	return node, true
}
