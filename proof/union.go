package proof

import (
	"github.com/certenlabs/sealproof/errs"
	"github.com/certenlabs/sealproof/hashtag"
	"github.com/certenlabs/sealproof/wire"
)

// VariantSpec names one member class of a ProofUnion. Declaration order is
// consensus-critical: it IS the variant's index, hashed and serialized as
// varuint(variant_index) ahead of the variant's own attributes.
type VariantSpec struct {
	Name  string
	Attrs []AttrSpec
}

// Union is a ProofUnion descriptor: a tagged sum type over an ordered list
// of variants. All variants share one HASHTAG; domain separation between
// variants comes solely from the varuint(variant_index) prefix, not from
// per-variant tags — the prefix is already injective over the union's
// declared variants, and a construction-time descriptor has no use for
// state reflection-derived subclass tags the way the original per-class
// HASHTAG scheme did. See DESIGN.md for this resolution.
type Union struct {
	Name     string
	Tag      hashtag.HashTag
	Variants []VariantSpec
}

// classFor builds the on-the-fly Class a given variant is encoded against:
// same Tag as the union (shared across all variants, see above), the
// variant's own attribute schema.
func (u *Union) classFor(variantIndex int) *Class {
	return &Class{
		Name:  u.Name + "." + u.Variants[variantIndex].Name,
		Tag:   u.Tag,
		Attrs: u.Variants[variantIndex].Attrs,
	}
}

// New constructs a member of variant variantIndex, type-checking attrVals
// against that variant's schema.
func (u *Union) New(variantIndex int, attrVals ...any) (*GenericValue, error) {
	if variantIndex < 0 || variantIndex >= len(u.Variants) {
		return nil, errs.New(errs.KindUnionVariant, "union %s: variant index %d out of range [0,%d)", u.Name, variantIndex, len(u.Variants))
	}
	return newMember(u.classFor(variantIndex), variantIndex, attrVals...)
}

// FullyPruned constructs a fully-pruned member of variant variantIndex
// carrying only digest.
func (u *Union) FullyPruned(variantIndex int, digest hashtag.Digest) (*GenericValue, error) {
	if variantIndex < 0 || variantIndex >= len(u.Variants) {
		return nil, errs.New(errs.KindUnionVariant, "union %s: variant index %d out of range [0,%d)", u.Name, variantIndex, len(u.Variants))
	}
	v := FullyPruned(u.classFor(variantIndex), digest)
	v.unionIndex = variantIndex
	return v, nil
}

// Decode reads varuint(variant_index) and dispatches to that variant's
// schema to decode the remainder of a GenericValue previously produced by
// New/FullyPruned for this union.
func (u *Union) Decode(r *wire.Reader) (*GenericValue, error) {
	fullyPruned, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if fullyPruned {
		raw, err := r.ReadDigest()
		if err != nil {
			return nil, err
		}
		// The variant index for a fully-pruned union member is not
		// recoverable from the wire form alone (only the digest is
		// present), so callers holding independent knowledge of which
		// variant a commitment belongs to should use FullyPruned directly.
		// Decode assumes variant 0's class shape for hashing purposes only;
		// since a fully-pruned value's hash is already fixed, no class
		// attributes are actually consulted.
		return FullyPruned(u.classFor(0), hashtag.Digest(raw)), nil
	}
	idx64, err := r.ReadVarUint()
	if err != nil {
		return nil, err
	}
	idx := int(idx64)
	if idx < 0 || idx >= len(u.Variants) {
		return nil, errs.New(errs.KindUnionVariant, "union %s: decoded variant index %d out of range [0,%d)", u.Name, idx, len(u.Variants))
	}
	class := u.classFor(idx)
	attrs := make([]any, len(class.Attrs))
	for i, spec := range class.Attrs {
		val, err := spec.Serializer.Decode(r)
		if err != nil {
			return nil, err
		}
		attrs[i] = val
	}
	return newMember(class, idx, attrs...)
}
