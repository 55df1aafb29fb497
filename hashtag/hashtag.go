// Package hashtag implements HashTag, the UUID-seeded, derivable HMAC-SHA256
// key that gives every proof class (and every sub-variant and content hash
// within it) its own domain-separated hashing space.
//
// This re-expresses the "duck-typed domain separation" of the original
// implementation (spec.md §9, open question 5) as a small immutable value
// type: a tag is either rooted at a UUID or derived from a parent tag, and
// either way it exposes a single Apply method that produces a Digest.
package hashtag

import (
	"crypto/hmac"
	"crypto/sha256"
	"strings"

	"github.com/google/uuid"

	"github.com/certenlabs/sealproof/errs"
)

// Digest is a fixed 32-byte commitment value, the output of every hashing
// call site in the proof framework.
type Digest [32]byte

// HashTag is an immutable, derivable HMAC-SHA256 key.
type HashTag struct {
	key   []byte
	chain []string // human-readable derivation chain, root first; diagnostics only
}

// New materializes a root HashTag from its UUID text form.
func New(uuidText string) (HashTag, error) {
	u, err := uuid.Parse(uuidText)
	if err != nil {
		return HashTag{}, errs.New(errs.KindFormat, "invalid HashTag uuid %q: %v", uuidText, err)
	}
	key := make([]byte, 16)
	copy(key, u[:])
	return HashTag{key: key, chain: []string{uuidText}}, nil
}

// MustNew is New, panicking on error. Intended for package-level HASHTAG
// constants initialized from string literals known to be valid UUIDs.
func MustNew(uuidText string) HashTag {
	t, err := New(uuidText)
	if err != nil {
		panic(err)
	}
	return t
}

// Derive returns a new tag whose key is HMAC_SHA256(key=parent.key,
// msg=t.key) — t derives from parent, the way a class's SUB_HASHTAG derives
// from its HASHTAG, or a CONTENTS_HASHTAG derives from a local UUID tag.
func (t HashTag) Derive(parent HashTag) HashTag {
	mac := hmac.New(sha256.New, parent.key)
	mac.Write(t.key)
	chain := make([]string, 0, len(parent.chain)+len(t.chain))
	chain = append(chain, parent.chain...)
	chain = append(chain, t.chain...)
	return HashTag{key: mac.Sum(nil), chain: chain}
}

// Apply returns HMAC_SHA256(key=t.key, msg=msg).
func (t HashTag) Apply(msg []byte) Digest {
	mac := hmac.New(sha256.New, t.key)
	mac.Write(msg)
	var d Digest
	copy(d[:], mac.Sum(nil))
	return d
}

// String renders the tag's derivation chain for diagnostics (sealinfo /
// witnessinfo). It has no bearing on hashing.
func (t HashTag) String() string {
	if len(t.chain) == 0 {
		return "hashtag(anonymous)"
	}
	return strings.Join(t.chain, " / ")
}
