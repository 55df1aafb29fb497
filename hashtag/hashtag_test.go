package hashtag

import (
	"bytes"
	"testing"
)

const rootUUID = "123e4567-e89b-12d3-a456-426614174000"
const otherUUID = "223e4567-e89b-12d3-a456-426614174000"

func TestApplyDeterministic(t *testing.T) {
	tag := MustNew(rootUUID)
	a := tag.Apply([]byte("hello"))
	b := tag.Apply([]byte("hello"))
	if a != b {
		t.Fatal("Apply must be deterministic for the same tag and message")
	}
}

func TestDomainSeparationAcrossTags(t *testing.T) {
	a := MustNew(rootUUID)
	b := MustNew(otherUUID)
	ha := a.Apply([]byte("same message"))
	hb := b.Apply([]byte("same message"))
	if ha == hb {
		t.Fatal("distinct tags must not collide on identical messages")
	}
}

func TestDeriveIsNotParent(t *testing.T) {
	parent := MustNew(rootUUID)
	child := MustNew(otherUUID).Derive(parent)
	msg := []byte("payload")
	if bytes.Equal(parent.Apply(msg)[:], child.Apply(msg)[:]) {
		t.Fatal("derived tag must not produce the parent's digests")
	}
}

func TestDeriveDeterministic(t *testing.T) {
	parent := MustNew(rootUUID)
	c1 := MustNew(otherUUID).Derive(parent)
	c2 := MustNew(otherUUID).Derive(parent)
	msg := []byte("x")
	if c1.Apply(msg) != c2.Apply(msg) {
		t.Fatal("deriving the same child tag from the same parent twice must agree")
	}
}

func TestNewRejectsInvalidUUID(t *testing.T) {
	if _, err := New("not-a-uuid"); err == nil {
		t.Fatal("expected error for invalid uuid text")
	}
}
