package toon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldChain(t *testing.T) {
	inner := NewList(NewInt(1))
	key, v := foldChain("a", NewObject(NewField("b", NewObject(NewField("c", inner)))))
	assert.Equal(t, "a.b.c", key)
	assert.True(t, Equal(inner, v))

	// A multi-entry object stops the chain.
	stop := NewObject(NewField("x", NewInt(1)), NewField("y", NewInt(2)))
	key, v = foldChain("a", NewObject(NewField("b", stop)))
	assert.Equal(t, "a.b", key)
	assert.True(t, Equal(stop, v))

	// An unsafe child key stops the chain before it.
	key, v = foldChain("a", NewObject(NewField("my key", NewInt(1))))
	assert.Equal(t, "a", key)

	// An unsafe root key folds nothing.
	key, _ = foldChain("my key", NewObject(NewField("b", NewInt(1))))
	assert.Equal(t, "my key", key)

	// A dotted key never folds further; expansion could not split it back.
	key, _ = foldChain("a.b", NewObject(NewField("c", NewInt(1))))
	assert.Equal(t, "a.b", key)
}

func TestExpandablePath(t *testing.T) {
	segs, ok := expandablePath("a.b.c")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, segs)

	_, ok = expandablePath("plain")
	assert.False(t, ok)

	_, ok = expandablePath("a..b")
	assert.False(t, ok)

	_, ok = expandablePath(".a")
	assert.False(t, ok)

	_, ok = expandablePath("a.my key")
	assert.False(t, ok)
}
