package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorFromName(t *testing.T) {
	// Known starknet_keccak vector.
	sel := SelectorFromName("transfer")
	assert.Equal(t, "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e", sel.String())

	// Deterministic, and distinct names yield distinct selectors.
	assert.Equal(t, SelectorFromName("arena"), SelectorFromName("arena"))
	assert.NotEqual(t, SelectorFromName("arena"), SelectorFromName("arena2"))
}

func TestSelectorFromNames(t *testing.T) {
	// The namespace participates in the derivation: the same resource name
	// under two namespaces gets two selectors.
	a := SelectorFromNames("arena", "Position")
	b := SelectorFromNames("dungeon", "Position")
	assert.NotEqual(t, a, b)

	// And the namespaced selector never collides with the bare name.
	assert.NotEqual(t, a, SelectorFromName("Position"))
}

func TestTagRoundTrip(t *testing.T) {
	tag := Tag("arena", "actions")
	assert.Equal(t, "arena-actions", tag)

	ns, name, err := SplitTag(tag)
	require.NoError(t, err)
	assert.Equal(t, "arena", ns)
	assert.Equal(t, "actions", name)

	// Only the first dash separates: names may carry dashes themselves.
	ns, name, err = SplitTag("arena-actions-v2")
	require.NoError(t, err)
	assert.Equal(t, "arena", ns)
	assert.Equal(t, "actions-v2", name)
}

func TestSplitTag_Invalid(t *testing.T) {
	for _, tag := range []string{"", "arena", "-actions", "arena-"} {
		_, _, err := SplitTag(tag)
		assert.Error(t, err, "tag %q", tag)
	}
}

func TestShortStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "arena", strings.Repeat("x", MaxShortStringLen)} {
		f, err := EncodeShortString(s)
		require.NoError(t, err)
		assert.Equal(t, s, DecodeShortString(&f))
	}
}

func TestEncodeShortString_TooLong(t *testing.T) {
	_, err := EncodeShortString(strings.Repeat("x", MaxShortStringLen+1))
	assert.Error(t, err)
}

func TestWorldSalt(t *testing.T) {
	assert.Equal(t, WorldSalt("seed"), WorldSalt("seed"))
	assert.NotEqual(t, WorldSalt("seed"), WorldSalt("other"))
}
