// Package naming derives the deterministic selectors that key every world
// resource. A namespace selector is the Starknet keccak of its name; a
// namespaced resource selector is the Poseidon hash of the namespace and
// resource name selectors. The world contract performs the same derivation
// onchain, so selectors computed here match the ones found in events.
package naming

import (
	"fmt"
	"strings"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
)

// MaxShortStringLen is the maximum byte length of a short-string encoded name.
const MaxShortStringLen = 31

// SelectorFromName returns the selector of a namespace (or any non-namespaced
// resource) from its human-readable name.
func SelectorFromName(name string) felt.Felt {
	return *crypto.StarknetKeccak([]byte(name))
}

// SelectorFromNames returns the selector of a resource registered under a
// namespace.
func SelectorFromNames(namespace, name string) felt.Felt {
	ns := SelectorFromName(namespace)
	n := SelectorFromName(name)
	return *crypto.Poseidon(&ns, &n)
}

// Tag returns the canonical "namespace-name" tag for a namespaced resource.
func Tag(namespace, name string) string {
	return namespace + "-" + name
}

// SplitTag splits a canonical tag into namespace and name.
func SplitTag(tag string) (namespace, name string, err error) {
	i := strings.Index(tag, "-")
	if i <= 0 || i == len(tag)-1 {
		return "", "", fmt.Errorf("invalid resource tag %q, expected namespace-name", tag)
	}
	return tag[:i], tag[i+1:], nil
}

// WorldSalt returns the deployment salt derived from the profile seed.
func WorldSalt(seed string) felt.Felt {
	return *crypto.StarknetKeccak([]byte(seed))
}

// EncodeShortString encodes s as a Cairo short string felt. Names longer than
// 31 bytes cannot be represented.
func EncodeShortString(s string) (felt.Felt, error) {
	if len(s) > MaxShortStringLen {
		return felt.Felt{}, fmt.Errorf("string %q exceeds %d bytes", s, MaxShortStringLen)
	}
	var buf [32]byte
	copy(buf[32-len(s):], s)

	var f felt.Felt
	f.SetBytes(buf[:])
	return f, nil
}

// DecodeShortString decodes a Cairo short string felt back into a Go string.
func DecodeShortString(f *felt.Felt) string {
	b := f.Bytes()
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return string(b[i:])
}
