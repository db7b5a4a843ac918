package ens

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/anbusan19/nominal/pkg/apperr"
)

// Suffix is the required top-level suffix for every root name handled
// by this system.
const Suffix = ".eth"

// Normalize canonicalizes an ENS name: trims whitespace and folds to
// lowercase. A dotted name must terminate in the .eth suffix. The
// function is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", apperr.New(apperr.KindValidation, "invalid ENS name: name must be a non-empty string")
	}
	if strings.Contains(normalized, ".") && !strings.HasSuffix(normalized, Suffix) {
		return "", apperr.Newf(apperr.KindValidation, "invalid ENS name %q: must end in %s", name, Suffix)
	}
	return normalized, nil
}

// NormalizeLabel canonicalizes a single label: lowercase, trimmed, and
// restricted to [a-z0-9] so it is always a valid ENS label.
func NormalizeLabel(label string) (string, error) {
	lowered := strings.ToLower(strings.TrimSpace(label))
	var b strings.Builder
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", apperr.Newf(apperr.KindValidation, "invalid label %q: no alphanumeric characters", label)
	}
	return b.String(), nil
}

// Namehash derives the canonical node id of a dot-separated name: each
// label's keccak256 is folded into its parent's node, starting from the
// 32-zero-byte root. Pure, no I/O.
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		lh := keccak256([]byte(labels[i]))
		node = keccak256(append(node[:], lh[:]...))
	}
	return node
}

// Labelhash is the keccak256 of a single label.
func Labelhash(label string) [32]byte {
	return keccak256([]byte(label))
}

// NodeHex renders a node id as a 0x-prefixed hex string, the form the
// contract call surface expects for bytes32 arguments.
func NodeHex(node [32]byte) string {
	return "0x" + hex.EncodeToString(node[:])
}

func keccak256(data []byte) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	copy(out[:], h.Sum(nil))
	return out
}
