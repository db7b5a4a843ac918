package claim

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/anbusan19/nominal/internal/service/ens"
)

// newSecret draws a fresh single-use 256-bit secret. Secrets are never
// reused across commits.
func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate claim secret: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}

// makeCommitment computes the hiding commitment the registrar expects:
// keccak256 over the 32-byte words (labelhash, owner, duration,
// secret). Deterministic and pure given its inputs.
func makeCommitment(label, ownerAddress string, durationSecs int64, secretHex string) (string, error) {
	secret, err := hexWord(secretHex)
	if err != nil {
		return "", fmt.Errorf("invalid secret: %w", err)
	}
	owner, err := addressWord(ownerAddress)
	if err != nil {
		return "", err
	}

	labelhash := ens.Labelhash(label)

	var duration [32]byte
	binary.BigEndian.PutUint64(duration[24:], uint64(durationSecs))

	h := sha3.NewLegacyKeccak256()
	h.Write(labelhash[:])
	h.Write(owner[:])
	h.Write(duration[:])
	h.Write(secret[:])

	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}

func hexWord(s string) ([32]byte, error) {
	var word [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return word, err
	}
	if len(raw) != 32 {
		return word, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(word[:], raw)
	return word, nil
}

// addressWord left-pads a 20-byte address into a 32-byte word.
func addressWord(addr string) ([32]byte, error) {
	var word [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(addr), "0x"))
	if err != nil || len(raw) != 20 {
		return word, fmt.Errorf("invalid address %q", addr)
	}
	copy(word[12:], raw)
	return word, nil
}
