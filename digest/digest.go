// Package digest fingerprints encoded draw lists.
//
// A digest is the string "blake2b-256:" followed by the lowercase hex of the
// BLAKE2b-256 sum of the bytes. Equal bytes always give equal digests, so a
// digest identifies one exact encoding of one draw list.
package digest

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Algorithm is the digest prefix.
const Algorithm = "blake2b-256"

const prefix = Algorithm + ":"

// Size is the length of a digest string.
const Size = len(prefix) + 2*blake2b.Size256

var (
	// ErrMalformed is returned for strings that are not a digest.
	ErrMalformed = errors.New("digest: malformed digest")

	// ErrMismatch is returned by Verify when the bytes hash differently.
	ErrMismatch = errors.New("digest: mismatch")
)

// Sum returns the digest of data.
func Sum(data []byte) string {
	sum := blake2b.Sum256(data)
	return prefix + hex.EncodeToString(sum[:])
}

// Parse validates s and returns the raw 32-byte sum.
func Parse(s string) ([blake2b.Size256]byte, error) {
	var out [blake2b.Size256]byte
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return out, fmt.Errorf("%w: %q lacks %q prefix", ErrMalformed, s, prefix)
	}
	if len(rest) != hex.EncodedLen(blake2b.Size256) || strings.ToLower(rest) != rest {
		return out, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if _, err := hex.Decode(out[:], []byte(rest)); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

// Verify checks that data hashes to want.
func Verify(data []byte, want string) error {
	wantSum, err := Parse(want)
	if err != nil {
		return err
	}
	got := blake2b.Sum256(data)
	if subtle.ConstantTimeCompare(got[:], wantSum[:]) != 1 {
		return fmt.Errorf("%w: got %s, want %s", ErrMismatch, Sum(data), want)
	}
	return nil
}
