package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"golang.org/x/crypto/blake2b"
)

const minPasswordLength = 8

var ErrPasswordTooShort = domainerr.Validationf("password must be at least %d characters", minPasswordLength)

// Digester turns a password into the string kept in the history. Equal
// passwords must always produce equal digests.
type Digester interface {
	Digest(password string) string
}

// SHA256Digester renders SHA-256 as lowercase hex.
type SHA256Digester struct{}

func (SHA256Digester) Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Blake2bDigester renders BLAKE2b-256 as lowercase hex.
type Blake2bDigester struct{}

func (Blake2bDigester) Digest(password string) string {
	sum := blake2b.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

var ErrUnknownDigest = domainerr.Validationf("unknown password digest")

// DigesterByName resolves "sha256" or "blake2b", case-insensitively.
func DigesterByName(name string) (Digester, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sha256":
		return SHA256Digester{}, nil
	case "blake2b":
		return Blake2bDigester{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, name)
	}
}

// ValidatePassword enforces the minimum length, counted in characters.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func digestsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
