package helpers

import (
	"fmt"
	"strings"

	// Registers crypto.SHA256
	_ "crypto/sha256"

	"github.com/golang/glog"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	e "github.com/microcosm-cc/avatars/errors"
)

// emailCharset is the single-byte charset an email is encoded with before it
// is hashed
var emailCharset = charmap.Windows1252

var lower = cases.Lower(language.Und)

// NormaliseEmail trims control characters and spaces (code points up to
// U+0020) and lowercases an email address. Other Unicode spaces such as
// U+00A0 are kept. An empty input yields an empty string.
func NormaliseEmail(email string) string {
	email = strings.TrimFunc(email, isTrimmed)
	if email == "" {
		return ""
	}
	return lower.String(email)
}

func isTrimmed(r rune) bool {
	return r <= ' '
}

// encodeCP1252 maps each rune onto its Windows-1252 byte, runes without a
// mapping become '?'
func encodeCP1252(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := emailCharset.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// Digest hashes an already normalised value and returns the zero-padded,
// lowercase hex form of the digest
func Digest(value string) (string, error) {
	if !HashAlgorithm.Available() {
		return "", e.New(
			"helpers.Digest",
			e.DigestUnavailable,
			fmt.Sprintf("%s is not available", HashAlgorithmName),
		)
	}

	d := HashAlgorithm.New()
	d.Write(encodeCP1252(value))

	return fmt.Sprintf("%0*x", HashLength, d.Sum(nil)), nil
}

// GetHash returns the avatar hash for an email address, or "" if the address
// is empty or no hash could be computed
func GetHash(email string) string {
	email = NormaliseEmail(email)
	if email == "" {
		return ""
	}

	hash, err := Digest(email)
	if err != nil {
		glog.Errorf("Digest(email) %+v", err)
		return ""
	}
	return hash
}

// IsValidHash returns true if s is exactly HashLength lowercase hex digits
func IsValidHash(s string) bool {
	if len(s) != HashLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
