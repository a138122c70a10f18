package security

import (
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"strings"
	"unicode"
)

// Fingerprint returns the upper-case hex SHA-1 digest of the certificate's DER
// encoding, the form used in KeyName and in configuration.
func Fingerprint(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	sum := sha1.Sum(cert.Raw)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// NormalizeFingerprint drops colons and whitespace and upper-cases the rest
func NormalizeFingerprint(fp string) string {
	return strings.Map(func(r rune) rune {
		if r == ':' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, fp)
}

// FingerprintsEqual compares two fingerprints after normalization
func FingerprintsEqual(a, b string) bool {
	na := NormalizeFingerprint(a)
	return na != "" && na == NormalizeFingerprint(b)
}
