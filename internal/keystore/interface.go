// Package keystore resolves merchant and acquirer certificates by fingerprint.
//
// Two backends implement Store:
//
//   - File: certificates and private keys in PEM files in one directory
//   - PKCS#11: the signing key and its certificate on a hardware security
//     module or smart card, other certificates in a PEM directory
//
// Both satisfy security.CertificateLoader and security.IssuerLookup, so a
// Store can be handed to the communicator as is.
package keystore

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/sirosfoundation/go-emandates/pkg/security"
)

// Common errors
var (
	ErrKeyNotFound = fmt.Errorf("%w: signing key not found", security.ErrCertificateNotFound)
	ErrPINRequired = errors.New("PIN required to unlock key")
)

// Store resolves certificates, and the keys it holds for them, by fingerprint.
//
// Implementations must be safe for concurrent use.
type Store interface {
	security.CertificateLoader
	security.IssuerLookup

	// List describes every certificate in the store
	List(ctx context.Context) ([]KeyInfo, error)

	// Close releases any resources held by the store.
	Close() error
}

// KeyInfo describes a certificate in a store
type KeyInfo struct {
	// Fingerprint is the upper-case SHA-1 fingerprint used in configuration
	Fingerprint string

	// HasKey reports whether the store can sign with this certificate
	HasKey bool

	// Algorithm is the key algorithm (e.g., "RSA", "EC")
	Algorithm string

	// KeySize is the key size in bits (e.g., 2048 for RSA, 256 for P-256)
	KeySize int

	NotBefore time.Time
	NotAfter  time.Time

	Subject string
	Issuer  string
}

func describe(cert *x509.Certificate, hasKey bool) KeyInfo {
	return KeyInfo{
		Fingerprint: security.Fingerprint(cert),
		HasKey:      hasKey,
		Algorithm:   keyAlgorithmName(cert.PublicKey),
		KeySize:     keySize(cert.PublicKey),
		NotBefore:   cert.NotBefore,
		NotAfter:    cert.NotAfter,
		Subject:     cert.Subject.String(),
		Issuer:      cert.Issuer.String(),
	}
}

// findIssuer returns the certificate among candidates that signed cert.
// A self-signed certificate is its own issuer.
func findIssuer(candidates []*x509.Certificate, cert *x509.Certificate) (*x509.Certificate, error) {
	for _, c := range candidates {
		if !c.Equal(cert) && bytes.Equal(cert.RawIssuer, c.RawSubject) && cert.CheckSignatureFrom(c) == nil {
			return c, nil
		}
	}
	if bytes.Equal(cert.RawIssuer, cert.RawSubject) &&
		cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil {
		return cert, nil
	}
	return nil, fmt.Errorf("%w: issuer of %s", security.ErrCertificateNotFound, security.Fingerprint(cert))
}

func keyAlgorithmName(pub crypto.PublicKey) string {
	switch pub.(type) {
	case *ecdsa.PublicKey:
		return "EC"
	case *rsa.PublicKey:
		return "RSA"
	default:
		return "Unknown"
	}
}

func keySize(pub crypto.PublicKey) int {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		return k.Curve.Params().BitSize
	case *rsa.PublicKey:
		return k.N.BitLen()
	default:
		return 0
	}
}
