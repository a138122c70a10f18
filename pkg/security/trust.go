package security

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
)

// CertificateLoader resolves certificates by fingerprint. Implementations
// return an error wrapping ErrCertificateNotFound for unknown fingerprints.
type CertificateLoader interface {
	// Load returns the certificate and, when the loader holds it, the private key
	Load(ctx context.Context, fingerprint string) (*Credential, error)
}

// IssuerLookup is implemented by loaders that can also find the issuer of a
// certificate. It is used for revocation checks.
type IssuerLookup interface {
	Issuer(ctx context.Context, cert *x509.Certificate) (*x509.Certificate, error)
}

// TrustSet holds the acquirer certificates a response signature may come from.
// Alternate is optional and is consulted only when Primary does not match.
type TrustSet struct {
	Primary   *x509.Certificate
	Alternate *x509.Certificate
}

// Certificates returns the configured certificates, primary first
func (t TrustSet) Certificates() []*x509.Certificate {
	certs := make([]*x509.Certificate, 0, 2)
	if t.Primary != nil {
		certs = append(certs, t.Primary)
	}
	if t.Alternate != nil {
		certs = append(certs, t.Alternate)
	}
	return certs
}

// Match returns the certificate whose fingerprint equals fp, or nil
func (t TrustSet) Match(fp string) *x509.Certificate {
	for _, cert := range t.Certificates() {
		if FingerprintsEqual(Fingerprint(cert), fp) {
			return cert
		}
	}
	return nil
}

// CheckRevocation checks each certificate of the set against its issuer.
// A certificate whose issuer cannot be found is skipped.
func (t TrustSet) CheckRevocation(ctx context.Context, checker RevocationChecker, issuers IssuerLookup) error {
	if checker == nil || issuers == nil {
		return nil
	}
	for _, cert := range t.Certificates() {
		issuer, err := issuers.Issuer(ctx, cert)
		if errors.Is(err, ErrCertificateNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("issuer of %s: %w", Fingerprint(cert), err)
		}
		if err := checker.CheckRevocation(ctx, cert, issuer); err != nil {
			return fmt.Errorf("certificate %s: %w", Fingerprint(cert), err)
		}
	}
	return nil
}

// LoadTrustSet resolves the primary and optional alternate fingerprints
func LoadTrustSet(ctx context.Context, loader CertificateLoader, primary, alternate string) (TrustSet, error) {
	var trust TrustSet
	cred, err := loader.Load(ctx, primary)
	if err != nil {
		return trust, fmt.Errorf("acquirer certificate %s: %w", primary, err)
	}
	trust.Primary = cred.Certificate
	if alternate == "" {
		return trust, nil
	}
	cred, err = loader.Load(ctx, alternate)
	if err != nil {
		return trust, fmt.Errorf("alternate acquirer certificate %s: %w", alternate, err)
	}
	trust.Alternate = cred.Certificate
	return trust, nil
}
