package security

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedXML is returned when the input cannot be parsed as XML
	ErrMalformedXML = errors.New("malformed XML")
	// ErrNoSignature is returned when a document carries no signature element
	ErrNoSignature = errors.New("no signature element")
	// ErrUnresolvedSigner is returned when the claimed signer matches no usable certificate
	ErrUnresolvedSigner = errors.New("unresolved signer")
	// ErrSignatureMismatch is returned when a cryptographic check fails
	ErrSignatureMismatch = errors.New("signature mismatch")
	// ErrDigestMismatch is returned when the reference digest does not match the signed content
	ErrDigestMismatch = fmt.Errorf("%w: digest mismatch", ErrSignatureMismatch)
	// ErrNotEligible is returned when a nested signature is requested for a report that was not accepted
	ErrNotEligible = errors.New("acceptance report is not eligible for signing")
	// ErrCertificateNotFound is returned by a CertificateLoader for an unknown fingerprint
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrCertificateRevoked is returned when a certificate has been revoked
	ErrCertificateRevoked = errors.New("certificate has been revoked")
)
