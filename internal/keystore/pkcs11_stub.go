//go:build !pkcs11

package keystore

import (
	"context"
	"crypto/x509"
	"errors"

	"github.com/sirosfoundation/go-emandates/pkg/security"
)

// PKCS11Store is a stub that returns an error when PKCS#11 support is not compiled in.
type PKCS11Store struct{}

// PKCS11Config holds configuration for the PKCS#11 store
type PKCS11Config struct {
	ModulePath string
	SlotID     *uint
	SlotLabel  string
	PIN        string
	Fallback   Store
}

// ErrPKCS11NotSupported is returned when PKCS#11 operations are attempted
// but the binary was not compiled with PKCS#11 support.
var ErrPKCS11NotSupported = errors.New("PKCS#11 support not compiled in (build with -tags pkcs11)")

// NewPKCS11Store returns an error because PKCS#11 is not compiled in.
func NewPKCS11Store(cfg *PKCS11Config) (*PKCS11Store, error) {
	return nil, ErrPKCS11NotSupported
}

// Load returns an error because PKCS#11 is not compiled in.
func (s *PKCS11Store) Load(ctx context.Context, fingerprint string) (*security.Credential, error) {
	return nil, ErrPKCS11NotSupported
}

// Issuer returns an error because PKCS#11 is not compiled in.
func (s *PKCS11Store) Issuer(ctx context.Context, cert *x509.Certificate) (*x509.Certificate, error) {
	return nil, ErrPKCS11NotSupported
}

// List returns an error because PKCS#11 is not compiled in.
func (s *PKCS11Store) List(ctx context.Context) ([]KeyInfo, error) {
	return nil, ErrPKCS11NotSupported
}

// Close is a no-op.
func (s *PKCS11Store) Close() error {
	return nil
}
