//go:build pkcs11

package keystore

import (
	"context"
	"crypto"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/ThalesGroup/crypto11"

	"github.com/sirosfoundation/go-emandates/pkg/security"
)

// PKCS11Store implements Store using a PKCS#11 token (HSM/smart card).
//
// Certificates paired with a private key on the token are found by
// fingerprint. Every other fingerprint, typically the acquirer's, is resolved
// through the fallback store.
type PKCS11Store struct {
	ctx      *crypto11.Context
	fallback Store

	mu      sync.RWMutex
	entries map[string]*security.Credential
}

// PKCS11Config holds configuration for the PKCS#11 store
type PKCS11Config struct {
	// ModulePath is the path to the PKCS#11 library (.so/.dylib/.dll)
	ModulePath string

	// SlotID is the slot number to use (optional if SlotLabel is provided)
	SlotID *uint

	// SlotLabel is the token label to search for (optional if SlotID is provided)
	SlotLabel string

	// PIN is the user PIN for authentication
	PIN string

	// Fallback resolves certificates that are not on the token
	Fallback Store
}

// NewPKCS11Store logs in to the token and indexes its certificates
func NewPKCS11Store(cfg *PKCS11Config) (*PKCS11Store, error) {
	if cfg.PIN == "" {
		return nil, ErrPINRequired
	}
	config := &crypto11.Config{
		Path: cfg.ModulePath,
		Pin:  cfg.PIN,
	}

	if cfg.SlotID != nil {
		slotID := int(*cfg.SlotID)
		config.SlotNumber = &slotID
	}
	if cfg.SlotLabel != "" {
		config.TokenLabel = cfg.SlotLabel
	}

	ctx, err := crypto11.Configure(config)
	if err != nil {
		return nil, fmt.Errorf("configuring PKCS#11: %w", err)
	}

	s := &PKCS11Store{ctx: ctx, fallback: cfg.Fallback}
	if err := s.Reload(); err != nil {
		_ = ctx.Close()
		return nil, err
	}
	return s, nil
}

// Reload indexes the key pairs on the token again
func (s *PKCS11Store) Reload() error {
	pairs, err := s.ctx.FindAllPairedCertificates()
	if err != nil {
		return fmt.Errorf("finding certificates: %w", err)
	}

	entries := make(map[string]*security.Credential, len(pairs))
	for _, pair := range pairs {
		if len(pair.Certificate) == 0 {
			continue
		}
		cert := pair.Leaf
		if cert == nil {
			if cert, err = x509.ParseCertificate(pair.Certificate[0]); err != nil {
				return fmt.Errorf("parsing token certificate: %w", err)
			}
		}
		key, ok := pair.PrivateKey.(crypto.Signer)
		if !ok {
			continue
		}
		cred := &security.Credential{Certificate: cert, Key: key}
		entries[cred.Fingerprint()] = cred
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Load returns the token credential for fingerprint, or asks the fallback store
func (s *PKCS11Store) Load(ctx context.Context, fingerprint string) (*security.Credential, error) {
	s.mu.RLock()
	cred, ok := s.entries[security.NormalizeFingerprint(fingerprint)]
	s.mu.RUnlock()
	if ok {
		return cred, nil
	}
	if s.fallback != nil {
		return s.fallback.Load(ctx, fingerprint)
	}
	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, fingerprint)
}

// Issuer looks up the issuer in the fallback store
func (s *PKCS11Store) Issuer(ctx context.Context, cert *x509.Certificate) (*x509.Certificate, error) {
	if s.fallback != nil {
		return s.fallback.Issuer(ctx, cert)
	}
	return findIssuer(nil, cert)
}

// List describes the token key pairs followed by the fallback certificates
func (s *PKCS11Store) List(ctx context.Context) ([]KeyInfo, error) {
	s.mu.RLock()
	keys := make([]KeyInfo, 0, len(s.entries))
	for _, cred := range s.entries {
		keys = append(keys, describe(cred.Certificate, true))
	}
	s.mu.RUnlock()

	if s.fallback != nil {
		more, err := s.fallback.List(ctx)
		if err != nil {
			return nil, err
		}
		keys = append(keys, more...)
	}
	return keys, nil
}

// Close releases PKCS#11 resources
func (s *PKCS11Store) Close() error {
	if s.fallback != nil {
		_ = s.fallback.Close()
	}
	return s.ctx.Close()
}
