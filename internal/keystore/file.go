package keystore

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirosfoundation/go-emandates/pkg/security"
)

// FileStore implements Store using PEM files in a single directory.
//
// Certificates are read from *.crt, *.cer and *.pem files, which may hold
// several certificates each. A private key is paired with a certificate when
// it sits in the same file or in a *.key file with the same base name.
// The directory is read once, when the store is created.
type FileStore struct {
	dir string

	mu      sync.RWMutex
	entries map[string]*security.Credential
}

var certificateExtensions = map[string]bool{".crt": true, ".cer": true, ".pem": true}

// NewFileStore reads every certificate in dir
func NewFileStore(dir string) (*FileStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("checking certificate directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("certificate directory is not a directory: %s", dir)
	}

	s := &FileStore{dir: dir, entries: make(map[string]*security.Credential)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload reads the directory again
func (s *FileStore) Reload() error {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading certificate directory: %w", err)
	}

	entries := make(map[string]*security.Credential)
	for _, entry := range dirEntries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || !certificateExtensions[ext] {
			continue
		}
		path := filepath.Join(s.dir, name)
		certs, keys, err := readPEMFile(path)
		if err != nil {
			return err
		}

		keyPath := strings.TrimSuffix(path, filepath.Ext(name)) + ".key"
		if _, err := os.Stat(keyPath); err == nil {
			_, more, err := readPEMFile(keyPath)
			if err != nil {
				return err
			}
			keys = append(keys, more...)
		}

		for _, cert := range certs {
			cred := &security.Credential{Certificate: cert, Key: matchingKey(cert, keys)}
			fp := cred.Fingerprint()
			// a copy with a key wins over one without
			if prev, ok := entries[fp]; ok && prev.Key != nil {
				continue
			}
			entries[fp] = cred
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Load returns the certificate with the given fingerprint and its key, if any
func (s *FileStore) Load(_ context.Context, fingerprint string) (*security.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.entries[security.NormalizeFingerprint(fingerprint)]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", security.ErrCertificateNotFound, fingerprint, s.dir)
	}
	return cred, nil
}

// Issuer returns the certificate in the directory that signed cert
func (s *FileStore) Issuer(_ context.Context, cert *x509.Certificate) (*x509.Certificate, error) {
	return findIssuer(s.certificates(), cert)
}

// List describes every certificate, sorted by fingerprint
func (s *FileStore) List(_ context.Context) ([]KeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]KeyInfo, 0, len(s.entries))
	for _, cred := range s.entries {
		keys = append(keys, describe(cred.Certificate, cred.Key != nil))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Fingerprint < keys[j].Fingerprint })
	return keys, nil
}

// Close releases resources
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*security.Credential)
	return nil
}

func (s *FileStore) certificates() []*x509.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	certs := make([]*x509.Certificate, 0, len(s.entries))
	for _, cred := range s.entries {
		certs = append(certs, cred.Certificate)
	}
	return certs
}

func readPEMFile(path string) ([]*x509.Certificate, []crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var certs []*x509.Certificate
	var keys []crypto.Signer
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("parsing certificate in %s: %w", path, err)
			}
			certs = append(certs, cert)
			continue
		}
		key, err := parsePrivateKey(block)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing private key in %s: %w", path, err)
		}
		if key != nil {
			keys = append(keys, key)
		}
	}
	return certs, keys, nil
}

// parsePrivateKey returns nil for blocks that hold no private key
func parsePrivateKey(block *pem.Block) (crypto.Signer, error) {
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("key is not a signer")
		}
		return signer, nil
	default:
		return nil, nil
	}
}

type publicKeyEqualer interface {
	Equal(crypto.PublicKey) bool
}

func matchingKey(cert *x509.Certificate, keys []crypto.Signer) crypto.Signer {
	pub, ok := cert.PublicKey.(publicKeyEqualer)
	if !ok {
		return nil
	}
	for _, key := range keys {
		if pub.Equal(key.Public()) {
			return key
		}
	}
	return nil
}
