package keystore

import (
	"fmt"

	"github.com/sirosfoundation/go-emandates/internal/config"
)

// NewStore creates a Store based on the configuration
func NewStore(cfg *config.CertificatesConfig) (Store, error) {
	switch cfg.Store {
	case "pkcs11":
		return newPKCS11Store(cfg)
	case "file", "":
		return newFileStore(cfg)
	default:
		return nil, fmt.Errorf("unknown certificate store: %s", cfg.Store)
	}
}

func newPKCS11Store(cfg *config.CertificatesConfig) (Store, error) {
	p11cfg := &PKCS11Config{
		ModulePath: cfg.PKCS11.ModulePath,
		SlotLabel:  cfg.PKCS11.SlotLabel,
		PIN:        cfg.PKCS11.PIN,
	}
	if cfg.PKCS11.SlotID > 0 {
		slotID := cfg.PKCS11.SlotID
		p11cfg.SlotID = &slotID
	}
	if cfg.Dir != "" {
		fallback, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		p11cfg.Fallback = fallback
	}
	store, err := NewPKCS11Store(p11cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newFileStore(cfg *config.CertificatesConfig) (Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "./certs"
	}
	store, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return store, nil
}
