package security

import (
	"bytes"
	"context"
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ocsp"
)

// RevocationChecker checks whether issuer has revoked cert. It returns nil
// for a good certificate and ErrCertificateRevoked for a revoked one.
type RevocationChecker interface {
	CheckRevocation(ctx context.Context, cert, issuer *x509.Certificate) error
}

// OCSPConfig configures an OCSPRevocationChecker
type OCSPConfig struct {
	HTTPClient  *http.Client
	Timeout     time.Duration
	CRLFallback bool          // consult CRL distribution points when OCSP gives no answer
	CacheTTL    time.Duration // how long answers are reused
	Strict      bool          // fail when neither source gives an answer
	Logger      *slog.Logger
}

// DefaultOCSPConfig returns the default configuration
func DefaultOCSPConfig() OCSPConfig {
	return OCSPConfig{
		Timeout:     10 * time.Second,
		CRLFallback: true,
		CacheTTL:    time.Hour,
	}
}

// OCSPRevocationChecker asks the certificate's OCSP responder first and falls
// back to its CRL distribution points
type OCSPRevocationChecker struct {
	cfg    OCSPConfig
	client *http.Client
	logger *slog.Logger
	status *ttlCache[error]
	crls   *ttlCache[*x509.RevocationList]
}

// NewOCSPRevocationChecker creates a checker
func NewOCSPRevocationChecker(cfg OCSPConfig) *OCSPRevocationChecker {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OCSPRevocationChecker{
		cfg:    cfg,
		client: client,
		logger: logger,
		status: newTTLCache[error](cfg.CacheTTL),
		crls:   newTTLCache[*x509.RevocationList](cfg.CacheTTL),
	}
}

// errNoAnswer marks a source that could not say whether a certificate is revoked
var errNoAnswer = errors.New("revocation status unknown")

// CheckRevocation implements RevocationChecker
func (c *OCSPRevocationChecker) CheckRevocation(ctx context.Context, cert, issuer *x509.Certificate) error {
	if cert == nil || issuer == nil {
		return fmt.Errorf("certificate and issuer are required")
	}

	key := issuer.SerialNumber.String() + "/" + cert.SerialNumber.String()
	if result, ok := c.status.get(key); ok {
		return result
	}

	result := c.checkOCSP(ctx, cert, issuer)
	if errors.Is(result, errNoAnswer) && c.cfg.CRLFallback {
		c.logger.Debug("ocsp gave no answer, trying crl", "fingerprint", Fingerprint(cert), "error", result)
		result = c.checkCRL(ctx, cert, issuer)
	}
	if errors.Is(result, errNoAnswer) {
		if c.cfg.Strict {
			return result
		}
		c.logger.Warn("revocation status unknown", "fingerprint", Fingerprint(cert), "error", result)
		return nil
	}

	c.status.set(key, result)
	return result
}

func (c *OCSPRevocationChecker) checkOCSP(ctx context.Context, cert, issuer *x509.Certificate) error {
	if len(cert.OCSPServer) == 0 {
		return fmt.Errorf("%w: no OCSP responder", errNoAnswer)
	}
	req, err := ocsp.CreateRequest(cert, issuer, &ocsp.RequestOptions{Hash: crypto.SHA256})
	if err != nil {
		return fmt.Errorf("%w: %v", errNoAnswer, err)
	}
	raw, err := c.queryOCSP(ctx, cert.OCSPServer[0], req)
	if err != nil {
		return fmt.Errorf("%w: %v", errNoAnswer, err)
	}
	resp, err := ocsp.ParseResponseForCert(raw, cert, issuer)
	if err != nil {
		return fmt.Errorf("%w: %v", errNoAnswer, err)
	}

	switch resp.Status {
	case ocsp.Good:
		return nil
	case ocsp.Revoked:
		return ErrCertificateRevoked
	default:
		return fmt.Errorf("%w: OCSP status %d", errNoAnswer, resp.Status)
	}
}

// queryOCSP posts the request and retries with GET when POST is refused
func (c *OCSPRevocationChecker) queryOCSP(ctx context.Context, responder string, req []byte) ([]byte, error) {
	post, err := http.NewRequestWithContext(ctx, http.MethodPost, responder, bytes.NewReader(req))
	if err != nil {
		return nil, err
	}
	post.Header.Set("Content-Type", "application/ocsp-request")
	if body, err := c.fetch(post); err == nil {
		return body, nil
	}

	get, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimSuffix(responder, "/")+"/"+url.PathEscape(base64.StdEncoding.EncodeToString(req)), nil)
	if err != nil {
		return nil, err
	}
	return c.fetch(get)
}

func (c *OCSPRevocationChecker) checkCRL(ctx context.Context, cert, issuer *x509.Certificate) error {
	if len(cert.CRLDistributionPoints) == 0 {
		return fmt.Errorf("%w: no CRL distribution point", errNoAnswer)
	}
	var lastErr error
	for _, dp := range cert.CRLDistributionPoints {
		crl, err := c.loadCRL(ctx, dp, issuer)
		if err != nil {
			lastErr = err
			continue
		}
		for _, entry := range crl.RevokedCertificateEntries {
			if entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
				return ErrCertificateRevoked
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %v", errNoAnswer, lastErr)
}

func (c *OCSPRevocationChecker) loadCRL(ctx context.Context, location string, issuer *x509.Certificate) (*x509.RevocationList, error) {
	if crl, ok := c.crls.get(location); ok {
		return crl, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.fetch(req)
	if err != nil {
		return nil, err
	}
	crl, err := x509.ParseRevocationList(body)
	if err != nil {
		return nil, fmt.Errorf("parse CRL %s: %w", location, err)
	}
	if err := crl.CheckSignatureFrom(issuer); err != nil {
		return nil, fmt.Errorf("CRL %s: %w", location, err)
	}
	c.crls.set(location, crl)
	return crl, nil
}

func (c *OCSPRevocationChecker) fetch(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d", req.Method, req.URL.Host, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ttlCache is a small RWMutex-guarded map whose entries expire after ttl
type ttlCache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]ttlEntry[V]
}

type ttlEntry[V any] struct {
	value  V
	stored time.Time
}

func newTTLCache[V any](ttl time.Duration) *ttlCache[V] {
	return &ttlCache[V]{ttl: ttl, entries: make(map[string]ttlEntry[V])}
}

func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.stored) > c.ttl {
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *ttlCache[V]) set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry[V]{value: value, stored: time.Now()}
}
