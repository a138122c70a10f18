package communicator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sirosfoundation/go-emandates/pkg/message"
	"github.com/sirosfoundation/go-emandates/pkg/schema"
	"github.com/sirosfoundation/go-emandates/pkg/security"
	"github.com/sirosfoundation/go-emandates/pkg/transport"
)

// Configuration holds everything a communicator needs. It is treated as an
// immutable value once a communicator has been created from it.
type Configuration struct {
	ContractID        string
	ContractSubID     uint
	MerchantReturnURL string

	SigningCertificateFingerprint           string
	AcquirerCertificateFingerprint          string
	AcquirerAlternateCertificateFingerprint string

	DirectoryURL   string
	TransactionURL string
	StatusURL      string

	// CertificateLoader resolves the fingerprints above
	CertificateLoader security.CertificateLoader
	// Logger defaults to slog.Default
	Logger *slog.Logger

	// CheckRevocation checks the acquirer certificates when the
	// communicator is created
	CheckRevocation bool
}

// Merchant returns the merchant identity used in every request
func (c Configuration) Merchant() message.Merchant {
	return message.Merchant{
		ContractID:    c.ContractID,
		ContractSubID: c.ContractSubID,
		ReturnURL:     c.MerchantReturnURL,
	}
}

// Validate checks that every mandatory setting is present. Certificates are
// not resolved here.
func (c Configuration) Validate() error {
	required := []struct {
		name, value string
	}{
		{"ContractID", c.ContractID},
		{"MerchantReturnURL", c.MerchantReturnURL},
		{"SigningCertificateFingerprint", c.SigningCertificateFingerprint},
		{"AcquirerCertificateFingerprint", c.AcquirerCertificateFingerprint},
		{"DirectoryURL", c.DirectoryURL},
		{"TransactionURL", c.TransactionURL},
		{"StatusURL", c.StatusURL},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is not configured", ErrConfiguration, r.name)
		}
	}
	if c.CertificateLoader == nil {
		return fmt.Errorf("%w: CertificateLoader is not configured", ErrConfiguration)
	}
	return nil
}

// Transport posts a message and returns the HTTP status and body
type Transport interface {
	Post(ctx context.Context, url string, body []byte) (int, []byte, error)
}

// MessageLog receives every raw request and response. It is never read back.
type MessageLog interface {
	Write(ctx context.Context, data []byte) error
}

type options struct {
	transport       Transport
	messageLog      MessageLog
	metrics         *Metrics
	revocation      security.RevocationChecker
	validator       *schema.Validator
	builderOptions  []message.Option
	securityOptions []security.Option
}

// Option represents a functional option for the communicators
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.transport == nil {
		o.transport = transport.NewHTTPSClient(nil)
	}
	if o.validator == nil {
		o.validator = schema.Default()
	}
	return o
}

// WithTransport replaces the default HTTPS client
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithMessageLog enables the service log
func WithMessageLog(l MessageLog) Option {
	return func(o *options) {
		o.messageLog = l
	}
}

// WithMetrics records operation metrics
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithRevocationChecker sets the checker used when CheckRevocation is on.
// The default is an OCSP checker with CRL fallback.
func WithRevocationChecker(c security.RevocationChecker) Option {
	return func(o *options) {
		o.revocation = c
	}
}

// WithBuilderOptions passes options to the message builder
func WithBuilderOptions(opts ...message.Option) Option {
	return func(o *options) {
		o.builderOptions = append(o.builderOptions, opts...)
	}
}

// WithSecurityOptions passes options to the signer and verifier
func WithSecurityOptions(opts ...security.Option) Option {
	return func(o *options) {
		o.securityOptions = append(o.securityOptions, opts...)
	}
}
