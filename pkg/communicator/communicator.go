package communicator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
	"github.com/sirosfoundation/go-emandates/pkg/message"
	"github.com/sirosfoundation/go-emandates/pkg/response"
	"github.com/sirosfoundation/go-emandates/pkg/schema"
	"github.com/sirosfoundation/go-emandates/pkg/security"
	"github.com/sirosfoundation/go-emandates/pkg/transport"
)

// CoreCommunicator performs the eMandates Core operations. It is safe for
// concurrent use.
type CoreCommunicator struct {
	config     Configuration
	builder    *message.Builder
	validator  *schema.Validator
	signer     *security.Signer
	verifier   *security.Verifier
	parser     *response.Parser
	transport  Transport
	messageLog MessageLog
	metrics    *Metrics
	logger     *slog.Logger
}

// B2BCommunicator performs the eMandates B2B operations, which add Cancel.
type B2BCommunicator struct {
	*CoreCommunicator
}

// NewCoreCommunicator validates cfg, resolves its certificates and returns a
// communicator for Core mandates. Any failure wraps ErrConfiguration.
func NewCoreCommunicator(ctx context.Context, cfg Configuration, opts ...Option) (*CoreCommunicator, error) {
	return newCommunicator(ctx, emandate.Core, cfg, opts)
}

// NewB2BCommunicator is NewCoreCommunicator for B2B mandates.
func NewB2BCommunicator(ctx context.Context, cfg Configuration, opts ...Option) (*B2BCommunicator, error) {
	c, err := newCommunicator(ctx, emandate.B2B, cfg, opts)
	if err != nil {
		return nil, err
	}
	return &B2BCommunicator{CoreCommunicator: c}, nil
}

func newCommunicator(ctx context.Context, inst emandate.Instrumentation, cfg Configuration, opts []Option) (*CoreCommunicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	o := newOptions(opts)
	secOpts := append([]security.Option{security.WithLogger(logger)}, o.securityOptions...)

	cred, err := cfg.CertificateLoader.Load(ctx, cfg.SigningCertificateFingerprint)
	if err != nil {
		return nil, fmt.Errorf("%w: the signing certificate cannot be loaded: %w", ErrConfiguration, err)
	}
	signer, err := security.NewSigner(cred, secOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: the signing certificate cannot be used: %w", ErrConfiguration, err)
	}

	trust, err := security.LoadTrustSet(ctx, cfg.CertificateLoader,
		cfg.AcquirerCertificateFingerprint, cfg.AcquirerAlternateCertificateFingerprint)
	if err != nil {
		return nil, fmt.Errorf("%w: the acquirer certificate cannot be loaded: %w", ErrConfiguration, err)
	}
	if cfg.CheckRevocation {
		if err := checkRevocation(ctx, trust, cfg.CertificateLoader, o.revocation, logger); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}
	verifier, err := security.NewVerifier(trust, secOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	c := &CoreCommunicator{
		config:     cfg,
		builder:    message.NewBuilder(inst, cfg.Merchant(), o.builderOptions...),
		validator:  o.validator,
		signer:     signer,
		verifier:   verifier,
		parser:     response.NewParser(logger),
		transport:  o.transport,
		messageLog: o.messageLog,
		metrics:    o.metrics,
		logger:     logger.With("instrument", inst.String()),
	}
	c.logger.Info("communicator initialized",
		"signing", cred.Fingerprint(),
		"acquirer", security.Fingerprint(trust.Primary))
	return c, nil
}

func checkRevocation(ctx context.Context, trust security.TrustSet, loader security.CertificateLoader, checker security.RevocationChecker, logger *slog.Logger) error {
	issuers, ok := loader.(security.IssuerLookup)
	if !ok {
		logger.Warn("certificate loader cannot look up issuers, revocation is not checked")
		return nil
	}
	if checker == nil {
		cfg := security.DefaultOCSPConfig()
		cfg.Logger = logger
		checker = security.NewOCSPRevocationChecker(cfg)
	}
	return trust.CheckRevocation(ctx, checker, issuers)
}

// Instrument returns the mandate scheme of the communicator
func (c *CoreCommunicator) Instrument() emandate.Instrumentation {
	return c.builder.Instrument()
}

// Directory retrieves the list of debtor banks
func (c *CoreCommunicator) Directory(ctx context.Context) emandate.DirectoryResponse {
	c.logger.Info("sending new directory request")
	out := run(c, ctx, emandate.OperationDirectory, c.config.DirectoryURL,
		c.builder.DirectoryRequest, c.parser.Directory)
	return response.DirectoryResult(out)
}

// NewMandate starts a new mandate transaction
func (c *CoreCommunicator) NewMandate(ctx context.Context, req emandate.NewMandateRequest) emandate.NewMandateResponse {
	c.logger.Info("sending new eMandate transaction")
	out := run(c, ctx, emandate.OperationNewMandate, c.config.TransactionURL,
		func() ([]byte, error) { return c.builder.NewMandateRequest(req) },
		c.parser.Transaction)
	return response.TransactionResult(out)
}

// Status queries a transaction
func (c *CoreCommunicator) Status(ctx context.Context, req emandate.StatusRequest) emandate.StatusResponse {
	c.logger.Info("sending new status request", "transaction", req.TransactionID)
	out := run(c, ctx, emandate.OperationStatus, c.config.StatusURL,
		func() ([]byte, error) { return c.builder.StatusRequest(req) },
		c.parser.Status)
	return response.StatusResult(out)
}

// Amend starts an amendment transaction for an existing mandate
func (c *CoreCommunicator) Amend(ctx context.Context, req emandate.AmendmentRequest) emandate.AmendmentResponse {
	c.logger.Info("sending new amend request")
	out := run(c, ctx, emandate.OperationAmend, c.config.TransactionURL,
		func() ([]byte, error) { return c.builder.AmendmentRequest(req) },
		c.parser.Transaction)
	return response.TransactionResult(out)
}

// Cancel starts a cancellation transaction for an existing B2B mandate
func (c *B2BCommunicator) Cancel(ctx context.Context, req emandate.CancellationRequest) emandate.CancellationResponse {
	c.logger.Info("sending new cancel request")
	out := run(c.CoreCommunicator, ctx, emandate.OperationCancel, c.config.TransactionURL,
		func() ([]byte, error) { return c.builder.CancellationRequest(req) },
		c.parser.Transaction)
	return response.TransactionResult(out)
}

// run builds, exchanges and parses one message. Every failure, including a
// panic, ends up in the returned outcome.
func run[T any](c *CoreCommunicator, ctx context.Context, op emandate.Operation, url string,
	build func() ([]byte, error), parse func([]byte) emandate.Outcome[T]) (out emandate.Outcome[T]) {
	start := time.Now()
	logger := c.logger.With("operation", string(op))

	defer func() {
		if r := recover(); r != nil {
			out = emandate.Fault[T](fmt.Errorf("internal error: %v", r), out.Raw)
		}
		if out.IsError() {
			info := out.ErrorInfo()
			logger.Error("operation failed", "outcome", out.Kind.String(),
				"error", info.ErrorMessage, "details", info.ErrorDetails, "code", info.ErrorCode)
		}
		c.metrics.observe(op, out.Kind, time.Since(start))
	}()

	logger.Debug("building idx message")
	req, err := build()
	if err != nil {
		return emandate.Fault[T](err, nil)
	}

	body, err := c.exchange(ctx, logger, url, req)
	if err != nil {
		return emandate.Fault[T](err, body)
	}
	return parse(body)
}

// exchange runs the fixed sequence: validate request, sign, post, validate
// response, verify response. body is returned whenever one was received.
func (c *CoreCommunicator) exchange(ctx context.Context, logger *slog.Logger, url string, req []byte) (body []byte, err error) {
	if err := c.validator.Validate(req); err != nil {
		logger.Error("request xml schema is not valid", "error", err)
		return nil, transportError(msgRequestSchema, err)
	}

	logger.Debug("signing message")
	signed, err := c.signer.Sign(req, security.EnvelopeTarget)
	if err != nil {
		return nil, fmt.Errorf("signing request: %w", err)
	}
	c.logMessage(ctx, logger, signed)

	logger.Info("sending request", "url", url)
	status, body, err := c.transport.Post(ctx, url, signed)
	if err != nil {
		logger.Error("http request failed", "url", url, "error", err)
		return nil, transportError(msgHTTPFailed, err)
	}
	logger.Info("result status", "status", status)
	if !transport.IsSuccess(status) {
		return nil, transportError(fmt.Sprintf("%s, code=%d", msgHTTPFailed, status), nil)
	}
	c.logMessage(ctx, logger, body)

	if err := c.validator.Validate(body); err != nil {
		logger.Error("response xml schema is not valid", "error", err)
		return body, transportError(msgResponseSchema, err)
	}
	logger.Debug("response xml schema is valid")

	result, err := c.verifier.Verify(body)
	logger.Info("signature is valid", "valid", err == nil)
	if err != nil {
		return body, transportError(msgResponseSignature, err)
	}
	logger.Debug("response signature verified",
		"signer", security.Fingerprint(result.Signer), "checks", result.Checks)
	return body, nil
}

func (c *CoreCommunicator) logMessage(ctx context.Context, logger *slog.Logger, data []byte) {
	if c.messageLog == nil || len(data) == 0 {
		return
	}
	if err := c.messageLog.Write(ctx, data); err != nil {
		logger.Warn("failed to write service log", "error", err)
	}
}
