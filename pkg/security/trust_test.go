package security

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLoader map[string]*Credential

func (m mapLoader) Load(_ context.Context, fp string) (*Credential, error) {
	if cred, ok := m[NormalizeFingerprint(fp)]; ok {
		return cred, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCertificateNotFound, fp)
}

func (m mapLoader) Issuer(_ context.Context, cert *x509.Certificate) (*x509.Certificate, error) {
	for _, cred := range m {
		if cred.Certificate.Subject.String() == cert.Issuer.String() {
			return cred.Certificate, nil
		}
	}
	return nil, ErrCertificateNotFound
}

type recordingChecker struct {
	checked []string
	revoked string
}

func (r *recordingChecker) CheckRevocation(_ context.Context, cert, _ *x509.Certificate) error {
	fp := Fingerprint(cert)
	r.checked = append(r.checked, fp)
	if fp == r.revoked {
		return ErrCertificateRevoked
	}
	return nil
}

func TestFingerprint(t *testing.T) {
	cred := newTestCredential(t, "merchant")

	fp := Fingerprint(cred.Certificate)
	assert.Len(t, fp, 40)
	assert.Equal(t, strings.ToUpper(fp), fp)
	assert.Equal(t, fp, cred.Fingerprint())
	assert.Empty(t, Fingerprint(nil))
}

func TestFingerprintsEqual(t *testing.T) {
	assert.True(t, FingerprintsEqual("AA:BB:cc", "aabbCC"))
	assert.True(t, FingerprintsEqual(" aa bb ", "AABB"))
	assert.False(t, FingerprintsEqual("AABB", "AABC"))
	assert.False(t, FingerprintsEqual("", ""))
	assert.Equal(t, "AABBCC", NormalizeFingerprint("aa:bb\tcc\n"))
}

func TestTrustSet_Match(t *testing.T) {
	primary := newTestCredential(t, "acquirer")
	alternate := newTestCredential(t, "acquirer next")
	trust := TrustSet{Primary: primary.Certificate, Alternate: alternate.Certificate}

	assert.Same(t, primary.Certificate, trust.Match(primary.Fingerprint()))
	assert.Same(t, alternate.Certificate, trust.Match(strings.ToLower(alternate.Fingerprint())))
	assert.Nil(t, trust.Match("00"))
	assert.Len(t, trust.Certificates(), 2)
	assert.Len(t, TrustSet{Primary: primary.Certificate}.Certificates(), 1)
}

func TestLoadTrustSet(t *testing.T) {
	primary := newTestCredential(t, "acquirer")
	alternate := newTestCredential(t, "acquirer next")
	loader := mapLoader{primary.Fingerprint(): primary, alternate.Fingerprint(): alternate}
	ctx := context.Background()

	trust, err := LoadTrustSet(ctx, loader, primary.Fingerprint(), "")
	require.NoError(t, err)
	assert.Same(t, primary.Certificate, trust.Primary)
	assert.Nil(t, trust.Alternate)

	trust, err = LoadTrustSet(ctx, loader, primary.Fingerprint(), alternate.Fingerprint())
	require.NoError(t, err)
	assert.Same(t, alternate.Certificate, trust.Alternate)

	_, err = LoadTrustSet(ctx, loader, "DEADBEEF", "")
	assert.ErrorIs(t, err, ErrCertificateNotFound)

	_, err = LoadTrustSet(ctx, loader, primary.Fingerprint(), "DEADBEEF")
	assert.ErrorIs(t, err, ErrCertificateNotFound)
	assert.ErrorContains(t, err, "alternate")
}

func TestTrustSet_CheckRevocation(t *testing.T) {
	// Self-signed certificates are their own issuer
	primary := newTestCredential(t, "acquirer")
	alternate := newTestCredential(t, "acquirer next")
	loader := mapLoader{primary.Fingerprint(): primary, alternate.Fingerprint(): alternate}
	trust := TrustSet{Primary: primary.Certificate, Alternate: alternate.Certificate}
	ctx := context.Background()

	checker := &recordingChecker{}
	require.NoError(t, trust.CheckRevocation(ctx, checker, loader))
	assert.Equal(t, []string{primary.Fingerprint(), alternate.Fingerprint()}, checker.checked)

	checker = &recordingChecker{revoked: alternate.Fingerprint()}
	err := trust.CheckRevocation(ctx, checker, loader)
	assert.ErrorIs(t, err, ErrCertificateRevoked)
	assert.ErrorContains(t, err, alternate.Fingerprint())

	assert.NoError(t, trust.CheckRevocation(ctx, nil, loader))
	assert.NoError(t, trust.CheckRevocation(ctx, checker, nil))
}

func TestTrustSet_CheckRevocationSkipsUnknownIssuer(t *testing.T) {
	primary := newTestCredential(t, "acquirer")
	trust := TrustSet{Primary: primary.Certificate}

	checker := &recordingChecker{}
	require.NoError(t, trust.CheckRevocation(context.Background(), checker, mapLoader{}))
	assert.Empty(t, checker.checked)
}

func TestErrDigestMismatchWrapsSignatureMismatch(t *testing.T) {
	assert.True(t, errors.Is(ErrDigestMismatch, ErrSignatureMismatch))
}
