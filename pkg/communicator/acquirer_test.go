package communicator

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
	"github.com/sirosfoundation/go-emandates/pkg/message"
	"github.com/sirosfoundation/go-emandates/pkg/security"
	"github.com/sirosfoundation/go-emandates/pkg/transport"
)

var testTime = time.Date(2024, 3, 5, 9, 20, 30, 123000000, time.UTC)

func newCredential(t *testing.T, cn string) *security.Credential {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"Test Organization"}, CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &security.Credential{Certificate: cert, Key: key}
}

// mapLoader resolves credentials by fingerprint. Self-signed certificates
// are their own issuer.
type mapLoader map[string]*security.Credential

func (m mapLoader) Load(_ context.Context, fp string) (*security.Credential, error) {
	if cred, ok := m[security.NormalizeFingerprint(fp)]; ok {
		return cred, nil
	}
	return nil, fmt.Errorf("%w: %s", security.ErrCertificateNotFound, fp)
}

func (m mapLoader) Issuer(_ context.Context, cert *x509.Certificate) (*x509.Certificate, error) {
	for _, cred := range m {
		if cred.Certificate.Subject.String() == cert.Issuer.String() {
			return cred.Certificate, nil
		}
	}
	return nil, security.ErrCertificateNotFound
}

// fakeAcquirer checks merchant signatures and answers with signed responses.
// Status answers carry an acceptance report signed by the debtor bank.
type fakeAcquirer struct {
	merchant *security.Credential
	acquirer *security.Credential
	bank     *security.Credential

	server   *httptest.Server
	signer   *security.Signer
	verifier *security.Verifier

	mu       sync.Mutex
	requests []string
	// status reported by status answers, Success by default
	status string
	// reply replaces the regular answer when set
	reply func() (int, []byte)
}

func newFakeAcquirer(t *testing.T) *fakeAcquirer {
	t.Helper()
	a := &fakeAcquirer{
		merchant: newCredential(t, "merchant"),
		acquirer: newCredential(t, "acquirer"),
		bank:     newCredential(t, "debtor bank"),
		status:   emandate.StatusSuccess,
	}
	var err error
	a.signer, err = security.NewSigner(a.acquirer)
	require.NoError(t, err)
	a.verifier, err = security.NewVerifier(security.TrustSet{Primary: a.merchant.Certificate})
	require.NoError(t, err)

	a.server = httptest.NewServer(a)
	t.Cleanup(a.server.Close)
	return a
}

func (a *fakeAcquirer) loader() mapLoader {
	return mapLoader{
		a.merchant.Fingerprint(): a.merchant,
		a.acquirer.Fingerprint(): {Certificate: a.acquirer.Certificate},
	}
}

func (a *fakeAcquirer) config() Configuration {
	return Configuration{
		ContractID:                     "0020000387",
		ContractSubID:                  0,
		MerchantReturnURL:              "https://merchant.example.com/return",
		SigningCertificateFingerprint:  a.merchant.Fingerprint(),
		AcquirerCertificateFingerprint: a.acquirer.Fingerprint(),
		DirectoryURL:                   a.server.URL + "/directory",
		TransactionURL:                 a.server.URL + "/transaction",
		StatusURL:                      a.server.URL + "/status",
		CertificateLoader:              a.loader(),
	}
}

func (a *fakeAcquirer) received() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.requests...)
}

func (a *fakeAcquirer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Header.Get("Content-Type") != transport.ContentType {
		http.Error(w, "unexpected content type", http.StatusUnsupportedMediaType)
		return
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil || doc.Root() == nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	a.requests = append(a.requests, r.URL.Path+" "+doc.Root().Tag)
	reply, status := a.reply, a.status
	a.mu.Unlock()

	if reply != nil {
		code, out := reply()
		w.WriteHeader(code)
		_, _ = w.Write(out)
		return
	}

	if _, err := a.verifier.Verify(body); err != nil {
		http.Error(w, "merchant signature: "+err.Error(), http.StatusForbidden)
		return
	}

	var res any
	switch doc.Root().Tag {
	case "DirectoryReq":
		res = directoryRes()
	case "AcquirerTrxReq":
		res = trxRes()
	case "AcquirerStatusReq":
		res, err = a.statusRes(status, status == emandate.StatusSuccess)
	default:
		err = fmt.Errorf("unexpected request %s", doc.Root().Tag)
	}
	var out []byte
	if err == nil {
		out, err = a.sign(res)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", transport.ContentType)
	_, _ = w.Write(out)
}

func (a *fakeAcquirer) sign(v any) ([]byte, error) {
	data, err := message.Encode(v)
	if err != nil {
		return nil, err
	}
	return a.signer.Sign(data, security.EnvelopeTarget)
}

func (a *fakeAcquirer) statusRes(status string, withReport bool) (*message.AcquirerStatusRes, error) {
	ts := message.NewDateTime(testTime)
	res := &message.AcquirerStatusRes{
		Version:             message.Version,
		ProductID:           message.ProductIDCore,
		CreateDateTimestamp: message.NewDateTime(testTime),
		Acquirer:            message.AcquirerRef{AcquirerID: "0030"},
		Transaction: message.StatusResTransaction{
			TransactionID:       "1234567890123456",
			Status:              status,
			StatusDateTimestamp: &ts,
		},
	}
	if withReport {
		report, err := a.signedReport()
		if err != nil {
			return nil, err
		}
		res.Transaction.Container = &message.Container{Inner: report}
	}
	return res, nil
}

func (a *fakeAcquirer) signedReport() (string, error) {
	doc, err := message.EncodeDocument(acceptanceDocument())
	if err != nil {
		return "", err
	}
	bank, err := security.NewSigner(a.bank)
	if err != nil {
		return "", err
	}
	signed, err := bank.Sign(doc, security.AcceptanceReportTarget)
	if err != nil {
		return "", err
	}
	s := string(signed)
	if strings.HasPrefix(s, "<?xml") {
		s = s[strings.Index(s, "?>")+2:]
	}
	return strings.TrimSpace(s), nil
}

func directoryRes() *message.DirectoryRes {
	return &message.DirectoryRes{
		Version:             message.Version,
		ProductID:           message.ProductIDCore,
		CreateDateTimestamp: message.NewDateTime(testTime),
		Acquirer:            message.AcquirerRef{AcquirerID: "0030"},
		Directory: message.Directory{
			DirectoryDateTimestamp: message.NewDateTime(testTime),
			Country: []message.Country{{
				CountryNames: "Nederland",
				Issuer: []message.DirectoryIssuer{
					{IssuerID: "INGBNL2A", IssuerName: "ING"},
					{IssuerID: "RABONL2U", IssuerName: "Rabobank"},
				},
			}},
		},
	}
}

func trxRes() *message.AcquirerTrxRes {
	return &message.AcquirerTrxRes{
		Version:             message.Version,
		ProductID:           message.ProductIDCore,
		CreateDateTimestamp: message.NewDateTime(testTime),
		Acquirer:            message.AcquirerRef{AcquirerID: "0030"},
		Issuer:              message.IssuerAuthentication{IssuerAuthenticationURL: "https://bank.example.com/auth"},
		Transaction: message.TrxResTransaction{
			TransactionID:                  "1234567890123456",
			TransactionCreateDateTimestamp: message.NewDateTime(testTime),
		},
	}
}

func errorRes() *message.AcquirerErrorRes {
	return &message.AcquirerErrorRes{
		Version:             message.Version,
		ProductID:           message.ProductIDCore,
		CreateDateTimestamp: message.NewDateTime(testTime),
		Error: message.ErrorDetail{
			ErrorCode:       "SO1100",
			ErrorMessage:    "Issuer not available",
			ErrorDetail:     "System generating error: issuer",
			SuggestedAction: "Please try again later",
			ConsumerMessage: "Your bank is not available",
		},
	}
}

func acceptanceDocument() *message.AcceptanceDocument {
	created := message.NewDateTime(testTime)
	return &message.AcceptanceDocument{
		MndtAccptncRpt: message.MandateAcceptance{
			GrpHdr: message.GroupHeader{
				MsgID:   "acc-msg-1",
				CreDtTm: created,
				Authstn: []message.Authorisation{{Prtry: "validation-ref-9"}},
			},
			UndrlygAccptncDtls: []message.AcceptanceDetails{{
				OrgnlMsgInf: message.OriginalMessageInfo{MsgID: "0123456789abcdef", MsgNmID: "pain.009", CreDtTm: &created},
				AccptncRslt: message.AcceptanceResult{Accptd: true},
				OrgnlMndt: message.OriginalMandate{OrgnlMndt: &message.Mandate{
					MndtID:    "mandate-123",
					MndtReqID: "NOTPROVIDED",
					Tp: &message.MandateType{
						SvcLvl:    message.Code{Cd: "SEPA"},
						LclInstrm: message.Code{Cd: "CORE"},
					},
					Ocrncs: &message.Occurrences{SeqTp: "RCUR"},
					CdtrSchmeID: &message.Party{ID: &message.PartyID{PrvtID: &message.GenericIdentifications{
						Othr: []message.GenericIdentification{{ID: "NL97ZZZ123456780000", SchmeNm: &message.ReasonCode{Prtry: "SEPA"}}},
					}}},
					Cdtr: &message.Party{
						Nm:      "Merchant BV",
						PstlAdr: &message.PostalAddress{Ctry: "NL", AdrLine: []string{"Main Street 1", "1000 AA Amsterdam"}},
					},
					Dbtr:      &message.Party{Nm: "J. Debtor"},
					DbtrAcct:  &message.Account{ID: message.AccountID{IBAN: "NL44RABO0123456789"}},
					DbtrAgt:   &message.Agent{FinInstnID: message.FinancialInstitution{BICFI: "RABONL2U"}},
					UltmtDbtr: &message.Party{Nm: "J. Signer"},
				}},
			}},
		},
	}
}
