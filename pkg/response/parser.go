package response

import (
	"encoding/xml"
	"log/slog"
	"strings"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
	"github.com/sirosfoundation/go-emandates/pkg/message"
)

// Parser decodes acquirer answers. It holds no per-call state.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser logging to logger, or slog.Default when nil.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

var defaultParser = NewParser(nil)

// ParseDirectory parses a directory answer with the default parser.
func ParseDirectory(raw []byte) emandate.Outcome[emandate.DirectoryResponse] {
	return defaultParser.Directory(raw)
}

// ParseTransaction parses a new, amend or cancel answer with the default parser.
func ParseTransaction(raw []byte) emandate.Outcome[emandate.TransactionResponse] {
	return defaultParser.Transaction(raw)
}

// ParseStatus parses a status answer with the default parser.
func ParseStatus(raw []byte) emandate.Outcome[emandate.StatusResponse] {
	return defaultParser.Status(raw)
}

// Directory parses a DirectoryRes and flattens its countries into one row
// per debtor bank, in document order.
func (p *Parser) Directory(raw []byte) emandate.Outcome[emandate.DirectoryResponse] {
	return cascade(p, raw, func(res *message.DirectoryRes) (emandate.DirectoryResponse, error) {
		out := emandate.DirectoryResponse{
			DirectoryDateTimestamp: res.Directory.DirectoryDateTimestamp.Time,
			DebtorBanks:            []emandate.DebtorBank{},
		}
		for _, country := range res.Directory.Country {
			for _, issuer := range country.Issuer {
				out.DebtorBanks = append(out.DebtorBanks, emandate.DebtorBank{
					DebtorBankCountry: country.CountryNames,
					DebtorBankID:      issuer.IssuerID,
					DebtorBankName:    issuer.IssuerName,
				})
			}
		}
		return out, nil
	})
}

// Transaction parses an AcquirerTrxRes.
func (p *Parser) Transaction(raw []byte) emandate.Outcome[emandate.TransactionResponse] {
	return cascade(p, raw, func(res *message.AcquirerTrxRes) (emandate.TransactionResponse, error) {
		return emandate.TransactionResponse{
			IssuerAuthenticationURL:        res.Issuer.IssuerAuthenticationURL,
			TransactionID:                  res.Transaction.TransactionID,
			TransactionCreateDateTimestamp: res.Transaction.TransactionCreateDateTimestamp.Time,
		}, nil
	})
}

// Status parses an AcquirerStatusRes. For status Success the embedded
// acceptance report is required and decoded.
func (p *Parser) Status(raw []byte) emandate.Outcome[emandate.StatusResponse] {
	return cascade(p, raw, func(res *message.AcquirerStatusRes) (emandate.StatusResponse, error) {
		trx := res.Transaction
		out := emandate.StatusResponse{
			TransactionID: trx.TransactionID,
			Status:        trx.Status,
		}
		if trx.StatusDateTimestamp != nil {
			ts := trx.StatusDateTimestamp.Time
			out.StatusDateTimestamp = &ts
		}
		if trx.Status != emandate.StatusSuccess {
			return out, nil
		}

		var inner string
		if trx.Container != nil {
			inner = strings.TrimSpace(trx.Container.Inner)
		}
		if inner == "" {
			return out, fault(ErrMissingAcceptanceReport, nil)
		}
		report, err := ParseAcceptanceReport(inner)
		if err != nil {
			return out, err
		}
		out.AcceptanceReport = report
		return out, nil
	})
}

// cascade runs the three decoding attempts. A conversion error after a
// successful decode is a fault; the error shape is not tried then.
func cascade[W any, T any](p *Parser, raw []byte, convert func(*W) (T, error)) emandate.Outcome[T] {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return emandate.Fault[T](fault(ErrEmptyResponse, nil), raw)
	}

	var res W
	first := xml.Unmarshal(raw, &res)
	if first == nil {
		value, err := convert(&res)
		if err != nil {
			p.logger.Error("response conversion failed", "error", err)
			return emandate.Fault[T](err, raw)
		}
		return emandate.Success(value, raw)
	}
	p.logger.Debug("response is not the expected shape", "error", first)

	var errRes message.AcquirerErrorRes
	second := xml.Unmarshal(raw, &errRes)
	if second == nil {
		return emandate.BusinessError[T](errorInfo(&errRes), raw)
	}
	p.logger.Error("response is neither the expected shape nor an error response", "error", second)
	return emandate.Fault[T](fault(ErrParseFault, first), raw)
}

func errorInfo(res *message.AcquirerErrorRes) *emandate.ErrorInfo {
	return &emandate.ErrorInfo{
		ErrorCode:       res.Error.ErrorCode,
		ErrorMessage:    res.Error.ErrorMessage,
		ErrorDetails:    res.Error.ErrorDetail,
		SuggestedAction: res.Error.SuggestedAction,
		ConsumerMessage: res.Error.ConsumerMessage,
	}
}

// DirectoryResult folds an outcome into the value returned to callers.
func DirectoryResult(o emandate.Outcome[emandate.DirectoryResponse]) emandate.DirectoryResponse {
	res := o.Value
	res.IsError, res.Error, res.RawMessage = o.IsError(), o.ErrorInfo(), o.RawMessage()
	return res
}

// TransactionResult folds an outcome into the value returned to callers.
func TransactionResult(o emandate.Outcome[emandate.TransactionResponse]) emandate.TransactionResponse {
	res := o.Value
	res.IsError, res.Error, res.RawMessage = o.IsError(), o.ErrorInfo(), o.RawMessage()
	return res
}

// StatusResult folds an outcome into the value returned to callers.
func StatusResult(o emandate.Outcome[emandate.StatusResponse]) emandate.StatusResponse {
	res := o.Value
	res.IsError, res.Error, res.RawMessage = o.IsError(), o.ErrorInfo(), o.RawMessage()
	return res
}
