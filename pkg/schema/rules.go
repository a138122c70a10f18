package schema

import (
	"regexp"
)

// simpleType constrains the text of a leaf element or an attribute
type simpleType struct {
	name    string
	pattern *regexp.Regexp
	enum    []string
	minLen  int
	maxLen  int
}

// rule describes one element. A rule with a text type has simple content;
// otherwise its children form a sequence, or a choice when choice is set.
// space is only set for elements outside the document's own namespace.
type rule struct {
	name     string
	space    string
	text     *simpleType
	attrs    []attribute
	children []particle
	choice   bool
	any      bool
}

type attribute struct {
	name     string
	typ      *simpleType
	required bool
}

type particle struct {
	rule     *rule
	min, max int
}

const unbounded = -1

func leaf(name string, t *simpleType) *rule {
	return &rule{name: name, text: t}
}

func seq(name string, parts ...particle) *rule {
	return &rule{name: name, children: parts}
}

func choice(name string, parts ...particle) *rule {
	return &rule{name: name, children: parts, choice: true}
}

// anyContent accepts any children. Known documents inside it are still validated.
func anyContent(name string) *rule {
	return &rule{name: name, any: true}
}

func (r *rule) withAttr(name string, t *simpleType, required bool) *rule {
	r.attrs = append(r.attrs, attribute{name: name, typ: t, required: required})
	return r
}

func one(r *rule) particle                { return particle{rule: r, min: 1, max: 1} }
func opt(r *rule) particle                { return particle{rule: r, min: 0, max: 1} }
func many(r *rule, min, max int) particle { return particle{rule: r, min: min, max: max} }

func text(name string, minLen, maxLen int) *simpleType {
	return &simpleType{name: name, minLen: minLen, maxLen: maxLen}
}

func pattern(name, expr string) *simpleType {
	return &simpleType{name: name, pattern: regexp.MustCompile(expr)}
}

func enum(name string, values ...string) *simpleType {
	return &simpleType{name: name, enum: values}
}

var (
	isoDateTime = pattern("ISODateTime", `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)
	isoDate     = pattern("ISODate", `^\d{4}-\d{2}-\d{2}(Z|[+-]\d{2}:\d{2})?$`)
	bicType     = pattern("BICIdentifier", `^[A-Z]{6}[A-Z2-9][A-NP-Z0-9]([A-Z0-9]{3})?$`)
	ibanType    = pattern("IBAN2007Identifier", `^[A-Z]{2}[0-9]{2}[a-zA-Z0-9]{1,30}$`)
	countryCode = pattern("CountryCode", `^[A-Z]{2}$`)
	currency    = pattern("ActiveCurrencyCode", `^[A-Z]{3}$`)
	amountType  = pattern("ActiveCurrencyAndAmount", `^[0-9]{1,18}(\.[0-9]{1,5})?$`)
	booleanType = pattern("boolean", `^(true|false|1|0)$`)
	duration    = pattern("duration", `^-?P(\d+Y)?(\d+M)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)
	max4Text    = text("Max4Text", 1, 4)
	max35Text   = text("Max35Text", 1, 35)
	max70Text   = text("Max70Text", 1, 70)
	max140Text  = text("Max140Text", 1, 140)
	max350Text  = text("Max350Text", 1, 350)
	seqTpCode   = enum("SequenceType2Code", "RCUR", "OOFF", "FRST", "FNAL")
)

var (
	idxMerchantID   = pattern("Merchant.merchantID", `^[0-9]{10}$`)
	idxSubID        = pattern("Merchant.subID", `^[0-9]{1,6}$`)
	idxURL          = text("Merchant.merchantReturnURL", 1, 512)
	idxEntranceCode = pattern("Transaction.entranceCode", `^[a-zA-Z0-9-]{1,40}$`)
	idxLanguage     = pattern("Transaction.language", `^[a-z]{2}$`)
	idxTrxID        = pattern("Transaction.transactionID", `^[0-9]{16}$`)
	idxAcquirerID   = pattern("Acquirer.acquirerID", `^[0-9]{4}$`)
	idxErrorCode    = pattern("Error.errorCode", `^[A-Z]{2}[0-9]{4}$`)
	idxStatus       = enum("Transaction.status", "Open", "Pending", "Success", "Failure", "Expired", "Cancelled")
	idxVersion      = enum("version", "1.0.0")
	idxProductID    = text("productID", 1, 64)
)
