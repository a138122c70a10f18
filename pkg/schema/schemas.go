package schema

const (
	nsIDx     = "http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0"
	nsPain009 = "urn:iso:std:iso:20022:tech:xsd:pain.009.001.04"
	nsPain010 = "urn:iso:std:iso:20022:tech:xsd:pain.010.001.04"
	nsPain011 = "urn:iso:std:iso:20022:tech:xsd:pain.011.001.04"
	nsPain012 = "urn:iso:std:iso:20022:tech:xsd:pain.012.001.04"
	nsDS      = "http://www.w3.org/2000/09/xmldsig#"
)

// key identifies a document kind by its root element
type key struct {
	space, local string
}

// compile builds the rule set for every supported document. The result is
// never modified afterwards.
func compile() map[key]*rule {
	set := make(map[key]*rule)
	for local, r := range idxRules() {
		set[key{nsIDx, local}] = r
	}
	set[key{nsPain009, "Document"}] = seq("Document", one(pain009()))
	set[key{nsPain010, "Document"}] = seq("Document", one(pain010()))
	set[key{nsPain011, "Document"}] = seq("Document", one(pain011()))
	set[key{nsPain012, "Document"}] = seq("Document", one(pain012()))
	return set
}

// signature stands for an enveloped ds:Signature, which is not validated here
func signature() particle {
	r := anyContent("Signature")
	r.space = nsDS
	return opt(r)
}

func idxRoot(name string, parts ...particle) *rule {
	parts = append(parts, signature())
	return seq(name, parts...).
		withAttr("version", idxVersion, true).
		withAttr("productID", idxProductID, true)
}

func idxRules() map[string]*rule {
	created := one(leaf("createDateTimestamp", isoDateTime))
	acquirer := one(seq("Acquirer", one(leaf("acquirerID", idxAcquirerID))))
	merchant := func(withURL bool) particle {
		parts := []particle{
			one(leaf("merchantID", idxMerchantID)),
			one(leaf("subID", idxSubID)),
		}
		if withURL {
			parts = append(parts, one(leaf("merchantReturnURL", idxURL)))
		}
		return one(seq("Merchant", parts...))
	}

	return map[string]*rule{
		"DirectoryReq": idxRoot("DirectoryReq", created, merchant(false)),
		"DirectoryRes": idxRoot("DirectoryRes", created, acquirer,
			one(seq("Directory",
				one(leaf("directoryDateTimestamp", isoDateTime)),
				many(seq("Country",
					one(leaf("countryNames", text("countryNames", 1, 128))),
					many(seq("Issuer",
						one(leaf("issuerID", bicType)),
						one(leaf("issuerName", text("issuerName", 1, 35))),
					), 1, unbounded),
				), 1, unbounded),
			)),
		),
		"AcquirerTrxReq": idxRoot("AcquirerTrxReq", created,
			one(seq("Issuer", one(leaf("issuerID", bicType)))),
			merchant(true),
			one(seq("Transaction",
				one(leaf("entranceCode", idxEntranceCode)),
				opt(leaf("expirationPeriod", duration)),
				one(leaf("language", idxLanguage)),
				one(anyContent("container")),
			)),
		),
		"AcquirerTrxRes": idxRoot("AcquirerTrxRes", created, acquirer,
			one(seq("Issuer", one(leaf("issuerAuthenticationURL", text("issuerAuthenticationURL", 1, 512))))),
			one(seq("Transaction",
				one(leaf("transactionID", idxTrxID)),
				one(leaf("transactionCreateDateTimestamp", isoDateTime)),
			)),
		),
		"AcquirerStatusReq": idxRoot("AcquirerStatusReq", created, merchant(false),
			one(seq("Transaction", one(leaf("transactionID", idxTrxID)))),
		),
		"AcquirerStatusRes": idxRoot("AcquirerStatusRes", created, acquirer,
			one(seq("Transaction",
				one(leaf("transactionID", idxTrxID)),
				one(leaf("status", idxStatus)),
				opt(leaf("statusDateTimestamp", isoDateTime)),
				opt(anyContent("container")),
			)),
		),
		"AcquirerErrorRes": idxRoot("AcquirerErrorRes", created,
			one(seq("Error",
				one(leaf("errorCode", idxErrorCode)),
				one(leaf("errorMessage", text("errorMessage", 1, 128))),
				opt(leaf("errorDetail", text("errorDetail", 0, 256))),
				opt(leaf("suggestedAction", text("suggestedAction", 0, 512))),
				opt(leaf("consumerMessage", text("consumerMessage", 0, 512))),
			)),
		),
	}
}

func groupHeader() particle {
	return one(seq("GrpHdr",
		one(leaf("MsgId", max35Text)),
		one(leaf("CreDtTm", isoDateTime)),
		many(choice("Authstn",
			opt(leaf("Cd", max4Text)),
			opt(leaf("Prtry", max140Text)),
		), 0, 2),
		opt(partyIdentification("InitgPty")),
		opt(agent("InstgAgt")),
		opt(agent("InstdAgt")),
	))
}

func codeOrProprietary(name string, codeType *simpleType) *rule {
	return choice(name,
		opt(leaf("Cd", codeType)),
		opt(leaf("Prtry", max35Text)),
	)
}

func genericIdentification() particle {
	return many(seq("Othr",
		one(leaf("Id", max35Text)),
		opt(codeOrProprietary("SchmeNm", max4Text)),
		opt(leaf("Issr", max35Text)),
	), 0, unbounded)
}

func partyIdentification(name string) *rule {
	return seq(name,
		opt(leaf("Nm", max140Text)),
		opt(seq("PstlAdr",
			opt(leaf("StrtNm", max70Text)),
			opt(leaf("BldgNb", text("Max16Text", 1, 16))),
			opt(leaf("PstCd", text("Max16Text", 1, 16))),
			opt(leaf("TwnNm", max35Text)),
			opt(leaf("Ctry", countryCode)),
			many(leaf("AdrLine", max70Text), 0, 7),
		)),
		opt(choice("Id",
			opt(seq("OrgId",
				opt(leaf("AnyBIC", bicType)),
				genericIdentification(),
			)),
			opt(seq("PrvtId",
				genericIdentification(),
			)),
		)),
		opt(leaf("CtryOfRes", countryCode)),
	)
}

func agent(name string) *rule {
	return seq(name,
		one(seq("FinInstnId",
			opt(leaf("BICFI", bicType)),
			opt(leaf("Nm", max140Text)),
		)),
	)
}

func account(name string) *rule {
	return seq(name,
		one(choice("Id",
			opt(leaf("IBAN", ibanType)),
			opt(seq("Othr", one(leaf("Id", max35Text)))),
		)),
		opt(leaf("Nm", max70Text)),
	)
}

// mandate covers the mandate structures of pain.009 to pain.012
func mandate(name string) *rule {
	return seq(name,
		one(leaf("MndtId", max35Text)),
		opt(leaf("MndtReqId", max35Text)),
		opt(seq("Tp",
			opt(codeOrProprietary("SvcLvl", max4Text)),
			opt(codeOrProprietary("LclInstrm", max35Text)),
		)),
		opt(seq("Ocrncs",
			one(leaf("SeqTp", seqTpCode)),
			opt(leaf("FrstColltnDt", isoDate)),
			opt(leaf("FnlColltnDt", isoDate)),
		)),
		opt(leaf("MaxAmt", amountType).withAttr("Ccy", currency, true)),
		opt(codeOrProprietary("Rsn", max4Text)),
		opt(partyIdentification("CdtrSchmeId")),
		one(partyIdentification("Cdtr")),
		opt(partyIdentification("UltmtCdtr")),
		one(partyIdentification("Dbtr")),
		opt(account("DbtrAcct")),
		opt(agent("DbtrAgt")),
		opt(partyIdentification("UltmtDbtr")),
		many(seq("RfrdDoc",
			opt(seq("Tp",
				one(codeOrProprietary("CdOrPrtry", max4Text)),
				opt(leaf("Issr", max35Text)),
			)),
			opt(leaf("Nb", max35Text)),
			opt(leaf("RltdDt", isoDate)),
		), 0, unbounded),
	)
}

func originalMandate() particle {
	return one(choice("OrgnlMndt",
		opt(leaf("OrgnlMndtId", max35Text)),
		opt(mandate("OrgnlMndt")),
	))
}

func reason(name string) particle {
	return one(seq(name,
		one(codeOrProprietary("Rsn", max4Text)),
		many(leaf("AddtlInf", text("Max105Text", 1, 105)), 0, unbounded),
	))
}

func supplementaryData() particle {
	return many(seq("SplmtryData",
		opt(leaf("PlcAndNm", max350Text)),
		one(anyContent("Envlp")),
	), 0, unbounded)
}

func pain009() *rule {
	return seq("MndtInitnReq",
		groupHeader(),
		many(mandate("Mndt"), 1, unbounded),
		supplementaryData(),
	)
}

func pain010() *rule {
	return seq("MndtAmdmntReq",
		groupHeader(),
		many(seq("UndrlygAmdmntDtls",
			reason("AmdmntRsn"),
			one(mandate("Mndt")),
			originalMandate(),
			supplementaryData(),
		), 1, unbounded),
		supplementaryData(),
	)
}

func pain011() *rule {
	return seq("MndtCxlReq",
		groupHeader(),
		many(seq("UndrlygCxlDtls",
			reason("CxlRsn"),
			originalMandate(),
			supplementaryData(),
		), 1, unbounded),
		supplementaryData(),
	)
}

func pain012() *rule {
	return seq("MndtAccptncRpt",
		groupHeader(),
		many(seq("UndrlygAccptncDtls",
			opt(seq("OrgnlMsgInf",
				one(leaf("MsgId", max35Text)),
				opt(leaf("MsgNmId", max35Text)),
				opt(leaf("CreDtTm", isoDateTime)),
			)),
			one(seq("AccptncRslt",
				one(leaf("Accptd", booleanType)),
				opt(codeOrProprietary("RjctRsn", max4Text)),
			)),
			originalMandate(),
			supplementaryData(),
		), 1, unbounded),
		supplementaryData(),
	)
}
