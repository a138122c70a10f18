// Package message provides the iDx envelope and ISO 20022 mandate document structures.
package message

import (
	"encoding/xml"
)

// DirectoryReq asks the acquirer for the list of debtor banks
type DirectoryReq struct {
	XMLName             xml.Name    `xml:"http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0 DirectoryReq"`
	Version             string      `xml:"version,attr"`
	ProductID           string      `xml:"productID,attr"`
	CreateDateTimestamp DateTime    `xml:"createDateTimestamp"`
	Merchant            MerchantRef `xml:"Merchant"`
}

// DirectoryRes lists the debtor banks grouped by country
type DirectoryRes struct {
	XMLName             xml.Name    `xml:"http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0 DirectoryRes"`
	Version             string      `xml:"version,attr"`
	ProductID           string      `xml:"productID,attr,omitempty"`
	CreateDateTimestamp DateTime    `xml:"createDateTimestamp"`
	Acquirer            AcquirerRef `xml:"Acquirer"`
	Directory           Directory   `xml:"Directory"`
}

// Directory holds the countries with their debtor banks
type Directory struct {
	DirectoryDateTimestamp DateTime  `xml:"directoryDateTimestamp"`
	Country                []Country `xml:"Country"`
}

// Country groups the debtor banks of one country
type Country struct {
	CountryNames string            `xml:"countryNames"`
	Issuer       []DirectoryIssuer `xml:"Issuer"`
}

// DirectoryIssuer is one debtor bank in the directory
type DirectoryIssuer struct {
	IssuerID   string `xml:"issuerID"`
	IssuerName string `xml:"issuerName"`
}

// AcquirerTrxReq starts a new, amend or cancel transaction
type AcquirerTrxReq struct {
	XMLName             xml.Name       `xml:"http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0 AcquirerTrxReq"`
	Version             string         `xml:"version,attr"`
	ProductID           string         `xml:"productID,attr"`
	CreateDateTimestamp DateTime       `xml:"createDateTimestamp"`
	Issuer              IssuerRef      `xml:"Issuer"`
	Merchant            MerchantRef    `xml:"Merchant"`
	Transaction         TrxTransaction `xml:"Transaction"`
}

// TrxTransaction carries the embedded mandate document
type TrxTransaction struct {
	EntranceCode     string    `xml:"entranceCode"`
	ExpirationPeriod string    `xml:"expirationPeriod,omitempty"`
	Language         string    `xml:"language"`
	Container        Container `xml:"container"`
}

// AcquirerTrxRes is the answer to an AcquirerTrxReq
type AcquirerTrxRes struct {
	XMLName             xml.Name             `xml:"http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0 AcquirerTrxRes"`
	Version             string               `xml:"version,attr"`
	ProductID           string               `xml:"productID,attr,omitempty"`
	CreateDateTimestamp DateTime             `xml:"createDateTimestamp"`
	Acquirer            AcquirerRef          `xml:"Acquirer"`
	Issuer              IssuerAuthentication `xml:"Issuer"`
	Transaction         TrxResTransaction    `xml:"Transaction"`
}

// IssuerAuthentication tells where the debtor must authenticate
type IssuerAuthentication struct {
	IssuerAuthenticationURL string `xml:"issuerAuthenticationURL"`
}

// TrxResTransaction identifies the transaction created by the acquirer
type TrxResTransaction struct {
	TransactionID                  string   `xml:"transactionID"`
	TransactionCreateDateTimestamp DateTime `xml:"transactionCreateDateTimestamp"`
}

// AcquirerStatusReq queries the state of a transaction
type AcquirerStatusReq struct {
	XMLName             xml.Name          `xml:"http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0 AcquirerStatusReq"`
	Version             string            `xml:"version,attr"`
	ProductID           string            `xml:"productID,attr"`
	CreateDateTimestamp DateTime          `xml:"createDateTimestamp"`
	Merchant            MerchantRef       `xml:"Merchant"`
	Transaction         StatusTransaction `xml:"Transaction"`
}

// StatusTransaction identifies the transaction being queried
type StatusTransaction struct {
	TransactionID string `xml:"transactionID"`
}

// AcquirerStatusRes reports the state of a transaction
type AcquirerStatusRes struct {
	XMLName             xml.Name             `xml:"http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0 AcquirerStatusRes"`
	Version             string               `xml:"version,attr"`
	ProductID           string               `xml:"productID,attr,omitempty"`
	CreateDateTimestamp DateTime             `xml:"createDateTimestamp"`
	Acquirer            AcquirerRef          `xml:"Acquirer"`
	Transaction         StatusResTransaction `xml:"Transaction"`
}

// StatusResTransaction holds the status and, on success, the acceptance report
type StatusResTransaction struct {
	TransactionID       string     `xml:"transactionID"`
	Status              string     `xml:"status"`
	StatusDateTimestamp *DateTime  `xml:"statusDateTimestamp,omitempty"`
	Container           *Container `xml:"container,omitempty"`
}

// AcquirerErrorRes is returned instead of any of the responses above
type AcquirerErrorRes struct {
	XMLName             xml.Name    `xml:"http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0 AcquirerErrorRes"`
	Version             string      `xml:"version,attr"`
	ProductID           string      `xml:"productID,attr,omitempty"`
	CreateDateTimestamp DateTime    `xml:"createDateTimestamp"`
	Error               ErrorDetail `xml:"Error"`
}

// ErrorDetail is the structured error payload
type ErrorDetail struct {
	ErrorCode       string `xml:"errorCode"`
	ErrorMessage    string `xml:"errorMessage"`
	ErrorDetail     string `xml:"errorDetail,omitempty"`
	SuggestedAction string `xml:"suggestedAction,omitempty"`
	ConsumerMessage string `xml:"consumerMessage,omitempty"`
}

// MerchantRef identifies the merchant contract
type MerchantRef struct {
	MerchantID        string `xml:"merchantID"`
	SubID             string `xml:"subID"`
	MerchantReturnURL string `xml:"merchantReturnURL,omitempty"`
}

// AcquirerRef identifies the acquirer
type AcquirerRef struct {
	AcquirerID string `xml:"acquirerID"`
}

// IssuerRef identifies the debtor bank
type IssuerRef struct {
	IssuerID string `xml:"issuerID"`
}

// Container holds an embedded document as raw XML
type Container struct {
	Inner string `xml:",innerxml"`
}
