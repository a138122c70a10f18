// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package goemandates implements the merchant side of the Dutch eMandates
protocol for Core and B2B SEPA direct debit mandates.

# Overview

An eMandates merchant exchanges iDx messages with its acquirer over HTTPS.
Transaction requests carry an ISO 20022 pain document (pain.009 for new
mandates, pain.010 for amendments, pain.011 for B2B cancellations), and a
successful status response carries the pain.012 acceptance report signed by
the debtor bank. Every request and response is signed with an enveloped XML
signature whose KeyName is the SHA-1 fingerprint of the signing certificate.

# Specifications Implemented

  - iDx Merchant-Acquirer messages 1.0.0
  - ISO 20022 pain.009.001.04, pain.010.001.04, pain.011.001.04 and pain.012.001.04
  - XML Signature Syntax and Processing: https://www.w3.org/TR/xmldsig-core1/
  - Exclusive XML Canonicalization: https://www.w3.org/TR/xml-exc-c14n/

# Package Structure

The library is organized into the following packages:

	github.com/sirosfoundation/go-emandates/pkg/emandate     - Request and response values
	github.com/sirosfoundation/go-emandates/pkg/message      - iDx and pain documents and their builder
	github.com/sirosfoundation/go-emandates/pkg/schema       - Schema validation of every message
	github.com/sirosfoundation/go-emandates/pkg/security     - Signing, verification and certificate trust
	github.com/sirosfoundation/go-emandates/pkg/response     - Response parsing into typed outcomes
	github.com/sirosfoundation/go-emandates/pkg/transport    - HTTPS transport with TLS 1.2/1.3
	github.com/sirosfoundation/go-emandates/pkg/communicator - Core and B2B communicators

The emandates command in cmd/emandates runs every operation from a YAML
configuration file.

# Quick Start

To start a new mandate:

	import (
	    "github.com/sirosfoundation/go-emandates/pkg/communicator"
	    "github.com/sirosfoundation/go-emandates/pkg/emandate"
	)

	c, err := communicator.NewCoreCommunicator(ctx, cfg)
	if err != nil {
	    return err
	}
	res := c.NewMandate(ctx, emandate.NewMandateRequest{
	    EntranceCode: "order-17",
	    Language:     "nl",
	    DebtorBankID: "INGBNL2A",
	    EMandateID:   "M-17",
	    SequenceType: emandate.Rcur,
	})
	if res.IsError {
	    return fmt.Errorf("%s: %s", res.Error.ErrorCode, res.Error.ErrorMessage)
	}
	// send the debtor to res.IssuerAuthenticationURL, then poll
	status := c.Status(ctx, emandate.StatusRequest{TransactionID: res.TransactionID})

# Security Features

  - RSA-SHA256 signatures with SHA-256 digests
  - Exclusive canonicalization, through goxmldsig or signedxml
  - A primary and an optional alternate acquirer certificate, so certificate
    rollover needs no downtime
  - Optional OCSP and CRL revocation checks of the acquirer certificates
  - Signing keys in PEM files or on a PKCS#11 token

# License

BSD-2-Clause License
*/
package goemandates
