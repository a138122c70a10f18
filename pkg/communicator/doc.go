// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package communicator is the merchant entry point for eMandates.

A CoreCommunicator offers Directory, NewMandate, Status and Amend. A
B2BCommunicator offers the same operations for B2B mandates and adds Cancel.
Both are created from a Configuration whose certificates are resolved once,
up front:

	cfg := communicator.Configuration{
		ContractID:                     "0020000387",
		MerchantReturnURL:              "https://merchant.example.com/return",
		SigningCertificateFingerprint:  "...",
		AcquirerCertificateFingerprint: "...",
		DirectoryURL:                   "https://acquirer.example.com/directory",
		TransactionURL:                 "https://acquirer.example.com/transaction",
		StatusURL:                      "https://acquirer.example.com/status",
		CertificateLoader:              loader,
	}
	c, err := communicator.NewCoreCommunicator(ctx, cfg)
	if err != nil {
		return err // wraps ErrConfiguration
	}
	res := c.Directory(ctx)
	if res.IsError {
		log.Println(res.Error.ErrorMessage)
	}

Operations never return Go errors. Every exchange builds the request,
validates it against the schema, signs it, posts it, validates and verifies
the answer and finally parses it. A failure at any step is reported through
the IsError and Error fields of the response, with the fixed messages

	Request XML schema is not valid.
	Http request failed
	Http request failed, code=<status>
	Response XML schema is not valid.
	Response XML signature is not valid.

and the underlying cause in ErrorDetails. Business errors returned by the
acquirer carry its error code and all five error fields instead.

Raw requests and responses can be kept with WithMessageLog, and operation
counts and durations exported with WithMetrics.
*/
package communicator
