// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package message provides eMandates message structures and builders.

Two document families are involved. The iDx envelope (namespace
http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0) is what
travels between merchant and acquirer. The ISO 20022 pain documents describe
the mandate itself and travel inside the envelope's transaction container.

# Message Types

Envelope messages:
  - DirectoryReq / DirectoryRes: list of debtor banks
  - AcquirerTrxReq / AcquirerTrxRes: new, amend and cancel transactions
  - AcquirerStatusReq / AcquirerStatusRes: transaction status
  - AcquirerErrorRes: structured error

Mandate documents:
  - pain.009: mandate initiation request
  - pain.010: mandate amendment request
  - pain.011: mandate cancellation request
  - pain.012: mandate acceptance report

# Building Messages

A Builder is bound to one instrument and one merchant contract:

	b := message.NewBuilder(emandate.Core, message.Merchant{
	    ContractID:    "0020000387",
	    ContractSubID: 0,
	    ReturnURL:     "https://merchant.example.com/return",
	})
	xmlData, err := b.NewMandateRequest(req)

The product identifier and the local instrument code are derived from the
instrument only. Business rules (MaxAmount, ExpirationPeriod, required
fields) are checked before anything is marshaled; a failure wraps
ErrValidation.

# Dates

Every date field is written as YYYY-MM-DDThh:mm:ss.fffZ. Structures are
marshaled first and NormalizeDates rewrites the date-bearing elements
afterwards, using IDxDateFields or PainDateFields.
*/
package message
