// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package emandate holds the value types exchanged with an eMandates acquirer.

The types here carry no protocol behavior. Requests are filled in by the
merchant application and handed to a communicator, and responses come back as
plain values whose IsError flag tells a business or technical failure apart
from a usable answer.

# Instrumentation

Two mandate schemes exist: Core, for consumers, and B2B, for businesses. The
scheme decides which product identifier is placed on the envelope and whether
a maximum amount may be carried:

	req := emandate.NewMandateRequest{
	    EntranceCode: "entrance-1",
	    Language:     "nl",
	    EMandateID:   "mandate-123",
	    DebtorBankID: "INGBNL2A",
	    SequenceType: emandate.Rcur,
	}

# Outcomes

Internally every parsed answer is an [Outcome] with exactly one of three
kinds: Success, BusinessError or Fault. The raw XML is kept in all three
kinds whenever a payload was received.
*/
package emandate
