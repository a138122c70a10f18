// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package response turns acquirer answers into typed outcomes.

Every payload goes through the same cascade. It is first decoded as the
success shape of the operation (DirectoryRes, AcquirerTrxRes or
AcquirerStatusRes). If that fails it is decoded as an AcquirerErrorRes, which
yields a business error carrying all five error fields. If both fail the
outcome is a fault that keeps the first decoding error and the raw payload:

	out := response.ParseStatus(body)
	switch out.Kind {
	case emandate.OutcomeSuccess:
		report := out.Value.AcceptanceReport
	case emandate.OutcomeBusinessError:
		code := out.Business.ErrorCode
	}

A status response reporting Success must embed a pain.012 acceptance report.
Without one the outcome is a fault wrapping ErrMissingAcceptanceReport.
*/
package response
