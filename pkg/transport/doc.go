// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport posts iDx messages to the acquirer over HTTPS.

Every request is a single POST with content type "text/xml; charset=utf-8".
The client never retries and never interprets the body; it returns the status
code and whatever bytes the acquirer sent:

	client := transport.NewHTTPSClient(transport.DefaultHTTPSConfig())
	code, body, err := client.Post(ctx, "https://acquirer.example.com/emandates", signed)
	if err == nil && !transport.IsSuccess(code) {
		// rejected by the acquirer
	}

# TLS Configuration

TLS 1.2 is the minimum and TLS 1.3 the maximum by default. For TLS 1.2 the
following cipher suites are used:
  - TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256
  - TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256

# References

  - TLS 1.3 RFC 8446: https://datatracker.ietf.org/doc/html/rfc8446
  - TLS 1.2 RFC 5246: https://datatracker.ietf.org/doc/html/rfc5246
*/
package transport
