// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package security signs and verifies eMandates XML documents.

Every iDx message carries an enveloped XML signature as the last child of its
root element. The signer is identified by the SHA-1 fingerprint of its
certificate in KeyInfo/KeyName:

	signer, err := security.NewSigner(&security.Credential{Certificate: cert, Key: key})
	signed, err := signer.Sign(request, security.EnvelopeTarget)

A pain.012 acceptance report that was accepted by the debtor carries a second,
nested signature in MndtAccptncRpt/SplmtryData/Envlp. That signature embeds the
full signing certificate:

	signed, err := signer.Sign(report, security.AcceptanceReportTarget)

Rejected reports are never signed this way; Sign returns ErrNotEligible.

# Verification

A Verifier holds the TrustSet of acquirer certificates. The last signature in
document order is the outer one and must come from the primary or the
alternate certificate. When a document carries exactly two signatures, the
first is verified against the certificate it embeds:

	verifier, err := security.NewVerifier(security.TrustSet{Primary: acquirer})
	result, err := verifier.Verify(response)

Each failure is reported through its own sentinel error: ErrMalformedXML,
ErrNoSignature, ErrUnresolvedSigner, ErrSignatureMismatch and ErrDigestMismatch.

# Algorithms

  - Exclusive XML Canonicalization (goxmldsig by default, signedxml on request)
  - SHA-256 digests
  - RSA PKCS#1 v1.5 with SHA-256
  - Enveloped signature transform with a same-document reference (URI="")

# Revocation

OCSPRevocationChecker checks acquirer certificates through OCSP with CRL
fallback. TrustSet.CheckRevocation applies it to a whole trust set.

# References

  - XML Signature: https://www.w3.org/TR/xmldsig-core1/
  - Exclusive XML Canonicalization: https://www.w3.org/TR/xml-exc-c14n/
*/
package security
