package main

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-emandates/pkg/security"
)

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func (a *app) signCommand() *cobra.Command {
	var (
		fingerprint string
		report      bool
	)
	cmd := &cobra.Command{
		Use:   "sign FILE",
		Short: "Sign an iDx message or a pain.012 acceptance report",
		Long: `Sign an iDx message with an enveloped signature identified by KeyName, or,
with --report, sign a pain.012 acceptance report the way a debtor bank does.
The signed document is written to standard output. FILE may be "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			store, cfg, err := a.store()
			if err != nil {
				return err
			}
			defer store.Close()

			if fingerprint == "" && cfg != nil {
				fingerprint = cfg.Certificates.Signing
			}
			if fingerprint == "" {
				return fmt.Errorf("--fingerprint is required without a configuration file")
			}
			cred, err := store.Load(cmd.Context(), fingerprint)
			if err != nil {
				return err
			}
			signer, err := security.NewSigner(cred, security.WithLogger(a.logger))
			if err != nil {
				return err
			}
			target := security.EnvelopeTarget
			if report {
				target = security.AcceptanceReportTarget
			}
			signed, err := signer.Sign(data, target)
			if err != nil {
				return err
			}
			_, err = a.out.Write(signed)
			return err
		},
	}
	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "Signing certificate (default: certificates.signing)")
	cmd.Flags().BoolVar(&report, "report", false, "Add the nested acceptance report signature")
	return cmd
}

type verification struct {
	Valid  bool   `yaml:"valid"`
	Signer string `yaml:"signer,omitempty"`
	Nested string `yaml:"nested,omitempty"`
	Checks int    `yaml:"checks"`
	Error  string `yaml:"error,omitempty"`
}

func (a *app) verifyCommand() *cobra.Command {
	var trusted []string
	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Verify the signatures of a signed message",
		Long: `Verify the outer signature of a signed message against the acquirer
certificates, and the nested acceptance report signature when present.
FILE may be "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			store, cfg, err := a.store()
			if err != nil {
				return err
			}
			defer store.Close()

			var primary, alternate string
			switch {
			case len(trusted) > 0:
				primary = trusted[0]
				if len(trusted) > 1 {
					alternate = trusted[1]
				}
			case cfg != nil:
				primary, alternate = cfg.Certificates.Acquirer, cfg.Certificates.AcquirerAlternate
			default:
				return fmt.Errorf("--trust is required without a configuration file")
			}
			trust, err := security.LoadTrustSet(cmd.Context(), store, primary, alternate)
			if err != nil {
				return err
			}
			verifier, err := security.NewVerifier(trust, security.WithLogger(a.logger))
			if err != nil {
				return err
			}

			result, err := verifier.Verify(data)
			if err != nil {
				return a.report(verification{Error: err.Error()}, true)
			}
			return a.print(verification{
				Valid:  true,
				Signer: security.Fingerprint(result.Signer),
				Nested: security.Fingerprint(result.Nested),
				Checks: result.Checks,
			})
		},
	}
	cmd.Flags().StringSliceVar(&trusted, "trust", nil, "Trusted signer fingerprints, primary first (default: certificates.acquirer)")
	return cmd
}

type certificateInfo struct {
	File        string `yaml:"file,omitempty"`
	Fingerprint string `yaml:"fingerprint"`
	Subject     string `yaml:"subject"`
	HasKey      bool   `yaml:"hasKey,omitempty"`
	NotAfter    string `yaml:"notAfter"`
}

func (a *app) fingerprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint [FILE...]",
		Short: "Print certificate fingerprints",
		Long: `Print the SHA-1 fingerprints used in the configuration for the certificates
in the given PEM files. Without files, list the certificate store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []certificateInfo
			if len(args) == 0 {
				store, _, err := a.store()
				if err != nil {
					return err
				}
				defer store.Close()
				keys, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, k := range keys {
					infos = append(infos, certificateInfo{
						Fingerprint: k.Fingerprint,
						Subject:     k.Subject,
						HasKey:      k.HasKey,
						NotAfter:    k.NotAfter.UTC().Format("2006-01-02"),
					})
				}
				return a.print(infos)
			}

			for _, path := range args {
				certs, err := readCertificates(path)
				if err != nil {
					return err
				}
				for _, cert := range certs {
					infos = append(infos, certificateInfo{
						File:        path,
						Fingerprint: security.Fingerprint(cert),
						Subject:     cert.Subject.String(),
						NotAfter:    cert.NotAfter.UTC().Format("2006-01-02"),
					})
				}
			}
			return a.print(infos)
		},
	}
}

func readCertificates(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate in %s: %w", path, err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificate found in %s", path)
	}
	return certs, nil
}
