package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-emandates/pkg/emandate"
	"github.com/sirosfoundation/go-emandates/pkg/message"
)

// transactionFlags are shared by new, amend and cancel
type transactionFlags struct {
	entranceCode    string
	language        string
	expiration      time.Duration
	messageID       string
	debtorBankID    string
	mandateID       string
	sequence        string
	reason          string
	debtorReference string
	purchaseID      string
}

func (f *transactionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.entranceCode, "entrance-code", "", "Code returned to the merchant on the return URL")
	cmd.Flags().StringVar(&f.language, "language", "nl", "Language of the debtor bank pages (ISO 639-1)")
	cmd.Flags().DurationVar(&f.expiration, "expiration", 0, "Expiration period, at most 7 days (default: acquirer default)")
	cmd.Flags().StringVar(&f.messageID, "message-id", "", "Message id (default: generated)")
	cmd.Flags().StringVar(&f.debtorBankID, "bank", "", "BIC of the debtor bank")
	cmd.Flags().StringVar(&f.mandateID, "mandate-id", "", "eMandate id")
	cmd.Flags().StringVar(&f.sequence, "sequence", "RCUR", "Sequence type (RCUR or OOFF)")
	cmd.Flags().StringVar(&f.reason, "reason", "", "eMandate reason")
	cmd.Flags().StringVar(&f.debtorReference, "debtor-reference", "", "Debtor reference")
	cmd.Flags().StringVar(&f.purchaseID, "purchase-id", "", "Purchase id")
	_ = cmd.MarkFlagRequired("entrance-code")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("mandate-id")
}

func parseSequence(s string) (emandate.SequenceType, error) {
	seq, ok := message.ParseSequenceTypeCode(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid sequence type %q, want RCUR or OOFF", s)
	}
	return seq, nil
}

func parseMaxAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid max amount %q: %w", s, err)
	}
	return &amount, nil
}

func (a *app) directoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "directory",
		Short: "List the debtor banks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())
			res := s.core.Directory(cmd.Context())
			return a.report(res, res.IsError)
		},
	}
}

func (a *app) newMandateCommand() *cobra.Command {
	var (
		f         transactionFlags
		b2b       bool
		maxAmount string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new eMandate transaction",
		Long: `Start a new eMandate transaction and print the URL the debtor is sent to.

Examples:
  # Core mandate for recurring collections
  emandates new --entrance-code order-17 --bank INGBNL2A --mandate-id M-17

  # B2B mandate with a maximum amount
  emandates new --b2b --max-amount 1500.50 --entrance-code order-18 --bank RABONL2U --mandate-id M-18`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(f.sequence)
			if err != nil {
				return err
			}
			amount, err := parseMaxAmount(maxAmount)
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context(), b2b)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			res := s.core.NewMandate(cmd.Context(), emandate.NewMandateRequest{
				EntranceCode:     f.entranceCode,
				Language:         f.language,
				ExpirationPeriod: f.expiration,
				MessageID:        f.messageID,
				DebtorBankID:     f.debtorBankID,
				EMandateID:       f.mandateID,
				SequenceType:     seq,
				EMandateReason:   f.reason,
				DebtorReference:  f.debtorReference,
				PurchaseID:       f.purchaseID,
				MaxAmount:        amount,
			})
			return a.report(res, res.IsError)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&b2b, "b2b", false, "Use the B2B scheme")
	cmd.Flags().StringVar(&maxAmount, "max-amount", "", "Maximum amount in EUR (B2B only)")
	return cmd
}

func (a *app) statusCommand() *cobra.Command {
	var (
		transactionID string
		b2b           bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the status of a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), b2b)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())
			res := s.core.Status(cmd.Context(), emandate.StatusRequest{TransactionID: transactionID})
			return a.report(res, res.IsError)
		},
	}
	cmd.Flags().StringVar(&transactionID, "transaction-id", "", "Transaction id returned by new, amend or cancel")
	cmd.Flags().BoolVar(&b2b, "b2b", false, "Use the B2B scheme")
	_ = cmd.MarkFlagRequired("transaction-id")
	return cmd
}

func (a *app) amendCommand() *cobra.Command {
	var (
		f            transactionFlags
		b2b          bool
		originalIBAN string
		originalBank string
	)
	cmd := &cobra.Command{
		Use:   "amend",
		Short: "Start an amendment of an existing eMandate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(f.sequence)
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context(), b2b)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			res := s.core.Amend(cmd.Context(), emandate.AmendmentRequest{
				EntranceCode:         f.entranceCode,
				Language:             f.language,
				ExpirationPeriod:     f.expiration,
				MessageID:            f.messageID,
				EMandateID:           f.mandateID,
				EMandateReason:       f.reason,
				DebtorReference:      f.debtorReference,
				DebtorBankID:         f.debtorBankID,
				PurchaseID:           f.purchaseID,
				SequenceType:         seq,
				OriginalIBAN:         originalIBAN,
				OriginalDebtorBankID: originalBank,
			})
			return a.report(res, res.IsError)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&b2b, "b2b", false, "Use the B2B scheme")
	cmd.Flags().StringVar(&originalIBAN, "original-iban", "", "IBAN of the mandate being amended")
	cmd.Flags().StringVar(&originalBank, "original-bank", "", "BIC of the original debtor bank")
	_ = cmd.MarkFlagRequired("original-iban")
	_ = cmd.MarkFlagRequired("original-bank")
	return cmd
}

func (a *app) cancelCommand() *cobra.Command {
	var (
		f            transactionFlags
		originalIBAN string
		maxAmount    string
	)
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Start a cancellation of an existing B2B eMandate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(f.sequence)
			if err != nil {
				return err
			}
			amount, err := parseMaxAmount(maxAmount)
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			res := s.b2b.Cancel(cmd.Context(), emandate.CancellationRequest{
				EntranceCode:     f.entranceCode,
				Language:         f.language,
				ExpirationPeriod: f.expiration,
				MessageID:        f.messageID,
				EMandateID:       f.mandateID,
				EMandateReason:   f.reason,
				DebtorReference:  f.debtorReference,
				DebtorBankID:     f.debtorBankID,
				PurchaseID:       f.purchaseID,
				SequenceType:     seq,
				MaxAmount:        amount,
				OriginalIBAN:     originalIBAN,
			})
			return a.report(res, res.IsError)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&originalIBAN, "original-iban", "", "IBAN of the mandate being cancelled")
	cmd.Flags().StringVar(&maxAmount, "max-amount", "", "Maximum amount in EUR of the mandate")
	_ = cmd.MarkFlagRequired("original-iban")
	return cmd
}
