package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-emandates/internal/config"
	"github.com/sirosfoundation/go-emandates/internal/keystore"
	"github.com/sirosfoundation/go-emandates/internal/servicelog"
	"github.com/sirosfoundation/go-emandates/pkg/communicator"
	"github.com/sirosfoundation/go-emandates/pkg/transport"
)

// errAcquirer is returned when an operation yields an error response. The
// response itself has been printed already.
var errAcquirer = errors.New("the operation returned an error")

type app struct {
	configPath string
	certsDir   string
	logLevel   string

	out    io.Writer
	logger *slog.Logger
}

func newRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	cmd := &cobra.Command{
		Use:           "emandates",
		Short:         "eMandates merchant client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q", a.logLevel)
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", envOr("EMANDATES_CONFIG", "emandates.yaml"), "Configuration file")
	cmd.PersistentFlags().StringVar(&a.certsDir, "certs", "", "Certificate directory (overrides certificates.dir)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		a.directoryCommand(),
		a.newMandateCommand(),
		a.statusCommand(),
		a.amendCommand(),
		a.cancelCommand(),
		a.signCommand(),
		a.verifyCommand(),
		a.fingerprintCommand(),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (a *app) config() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.certsDir != "" {
		cfg.Certificates.Dir = a.certsDir
	}
	return cfg, nil
}

// store opens the certificate store. Without a configuration file the
// --certs directory is used on its own.
func (a *app) store() (keystore.Store, *config.Config, error) {
	cfg, err := a.config()
	if err != nil {
		if a.certsDir == "" {
			return nil, nil, err
		}
		store, err := keystore.NewFileStore(a.certsDir)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
	store, err := keystore.NewStore(&cfg.Certificates)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// session holds what an acquirer operation needs
type session struct {
	core *communicator.CoreCommunicator
	b2b  *communicator.B2BCommunicator

	store keystore.Store
	log   servicelog.Writer
}

func (a *app) open(ctx context.Context, b2b bool) (*session, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	store, err := keystore.NewStore(&cfg.Certificates)
	if err != nil {
		return nil, err
	}
	s := &session{store: store}

	https, err := cfg.HTTPS()
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	opts := []communicator.Option{communicator.WithTransport(transport.NewHTTPSClient(https))}

	s.log, err = servicelog.New(ctx, &cfg.ServiceLogs, servicelog.WithLogger(a.logger))
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	if s.log != nil {
		opts = append(opts, communicator.WithMessageLog(s.log))
	}

	mc := cfg.Merchant()
	mc.CertificateLoader = store
	mc.Logger = a.logger
	if b2b {
		s.b2b, err = communicator.NewB2BCommunicator(ctx, mc, opts...)
		if err == nil {
			s.core = s.b2b.CoreCommunicator
		}
	} else {
		s.core, err = communicator.NewCoreCommunicator(ctx, mc, opts...)
	}
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *session) close(ctx context.Context) {
	if s.log != nil {
		_ = s.log.Close(ctx)
	}
	_ = s.store.Close()
}
