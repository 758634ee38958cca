package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Travis-Britz/azddns/internal/config"
)

var gitCommit = "unknown"

const (
	exitOK        = 0
	exitCancelled = 1
	exitFatal     = 2
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	log := newLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newCommand(log)
	cmd.SetArgs(args)
	return exitCode(log, cmd.ExecuteContext(ctx))
}

func exitCode(log logrus.FieldLogger, err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		log.Warn("cancelled by user")
		return exitCancelled
	default:
		log.WithError(err).Error("fatal error")
		return exitFatal
	}
}

type options struct {
	configFile string
	once       bool
}

func newCommand(log *logrus.Logger) *cobra.Command {
	v := config.NewViper()
	var opts options

	cc := &cobra.Command{
		Use:           "azddns",
		Short:         "Keep a DNS A record pointed at this machine's public IPv4 address",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(log); err != nil {
				return err
			}
			cfg, err := config.Load(v, opts.configFile)
			if err != nil {
				return err
			}
			if err := promptSecret(cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			level, _ := logrus.ParseLevel(cfg.LogLevel)
			log.SetLevel(level)

			return run(cmd.Context(), log, cfg, opts.once)
		},
	}

	f := cc.Flags()
	f.StringVar(&opts.configFile, "config", "", "path to a config file (json, yaml or toml)")
	f.BoolVar(&opts.once, "once", false, "update the record once and exit")
	f.String("log-level", "info", "log level: trace, debug, info, warn or error")
	f.String("ip", "", "publish this address instead of looking it up")
	f.Int("interval", 5, "minutes between update cycles")
	_ = v.BindPFlag("log_level", f.Lookup("log-level"))
	_ = v.BindPFlag("lookup.address", f.Lookup("ip"))
	_ = v.BindPFlag("update_interval_minutes", f.Lookup("interval"))

	return cc
}

func newLogger(w *os.File) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	if term.IsTerminal(int(w.Fd())) {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	} else {
		log.Formatter = &logrus.JSONFormatter{}
	}
	return log
}

// promptSecret asks for the Azure client secret when it is not configured and someone is at the keyboard.
// Otherwise the missing secret is left for Validate to report.
func promptSecret(cfg *config.Config) error {
	if cfg.DNS.Provider != config.ProviderAzure || cfg.DNS.ClientSecret != "" {
		return nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Enter Azure client secret for %s: ", cfg.DNS.ClientID)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("error reading from stdin: %w", err)
	}
	cfg.DNS.ClientSecret = strings.TrimSpace(string(secret))
	return nil
}
