package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/eldtechnologies/folio/internal/config"
	"github.com/eldtechnologies/folio/internal/crypto"
	"github.com/eldtechnologies/folio/internal/mail"
	"github.com/eldtechnologies/folio/internal/provision"
	"github.com/eldtechnologies/folio/internal/store"
)

type options struct {
	databaseURL string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "folioctl",
		Short: "Administer a folio portfolio site",
		Long: `folioctl manages the admin account and mail relay of a folio site.

Example usage:
  folioctl admin create --id me          # Create the admin (password read from stdin)
  folioctl admin set-password --id me    # Replace the admin password
  folioctl hash-password                 # Print a bcrypt hash for a password
  folioctl relay-secret set              # Store EMAIL_APP_PASS in the OS keyring
  folioctl mail test --to me@example.com # Send a test message through the relay`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.databaseURL, "database", "", "database URL (default: $DATABASE_URL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newAdminCmd(opts),
		newHashPasswordCmd(),
		newRelaySecretCmd(),
		newMailCmd(opts),
	)
	return root
}

func newAdminCmd(opts *options) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage the admin account",
	}

	var id, password string

	create := &cobra.Command{
		Use:   "create",
		Short: "Create the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(ctx context.Context, ds store.DataStore) error {
				pw, err := passwordFrom(cmd, password)
				if err != nil {
					return err
				}
				if err := provision.CreateAdmin(ctx, ds, id, pw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q created\n", id)
				return nil
			})
		},
	}

	setPassword := &cobra.Command{
		Use:   "set-password",
		Short: "Replace the admin password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(ctx context.Context, ds store.DataStore) error {
				pw, err := passwordFrom(cmd, password)
				if err != nil {
					return err
				}
				if err := provision.SetPassword(ctx, ds, id, pw); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("admin %q does not exist", id)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %q\n", id)
				return nil
			})
		},
	}

	for _, c := range []*cobra.Command{create, setPassword} {
		c.Flags().StringVar(&id, "id", "", "admin ID")
		c.Flags().StringVar(&password, "password", "", "password (default: read from stdin)")
		_ = c.MarkFlagRequired("id")
	}

	admin.AddCommand(create, setPassword)
	return admin
}

func newHashPasswordCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash of a password",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(cmd, password)
			if err != nil {
				return err
			}
			hash, err := crypto.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (default: read from stdin)")
	return cmd
}

func newRelaySecretCmd() *cobra.Command {
	relaySecret := &cobra.Command{
		Use:   "relay-secret",
		Short: "Manage the mail relay secret in the OS keyring",
	}

	var email, secret string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store the relay secret for an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = config.Load().Email
			}
			if email == "" {
				return errors.New("no address: pass --email or set EMAIL")
			}
			s, err := passwordFrom(cmd, secret)
			if err != nil {
				return err
			}
			if err := keyring.Set(config.KeyringService, email, s); err != nil {
				return fmt.Errorf("keyring: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "relay secret stored for %s\n", email)
			return nil
		},
	}
	set.Flags().StringVar(&email, "email", "", "relay sender address (default: $EMAIL)")
	set.Flags().StringVar(&secret, "secret", "", "secret (default: read from stdin)")

	relaySecret.AddCommand(set)
	return relaySecret
}

func newMailCmd(opts *options) *cobra.Command {
	mailCmd := &cobra.Command{
		Use:   "mail",
		Short: "Mail relay checks",
	}

	var to string
	var timeout time.Duration
	test := &cobra.Command{
		Use:   "test",
		Short: "Send a test message through the configured relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.Email == "" || cfg.EmailSecret == "" {
				return errors.New("EMAIL and EMAIL_APP_PASS (or a keyring entry) are required")
			}
			if to == "" {
				to = cfg.Email
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			dialer := &mail.SMTPDialer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, StartTLS: cfg.SMTPStartTLS}
			relay := mail.NewRelay(
				mail.NewDispatcher(dialer, cfg.Email, cfg.EmailSecret, newLogger(cmd.ErrOrStderr(), opts.verbose)),
				mail.RelayConfig{FromName: cfg.ContactFromName},
			)
			defer relay.Close()

			if err := relay.SendTest(ctx, to); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "test message sent to %s via %s\n", to, dialer.Addr())
			return nil
		},
	}
	test.Flags().StringVar(&to, "to", "", "recipient (default: the relay sender)")
	test.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")

	mailCmd.AddCommand(test)
	return mailCmd
}

func withStore(ctx context.Context, opts *options, fn func(context.Context, store.DataStore) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	url := opts.databaseURL
	if url == "" {
		url = config.Load().DatabaseURL
	}
	ds, err := store.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer ds.Close()
	return fn(ctx, ds)
}

// passwordFrom returns flagValue, or the first line of stdin when it is empty.
func passwordFrom(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", crypto.ErrEmptyPassword
	}
	return line, nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
