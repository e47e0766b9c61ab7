// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cli implements taxctl, a command-line client for the console's
// taxonomy and folder API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"annotadmin/internal/client"
	"annotadmin/internal/taxonomy"
)

const defaultServer = "http://localhost:8080"

// options are the global flags, with TAXCTL_* environment fallbacks.
type options struct {
	server   string
	username string
	password string
	totp     string
	timeout  time.Duration
	logJSON  bool
	verbose  bool
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	opts   options
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger

	client *client.Client
	store  *taxonomy.Store
}

var errEnrollmentRequired = errors.New("two-factor enrollment required: run 'taxctl enroll' first")

// NewRootCmd builds the taxctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "taxctl",
		Short:         "Manage the annotation taxonomy and folder tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			a.errOut = cmd.ErrOrStderr()
			a.applyEnv()
			a.logger = newLogger(a.errOut, a.opts.logJSON, a.opts.verbose)
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.opts.server, "server", "s", "", "console base URL (env TAXCTL_SERVER, default "+defaultServer+")")
	f.StringVarP(&a.opts.username, "username", "u", "", "login name (env TAXCTL_USERNAME)")
	f.StringVarP(&a.opts.password, "password", "p", "", "password (env TAXCTL_PASSWORD)")
	f.StringVar(&a.opts.totp, "totp", "", "current two-factor code (env TAXCTL_TOTP)")
	f.DurationVar(&a.opts.timeout, "timeout", 30*time.Second, "overall request timeout")
	f.BoolVar(&a.opts.logJSON, "log-json", false, "write logs as JSON")
	f.BoolVarP(&a.opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newTreeCmd(a),
		newListCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newStatsCmd(a),
		newPathCmd(a),
		newCheckCmd(a),
		newExportCmd(a),
		newFoldersCmd(a),
		newBrowseCmd(a),
		newWhoamiCmd(a),
		newEnrollCmd(a),
	)
	return root
}

// Execute runs taxctl and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		var shown *reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		}
		return 1
	}
	return 0
}

// reportedError wraps a failure the store notifier already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// storeErr converts a failed store result into a command error.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// applyEnv fills empty flags from the environment.
func (a *app) applyEnv() {
	fill := func(dst *string, key, fallback string) {
		if *dst != "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
			return
		}
		*dst = fallback
	}
	fill(&a.opts.server, "TAXCTL_SERVER", defaultServer)
	fill(&a.opts.username, "TAXCTL_USERNAME", "")
	fill(&a.opts.password, "TAXCTL_PASSWORD", "")
	fill(&a.opts.totp, "TAXCTL_TOTP", "")
}

func newLogger(w io.Writer, asJSON, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// context returns a context bounded by --timeout.
func (a *app) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.opts.timeout)
}

// login authenticates a fresh client. With allowEnroll set, a user that
// still has to enroll in two-factor is left logged in with a limited
// session instead of failing.
func (a *app) login(ctx context.Context, allowEnroll bool) (*client.LoginResult, error) {
	if a.opts.username == "" || a.opts.password == "" {
		return nil, errors.New("credentials required: set --username/--password or TAXCTL_USERNAME/TAXCTL_PASSWORD")
	}

	c, err := client.New(a.opts.server, client.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}

	res, err := c.Login(ctx, a.opts.username, a.opts.password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	a.client = c

	if !res.TwoFactorRequired {
		return res, nil
	}
	if res.TwoFactorSetup {
		if allowEnroll {
			return res, nil
		}
		return nil, errEnrollmentRequired
	}
	if a.opts.totp == "" {
		return nil, errors.New("two-factor code required: set --totp or TAXCTL_TOTP")
	}
	if err := c.VerifyTOTP(ctx, a.opts.totp); err != nil {
		return nil, fmt.Errorf("verify two-factor code: %w", err)
	}
	return res, nil
}

// connect logs in and prepares the taxonomy store.
func (a *app) connect(ctx context.Context) error {
	if _, err := a.login(ctx, false); err != nil {
		return err
	}
	a.store = taxonomy.NewStore(a.client,
		taxonomy.WithLogger(a.logger),
		taxonomy.WithNotifier(printNotifier{out: a.out, errOut: a.errOut}),
	)
	a.logger.Debug("connected", "server", a.opts.server, "username", a.opts.username)
	return nil
}

// connectAndFetch logs in and loads the category collection.
func (a *app) connectAndFetch(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	return storeErr(a.store.Fetch(ctx).Err)
}

// printNotifier writes store outcomes for the terminal.
type printNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n printNotifier) Success(msg string) { fmt.Fprintln(n.out, msg) }
func (n printNotifier) Failure(msg string) { fmt.Fprintln(n.errOut, msg) }
