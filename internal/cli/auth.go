// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if _, err := a.login(ctx, false); err != nil {
				return err
			}
			u, err := a.client.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\n", u.Username, u.Role)
			return nil
		},
	}
}

func newEnrollCmd(a *app) *cobra.Command {
	var qrOut string
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Set up two-factor authentication for the account",
		Long: "Generates a TOTP secret for an account that has none yet. Add it to an\n" +
			"authenticator app, then run any command with --totp to confirm it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			res, err := a.login(ctx, true)
			if err != nil {
				return err
			}
			if !res.TwoFactorSetup {
				return fmt.Errorf("nothing to enroll: two-factor is already enabled for %s or not required", a.opts.username)
			}

			setup, err := a.client.SetupTOTP(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "secret: %s\nurl: %s\n", setup.Secret, setup.OTPAuthURL)

			if qrOut != "" {
				png, err := base64.StdEncoding.DecodeString(setup.QRCode)
				if err != nil {
					return fmt.Errorf("decode qr code: %w", err)
				}
				if err := os.WriteFile(qrOut, png, 0o600); err != nil {
					return fmt.Errorf("write qr code: %w", err)
				}
				fmt.Fprintf(a.out, "qr code written to %s\n", qrOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&qrOut, "qr-out", "", "write the enrollment QR code PNG to this file")
	return cmd
}
