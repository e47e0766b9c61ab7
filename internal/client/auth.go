// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"net/http"

	"annotadmin/internal/models"
)

// LoginResult is the server's answer to a password login.
type LoginResult struct {
	User              models.User `json:"user"`
	TwoFactorRequired bool        `json:"twoFactorRequired"`
	TwoFactorSetup    bool        `json:"twoFactorSetup"`
}

// TOTPSetup is a freshly generated TOTP enrollment.
type TOTPSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"` // base64 PNG
}

// Login authenticates with username and password. When TwoFactorRequired
// is set the session is only usable after VerifyTOTP.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := c.do(ctx, http.MethodGet, "/api/auth/csrf", nil, nil, nil); err != nil {
		return nil, err
	}

	in := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupTOTP starts two-factor enrollment for a user that has none yet.
func (c *Client) SetupTOTP(ctx context.Context) (*TOTPSetup, error) {
	var out TOTPSetup
	if err := c.do(ctx, http.MethodPost, "/api/auth/2fa/setup", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTOTP completes a two-factor login with a 6-digit code.
func (c *Client) VerifyTOTP(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/2fa/verify", nil, map[string]string{"code": code}, nil)
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}
