// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"annotadmin/internal/middleware"
	"annotadmin/internal/models"
	"annotadmin/internal/session"
	"annotadmin/internal/validation"
)

// totpIssuer names the console in authenticator apps.
const totpIssuer = "AnnotAdmin"

// UserRepository is the persistence the auth handlers need.
// *store.UserStore satisfies it.
type UserRepository interface {
	FindByUsername(username string) (*models.User, error)
	FindByID(id int64) (*models.User, error)
	SetTOTPSecret(userID int64, secret string) error
	EnableTOTP(userID int64) error
	CheckPassword(user *models.User, password string) bool
}

// SessionManager creates and mutates login sessions. *session.Store
// satisfies it.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	users      UserRepository
	sessions   SessionManager
	validate   *validation.Validator
	require2FA bool
}

// NewAuth creates a new Auth handler group. With require2FA unset a
// password login is enough to reach the API.
func NewAuth(users UserRepository, sessions SessionManager, v *validation.Validator, require2FA bool) *Auth {
	return &Auth{
		users:      users,
		sessions:   sessions,
		validate:   v,
		require2FA: require2FA,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	Password string `json:"password" validate:"required,max=1024"`
}

type verifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// CSRFToken hands the client its CSRF token. The cookie is set by the
// CSRF middleware on the same response.
func (a *Auth) CSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": middleware.CSRFTokenFromCtx(r.Context())})
}

// Login checks credentials and opens a session. When two-factor is
// required the session stays limited until Verify succeeds.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !bind(w, r, a.validate, &req) {
		return
	}

	user, err := a.users.FindByUsername(req.Username)
	if err != nil {
		internalError(w, r, "login lookup failed", err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		slog.Info("login rejected", "username", req.Username, "request_id", middleware.RequestIDFromCtx(r.Context()))
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	// Drop any previous session before issuing a new one.
	if middleware.SessionFromCtx(r.Context()) != nil {
		if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Warn("destroy previous session failed", "error", err)
		}
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		TwoFADone: !a.require2FA,
	})
	if err != nil {
		internalError(w, r, "session create failed", err)
		return
	}

	slog.Info("login", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":              user,
		"twoFactorRequired": a.require2FA,
		"twoFactorSetup":    a.require2FA && user.Needs2FASetup(),
	})
}

// TwoFASetup generates a TOTP secret for a user that has not enrolled yet
// and returns it with a QR code.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		internalError(w, r, "user lookup for 2fa failed", err)
		return
	}
	if user.TOTPEnabled {
		writeError(w, http.StatusConflict, "two-factor authentication is already set up")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		internalError(w, r, "totp generate failed", err)
		return
	}

	if err := a.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		internalError(w, r, "save totp secret failed", err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		internalError(w, r, "qr code generation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":     key.Secret(),
		"otpauthUrl": key.URL(),
		"qrCode":     base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify validates a TOTP code and completes authentication. The
// first valid code after setup enables TOTP for the user.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req verifyRequest
	if !bind(w, r, a.validate, &req) {
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		internalError(w, r, "user lookup for 2fa failed", err)
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusConflict, "two-factor setup required")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			internalError(w, r, "enable totp failed", err)
			return
		}
	}

	updated := *sess
	updated.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, &updated); err != nil {
		internalError(w, r, "session update failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "two-factor authentication complete"})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the logged-in user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		internalError(w, r, "user lookup failed", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
