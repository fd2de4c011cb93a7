// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"folio/internal/auth"
	"folio/internal/logger"
)

// failedLoginDelay slows password guessing.
var failedLoginDelay = time.Second

// Auth groups the admin sign-in handlers.
type Auth struct {
	auth    *auth.Authenticator
	account string
}

// NewAuth creates the Auth handler group. account labels the TOTP entry
// in authenticator apps.
func NewAuth(a *auth.Authenticator, account string) *Auth {
	if account == "" {
		account = "admin"
	}
	return &Auth{auth: a, account: account}
}

type loginRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login checks the password (and TOTP code when enabled) and sets the
// admin token cookie.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}

	log := logger.WithCtx(r.Context())
	if !h.auth.Configured() {
		log.Error("admin login attempted without ADMIN_PASSWORD_HASH or JWT_SECRET")
		writeError(w, http.StatusInternalServerError, "Server configuration error")
		return
	}

	if !h.auth.CheckPassword(req.Password) || !h.auth.CheckCode(req.Code) {
		log.Warn("admin login failed")
		sleep(r, failedLoginDelay)
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, exp, err := h.auth.Issue()
	if err != nil {
		log.Error("issue admin token failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	h.auth.SetCookie(w, token, exp)
	log.Info("admin signed in")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout clears the admin token cookie.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Status reports whether the request carries a valid admin token.
func (h *Auth) Status(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.Verify(auth.TokenFromRequest(r)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

// TOTPQRCode serves the provisioning QR code as a PNG so the configured
// secret can be enrolled in an authenticator app.
func (h *Auth) TOTPQRCode(w http.ResponseWriter, r *http.Request) {
	u := h.auth.ProvisioningURL(h.account)
	if u == "" {
		writeError(w, http.StatusNotFound, "Two-factor authentication is not configured")
		return
	}

	png, err := qrcode.Encode(u, qrcode.Medium, 256)
	if err != nil {
		logger.WithCtx(r.Context()).Error("qr code generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// sleep waits d or until the request is cancelled.
func sleep(r *http.Request, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-r.Context().Done():
	}
}
