// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements single-admin authentication: a bcrypt password,
// an optional TOTP second factor and a signed JWT carried in a cookie.
package auth

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CookieName is the cookie that carries the admin token.
	CookieName = "admin-token"
	// Issuer is stamped into every token and required on verification.
	Issuer = "portfolio-admin"
	// TokenTTL is how long a sign-in lasts.
	TokenTTL = 7 * 24 * time.Hour

	// HashCost is the bcrypt cost used by HashPassword.
	HashCost = 12

	totpIssuer = "Folio"
)

var (
	// ErrNotConfigured means the password hash or signing secret is missing.
	ErrNotConfigured = errors.New("auth: server configuration error")
	// ErrInvalidToken covers malformed, expired, foreign and non-admin tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims is the JWT payload issued to the admin.
type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Authenticator checks admin credentials and issues tokens.
type Authenticator struct {
	secret       []byte
	passwordHash []byte
	totpSecret   string
	secure       bool

	now func() time.Time
}

// New creates an Authenticator. passwordHash may be a raw bcrypt hash or
// its base64 encoding (the form that survives Docker Compose env files).
// secure controls the Secure flag on the cookie.
func New(secret, passwordHash, totpSecret string, secure bool) *Authenticator {
	return &Authenticator{
		secret:       []byte(secret),
		passwordHash: decodeHash(passwordHash),
		totpSecret:   strings.ToUpper(strings.ReplaceAll(totpSecret, " ", "")),
		secure:       secure,
		now:          time.Now,
	}
}

func decodeHash(h string) []byte {
	h = strings.TrimSpace(h)
	if h == "" || strings.HasPrefix(h, "$2") {
		return []byte(h)
	}
	if raw, err := base64.StdEncoding.DecodeString(h); err == nil && strings.HasPrefix(string(raw), "$2") {
		return raw
	}
	return []byte(h)
}

// Configured reports whether both the password hash and signing secret are set.
func (a *Authenticator) Configured() bool {
	return len(a.secret) > 0 && len(a.passwordHash) > 0
}

// TOTPEnabled reports whether a second factor is required at sign-in.
func (a *Authenticator) TOTPEnabled() bool {
	return a.totpSecret != ""
}

// CheckPassword compares password against the configured bcrypt hash.
func (a *Authenticator) CheckPassword(password string) bool {
	if len(a.passwordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

// CheckCode validates a TOTP code. It always succeeds when TOTP is disabled.
func (a *Authenticator) CheckCode(code string) bool {
	if !a.TOTPEnabled() {
		return true
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	valid, err := totp.ValidateCustom(code, a.totpSecret, a.now(), totp.ValidateOpts{
		Period: 30,
		Skew:   1,
		Digits: 6,
	})
	return err == nil && valid
}

// ProvisioningURL returns the otpauth:// URI an authenticator app scans.
// It is empty when TOTP is disabled or the secret is not valid base32.
func (a *Authenticator) ProvisioningURL(account string) string {
	key, err := a.totpKey(account)
	if err != nil {
		return ""
	}
	return key.URL()
}

// totpKey rebuilds the otp.Key for the configured secret so the library
// renders the provisioning URI.
func (a *Authenticator) totpKey(account string) (*otp.Key, error) {
	if !a.TOTPEnabled() {
		return nil, errors.New("totp disabled")
	}
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).
		DecodeString(strings.TrimRight(a.totpSecret, "="))
	if err != nil {
		return nil, fmt.Errorf("decoding totp secret: %w", err)
	}
	return totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account,
		Secret:      raw,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
}

// Issue signs a new admin token and returns it with its expiry.
func (a *Authenticator) Issue() (string, time.Time, error) {
	if len(a.secret) == 0 {
		return "", time.Time{}, ErrNotConfigured
	}

	now := a.now()
	exp := now.Add(TokenTTL)
	claims := Claims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses a token and checks signature, issuer, expiry and the admin
// claim. Every failure is reported as ErrInvalidToken.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	if len(a.secret) == 0 || tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.Admin {
		return nil, fmt.Errorf("%w: missing admin claim", ErrInvalidToken)
	}
	return claims, nil
}

// SetCookie writes the admin token cookie.
func (a *Authenticator) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the admin token cookie.
func (a *Authenticator) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// TokenFromRequest returns the admin token cookie value, or "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// HashPassword returns a bcrypt hash of password at HashCost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

// GenerateSecret returns n random bytes hex-encoded, for JWT_SECRET.
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateTOTPSecret creates a new base32 TOTP secret for account.
func GenerateTOTPSecret(account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account,
	})
	if err != nil {
		return "", fmt.Errorf("generating totp secret: %w", err)
	}
	return key.Secret(), nil
}
