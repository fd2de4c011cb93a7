// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"folio/internal/auth"
	"folio/internal/logger"
)

// UnauthorizedMessage is the body error for requests without a valid
// admin token.
const UnauthorizedMessage = "Unauthorized. Admin access required."

type contextKey string

const claimsKey contextKey = "admin-claims"

// TokenVerifier checks an admin token and can clear a stale cookie.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
	ClearCookie(w http.ResponseWriter)
}

// RequireAdmin rejects requests without a valid admin token cookie with
// 401. An invalid (not merely absent) token also has its cookie cleared.
func RequireAdmin(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				logger.WithCtx(r.Context()).Info("rejected admin token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				v.ClearCookie(w)
				writeJSONError(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromCtx returns the verified admin claims, or nil outside
// RequireAdmin.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
