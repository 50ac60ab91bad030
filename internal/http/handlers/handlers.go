// Package handlers wires HTTP transport onto the service layer: request
// decoding, auth middleware, and the uniform response envelope.
package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/http/response"
	"github.com/tripdesk/crm-backend/internal/repository"
	"github.com/tripdesk/crm-backend/internal/service"
	"github.com/tripdesk/crm-backend/pkg/auth"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

type Handlers struct {
	identities    service.IdentityService
	quotations    service.QuotationService
	taxis         service.TaxiService
	notifications service.NotificationService
	admin         service.AdminService
	rateLimits    repository.RateLimitRepository
	jwtSecret     string
}

func New(
	identities service.IdentityService,
	quotations service.QuotationService,
	taxis service.TaxiService,
	notifications service.NotificationService,
	admin service.AdminService,
	rateLimits repository.RateLimitRepository,
	jwtSecret string,
) *Handlers {
	return &Handlers{
		identities:    identities,
		quotations:    quotations,
		taxis:         taxis,
		notifications: notifications,
		admin:         admin,
		rateLimits:    rateLimits,
		jwtSecret:     jwtSecret,
	}
}

type contextKey string

const claimsKey contextKey = "claims"

// claimsFrom returns the authenticated caller's claims. Only valid behind
// RequireRole.
func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// roleIDHeader names the redundant id header each role must send alongside
// its bearer token.
func roleIDHeader(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "Adminid"
	case domain.RoleEmployee:
		return "Employeeid"
	case domain.RolePartner:
		return "Partnerid"
	}
	return ""
}

// RequireRole authenticates the bearer token, checks the caller's role, and
// cross-checks the role id header against the token's subject.
func (h *Handlers) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.ErrMessage(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := auth.Parse(token, h.jwtSecret)
			if err != nil {
				response.ErrMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if claims.Role != string(role) {
				response.ErrMessage(w, http.StatusUnauthorized, "wrong role for this endpoint")
				return
			}
			if headerID := r.Header.Get(roleIDHeader(role)); headerID != claims.UserID {
				response.ErrMessage(w, http.StatusUnauthorized, "id header does not match token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, logger.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, logger.RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit rejects callers exceeding limit requests per window, keyed by
// client IP and path. Limiter failures let requests through.
func (h *Handlers) RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := ip + ":" + r.URL.Path

			allowed, err := h.rateLimits.Allow(r.Context(), key, limit, window)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
			}
			if !allowed {
				response.ErrMessage(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
