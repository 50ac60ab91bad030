package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/http/response"
)

func (h *Handlers) SignUp(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SignUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		identity, err := h.identities.SignUp(r.Context(), role, &req)
		if err != nil {
			response.Err(w, err)
			return
		}

		// The created record stays server-side; the client only needs to
		// know whether approval is still outstanding.
		message := "Signup successful"
		if identity.Status == domain.StatusPending {
			message = "Signup successful! Waiting for admin approval."
		}
		response.OK(w, http.StatusCreated, map[string]string{"message": message})
	}
}

func (h *Handlers) SignIn(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SignInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		result, err := h.identities.SignIn(r.Context(), role, &req)
		if err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, result)
	}
}

func (h *Handlers) FetchProfile(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		identity, err := h.identities.FetchProfile(r.Context(), role, claims.UserID)
		if err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, identity)
	}
}

func (h *Handlers) UpdateProfile(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		claims := claimsFrom(r)
		identity, err := h.identities.UpdateProfile(r.Context(), role, claims.UserID, &req)
		if err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, identity)
	}
}

func (h *Handlers) ForgotPassword(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ForgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := h.identities.ForgotPassword(r.Context(), role, &req); err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, map[string]string{"message": "Reset link sent to your email"})
	}
}

func (h *Handlers) ResetPassword(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ResetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := h.identities.ResetPassword(r.Context(), role, &req); err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
	}
}

func (h *Handlers) Logout(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		if err := h.identities.Logout(r.Context(), role, claims.UserID); err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}
