package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/http/response"
)

func (h *Handlers) SaveTaxi(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SaveTaxiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		claims := claimsFrom(r)
		taxi, err := h.taxis.Save(r.Context(), role, claims.UserID, &req)
		if err != nil {
			response.Err(w, err)
			return
		}

		code := http.StatusOK
		if req.ID == nil {
			code = http.StatusCreated
		}
		response.OK(w, code, taxi)
	}
}

func (h *Handlers) FetchTaxis(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var taxis []domain.Taxi
		var err error
		if role == domain.RoleAdmin {
			taxis, err = h.taxis.FetchAll(r.Context())
		} else {
			claims := claimsFrom(r)
			taxis, err = h.taxis.FetchOwn(r.Context(), role, claims.UserID)
		}
		if err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, taxis)
	}
}

func (h *Handlers) FetchTaxi(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid taxi id")
			return
		}

		claims := claimsFrom(r)
		taxi, err := h.taxis.FetchByID(r.Context(), role, claims.UserID, id)
		if err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, taxi)
	}
}

func (h *Handlers) DeleteTaxi(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid taxi id")
			return
		}

		claims := claimsFrom(r)
		if err := h.taxis.Delete(r.Context(), role, claims.UserID, id); err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, map[string]string{"message": "Taxi record deleted successfully"})
	}
}
