package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/http/response"
)

func (h *Handlers) SaveQuotation(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SaveQuotationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		claims := claimsFrom(r)
		result, err := h.quotations.Save(r.Context(), role, claims.UserID, &req)
		if err != nil {
			response.Err(w, err)
			return
		}

		code := http.StatusOK
		if req.ID == nil {
			code = http.StatusCreated
		}
		response.OK(w, code, result)
	}
}

// FetchQuotations returns the caller's quotations; admins get the union of
// every partition.
func (h *Handlers) FetchQuotations(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var quotations []domain.Quotation
		var err error
		if role == domain.RoleAdmin {
			quotations, err = h.quotations.FetchAll(r.Context())
		} else {
			claims := claimsFrom(r)
			quotations, err = h.quotations.FetchOwn(r.Context(), role, claims.UserID)
		}
		if err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, quotations)
	}
}

func (h *Handlers) DeleteQuotation(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid quotation id")
			return
		}

		claims := claimsFrom(r)
		if err := h.quotations.Delete(r.Context(), role, claims.UserID, id); err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, map[string]string{"message": "Quotation deleted successfully"})
	}
}

// TrackPDF is the unauthenticated counter endpoint behind shared itinerary
// links.
func (h *Handlers) TrackPDF(w http.ResponseWriter, r *http.Request) {
	var req domain.TrackPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pdfURL, err := h.quotations.TrackPDF(r.Context(), &req)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, map[string]string{"pdfUrl": pdfURL})
}
