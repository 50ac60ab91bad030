package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tripdesk/crm-backend/internal/http/response"
)

func (h *Handlers) FetchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.FetchAllUsers(r.Context())
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, users)
}

type updateStatusRequest struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

func (h *Handlers) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.admin.UpdateUserStatus(r.Context(), req.UserID, req.Status)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, updated)
}
