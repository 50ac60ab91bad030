package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/http/response"
)

func (h *Handlers) FetchNotifications(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		notifications, err := h.notifications.FetchUnread(r.Context(), role, claims.UserID)
		if err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, notifications)
	}
}

func (h *Handlers) MarkNotificationRead(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.MarkReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		n, err := h.notifications.MarkRead(r.Context(), role, req.ID)
		if err != nil {
			response.Err(w, err)
			return
		}
		response.OK(w, http.StatusOK, n)
	}
}

// BroadcastNotification fans out a custom admin notification to the listed
// users.
func (h *Handlers) BroadcastNotification(w http.ResponseWriter, r *http.Request) {
	var req domain.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	delivered, err := h.notifications.Broadcast(r.Context(), &req)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, map[string]int{"delivered": delivered})
}
