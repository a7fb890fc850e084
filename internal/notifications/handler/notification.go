package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"pressroom/internal/notifications/service"
	httputil "pressroom/pkg/http"
	"pressroom/pkg/logger"
	"pressroom/pkg/model"
)

type NotificationHandler struct {
	service service.NotificationService
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/notifications", h.Notify)
	router.POST("/api/v1/notifications/broadcast", h.Broadcast)
	router.GET("/api/v1/users/:userId/notifications", h.Inbox)
	router.POST("/api/v1/users/:userId/notifications/read-all", h.MarkAllRead)
	router.PATCH("/api/v1/notifications/:id/read", h.MarkRead)
	router.DELETE("/api/v1/notifications/:id", h.Delete)
	router.DELETE("/api/v1/notifications", h.Purge)
}

func (h *NotificationHandler) Notify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Notify", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	notification, err := h.service.Notify(r.Context(), req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Notify", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, notification); err != nil {
		h.log.Error("failed to write created response", "handler", "Notify", "operation", "WriteCreated", "error", err)
	}
}

func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Broadcast", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	notification, err := h.service.Broadcast(r.Context(), req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Broadcast", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, notification); err != nil {
		h.log.Error("failed to write created response", "handler", "Broadcast", "operation", "WriteCreated", "error", err)
	}
}

func (h *NotificationHandler) Inbox(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")
	if userID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "User ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Inbox", "operation", "WriteJSON", "error", err)
		}
		return
	}

	inbox, err := h.service.Inbox(r.Context(), userID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Inbox", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, inbox); err != nil {
		h.log.Error("failed to write success response", "handler", "Inbox", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "MarkRead", "operation", "WriteJSON", "error", err)
		}
		return
	}

	notification, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkRead", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, notification); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkRead", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")
	if userID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "User ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "MarkAllRead", "operation", "WriteJSON", "error", err)
		}
		return
	}

	marked, err := h.service.MarkAllRead(r.Context(), userID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkAllRead", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"marked": marked}); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkAllRead", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Delete", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// Purge removes notifications older than the given number of days,
// optionally scoped to one user.
func (h *NotificationHandler) Purge(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	// Omitted days falls back to the configured retention window.
	days := 0
	if raw := query.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "days must be a positive integer",
			}); writeErr != nil {
				h.log.Error("failed to write bad request response", "handler", "Purge", "operation", "WriteJSON", "error", writeErr)
			}
			return
		}
		days = parsed
	}

	purged, err := h.service.PurgeOlderThan(r.Context(), days, query.Get("user_id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Purge", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"purged": purged}); err != nil {
		h.log.Error("failed to write success response", "handler", "Purge", "operation", "WriteSuccess", "error", err)
	}
}
