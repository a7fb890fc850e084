package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"pressroom/internal/presence/service"
	httputil "pressroom/pkg/http"
	"pressroom/pkg/logger"
	"pressroom/pkg/model"
)

type SessionHandler struct {
	service service.SessionService
	log     *logger.Logger
}

func NewSessionHandler(service service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log,
	}
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sessions/heartbeat", h.Heartbeat)
	router.GET("/api/v1/sessions", h.ListActive)
	router.GET("/api/v1/sessions/:userId", h.GetByUserID)
	router.DELETE("/api/v1/sessions/:userId", h.Disconnect)
}

func (h *SessionHandler) Heartbeat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var hb model.Heartbeat
	if err := json.NewDecoder(r.Body).Decode(&hb); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Heartbeat", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	session, err := h.service.Heartbeat(r.Context(), hb)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Heartbeat", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "Heartbeat", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) ListActive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var sessions []*model.Session
	var err error
	if r.URL.Query().Get("all") == "true" {
		sessions, err = h.service.ListAll(r.Context())
	} else {
		sessions, err = h.service.ListActive(r.Context())
	}
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListActive", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sessions); err != nil {
		h.log.Error("failed to write success response", "handler", "ListActive", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) GetByUserID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")
	if userID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "User ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "GetByUserID", "operation", "WriteJSON", "error", err)
		}
		return
	}

	session, err := h.service.GetByUserID(r.Context(), userID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByUserID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByUserID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) Disconnect(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")
	if userID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "User ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Disconnect", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if err := h.service.Disconnect(r.Context(), userID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Disconnect", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}
