package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"aerolabel/internal/locks/service"
	httputil "aerolabel/pkg/http"
	"aerolabel/pkg/logger"
	"aerolabel/pkg/model"
)

type LockHandler struct {
	service service.LockService
	log     *logger.Logger
}

func NewLockHandler(service service.LockService, log *logger.Logger) *LockHandler {
	return &LockHandler{
		service: service,
		log:     log,
	}
}

func (h *LockHandler) Acquire(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Acquire", err)
		return
	}

	lease, err := h.service.Acquire(r.Context(), req.ResourceID, req.HolderID)
	if err != nil {
		h.writeError(w, "Acquire", err)
		return
	}

	if err := httputil.WriteSuccess(w, lease); err != nil {
		h.log.Error("failed to write success response", "handler", "Acquire", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LockHandler) Heartbeat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Heartbeat", err)
		return
	}

	lease, err := h.service.Heartbeat(r.Context(), req.ResourceID, req.HolderID)
	if err != nil {
		h.writeError(w, "Heartbeat", err)
		return
	}

	if err := httputil.WriteSuccess(w, lease); err != nil {
		h.log.Error("failed to write success response", "handler", "Heartbeat", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LockHandler) Release(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Release", err)
		return
	}

	result, err := h.service.Release(r.Context(), req.ResourceID, req.HolderID)
	if err != nil {
		h.writeError(w, "Release", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Release", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LockHandler) ReleaseAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReleaseAllRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ReleaseAll", err)
		return
	}

	result, err := h.service.ReleaseAll(r.Context(), req.HolderID)
	if err != nil {
		h.writeError(w, "ReleaseAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "ReleaseAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LockHandler) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	status, err := h.service.Status(r.Context(), ps.ByName("resource_id"))
	if err != nil {
		h.writeError(w, "Status", err)
		return
	}

	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "Status", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LockHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *LockHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/locks/acquire", h.Acquire)
	router.POST("/api/v1/locks/heartbeat", h.Heartbeat)
	router.POST("/api/v1/locks/release", h.Release)
	router.POST("/api/v1/locks/release-all", h.ReleaseAll)
	router.GET("/api/v1/locks/status/:resource_id", h.Status)
}
