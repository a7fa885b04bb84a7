package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"aerolabel/internal/review/service"
	httputil "aerolabel/pkg/http"
	"aerolabel/pkg/logger"
	"aerolabel/pkg/model"
)

type ReviewHandler struct {
	service service.ReviewService
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log,
	}
}

func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := httputil.ExtractLimit(r)
	if err != nil {
		h.writeError(w, "Pending", err)
		return
	}

	view, err := h.service.ListPending(r.Context(), limit)
	if err != nil {
		h.writeError(w, "Pending", err)
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Pending", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) AutoApprovable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := h.service.ListAutoApprovable(r.Context())
	if err != nil {
		h.writeError(w, "AutoApprovable", err)
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "AutoApprovable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ApproveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	result, err := h.service.Approve(r.Context(), req.ResourceID, req.AutoApprove)
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) BulkApprove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BulkApproveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "BulkApprove", err)
		return
	}

	resp, err := h.service.BulkApprove(r.Context(), req.ResourceIDs)
	if err != nil {
		h.writeError(w, "BulkApprove", err)
		return
	}

	// Per-item outcomes are in the body; the batch itself succeeded.
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "BulkApprove", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RejectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	result, err := h.service.Reject(r.Context(), req.ResourceID, req.MarkInvalid)
	if err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/review/pending", h.Pending)
	router.GET("/api/v1/review/auto-approvable", h.AutoApprovable)
	router.GET("/api/v1/review/stats", h.Stats)
	router.POST("/api/v1/review/approve", h.Approve)
	router.POST("/api/v1/review/bulk-approve", h.BulkApprove)
	router.POST("/api/v1/review/reject", h.Reject)
}
