package images

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	httputil "aerolabel/pkg/http"
	"aerolabel/pkg/logger"
	"aerolabel/pkg/model"
)

type ImageHandler struct {
	catalog *Catalog
	log     *logger.Logger
}

func NewImageHandler(catalog *Catalog, log *logger.Logger) *ImageHandler {
	return &ImageHandler{
		catalog: catalog,
		log:     log,
	}
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := h.catalog.List(r.Context(), r.URL.Query().Get("holder_id"))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, list); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ImageHandler) Skip(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SkipRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Skip", err)
		return
	}

	result, err := h.catalog.Skip(r.Context(), req.ResourceID)
	if err != nil {
		h.writeError(w, "Skip", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Skip", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ImageHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ImageHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/images", h.List)
	router.POST("/api/v1/images/skip", h.Skip)
}
