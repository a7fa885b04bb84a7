package ingest

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"aerolabel/internal/review/validator"
	apperrors "aerolabel/pkg/errors"
	httputil "aerolabel/pkg/http"
	"aerolabel/pkg/model"
)

type IngestHandler struct {
	ingestor *Ingestor
}

func NewIngestHandler(ingestor *Ingestor) *IngestHandler {
	return &IngestHandler{ingestor: ingestor}
}

func (h *IngestHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var pred model.AIPrediction
	if err := httputil.DecodeJSON(r, &pred); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), &pred)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			err = apperrors.New(apperrors.CodeValidation, "Prediction validation failed", http.StatusBadRequest).
				WithDetails(map[string]any{"errors": []validator.ValidationError(verrs)})
		} else {
			h.ingestor.log.Error("Failed to ingest prediction", "resource_id", pred.ResourceID, "error", err)
			err = apperrors.Internal("Failed to ingest prediction", err)
		}
		h.writeError(w, err)
		return
	}

	write := httputil.WriteSuccess
	if result.Outcome == model.IngestQueued {
		write = httputil.WriteCreated
	}
	if err := write(w, result); err != nil {
		h.ingestor.log.Error("failed to write success response", "handler", "Submit", "operation", "WriteSuccess", "error", err)
	}
}

func (h *IngestHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.ingestor.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
	}
}

func (h *IngestHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/predictions", h.Submit)
}
