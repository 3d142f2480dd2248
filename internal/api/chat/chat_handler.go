package chat

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nileways/trip-planner/internal/api"
)

// ExtractRequest is the POST body for the extraction endpoint.
type ExtractRequest struct {
	Messages []Message `json:"messages"`
}

// HandlerImpl serves the conversational trip intake endpoint.
type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// Extract handles POST /chat/extract. It runs the conversation through the
// model and returns the assistant reply plus whatever trip fields are known.
func (h *HandlerImpl) Extract(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "Extract")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Extract"))

	var req ExtractRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid chat request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Messages) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "messages must not be empty")
		return
	}
	span.SetAttributes(attribute.Int("messages", len(req.Messages)))

	extraction, err := h.service.ExtractTripRequest(ctx, req.Messages)
	if err != nil {
		l.ErrorContext(ctx, "Trip request extraction failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Extraction failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to process conversation")
		return
	}

	span.SetStatus(codes.Ok, "Extracted")
	api.WriteJSONResponse(w, r, http.StatusOK, extraction)
}
