package trip

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nileways/trip-planner/internal/api"
	"github.com/nileways/trip-planner/internal/models"
)

// HandlerImpl serves the trip planning endpoints.
type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// BuildTrip handles POST /trips. The request body is the trip request; missing
// fields take server defaults, so an empty object is a valid request.
func (h *HandlerImpl) BuildTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "BuildTrip")
	defer span.End()

	l := h.logger.With(slog.String("handler", "BuildTrip"))

	var req models.UserTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid trip request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.Int("requested_days", req.Days))

	plan, err := h.service.BuildTripPlan(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Trip plan build failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Trip plan build failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to build trip plan")
		return
	}

	span.SetStatus(codes.Ok, "Trip plan built")
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// BuildSuggestions handles POST /trips/suggestions, returning the plan's sites
// flattened into suggestion cards.
func (h *HandlerImpl) BuildSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "BuildSuggestions")
	defer span.End()

	l := h.logger.With(slog.String("handler", "BuildSuggestions"))

	var req models.UserTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid trip request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.BuildTripPlan(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Trip plan build failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Trip plan build failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to build trip plan")
		return
	}

	span.SetStatus(codes.Ok, "Suggestions built")
	api.WriteJSONResponse(w, r, http.StatusOK, h.service.ConvertToSuggestions(plan))
}
