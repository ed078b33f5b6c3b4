package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/shorturls/internal/entity"
	"github.com/vadimbarashkov/shorturls/internal/metrics"
	"github.com/vadimbarashkov/shorturls/pkg/request"
	"github.com/vadimbarashkov/shorturls/pkg/response"
)

type logUseCase interface {
	Collect(ctx context.Context, in entity.LogInput) (*entity.LogEntry, error)
	Query(ctx context.Context, filter entity.LogFilter) (int, []entity.LogEntry, error)
	Clear(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*entity.LogStats, error)
}

type logHandler struct {
	startedAt time.Time
	useCase   logUseCase
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func newLogHandler(useCase logUseCase, m *metrics.Metrics, logger *slog.Logger) *logHandler {
	return &logHandler{
		startedAt: time.Now(),
		useCase:   useCase,
		metrics:   m,
		logger:    logger,
	}
}

func (h *logHandler) collect(w http.ResponseWriter, r *http.Request) {
	var in entity.LogInput

	if err := request.DecodeJSON(r.Body, &in); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.FromDecodeError(err))
		return
	}

	entry, err := h.useCase.Collect(r.Context(), in)
	if err != nil {
		var validationErr *entity.ValidationError
		if errors.As(err, &validationErr) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(
				response.KindInvalidInput,
				"missing required fields",
				response.FieldDetails(validationErr.Fields)...,
			))
			return
		}

		h.internalError(w, r, err)
		return
	}

	h.metrics.CollectorEntriesTotal.Inc()
	h.logger.Info(entry.Message,
		slog.Int64("id", entry.ID),
		slog.String("level", entry.Level),
		slog.String("package", entry.Package),
		slog.String("stack", entry.Stack),
		slog.String("service", entry.Service),
	)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, collectResponse{
		Success: true,
		LogID:   entry.ID,
		Message: "Log received successfully",
	})
}

func (h *logHandler) query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := entity.LogFilter{
		Level:   q.Get("level"),
		Package: q.Get("package"),
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(
				response.KindInvalidInput,
				"invalid query parameter",
				response.Detail{Field: "limit", Message: "must be a positive integer"},
			))
			return
		}
		filter.Limit = limit
	}

	total, entries, err := h.useCase.Query(r.Context(), filter)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, queryResponse{
		Total:    total,
		Returned: len(entries),
		Logs:     toLogResponses(entries),
	})
}

func (h *logHandler) clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.useCase.Clear(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, clearResponse{
		Success: true,
		Message: fmt.Sprintf("Cleared %d log entries", n),
	})
}

func (h *logHandler) health(w http.ResponseWriter, r *http.Request) {
	n, err := h.useCase.Count(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, healthResponse{
		Status:    "OK",
		Uptime:    time.Since(h.startedAt).Seconds(),
		LogsCount: n,
		Timestamp: time.Now().UTC(),
	})
}

func (h *logHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.useCase.Stats(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toStatsResponse(stats))
}

func (h *logHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.InternalErrorResponse)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, response.ResourceNotFoundResponse)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, response.MethodNotAllowedResponse)
}
