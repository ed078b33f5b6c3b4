package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/shorturls/internal/entity"
	"github.com/vadimbarashkov/shorturls/internal/metrics"
	"github.com/vadimbarashkov/shorturls/pkg/request"
	"github.com/vadimbarashkov/shorturls/pkg/response"
)

// Packages reported with domain events.
const (
	pkgURLCreation = "url-creation"
	pkgURLRedirect = "url-redirect"
	pkgAnalytics   = "analytics"
	pkgValidation  = "validation"
)

type urlUseCase interface {
	ShortenURL(ctx context.Context, in entity.ShortenInput) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string, visit entity.Visit) (*entity.URL, error)
	GetURLStats(ctx context.Context, shortCode string) (*entity.URLReport, error)
	ListURLs(ctx context.Context) ([]entity.URLSummary, error)
}

type urlHandler struct {
	baseURL string
	useCase urlUseCase
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newURLHandler(baseURL string, useCase urlUseCase, m *metrics.Metrics, logger *slog.Logger) *urlHandler {
	return &urlHandler{
		baseURL: baseURL,
		useCase: useCase,
		metrics: m,
		logger:  logger,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, healthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
	})
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	const stack = "POST /shorturls"

	var req shortenRequest

	if err := request.DecodeJSON(r.Body, &req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("stack", stack),
			slog.String("package", pkgValidation),
			slog.Any("err", err),
		)

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.FromDecodeError(err))
		return
	}

	in, details := req.toInput()
	if len(details) > 0 {
		h.logger.Warn("validation failed",
			slog.String("stack", stack),
			slog.String("package", pkgValidation),
			slog.Int("fields", len(details)),
		)

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.KindInvalidInput, "invalid request", details...))
		return
	}

	h.logger.Info("creating short url",
		slog.String("stack", stack),
		slog.String("package", pkgURLCreation),
		slog.String("url", req.URL),
	)

	url, err := h.useCase.ShortenURL(r.Context(), in)
	if err != nil {
		var validationErr *entity.ValidationError

		switch {
		case errors.As(err, &validationErr):
			h.logger.Warn("validation failed",
				slog.String("stack", stack),
				slog.String("package", pkgValidation),
				slog.String("err", validationErr.Error()),
			)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(
				response.KindInvalidInput,
				"invalid request",
				response.FieldDetails(validationErr.Fields)...,
			))
		case errors.Is(err, entity.ErrShortCodeExists):
			var shortCode string
			if in.ShortCode != nil {
				shortCode = *in.ShortCode
			}

			h.logger.Warn("shortcode collision detected",
				slog.String("stack", stack),
				slog.String("package", pkgURLCreation),
				slog.String("shortcode", shortCode),
			)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(
				response.KindShortCodeCollision,
				"the provided shortcode is already in use",
			))
		default:
			h.internalError(w, r, stack, pkgURLCreation, err)
		}
		return
	}

	h.metrics.URLsCreatedTotal.Inc()
	h.logger.Info("short url created",
		slog.String("stack", stack),
		slog.String("package", pkgURLCreation),
		slog.String("shortcode", url.ShortCode),
		slog.String("url", url.OriginalURL),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toShortenResponse(h.baseURL, url))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	const stack = "GET /shorturls/{shortcode}"

	shortCode := chi.URLParam(r, "shortcode")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode, visitFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrURLNotFound):
			h.metrics.RecordRedirect(metrics.OutcomeNotFound)
			h.logger.Warn("shortcode not found",
				slog.String("stack", stack),
				slog.String("package", pkgURLRedirect),
				slog.String("shortcode", shortCode),
			)

			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error(response.KindNotFound, "short url not found"))
		case errors.Is(err, entity.ErrURLExpired):
			h.metrics.RecordRedirect(metrics.OutcomeExpired)
			h.logger.Warn("short url expired",
				slog.String("stack", stack),
				slog.String("package", pkgURLRedirect),
				slog.String("shortcode", shortCode),
			)

			render.Status(r, http.StatusGone)
			render.JSON(w, r, response.Error(response.KindExpired, "short url has expired"))
		default:
			h.metrics.RecordRedirect(metrics.OutcomeFailed)
			h.internalError(w, r, stack, pkgURLRedirect, err)
		}
		return
	}

	h.metrics.RecordRedirect(metrics.OutcomeRedirected)
	h.metrics.ClicksRecordedTotal.Inc()
	h.logger.Info("redirecting",
		slog.String("stack", stack),
		slog.String("package", pkgURLRedirect),
		slog.String("shortcode", shortCode),
		slog.String("url", url.OriginalURL),
	)

	http.Redirect(w, r, url.OriginalURL, http.StatusFound)
}

func (h *urlHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	const stack = "GET /shorturls/{shortcode}/stats"

	shortCode := chi.URLParam(r, "shortcode")

	report, err := h.useCase.GetURLStats(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			h.logger.Warn("shortcode not found for stats",
				slog.String("stack", stack),
				slog.String("package", pkgAnalytics),
				slog.String("shortcode", shortCode),
			)

			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error(response.KindNotFound, "short url not found"))
			return
		}

		h.internalError(w, r, stack, pkgAnalytics, err)
		return
	}

	h.logger.Info("statistics retrieved",
		slog.String("stack", stack),
		slog.String("package", pkgAnalytics),
		slog.String("shortcode", shortCode),
		slog.Int64("total_clicks", report.Stats.TotalClicks),
	)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLStatsResponse(report))
}

func (h *urlHandler) listURLs(w http.ResponseWriter, r *http.Request) {
	const stack = "GET /api/urls"

	summaries, err := h.useCase.ListURLs(r.Context())
	if err != nil {
		h.internalError(w, r, stack, pkgAnalytics, err)
		return
	}

	h.logger.Info("all urls statistics requested",
		slog.String("stack", stack),
		slog.String("package", pkgAnalytics),
		slog.Int("count", len(summaries)),
	)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLSummaryResponses(summaries))
}

func (h *urlHandler) internalError(w http.ResponseWriter, r *http.Request, stack, pkg string, err error) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
	h.logger.Error("unexpected error",
		slog.String("stack", stack),
		slog.String("package", pkg),
		slog.Any("err", err),
	)

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.InternalErrorResponse)
}

func visitFromRequest(r *http.Request) entity.Visit {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	return entity.Visit{
		Referrer:   r.Referer(),
		UserAgent:  r.UserAgent(),
		ClientAddr: addr,
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, response.ResourceNotFoundResponse)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, response.MethodNotAllowedResponse)
}
