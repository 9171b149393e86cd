// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/rs/cors"

	"repo-tracker/internal/aggregator"
	custom_errors "repo-tracker/internal/errors"
	"repo-tracker/internal/store"
	"repo-tracker/internal/summary"
	"repo-tracker/internal/window"
)

// ActivityAggregator fetches and window-filters repository activity.
type ActivityAggregator interface {
	Aggregate(ctx context.Context, repo string, w window.Window) (*aggregator.Activity, error)
}

// SummaryStreamer generates a streamed summary of aggregated activity.
type SummaryStreamer interface {
	Stream(ctx context.Context, req summary.Request, emit func(chunk string) error) error
}

// Handler is the container for API dependencies.
type Handler struct {
	store      store.SubscriptionStore
	aggregator ActivityAggregator
	generator  SummaryStreamer
	logger     *slog.Logger
}

// RouterConfig carries the router's own settings.
type RouterConfig struct {
	SessionSecret      string
	CORSAllowedOrigins []string
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(subs store.SubscriptionStore, agg ActivityAggregator, gen SummaryStreamer, cfg RouterConfig, logger *slog.Logger) http.Handler {
	h := &Handler{
		store:      subs,
		aggregator: agg,
		generator:  gen,
		logger:     logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/api", func(r chi.Router) {
		// The summary endpoint streams and must not sit behind the
		// timeout middleware.
		r.Post("/ai-summary", h.generateSummary)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(SessionAuth(cfg.SessionSecret, logger))
			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", h.listSubscriptions)
				r.Post("/", h.createSubscription)
				r.Put("/", h.updateSubscription)
				r.Delete("/", h.deleteSubscription)
				r.Get("/{id}", h.getSubscriptionActivity)
			})
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listSubscriptions returns all subscriptions owned by the caller.
// GET /api/subscriptions
func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListByUser(r.Context(), UserID(r.Context()))
	if err != nil {
		h.logger.Error("Failed to list subscriptions", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch subscriptions")
		return
	}
	respondWithJSON(w, http.StatusOK, subs)
}

// createSubscription subscribes the caller to a repository.
// POST /api/subscriptions  body {repo, plan?}
func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Repo string `json:"repo"`
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.store.Create(r.Context(), UserID(r.Context()), body.Repo, body.Plan)
	if err != nil {
		var formatErr *custom_errors.ErrInvalidRepoFormat
		if errors.As(err, &formatErr) {
			respondWithError(w, http.StatusBadRequest, formatErr.Error())
			return
		}
		h.logger.Error("Failed to create subscription", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// updateSubscription applies a partial update to a subscription.
// PUT /api/subscriptions  body {id, ...fields}
func (h *Handler) updateSubscription(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
		store.UpdateFields
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.store.Update(r.Context(), body.ID, body.UpdateFields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		var formatErr *custom_errors.ErrInvalidRepoFormat
		if errors.As(err, &formatErr) {
			respondWithError(w, http.StatusBadRequest, formatErr.Error())
			return
		}
		h.logger.Error("Failed to update subscription", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update subscription")
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// deleteSubscription removes a subscription.
// DELETE /api/subscriptions  body {id}
func (h *Handler) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.Delete(r.Context(), body.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.logger.Error("Failed to delete subscription", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete subscription")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Subscription deleted"})
}

// getSubscriptionActivity resolves a subscription and returns the
// repository's activity trimmed to the requested window.
// GET /api/subscriptions/{id}?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
// (or the legacy ?date=YYYY-MM-DD single-day form)
func (h *Handler) getSubscriptionActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.logger.Error("Failed to get subscription", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	q := r.URL.Query()
	win, err := window.Parse(q.Get("startDate"), q.Get("endDate"), q.Get("date"), time.Now())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	activity, err := h.aggregator.Aggregate(r.Context(), sub.Repo, win)
	if err != nil {
		h.logger.Error("Failed to fetch subscription updates", "subscription_id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch subscription updates")
		return
	}

	respondWithJSON(w, http.StatusOK, activity)
}

// generateSummary streams an AI-written report of the posted activity.
// POST /api/ai-summary
func (h *Handler) generateSummary(w http.ResponseWriter, r *http.Request) {
	var req summary.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	started := false
	err := h.generator.Stream(r.Context(), req, func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if !started {
			h.logger.Error("Failed to generate summary", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to generate summary")
			return
		}
		// Bytes are already on the wire; all we can do is cut the
		// stream short.
		h.logger.Error("Summary stream aborted mid-response", "error", err)
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
