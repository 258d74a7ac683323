package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/repository"
)

const (
	defaultAttemptsLimit = 50
	maxAttemptsLimit     = 500
)

// statusHandler returns server status with pipeline counters
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to get stats: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, rest.JSON{
		"status":  "ok",
		"version": s.version,
		"time":    s.now().UTC(),
		"stats":   stats,
	})
}

// stats collects pipeline counters
func (s *Server) stats(ctx context.Context) (Stats, error) {
	var res Stats
	var err error

	if res.Items, err = s.db.CountItems(ctx); err != nil {
		return Stats{}, fmt.Errorf("count items: %w", err)
	}
	if res.Subscriptions, res.ActiveSubscriptions, err = s.db.CountSubscriptions(ctx); err != nil {
		return Stats{}, fmt.Errorf("count subscriptions: %w", err)
	}
	if res.Attempts, err = s.db.CountByStatus(ctx); err != nil {
		return Stats{}, fmt.Errorf("count attempts: %w", err)
	}
	if res.LastIngest, err = s.db.GetSetting(ctx, repository.SettingLastIngest); err != nil {
		return Stats{}, fmt.Errorf("get last ingest: %w", err)
	}
	if res.LastRescore, err = s.db.GetSetting(ctx, repository.SettingLastRescore); err != nil {
		return Stats{}, fmt.Errorf("get last rescore: %w", err)
	}
	return res, nil
}

// ingestItemHandler accepts a single item from an external producer and matches it right away
func (s *Server) ingestItemHandler(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid item: %w", err), http.StatusBadRequest)
		return
	}

	item := req.toDomain()
	created, n, err := s.scheduler.IngestItem(r.Context(), item)
	if err != nil {
		renderError(w, r, err, errorCode(err))
		return
	}
	code := http.StatusCreated
	if !created {
		code = http.StatusOK
	}
	renderJSON(w, r, code, rest.JSON{"id": item.ID, "created": created, "attempts": n})
}

// getAttemptHandler returns a delivery attempt by id
func (s *Server) getAttemptHandler(w http.ResponseWriter, r *http.Request) {
	a, err := s.db.GetAttempt(r.Context(), r.PathValue("id"))
	if err != nil {
		renderError(w, r, err, errorCode(err))
		return
	}
	renderJSON(w, r, http.StatusOK, newAttemptView(a))
}

// interactionHandler records read, click or feedback for a delivered message
func (s *Server) interactionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := domain.InteractionKind(r.PathValue("kind"))

	var data string
	if kind == domain.InteractionFeedback {
		var req struct {
			Tag string `json:"tag"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderError(w, r, fmt.Errorf("invalid feedback: %w", err), http.StatusBadRequest)
			return
		}
		data = req.Tag
	}

	a, err := s.db.GetAttempt(ctx, r.PathValue("id"))
	if err != nil {
		renderError(w, r, err, errorCode(err))
		return
	}
	if err := a.UpdateInteraction(kind, data, s.now()); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.db.SaveInteraction(ctx, a); err != nil {
		lgr.Printf("[ERROR] failed to save %s interaction for attempt %s: %v", kind, a.ID, err)
		renderError(w, r, err, errorCode(err))
		return
	}
	renderJSON(w, r, http.StatusOK, newAttemptView(a))
}

// saveSubscriptionHandler creates a subscription, or updates its rules when id is set
func (s *Server) saveSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid subscription: %w", err), http.StatusBadRequest)
		return
	}
	sub, err := req.toDomain()
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	code := http.StatusCreated
	if sub.ID != 0 {
		code = http.StatusOK
	}
	if err := s.db.SaveSubscription(r.Context(), sub); err != nil {
		renderError(w, r, err, errorCode(err))
		return
	}
	lgr.Printf("[INFO] subscription %d %q saved for %s", sub.ID, sub.Name, sub.OwnerID)
	if code == http.StatusOK {
		// update keeps stored statistics and creation time, render them instead of request zeros
		if sub, err = s.db.GetSubscription(r.Context(), sub.ID); err != nil {
			renderError(w, r, err, errorCode(err))
			return
		}
	}
	renderJSON(w, r, code, newSubscriptionView(sub))
}

// getSubscriptionHandler returns a subscription with its statistics
func (s *Server) getSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid subscription ID"), http.StatusBadRequest)
		return
	}
	sub, err := s.db.GetSubscription(r.Context(), id)
	if err != nil {
		renderError(w, r, err, errorCode(err))
		return
	}
	renderJSON(w, r, http.StatusOK, newSubscriptionView(sub))
}

// subscriptionAttemptsHandler lists recent attempts of a subscription
func (s *Server) subscriptionAttemptsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid subscription ID"), http.StatusBadRequest)
		return
	}
	limit := defaultAttemptsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxAttemptsLimit)
		}
	}

	attempts, err := s.db.SubscriptionAttempts(r.Context(), id, limit)
	if err != nil {
		renderError(w, r, err, errorCode(err))
		return
	}
	res := make([]attemptView, len(attempts))
	for i, a := range attempts {
		res[i] = newAttemptView(a)
	}
	renderJSON(w, r, http.StatusOK, res)
}

// deactivateHandler turns a subscription off and cancels its undelivered attempts
func (s *Server) deactivateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid subscription ID"), http.StatusBadRequest)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
			return
		}
	}

	cancelled, err := s.scheduler.DeactivateSubscription(r.Context(), id, req.Reason)
	if err != nil {
		renderError(w, r, err, errorCode(err))
		return
	}
	renderJSON(w, r, http.StatusOK, rest.JSON{"id": id, "active": false, "cancelled": cancelled})
}

// errorCode maps storage and domain errors to http status
func errorCode(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrStateConflict):
		return http.StatusConflict
	case domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, rest.JSON{"error": errMsg})
}

// durationMs converts a duration to milliseconds for responses
func durationMs(d time.Duration) int64 {
	return d.Milliseconds()
}
