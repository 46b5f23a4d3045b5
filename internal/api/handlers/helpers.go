package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/platform/obs"
	"market-dash-service/internal/services"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type actorKey struct{}

// WithActor stores the authenticated actor for handlers.
func WithActor(ctx context.Context, a services.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func actorFrom(ctx context.Context) (services.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(services.Actor)
	return a, ok
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors to HTTP statuses. Anything unknown is
// logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, r, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, domain.ErrInvalidTransition.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, r, http.StatusConflict, domain.ErrInsufficientStock.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, r, http.StatusConflict, domain.ErrConflict.Error())
	default:
		zap.L().Error("request failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields. It writes the 400 response itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// requireActor fetches the actor set by the auth middleware.
func requireActor(w http.ResponseWriter, r *http.Request) (services.Actor, bool) {
	a, ok := actorFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing profile")
	}
	return a, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

// queryIDs collects repeated or comma separated ids. No parameter gives nil.
func queryIDs(r *http.Request, name string) ([]int64, error) {
	values := r.URL.Query()[name]
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]int64, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, &domain.ValidationError{Field: name, Message: "must be a list of positive integers"}
			}
			out = append(out, id)
		}
	}
	return out, nil
}

// queryTime accepts RFC 3339 timestamps or YYYY-MM-DD dates (UTC midnight).
func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, &domain.ValidationError{Field: name, Message: "must be RFC 3339 or YYYY-MM-DD"}
}
