package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/knjiznica/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps a store error to a response. Not-found and conflict
// errors carry their own message; anything else is logged and hidden
// behind fallback.
func storeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var nf *store.NotFoundError
	var ce *store.ConflictError

	switch {
	case errors.As(err, &nf):
		jsonError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &ce):
		slog.Info("request rejected", "path", r.URL.Path, "reason", ce.Reason, "request_id", RequestID(r.Context()))
		jsonError(w, http.StatusConflict, ce.Reason)
	default:
		slog.Error(fallback, "error", err, "request_id", RequestID(r.Context()))
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}

// pathID parses the {name} path value as a positive id.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryBool parses a boolean query parameter. A missing parameter is false.
func queryBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

// queryPage reads the skip and limit query parameters. Without them a list
// returns its first store.DefaultPageLimit rows.
func queryPage(r *http.Request) (store.Page, error) {
	page := store.DefaultPage
	params := []struct {
		name string
		dst  *int
	}{
		{"skip", &page.Skip},
		{"limit", &page.Limit},
	}
	for _, p := range params {
		v := r.URL.Query().Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, fmt.Errorf("invalid %s", p.name)
		}
		*p.dst = n
	}
	return page, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
