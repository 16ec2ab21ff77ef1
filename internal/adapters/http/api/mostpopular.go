package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	service "github.com/okian/mostpopular/internal/app"
	"github.com/okian/mostpopular/internal/provider"
)

const dateLayout = "2006-01-02"

// MostPopularHandler handles most-popular requests.
type MostPopularHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewMostPopularHandler creates a new most-popular handler.
func NewMostPopularHandler(deps Dependencies, maxLimit int) *MostPopularHandler {
	return &MostPopularHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetMostPopular handles
// GET /most-popular?limit=&offset=&sort=asc|desc&start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *MostPopularHandler) HandleGetMostPopular(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_most_popular"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	req, err := parseRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	if req.Limit != nil && *req.Limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded",
			Wrap(op, fmt.Errorf("%w: limit %d is above %d", ErrLimitExceeded, *req.Limit, h.maxLimit)))
		return
	}

	results, err := h.deps.MostPopular(r.Context(), req)
	if err != nil {
		status, code := failureStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func parseRequest(q url.Values) (service.Request, error) {
	var req service.Request

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return req, fmt.Errorf("%w: invalid limit %q", ErrBadRequest, s)
		}
		req.Limit = &n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return req, fmt.Errorf("%w: invalid offset %q", ErrBadRequest, s)
		}
		req.Offset = &n
	}
	if s := q.Get("sort"); s != "" {
		d, err := provider.ParseSortDirection(s)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		req.Sort = &d
	}

	var err error
	if req.Start, err = parseDate(q.Get("start")); err != nil {
		return req, err
	}
	if req.End, err = parseDate(q.Get("end")); err != nil {
		return req, err
	}
	return req, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrBadRequest, s)
	}
	return t, nil
}

// failureStatus maps provider failures to HTTP status and error code.
func failureStatus(err error) (int, string) {
	switch {
	case errors.Is(err, provider.ErrBadConfiguration):
		return http.StatusBadRequest, "bad_configuration"
	case errors.Is(err, provider.ErrNotFound):
		return http.StatusServiceUnavailable, "not_found"
	case errors.Is(err, provider.ErrRemote):
		return http.StatusBadGateway, "remote_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
