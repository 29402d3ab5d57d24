package api

import (
	"errors"
	"net/http"

	"github.com/okian/buildcard/internal/adapters/provider"
	service "github.com/okian/buildcard/internal/app"
	"github.com/okian/buildcard/internal/domain/leaderboard"
	"github.com/okian/buildcard/internal/domain/profile"
	"github.com/okian/buildcard/internal/domain/rolls"
	"github.com/okian/buildcard/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// idRule constrains path identifiers that become storage keys.
const idRule = `required,printascii,max=64,excludesall=/\.`

// variantRule is idRule for the optional weighting variant.
const variantRule = `omitempty,printascii,max=64,excludesall=/\.`

const uidRule = "required,numeric,max=20"

// status maps a service error to an HTTP status and error code.
func status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, rolls.ErrMalformedInput),
		errors.Is(err, provider.ErrInvalidUID),
		errors.Is(err, service.ErrCharacterIndex),
		errors.Is(err, leaderboard.ErrInvalidPlayer),
		errors.Is(err, leaderboard.ErrInvalidScore),
		errors.Is(err, leaderboard.ErrInvalidLimit),
		errors.Is(err, profile.ErrEmptyKey):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, provider.ErrNotFound),
		errors.Is(err, leaderboard.ErrPlayerNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, provider.ErrUnavailable),
		errors.Is(err, provider.ErrDecode):
		return http.StatusBadGateway, "provider_error"
	case errors.Is(err, service.ErrNoProvider):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := status(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", r.Header.Get(HeaderRequestID)),
			logger.Error(err),
		)
	}
	writeError(w, code, kind, err)
}
