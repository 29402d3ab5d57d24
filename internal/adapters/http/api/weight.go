package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/buildcard/internal/domain/profile"
)

// handleGetWeight handles GET /weight/{id}. Unknown ids yield an empty
// profile.
func (s *Server) handleGetWeight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.WeightingProfile(chi.URLParam(r, "id")))
}

// handlePutWeight handles POST and PUT /weight/{id}.
func (s *Server) handlePutWeight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.validator.Var(id, idRule); err != nil {
		s.fail(w, r, fmt.Errorf("%w: id: %w", ErrBadRequest, err))
		return
	}
	var p profile.Profile
	if err := s.decode(w, r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.PutWeightingProfile(r.Context(), id, p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doneResponse{Done: true})
}

// handleWeightList handles GET /weight_list/{prefix}.
func (s *Server) handleWeightList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.ListWeightingProfiles(chi.URLParam(r, "prefix")))
}
