package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/buildcard/internal/domain/model"
)

type leaderboardResponse struct {
	Key     string        `json:"key"`
	Count   int           `json:"count"`
	Entries []model.Entry `json:"entries"`
}

// handleLeaderboard handles GET /leaderboard/{id}?variant=&limit=. A missing
// limit uses the service maximum.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	variant := r.URL.Query().Get("variant")
	if err := s.validateScope(id, variant); err != nil {
		s.fail(w, r, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.fail(w, r, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = n
	}

	entries, count, err := s.deps.LeaderboardTop(r.Context(), id, variant, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Key: model.ScopedID(id, variant), Count: count, Entries: entries})
}

// handleRank handles GET /rank/{id}/{player}?variant=.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	id, variant, player := chi.URLParam(r, "id"), r.URL.Query().Get("variant"), chi.URLParam(r, "player")
	if err := s.validateScope(id, variant); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.validator.Var(player, idRule); err != nil {
		s.fail(w, r, fmt.Errorf("%w: player: %w", ErrBadRequest, err))
		return
	}

	snap, err := s.deps.PlayerStats(r.Context(), id, variant, player)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// validateScope checks the character id and variant that name a leaderboard.
func (s *Server) validateScope(id, variant string) error {
	if err := s.validator.Var(id, idRule); err != nil {
		return fmt.Errorf("%w: id: %w", ErrBadRequest, err)
	}
	if err := s.validator.Var(variant, variantRule); err != nil {
		return fmt.Errorf("%w: variant: %w", ErrBadRequest, err)
	}
	return nil
}
