package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/buildcard/internal/domain/model"
)

type rollsResponse struct {
	Rarity int                   `json:"rarity"`
	Kind   model.AffixKind       `json:"kind"`
	Value  float64               `json:"value"`
	Rolls  model.RollComposition `json:"rolls"`
	Total  int                   `json:"total"`
}

type tierResponse struct {
	Score float64 `json:"score"`
	Scope string  `json:"scope"`
	Tier  string  `json:"tier"`
}

// handleRolls handles GET /rolls?rarity=&kind=&value=.
func (s *Server) handleRolls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rarity, err := strconv.Atoi(q.Get("rarity"))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: rarity: %w", ErrBadRequest, err))
		return
	}
	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: value: %w", ErrBadRequest, err))
		return
	}
	kind := model.AffixKind(q.Get("kind"))

	comp, err := s.deps.ReconstructRoll(rarity, kind, value)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rollsResponse{Rarity: rarity, Kind: kind, Value: value, Rolls: comp, Total: comp.Total()})
}

// handleTier handles GET /tier?score=&scope=item|build.
func (s *Server) handleTier(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	score, err := strconv.ParseFloat(q.Get("score"), 64)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: score: %w", ErrBadRequest, err))
		return
	}

	resp := tierResponse{Score: score, Scope: q.Get("scope")}
	switch resp.Scope {
	case "", "item":
		resp.Scope = "item"
		resp.Tier = s.deps.ClassifyItemTier(score)
	case "build":
		resp.Tier = s.deps.ClassifyBuildTier(score)
	default:
		s.fail(w, r, fmt.Errorf("%w: unknown scope %q", ErrBadRequest, resp.Scope))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
