package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/buildcard/internal/adapters/provider"
	service "github.com/okian/buildcard/internal/app"
	"github.com/okian/buildcard/internal/domain/model"
)

// Leaderboard position headers set on scored responses.
const (
	headerScore       = "X-score"
	headerTopScore    = "X-top-score"
	headerBeforeScore = "X-before-score"
	headerMedian      = "X-median"
	headerMean        = "X-mean"
	headerRank        = "X-rank"
	headerDataCount   = "X-data-count"
	headerPersisted   = "X-persisted"
)

// scoreRequest is a build plus the weighting variant to score it with.
type scoreRequest struct {
	model.Build
	Variant string `json:"variant"`
}

// handleScore handles POST /score/{player}.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	if err := s.validator.Var(player, idRule); err != nil {
		s.fail(w, r, fmt.Errorf("%w: player: %w", ErrBadRequest, err))
		return
	}
	var req scoreRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.validator.Var(req.CharacterID, idRule); err != nil {
		s.fail(w, r, fmt.Errorf("%w: id: %w", ErrBadRequest, err))
		return
	}
	if err := s.validator.Var(req.Variant, variantRule); err != nil {
		s.fail(w, r, fmt.Errorf("%w: variant: %w", ErrBadRequest, err))
		return
	}

	ev, err := s.deps.EvaluateBuild(r.Context(), player, req.Build, req.Variant)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setScoreHeaders(w, ev)
	writeJSON(w, http.StatusOK, ev)
}

// handleCard handles GET /card/{uid}?select_number=&calculation_value=&lang=.
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	index := 0
	if v := q.Get("select_number"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: select_number: %w", ErrBadRequest, err))
			return
		}
		index = n
	}
	variant := q.Get("calculation_value")
	if variant == "" {
		variant = model.VariantDefault
	}
	if err := s.validator.Var(variant, idRule); err != nil {
		s.fail(w, r, fmt.Errorf("%w: calculation_value: %w", ErrBadRequest, err))
		return
	}

	uid := chi.URLParam(r, "uid")
	if err := s.validator.Var(uid, uidRule); err != nil {
		s.fail(w, r, fmt.Errorf("%w: uid: %w", provider.ErrInvalidUID, err))
		return
	}

	card, err := s.deps.Card(r.Context(), uid, index, variant, provider.Lang(q.Get("lang")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setScoreHeaders(w, card.Evaluation)
	writeJSON(w, http.StatusOK, card)
}

func setScoreHeaders(w http.ResponseWriter, ev service.Evaluation) {
	h := w.Header()
	h.Set(headerPersisted, strconv.FormatBool(ev.Persisted || !ev.Scored))
	if ev.Snapshot == nil {
		return
	}
	snap := ev.Snapshot
	h.Set(headerScore, oneDecimal(snap.Score))
	h.Set(headerTopScore, oneDecimal(snap.TopScore))
	h.Set(headerBeforeScore, oneDecimal(snap.PreviousBest))
	h.Set(headerMedian, oneDecimal(snap.Median))
	h.Set(headerMean, oneDecimal(snap.Mean))
	h.Set(headerRank, strconv.Itoa(snap.Rank))
	h.Set(headerDataCount, strconv.Itoa(snap.Count))
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}
