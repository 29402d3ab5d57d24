// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/okian/buildcard/internal/adapters/http/swagger"
	service "github.com/okian/buildcard/internal/app"
	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/profile"
	"github.com/okian/buildcard/pkg/logger"
)

const defaultMaxBody = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	StatsProvider

	WeightingProfile(key string) profile.Profile
	PutWeightingProfile(ctx context.Context, key string, p profile.Profile) error
	ListWeightingProfiles(prefix string) map[string]profile.Profile

	ReconstructRoll(rarity int, kind model.AffixKind, value float64) (model.RollComposition, error)
	ClassifyItemTier(score float64) string
	ClassifyBuildTier(score float64) string

	EvaluateBuild(ctx context.Context, playerID string, build model.Build, variant string) (service.Evaluation, error)
	Card(ctx context.Context, uid string, index int, variant, lang string) (*service.Card, error)

	PlayerStats(ctx context.Context, characterID, variant, playerID string) (model.Snapshot, error)
	LeaderboardTop(ctx context.Context, characterID, variant string, limit int) ([]model.Entry, int, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps        Dependencies
	validator   *validator.Validate
	logger      logger.Logger
	origins     []string
	rootOrigins []string
	maxBody     int64
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:      deps,
		validator: validator.New(),
		logger:    logger.Nop(),
		maxBody:   defaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(CORS(s.origins, s.rootOrigins))

	r.With(Metrics("healthz")).Get("/healthz", s.handleHealth)
	r.With(Metrics("stats")).Get("/stats", s.handleStats)

	weight := r.With(Metrics("weight"))
	weight.Get("/weight/{id}", s.handleGetWeight)
	weight.Post("/weight/{id}", s.handlePutWeight)
	weight.Put("/weight/{id}", s.handlePutWeight)
	r.With(Metrics("weight_list")).Get("/weight_list/{prefix}", s.handleWeightList)

	r.With(Metrics("rolls")).Get("/rolls", s.handleRolls)
	r.With(Metrics("tier")).Get("/tier", s.handleTier)

	r.With(Metrics("score")).Post("/score/{player}", s.handleScore)
	r.With(Metrics("card")).Get("/card/{uid}", s.handleCard)

	r.With(Metrics("leaderboard")).Get("/leaderboard/{id}", s.handleLeaderboard)
	r.With(Metrics("rank")).Get("/rank/{id}/{player}", s.handleRank)

	swagger.Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type doneResponse struct {
	Done bool `json:"done"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := s.validator.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
