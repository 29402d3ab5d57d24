package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/buildcard/internal/domain/model"
)

// client wraps http.Client for the service endpoints used by a run.
type client struct {
	base string
	http *http.Client
}

func newClient(base string, timeout time.Duration) *client {
	return &client{base: base, http: &http.Client{Timeout: timeout}}
}

// submission is the outcome of one POST /score call.
type submission struct {
	Score     float64
	Persisted bool
}

type scoreBody struct {
	model.Build
	Variant string `json:"variant,omitempty"`
}

func (c *client) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func (c *client) score(ctx context.Context, player string, build model.Build, variant string) (submission, error) {
	body, err := json.Marshal(scoreBody{Build: build, Variant: variant})
	if err != nil {
		return submission{}, fmt.Errorf("marshal build: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/score/"+url.PathEscape(player), bytes.NewReader(body))
	if err != nil {
		return submission{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return submission{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return submission{}, fmt.Errorf("score %s: status %d", player, resp.StatusCode)
	}
	score, err := strconv.ParseFloat(resp.Header.Get("X-score"), 64)
	if err != nil {
		return submission{}, fmt.Errorf("score %s: X-score: %w", player, err)
	}
	return submission{Score: score, Persisted: resp.Header.Get("X-persisted") == "true"}, nil
}

func (c *client) rank(ctx context.Context, characterID, variant, player string) (model.Snapshot, error) {
	endpoint := fmt.Sprintf("%s/rank/%s/%s?variant=%s",
		c.base, url.PathEscape(characterID), url.PathEscape(player), url.QueryEscape(variant))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return model.Snapshot{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return model.Snapshot{}, fmt.Errorf("rank %s: status %d", player, resp.StatusCode)
	}
	var snap model.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("rank %s: %w", player, err)
	}
	return snap, nil
}
