// Package provider fetches player builds from the external build data API.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/pkg/logger"
)

const (
	defaultTimeout = 3 * time.Second
	maxBodyBytes   = 4 << 20
)

// Player is the public profile of a player.
type Player struct {
	UID      string `json:"uid"`
	Nickname string `json:"nickname"`
	Level    int    `json:"level"`
}

// PlayerInfo is one provider response: the player plus every showcased
// character build.
type PlayerInfo struct {
	Player     Player        `json:"player"`
	Characters []model.Build `json:"characters"`
}

// Client calls {base}/sr_info_parsed/{uid}?lang={lang}.
type Client struct {
	base   string
	http   *http.Client
	logger logger.Logger
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the showcased builds of uid with names in lang.
func (c *Client) Fetch(ctx context.Context, uid, lang string) (*PlayerInfo, error) {
	if !validUID(uid) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUID, uid)
	}

	endpoint := fmt.Sprintf("%s/sr_info_parsed/%s?lang=%s", c.base, url.PathEscape(uid), url.QueryEscape(lang))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "provider request failed", logger.String("uid", uid), logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug(ctx, "provider responded",
		logger.String("uid", uid), logger.Int("status", resp.StatusCode), logger.Duration("took", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s (status %d)", ErrNotFound, uid, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var info PlayerInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &info, nil
}

func validUID(uid string) bool {
	if uid == "" || len(uid) > 20 {
		return false
	}
	for _, r := range uid {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var locales = map[string]string{
	"id":    "id",
	"fr":    "fr",
	"de":    "de",
	"es-ES": "es",
	"ja":    "jp",
	"ko":    "kr",
	"pt-BR": "pt",
	"ru":    "ru",
	"th":    "th",
	"vi":    "vi",
	"zh-TW": "cht",
	"zh-CN": "cn",
}

// Lang maps a client locale such as "ja" or "zh-TW" to the provider's
// language code. Unknown locales fall back to English.
func Lang(locale string) string {
	if l, ok := locales[locale]; ok {
		return l
	}
	return "en"
}
