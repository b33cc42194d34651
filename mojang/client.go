// mojang/client.go

// Package mojang validates Minecraft usernames against Mojang's public
// profile API.
package mojang

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/model"
	"github.com/evspresso/walter/util"
)

const DefaultBaseURL = "https://api.mojang.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *util.CacheService
}

// NewClient builds a Mojang client with the given lookup timeout. The cache
// service may be backed by Redis or disabled; either way lookups behave the
// same from the caller's side.
func NewClient(baseURL string, timeout time.Duration, cache *util.CacheService) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      cache,
	}
}

// IsValidPlayer reports whether username resolves to a real Mojang account.
// Only an explicit 200 from the profile endpoint counts as valid; a 404, any
// other status, a transport error or a timeout all report false. Failures are
// logged, never returned; a caller that needs another attempt re-runs the
// whole grant workflow. One request per call, no retries.
func (c *Client) IsValidPlayer(ctx context.Context, username string) bool {
	if cached, _ := c.cache.GetMojangProfile(ctx, username); cached != nil {
		logger.Debug("Mojang lookup served from cache", zap.String("username", username))
		return true
	}

	profile, err := c.lookupProfile(ctx, username)
	if err != nil {
		logger.Error("Error validating Minecraft user",
			zap.String("username", username),
			zap.Error(err))
		return false
	}
	if profile == nil {
		return false
	}

	if err := c.cache.SetMojangProfile(ctx, username, *profile); err != nil {
		logger.Warn("Failed to cache Mojang profile",
			zap.String("username", username),
			zap.Error(err))
	}
	return true
}

// lookupProfile returns the profile on 200, nil on any other status.
func (c *Client) lookupProfile(ctx context.Context, username string) (*model.MojangProfile, error) {
	url := fmt.Sprintf("%s/users/profiles/minecraft/%s", c.baseURL, username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("Mojang profile not found",
			zap.String("username", username),
			zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	var profile model.MojangProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
