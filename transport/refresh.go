package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hrsphere/go-client/storage"
)

const refreshPath = "/auth/refresh"

// ErrNoRefreshToken is returned when a 401 cannot be recovered because no
// refresh token is stored.
var ErrNoRefreshToken = errors.New("no refresh token available")

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// refreshExchange trades the stored refresh token for a new access token
// and overwrites the stored one. The call deliberately bypasses Do so a 401
// here can never recurse into another refresh.
//
// Exchanges are not single-flighted: concurrent requests that hit 401
// together each run their own exchange, racing to overwrite the stored
// access token. The backend's refresh endpoint tolerates redundant calls.
func (p *Pipeline) refreshExchange(ctx context.Context) (string, error) {
	refresh, err := p.store.Get(ctx, storage.RefreshTokenKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("[Pipeline.refreshExchange] reading refresh token: %w", err)
	}
	if refresh == "" {
		return "", ErrNoRefreshToken
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refresh})
	if err != nil {
		return "", fmt.Errorf("[Pipeline.refreshExchange] encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+refreshPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("[Pipeline.refreshExchange] building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("[Pipeline.refreshExchange] %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	env, err := decodeResponse(resp)
	if err != nil {
		return "", fmt.Errorf("[Pipeline.refreshExchange] %w", err)
	}

	var payload refreshResponse
	if err := env.DecodeData(&payload); err != nil {
		return "", fmt.Errorf("[Pipeline.refreshExchange] %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("[Pipeline.refreshExchange] refresh response missing access token")
	}

	if err := storage.SetAccessToken(ctx, p.store, payload.AccessToken); err != nil {
		return "", fmt.Errorf("[Pipeline.refreshExchange] %w", err)
	}

	return payload.AccessToken, nil
}
