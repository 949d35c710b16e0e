package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	verifyPath           = "/verify-token"
	defaultVerifyTimeout = 5 * time.Second
)

// RemoteVerifier delegates token verification to the identity service's
// verify endpoint. Every check costs a network round trip; in exchange
// the service holds no signing secret. It fails closed: a timeout,
// transport error, or any non-200 response means "not authenticated".
type RemoteVerifier struct {
	baseURL string
	client  *http.Client
}

// NewRemoteVerifier constructs a RemoteVerifier against the identity
// service base URL. A nil client gets a bounded default timeout.
func NewRemoteVerifier(baseURL string, client *http.Client) (*RemoteVerifier, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("auth: identity service base URL is required")
	}
	if client == nil {
		client = &http.Client{Timeout: defaultVerifyTimeout}
	}
	return &RemoteVerifier{baseURL: baseURL, client: client}, nil
}

type verifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"user_type"`
}

// Verify forwards the token to the identity service and trusts its
// verdict. There is no caching and no retry: each request is checked
// afresh, and an unreachable verifier rejects the request.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrTokenMalformed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+verifyPath, nil)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, ErrInvalidToken
	}

	var payload verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err != nil {
		return Identity{}, ErrInvalidToken
	}
	if !payload.Valid || payload.UserID <= 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: payload.UserID, Email: payload.Email, Role: payload.Role}, nil
}
