// Package identity resolves identity-provider subject ids to display names.
// Request authentication itself is a bearer token verified at the transport
// edge; this package only covers the server-to-server lookup used when a
// leaderboard entry is first created.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fanbase-quiz-service/internal/domain"
)

const defaultTimeout = 5 * time.Second

// HTTPResolver queries the hosted identity provider's user endpoint:
// GET {base}/users/{id} -> {"id": ..., "displayName": ...}.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (r *HTTPResolver) ResolveUser(ctx context.Context, userID string) (domain.User, error) {
	endpoint := r.baseURL + "/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.User{}, domain.ErrUserNotFound
	default:
		return domain.User{}, fmt.Errorf("identity provider: unexpected status %d", resp.StatusCode)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		user.ID = userID
	}
	return user, nil
}

// StaticResolver serves a fixed id→name map (tests and DB-less dev runs).
type StaticResolver struct {
	users map[string]string
}

func NewStaticResolver(users map[string]string) *StaticResolver {
	return &StaticResolver{users: users}
}

func (r *StaticResolver) ResolveUser(_ context.Context, userID string) (domain.User, error) {
	name, ok := r.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return domain.User{ID: userID, DisplayName: name}, nil
}
