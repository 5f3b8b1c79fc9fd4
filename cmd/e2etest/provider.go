package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rafaelcosta/filantropia-api/identity"
)

// httpProvider implements identity.Provider against a running API
// instance, the way a frontend client would consume it.
type httpProvider struct {
	baseURL    string
	httpClient *http.Client

	events    chan identity.AuthEvent
	closeOnce sync.Once
}

func newHTTPProvider(baseURL string) *httpProvider {
	return &httpProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		events:     make(chan identity.AuthEvent, 16),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type authPayload struct {
	User         identity.User `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"`
}

func (p *httpProvider) postJSON(ctx context.Context, path, token string, body interface{}) (*envelope, int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, res.StatusCode, err
	}
	return &env, res.StatusCode, nil
}

func (p *httpProvider) getJSON(ctx context.Context, path, token string) (*envelope, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, res.StatusCode, err
	}
	return &env, res.StatusCode, nil
}

func apiError(env *envelope, status int) error {
	if env != nil && env.Error != nil && env.Error.Message != "" {
		return errors.New(env.Error.Message)
	}
	return fmt.Errorf("api returned status %d", status)
}

func (p *httpProvider) SignUp(ctx context.Context, email, password string, metadata *identity.UserMetadata) (*identity.User, *identity.Session, error) {
	name := email
	if metadata != nil && metadata.FullName != "" {
		name = metadata.FullName
	}

	env, status, err := p.postJSON(ctx, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	if err != nil {
		return nil, nil, err
	}
	if status != http.StatusCreated || !env.Success {
		return nil, nil, apiError(env, status)
	}

	return decodeAuthPayload(env.Data)
}

func (p *httpProvider) SignIn(ctx context.Context, email, password string) (*identity.User, *identity.Session, error) {
	env, status, err := p.postJSON(ctx, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, nil, err
	}
	if status != http.StatusOK || !env.Success {
		return nil, nil, apiError(env, status)
	}

	return decodeAuthPayload(env.Data)
}

func decodeAuthPayload(raw json.RawMessage) (*identity.User, *identity.Session, error) {
	var payload authPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, err
	}
	session := &identity.Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}
	return &payload.User, session, nil
}

func (p *httpProvider) SignOut(ctx context.Context, accessToken string) error {
	env, status, err := p.postJSON(ctx, "/api/v1/auth/logout", accessToken, map[string]string{})
	if err != nil {
		return err
	}
	if status != http.StatusOK || !env.Success {
		return apiError(env, status)
	}
	return nil
}

func (p *httpProvider) GetSession(ctx context.Context, accessToken string) (*identity.Session, error) {
	if accessToken == "" {
		return nil, nil
	}

	_, status, err := p.getJSON(ctx, "/api/v1/profile/", accessToken)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("api returned status %d", status)
	}

	return &identity.Session{AccessToken: accessToken}, nil
}

func (p *httpProvider) GetUser(ctx context.Context, accessToken string) (*identity.User, error) {
	if accessToken == "" {
		return nil, nil
	}

	env, status, err := p.getJSON(ctx, "/api/v1/profile/", accessToken)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, nil
	}
	if status != http.StatusOK || !env.Success {
		return nil, apiError(env, status)
	}

	var user identity.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh exchanges a refresh token and mirrors the rotation into the
// event stream, so a session store sees it like a provider push.
func (p *httpProvider) Refresh(ctx context.Context, userID uint, refreshToken string) (*identity.Session, error) {
	env, status, err := p.postJSON(ctx, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !env.Success {
		return nil, apiError(env, status)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, err
	}

	session := &identity.Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}

	select {
	case p.events <- identity.AuthEvent{Type: identity.EventTokenRefreshed, UserID: userID, Session: session}:
	default:
	}
	return session, nil
}

func (p *httpProvider) Events() <-chan identity.AuthEvent {
	return p.events
}

func (p *httpProvider) Close() error {
	p.closeOnce.Do(func() { close(p.events) })
	return nil
}
