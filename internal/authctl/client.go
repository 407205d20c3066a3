// Package authctl implements an interactive terminal client for the auth
// service HTTP API.
package authctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/manishrnl/authservice/internal/common"
)

// TokenPair mirrors the token responses of the server API.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type meResponse struct {
	Username string `json:"username"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Signup(ctx context.Context, username, email string, password []byte) (*TokenPair, error) {
	req := signupRequest{Username: username, Email: email, Password: string(password)}
	var pair TokenPair
	if err := c.post(ctx, "/auth/v1/signup", req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Login(ctx context.Context, username string, password []byte) (*TokenPair, error) {
	req := loginRequest{Username: username, Password: string(password)}
	var pair TokenPair
	if err := c.post(ctx, "/auth/v1/login", req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	req := refreshRequest{RefreshToken: refreshToken}
	var pair TokenPair
	if err := c.post(ctx, "/auth/v1/refresh", req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Me(ctx context.Context, accessToken string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/me", nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+accessToken)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", serverError(resp)
	}
	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", err
	}
	return me.Username, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, dst any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func serverError(resp *http.Response) error {
	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return fmt.Errorf("server: %s", payload.Error)
}
