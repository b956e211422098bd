package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"golang.org/x/oauth2"
)

// Endpoint paths relative to the API base URL.
const (
	PathLogin   = "/auth/login"
	PathGoogle  = "/auth/google"
	PathRefresh = "/auth/refresh"
	PathProfile = "/user/profile"
)

const contentTypeJSON = "application/json"

// Client talks to the remote booking API that owns users and tokens.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Login exchanges an email and password for the user's token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthData, error) {
	body := map[string]string{"email": email, "password": password}
	return postEnvelope[AuthData](ctx, c, PathLogin, body)
}

// GoogleLogin exchanges a Google ID token for the user's token pair.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*AuthData, error) {
	body := map[string]string{"idToken": idToken}
	return postEnvelope[AuthData](ctx, c, PathGoogle, body)
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshData, error) {
	body := map[string]string{"refreshToken": refreshToken}
	return postEnvelope[RefreshData](ctx, c, PathRefresh, body)
}

// Profile fetches the extended user profile using accessToken as a bearer credential.
func (c *Client) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathProfile, nil)
	if err != nil {
		return nil, fmt.Errorf("[authapi Profile] build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	// oauth2.NewClient reuses the transport of the injected client and adds the bearer header
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	bearer := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	resp, err := bearer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[authapi Profile] %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[authapi Profile] read body: %w", err)
	}
	if !isSuccess(resp.StatusCode) {
		return nil, &Error{Endpoint: PathProfile, Status: resp.StatusCode, Message: messageFrom(raw), Err: apperrors.ErrUnexpectedStatus}
	}

	var profile *Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("[authapi Profile] decode: %w", err)
	}
	if profile == nil {
		return nil, &Error{Endpoint: PathProfile, Status: resp.StatusCode, Err: apperrors.ErrMissingPayload}
	}
	return profile, nil
}

func postEnvelope[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("[authapi %s] encode: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("[authapi %s] build request: %w", path, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[authapi %s] %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[authapi %s] read body: %w", path, err)
	}

	var env envelope[T]
	decodeErr := json.Unmarshal(raw, &env)

	if !isSuccess(resp.StatusCode) {
		return nil, &Error{Endpoint: path, Status: resp.StatusCode, Message: env.Message, Err: apperrors.ErrUnexpectedStatus}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("[authapi %s] decode: %w", path, decodeErr)
	}
	if env.Data == nil {
		return nil, &Error{Endpoint: path, Status: resp.StatusCode, Message: env.Message, Err: apperrors.ErrMissingPayload}
	}
	return env.Data, nil
}

func messageFrom(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Message
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
