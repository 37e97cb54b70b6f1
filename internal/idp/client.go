// Package idp talks to the external identity provider (OpenID Connect,
// resource-owner password grant).
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var ErrUnauthorized = errors.New("identity provider rejected the token")

type Config struct {
	TokenURL     string
	UserInfoURL  string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

type UserInfo struct {
	Subject           string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	Name              string `json:"name"`
}

// Client is created once at startup and shared by all requests.
type Client struct {
	oauth       *oauth2.Config
	userInfoURL string
	http        *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		http:        &http.Client{Timeout: timeout},
	}
}

func (c *Client) withHTTP(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

// PasswordLogin exchanges username/password for a token pair.
func (c *Client) PasswordLogin(ctx context.Context, username, password string) (*oauth2.Token, error) {
	tok, err := c.oauth.PasswordCredentialsToken(c.withHTTP(ctx), username, password)
	if err != nil {
		return nil, fmt.Errorf("idp password grant: %w", err)
	}
	return tok, nil
}

// IsRejected reports whether the provider answered the grant with a 4xx,
// i.e. refused the credentials or the refresh token. Transport errors and
// 5xx responses are not rejections.
func IsRejected(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) || re.Response == nil {
		return false
	}
	return re.Response.StatusCode >= 400 && re.Response.StatusCode < 500
}

// Refresh runs the refresh_token grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	// пустой access token заставляет TokenSource сходить за новым
	src := c.oauth.TokenSource(c.withHTTP(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("idp refresh grant: %w", err)
	}
	return tok, nil
}

func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("idp userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("idp userinfo: status=%d body=%s", resp.StatusCode, string(body))
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("idp userinfo decode: %w", err)
	}
	return &info, nil
}

// ExpiresIn returns the remaining lifetime of tok in seconds.
func ExpiresIn(tok *oauth2.Token) int64 {
	if tok == nil || tok.Expiry.IsZero() {
		return 0
	}
	d := time.Until(tok.Expiry)
	if d < 0 {
		return 0
	}
	return int64(d.Round(time.Second).Seconds())
}
