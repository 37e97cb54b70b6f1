package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "password":
			if r.PostForm.Get("username") != "operator" || r.PostForm.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid user credentials"}`))
				return
			}
		case "refresh_token":
			if r.PostForm.Get("refresh_token") != "rt-1" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-2",
			"refresh_token": "rt-2",
			"token_type":    "Bearer",
			"expires_in":    300,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"abc","preferred_username":"operator","email":"op@example.kz"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *Client {
	return New(Config{
		TokenURL:    srv.URL + "/token",
		UserInfoURL: srv.URL + "/userinfo",
		ClientID:    "vregistry",
		Timeout:     time.Second,
	})
}

func TestPasswordLogin(t *testing.T) {
	c := newClient(newProvider(t))

	tok, err := c.PasswordLogin(context.Background(), "operator", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at-2", tok.AccessToken)
	assert.Equal(t, "rt-2", tok.RefreshToken)
	assert.InDelta(t, 300, ExpiresIn(tok), 2)

	_, err = c.PasswordLogin(context.Background(), "operator", "wrong")
	require.Error(t, err)
	assert.True(t, IsRejected(err))
}

func TestRefresh(t *testing.T) {
	c := newClient(newProvider(t))

	tok, err := c.Refresh(context.Background(), "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "at-2", tok.AccessToken)

	_, err = c.Refresh(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, IsRejected(err))
}

func TestGrantFailuresThatAreNotRejections(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream unavailable`))
	}))
	t.Cleanup(down.Close)

	_, err := newClient(down).PasswordLogin(context.Background(), "operator", "secret")
	require.Error(t, err)
	assert.False(t, IsRejected(err))

	gone := httptest.NewServer(http.NotFoundHandler())
	c := newClient(gone)
	gone.Close()
	_, err = c.PasswordLogin(context.Background(), "operator", "secret")
	require.Error(t, err)
	assert.False(t, IsRejected(err))

	assert.False(t, IsRejected(nil))
}

func TestUserInfo(t *testing.T) {
	c := newClient(newProvider(t))

	info, err := c.UserInfo(context.Background(), "at-2")
	require.NoError(t, err)
	assert.Equal(t, "operator", info.PreferredUsername)

	_, err = c.UserInfo(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestExpiresIn(t *testing.T) {
	assert.Zero(t, ExpiresIn(nil))
	assert.Zero(t, ExpiresIn(&oauth2.Token{}))
	assert.Zero(t, ExpiresIn(&oauth2.Token{Expiry: time.Now().Add(-time.Minute)}))
}
