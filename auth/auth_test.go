package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetTokenAndSetAuthHeader(t *testing.T) {
	var calls int32
	server := tokenServer(t, &calls)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: server.URL})

	token, err := client.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token123", token)

	req, _ := http.NewRequest("GET", "http://example.com", nil)
	require.NoError(t, client.SetAuthHeader(context.Background(), req))
	assert.Equal(t, "Bearer token123", req.Header.Get("Authorization"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "cached token should be reused")
}

func TestForceRefresh(t *testing.T) {
	var calls int32
	server := tokenServer(t, &calls)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: server.URL})

	_, err := client.GetToken(context.Background())
	require.NoError(t, err)
	_, err = client.ForceRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "bad", AuthURL: server.URL})
	_, err := client.GetToken(context.Background())
	assert.Error(t, err)
}

func TestConfValidate(t *testing.T) {
	assert.NoError(t, Conf{}.Validate())
	assert.False(t, Conf{}.Enabled())
	assert.Error(t, Conf{AuthURL: "http://x"}.Validate())
	assert.NoError(t, Conf{AuthURL: "http://x", ClientID: "a", ClientSecret: "b"}.Validate())
}
