package wholesale

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2genv/auth"
	"github.com/kilianp07/v2genv/core/factory"
	"github.com/kilianp07/v2genv/core/pricing"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func marketPayload(start time.Time, hours int) string {
	var vals []string
	for i := 0; i < hours; i++ {
		s := start.Add(time.Duration(i) * time.Hour)
		vals = append(vals, fmt.Sprintf(`{"start_date":%q,"end_date":%q,"value":1,"price":%d}`,
			s.Format(time.RFC3339), s.Add(time.Hour).Format(time.RFC3339), 100+i))
	}
	return `{"france_power_exchanges":[{"start_date":"x","end_date":"y","values":[` + strings.Join(vals, ",") + `]}]}`
}

func TestClientFetch(t *testing.T) {
	var gotAuth, gotStart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","expires_in":3600}`))
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotStart = r.URL.Query().Get("start_date")
		_, _ = w.Write([]byte(marketPayload(day, 2)))
	}))
	defer srv.Close()

	cred := auth.NewClientCred(auth.Conf{ClientID: "id", ClientSecret: "s", AuthURL: srv.URL + "/token"})
	c := NewClient(srv.URL+"/prices", cred)
	resp, err := c.Fetch(context.Background(), day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, day.Format(time.RFC3339), gotStart)

	prices, err := resp.Prices()
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, day.Add(time.Hour), prices[1].Start)
	assert.Equal(t, 101.0, prices[1].Price)
}

func TestClientFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, nil)
	_, err := c.Fetch(context.Background(), day, day.Add(time.Hour))
	assert.ErrorContains(t, err, "502")
	_, err = c.Fetch(context.Background(), day, day)
	assert.Error(t, err)
}

func TestFeedCachesDays(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(marketPayload(day, 24)))
	}))
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil))
	assert.InDelta(t, 0.100, f.NextPrice(day), 1e-12)
	assert.InDelta(t, 0.105, f.NextPrice(day.Add(5*time.Hour+30*time.Minute)), 1e-12)
	assert.InDelta(t, 0.123, f.NextPrice(day.Add(23*time.Hour)), 1e-12)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFeedRepeatsLastPriceOnGap(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(marketPayload(day, 24)))
	}))
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil), WithScale(1))
	assert.Equal(t, 123.0, f.NextPrice(day.Add(23*time.Hour)))
	next := day.Add(24 * time.Hour)
	assert.Equal(t, 123.0, f.NextPrice(next))
	assert.Equal(t, 123.0, f.NextPrice(next.Add(time.Hour)))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "a failed day is not refetched")
}

func TestFeedRegistered(t *testing.T) {
	src, err := pricing.New(factory.ModuleConfig{Type: "wholesale", Conf: map[string]any{"url": "http://localhost", "scale": 1}})
	require.NoError(t, err)
	f, ok := src.(*Feed)
	require.True(t, ok)
	assert.Equal(t, 1.0, f.scale)

	_, err = pricing.New(factory.ModuleConfig{Type: "wholesale", Conf: map[string]any{"auth": map[string]any{"auth_url": "http://x"}}})
	assert.Error(t, err)
}
