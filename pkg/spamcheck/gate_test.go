package spamcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifier(t *testing.T, status int, body string, delay time.Duration, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		var req spamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGateVerdicts(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		delay  time.Duration
		want   bool
	}{
		{name: "bare true", status: http.StatusOK, body: "true", want: true},
		{name: "bare false", status: http.StatusOK, body: "false", want: false},
		{name: "object verdict", status: http.StatusOK, body: `{"spam":true,"score":0.98}`, want: true},
		{name: "object without verdict fails open", status: http.StatusOK, body: `{"score":0.98}`, want: false},
		{name: "malformed body fails open", status: http.StatusOK, body: `<html>`, want: false},
		{name: "server error fails open", status: http.StatusInternalServerError, body: "true", want: false},
		{name: "timeout fails open", status: http.StatusOK, body: "true", delay: 500 * time.Millisecond, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := classifier(t, tt.status, tt.body, tt.delay, nil)
			gate, err := NewGate(Config{URL: srv.URL, Timeout: 100 * time.Millisecond}, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.want, gate.IsSpam(context.Background(), "buy cheap watches"))
		})
	}
}

func TestGateUnreachableClassifier(t *testing.T) {
	srv := classifier(t, http.StatusOK, "true", 0, nil)
	url := srv.URL
	srv.Close()

	gate, err := NewGate(Config{URL: url, Timeout: 100 * time.Millisecond}, nil)
	require.NoError(t, err)
	assert.False(t, gate.IsSpam(context.Background(), "anything"))
}

func TestGateDisabled(t *testing.T) {
	gate, err := NewGate(Config{}, nil)
	require.NoError(t, err)
	assert.False(t, gate.IsSpam(context.Background(), "anything"))
}

func TestGateUsesVerdictCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisVerdictCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	defer cache.Close()

	var calls int32
	srv := classifier(t, http.StatusOK, "true", 0, &calls)
	gate, err := NewGate(Config{URL: srv.URL, Timeout: time.Second}, cache)
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, gate.IsSpam(ctx, "buy cheap watches"))
	assert.True(t, gate.IsSpam(ctx, "buy cheap watches"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second verdict should come from the cache")

	assert.True(t, gate.IsSpam(ctx, "another text"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGateDoesNotCacheFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisVerdictCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	defer cache.Close()

	var calls int32
	srv := classifier(t, http.StatusBadGateway, "", 0, &calls)
	gate, err := NewGate(Config{URL: srv.URL, Timeout: time.Second}, cache)
	require.NoError(t, err)

	ctx := context.Background()
	assert.False(t, gate.IsSpam(ctx, "text"))
	assert.False(t, gate.IsSpam(ctx, "text"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	_, found, err := cache.Get(ctx, "text")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisVerdictCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisVerdictCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "hello", false))

	verdict, found, err := cache.Get(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, verdict)

	mr.FastForward(2 * time.Minute)
	_, found, err = cache.Get(ctx, "hello")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisVerdictCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cache, err := NewRedisVerdictCache("redis://"+addr, time.Hour)
	require.Error(t, err)
	assert.Nil(t, cache)
	assert.Contains(t, err.Error(), "connect to redis")
}
