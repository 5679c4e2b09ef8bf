package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismanotify/prismanotify/internal/config"
)

func TestAppriseSink_Send(t *testing.T) {
	var mu sync.Mutex
	var gotPath string
	var got apprisePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewAppriseSink(config.AppriseConfig{URL: srv.URL + "/", Key: "prisma", Type: "failure"}, time.Second, zerolog.Nop())
	err := sink.Send(context.Background(), Message{Title: "Prisma Cloud Alert: x", Body: "Alert P-1 (open)"})

	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/notify/prisma", gotPath)
	assert.Equal(t, apprisePayload{
		Title:  "Prisma Cloud Alert: x",
		Body:   "Alert P-1 (open)",
		Type:   "failure",
		Format: "text",
	}, got)
}

func TestAppriseSink_DefaultType(t *testing.T) {
	var mu sync.Mutex
	var got apprisePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	sink := NewAppriseSink(config.AppriseConfig{URL: srv.URL, Key: "k"}, time.Second, zerolog.Nop())
	require.NoError(t, sink.Send(context.Background(), Message{Title: "t"}))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "warning", got.Type)
}

func TestAppriseSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such key", http.StatusNotFound)
	}))
	defer srv.Close()

	sink := NewAppriseSink(config.AppriseConfig{URL: srv.URL, Key: "missing"}, time.Second, zerolog.Nop())
	err := sink.Send(context.Background(), Message{Title: "t"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "apprise API error: 404 - no such key")
}

func TestAppriseSink_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sink := NewAppriseSink(config.AppriseConfig{URL: url, Key: "k"}, time.Second, zerolog.Nop())
	err := sink.Send(context.Background(), Message{Title: "t"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
}
