package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrin/internal/remote"
)

func TestHTTPTransportSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathChat, r.URL.Path)
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "How old is the Sun?", req["message"])
		w.Write([]byte(`{"response":"About 4.6 billion years."}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(remote.New(server.URL))
	reply, err := tr.Send(context.Background(), "How old is the Sun?")
	require.NoError(t, err)
	assert.Equal(t, "About 4.6 billion years.", reply)
}

func TestHTTPTransportMissingResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reply":"wrong field"}`))
	}))
	defer server.Close()

	_, err := NewHTTPTransport(remote.New(server.URL)).Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, remote.KindParse, remote.KindOf(err))
}

func TestHTTPTransportDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewHTTPTransport(remote.New(server.URL)).Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, remote.KindStatus, remote.KindOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHistoryClientPostsMessages(t *testing.T) {
	var got []Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathHistory, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"saved"}`))
	}))
	defer server.Close()

	msgs := []Message{
		{ID: "1", Text: Greeting, Sender: SenderAssistant, Timestamp: "2024-06-01T00:00:00Z"},
		{ID: "2", Text: "hello", Sender: SenderUser, Timestamp: "2024-06-01T00:00:01Z"},
	}
	require.NoError(t, NewHistoryClient(remote.New(server.URL)).SaveHistory(context.Background(), msgs))
	assert.Equal(t, msgs, got)
}

func TestHistoryClientDisabled(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := NewHistoryClient(remote.New(server.URL))
	c.SetEnabled(false)
	require.NoError(t, c.SaveHistory(context.Background(), []Message{{ID: "1"}}))
	assert.Zero(t, calls.Load())
}

func TestHistoryClientList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathHistory, r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"id":"1","text":"hello","sender":"user","timestamp":"2024-06-01T00:00:01Z"}]`))
	}))
	defer server.Close()

	msgs, err := NewHistoryClient(remote.New(server.URL)).List(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, SenderUser, msgs[0].Sender)
}
