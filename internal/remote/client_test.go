package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) Option {
	return WithRetry(RetryConfig{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/apod", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"title":"Pillars of Creation","media_type":"image"}`))
	}))
	defer server.Close()

	c := New(server.URL + "/")
	var out struct {
		Title     string `json:"title"`
		MediaType string `json:"media_type"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/api/apod", &out))
	assert.Equal(t, "Pillars of Creation", out.Title)
	assert.Equal(t, "image", out.MediaType)
}

func TestStatusFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Failed to fetch NEO data."}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)
	var out []any
	err := c.GetJSON(context.Background(), "api/neo", &out)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.Code)
	assert.Contains(t, statusErr.Body, "Failed to fetch NEO data.")
	assert.Equal(t, KindStatus, KindOf(err))
	assert.Equal(t, "HTTP error! status: 500", err.Error())
}

func TestParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"iss_position": `))
	}))
	defer server.Close()

	var out map[string]any
	err := New(server.URL).GetJSON(context.Background(), "/api/iss", &out)
	assert.Equal(t, KindParse, KindOf(err))
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	var out map[string]any
	err := New(url, fastRetry(1)).GetJSON(context.Background(), "/api/iss", &out)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"message":"hello"}`, string(body))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"response":"hi"}`))
	}))
	defer server.Close()

	c := New(server.URL, fastRetry(3))
	var out struct {
		Response string `json:"response"`
	}
	require.NoError(t, c.PostJSON(context.Background(), "/api/chat", map[string]string{"message": "hello"}, &out))
	assert.Equal(t, "hi", out.Response)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSingleAttemptDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.URL).WithRetry(SingleAttempt())
	err := c.PostJSON(context.Background(), "/api/chat", map[string]string{"message": "x"}, nil)

	assert.ErrorIs(t, err, ErrBadGateway)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSONNilOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var msgs []map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msgs))
		assert.Len(t, msgs, 2)
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	msgs := []map[string]string{{"text": "a"}, {"text": "b"}}
	assert.NoError(t, New(server.URL).PostJSON(context.Background(), "/api/chat/history", msgs, nil))
}

func TestAbsoluteURLBypassesBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	}))
	defer server.Close()

	body, err := New("http://example.invalid").GetBytes(context.Background(), server.URL+"/anything")
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", string(body))
}

func TestContextCancellationIsNotWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(server.URL, fastRetry(1)).GetBytes(ctx, "/slow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.NotEqual(t, KindNetwork, KindOf(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "status", KindStatus.String())
	assert.Equal(t, "parse", KindParse.String())
	assert.Equal(t, "unknown", KindOf(nil).String())
}
