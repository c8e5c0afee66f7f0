package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"astrin/internal/chat"
	"astrin/internal/config"
	"astrin/internal/db"
	"astrin/internal/feeds"
	"astrin/internal/remote"
)

func TestMain(m *testing.M) {
	logger = zap.NewNop()
	os.Exit(m.Run())
}

func feedsBackend(t *testing.T, routes map[string]string) *feeds.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return feeds.NewClient(remote.New(server.URL, remote.WithRetry(remote.SingleAttempt())))
}

var allFeeds = map[string]string{
	feeds.PathNearEarthObjects: `[{"id":"1","title":"NEO: Eros","severity":"high"},{"id":"2","title":"NEO: Bennu","severity":"info"}]`,
	feeds.PathPictureOfDay:     `{"title":"The Horsehead Nebula","date":"2024-06-01","url":"https://apod.nasa.gov/h.jpg","media_type":"image"}`,
	feeds.PathMarsWeather:      `[{"sol":"4100","min_temp":"-80","max_temp":"-2"}]`,
	feeds.PathStationPosition:  `{"iss_position":{"latitude":"10.5","longitude":"20.25"},"timestamp":1717200000}`,
	feeds.PathLaunches:         `[{"id":"a","name":"Crew-9","date_utc":"2024-09-28T17:17:00.000Z"}]`,
}

func TestFetchAllFeeds(t *testing.T) {
	results, err := fetchAll(context.Background(), feedsBackend(t, allFeeds))
	require.NoError(t, err)
	require.Len(t, results, len(feeds.Catalog))

	var out bytes.Buffer
	printFeedSummary(&out, results)
	text := out.String()
	assert.Contains(t, text, "2 objects, 1 high severity")
	assert.Contains(t, text, `"The Horsehead Nebula" (2024-06-01)`)
	assert.Contains(t, text, "sol 4100, -80 to -2 °C")
	assert.Contains(t, text, "lat 10.5, lon 20.25")
	assert.Contains(t, text, "1 upcoming, next Crew-9")
	assert.NotContains(t, text, "FAIL")
}

func TestFetchAllReportsEveryFeed(t *testing.T) {
	routes := map[string]string{}
	for k, v := range allFeeds {
		routes[k] = v
	}
	delete(routes, feeds.PathMarsWeather)

	results, err := fetchAll(context.Background(), feedsBackend(t, routes))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars Weather")

	var out bytes.Buffer
	printFeedSummary(&out, results)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(feeds.Catalog))
	assert.Contains(t, lines[2], "FAIL")
	assert.Contains(t, lines[2], "HTTP error! status: 502")
	assert.Contains(t, lines[4], "ok")
}

func TestPrintHistory(t *testing.T) {
	var out bytes.Buffer
	printHistory(&out, nil)
	assert.Equal(t, "No chat history yet.\n", out.String())

	out.Reset()
	printHistory(&out, []chat.Message{
		{ID: "1", Text: "Is Pluto a planet?", Sender: chat.SenderUser, Timestamp: "bad"},
		{ID: "2", Text: "A dwarf planet.\nSince 2006.", Sender: chat.SenderAssistant, Timestamp: "bad"},
	})
	assert.Equal(t, "[bad] You: Is Pluto a planet?\n[bad] Astrin: A dwarf planet.\n    Since 2006.\n", out.String())
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	store, err := db.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	_, err = store.SaveMessages(context.Background(), []chat.Message{
		{ID: "1", Text: "Hello Astrin", Sender: chat.SenderUser, Timestamp: "2024-07-20T20:17:00Z"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	cfg = &config.Config{Server: config.ServerConfig{DBPath: filepath.Join(dir, "history.db")}}
	exportOut = filepath.Join(dir, "out", "talk.md")
	t.Cleanup(func() { cfg, exportOut = nil, "" })

	var out bytes.Buffer
	exportCmd.SetOut(&out)
	exportCmd.SetContext(context.Background())
	require.NoError(t, runExport(exportCmd, nil))

	assert.Contains(t, out.String(), "Exported 1 messages to ")
	data, err := os.ReadFile(exportOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello Astrin")
}
