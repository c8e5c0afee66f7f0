package feeds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrin/internal/remote"
)

func newTestClient(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewClient(remote.New(server.URL, remote.WithRetry(remote.SingleAttempt())))
}

func TestNearEarthObjects(t *testing.T) {
	c := newTestClient(t, map[string]string{
		PathNearEarthObjects: `[
			{"id":"3542519","title":"NEO: (2010 PK9)","description":"(2010 PK9) is approaching Earth at 51000.1 km/h.","type":"asteroid","timestamp":"2024-05-01","severity":"info","icon":"circle"},
			{"id":"2000433","title":"NEO: 433 Eros","description":"close","type":"asteroid","timestamp":"2024-05-02","severity":"catastrophic"}
		]`,
	})

	neos, err := c.NearEarthObjects(context.Background())
	require.NoError(t, err)
	require.Len(t, neos, 2)
	assert.Equal(t, "NEO: (2010 PK9)", neos[0].Title)
	assert.Equal(t, SeverityInfo, neos[0].Severity)
	assert.Equal(t, SeverityInfo, neos[1].Severity, "unknown severity falls back to info")
}

func TestEmptyListIsNotNil(t *testing.T) {
	c := newTestClient(t, map[string]string{
		PathLaunches:    `[]`,
		PathMarsWeather: `null`,
	})

	launches, err := c.Launches(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, launches)
	assert.Empty(t, launches)

	sols, err := c.MarsWeather(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sols)
	assert.Empty(t, sols)
}

func TestLaunchNullableFields(t *testing.T) {
	c := newTestClient(t, map[string]string{
		PathLaunches: `[{"id":"5eb87d42","name":"Starlink 4-36","date_utc":"2024-06-01T12:00:00.000Z","details":null,
			"links":{"webcast":"https://youtu.be/x","article":null,"wikipedia":null}}]`,
	})

	launches, err := c.Launches(context.Background())
	require.NoError(t, err)
	require.Len(t, launches, 1)
	assert.Nil(t, launches[0].Details)
	require.NotNil(t, launches[0].Links.Webcast)
	assert.Equal(t, "https://youtu.be/x", *launches[0].Links.Webcast)
	assert.Nil(t, launches[0].Links.Article)
}

func TestStationPositionStringCoordinates(t *testing.T) {
	c := newTestClient(t, map[string]string{
		PathStationPosition: `{"message":"success","timestamp":1717243200,"iss_position":{"latitude":"-12.3456","longitude":"101.5"}}`,
	})

	pos, err := c.StationPosition(context.Background())
	require.NoError(t, err)
	lat, ok := pos.Position.Latitude.Float()
	require.True(t, ok)
	assert.InDelta(t, -12.3456, lat, 1e-9)
	assert.Equal(t, int64(1717243200), pos.Timestamp)
}

func TestMarsWeatherMixedTypes(t *testing.T) {
	c := newTestClient(t, map[string]string{
		PathMarsWeather: `[{"sol":"4100","terrestrial_date":"2024-02-10","min_temp":-78,"max_temp":"-2","pressure":"745","sunrise":"05:20","sunset":"17:31"}]`,
	})

	sols, err := c.MarsWeather(context.Background())
	require.NoError(t, err)
	require.Len(t, sols, 1)
	assert.Equal(t, Text("4100"), sols[0].Sol)
	assert.Equal(t, Text("-78"), sols[0].MinTemp)
	assert.Equal(t, Text("-2"), sols[0].MaxTemp)
}

func TestPictureOfDay(t *testing.T) {
	c := newTestClient(t, map[string]string{
		PathPictureOfDay: `{"date":"2024-06-01","title":"A Lunar Corona","explanation":"Rings around the Moon.","url":"https://apod.nasa.gov/a.jpg","media_type":"image","service_version":"v1"}`,
	})

	apod, err := c.PictureOfDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A Lunar Corona", apod.Title)
	assert.False(t, apod.IsVideo())
}

func TestFeedStatusFailure(t *testing.T) {
	c := newTestClient(t, map[string]string{})

	_, err := c.PictureOfDay(context.Background())
	require.Error(t, err)
	assert.Equal(t, remote.KindStatus, remote.KindOf(err))
}

func TestTextRejectsObjects(t *testing.T) {
	var v Text
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
	assert.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.Equal(t, Text(""), v)
}

func TestCatalogLookup(t *testing.T) {
	info, ok := Lookup(StationLocation)
	require.True(t, ok)
	assert.True(t, info.Polled)
	assert.Equal(t, PathStationPosition, info.Path)

	_, ok = Lookup("pluto")
	assert.False(t, ok)
}
