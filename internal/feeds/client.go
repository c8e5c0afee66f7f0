package feeds

import (
	"context"

	"astrin/internal/remote"
)

// Endpoint paths on the gateway.
const (
	PathNearEarthObjects = "/api/neo"
	PathPictureOfDay     = "/api/apod"
	PathMarsWeather      = "/api/mars-weather"
	PathStationPosition  = "/api/iss"
	PathLaunches         = "/api/spacex-launches"
)

// Client reads the feeds through a remote.Client. Every method has the shape
// of a lifecycle.RequestFunc.
type Client struct {
	remote *remote.Client
}

func NewClient(rc *remote.Client) *Client {
	return &Client{remote: rc}
}

func (c *Client) NearEarthObjects(ctx context.Context) ([]NearEarthObject, error) {
	out, err := getList[NearEarthObject](ctx, c.remote, PathNearEarthObjects)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Severity = out[i].Severity.Normalize()
	}
	return out, nil
}

func (c *Client) PictureOfDay(ctx context.Context) (PictureOfDay, error) {
	var out PictureOfDay
	if err := c.remote.GetJSON(ctx, PathPictureOfDay, &out); err != nil {
		return PictureOfDay{}, err
	}
	return out, nil
}

func (c *Client) MarsWeather(ctx context.Context) ([]MarsSol, error) {
	return getList[MarsSol](ctx, c.remote, PathMarsWeather)
}

func (c *Client) StationPosition(ctx context.Context) (StationPosition, error) {
	var out StationPosition
	if err := c.remote.GetJSON(ctx, PathStationPosition, &out); err != nil {
		return StationPosition{}, err
	}
	return out, nil
}

func (c *Client) Launches(ctx context.Context) ([]Launch, error) {
	return getList[Launch](ctx, c.remote, PathLaunches)
}

// getList decodes a JSON array. A null body decodes to an empty, non-nil
// slice so that "no items" stays distinguishable from "no answer".
func getList[T any](ctx context.Context, rc *remote.Client, path string) ([]T, error) {
	var out []T
	if err := rc.GetJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
