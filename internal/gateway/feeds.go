package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"astrin/internal/feeds"
)

var errInvalidUpstream = errors.New("upstream returned invalid JSON")

// cosmicEvent is the wire shape of one entry of GET /api/neo.
type cosmicEvent struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Timestamp   string         `json:"timestamp"`
	Severity    feeds.Severity `json:"severity"`
	Icon        string         `json:"icon"`
}

func (s *Server) nasaURL(path string) string {
	q := url.Values{"api_key": {s.cfg.NASAAPIKey}}
	return strings.TrimRight(s.cfg.NASABaseURL, "/") + path + "?" + q.Encode()
}

// fetchUpstream returns the body of an upstream feed, which must be valid JSON.
func (s *Server) fetchUpstream(ctx context.Context, target string) ([]byte, error) {
	if d := s.cfg.UpstreamDeadline(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	body, err := s.upstream.GetBytes(ctx, target)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errInvalidUpstream
	}
	return body, nil
}

func (s *Server) upstreamFailed(w http.ResponseWriter, feed, detail string, err error) {
	s.logger.Warn("upstream feed failed", zap.String("feed", feed), zap.Error(err))
	Error(w, http.StatusBadGateway, detail)
}

func (s *Server) handleNearEarthObjects(w http.ResponseWriter, r *http.Request) {
	body, err := s.fetchUpstream(r.Context(), s.nasaURL("/neo/rest/v1/feed"))
	if err != nil {
		s.upstreamFailed(w, "neo", "Failed to fetch NEO data.", err)
		return
	}
	events, err := reshapeNEOFeed(body)
	if err != nil {
		s.upstreamFailed(w, "neo", "Failed to fetch NEO data.", err)
		return
	}
	JSON(w, http.StatusOK, events)
}

// reshapeNEOFeed flattens the NeoWs feed, keyed by date, into one event per
// object, ordered by close-approach date.
func reshapeNEOFeed(body []byte) ([]cosmicEvent, error) {
	byDate := gjson.GetBytes(body, "near_earth_objects")
	if !byDate.IsObject() {
		return nil, fmt.Errorf("near_earth_objects: %w", errInvalidUpstream)
	}

	events := []cosmicEvent{}
	byDate.ForEach(func(date, objects gjson.Result) bool {
		objects.ForEach(func(_, obj gjson.Result) bool {
			name := obj.Get("name").String()
			approach := obj.Get("close_approach_data.0")
			timestamp := approach.Get("close_approach_date").String()
			if timestamp == "" {
				timestamp = date.String()
			}
			severity := feeds.SeverityInfo
			if obj.Get("is_potentially_hazardous_asteroid").Bool() {
				severity = feeds.SeverityHigh
			}
			events = append(events, cosmicEvent{
				ID:          obj.Get("id").String(),
				Title:       "NEO: " + name,
				Description: fmt.Sprintf("%s is approaching Earth at %s km/h.", name, approach.Get("relative_velocity.kilometers_per_hour").String()),
				Type:        "asteroid",
				Timestamp:   timestamp,
				Severity:    severity,
				Icon:        "circle",
			})
			return true
		})
		return true
	})

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
	return events, nil
}

func (s *Server) handlePictureOfDay(w http.ResponseWriter, r *http.Request) {
	body, err := s.fetchUpstream(r.Context(), s.nasaURL("/planetary/apod"))
	if err != nil {
		s.upstreamFailed(w, "apod", "Failed to fetch APOD.", err)
		return
	}
	rawJSON(w, body)
}

// handleMarsWeather serves the sols array of the MSL weather report.
func (s *Server) handleMarsWeather(w http.ResponseWriter, r *http.Request) {
	body, err := s.fetchUpstream(r.Context(), s.cfg.MarsWeatherURL)
	if err != nil {
		s.upstreamFailed(w, "mars-weather", "Failed to fetch Mars weather.", err)
		return
	}
	sols := gjson.GetBytes(body, "soles")
	switch {
	case sols.IsArray():
		rawJSON(w, []byte(sols.Raw))
	case gjson.ParseBytes(body).IsArray():
		rawJSON(w, body)
	default:
		s.upstreamFailed(w, "mars-weather", "Failed to fetch Mars weather.", fmt.Errorf("soles: %w", errInvalidUpstream))
	}
}

func (s *Server) handleStationPosition(w http.ResponseWriter, r *http.Request) {
	body, err := s.fetchUpstream(r.Context(), s.cfg.ISSURL)
	if err != nil {
		s.upstreamFailed(w, "iss", "Failed to fetch ISS data.", err)
		return
	}
	rawJSON(w, body)
}

func (s *Server) handleLaunches(w http.ResponseWriter, r *http.Request) {
	body, err := s.fetchUpstream(r.Context(), s.cfg.LaunchesURL)
	if err != nil {
		s.upstreamFailed(w, "spacex-launches", "Failed to fetch SpaceX launches.", err)
		return
	}
	rawJSON(w, body)
}
