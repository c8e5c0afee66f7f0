// Package feeds holds the records served by the five public space-data feeds
// and a typed client for them.
package feeds

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text decodes from a JSON string, number or null. Upstream feeds are not
// consistent about quoting numeric fields.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*t = ""
		return nil
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*t = Text(v)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("feeds: expected string or number, got %s", s)
		}
		*t = Text(n.String())
		return nil
	}
}

func (t Text) String() string { return string(t) }

// Float parses the text as a number.
func (t Text) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	return f, err == nil
}

// Severity grades a near-Earth object.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Normalize maps unknown grades to info.
func (s Severity) Normalize() Severity {
	switch s {
	case SeverityLow, SeverityInfo, SeverityModerate, SeverityHigh:
		return s
	default:
		return SeverityInfo
	}
}

// NearEarthObject is one event of the near-Earth object feed.
type NearEarthObject struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Timestamp   string   `json:"timestamp"`
	Severity    Severity `json:"severity"`
}

// PictureOfDay is the astronomy picture of the day.
type PictureOfDay struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	HDURL       string `json:"hdurl,omitempty"`
	MediaType   string `json:"media_type"`
	Copyright   string `json:"copyright,omitempty"`
}

// IsVideo reports whether the picture of the day is a video.
func (p PictureOfDay) IsVideo() bool {
	return p.MediaType == "video"
}

// MarsSol is one sol of the Mars weather report.
type MarsSol struct {
	Sol             Text   `json:"sol"`
	TerrestrialDate string `json:"terrestrial_date"`
	MinTemp         Text   `json:"min_temp"`
	MaxTemp         Text   `json:"max_temp"`
	Pressure        Text   `json:"pressure"`
	Sunrise         string `json:"sunrise"`
	Sunset          string `json:"sunset"`
}

// Coordinates is a latitude/longitude pair as published by the station feed.
type Coordinates struct {
	Latitude  Text `json:"latitude"`
	Longitude Text `json:"longitude"`
}

// StationPosition is the current ground position of the space station.
type StationPosition struct {
	Position  Coordinates `json:"iss_position"`
	Timestamp int64       `json:"timestamp"`
	Message   string      `json:"message,omitempty"`
}

// LaunchLinks are the optional external links of a launch.
type LaunchLinks struct {
	Webcast   *string `json:"webcast"`
	Article   *string `json:"article"`
	Wikipedia *string `json:"wikipedia"`
}

// Launch is one upcoming launch.
type Launch struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	DateUTC string      `json:"date_utc"`
	Details *string     `json:"details"`
	Links   LaunchLinks `json:"links"`
}
