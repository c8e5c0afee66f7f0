package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"astrin/internal/feeds"
)

const (
	emptyNearEarthObjects = "No Near-Earth Objects data available."
	emptyPictureOfDay     = "No APOD data available."
	emptyMarsWeather      = "No Mars weather data available."
	emptyStationPosition  = "No ISS data available."
	emptyLaunches         = "No SpaceX launch data available."
)

func cardWidth(width int) int {
	if width < 24 {
		return 20
	}
	return width - 4
}

func card(color lipgloss.Color, width int, body string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(cardWidth(width)).
		Render(body)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// formatDate renders a YYYY-MM-DD date, falling back to the raw text.
func formatDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// formatLocalTime renders an RFC 3339 instant in local time.
func formatLocalTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format("Jan 2, 2006 15:04 MST")
}

// formatClock trims a HH:MM[:SS] time of day to HH:MM.
func formatClock(s string) string {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return orNA(s)
}

func nearEarthObjectsBinding(c *feeds.Client) feedBinding[[]feeds.NearEarthObject] {
	return feedBinding[[]feeds.NearEarthObject]{
		request: c.NearEarthObjects,
		isEmpty: func(v []feeds.NearEarthObject) bool { return len(v) == 0 },
		empty:   emptyNearEarthObjects,
		project: renderNearEarthObjects,
	}
}

func renderNearEarthObjects(neos []feeds.NearEarthObject, width int) string {
	cards := make([]string, 0, len(neos))
	for _, neo := range neos {
		var sb strings.Builder
		sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(SeverityColor(neo.Severity)).Render(neo.Title))
		sb.WriteString("\n")
		sb.WriteString(neo.Description)
		sb.WriteString("\n")
		sb.WriteString(DimStyle.Render(fmt.Sprintf("%s · %s · %s", capitalize(neo.Type), neo.Severity.Normalize(), formatDate(neo.Timestamp))))
		cards = append(cards, card(SeverityColor(neo.Severity), width, sb.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func pictureOfDayBinding(c *feeds.Client) feedBinding[feeds.PictureOfDay] {
	return feedBinding[feeds.PictureOfDay]{
		request: c.PictureOfDay,
		isEmpty: func(v feeds.PictureOfDay) bool { return v.Title == "" && v.URL == "" },
		empty:   emptyPictureOfDay,
		project: renderPictureOfDay,
	}
}

func renderPictureOfDay(p feeds.PictureOfDay, width int) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(p.Title))
	sb.WriteString("\n\n")

	kind := "Image"
	if p.IsVideo() {
		kind = "Video"
	}
	sb.WriteString(fmt.Sprintf("%s: %s\n", kind, p.URL))
	if p.HDURL != "" {
		sb.WriteString(fmt.Sprintf("HD: %s\n", p.HDURL))
	}
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Width(cardWidth(width) - 4).Render(p.Explanation))
	sb.WriteString("\n\n")
	footer := "Date: " + p.Date
	if p.Copyright != "" {
		footer += " · © " + strings.TrimSpace(p.Copyright)
	}
	sb.WriteString(DimStyle.Render(footer))
	return card(Cyan, width, sb.String())
}

func marsWeatherBinding(c *feeds.Client) feedBinding[[]feeds.MarsSol] {
	return feedBinding[[]feeds.MarsSol]{
		request: c.MarsWeather,
		isEmpty: func(v []feeds.MarsSol) bool { return len(v) == 0 },
		empty:   emptyMarsWeather,
		project: renderMarsWeather,
	}
}

// renderMarsWeather shows the latest sol only.
func renderMarsWeather(sols []feeds.MarsSol, width int) string {
	sol := sols[0]
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(fmt.Sprintf("Latest Mars Weather (Sol %s)", orNA(sol.Sol.String()))))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Terrestrial Date: %s\n", orNA(formatDate(sol.TerrestrialDate))))
	sb.WriteString(fmt.Sprintf("Min Temp: %s°C\n", orNA(sol.MinTemp.String())))
	sb.WriteString(fmt.Sprintf("Max Temp: %s°C\n", orNA(sol.MaxTemp.String())))
	sb.WriteString(fmt.Sprintf("Pressure: %s Pa\n", orNA(sol.Pressure.String())))
	sb.WriteString(fmt.Sprintf("Sunrise: %s\n", formatClock(sol.Sunrise)))
	sb.WriteString(fmt.Sprintf("Sunset: %s", formatClock(sol.Sunset)))
	return card(Orange, width, sb.String())
}

func stationPositionBinding(c *feeds.Client, interval time.Duration) feedBinding[feeds.StationPosition] {
	return feedBinding[feeds.StationPosition]{
		request:  c.StationPosition,
		interval: interval,
		isEmpty: func(v feeds.StationPosition) bool {
			return v.Position.Latitude == "" && v.Position.Longitude == ""
		},
		empty:   emptyStationPosition,
		project: renderStationPosition,
	}
}

func renderStationPosition(pos feeds.StationPosition, width int) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Current ISS Position"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Latitude: %s, Longitude: %s\n", pos.Position.Latitude, pos.Position.Longitude))
	if pos.Timestamp > 0 {
		sb.WriteString(DimStyle.Render("Updated " + time.Unix(pos.Timestamp, 0).Local().Format("15:04:05 MST")))
	}
	return card(Cyan, width, sb.String())
}

func launchesBinding(c *feeds.Client) feedBinding[[]feeds.Launch] {
	return feedBinding[[]feeds.Launch]{
		request: c.Launches,
		isEmpty: func(v []feeds.Launch) bool { return len(v) == 0 },
		empty:   emptyLaunches,
		project: renderLaunches,
	}
}

func renderLaunches(launches []feeds.Launch, width int) string {
	cards := make([]string, 0, len(launches))
	for _, l := range launches {
		var sb strings.Builder
		sb.WriteString(TitleStyle.Render("🚀 " + l.Name))
		sb.WriteString("\n")
		sb.WriteString(DimStyle.Render(formatLocalTime(l.DateUTC)))
		sb.WriteString("\n")
		details := "No details available."
		if l.Details != nil && strings.TrimSpace(*l.Details) != "" {
			details = *l.Details
		}
		sb.WriteString(details)
		for _, link := range []struct {
			label string
			url   *string
		}{
			{"Webcast", l.Links.Webcast},
			{"Article", l.Links.Article},
			{"Wikipedia", l.Links.Wikipedia},
		} {
			if link.url != nil && *link.url != "" {
				sb.WriteString(fmt.Sprintf("\n%s: %s", link.label, *link.url))
			}
		}
		cards = append(cards, card(Cyan, width, sb.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}
