package feeds

// ID names a feed.
type ID string

const (
	NearEarthObjects ID = "neo"
	PictureOfTheDay  ID = "apod"
	MarsWeather      ID = "mars-weather"
	StationLocation  ID = "iss"
	Launches         ID = "spacex-launches"
)

// Info describes a feed for menus and summaries.
type Info struct {
	ID          ID
	Name        string
	Description string
	Path        string
	Polled      bool
}

// Catalog lists the feeds in display order.
var Catalog = []Info{
	{NearEarthObjects, "Near-Earth Objects", "Track asteroids and comets approaching Earth.", PathNearEarthObjects, false},
	{PictureOfTheDay, "Astronomy Picture of the Day", "Discover the universe, one picture at a time.", PathPictureOfDay, false},
	{MarsWeather, "Mars Weather", "Daily weather updates from the Red Planet.", PathMarsWeather, false},
	{StationLocation, "ISS Location", "Real-time location of the International Space Station.", PathStationPosition, true},
	{Launches, "SpaceX Launches", "Stay informed about future SpaceX missions.", PathLaunches, false},
}

// Lookup returns the catalog entry for id.
func Lookup(id ID) (Info, bool) {
	for _, info := range Catalog {
		if info.ID == id {
			return info, true
		}
	}
	return Info{}, false
}
