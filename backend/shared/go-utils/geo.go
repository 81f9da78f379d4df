package utils

import (
	"time"

	"github.com/bradfitz/latlong"
	"github.com/umahmood/haversine"
)

// DistanceMeters is the great-circle distance between two WGS84 points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lng1},
		haversine.Coord{Lat: lat2, Lon: lng2},
	)
	return km * 1000
}

// WithinRadius reports the distance and whether it falls inside radiusM.
func WithinRadius(lat1, lng1, lat2, lng2 float64, radiusM int) (float64, bool) {
	d := DistanceMeters(lat1, lng1, lat2, lng2)
	return d, d <= float64(radiusM)
}

// TimeZoneFor resolves an IANA zone for coordinates, falling back to
// Asia/Bangkok when the lookup has no answer.
func TimeZoneFor(lat, lng float64) string {
	if name := latlong.LookupZoneName(lat, lng); name != "" {
		return name
	}
	return DefaultTimeZone
}

// LoadLocation never fails: unknown zones fall back to Asia/Bangkok, then UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimeZone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimeZone); err == nil {
		return loc
	}
	return time.UTC
}
