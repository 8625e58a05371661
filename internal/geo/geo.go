// Package geo provides the small location helpers used when recording
// punches: great-circle distance for punch-site checks and address
// label formatting.
package geo

import (
	"math"
	"strings"
)

const earthRadiusMeters = 6371000

// HaversineMeters returns the great-circle distance between two
// lat/lng points in meters.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLng/2), 2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

// WithinRadius reports whether a point is within radiusMeters of a
// site.
func WithinRadius(lat, lng, siteLat, siteLng, radiusMeters float64) bool {
	return HaversineMeters(lat, lng, siteLat, siteLng) <= radiusMeters
}

// FormatAddress joins the non-empty parts of a reverse-geocoded
// address into the label stored on a punch. Returns "" when nothing is
// known.
func FormatAddress(street, city string) string {
	var parts []string
	if street != "" {
		parts = append(parts, street)
	}
	if city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}
