package geodesy

import (
	"math"

	geo "github.com/kellydunn/golang-geo"
)

// The geodesy package provides the geodetic calculations that callers
// of the decoders tend to want - the distance and heading between two
// track points and conversion to Earth-centred cartesian coordinates.
// The decoding and fusion packages don't use it themselves.

// WGS84 ellipsoid parameters.
const semiMajorAxis = 6378137.0
const flattening = 1.0 / 298.257223563

// Position is a geodetic position - degrees, negative south and west,
// height in metres above the ellipsoid.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Height    float64 `json:"height"`
}

// Distance returns the great circle distance between two positions in
// metres, ignoring the heights.
func Distance(a, b Position) float64 {
	from := geo.NewPoint(a.Latitude, a.Longitude)
	to := geo.NewPoint(b.Latitude, b.Longitude)
	// GreatCircleDistance works in kilometres.
	return from.GreatCircleDistance(to) * 1000
}

// Heading returns the initial bearing from a to b in degrees clockwise
// from true north, 0 to 360.
func Heading(a, b Position) float64 {
	from := geo.NewPoint(a.Latitude, a.Longitude)
	to := geo.NewPoint(b.Latitude, b.Longitude)
	bearing := from.BearingTo(to)
	if bearing < 0 {
		bearing += 360
	}
	return bearing
}

// ToECEF converts a position to Earth-centred Earth-fixed cartesian
// coordinates in metres on the WGS84 ellipsoid.
func ToECEF(p Position) (x, y, z float64) {

	latitude := p.Latitude * math.Pi / 180
	longitude := p.Longitude * math.Pi / 180

	sinLat := math.Sin(latitude)
	cosLat := math.Cos(latitude)

	// Prime vertical radius of curvature.
	e2 := flattening * (2 - flattening)
	n := semiMajorAxis / math.Sqrt(1-e2*sinLat*sinLat)

	x = (n + p.Height) * cosLat * math.Cos(longitude)
	y = (n + p.Height) * cosLat * math.Sin(longitude)
	z = (n*(1-e2) + p.Height) * sinLat
	return x, y, z
}
