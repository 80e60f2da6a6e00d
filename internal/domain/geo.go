package domain

import "math"

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Haversine returns the great-circle distance between two coordinates in
// kilometres.
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DetourCost measures how far p deviates from the direct start-to-end path:
// d(p,start) + d(p,end) - d(start,end). Zero means p lies on the path.
func DetourCost(p, start, end Coordinate) float64 {
	return Haversine(p, start) + Haversine(p, end) - Haversine(start, end)
}

// Interpolate returns n points evenly spaced along the straight line between
// start and end, excluding both endpoints. Linear interpolation in degrees is
// accurate enough at the sub-thousand-kilometre scales routes cover.
func Interpolate(start, end Coordinate, n int) []Coordinate {
	if n <= 0 {
		return nil
	}
	points := make([]Coordinate, 0, n)
	for i := 1; i <= n; i++ {
		f := float64(i) / float64(n+1)
		points = append(points, Coordinate{
			Lat: start.Lat + (end.Lat-start.Lat)*f,
			Lon: start.Lon + (end.Lon-start.Lon)*f,
		})
	}
	return points
}
