package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chennai = Coordinate{Lat: 13.0827, Lon: 80.2707}
	trichy  = Coordinate{Lat: 10.7905, Lon: 78.7047}
)

func TestHaversine(t *testing.T) {
	t.Run("Chennai to Trichy", func(t *testing.T) {
		d := Haversine(chennai, trichy)
		assert.InDelta(t, 307, d, 5)
	})

	t.Run("zero distance", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(chennai, chennai))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, Haversine(chennai, trichy), Haversine(trichy, chennai), 1e-9)
	})
}

func TestDetourCost(t *testing.T) {
	t.Run("point on the path costs nothing", func(t *testing.T) {
		mid := Coordinate{
			Lat: (chennai.Lat + trichy.Lat) / 2,
			Lon: (chennai.Lon + trichy.Lon) / 2,
		}
		assert.InDelta(t, 0, DetourCost(mid, chennai, trichy), 1)
	})

	t.Run("distant point costs its detour", func(t *testing.T) {
		mumbai := Coordinate{Lat: 19.0760, Lon: 72.8777}
		assert.Greater(t, DetourCost(mumbai, chennai, trichy), 500.0)
	})
}

func TestInterpolate(t *testing.T) {
	t.Run("points are evenly spaced and exclude endpoints", func(t *testing.T) {
		points := Interpolate(chennai, trichy, 3)
		require.Len(t, points, 3)

		assert.InDelta(t, chennai.Lat+(trichy.Lat-chennai.Lat)*0.25, points[0].Lat, 1e-9)
		assert.InDelta(t, chennai.Lat+(trichy.Lat-chennai.Lat)*0.75, points[2].Lat, 1e-9)
		for _, p := range points {
			assert.NotEqual(t, chennai, p)
			assert.NotEqual(t, trichy, p)
		}
	})

	t.Run("non-positive count", func(t *testing.T) {
		assert.Nil(t, Interpolate(chennai, trichy, 0))
		assert.Nil(t, Interpolate(chennai, trichy, -1))
	})
}
