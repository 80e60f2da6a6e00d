package openweather

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormline/advisory/internal/domain"
)

// countingGeocoder records call counts and returns canned results.
type countingGeocoder struct {
	forwardCalls int
	reverseCalls int
	result       domain.GeocodingResult
	err          error
}

func (g *countingGeocoder) ForwardGeocode(ctx context.Context, name string) (domain.GeocodingResult, error) {
	g.forwardCalls++
	return g.result, g.err
}

func (g *countingGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	g.reverseCalls++
	return g.result, g.err
}

func TestCachedGeocoder(t *testing.T) {
	ctx := context.Background()

	t.Run("forward hits cache on repeat", func(t *testing.T) {
		inner := &countingGeocoder{result: domain.GeocodingResult{Name: "Chennai", Lat: 13.08, Lon: 80.27}}
		cached := NewCachedGeocoder(inner, 10)

		first, err := cached.ForwardGeocode(ctx, "chennai")
		require.NoError(t, err)
		second, err := cached.ForwardGeocode(ctx, "chennai")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.forwardCalls)
	})

	t.Run("reverse hits cache on repeat", func(t *testing.T) {
		inner := &countingGeocoder{result: domain.GeocodingResult{Name: "Villupuram"}}
		cached := NewCachedGeocoder(inner, 10)

		_, err := cached.ReverseGeocode(ctx, 11.94, 79.49)
		require.NoError(t, err)
		_, err = cached.ReverseGeocode(ctx, 11.94, 79.49)
		require.NoError(t, err)

		assert.Equal(t, 1, inner.reverseCalls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &countingGeocoder{err: errors.New("provider down")}
		cached := NewCachedGeocoder(inner, 10)

		_, err := cached.ForwardGeocode(ctx, "chennai")
		require.Error(t, err)
		_, err = cached.ForwardGeocode(ctx, "chennai")
		require.Error(t, err)

		assert.Equal(t, 2, inner.forwardCalls)
	})

	t.Run("empty results are not cached", func(t *testing.T) {
		inner := &countingGeocoder{}
		cached := NewCachedGeocoder(inner, 10)

		_, err := cached.ForwardGeocode(ctx, "chennai")
		require.NoError(t, err)
		_, err = cached.ForwardGeocode(ctx, "chennai")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.forwardCalls)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		inner := &countingGeocoder{result: domain.GeocodingResult{Name: "X"}}
		cached := NewCachedGeocoder(inner, 2)

		_, _ = cached.ForwardGeocode(ctx, "a")
		_, _ = cached.ForwardGeocode(ctx, "b")
		_, _ = cached.ForwardGeocode(ctx, "a") // refresh a
		_, _ = cached.ForwardGeocode(ctx, "c") // evicts b
		_, _ = cached.ForwardGeocode(ctx, "a") // hit
		_, _ = cached.ForwardGeocode(ctx, "b") // miss

		assert.Equal(t, 4, inner.forwardCalls)
	})
}
