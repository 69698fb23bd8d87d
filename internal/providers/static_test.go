package providers

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProviderRebasesDates(t *testing.T) {
	p, err := NewStaticProvider(0)
	require.NoError(t, err)

	offers, err := p.Search(context.Background(), SearchRequest{
		Origin: "MAD", Destination: "ICN", DepartureDate: "2025-11-10", ReturnDate: "2025-11-19", Passengers: 1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, offers)

	for _, o := range offers {
		require.Len(t, o.Slices, 2)
		out := o.Slices[0].Segments
		ret := o.Slices[1].Segments
		assert.Equal(t, "2025-11-10", out[0].DepartingAt[:10], o.ID)
		assert.Equal(t, "2025-11-19", ret[0].DepartingAt[:10], o.ID)
		assert.Equal(t, "MAD", out[0].Origin.IATACode)
		assert.Equal(t, "MAD", ret[len(ret)-1].Destination.IATACode)
	}
}

func TestStaticProviderPricesScaleWithPassengers(t *testing.T) {
	p, err := NewStaticProvider(0)
	require.NoError(t, err)

	req := SearchRequest{Origin: "BCN", Destination: "GMP", DepartureDate: "2025-11-10", ReturnDate: "2025-11-19", Passengers: 1}
	one, err := p.Search(context.Background(), req)
	require.NoError(t, err)

	req.Passengers = 3
	three, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, len(one), len(three))

	for i := range one {
		a, _ := strconv.ParseFloat(one[i].TotalAmount, 64)
		b, _ := strconv.ParseFloat(three[i].TotalAmount, 64)
		assert.InDelta(t, a*3, b, 0.05)
		assert.NotEqual(t, one[i].ID, three[i].ID)
	}
}

func TestStaticProviderUnknownDestination(t *testing.T) {
	p, err := NewStaticProvider(0)
	require.NoError(t, err)

	offers, err := p.Search(context.Background(), SearchRequest{
		Origin: "BCN", Destination: "XXX", DepartureDate: "2025-11-10", ReturnDate: "2025-11-19", Passengers: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestStaticProviderHonoursContext(t *testing.T) {
	p, err := NewStaticProvider(time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = p.Search(ctx, SearchRequest{Origin: "BCN", Destination: "ICN", DepartureDate: "2025-11-10", ReturnDate: "2025-11-19"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPriceFactorRange(t *testing.T) {
	for _, d := range []string{"2025-11-01", "2025-11-02", "2026-03-30"} {
		f := priceFactor("ICN", d)
		assert.GreaterOrEqual(t, f, 0.85)
		assert.LessOrEqual(t, f, 1.25)
		assert.Equal(t, f, priceFactor("icn", d))
	}
}
