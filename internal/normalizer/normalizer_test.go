package normalizer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripfares/internal/providers"
	"github.com/dharmasatrya/tripfares/internal/providers/data"
)

func fixtureOffer(t *testing.T, dest, id string) providers.Offer {
	t.Helper()
	var all map[string][]providers.Offer
	require.NoError(t, json.Unmarshal(data.Offers, &all))
	for _, o := range all[dest] {
		if o.ID == id {
			return o
		}
	}
	t.Fatalf("fixture %s/%s not found", dest, id)
	return providers.Offer{}
}

func TestNormalizeDirect(t *testing.T) {
	n := New()
	opt, ok := n.Normalize(fixtureOffer(t, "ICN", "off_icn_ke_direct"), 1)
	require.True(t, ok)

	assert.Equal(t, "ICN", opt.Destination)
	assert.Equal(t, 1190, opt.TotalAmountPerPerson)
	assert.Equal(t, "EUR", opt.Currency)
	assert.Equal(t, "Economy", opt.Cabin)
	assert.True(t, opt.BaggageIncluded)

	require.Len(t, opt.Outbound, 1)
	seg := opt.Outbound[0]
	assert.Equal(t, 0, seg.Stops)
	assert.Nil(t, seg.ConnectionMinutes)
	assert.Equal(t, 705, seg.DurationMinutes)
	assert.Equal(t, "914", seg.FlightNumber)

	require.Len(t, opt.Airlines, 1)
	assert.Equal(t, "Korean Air", opt.Airlines[0].Name)
}

func TestNormalizeConnectionsAndRounding(t *testing.T) {
	n := New()
	opt, ok := n.Normalize(fixtureOffer(t, "ICN", "off_icn_tk_ist"), 1)
	require.True(t, ok)

	// 845.50 rounds half away from zero.
	assert.Equal(t, 846, opt.TotalAmountPerPerson)

	out := opt.Outbound[0]
	assert.Equal(t, 1, out.Stops)
	assert.Equal(t, "IST", out.ConnectionAirport)
	require.NotNil(t, out.ConnectionMinutes)
	assert.Equal(t, 510, *out.ConnectionMinutes)

	ret := opt.Inbound[0]
	require.NotNil(t, ret.ConnectionMinutes)
	assert.Equal(t, 185, *ret.ConnectionMinutes)

	// Only the first segment carries slice-level connection data.
	assert.Equal(t, 0, opt.Outbound[1].Stops)
	assert.Nil(t, opt.Outbound[1].ConnectionMinutes)

	opt, ok = n.Normalize(fixtureOffer(t, "ICN", "off_icn_tk_ist"), 2)
	require.True(t, ok)
	assert.Equal(t, 423, opt.TotalAmountPerPerson)
}

func TestNormalizeBaggage(t *testing.T) {
	n := New()

	opt, ok := n.Normalize(fixtureOffer(t, "GMP", "off_gmp_ca_pek"), 1)
	require.True(t, ok)
	assert.False(t, opt.BaggageIncluded)

	opt, ok = n.Normalize(fixtureOffer(t, "GMP", "off_gmp_mu_pvg"), 1)
	require.True(t, ok)
	assert.True(t, opt.BaggageIncluded)

	n.DefaultBaggageIncluded = false
	opt, ok = n.Normalize(fixtureOffer(t, "GMP", "off_gmp_mu_pvg"), 1)
	require.True(t, ok)
	assert.False(t, opt.BaggageIncluded)
}

func TestNormalizeTimezones(t *testing.T) {
	opt, ok := New().Normalize(fixtureOffer(t, "ICN", "off_icn_ke_direct"), 1)
	require.True(t, ok)

	seg := opt.Outbound[0]
	assert.Equal(t, time.Date(2025, 1, 6, 20, 10, 0, 0, time.UTC), seg.Departure.UTC())
	assert.Equal(t, time.Date(2025, 1, 7, 7, 55, 0, 0, time.UTC), seg.Arrival.UTC())
}

func TestNormalizeDurationFallback(t *testing.T) {
	offer := fixtureOffer(t, "ICN", "off_icn_ke_direct")
	offer.Slices[0].Segments[0].Duration = ""

	opt, ok := New().Normalize(offer, 1)
	require.True(t, ok)
	assert.Equal(t, 705, opt.Outbound[0].DurationMinutes)
}

func TestNormalizeDrops(t *testing.T) {
	n := New()
	valid := fixtureOffer(t, "ICN", "off_icn_ke_direct")

	oneWay := valid
	oneWay.Slices = valid.Slices[:1]
	_, ok := n.Normalize(oneWay, 1)
	assert.False(t, ok, "one slice")

	empty := fixtureOffer(t, "ICN", "off_icn_ke_direct")
	empty.Slices[1].Segments = nil
	_, ok = n.Normalize(empty, 1)
	assert.False(t, ok, "empty slice")

	badTime := fixtureOffer(t, "ICN", "off_icn_ke_direct")
	badTime.Slices[0].Segments[0].DepartingAt = "tomorrow"
	_, ok = n.Normalize(badTime, 1)
	assert.False(t, ok, "bad timestamp")

	free := fixtureOffer(t, "ICN", "off_icn_ke_direct")
	free.TotalAmount = "0.00"
	_, ok = n.Normalize(free, 1)
	assert.False(t, ok, "zero price")

	garbled := fixtureOffer(t, "ICN", "off_icn_ke_direct")
	garbled.TotalAmount = "n/a"
	_, ok = n.Normalize(garbled, 1)
	assert.False(t, ok, "unparsable price")
}
