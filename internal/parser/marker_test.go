package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkers_RequiresWeightMarker(t *testing.T) {
	text := "新竹7314270806 已合箱\n1\n申通快遞 773348737609079\n2.75KG\n"
	assert.Nil(t, ParseMarkers(text))
}

func TestParseMarkers(t *testing.T) {
	records := ParseMarkers(loadTestdata(t, "markers.txt"))
	require.Len(t, records, 2)

	assert.Equal(t, "申通快遞", records[0].Courier)
	assert.Equal(t, "3 個包裹", records[0].PackageCountLabel)
	assert.Equal(t, humidifier, records[0].ProductName)
	assert.Equal(t, "中通快遞", records[1].Courier)
	assert.Equal(t, "0.3KG", records[1].Weight)
}

func TestMarkerSpans(t *testing.T) {
	text := "新竹7314270806 a\nfirst\n新竹7431005481 b\nsecond"

	spans := markerSpans(text)
	require.Len(t, spans, 2)
	assert.Equal(t, "7314270806", spans[0].shipmentID)
	assert.Equal(t, "新竹7314270806 a\nfirst\n", spans[0].text)
	assert.Equal(t, "7431005481", spans[1].shipmentID)
	assert.Equal(t, "新竹7431005481 b\nsecond", spans[1].text)
}

func TestProductPool(t *testing.T) {
	text := "新竹7314270806 已合箱包裹共三件請查收\n" +
		"申通快遞 773348737609079\n" +
		"包裹重量: 2.75KG\n" +
		"40.4 x 28.7 x 33.1 CM ，2才\n" +
		"太短\n" +
		humidifier + "\n" +
		"  " + keychain + "  \n"

	assert.Equal(t, []string{humidifier, keychain}, productPool(text))
}

func TestFillFromFixture(t *testing.T) {
	fixture := owlFixture()
	found := []PackageRecord{
		{ShipmentID: "7314270806", Courier: "德邦快递", TrackingNumber: "DPK364726554807"},
	}

	t.Run("skips extracted tracking numbers", func(t *testing.T) {
		fields := shipmentFields{packageCount: UnknownValue, status: StatusNotFound}
		out := fillFromFixture(found, fixture, fields)

		require.Len(t, out, 3)
		assert.Equal(t, "DPK364726554807", out[0].TrackingNumber)
		assert.Equal(t, "773348737609079", out[1].TrackingNumber)
		assert.Equal(t, "78896609460309", out[2].TrackingNumber)
		assert.Equal(t, "3 個包裹", out[1].PackageCountLabel)
		assert.Empty(t, out[1].Status)
	})

	t.Run("takes shipment fields from the span", func(t *testing.T) {
		fields := shipmentFields{packageCount: "3", status: "2025-04-17 12:36:00 已送達"}
		out := fillFromFixture(found, fixture, fields)

		require.Len(t, out, 3)
		assert.Equal(t, "2025-04-17 12:36:00 已送達", out[2].Status)
		assert.Equal(t, "7314270806", out[2].ShipmentID)
	})

	t.Run("stops at expected count", func(t *testing.T) {
		short := fixture
		short.ExpectedCount = 2
		fields := shipmentFields{packageCount: UnknownValue, status: StatusNotFound}

		out := fillFromFixture(found, short, fields)
		assert.Len(t, out, 2)
	})
}

func TestEnrichFromFixture(t *testing.T) {
	rec := PackageRecord{TrackingNumber: "773348737609079", Dimensions: "kept"}
	enrichFromFixture(&rec, owlFixture())

	assert.Equal(t, humidifier, rec.ProductName)
	assert.Equal(t, "kept", rec.Dimensions)

	other := PackageRecord{TrackingNumber: "UNKNOWN0001"}
	enrichFromFixture(&other, owlFixture())
	assert.Empty(t, other.ProductName)
}
