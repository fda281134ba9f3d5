package shipping_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/pkg/shipping"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestCreateManifest(t *testing.T) {
	var gotAuth string
	var gotReq shipping.ManifestRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/manifests", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(shipping.Manifest{
			ManifestID:     "mf-1",
			TrackingNumber: "TRK123",
			LabelURL:       "https://carrier.example/labels/mf-1.pdf",
		})
	}))
	defer server.Close()

	client := shipping.NewClient(shipping.Config{BaseURL: server.URL, APIKey: "carrier-key"})

	manifest, err := client.CreateManifest(shipping.ManifestRequest{
		OrderID:   "order-1",
		Name:      "A Customer",
		Phone:     "+15550100",
		Address:   "1 Test Street",
		City:      "Testville",
		CODAmount: 60,
	})
	assert.NoError(t, err)
	assert.Equal(t, "mf-1", manifest.ManifestID)
	assert.Equal(t, "TRK123", manifest.TrackingNumber)

	assert.Equal(t, "Bearer carrier-key", gotAuth)
	assert.Equal(t, "order-1", gotReq.OrderID)
	assert.Equal(t, 60.0, gotReq.CODAmount)
}

func TestTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/track/TRK123", r.URL.Path)
		json.NewEncoder(w).Encode(shipping.TrackingStatus{
			TrackingNumber: "TRK123",
			Status:         "delivered",
			Description:    "Left at front door",
		})
	}))
	defer server.Close()

	client := shipping.NewClient(shipping.Config{BaseURL: server.URL})

	status, err := client.Track("TRK123")
	assert.NoError(t, err)
	assert.Equal(t, "delivered", status.Status)
}

func TestCarrierErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unknown shipment"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := shipping.NewClient(shipping.Config{BaseURL: server.URL})

	_, err := client.Track("NOPE")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "carrier returned 404")
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := shipping.NewClient(shipping.Config{BaseURL: server.URL})

	for i := 0; i < 5; i++ {
		_, err := client.Track("TRK123")
		assert.Error(t, err)
	}

	// The breaker is now open and rejects without calling the carrier
	_, err := client.Track("TRK123")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
