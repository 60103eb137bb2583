package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL:      srv.URL,
		UserAgent:    "bloodlink-test/1.0",
		CountryCodes: "in",
		Language:     "en",
		Clock:        clockwork.NewFakeClock(),
	})
}

func TestClient_Search_TextQuery(t *testing.T) {
	var gotQuery map[string]string
	var gotUserAgent string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"13.0827","lon":"80.2707","display_name":"Chennai, Tamil Nadu, India"}]`))
	})

	places, err := client.Search(context.Background(), SearchParams{Query: "Adyar, Chennai", Limit: 3})
	require.NoError(t, err)
	require.Len(t, places, 1)

	assert.Equal(t, 13.0827, places[0].Lat)
	assert.Equal(t, 80.2707, places[0].Lon)
	assert.Equal(t, "Chennai, Tamil Nadu, India", places[0].DisplayName)

	assert.Equal(t, "bloodlink-test/1.0", gotUserAgent)
	assert.Equal(t, "Adyar, Chennai", gotQuery["q"])
	assert.Equal(t, "jsonv2", gotQuery["format"])
	assert.Equal(t, "1", gotQuery["addressdetails"])
	assert.Equal(t, "3", gotQuery["limit"])
	assert.Equal(t, "in", gotQuery["countrycodes"])
	assert.Equal(t, "en", gotQuery["accept-language"])
}

func TestClient_Search_PostalCodeQuery(t *testing.T) {
	var gotQuery url.Values

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	})

	places, err := client.Search(context.Background(), SearchParams{PostalCode: "600041", Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, places)

	assert.Equal(t, "600041", gotQuery.Get("postalcode"))
	assert.Empty(t, gotQuery.Get("q"))
}

func TestClient_Search_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), SearchParams{Query: "Chennai"})
	assert.Error(t, err)
}

func TestClient_Search_BadCoordinate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"80.27"}]`))
	})

	_, err := client.Search(context.Background(), SearchParams{Query: "Chennai"})
	assert.Error(t, err)
}

func TestIntervalGate_EnforcesMinimumSpacing(t *testing.T) {
	fc := clockwork.NewFakeClock()
	gate := newIntervalGate(fc, 1100*time.Millisecond)

	// First caller goes straight through.
	require.NoError(t, gate.wait(context.Background()))

	// Second caller must wait out the interval.
	done := make(chan error, 1)
	go func() {
		done <- gate.wait(context.Background())
	}()

	fc.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("second call should be gated until the interval elapses")
	default:
	}

	fc.Advance(1100 * time.Millisecond)
	require.NoError(t, <-done)
}

func TestIntervalGate_CancelledContext(t *testing.T) {
	fc := clockwork.NewFakeClock()
	gate := newIntervalGate(fc, 1100*time.Millisecond)

	require.NoError(t, gate.wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- gate.wait(ctx)
	}()

	fc.BlockUntil(1)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
