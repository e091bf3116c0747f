// Package providertest runs a fake flight-radar upstream for tests.
package providertest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"infinite-experiment/airtrack/internal/config"
)

const (
	TestAPIHost = "flight-radar.test"
	TestAPIKey  = "test-key"
)

// SearchJSON is a search payload with one selectable and one non-selectable row.
const SearchJSON = `{
  "results": [
    {"id": "A1", "label": "AF123", "type": "schedule", "detail": {"flight": "AF123"}},
    {"id": "AFR", "label": "Air France", "type": "operator", "detail": {"operator": "AFR", "operator_id": 42, "logo": "https://logo/afr.png"}},
    {"id": "L9", "label": "AF123 live", "type": "live", "detail": {"callsign": "AFR123", "flight": "AF123"}}
  ],
  "stats": {"total": {"all": 3, "airport": 0, "operator": 1, "live": 1, "schedule": 1, "aircraft": 0}}
}`

// DetailJSON is a detail payload whose trail is newest-first.
const DetailJSON = `{
  "identification": {"id": "A1", "number": {"default": "AF123", "alternative": null}, "callsign": "AFR123"},
  "status": {"live": true, "text": "Estimated- 14:05", "icon": "green", "generic": {"status": {"text": "estimated", "color": "green", "type": "arrival"}}},
  "aircraft": {
    "model": {"code": "A320", "text": "Airbus A320-214"},
    "registration": "F-HEPA",
    "images": {
      "thumbnails": [{"src": "https://img/t1.jpg", "link": "https://img/1", "copyright": "Jane", "source": "Spotters"}],
      "medium": [],
      "large": []
    }
  },
  "airline": {"name": "Air France", "code": {"iata": "AF", "icao": "AFR"}},
  "airport": {
    "origin": {"name": "Paris Charles de Gaulle Airport", "code": {"iata": "CDG", "icao": "LFPG"},
      "position": {"latitude": 49.0097, "longitude": 2.5479, "altitude": 392, "country": {"name": "France", "code": "FR"}, "region": {"city": "Paris"}}},
    "destination": {"name": "London Heathrow Airport", "code": {"iata": "LHR", "icao": "EGLL"},
      "position": {"latitude": 51.47, "longitude": -0.4543, "altitude": 83, "country": {"name": "United Kingdom", "code": "GB"}, "region": {"city": "London"}}}
  },
  "time": {
    "scheduled": {"departure": 1700000000, "arrival": 1700004800},
    "real": {"departure": 1700000300, "arrival": null},
    "estimated": {"departure": null, "arrival": 1700005000}
  },
  "trail": [
    {"lat": 1, "lng": 1, "alt": 35000, "spd": 450, "ts": 1700002000, "hd": 315},
    {"lat": 2, "lng": 2, "alt": 30000, "spd": 430, "ts": 1700001900, "hd": 310}
  ]
}`

// Upstream is a fake search/detail API that counts requests.
type Upstream struct {
	Server *httptest.Server

	SearchCalls atomic.Int32
	DetailCalls atomic.Int32

	mu           sync.Mutex
	searchStatus int
	searchBody   string
	detailStatus int
	detailBodies map[string]string
	detailBody   string
	gate         chan struct{}
	lastQuery    url.Values
	lastHeader   http.Header
}

// New starts an upstream serving SearchJSON and DetailJSON. It is closed on test cleanup.
func New(t testing.TB) *Upstream {
	t.Helper()

	u := &Upstream{
		searchStatus: http.StatusOK,
		searchBody:   SearchJSON,
		detailStatus: http.StatusOK,
		detailBody:   DetailJSON,
		detailBodies: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/flights/search", func(w http.ResponseWriter, r *http.Request) {
		u.SearchCalls.Add(1)
		status, body := u.record(r, func() (int, string) { return u.searchStatus, u.searchBody })
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
	mux.HandleFunc("/flights/detail", func(w http.ResponseWriter, r *http.Request) {
		u.DetailCalls.Add(1)
		status, body := u.record(r, func() (int, string) {
			if b, ok := u.detailBodies[r.URL.Query().Get("flight")]; ok {
				return u.detailStatus, b
			}
			return u.detailStatus, u.detailBody
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})

	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Server.Close)
	return u
}

func (u *Upstream) record(r *http.Request, pick func() (int, string)) (int, string) {
	u.mu.Lock()
	u.lastQuery = r.URL.Query()
	u.lastHeader = r.Header.Clone()
	gate := u.gate
	u.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return pick()
}

// Config points an UpstreamConfig at the fake server, without throttling.
func (u *Upstream) Config() config.UpstreamConfig {
	return config.UpstreamConfig{
		BaseURL: u.Server.URL,
		Host:    TestAPIHost,
		APIKey:  TestAPIKey,
		Timeout: 5 * time.Second,
	}
}

func (u *Upstream) SetSearch(status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.searchStatus = status
	u.searchBody = body
}

func (u *Upstream) SetDetail(status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.detailStatus = status
	u.detailBody = body
}

// SetDetailFor serves body for one flight id only.
func (u *Upstream) SetDetailFor(flightID, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.detailBodies[flightID] = body
}

// Hold makes every request block until the returned release func is called.
func (u *Upstream) Hold() (release func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	gate := make(chan struct{})
	u.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			u.mu.Lock()
			u.gate = nil
			u.mu.Unlock()
			close(gate)
		})
	}
}

func (u *Upstream) LastQuery() url.Values {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastQuery
}

func (u *Upstream) LastHeader() http.Header {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastHeader
}
