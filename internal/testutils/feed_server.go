// Package testutils provides a fake cbr.ru feed for tests.
package testutils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// FeedPoint is one published rate of the fake feed
type FeedPoint struct {
	Date  string // dd.mm.yyyy
	Value string // decimal comma
}

type rawResponse struct {
	status int
	body   []byte
}

// MockCBRServer serves XML_dynamic.asp responses from in-memory series.
// Responses are windows-1251 encoded like the real feed.
type MockCBRServer struct {
	server *httptest.Server

	mu     sync.RWMutex
	series map[string][]FeedPoint
	raw    map[string]rawResponse

	hits atomic.Int64
}

// NewMockCBRServer creates a fake feed preloaded with DefaultSeries
func NewMockCBRServer() *MockCBRServer {
	m := &MockCBRServer{
		series: DefaultSeries(),
		raw:    make(map[string]rawResponse),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handler))
	return m
}

// URL returns the endpoint to use as the client base URL
func (m *MockCBRServer) URL() string {
	return m.server.URL + "/scripts/XML_dynamic.asp"
}

// Close shuts the server down
func (m *MockCBRServer) Close() {
	m.server.Close()
}

// Hits returns how many requests reached the server
func (m *MockCBRServer) Hits() int {
	return int(m.hits.Load())
}

// SetSeries replaces the published rates of a currency
func (m *MockCBRServer) SetSeries(code string, points []FeedPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[code] = points
}

// SetRawResponse makes every request for code answer with status and body verbatim
func (m *MockCBRServer) SetRawResponse(code string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw[code] = rawResponse{status: status, body: []byte(body)}
}

func (m *MockCBRServer) handler(w http.ResponseWriter, r *http.Request) {
	m.hits.Add(1)

	query := r.URL.Query()
	code := query.Get("VAL_NM_RQ")

	m.mu.RLock()
	raw, hasRaw := m.raw[code]
	points := m.series[code]
	m.mu.RUnlock()

	if hasRaw {
		w.WriteHeader(raw.status)
		w.Write(raw.body)
		return
	}

	from, err1 := time.Parse("02/01/2006", query.Get("date_req1"))
	to, err2 := time.Parse("02/01/2006", query.Get("date_req2"))
	if err1 != nil || err2 != nil {
		// the real feed answers a bad range with an empty document too
		from, to = time.Time{}, time.Time{}
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="windows-1251"?>` + "\n")
	sb.WriteString(fmt.Sprintf(`<ValCurs ID="%s" DateRange1="%s" DateRange2="%s" name="Foreign Currency Market Dynamic">`,
		code, from.Format("02.01.2006"), to.Format("02.01.2006")))
	sb.WriteString("<!-- Динамика курса -->")
	for _, p := range points {
		date, err := time.Parse("02.01.2006", p.Date)
		if err != nil || date.Before(from) || date.After(to) {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<Record Date="%s" Id="%s"><Nominal>1</Nominal><Value>%s</Value></Record>`,
			p.Date, code, p.Value))
	}
	sb.WriteString("</ValCurs>")

	body, err := charmap.Windows1251.NewEncoder().String(sb.String())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=windows-1251")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// DefaultSeries returns USD, EUR and GBP rates around the 2021 new year holidays.
// The feed publishes nothing between 01.01.2021 and 12.01.2021.
func DefaultSeries() map[string][]FeedPoint {
	return map[string][]FeedPoint{
		"R01235": {
			{"24.12.2020", "75,5379"},
			{"25.12.2020", "75,2543"},
			{"26.12.2020", "74,4576"},
			{"29.12.2020", "74,0496"},
			{"30.12.2020", "73,9197"},
			{"31.12.2020", "73,8757"},
			{"01.01.2021", "73,8757"},
			{"12.01.2021", "74,2355"},
			{"13.01.2021", "73,9278"},
			{"14.01.2021", "73,5919"},
			{"15.01.2021", "73,4002"},
			{"16.01.2021", "73,5453"},
		},
		"R01239": {
			{"29.12.2020", "90,6824"},
			{"30.12.2020", "90,8116"},
			{"31.12.2020", "90,6824"},
			{"01.01.2021", "90,6824"},
			{"12.01.2021", "90,3044"},
			{"13.01.2021", "90,2941"},
			{"14.01.2021", "89,7181"},
			{"15.01.2021", "89,6457"},
			{"16.01.2021", "89,2546"},
		},
		"R01035": {
			{"31.12.2020", "100,0425"},
			{"01.01.2021", "100,0425"},
			{"14.01.2021", "100,5290"},
			{"15.01.2021", "100,3115"},
			{"16.01.2021", "100,3599"},
		},
	}
}
