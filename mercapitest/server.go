// Package mercapitest provides an in-process fake of the API for tests. The
// fake verifies the proof-of-possession header of every request, records
// what it received and answers from fixtures registered by the test.
package mercapitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/ggoodman/mercapi-go/internal/dpop"
	"github.com/go-chi/chi/v5"
)

// Endpoint names, matching the client's.
const (
	EndpointSearch      = "search"
	EndpointItem        = "item"
	EndpointProfile     = "profile"
	EndpointSellerItems = "items"
)

// Request is one request received by the server.
type Request struct {
	Endpoint string
	Method   string
	URL      string
	Query    url.Values
	Header   http.Header
	Body     []byte
	Proof    *dpop.Claims
}

// SearchPage is the answer to a search for one page token.
type SearchPage struct {
	Items         []map[string]any
	NextPageToken string
	PrevPageToken string
	// NumFound defaults to len(Items).
	NumFound int
}

type failure struct {
	status      int
	contentType string
	body        string
}

// Server is the fake API.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	items       map[string]map[string]any
	profiles    map[string]map[string]any
	sellerItems map[string][]map[string]any
	search      map[string]SearchPage
	failures    map[string]failure
	requests    []Request
	rejected    int
	verify      *dpop.VerifyConfig
}

// NewServer starts a Server and stops it when t finishes.
func NewServer(t testing.TB) *Server {
	s := &Server{
		items:       make(map[string]map[string]any),
		profiles:    make(map[string]map[string]any),
		sellerItems: make(map[string][]map[string]any),
		search:      make(map[string]SearchPage),
		failures:    make(map[string]failure),
		verify:      dpop.DefaultVerifyConfig(),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/v2/entities:search", s.handleSearch)
	r.Get("/items/get", s.handleItem)
	r.Get("/users/get_profile", s.handleProfile)
	r.Get("/items/get_items", s.handleSellerItems)
	return r
}

// AddItem serves data, the "data" object of the item endpoint, for id.
func (s *Server) AddItem(id string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = data
}

// AddProfile serves data for the user id.
func (s *Server) AddProfile(id string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = data
}

// AddSellerItems serves items as the listings of sellerID.
func (s *Server) AddSellerItems(sellerID string, items ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sellerItems[sellerID] = items
}

// AddSearchPage serves page for searches sent with pageToken. The empty
// token is the first page. Search conditions are not interpreted.
func (s *Server) AddSearchPage(pageToken string, page SearchPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search[pageToken] = page
}

// Fail makes every request to endpoint answer status with the given content
// type and body.
func (s *Server) Fail(endpoint string, status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = failure{status: status, contentType: contentType, body: body}
}

// Requests returns the requests that carried a valid proof, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns how many valid requests hit endpoint.
func (s *Server) RequestCount(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Endpoint == endpoint {
			n++
		}
	}
	return n
}

// Rejected returns how many requests were refused for a missing or invalid
// proof.
func (s *Server) Rejected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejected
}

var endpointByPath = map[string]string{
	"/v2/entities:search": EndpointSearch,
	"/items/get":          EndpointItem,
	"/users/get_profile":  EndpointProfile,
	"/items/get_items":    EndpointSellerItems,
}

// record verifies the proof, stores the request and applies failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": "bad_request"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		htu := "http://" + r.Host + r.URL.RequestURI()
		claims, err := dpop.Verify(r.Header.Get("DPoP"), htu, r.Method, s.verify)
		if err != nil {
			s.mu.Lock()
			s.rejected++
			s.mu.Unlock()
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": "invalid_dpop", "message": err.Error()})
			return
		}

		endpoint := endpointByPath[r.URL.Path]
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Endpoint: endpoint,
			Method:   r.Method,
			URL:      htu,
			Query:    r.URL.Query(),
			Header:   r.Header.Clone(),
			Body:     body,
			Proof:    claims,
		})
		f, failing := s.failures[endpoint]
		s.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", f.contentType)
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageToken string `json:"pageToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "bad_request"})
		return
	}

	s.mu.Lock()
	page, ok := s.search[req.PageToken]
	s.mu.Unlock()
	if !ok {
		page = SearchPage{}
	}
	items := page.Items
	if items == nil {
		items = []map[string]any{}
	}
	numFound := page.NumFound
	if numFound == 0 {
		numFound = len(items)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meta": map[string]any{
			"nextPageToken":     page.NextPageToken,
			"previousPageToken": page.PrevPageToken,
			"numFound":          strconv.Itoa(numFound),
		},
		"items": items,
	})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.items[r.URL.Query().Get("id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"result": "error", "errors": []any{map[string]any{"code": "NotFound"}}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": "OK", "data": data})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.profiles[r.URL.Query().Get("user_id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"result": "error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": "OK", "data": data})
}

func (s *Server) handleSellerItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items, ok := s.sellerItems[r.URL.Query().Get("seller_id")]
	s.mu.Unlock()
	if !ok || items == nil {
		items = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": "OK", "data": items})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
