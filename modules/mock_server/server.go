package mock_server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/ryanuber/go-glob"
)

// AnyMethod matches every request method.
const AnyMethod = "*"

// Route maps a method and a glob path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}

func (r Route) matches(req *http.Request) bool {
	if r.Method != AnyMethod && !strings.EqualFold(r.Method, req.Method) {
		return false
	}
	return glob.Glob(r.Pattern, req.URL.Path)
}

// Request is a request received by the server.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is a local HTTP server with an ordered route table. The first
// registered route matching a request handles it; unmatched requests get a
// 404. Every request is recorded, matched or not.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	routes   []Route
	requests []Request
	incoming <-chan httphelpers.HTTPRequestInfo
}

// New starts a server on a random local port.
func New() *Server {
	s := &Server{}
	recorder, incoming := httphelpers.RecordingHandler(http.HandlerFunc(s.dispatch))
	s.incoming = incoming
	s.srv = httptest.NewServer(recorder)
	return s
}

// URL is the base URL of the server, without a trailing slash.
func (s *Server) URL() string {
	return s.srv.URL
}

// Handle appends a route. Routes registered earlier take precedence.
func (s *Server) Handle(method, pattern string, h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, Route{Method: method, Pattern: pattern, Handler: h})
}

// HandleStatus answers matching requests with an empty response.
func (s *Server) HandleStatus(method, pattern string, status int) {
	s.Handle(method, pattern, httphelpers.HandlerWithStatus(status))
}

// HandleJSON answers matching requests with body encoded as JSON.
func (s *Server) HandleJSON(method, pattern string, status int, body any) error {
	h, err := JSONHandler(status, body)
	if err != nil {
		return err
	}
	s.Handle(method, pattern, h)
	return nil
}

// HandleHTML answers matching requests with an HTML document.
func (s *Server) HandleHTML(method, pattern string, html string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "text/html; charset=utf-8")
	s.Handle(method, pattern, httphelpers.HandlerWithResponse(http.StatusOK, headers, []byte(html)))
}

// HandleSequence answers successive matching requests with successive
// handlers; once they run out the last one keeps answering. Requests to the
// route are served one at a time.
func (s *Server) HandleSequence(method, pattern string, first http.Handler, rest ...http.Handler) {
	s.Handle(method, pattern, serialized(httphelpers.SequentialHandler(first, rest...)))
}

// serialized wraps h so that it never serves two requests at once.
func serialized(h http.Handler) http.Handler {
	var mu sync.Mutex
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		h.ServeHTTP(w, req)
	})
}

// JSONHandler builds a handler that always answers with body as JSON.
func JSONHandler(status int, body any) (http.Handler, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding mock response: %w", err)
	}
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	return httphelpers.HandlerWithResponse(status, headers, data), nil
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()
	return append([]Request(nil), s.requests...)
}

// Count returns how many received requests match method and pattern.
func (s *Server) Count(method, pattern string) int {
	n := 0
	for _, r := range s.Requests() {
		if (method == AnyMethod || strings.EqualFold(method, r.Method)) && glob.Glob(pattern, r.Path) {
			n++
		}
	}
	return n
}

// Reset drops all routes and recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()
	s.routes = nil
	s.requests = nil
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

func (s *Server) drainLocked() {
	for {
		select {
		case info := <-s.incoming:
			s.requests = append(s.requests, Request{
				Method: info.Request.Method,
				Path:   info.Request.URL.Path,
				Query:  info.Request.URL.RawQuery,
				Header: info.Request.Header.Clone(),
				Body:   info.Body,
			})
		default:
			return
		}
	}
}

// dispatch runs after the recorder has queued req, so draining here keeps the
// bounded recording channel from ever filling up.
func (s *Server) dispatch(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	s.drainLocked()
	var handler http.Handler
	for _, r := range s.routes {
		if r.matches(req) {
			handler = r.Handler
			break
		}
	}
	s.mu.Unlock()

	if handler == nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "no mock route for "+req.Method+" "+req.URL.Path+"\n")
		return
	}
	handler.ServeHTTP(w, req)
}
