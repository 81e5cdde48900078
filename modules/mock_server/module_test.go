package mock_server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Routes(t *testing.T) {
	s := New()
	defer s.Close()

	s.HandleStatus(http.MethodGet, "/users/admin", http.StatusForbidden)
	require.NoError(t, s.HandleJSON(http.MethodGet, "/users/*", http.StatusOK, map[string]string{"name": "ada"}))
	s.HandleHTML(AnyMethod, "/page", "<html><h1>hi</h1></html>")

	status, _ := get(t, s.URL()+"/users/admin")
	assert.Equal(t, http.StatusForbidden, status, "earlier route wins")

	status, body := get(t, s.URL()+"/users/42")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"name":"ada"}`, body)

	status, body = get(t, s.URL()+"/page")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>hi</h1>")

	status, body = get(t, s.URL()+"/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "no mock route for GET /missing")
}

func TestServer_MethodMismatch(t *testing.T) {
	s := New()
	defer s.Close()
	s.HandleStatus(http.MethodPost, "/items", http.StatusCreated)

	status, _ := get(t, s.URL()+"/items")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_Sequence(t *testing.T) {
	s := New()
	defer s.Close()
	s.HandleSequence(http.MethodGet, "/flaky",
		httphelpers.HandlerWithStatus(http.StatusServiceUnavailable),
		httphelpers.HandlerWithStatus(http.StatusOK))

	var got []int
	for i := 0; i < 3; i++ {
		status, _ := get(t, s.URL()+"/flaky")
		got = append(got, status)
	}
	assert.Equal(t, []int{503, 200, 200}, got)
}

func TestServer_SequenceUnderConcurrentRequests(t *testing.T) {
	s := New()
	defer s.Close()
	s.HandleSequence(http.MethodGet, "/flaky",
		httphelpers.HandlerWithStatus(http.StatusServiceUnavailable),
		httphelpers.HandlerWithStatus(http.StatusOK))

	const callers = 20
	statuses := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Get(s.URL() + "/flaky")
			if err != nil {
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	unavailable := 0
	for _, status := range statuses {
		if status == http.StatusServiceUnavailable {
			unavailable++
		}
	}
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, callers, s.Count(http.MethodGet, "/flaky"))
}

func TestServer_ManyRequestsWithoutReading(t *testing.T) {
	s := New()
	s.HandleStatus(http.MethodGet, "/x", http.StatusOK)

	client := &http.Client{Timeout: 2 * time.Second}
	const total = 150
	for i := 0; i < total; i++ {
		resp, err := client.Get(s.URL() + "/x")
		require.NoError(t, err, "request %d", i+1)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.Equal(t, total, s.Count(http.MethodGet, "/x"), fmt.Sprintf("all %d requests are recorded", total))
}

func TestServer_Recording(t *testing.T) {
	s := New()
	defer s.Close()
	s.HandleStatus(AnyMethod, "*", http.StatusNoContent)

	resp, err := http.Post(s.URL()+"/events?source=test", "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)
	resp.Body.Close()
	get(t, s.URL()+"/events")
	get(t, s.URL()+"/other")

	reqs := s.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/events", reqs[0].Path)
	assert.Equal(t, "source=test", reqs[0].Query)
	assert.Equal(t, "payload", string(reqs[0].Body))
	assert.Equal(t, 2, s.Count(AnyMethod, "/events"))
	assert.Equal(t, 1, s.Count(http.MethodPost, "/events"))

	s.Reset()
	assert.Empty(t, s.Requests())
	status, _ := get(t, s.URL()+"/events")
	assert.Equal(t, http.StatusNotFound, status, "reset drops routes")
}

func TestModule(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterModules(&Module{}))

	def, ok := reg.Lookup(FixtureName)
	require.True(t, ok)
	assert.Equal(t, fixture.ScopeTest, def.Scope)

	v, err := def.Setup(context.Background(), nil)
	require.NoError(t, err)
	s, ok := v.(*Server)
	require.True(t, ok)

	s.HandleStatus(AnyMethod, "/", http.StatusOK)
	status, _ := get(t, s.URL()+"/")
	assert.Equal(t, http.StatusOK, status)

	require.NoError(t, def.Teardown(context.Background(), v))
	_, err = http.Get(s.URL() + "/")
	assert.Error(t, err, "server is closed after teardown")

	assert.Error(t, def.Teardown(context.Background(), "not a server"))
}
