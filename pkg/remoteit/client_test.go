package remoteit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remoteit/remoteit-go/pkg/auth"
	"github.com/remoteit/remoteit-go/pkg/credentials"
)

const (
	testKeyID  = "foo"
	testSecret = "YmFy" // "bar"
)

func testCredentials(t testing.TB) *credentials.Credentials {
	t.Helper()
	creds, err := credentials.New(testKeyID, testSecret)
	require.NoError(t, err)
	return creds
}

// newTestClient starts a mock API server and a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(testCredentials(t), Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

// assertSigned recomputes the Authorization header the way the API does.
func assertSigned(t *testing.T, r *http.Request) {
	t.Helper()
	date := r.Header.Get("Date")
	_, err := time.Parse(auth.DateFormat, date)
	assert.NoError(t, err, "Date header %q", date)

	want := auth.BuildAuthHeader(auth.Request{
		KeyID:       testKeyID,
		Key:         []byte("bar"),
		ContentType: r.Header.Get("Content-Type"),
		Method:      r.Method,
		Path:        r.URL.Path,
		Date:        date,
	})
	assert.Equal(t, want, r.Header.Get("Authorization"))
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func decodeGraphQLRequest(t *testing.T, r *http.Request) graphqlRequest {
	t.Helper()
	var req graphqlRequest
	body, err := io.ReadAll(r.Body)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(body, &req), "body: %s", body)
	return req
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(nil, Options{})
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewDefaults(t *testing.T) {
	c, err := New(testCredentials(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, BaseURL, c.BaseURL())
	assert.Equal(t, testKeyID, c.AccessKeyID())
}

func TestNewTrimsBaseURL(t *testing.T) {
	c, err := New(testCredentials(t), Options{BaseURL: "http://localhost:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative retries", Options{MaxRetries: -1}},
		{"no scheme", Options{BaseURL: "api.remote.it"}},
		{"unsupported scheme", Options{BaseURL: "ftp://api.remote.it"}},
		{"malformed", Options{BaseURL: "http://[::1"}},
		{"path prefix", Options{BaseURL: "http://localhost:8080/prefix"}},
		{"query", Options{BaseURL: "http://localhost:8080?x=1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(testCredentials(t), tt.opts)
			assert.Error(t, err)
		})
	}
}

// fakeLimiter holds each request for delay and records responses.
type fakeLimiter struct {
	delay    time.Duration
	err      error
	released []time.Time
	observed []int
}

func (l *fakeLimiter) Wait(ctx context.Context) error {
	if l.err != nil {
		return l.err
	}
	time.Sleep(l.delay)
	l.released = append(l.released, time.Now())
	return nil
}

func (l *fakeLimiter) Observe(resp *http.Response) {
	l.observed = append(l.observed, resp.StatusCode)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestSigningTransportDoesNotModifyRequest(t *testing.T) {
	var seen *http.Request
	tr := &signingTransport{
		keyID: testKeyID,
		key:   []byte("bar"),
		next: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			seen = r
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
		}),
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.remote.it/graphql/v1", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ContentTypeJSON)

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Date"))
	require.NotNil(t, seen)
	assertSigned(t, seen)
}

func TestEachAttemptIsSignedOnce(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		assert.Len(t, r.Header.Values("Authorization"), 1)
		assertSigned(t, r)
		writeJSON(w, http.StatusServiceUnavailable, `{}`)
	})

	_, err := c.GetApplicationTypes(testContext(t))
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "requests are not retried by default")
}

func TestCustomHTTPClientTransportIsUsed(t *testing.T) {
	called := false
	hc := &http.Client{
		Timeout: time.Second,
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			called = true
			assertSigned(t, r)
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{ContentTypeJSON}},
				Body:       io.NopCloser(jsonBody(`{"data":{"applicationTypes":[]}}`)),
				Request:    r,
			}, nil
		}),
	}
	c, err := New(testCredentials(t), Options{HTTPClient: hc})
	require.NoError(t, err)

	data, err := c.GetApplicationTypes(testContext(t))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, data.ApplicationTypes)
}

func TestLimiterWaitsBeforeSigning(t *testing.T) {
	limiter := &fakeLimiter{delay: 1100 * time.Millisecond}
	var date string
	tr := &signingTransport{
		keyID:   testKeyID,
		key:     []byte("bar"),
		limiter: limiter,
		next: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			date = r.Header.Get("Date")
			assertSigned(t, r)
			return &http.Response{StatusCode: http.StatusTooManyRequests, Body: http.NoBody, Request: r}, nil
		}),
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.remote.it/graphql/v1", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ContentTypeJSON)

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, limiter.released, 1)
	signedAt, err := time.Parse(auth.DateFormat, date)
	require.NoError(t, err)
	// The Date header has second precision; it must not predate the release.
	assert.False(t, signedAt.Before(limiter.released[0].Truncate(time.Second)),
		"Date %s predates limiter release at %s", date, limiter.released[0].UTC().Format(time.RFC3339Nano))
	assert.Equal(t, []int{http.StatusTooManyRequests}, limiter.observed)
}

func TestLimiterErrorStopsRequest(t *testing.T) {
	limiter := &fakeLimiter{err: context.Canceled}
	called := false
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("unreachable")
	})}
	c, err := New(testCredentials(t), Options{HTTPClient: hc, Limiter: limiter})
	require.NoError(t, err)

	_, err = c.GetApplicationTypes(testContext(t))
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
