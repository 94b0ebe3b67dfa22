package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?><weatherdata><location/></weatherdata>`

func newProvider(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchXML(t *testing.T) {
	userAgent := make(chan string, 1)
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		userAgent <- r.Header.Get("User-Agent")
		w.Write([]byte(sampleXML))
	})

	body, err := NewFetcher(time.Second).FetchXML(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, sampleXML, body)
	assert.NotEqual(t, UserAgent, <-userAgent)
}

func TestFetchJSON(t *testing.T) {
	userAgent := make(chan string, 1)
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		userAgent <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"properties":{"timeseries":[]}}`))
	})

	body, err := NewFetcher(time.Second).FetchJSON(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":{"timeseries":[]}}`, body)
	// the server trims trailing whitespace from header values
	assert.Equal(t, strings.TrimSpace(UserAgent), <-userAgent)
}

func TestFetchAcceptsAny2xx(t *testing.T) {
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		w.Write([]byte(`{"a":1}`))
	})

	body, err := NewFetcher(time.Second).Fetch(context.Background(), FormatJSON, srv.URL)

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, body)
}

func TestFetchInvalidBody(t *testing.T) {
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{bad"))
	})
	f := NewFetcher(time.Second)

	_, err := f.FetchJSON(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.ErrorIs(t, err, ErrInvalidBody)

	_, err = f.FetchXML(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrInvalidXML)
	assert.ErrorIs(t, err, ErrInvalidBody)
}

func TestFetchStatusError(t *testing.T) {
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html><head><title> Internal
			Oops </title></head><body><h1>Sorry</h1></body></html>`))
	})

	_, err := NewFetcher(time.Second).FetchXML(context.Background(), srv.URL)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "Internal Oops", statusErr.Detail)
	assert.NotErrorIs(t, err, ErrInvalidBody)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestFetchTimeout(t *testing.T) {
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	_, err := NewFetcher(50*time.Millisecond).FetchJSON(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewFetcher(time.Second).FetchXML(context.Background(), url)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, url, fetchErr.URL)
	assert.False(t, fetchErr.Timeout)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestFetchUnknownFormat(t *testing.T) {
	_, err := NewFetcher(time.Second).Fetch(context.Background(), Format("yaml"), "http://example.invalid")
	assert.Error(t, err)
}

func TestFetchAsync(t *testing.T) {
	valid := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleXML))
	})
	invalid := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not xml"))
	})
	failing := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tests := []struct {
		name      string
		url       string
		successes int32
		failures  int32
	}{
		{name: "valid body calls success", url: valid.URL, successes: 1},
		{name: "invalid body calls nothing", url: invalid.URL},
		{name: "bad status calls failure", url: failing.URL, failures: 1},
	}

	f := NewFetcher(time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var successes, failures atomic.Int32
			var got string

			req := f.FetchAsync(context.Background(), FormatXML, tt.url,
				func(body string) {
					got = body
					successes.Add(1)
				},
				func() { failures.Add(1) },
			)
			<-req.Done()

			assert.Equal(t, tt.successes, successes.Load())
			assert.Equal(t, tt.failures, failures.Load())
			if tt.successes > 0 {
				assert.Equal(t, sampleXML, got)
			}

			body, err := req.Wait()
			assert.Equal(t, got, body)
			assert.Equal(t, tt.successes == 0, err != nil)
		})
	}
}

func TestDeliver(t *testing.T) {
	var success, failure bool
	onSuccess := func(string) { success = true }
	onFailure := func() { failure = true }

	Deliver("", &StatusError{Code: 500}, onSuccess, onFailure)
	assert.False(t, success)
	assert.True(t, failure)

	failure = false
	Deliver("", ErrInvalidJSON, onSuccess, onFailure)
	assert.False(t, success)
	assert.False(t, failure)

	Deliver("{}", nil, onSuccess, onFailure)
	assert.True(t, success)

	// nil callbacks are allowed
	Deliver("", errors.New("boom"), nil, nil)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XML ")
	require.NoError(t, err)
	assert.Equal(t, FormatXML, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)

	assert.Contains(t, FormatXML.ContentType(), "xml")
	assert.Contains(t, FormatJSON.ContentType(), "json")
}

func TestFetchOutcome(t *testing.T) {
	assert.Equal(t, "ok", fetchOutcome(nil))
	assert.Equal(t, "invalid_body", fetchOutcome(ErrInvalidXML))
	assert.Equal(t, "status", fetchOutcome(&StatusError{Code: 404}))
	assert.Equal(t, "timeout", fetchOutcome(&FetchError{Timeout: true, Err: context.DeadlineExceeded}))
	assert.Equal(t, "transport", fetchOutcome(&FetchError{Err: errors.New("refused")}))
}

func TestFetchBodyLimit(t *testing.T) {
	srv := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/error" {
			w.WriteHeader(http.StatusInternalServerError)
		}
		w.Write([]byte(sampleXML))
	})
	f := NewFetcher(time.Second)

	f.maxBody = int64(len(sampleXML))
	body, err := f.FetchXML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, sampleXML, body)

	f.maxBody = int64(len(sampleXML)) - 1
	_, err = f.FetchXML(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
	assert.ErrorIs(t, err, ErrInvalidBody)

	// an oversized error page is still reported by its status
	_, err = f.FetchXML(context.Background(), srv.URL+"/error")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}
