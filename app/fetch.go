package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Format selects the fetch variant and the body check applied to the response
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat parses "json" or "xml", case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// ContentType returns the MIME type served for bodies of this format
func (f Format) ContentType() string {
	if f == FormatXML {
		return "application/xml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// UserAgent is sent by JSON fetches; some providers reject Go's default agent
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 "

// DefaultLoadingTimeout bounds JSON fetches when no timeout is configured
const DefaultLoadingTimeout = 15 * time.Second

// MaxBodyBytes caps how much of a response is read. Forecast documents are a
// few hundred kilobytes at most.
const MaxBodyBytes = 8 << 20

var (
	// ErrInvalidBody is returned when a 2xx response fails the shape check
	ErrInvalidBody  = errors.New("invalid response body")
	ErrInvalidXML   = fmt.Errorf("%w: not an xml document", ErrInvalidBody)
	ErrInvalidJSON  = fmt.Errorf("%w: not a json document", ErrInvalidBody)
	ErrBodyTooLarge = fmt.Errorf("%w: larger than the read limit", ErrInvalidBody)

	// ErrTimeout matches fetch errors caused by a request timeout
	ErrTimeout = errors.New("request timed out")
)

// StatusError is returned for responses outside the 2xx range
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Detail)
}

// FetchError is returned when the request could not be completed
type FetchError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *FetchError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("fetching %s: %v: %v", e.URL, ErrTimeout, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTimeout) hold for timed out requests
func (e *FetchError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}

// Fetcher issues the GET requests for weather data
type Fetcher struct {
	xmlClient  *http.Client
	jsonClient *http.Client
	maxBody    int64
}

// NewFetcher creates a fetcher. XML fetches have no timeout of their own,
// JSON fetches give up after loadingTimeout.
func NewFetcher(loadingTimeout time.Duration) *Fetcher {
	if loadingTimeout <= 0 {
		loadingTimeout = DefaultLoadingTimeout
	}
	return &Fetcher{
		xmlClient:  &http.Client{},
		jsonClient: &http.Client{Timeout: loadingTimeout},
		maxBody:    MaxBodyBytes,
	}
}

// Fetch dispatches to FetchXML or FetchJSON
func (f *Fetcher) Fetch(ctx context.Context, format Format, url string) (string, error) {
	switch format {
	case FormatXML:
		return f.FetchXML(ctx, url)
	case FormatJSON:
		return f.FetchJSON(ctx, url)
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// FetchXML downloads url and returns the body if it looks like weather XML
func (f *Fetcher) FetchXML(ctx context.Context, url string) (string, error) {
	return f.observe(ctx, FormatXML, url)
}

// FetchJSON downloads url with the widget User-Agent and returns the body if
// it parses as JSON
func (f *Fetcher) FetchJSON(ctx context.Context, url string) (string, error) {
	return f.observe(ctx, FormatJSON, url)
}

func (f *Fetcher) observe(ctx context.Context, format Format, url string) (string, error) {
	start := time.Now()
	body, err := f.get(ctx, format, url)
	observeFetch(format, err, time.Since(start))
	return body, err
}

func (f *Fetcher) get(ctx context.Context, format Format, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	client := f.xmlClient
	if format == FormatJSON {
		client = f.jsonClient
		req.Header.Set("User-Agent", UserAgent)
	}

	logger.Debug("GET url sending", "url", url, "format", format)
	res, err := client.Do(req)
	if err != nil {
		return "", transportError(url, err)
	}
	defer res.Body.Close()

	// One byte past the limit tells a full body from an oversized one
	data, err := io.ReadAll(io.LimitReader(res.Body, f.maxBody+1))
	if err != nil {
		return "", transportError(url, err)
	}
	tooLarge := int64(len(data)) > f.maxBody
	if tooLarge {
		data = data[:f.maxBody]
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail := describeErrorBody(data, res.Header.Get("Content-Type"))
		logger.Debug("ERROR - status", "url", url, "status", res.StatusCode, "responseText", detail)
		return "", &StatusError{Code: res.StatusCode, Detail: detail}
	}

	if tooLarge {
		logger.Debug("incoming text is too large", "url", url, "limit", f.maxBody)
		return "", ErrBodyTooLarge
	}

	logger.Debug("successfully loaded from the internet", "url", url)

	body := string(data)
	if !bodyValid(format, body) {
		logger.Debug("incoming text is not valid", "format", format, "body", truncate(body, maxErrorDetail))
		if format == FormatXML {
			return "", ErrInvalidXML
		}
		return "", ErrInvalidJSON
	}
	logger.Debug("incoming text seems to be valid", "format", format)

	return body, nil
}

func bodyValid(format Format, body string) bool {
	if format == FormatXML {
		return IsXMLStringValid(body)
	}
	return IsJSONString(body)
}

func transportError(url string, err error) error {
	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
	if timeout {
		logger.Debug("ERROR - timeout", "url", url, "error", err)
	} else {
		logger.Debug("ERROR - transport", "url", url, "error", err)
	}
	return &FetchError{URL: url, Timeout: timeout, Err: err}
}

// Request is a fetch running in the background
type Request struct {
	done chan struct{}
	body string
	err  error
}

// Done is closed once the fetch has finished and its callback has returned
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the fetch is done and returns its result
func (r *Request) Wait() (string, error) {
	<-r.done
	return r.body, r.err
}

// FetchAsync runs Fetch in a goroutine and reports the result through the
// callbacks, see Deliver.
func (f *Fetcher) FetchAsync(ctx context.Context, format Format, url string, onSuccess func(string), onFailure func()) *Request {
	r := &Request{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.body, r.err = f.Fetch(ctx, format, url)
		Deliver(r.body, r.err, onSuccess, onFailure)
	}()
	return r
}

// Deliver calls onSuccess with body when err is nil and onFailure for status,
// timeout and transport errors. A body that failed validation calls neither.
func Deliver(body string, err error, onSuccess func(string), onFailure func()) {
	switch {
	case err == nil:
		if onSuccess != nil {
			onSuccess(body)
		}
	case errors.Is(err, ErrInvalidBody):
		// dropped
	default:
		if onFailure != nil {
			onFailure()
		}
	}
}
